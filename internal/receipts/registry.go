// Package receipts keeps uploaded receipt images and PDFs behind opaque
// handles. A handle stays valid until it is released; callers own the
// release, the same way a browser owns a blob URL until it is revoked.
package receipts

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"teamledger/internal/log"
)

const (
	refPrefix = "blob:"
	// MaxSize bounds a single receipt upload.
	MaxSize = 5 << 20
)

var (
	ErrEmptyReceipt    = errors.New("receipt is empty")
	ErrReceiptTooLarge = errors.New("receipt exceeds maximum size")
	ErrUnsupportedType = errors.New("receipt must be an image or a PDF")
	ErrUnknownHandle   = errors.New("unknown receipt handle")
)

// Blob is a registered receipt.
type Blob struct {
	Ref         string
	ContentType string
	Data        []byte
	CreatedAt   time.Time
}

type Registry struct {
	mu     sync.RWMutex
	blobs  map[string]Blob
	logger *log.Logger
	now    func() time.Time
}

func NewRegistry(logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.Discard()
	}
	return &Registry{
		blobs:  make(map[string]Blob),
		logger: logger.WithComponent(log.ComponentReceipts),
		now:    time.Now,
	}
}

// Register stores data and returns its handle.
func (r *Registry) Register(contentType string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyReceipt
	}
	if len(data) > MaxSize {
		return "", ErrReceiptTooLarge
	}
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if !supported(contentType) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, contentType)
	}

	ref := refPrefix + uuid.NewString()
	blob := Blob{
		Ref:         ref,
		ContentType: contentType,
		Data:        append([]byte(nil), data...),
		CreatedAt:   r.now(),
	}

	r.mu.Lock()
	r.blobs[ref] = blob
	r.mu.Unlock()

	r.logger.Debug("Receipt registered",
		log.FieldReceiptRef, ref,
		"content_type", contentType,
		"size_bytes", len(data),
		log.FieldOperation, log.OpRegister)
	return ref, nil
}

// Open returns a copy of the blob behind ref.
func (r *Registry) Open(ref string) (Blob, error) {
	r.mu.RLock()
	blob, ok := r.blobs[ref]
	r.mu.RUnlock()
	if !ok {
		return Blob{}, ErrUnknownHandle
	}
	blob.Data = append([]byte(nil), blob.Data...)
	return blob, nil
}

// Release frees the blob behind ref. Releasing twice returns ErrUnknownHandle.
func (r *Registry) Release(ref string) error {
	r.mu.Lock()
	_, ok := r.blobs[ref]
	delete(r.blobs, ref)
	r.mu.Unlock()
	if !ok {
		return ErrUnknownHandle
	}
	r.logger.Debug("Receipt released", log.FieldReceiptRef, ref, log.FieldOperation, log.OpRelease)
	return nil
}

// Owns reports whether ref was issued by a registry (live or not).
func Owns(ref string) bool {
	return strings.HasPrefix(ref, refPrefix)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.blobs)
}

func supported(contentType string) bool {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	return strings.HasPrefix(contentType, "image/") || contentType == "application/pdf"
}
