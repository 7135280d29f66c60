// Package http exposes the ledger over a small JSON API.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/sync/singleflight"

	"teamledger/internal/cache"
	"teamledger/internal/ledger"
	"teamledger/internal/log"
	"teamledger/internal/receipts"
	"teamledger/internal/services"
)

// Options tunes a Server. Zero values fall back to defaults.
type Options struct {
	Delimiter          rune
	RateLimitPerMinute int
	ReportCacheSize    int
	ReportCacheTTL     time.Duration
	Logger             *log.Logger
}

type Server struct {
	http.Server
	svc         *services.LedgerService
	receipts    *receipts.Registry
	rateLimiter *rateLimiter
	delimiter   rune
	logger      *log.Logger
	now         func() time.Time

	// report responses keyed by ledger version and query
	reports     *cache.LRUCache[reportResponse]
	reportGroup singleflight.Group
}

func NewServer(addr string, svc *services.LedgerService, reg *receipts.Registry, opts Options) *Server {
	if opts.Delimiter == 0 {
		opts.Delimiter = ledger.DefaultDelimiter
	}
	if opts.ReportCacheSize < 1 {
		opts.ReportCacheSize = 100
	}
	if opts.ReportCacheTTL <= 0 {
		opts.ReportCacheTTL = 5 * time.Minute
	}
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}

	s := &Server{
		svc:         svc,
		receipts:    reg,
		rateLimiter: newRateLimiter(opts.RateLimitPerMinute),
		delimiter:   opts.Delimiter,
		logger:      opts.Logger.WithComponent(log.ComponentHTTP),
		now:         time.Now,
		reports:     cache.NewLRUCache[reportResponse](opts.ReportCacheSize, opts.ReportCacheTTL),
	}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/expenses", s.handleListExpenses).Methods(http.MethodGet)
	r.HandleFunc("/expenses", s.handleCreateExpense).Methods(http.MethodPost)
	r.HandleFunc("/expenses/export", s.handleExport).Methods(http.MethodGet)
	r.HandleFunc("/expenses/{id:[0-9]+}", s.handleGetExpense).Methods(http.MethodGet)
	r.HandleFunc("/expenses/{id:[0-9]+}", s.handleDeleteExpense).Methods(http.MethodDelete)
	r.HandleFunc("/receipts/{ref}", s.handleReceipt).Methods(http.MethodGet)
	r.HandleFunc("/reports", s.handleReports).Methods(http.MethodGet)
	r.HandleFunc("/roster", s.handleRoster).Methods(http.MethodGet)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("not found").RequestID(log.RequestID(r.Context())).Write(w)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusMethodNotAllowed, "method not allowed").RequestID(log.RequestID(r.Context())).Write(w)
	})

	s.Addr = addr
	s.Handler = log.Middleware(s.logger)(s.withSecurityHeaders(r))
	s.ReadHeaderTimeout = 5 * time.Second
	s.ReadTimeout = 15 * time.Second
	s.WriteTimeout = 15 * time.Second
	s.IdleTimeout = 60 * time.Second
	return s
}

// Cleaners returns the server's expiring state for a cache.Manager.
func (s *Server) Cleaners() []cache.Cleaner {
	return []cache.Cleaner{s.reports, s.rateLimiter}
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("HTTP server shutting down",
		log.FieldOperation, log.OpShutdown,
		"rate_limited_requests", s.rateLimiter.rejected())
	return s.Server.Shutdown(ctx)
}

// withSecurityHeaders tags the request with an id, applies the write rate
// limit, sets security headers and logs the outcome.
func (s *Server) withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)

		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" || len(requestID) > 64 {
			requestID = generateRequestID()
		}
		ctx := log.WithRequestID(r.Context(), requestID)
		r = r.WithContext(ctx)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		rw.Header().Set("X-Request-ID", requestID)
		setSecurityHeaders(rw.Header())

		isWrite := r.Method == http.MethodPost || r.Method == http.MethodDelete
		if isWrite && !s.rateLimiter.allow(clientIP) {
			log.FromContext(ctx).WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			rw.Header().Set("Retry-After", "60")
			ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, try again later").
				RequestID(requestID).
				Write(rw)
		} else {
			next.ServeHTTP(rw, r)
		}

		log.LogRequest(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	})
}

// responseWriter captures the status code for logging.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

func generateRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(b)
}
