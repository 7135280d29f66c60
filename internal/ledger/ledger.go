// Package ledger owns the ordered collection of team expenses.
//
// A Ledger is created by the caller and handed to whatever layer needs it;
// there is no package-level instance. Records are kept newest-first by
// insertion and are never modified once stored.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"teamledger/internal/core"
	"teamledger/internal/log"
	"teamledger/internal/receipts"
)

// ReceiptReleaser frees the resource behind a receipt reference.
type ReceiptReleaser interface {
	Release(ref string) error
}

type Ledger struct {
	mu       sync.RWMutex
	items    []core.Expense // newest first
	version  uint64
	roster   map[string]string // lower-cased name -> canonical name
	members  []string
	releaser ReceiptReleaser
	logger   *log.Logger
}

type Option func(*Ledger)

// WithRoster restricts payers to the given team members. Matching is
// case-insensitive and stored records carry the roster spelling.
func WithRoster(names ...string) Option {
	return func(l *Ledger) {
		for _, n := range names {
			n = strings.TrimSpace(n)
			if n == "" {
				continue
			}
			key := strings.ToLower(n)
			if _, dup := l.roster[key]; dup {
				continue
			}
			l.roster[key] = n
			l.members = append(l.members, n)
		}
	}
}

// WithReceiptReleaser sets who frees receipt handles of removed records.
func WithReceiptReleaser(r ReceiptReleaser) Option {
	return func(l *Ledger) { l.releaser = r }
}

func WithLogger(logger *log.Logger) Option {
	return func(l *Ledger) { l.logger = logger.WithComponent(log.ComponentLedger) }
}

// WithExpenses seeds the ledger. The slice is taken newest-first; invalid
// records and duplicate ids are skipped.
func WithExpenses(seed []core.Expense) Option {
	return func(l *Ledger) {
		seen := make(map[int64]bool, len(seed))
		for _, e := range seed {
			if e.ID <= 0 || seen[e.ID] || e.Validate() != nil {
				continue
			}
			seen[e.ID] = true
			l.items = append(l.items, e)
		}
	}
}

func New(opts ...Option) *Ledger {
	l := &Ledger{
		roster: make(map[string]string),
		logger: log.Discard(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Add validates in, assigns the next id and prepends the record.
// The ledger is unchanged when an error is returned.
func (l *Ledger) Add(ctx context.Context, in core.ExpenseInput) (core.Expense, error) {
	e, err := in.ToExpense()
	if err != nil {
		l.loggerFor(ctx).DebugContext(ctx, "Expense rejected", log.FieldError, err, log.FieldOperation, log.OpAdd)
		return core.Expense{}, err
	}

	l.mu.Lock()
	if len(l.roster) > 0 {
		canonical, ok := l.roster[strings.ToLower(e.PaidBy)]
		if !ok {
			l.mu.Unlock()
			return core.Expense{}, &core.ValidationError{Field: "paidBy", Err: core.ErrUnknownMember}
		}
		e.PaidBy = canonical
	}
	e.ID = l.nextIDLocked()
	l.items = append([]core.Expense{e}, l.items...)
	l.version++
	l.mu.Unlock()

	l.loggerFor(ctx).InfoContext(ctx, "Expense added",
		log.NewFields().
			WithExpense(e.ID, e.Amount.Cents, string(e.Category), e.PaidBy).
			WithOperation(log.OpAdd).
			ToSlice()...)
	return e, nil
}

func (l *Ledger) nextIDLocked() int64 {
	var max int64
	for _, e := range l.items {
		if e.ID > max {
			max = e.ID
		}
	}
	return max + 1
}

// Remove deletes the record with the given id and releases its receipt.
// Unknown ids return core.ErrNotFound.
func (l *Ledger) Remove(ctx context.Context, id int64) (core.Expense, error) {
	l.mu.Lock()
	idx := -1
	for i, e := range l.items {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		l.mu.Unlock()
		return core.Expense{}, fmt.Errorf("remove expense %d: %w", id, core.ErrNotFound)
	}
	removed := l.items[idx]
	l.items = append(l.items[:idx:idx], l.items[idx+1:]...)
	l.version++
	l.mu.Unlock()

	l.releaseReceipt(ctx, removed)

	l.loggerFor(ctx).InfoContext(ctx, "Expense removed",
		log.NewFields().
			WithExpense(removed.ID, removed.Amount.Cents, string(removed.Category), removed.PaidBy).
			WithOperation(log.OpRemove).
			ToSlice()...)
	return removed, nil
}

// releaseReceipt frees registry-held receipts. External references such as
// plain URLs are left alone.
func (l *Ledger) releaseReceipt(ctx context.Context, e core.Expense) {
	if !e.HasReceipt || l.releaser == nil || !receipts.Owns(e.ReceiptRef) {
		return
	}
	err := l.releaser.Release(e.ReceiptRef)
	switch {
	case err == nil:
	case errors.Is(err, receipts.ErrUnknownHandle):
		l.loggerFor(ctx).DebugContext(ctx, "Receipt already released", log.FieldReceiptRef, e.ReceiptRef)
	default:
		fields := log.NewFields().
			WithExpense(e.ID, e.Amount.Cents, string(e.Category), e.PaidBy).
			WithOperation(log.OpRelease).
			WithError(err)
		fields[log.FieldReceiptRef] = e.ReceiptRef
		l.loggerFor(ctx).WarnContext(ctx, "Failed to release receipt", fields.ToSlice()...)
	}
}

// loggerFor prefers the request logger, which carries the request id.
func (l *Ledger) loggerFor(ctx context.Context) *log.Logger {
	if rl, ok := ctx.Value(log.LoggerContextKey).(*log.Logger); ok {
		return rl.WithComponent(log.ComponentLedger)
	}
	return l.logger
}

// Get returns the record with the given id.
func (l *Ledger) Get(id int64) (core.Expense, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, e := range l.items {
		if e.ID == id {
			return e, true
		}
	}
	return core.Expense{}, false
}

// All returns a copy of every record, newest first.
func (l *Ledger) All() []core.Expense {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]core.Expense(nil), l.items...)
}

// Filter returns the records matching q in ledger order. It never mutates
// the ledger and always returns a fresh slice.
func (l *Ledger) Filter(q Query) []core.Expense {
	out, _ := l.Snapshot(q)
	return out
}

// Snapshot is Filter together with the version the result was taken at.
func (l *Ledger) Snapshot(q Query) ([]core.Expense, uint64) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]core.Expense, 0, len(l.items))
	for _, e := range l.items {
		if q.Matches(e) {
			out = append(out, e)
		}
	}
	return out, l.version
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// Version changes on every successful mutation.
func (l *Ledger) Version() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.version
}

// Roster returns the configured team members; empty means any payer is accepted.
func (l *Ledger) Roster() []string {
	return append([]string(nil), l.members...)
}
