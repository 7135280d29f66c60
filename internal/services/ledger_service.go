package services

import (
	"context"
	"errors"
	"fmt"

	"teamledger/internal/core"
	"teamledger/internal/events"
	"teamledger/internal/ledger"
	"teamledger/internal/log"
	"teamledger/internal/receipts"
)

// ReceiptUpload is an optional file attached to a new expense.
type ReceiptUpload struct {
	ContentType string
	Data        []byte
}

// LedgerService coordinates the ledger, the receipt registry and event
// publishing. The ledger stays the source of truth: a failed publish is
// logged and never fails the operation.
type LedgerService struct {
	ledger    *ledger.Ledger
	receipts  *receipts.Registry
	publisher events.Publisher
	logger    *log.Logger
}

func NewLedgerService(l *ledger.Ledger, r *receipts.Registry, p events.Publisher, logger *log.Logger) *LedgerService {
	if p == nil {
		p = events.NopPublisher{}
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &LedgerService{
		ledger:    l,
		receipts:  r,
		publisher: p,
		logger:    logger.WithComponent(log.ComponentService),
	}
}

func (s *LedgerService) Ledger() *ledger.Ledger { return s.ledger }

// CreateExpense registers the upload (if any), adds the record and
// publishes expense.added. A receipt registered for a rejected record is
// released again.
func (s *LedgerService) CreateExpense(ctx context.Context, in core.ExpenseInput, upload *ReceiptUpload) (core.Expense, error) {
	var ref string
	if upload != nil {
		var err error
		ref, err = s.receipts.Register(upload.ContentType, upload.Data)
		if err != nil {
			return core.Expense{}, &core.ValidationError{Field: "receipt", Err: err}
		}
		in.HasReceipt = true
		in.ReceiptRef = ref
	}

	e, err := s.ledger.Add(ctx, in)
	if err != nil {
		if ref != "" {
			if rerr := s.receipts.Release(ref); rerr != nil {
				s.logger.WarnContext(ctx, "Failed to release receipt of rejected expense",
					log.FieldReceiptRef, ref, log.FieldError, rerr)
			}
		}
		return core.Expense{}, err
	}

	s.publish(ctx, events.ExpenseAdded(e))
	return e, nil
}

// DeleteExpense removes the record and publishes expense.removed.
func (s *LedgerService) DeleteExpense(ctx context.Context, id int64) (core.Expense, error) {
	e, err := s.ledger.Remove(ctx, id)
	if err != nil {
		return core.Expense{}, err
	}
	s.publish(ctx, events.ExpenseRemoved(e))
	return e, nil
}

// Export renders the records matching q and publishes expenses.exported.
func (s *LedgerService) Export(ctx context.Context, q ledger.Query, delimiter rune) (string, int, error) {
	records := s.ledger.Filter(q)
	out, err := ledger.ExportDelimited(records, delimiter)
	if err != nil {
		return "", 0, fmt.Errorf("export expenses: %w", err)
	}
	s.logger.InfoContext(ctx, "Expenses exported",
		log.FieldOperation, log.OpExport,
		log.FieldCount, len(records))
	s.publish(ctx, events.ExpensesExported(len(records)))
	return out, len(records), nil
}

func (s *LedgerService) publish(ctx context.Context, e events.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish ledger event",
			log.FieldEventType, e.Type,
			log.FieldExpenseID, e.ExpenseID,
			log.FieldOperation, log.OpPublish,
			log.FieldError, err)
	}
}

// Close releases the publisher.
func (s *LedgerService) Close() error {
	var errs []error
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %w", errors.Join(errs...))
	}
	return nil
}
