package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rabbitmq/amqp091-go"

	"teamledger/internal/core"
)

type fakeChannel struct {
	declared   []string
	published  []amqp091.Publishing
	keys       []string
	declareErr error
	publishErr error
	closed     bool
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error {
	f.declared = append(f.declared, name+":"+kind)
	return f.declareErr
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.keys = append(f.keys, exchange+"/"+key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func sampleExpense() core.Expense {
	return core.Expense{
		ID:          3,
		Date:        core.NewDate(2024, 1, 13),
		Category:    core.Travel,
		Description: "Client Meeting",
		Amount:      core.FromCents(45000),
		PaidBy:      "Mike Johnson",
	}
}

func TestPublishExpenseAdded(t *testing.T) {
	ch := &fakeChannel{}
	p, err := newPublisher(ch, "teamledger", "ledger", nil)
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}
	if len(ch.declared) != 1 || ch.declared[0] != "teamledger:topic" {
		t.Fatalf("unexpected exchange declaration %v", ch.declared)
	}

	if err := p.Publish(context.Background(), ExpenseAdded(sampleExpense())); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(ch.published) != 1 || ch.keys[0] != "teamledger/ledger.expense.added" {
		t.Fatalf("unexpected publish %v", ch.keys)
	}
	msg := ch.published[0]
	if msg.ContentType != "application/json" || msg.DeliveryMode != amqp091.Persistent {
		t.Fatalf("unexpected message properties %+v", msg)
	}
	var ev Event
	if err := json.Unmarshal(msg.Body, &ev); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.Type != TypeExpenseAdded || ev.ExpenseID != 3 || ev.AmountCents != 45000 || ev.PaidBy != "Mike Johnson" {
		t.Fatalf("unexpected event %+v", ev)
	}

	if err := p.Close(); err != nil || !ch.closed {
		t.Fatalf("close: %v closed=%v", err, ch.closed)
	}
}

func TestPublisherErrors(t *testing.T) {
	boom := errors.New("boom")
	if _, err := newPublisher(&fakeChannel{declareErr: boom}, "x", "y", nil); !errors.Is(err, boom) {
		t.Fatalf("expected declare error, got %v", err)
	}

	p, err := newPublisher(&fakeChannel{publishErr: boom}, "x", "y", nil)
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}
	if err := p.Publish(context.Background(), ExpensesExported(4)); !errors.Is(err, boom) {
		t.Fatalf("expected publish error, got %v", err)
	}
}

func TestEventConstructors(t *testing.T) {
	if ev := ExpenseRemoved(sampleExpense()); ev.Type != TypeExpenseRemoved || ev.Category != "Travel" {
		t.Fatalf("unexpected removed event %+v", ev)
	}
	if ev := ExpensesExported(4); ev.Count != 4 || ev.ExpenseID != 0 || ev.Timestamp.IsZero() {
		t.Fatalf("unexpected export event %+v", ev)
	}
	if err := (NopPublisher{}).Publish(context.Background(), ExpensesExported(1)); err != nil {
		t.Fatalf("nop publish: %v", err)
	}
}
