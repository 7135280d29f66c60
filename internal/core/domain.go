package core

import (
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
)

const DateLayout = "2006-01-02"

const (
	Food     Category = "Food"
	Travel   Category = "Travel"
	Office   Category = "Office"
	Software Category = "Software"
	Other    Category = "Other"
)

type (
	Category string

	Date struct {
		time.Time
	}

	// Expense is one stored ledger record. Records are never mutated once stored.
	Expense struct {
		ID          int64    `json:"id"`
		Date        Date     `json:"date"`
		Category    Category `json:"category"`
		Description string   `json:"description"`
		Amount      Money    `json:"amount"`
		PaidBy      string   `json:"paidBy"`
		HasReceipt  bool     `json:"hasReceipt"`
		ReceiptRef  string   `json:"receiptRef,omitempty"`
	}

	// ExpenseInput is what a form collaborator submits: an Expense minus its id.
	// Fields are raw strings so that a missing value can be told apart from a
	// zero one.
	ExpenseInput struct {
		Date        string `json:"date"`
		Category    string `json:"category"`
		Description string `json:"description"`
		Amount      string `json:"amount"`
		PaidBy      string `json:"paidBy"`
		HasReceipt  bool   `json:"hasReceipt"`
		ReceiptRef  string `json:"receiptRef,omitempty"`
	}
)

// Categories returns the fixed category set in display order.
func Categories() []Category {
	return []Category{Food, Travel, Office, Software, Other}
}

// ParseCategory resolves s case-insensitively against the fixed set.
// On a miss the returned error carries the closest category, if any is
// within two edits.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", invalid("category", ErrMissingField)
	}
	best, bestDist := Category(""), 3
	for _, c := range Categories() {
		if strings.EqualFold(string(c), s) {
			return c, nil
		}
		d := levenshtein.ComputeDistance(strings.ToLower(string(c)), strings.ToLower(s))
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	return "", &ValidationError{Field: "category", Err: ErrUnknownCategory, Suggestion: string(best)}
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO 8601 calendar date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	parsed, err := ParseDate(strings.Trim(string(b), `"`))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Validate checks the stored invariants of a record.
func (e Expense) Validate() error {
	if e.Date.IsZero() {
		return invalid("date", ErrInvalidDate)
	}
	if strings.TrimSpace(e.Description) == "" {
		return invalid("description", ErrEmptyDescription)
	}
	if _, err := ParseCategory(string(e.Category)); err != nil {
		return err
	}
	if err := e.Amount.Validate(); err != nil {
		return invalid("amount", err)
	}
	if strings.TrimSpace(e.PaidBy) == "" {
		return invalid("paidBy", ErrMissingField)
	}
	if e.HasReceipt != (e.ReceiptRef != "") {
		return invalid("receiptRef", ErrReceiptMismatch)
	}
	return nil
}

// ToExpense validates the input and returns the record it describes, without
// an id. Fields are checked in order: date, description, category, amount,
// paidBy, receipt; the first failure is returned as a *ValidationError.
func (in ExpenseInput) ToExpense() (Expense, error) {
	if strings.TrimSpace(in.Date) == "" {
		return Expense{}, invalid("date", ErrMissingField)
	}
	date, err := ParseDate(in.Date)
	if err != nil {
		return Expense{}, invalid("date", err)
	}

	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return Expense{}, invalid("description", ErrMissingField)
	}

	cat, err := ParseCategory(in.Category)
	if err != nil {
		return Expense{}, err
	}

	if strings.TrimSpace(in.Amount) == "" {
		return Expense{}, invalid("amount", ErrMissingField)
	}
	amount, err := ParseAmount(in.Amount)
	if err != nil {
		return Expense{}, invalid("amount", err)
	}

	payer := strings.TrimSpace(in.PaidBy)
	if payer == "" {
		return Expense{}, invalid("paidBy", ErrMissingField)
	}

	ref := strings.TrimSpace(in.ReceiptRef)
	if in.HasReceipt != (ref != "") {
		return Expense{}, invalid("receiptRef", ErrReceiptMismatch)
	}

	return Expense{
		Date:        date,
		Category:    cat,
		Description: desc,
		Amount:      amount,
		PaidBy:      payer,
		HasReceipt:  in.HasReceipt,
		ReceiptRef:  ref,
	}, nil
}
