package ledger

import (
	"fmt"
	"strings"

	"teamledger/internal/core"
)

// AllCategories is the category filter value that disables category matching.
const AllCategories = "all"

// Query selects records for Filter. Zero values match everything.
type Query struct {
	// Text is matched case-insensitively against Description and PaidBy.
	Text string
	// Category is compared case-insensitively; "" and "all" disable it.
	Category string
	// From and To bound Date inclusively when set.
	From core.Date
	To   core.Date
}

func (q Query) Matches(e core.Expense) bool {
	if q.Text != "" {
		needle := strings.ToLower(q.Text)
		if !strings.Contains(strings.ToLower(e.Description), needle) &&
			!strings.Contains(strings.ToLower(e.PaidBy), needle) {
			return false
		}
	}
	if q.Category != "" && !strings.EqualFold(q.Category, AllCategories) &&
		!strings.EqualFold(q.Category, string(e.Category)) {
		return false
	}
	if !q.From.IsZero() && e.Date.Before(q.From.Time) {
		return false
	}
	if !q.To.IsZero() && e.Date.After(q.To.Time) {
		return false
	}
	return true
}

// Key is a stable string form of the query, used for caching.
func (q Query) Key() string {
	cat := strings.ToLower(q.Category)
	if cat == AllCategories {
		cat = ""
	}
	return fmt.Sprintf("%q|%q|%s|%s", strings.ToLower(q.Text), cat, q.From, q.To)
}
