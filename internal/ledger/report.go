package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"teamledger/internal/core"
)

// AggregateByCategory sums amounts per category over records.
func AggregateByCategory(records []core.Expense) map[core.Category]core.Money {
	out := make(map[core.Category]core.Money)
	for _, e := range records {
		out[e.Category] = out[e.Category].Add(e.Amount)
	}
	return out
}

// AggregateByPayer sums amounts per payer over records.
func AggregateByPayer(records []core.Expense) map[string]core.Money {
	out := make(map[string]core.Money)
	for _, e := range records {
		out[e.PaidBy] = out[e.PaidBy].Add(e.Amount)
	}
	return out
}

// Total sums every amount in records.
func Total(records []core.Expense) core.Money {
	var t core.Money
	for _, e := range records {
		t = t.Add(e.Amount)
	}
	return t
}

// Summarize computes the dashboard headline figures. Both averages are
// rounded half-up to the cent.
func Summarize(records []core.Expense) core.Summary {
	total := Total(records)
	members := len(AggregateByPayer(records))
	return core.Summary{
		Total:              total,
		Transactions:       len(records),
		Members:            members,
		AveragePerMember:   average(total, members),
		AveragePerCategory: average(total, len(AggregateByCategory(records))),
	}
}

func average(total core.Money, n int) core.Money {
	if n == 0 {
		return core.Money{}
	}
	avg := total.Decimal().Div(decimal.NewFromInt(int64(n))).Round(2)
	return core.FromCents(avg.Shift(2).IntPart())
}

// Breakdown returns per-category totals in category display order, each with
// its percentage of the overall total. Categories without records are omitted.
func Breakdown(records []core.Expense) []core.CategoryShare {
	sums := AggregateByCategory(records)
	total := Total(records)

	out := make([]core.CategoryShare, 0, len(sums))
	for _, c := range core.Categories() {
		amount, ok := sums[c]
		if !ok {
			continue
		}
		share := core.CategoryShare{Category: c, Amount: amount}
		if total.Cents > 0 {
			pct := decimal.NewFromInt(amount.Cents).
				Mul(decimal.NewFromInt(100)).
				Div(decimal.NewFromInt(total.Cents)).
				Round(1)
			share.Percent = pct.InexactFloat64()
		}
		out = append(out, share)
	}
	return out
}

// ByPayer returns payer totals sorted by name.
func ByPayer(records []core.Expense) []core.PayerAmount {
	sums := AggregateByPayer(records)
	out := make([]core.PayerAmount, 0, len(sums))
	for name, amount := range sums {
		out = append(out, core.PayerAmount{Name: name, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
