package ledger

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"teamledger/internal/core"
)

func TestAggregateByCategoryScenario(t *testing.T) {
	records := []core.Expense{
		{ID: 1, Amount: core.FromCents(12550), Category: core.Food},
		{ID: 2, Amount: core.FromCents(8999), Category: core.Office},
	}
	got := AggregateByCategory(records)
	want := map[core.Category]core.Money{
		core.Food:   core.FromCents(12550),
		core.Office: core.FromCents(8999),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestAggregatesOverDemoData(t *testing.T) {
	l := New(WithExpenses(DemoExpenses()))
	all := l.All()

	byCat := AggregateByCategory(all)
	if byCat[core.Food].Cents != 44705 || byCat[core.Travel].Cents != 53500 ||
		byCat[core.Office].Cents != 12249 || byCat[core.Software].Cents != 29900 {
		t.Fatalf("unexpected category totals %v", byCat)
	}

	byPayer := AggregateByPayer(all)
	want := map[string]int64{"John Doe": 17125, "Jane Smith": 12249, "Mike Johnson": 53500, "Sarah Williams": 57480}
	for name, cents := range want {
		if byPayer[name].Cents != cents {
			t.Fatalf("%s: got %d, want %d", name, byPayer[name].Cents, cents)
		}
	}

	// Re-filtering a subset to the same set yields the same totals.
	subset := l.Filter(Query{Category: "travel"})
	refiltered := New(WithExpenses(subset)).Filter(Query{Category: "Travel"})
	if !reflect.DeepEqual(AggregateByCategory(subset), AggregateByCategory(refiltered)) {
		t.Fatalf("aggregation differs on equal sets")
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(DemoExpenses())
	if s.Total.Cents != 140354 || s.Transactions != 8 || s.Members != 4 {
		t.Fatalf("unexpected summary %+v", s)
	}
	// 1403.54 / 4 = 350.885 -> 350.89
	if s.AveragePerMember.Cents != 35089 {
		t.Fatalf("unexpected average %d", s.AveragePerMember.Cents)
	}
	// four categories carry records: Food, Travel, Office, Software
	if s.AveragePerCategory.Cents != 35089 {
		t.Fatalf("unexpected category average %d", s.AveragePerCategory.Cents)
	}

	food := Summarize([]core.Expense{
		{ID: 1, Amount: core.FromCents(1000), Category: core.Food, PaidBy: "Ann"},
		{ID: 2, Amount: core.FromCents(2000), Category: core.Food, PaidBy: "Bob"},
		{ID: 3, Amount: core.FromCents(1), Category: core.Office, PaidBy: "Bob"},
	})
	// 30.01 / 2 = 15.005 -> 15.01
	if food.AveragePerCategory.Cents != 1501 || food.AveragePerMember.Cents != 1501 {
		t.Fatalf("unexpected averages %+v", food)
	}
	if empty := Summarize(nil); empty != (core.Summary{}) {
		t.Fatalf("empty summary should be zero, got %+v", empty)
	}
}

func TestTotalStaysPositiveAtAmountCap(t *testing.T) {
	top, err := core.ParseAmount("10000000000")
	if err != nil {
		t.Fatalf("cap should parse: %v", err)
	}
	records := make([]core.Expense, 5000)
	for i := range records {
		records[i] = core.Expense{ID: int64(i + 1), Amount: top, Category: core.Other}
	}
	if got := Total(records).Cents; got != 5000*top.Cents {
		t.Fatalf("total overflowed: %d", got)
	}
}

func TestBreakdown(t *testing.T) {
	got := Breakdown(DemoExpenses())
	var cats []core.Category
	for _, s := range got {
		cats = append(cats, s.Category)
	}
	if !reflect.DeepEqual(cats, []core.Category{core.Food, core.Travel, core.Office, core.Software}) {
		t.Fatalf("unexpected order %v", cats)
	}
	// 447.05 / 1403.54 = 31.85%
	if got[0].Percent != 31.9 {
		t.Fatalf("unexpected food share %v", got[0].Percent)
	}
	if len(Breakdown(nil)) != 0 {
		t.Fatalf("empty breakdown expected")
	}
}

func TestByPayerSorted(t *testing.T) {
	got := ByPayer(DemoExpenses())
	if len(got) != 4 || got[0].Name != "Jane Smith" || got[3].Name != "Sarah Williams" {
		t.Fatalf("unexpected payer order %+v", got)
	}
}

func TestExportDelimitedScenario(t *testing.T) {
	e := core.Expense{
		ID:          1,
		Date:        core.NewDate(2024, 1, 15),
		Category:    core.Food,
		Description: "Team Lunch",
		Amount:      core.FromCents(12550),
		PaidBy:      "John Doe",
		HasReceipt:  true,
		ReceiptRef:  "blob:x",
	}
	out, err := ExportDelimited([]core.Expense{e}, DefaultDelimiter)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	want := "Date,Category,Description,Amount,Paid By,Receipt\n2024-01-15,Food,Team Lunch,125.50,John Doe,Yes"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestExportDelimitedQuotingAndDelimiter(t *testing.T) {
	e := core.Expense{
		Date:        core.NewDate(2024, 2, 1),
		Category:    core.Office,
		Description: `Desk, "standing"`,
		Amount:      core.FromCents(5),
		PaidBy:      "Jane Smith",
	}
	out, err := ExportDelimited([]core.Expense{e}, ',')
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	lines := strings.Split(out, "\n")
	if len(lines) != 2 || lines[1] != `2024-02-01,Office,"Desk, ""standing""",0.05,Jane Smith,No` {
		t.Fatalf("unexpected export %q", out)
	}

	out, err = ExportDelimited([]core.Expense{e}, ';')
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.HasPrefix(out, "Date;Category;Description;Amount;Paid By;Receipt\n") {
		t.Fatalf("unexpected header %q", out)
	}

	if _, err := ExportDelimited(nil, '"'); err == nil {
		t.Fatalf("quote delimiter should be rejected")
	}

	out, err = ExportDelimited(nil, ',')
	if err != nil || out != "Date,Category,Description,Amount,Paid By,Receipt" {
		t.Fatalf("empty export should be header only, got %q err=%v", out, err)
	}
}

func TestExportFilename(t *testing.T) {
	day := time.Date(2024, 3, 9, 18, 30, 0, 0, time.UTC)
	if got := ExportFilename(day); got != "expenses-2024-03-09.csv" {
		t.Fatalf("unexpected filename %q", got)
	}
}
