package ledger

import (
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"teamledger/internal/core"
)

// DefaultDelimiter is the separator used when a caller does not pick one.
const DefaultDelimiter = ','

var exportHeader = []string{"Date", "Category", "Description", "Amount", "Paid By", "Receipt"}

// ExportDelimited renders records as delimited text: a header row, then one
// row per record with the amount to two decimals and the receipt flag as
// Yes/No. Rows are separated by "\n" with no trailing newline. Fields that
// hold the delimiter, a double quote or a line break are quoted RFC 4180
// style; every other field is written verbatim.
func ExportDelimited(records []core.Expense, delimiter rune) (string, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)
	w.Comma = delimiter

	if err := w.Write(exportHeader); err != nil {
		return "", fmt.Errorf("write export header: %w", err)
	}
	for _, e := range records {
		receipt := "No"
		if e.HasReceipt {
			receipt = "Yes"
		}
		row := []string{
			e.Date.String(),
			string(e.Category),
			e.Description,
			e.Amount.String(),
			e.PaidBy,
			receipt,
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("write export row %d: %w", e.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush export: %w", err)
	}
	return strings.TrimSuffix(b.String(), "\n"), nil
}

// ExportFilename is the download name for an export produced on day.
func ExportFilename(day time.Time) string {
	return "expenses-" + day.Format(core.DateLayout) + ".csv"
}
