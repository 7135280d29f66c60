package http

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gorilla/mux"

	"teamledger/internal/core"
	"teamledger/internal/ledger"
	"teamledger/internal/receipts"
	"teamledger/internal/services"
)

// maxBodyBytes leaves room for a base64 receipt of receipts.MaxSize.
const maxBodyBytes = receipts.MaxSize*4/3 + 64<<10

var errBadRequest = errors.New("bad request")

// looseString accepts a JSON string or number, so clients may send the
// amount either way.
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = looseString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number: %w", err)
	}
	*s = looseString(n.String())
	return nil
}

type receiptPayload struct {
	ContentType string `json:"contentType"`
	Data        string `json:"data"` // standard base64
}

type createExpenseRequest struct {
	Date        string          `json:"date"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Amount      looseString     `json:"amount"`
	PaidBy      string          `json:"paidBy"`
	HasReceipt  *bool           `json:"hasReceipt"`
	ReceiptRef  string          `json:"receiptRef"`
	Receipt     *receiptPayload `json:"receipt"`
}

// parseCreateExpense decodes a POST /expenses body. A receipt is either an
// uploaded payload or an external reference, never both. hasReceipt is
// optional; when omitted it follows the reference, when sent it must agree
// with what was supplied.
func parseCreateExpense(w http.ResponseWriter, r *http.Request) (core.ExpenseInput, *services.ReceiptUpload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req createExpenseRequest
	if err := dec.Decode(&req); err != nil {
		return core.ExpenseInput{}, nil, fmt.Errorf("%w: invalid JSON body: %w", errBadRequest, err)
	}

	in := core.ExpenseInput{
		Date:        req.Date,
		Category:    req.Category,
		Description: req.Description,
		Amount:      string(req.Amount),
		PaidBy:      req.PaidBy,
		ReceiptRef:  strings.TrimSpace(req.ReceiptRef),
	}
	in.HasReceipt = in.ReceiptRef != ""
	if req.HasReceipt != nil {
		in.HasReceipt = *req.HasReceipt
	}

	if req.Receipt == nil {
		return in, nil, nil
	}
	if in.ReceiptRef != "" {
		return core.ExpenseInput{}, nil, fmt.Errorf("%w: send either receipt or receiptRef", errBadRequest)
	}
	if req.HasReceipt != nil && !*req.HasReceipt {
		return core.ExpenseInput{}, nil, &core.ValidationError{Field: "receipt", Err: core.ErrReceiptMismatch}
	}
	data, err := base64.StdEncoding.DecodeString(req.Receipt.Data)
	if err != nil {
		return core.ExpenseInput{}, nil, fmt.Errorf("%w: receipt data is not base64", errBadRequest)
	}
	return in, &services.ReceiptUpload{ContentType: req.Receipt.ContentType, Data: data}, nil
}

func expenseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid expense id", errBadRequest)
	}
	return id, nil
}

// parseQuery reads q, category, from and to.
func parseQuery(values url.Values) (ledger.Query, error) {
	q := ledger.Query{
		Text:     strings.TrimSpace(values.Get("q")),
		Category: strings.TrimSpace(values.Get("category")),
	}
	var err error
	if v := strings.TrimSpace(values.Get("from")); v != "" {
		if q.From, err = core.ParseDate(v); err != nil {
			return ledger.Query{}, fmt.Errorf("%w: invalid from date %q", errBadRequest, v)
		}
	}
	if v := strings.TrimSpace(values.Get("to")); v != "" {
		if q.To, err = core.ParseDate(v); err != nil {
			return ledger.Query{}, fmt.Errorf("%w: invalid to date %q", errBadRequest, v)
		}
	}
	if !q.From.IsZero() && !q.To.IsZero() && q.To.Before(q.From.Time) {
		return ledger.Query{}, fmt.Errorf("%w: to date is before from date", errBadRequest)
	}
	return q, nil
}

// parseDelimiter accepts a single character or the word "tab".
func parseDelimiter(v string, fallback rune) (rune, error) {
	switch {
	case v == "":
		return fallback, nil
	case strings.EqualFold(v, "tab"):
		return '\t', nil
	case utf8.RuneCountInString(v) == 1:
		r, _ := utf8.DecodeRuneInString(v)
		if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
			return 0, fmt.Errorf("%w: delimiter %q is not allowed", errBadRequest, r)
		}
		return r, nil
	}
	return 0, fmt.Errorf("%w: delimiter must be a single character", errBadRequest)
}
