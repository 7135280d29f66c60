package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"teamledger/internal/core"
	"teamledger/internal/ledger"
	"teamledger/internal/log"
)

type listResponse struct {
	Expenses []core.Expense `json:"expenses"`
	Count    int            `json:"count"`
	Total    core.Money     `json:"total"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	NewResponse().JSON(map[string]any{
		"status":   "ok",
		"expenses": s.svc.Ledger().Len(),
		"receipts": s.receipts.Len(),
	}).Write(w)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	records := s.svc.Ledger().Filter(q)
	log.FromContext(r.Context()).DebugContext(r.Context(), "Expenses listed",
		log.FieldOperation, log.OpFilter,
		log.FieldCount, len(records))
	NewResponse().JSON(listResponse{
		Expenses: records,
		Count:    len(records),
		Total:    ledger.Total(records),
	}).Write(w)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	in, upload, err := parseCreateExpense(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	e, err := s.svc.CreateExpense(r.Context(), in, upload)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewResponse().
		Status(http.StatusCreated).
		Header("Location", "/expenses/"+strconv.FormatInt(e.ID, 10)).
		JSON(e).
		Write(w)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := expenseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	e, ok := s.svc.Ledger().Get(id)
	if !ok {
		s.writeError(w, r, fmt.Errorf("expense %d: %w", id, core.ErrNotFound))
		return
	}
	NewResponse().JSON(e).Write(w)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := expenseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	e, err := s.svc.DeleteExpense(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewResponse().JSON(e).Write(w)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	q, err := parseQuery(values)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	delim, err := parseDelimiter(values.Get("delimiter"), s.delimiter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out, _, err := s.svc.Export(r.Context(), q, delim)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewResponse().
		Download("text/csv; charset=utf-8", ledger.ExportFilename(s.now()), []byte(out)).
		Write(w)
}

func (s *Server) handleReceipt(w http.ResponseWriter, r *http.Request) {
	blob, err := s.receipts.Open(mux.Vars(r)["ref"])
	if err != nil {
		NotFoundError("receipt not found").RequestID(log.RequestID(r.Context())).Write(w)
		return
	}
	NewResponse().
		Header("Content-Type", blob.ContentType).
		Header("Content-Disposition", "inline").
		Body(blob.Data).
		Write(w)
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewResponse().JSON(s.report(r.Context(), q)).Write(w)
}

// handleRoster lists the configured team, or everyone who has paid when
// no roster is configured.
func (s *Server) handleRoster(w http.ResponseWriter, _ *http.Request) {
	members := s.svc.Ledger().Roster()
	if len(members) == 0 {
		for _, p := range ledger.ByPayer(s.svc.Ledger().All()) {
			members = append(members, p.Name)
		}
	}
	if members == nil {
		members = []string{}
	}
	NewResponse().JSON(map[string][]string{"members": members}).Write(w)
}

// writeError maps service errors to status codes. The body echoes the
// request id.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ve     *core.ValidationError
		tooBig *http.MaxBytesError
		resp   *ResponseBuilder
		logger = log.FromContext(r.Context())
	)
	switch {
	case errors.As(err, &ve):
		resp = ValidationFailed(ve.Field, ve.Error(), ve.Suggestion)
	case errors.Is(err, core.ErrNotFound):
		resp = NotFoundError(err.Error())
	case errors.As(err, &tooBig):
		resp = ErrorResponse(http.StatusRequestEntityTooLarge, "request body too large")
	case errors.Is(err, errBadRequest):
		resp = BadRequestError(err.Error())
	default:
		logger.ErrorContext(r.Context(), "Request failed", log.FieldError, err, log.FieldPath, r.URL.Path)
		resp = InternalServerError("internal error")
	}
	resp.RequestID(log.RequestID(r.Context())).Write(w)
}
