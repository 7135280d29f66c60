package http

import (
	"context"
	"strconv"

	"teamledger/internal/core"
	"teamledger/internal/ledger"
	"teamledger/internal/log"
)

type reportResponse struct {
	Summary    core.Summary         `json:"summary"`
	ByCategory []core.CategoryShare `json:"byCategory"`
	ByPayer    []core.PayerAmount   `json:"byPayer"`
}

func buildReport(records []core.Expense) reportResponse {
	return reportResponse{
		Summary:    ledger.Summarize(records),
		ByCategory: ledger.Breakdown(records),
		ByPayer:    ledger.ByPayer(records),
	}
}

// report returns the aggregates for q. Any mutation bumps the ledger
// version, so entries never need explicit invalidation.
func (s *Server) report(ctx context.Context, q ledger.Query) reportResponse {
	l := s.svc.Ledger()
	key := strconv.FormatUint(l.Version(), 10) + "|" + q.Key()
	if rep, ok := s.reports.Get(key); ok {
		return rep
	}

	v, _, _ := s.reportGroup.Do(key, func() (any, error) {
		records, version := l.Snapshot(q)
		rep := buildReport(records)
		log.FromContext(ctx).DebugContext(ctx, "Report computed",
			log.FieldOperation, log.OpReport,
			log.FieldCount, len(records),
			"ledger_version", version)
		if strconv.FormatUint(version, 10)+"|"+q.Key() == key {
			s.reports.Set(key, rep)
		}
		return rep, nil
	})
	return v.(reportResponse)
}
