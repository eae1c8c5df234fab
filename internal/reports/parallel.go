package reports

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ore/internal/core"
	"ore/internal/log"
	"ore/internal/storage"
)

// compareWithStored checks the live report against the worker's stored
// summary and logs every discrepancy. Comparison failures never fail the
// read; the live report has already been returned to the caller.
func (s *Service) compareWithStored(ctx context.Context, year, month int, live core.MonthlyReport) {
	stored, computedAt, err := s.StoredReport(ctx, year, month)
	if err != nil {
		if errors.Is(err, storage.ErrSummaryNotFound) {
			return
		}
		slog.WarnContext(ctx, "Parallel compare: cannot load stored summary",
			log.FieldComponent, log.ComponentReports,
			log.FieldOperation, log.OpCompare,
			log.FieldYear, year,
			log.FieldMonth, month,
			log.FieldError, err)
		return
	}

	diffs := diffReports(live, stored)
	if len(diffs) == 0 {
		return
	}
	for _, d := range diffs {
		slog.WarnContext(ctx, "Parallel compare: live and stored reports disagree",
			log.FieldComponent, log.ComponentReports,
			log.FieldOperation, log.OpCompare,
			log.FieldYear, year,
			log.FieldMonth, month,
			"computed_at", computedAt,
			"diff", d)
	}
}

// diffReports returns a human-readable description of every field where
// the two reports disagree. An empty slice means they match.
func diffReports(live, stored core.MonthlyReport) []string {
	var diffs []string

	if live.Result.BilledRevenue != stored.Result.BilledRevenue {
		diffs = append(diffs, fmt.Sprintf("total billed revenue: live=%s stored=%s",
			live.Result.BilledRevenue, stored.Result.BilledRevenue))
	}
	if live.Result.BilledHours != stored.Result.BilledHours {
		diffs = append(diffs, fmt.Sprintf("total billed hours: live=%.2f stored=%.2f",
			live.Result.BilledHours, stored.Result.BilledHours))
	}
	if live.AllProjectsMatched != stored.AllProjectsMatched {
		diffs = append(diffs, fmt.Sprintf("all projects matched: live=%t stored=%t",
			live.AllProjectsMatched, stored.AllProjectsMatched))
	}
	if len(live.UnmatchedProjects) != len(stored.UnmatchedProjects) {
		diffs = append(diffs, fmt.Sprintf("unmatched projects: live=%d stored=%d",
			len(live.UnmatchedProjects), len(stored.UnmatchedProjects)))
	}

	storedProjects := map[string]core.ProjectBillingResult{}
	for _, c := range stored.Result.Companies {
		for _, p := range c.Projects {
			storedProjects[p.ProjectID] = p
		}
	}
	liveSeen := map[string]bool{}
	for _, c := range live.Result.Companies {
		for _, p := range c.Projects {
			liveSeen[p.ProjectID] = true
			sp, ok := storedProjects[p.ProjectID]
			if !ok {
				diffs = append(diffs, fmt.Sprintf("project %s: missing from stored report", p.ProjectID))
				continue
			}
			if p.BilledHours != sp.BilledHours {
				diffs = append(diffs, fmt.Sprintf("project %s billed hours: live=%.2f stored=%.2f",
					p.ProjectID, p.BilledHours, sp.BilledHours))
			}
			if p.BilledRevenue != sp.BilledRevenue {
				diffs = append(diffs, fmt.Sprintf("project %s billed revenue: live=%s stored=%s",
					p.ProjectID, p.BilledRevenue, sp.BilledRevenue))
			}
			if p.CarryoverOut != sp.CarryoverOut {
				diffs = append(diffs, fmt.Sprintf("project %s carryover out: live=%.2f stored=%.2f",
					p.ProjectID, p.CarryoverOut, sp.CarryoverOut))
			}
		}
	}
	for id := range storedProjects {
		if !liveSeen[id] {
			diffs = append(diffs, fmt.Sprintf("project %s: missing from live report", id))
		}
	}
	return diffs
}
