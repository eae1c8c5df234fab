package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"ore/internal/core"
	"ore/internal/storage"
)

// monthlyReportResponse wraps the report with its period so clients do not
// have to echo the query parameters back.
type monthlyReportResponse struct {
	Year       int        `json:"year"`
	Month      int        `json:"month"`
	Source     string     `json:"source"`
	ComputedAt *time.Time `json:"computedAt,omitempty"`
	core.MonthlyReport
}

// handleMonthlyReport serves GET /api/reports/monthly?year=&month=.
// With source=stored the worker's precomputed summary is returned instead
// of a live computation.
func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	year, month, err := parseYearMonth(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	resp := monthlyReportResponse{Year: year, Month: month, Source: "live"}
	switch r.URL.Query().Get("source") {
	case "", "live":
		resp.MonthlyReport, err = s.reports.MonthlyReport(r.Context(), year, month)
	case "stored":
		var computedAt time.Time
		resp.MonthlyReport, computedAt, err = s.reports.StoredReport(r.Context(), year, month)
		resp.Source = "stored"
		if err == nil {
			resp.ComputedAt = &computedAt
		}
	default:
		writeError(w, r, http.StatusBadRequest, "invalid source: must be live or stored")
		return
	}
	if err != nil {
		s.writeReportError(w, r, year, month, err)
		return
	}

	writeJSON(w, r, http.StatusOK, resp)
}

// unmatchedResponse reports the data-integrity view of a month: entries
// whose project has no resolvable billing configuration.
type unmatchedResponse struct {
	Year               int                     `json:"year"`
	Month              int                     `json:"month"`
	AllProjectsMatched bool                    `json:"allProjectsMatched"`
	UnmatchedProjects  []core.UnmatchedProject `json:"unmatchedProjects"`
}

// handleUnmatchedProjects serves GET /api/reports/unmatched?year=&month=.
func (s *Server) handleUnmatchedProjects(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	year, month, err := parseYearMonth(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	report, err := s.reports.MonthlyReport(r.Context(), year, month)
	if err != nil {
		s.writeReportError(w, r, year, month, err)
		return
	}

	unmatched := report.UnmatchedProjects
	if unmatched == nil {
		unmatched = []core.UnmatchedProject{}
	}
	writeJSON(w, r, http.StatusOK, unmatchedResponse{
		Year:               year,
		Month:              month,
		AllProjectsMatched: report.AllProjectsMatched,
		UnmatchedProjects:  unmatched,
	})
}

func (s *Server) writeReportError(w http.ResponseWriter, r *http.Request, year, month int, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidMonth):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrSummaryNotFound):
		writeError(w, r, http.StatusNotFound, "no stored summary for this month")
	case errors.Is(err, core.ErrConfigOutOfSync):
		slog.ErrorContext(r.Context(), "Billing configuration out of sync",
			"year", year, "month", month, "error", err)
		writeError(w, r, http.StatusConflict, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Report computation failed",
			"year", year, "month", month, "error", err)
		writeError(w, r, http.StatusInternalServerError, "report computation failed")
	}
}
