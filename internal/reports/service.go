// Package reports computes monthly billing reports from stored timesheet
// data and serves them to the HTTP layer.
package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"ore/internal/cache"
	"ore/internal/core"
	"ore/internal/identity"
	"ore/internal/log"
	"ore/internal/storage"
)

// Store is the slice of the storage layer the report service needs.
type Store interface {
	ListEntries(ctx context.Context, year, month int) ([]core.TimesheetEntry, error)
	ListConfigs(ctx context.Context, year, month int) ([]core.ProjectBillingConfig, error)
	LoadAliasTables(ctx context.Context) (storage.AliasTables, error)
	GetMonthlySummary(ctx context.Context, year, month int) ([]byte, time.Time, error)
	SaveMonthlySummary(ctx context.Context, year, month int, payload []byte) error
}

type Service struct {
	store           Store
	cache           *cache.LRUCache[core.MonthlyReport]
	parallelCompare bool
}

type Option func(*Service)

// WithCache enables LRU caching of computed reports.
func WithCache(c *cache.LRUCache[core.MonthlyReport]) Option {
	return func(s *Service) { s.cache = c }
}

// WithParallelCompare logs discrepancies between the live computation and
// the stored monthly summary on every read.
func WithParallelCompare(enabled bool) Option {
	return func(s *Service) { s.parallelCompare = enabled }
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MonthlyReport returns the billing report for one month. The live
// computation is authoritative; stored summaries only serve the parallel
// comparison and external consumers of the database.
func (s *Service) MonthlyReport(ctx context.Context, year, month int) (core.MonthlyReport, error) {
	if month < 1 || month > 12 {
		return core.MonthlyReport{}, core.ErrInvalidMonth
	}

	key := reportKey(year, month)
	if s.cache != nil {
		if report, ok := s.cache.Get(key); ok {
			return report, nil
		}
	}

	report, err := s.Compute(ctx, year, month)
	if err != nil {
		return core.MonthlyReport{}, err
	}

	if s.cache != nil {
		s.cache.Set(key, report)
	}
	if s.parallelCompare {
		s.compareWithStored(ctx, year, month, report)
	}
	return report, nil
}

// Compute runs the billing calculation for one month from current data,
// bypassing the cache.
func (s *Service) Compute(ctx context.Context, year, month int) (core.MonthlyReport, error) {
	var (
		entries []core.TimesheetEntry
		configs []core.ProjectBillingConfig
		aliases storage.AliasTables
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		entries, err = s.store.ListEntries(gctx, year, month)
		return err
	})
	g.Go(func() error {
		var err error
		configs, err = s.store.ListConfigs(gctx, year, month)
		return err
	})
	g.Go(func() error {
		var err error
		aliases, err = s.store.LoadAliasTables(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.MonthlyReport{}, fmt.Errorf("load month data: %w", err)
	}

	resolver := identity.NewResolver(aliases.ProjectAliases, aliases.ProjectClients, aliases.ClientAliases, aliases.ClientNames)
	index := identity.NewConfigIndex(resolver, configs)

	report, err := core.CalculateMonthlyReport(entries, index, resolver)
	if err != nil {
		return core.MonthlyReport{}, fmt.Errorf("compute %d-%02d: %w", year, month, err)
	}

	slog.InfoContext(ctx, "Computed monthly report",
		log.FieldComponent, log.ComponentReports,
		log.FieldOperation, log.OpCompute,
		log.FieldYear, year,
		log.FieldMonth, month,
		log.FieldEntryCount, len(entries),
		log.FieldConfigCount, len(configs),
		log.FieldBilledCents, report.Result.BilledRevenue.Cents,
		log.FieldUnmatched, len(report.UnmatchedProjects))
	return report, nil
}

// StoredReport returns the precomputed summary the worker last persisted.
func (s *Service) StoredReport(ctx context.Context, year, month int) (core.MonthlyReport, time.Time, error) {
	payload, computedAt, err := s.store.GetMonthlySummary(ctx, year, month)
	if err != nil {
		return core.MonthlyReport{}, time.Time{}, err
	}
	var report core.MonthlyReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return core.MonthlyReport{}, time.Time{}, fmt.Errorf("decode stored summary %d-%02d: %w", year, month, err)
	}
	return report, computedAt, nil
}

// RecomputeAndStore computes the month from current data and persists the
// result as the month's summary. The cache entry is dropped so the next
// read sees fresh data.
func (s *Service) RecomputeAndStore(ctx context.Context, year, month int) (core.MonthlyReport, error) {
	report, err := s.Compute(ctx, year, month)
	if err != nil {
		return core.MonthlyReport{}, err
	}
	payload, err := json.Marshal(report)
	if err != nil {
		return core.MonthlyReport{}, fmt.Errorf("encode summary %d-%02d: %w", year, month, err)
	}
	if err := s.store.SaveMonthlySummary(ctx, year, month, payload); err != nil {
		return core.MonthlyReport{}, err
	}
	s.Invalidate(year, month)
	return report, nil
}

// Invalidate drops the cached report for one month.
func (s *Service) Invalidate(year, month int) {
	if s.cache != nil {
		s.cache.Delete(reportKey(year, month))
	}
}

func reportKey(year, month int) string {
	return fmt.Sprintf("monthly:%04d-%02d", year, month)
}
