package reports

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"ore/internal/cache"
	"ore/internal/core"
	"ore/internal/storage"
)

type fakeStore struct {
	entries []core.TimesheetEntry
	configs []core.ProjectBillingConfig
	aliases storage.AliasTables

	listEntriesCalls int
	summaries        map[string][]byte

	listErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{summaries: map[string][]byte{}}
}

func (f *fakeStore) ListEntries(_ context.Context, year, month int) ([]core.TimesheetEntry, error) {
	f.listEntriesCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.entries, nil
}

func (f *fakeStore) ListConfigs(_ context.Context, year, month int) ([]core.ProjectBillingConfig, error) {
	return f.configs, nil
}

func (f *fakeStore) LoadAliasTables(_ context.Context) (storage.AliasTables, error) {
	return f.aliases, nil
}

func (f *fakeStore) GetMonthlySummary(_ context.Context, year, month int) ([]byte, time.Time, error) {
	key := reportKey(year, month)
	payload, ok := f.summaries[key]
	if !ok {
		return nil, time.Time{}, storage.ErrSummaryNotFound
	}
	return payload, time.Date(2026, 1, 31, 23, 0, 0, 0, time.UTC), nil
}

func (f *fakeStore) SaveMonthlySummary(_ context.Context, year, month int, payload []byte) error {
	f.summaries[reportKey(year, month)] = payload
	return nil
}

func seededStore() *fakeStore {
	f := newFakeStore()
	f.entries = []core.TimesheetEntry{
		{
			WorkDate:  time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
			ProjectID: "P1", ProjectName: "Website",
			ClientID: "C1", ClientName: "Acme",
			TaskName: "Frontend", Minutes: 107,
		},
		{
			WorkDate:  time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC),
			ProjectID: "P1-old", ProjectName: "Website",
			ClientID: "C1", ClientName: "Acme",
			TaskName: "Backend", Minutes: 30,
		},
	}
	f.configs = []core.ProjectBillingConfig{
		{
			ProjectID:  "P1",
			HourlyRate: core.Money{Cents: 10000},
			Rounding:   core.RoundToQuarter,
			IsActive:   true,
		},
	}
	f.aliases = storage.AliasTables{
		ProjectAliases: map[string]string{"P1-old": "P1"},
		ProjectClients: map[string]string{"P1": "C1"},
		ClientNames:    map[string]string{"C1": "Acme"},
	}
	return f
}

func TestService_MonthlyReport(t *testing.T) {
	store := seededStore()
	svc := NewService(store)

	report, err := svc.MonthlyReport(context.Background(), 2026, 1)
	if err != nil {
		t.Fatalf("MonthlyReport: %v", err)
	}

	if !report.AllProjectsMatched {
		t.Errorf("AllProjectsMatched = false, unmatched = %+v", report.UnmatchedProjects)
	}
	if len(report.Result.Companies) != 1 {
		t.Fatalf("companies: got %d, want 1", len(report.Result.Companies))
	}
	company := report.Result.Companies[0]
	if company.ClientID != "C1" || company.ClientName != "Acme" {
		t.Errorf("company identity: %+v", company)
	}
	// 107min -> 120min and 30min (alias merged into P1) -> 30min, both
	// rounded per task to the quarter hour: 2.0h + 0.5h = 2.5h.
	if got := company.BilledHours; got != 2.5 {
		t.Errorf("BilledHours = %v, want 2.5", got)
	}
	if got := company.BilledRevenue.Cents; got != 25000 {
		t.Errorf("BilledRevenue = %d cents, want 25000", got)
	}
}

func TestService_MonthlyReport_InvalidMonth(t *testing.T) {
	svc := NewService(newFakeStore())
	if _, err := svc.MonthlyReport(context.Background(), 2026, 0); !errors.Is(err, core.ErrInvalidMonth) {
		t.Fatalf("error = %v, want ErrInvalidMonth", err)
	}
}

func TestService_MonthlyReport_Cache(t *testing.T) {
	store := seededStore()
	svc := NewService(store, WithCache(cache.NewLRUCache[core.MonthlyReport](10, time.Minute)))

	if _, err := svc.MonthlyReport(context.Background(), 2026, 1); err != nil {
		t.Fatalf("first read: %v", err)
	}
	if _, err := svc.MonthlyReport(context.Background(), 2026, 1); err != nil {
		t.Fatalf("second read: %v", err)
	}
	if store.listEntriesCalls != 1 {
		t.Errorf("store hit %d times, want 1 (second read should be cached)", store.listEntriesCalls)
	}

	svc.Invalidate(2026, 1)
	if _, err := svc.MonthlyReport(context.Background(), 2026, 1); err != nil {
		t.Fatalf("read after invalidate: %v", err)
	}
	if store.listEntriesCalls != 2 {
		t.Errorf("store hit %d times after invalidate, want 2", store.listEntriesCalls)
	}
}

func TestService_MonthlyReport_StoreError(t *testing.T) {
	store := seededStore()
	store.listErr = errors.New("disk on fire")
	svc := NewService(store)

	if _, err := svc.MonthlyReport(context.Background(), 2026, 1); err == nil {
		t.Fatal("expected error from failing store")
	}
}

func TestService_RecomputeAndStore(t *testing.T) {
	store := seededStore()
	svc := NewService(store, WithCache(cache.NewLRUCache[core.MonthlyReport](10, time.Minute)))

	report, err := svc.RecomputeAndStore(context.Background(), 2026, 1)
	if err != nil {
		t.Fatalf("RecomputeAndStore: %v", err)
	}

	payload, ok := store.summaries[reportKey(2026, 1)]
	if !ok {
		t.Fatal("summary was not persisted")
	}
	var stored core.MonthlyReport
	if err := json.Unmarshal(payload, &stored); err != nil {
		t.Fatalf("decode persisted summary: %v", err)
	}
	if stored.Result.BilledRevenue != report.Result.BilledRevenue {
		t.Errorf("persisted revenue %v, want %v", stored.Result.BilledRevenue, report.Result.BilledRevenue)
	}

	got, computedAt, err := svc.StoredReport(context.Background(), 2026, 1)
	if err != nil {
		t.Fatalf("StoredReport: %v", err)
	}
	if computedAt.IsZero() {
		t.Error("computedAt should not be zero")
	}
	if got.Result.BilledHours != report.Result.BilledHours {
		t.Errorf("stored BilledHours %v, want %v", got.Result.BilledHours, report.Result.BilledHours)
	}
}

func TestDiffReports(t *testing.T) {
	base := func() core.MonthlyReport {
		return core.MonthlyReport{
			Result: core.MonthlyBillingResult{
				BilledHours:   10,
				BilledRevenue: core.Money{Cents: 100000},
				Companies: []core.CompanyBillingResult{
					{
						ClientID: "C1",
						Projects: []core.ProjectBillingResult{
							{ProjectID: "P1", BilledHours: 10, BilledRevenue: core.Money{Cents: 100000}},
						},
					},
				},
			},
			AllProjectsMatched: true,
		}
	}

	t.Run("identical reports", func(t *testing.T) {
		if diffs := diffReports(base(), base()); len(diffs) != 0 {
			t.Errorf("expected no diffs, got %v", diffs)
		}
	})

	t.Run("revenue mismatch", func(t *testing.T) {
		stored := base()
		stored.Result.BilledRevenue = core.Money{Cents: 90000}
		stored.Result.Companies[0].Projects[0].BilledRevenue = core.Money{Cents: 90000}
		diffs := diffReports(base(), stored)
		if len(diffs) != 2 {
			t.Errorf("expected 2 diffs, got %v", diffs)
		}
	})

	t.Run("project missing from stored", func(t *testing.T) {
		stored := base()
		stored.Result.Companies = nil
		diffs := diffReports(base(), stored)
		if len(diffs) != 1 {
			t.Errorf("expected 1 diff, got %v", diffs)
		}
	})
}
