package core

import (
	"errors"
	"testing"
	"time"
)

func testCompanies(byProject map[string]CanonicalCompany) CompanyResolver {
	return CompanyResolverFunc(func(projectID string) CanonicalCompany {
		if c, ok := byProject[projectID]; ok {
			return c
		}
		return CanonicalCompany{ClientID: "unknown", DisplayName: "Unknown"}
	})
}

func entry(projectID, task string, minutes int64) TimesheetEntry {
	return TimesheetEntry{
		WorkDate:    time.Date(2026, 7, 14, 0, 0, 0, 0, time.UTC),
		ProjectID:   projectID,
		ProjectName: "Project " + projectID,
		TaskName:    task,
		Minutes:     minutes,
	}
}

func TestBuildBillingInputsGroupsByTask(t *testing.T) {
	configs := ConfigMap{
		"P1": {ProjectID: "P1", HourlyRate: Money{Cents: 5000}, Rounding: RoundToQuarter, IsActive: true},
	}
	companies := testCompanies(map[string]CanonicalCompany{
		"P1": {ClientID: "C1", DisplayName: "Acme"},
	})
	// Two entries on the same task on different days sum before rounding.
	entries := []TimesheetEntry{
		entry("P1", "dev", 20),
		entry("P1", "dev", 25),
		entry("P1", "qa", 10),
	}

	inputs, unmatched, err := BuildBillingInputs(entries, configs, companies)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(unmatched) != 0 {
		t.Fatalf("expected no unmatched, got %v", unmatched)
	}
	if len(inputs) != 1 || len(inputs[0].Projects) != 1 {
		t.Fatalf("expected 1 company with 1 project, got %+v", inputs)
	}
	tasks := inputs[0].Projects[0].Tasks
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %+v", tasks)
	}
	if tasks[0].Name != "dev" || tasks[0].TotalMinutes != 45 {
		t.Fatalf("dev task: got %+v", tasks[0])
	}
	if tasks[1].Name != "qa" || tasks[1].TotalMinutes != 10 {
		t.Fatalf("qa task: got %+v", tasks[1])
	}
}

func TestBuildBillingInputsCanonicalAliases(t *testing.T) {
	canonical := ProjectBillingConfig{ProjectID: "P1", HourlyRate: Money{Cents: 5000}, IsActive: true}
	configs := ConfigMap{
		"P1":     canonical,
		"P1-alt": canonical, // merged duplicate id resolving to the same canonical
	}
	companies := testCompanies(map[string]CanonicalCompany{
		"P1": {ClientID: "C1", DisplayName: "Acme"},
	})
	entries := []TimesheetEntry{
		entry("P1", "dev", 60),
		entry("P1-alt", "dev", 60),
	}

	inputs, _, err := BuildBillingInputs(entries, configs, companies)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inputs) != 1 || len(inputs[0].Projects) != 1 {
		t.Fatalf("alias entries did not merge: %+v", inputs)
	}
	if got := inputs[0].Projects[0].Tasks[0].TotalMinutes; got != 120 {
		t.Fatalf("merged minutes: got %d, want 120", got)
	}
}

func TestBuildBillingInputsUnmatched(t *testing.T) {
	configs := ConfigMap{
		"P1": {ProjectID: "P1", HourlyRate: Money{Cents: 5000}, IsActive: true},
	}
	companies := testCompanies(map[string]CanonicalCompany{
		"P1": {ClientID: "C1", DisplayName: "Acme"},
	})
	entries := []TimesheetEntry{
		entry("P1", "dev", 60),
		entry("X123", "dev", 90),
		entry("X123", "qa", 30),
		entry("", "dev", 15), // missing id never resolves
	}

	report, err := CalculateMonthlyReport(entries, configs, companies)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.AllProjectsMatched {
		t.Fatalf("expected allProjectsMatched=false")
	}
	if len(report.UnmatchedProjects) != 2 {
		t.Fatalf("expected 2 unmatched projects, got %+v", report.UnmatchedProjects)
	}
	var x123 *UnmatchedProject
	for i := range report.UnmatchedProjects {
		if report.UnmatchedProjects[i].ProjectID == "X123" {
			x123 = &report.UnmatchedProjects[i]
		}
	}
	if x123 == nil || x123.TotalMinutes != 120 {
		t.Fatalf("X123 unmatched: got %+v", x123)
	}
	// Unmatched minutes are excluded from every total.
	if report.Result.BilledHours != 1 {
		t.Fatalf("billed hours: got %v, want 1", report.Result.BilledHours)
	}
}

func TestBuildBillingInputsZeroEntryInjection(t *testing.T) {
	configs := ConfigMap{
		"P1": {ProjectID: "P1", HourlyRate: Money{Cents: 5000}, MinimumHours: fptr(10), IsActive: true},
		"P2": {ProjectID: "P2", HourlyRate: Money{Cents: 4000}, CarryoverHoursIn: 3, CarryoverEnabled: true},
		"P3": {ProjectID: "P3", HourlyRate: Money{Cents: 4000}, IsActive: true}, // nothing to bill, stays absent
	}
	companies := testCompanies(map[string]CanonicalCompany{
		"P1": {ClientID: "C1", DisplayName: "Acme"},
		"P2": {ClientID: "C1", DisplayName: "Acme"},
		"P3": {ClientID: "C1", DisplayName: "Acme"},
	})

	report, err := CalculateMonthlyReport(nil, configs, companies)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Result.Companies) != 1 {
		t.Fatalf("expected 1 company, got %+v", report.Result.Companies)
	}
	projects := report.Result.Companies[0].Projects
	if len(projects) != 2 {
		t.Fatalf("expected P1 and P2 synthesized, got %+v", projects)
	}
	// Minimum fires for P1, carryover-in bills for P2.
	if projects[0].ProjectID != "P1" || projects[0].BilledHours != 10 {
		t.Fatalf("P1: got %+v", projects[0])
	}
	if projects[1].ProjectID != "P2" || projects[1].BilledHours != 3 {
		t.Fatalf("P2: got %+v", projects[1])
	}
	if report.Result.BilledRevenue.Cents != 50000+12000 {
		t.Fatalf("billed revenue: got %d, want 62000", report.Result.BilledRevenue.Cents)
	}
}

// Aggregates must equal the normalized sums of their children exactly.
func TestRoundTripAggregation(t *testing.T) {
	configs := ConfigMap{
		"P1": {ProjectID: "P1", HourlyRate: Money{Cents: 8550}, Rounding: RoundToQuarter, IsActive: true},
		"P2": {ProjectID: "P2", HourlyRate: Money{Cents: 12000}, Rounding: RoundToFive, MaximumHours: fptr(2), IsActive: true},
		"P3": {ProjectID: "P3", HourlyRate: Money{Cents: 9999}, MinimumHours: fptr(7), IsActive: true},
	}
	companies := testCompanies(map[string]CanonicalCompany{
		"P1": {ClientID: "C1", DisplayName: "Acme"},
		"P2": {ClientID: "C1", DisplayName: "Acme"},
		"P3": {ClientID: "C2", DisplayName: "Globex"},
	})
	entries := []TimesheetEntry{
		entry("P1", "dev", 123),
		entry("P1", "qa", 37),
		entry("P2", "ops", 456),
		entry("P3", "dev", 61),
	}

	report, err := CalculateMonthlyReport(entries, configs, companies)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var companySum Money
	for _, c := range report.Result.Companies {
		var projectSum Money
		for _, p := range c.Projects {
			projectSum = projectSum.Add(p.BilledRevenue)
		}
		if projectSum != c.BilledRevenue {
			t.Fatalf("company %s: project sum %d != company total %d",
				c.ClientID, projectSum.Cents, c.BilledRevenue.Cents)
		}
		companySum = companySum.Add(c.BilledRevenue)
	}
	if companySum != report.Result.BilledRevenue {
		t.Fatalf("company sum %d != monthly total %d", companySum.Cents, report.Result.BilledRevenue.Cents)
	}
}

// badConfigSource enumerates a project id it cannot resolve; this simulates
// the filtering and aggregation steps falling out of sync.
type badConfigSource struct{}

func (badConfigSource) BillingConfig(string) (ProjectBillingConfig, bool) {
	return ProjectBillingConfig{}, false
}
func (badConfigSource) ProjectIDs() []string { return []string{"ghost"} }

func TestBuildBillingInputsConfigOutOfSync(t *testing.T) {
	_, _, err := BuildBillingInputs(nil, badConfigSource{}, testCompanies(nil))
	if !errors.Is(err, ErrConfigOutOfSync) {
		t.Fatalf("expected ErrConfigOutOfSync, got %v", err)
	}
}
