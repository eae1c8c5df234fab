package core

import (
	"errors"
	"time"
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidRounding = errors.New("invalid rounding increment")
	ErrInvalidMonth    = errors.New("invalid month")

	// ErrConfigOutOfSync means a project that passed the matching step lost
	// its configuration before aggregation. That can only happen through a
	// programming bug in the input builder, so it fails loudly instead of
	// degrading the totals.
	ErrConfigOutOfSync = errors.New("billing config missing for matched project")
)

type (
	// TimesheetEntry is one recorded work record from an upstream
	// time-tracking source. Source of truth; never mutated by the engine.
	TimesheetEntry struct {
		WorkDate    time.Time
		ProjectID   string // external id; may be empty for unassigned work
		ProjectName string
		ClientID    string // the entry's own client id, not necessarily canonical
		ClientName  string
		TaskName    string
		UserName    string
		Minutes     int64
	}

	// ProjectBillingConfig is the per-project, per-month billing
	// configuration supplied by the caller. Read-only input.
	ProjectBillingConfig struct {
		ProjectID   string
		ProjectName string
		HourlyRate  Money
		Rounding    RoundingIncrement

		// MinimumHours only applies while the project is active.
		MinimumHours *float64
		MaximumHours *float64
		IsActive     bool

		CarryoverEnabled bool
		CarryoverHoursIn float64
		// CarryoverCap, when set, limits how many excess hours roll forward
		// in a single month; the remainder becomes unbillable.
		CarryoverCap *float64
		// CarryoverExpiryMonths, when set, is how many months a carried
		// batch stays usable. Enforced by the rollforward step, not here.
		CarryoverExpiryMonths *int
	}

	// CanonicalCompany is the primary identity all alias/member companies
	// aggregate under.
	CanonicalCompany struct {
		ClientID    string `json:"clientId"`
		DisplayName string `json:"displayName"`
	}

	// UnmatchedProject records an external project id with no resolvable
	// billing configuration. Its minutes are excluded from every total and
	// surfaced to the caller as a data-integrity error.
	UnmatchedProject struct {
		ProjectID    string `json:"projectId"`
		ProjectName  string `json:"projectName"`
		TotalMinutes int64  `json:"totalMinutes"`
	}
)

type (
	// TaskInput is a task's entries summed into one total before rounding.
	TaskInput struct {
		Name         string
		TotalMinutes int64
	}

	ProjectInput struct {
		Config ProjectBillingConfig
		Tasks  []TaskInput
	}

	CompanyInput struct {
		ClientID   string
		ClientName string
		Projects   []ProjectInput
	}
)

type (
	// TaskBillingResult is derived per task, recomputed on every query.
	TaskBillingResult struct {
		TaskName       string  `json:"taskName"`
		ActualMinutes  int64   `json:"actualMinutes"`
		ActualHours    float64 `json:"actualHours"`
		RoundedMinutes int64   `json:"roundedMinutes"`
		RoundedHours   float64 `json:"roundedHours"`
		BaseRevenue    Money   `json:"baseRevenue"`
	}

	// ProjectBillingResult is the project biller's terminal state.
	//
	// Invariant: BilledHours is within [0, max(AdjustedHours, MinimumHours)]
	// and never exceeds MaximumHours when one is set.
	ProjectBillingResult struct {
		ProjectID   string `json:"projectId"`
		ProjectName string `json:"projectName"`
		HourlyRate  Money  `json:"hourlyRate"`

		ActualMinutes  int64   `json:"actualMinutes"`
		ActualHours    float64 `json:"actualHours"`
		RoundedMinutes int64   `json:"roundedMinutes"`
		RoundedHours   float64 `json:"roundedHours"`

		CarryoverIn       float64 `json:"carryoverIn"`
		AdjustedHours     float64 `json:"adjustedHours"`
		BilledHours       float64 `json:"billedHours"`
		UnbillableHours   float64 `json:"unbillableHours"`
		CarryoverOut      float64 `json:"carryoverOut"`
		CarryoverConsumed float64 `json:"carryoverConsumed"`
		MinimumPadding    float64 `json:"minimumPadding"`

		MinimumApplied bool `json:"minimumApplied"`
		MaximumApplied bool `json:"maximumApplied"`

		BaseRevenue   Money `json:"baseRevenue"`
		BilledRevenue Money `json:"billedRevenue"`

		Adjustment BillingAdjustment   `json:"adjustment"`
		Tasks      []TaskBillingResult `json:"tasks"`
	}

	// CompanyBillingResult is a pure roll-up of a company's projects.
	CompanyBillingResult struct {
		ClientID   string `json:"clientId"`
		ClientName string `json:"clientName"`

		ActualHours     float64 `json:"actualHours"`
		RoundedHours    float64 `json:"roundedHours"`
		AdjustedHours   float64 `json:"adjustedHours"`
		BilledHours     float64 `json:"billedHours"`
		UnbillableHours float64 `json:"unbillableHours"`
		CarryoverOut    float64 `json:"carryoverOut"`

		BaseRevenue   Money `json:"baseRevenue"`
		BilledRevenue Money `json:"billedRevenue"`

		Projects []ProjectBillingResult `json:"projects"`
	}

	// MonthlyBillingResult is the grand total every report reads from.
	MonthlyBillingResult struct {
		ActualHours     float64 `json:"actualHours"`
		RoundedHours    float64 `json:"roundedHours"`
		AdjustedHours   float64 `json:"adjustedHours"`
		BilledHours     float64 `json:"billedHours"`
		UnbillableHours float64 `json:"unbillableHours"`
		CarryoverOut    float64 `json:"carryoverOut"`

		BaseRevenue   Money `json:"baseRevenue"`
		BilledRevenue Money `json:"billedRevenue"`

		Companies []CompanyBillingResult `json:"companies"`
	}

	// MonthlyReport pairs the computed result with the data-integrity
	// findings. Callers are expected to gate on AllProjectsMatched before
	// trusting a total.
	MonthlyReport struct {
		Result             MonthlyBillingResult `json:"result"`
		UnmatchedProjects  []UnmatchedProject   `json:"unmatchedProjects"`
		AllProjectsMatched bool                 `json:"allProjectsMatched"`
	}
)

// ValidateMinMaxLimits reports whether a minimum/maximum pair is consistent.
// The project biller assumes min <= max and does not re-check on every call;
// callers must refuse to persist a configuration this returns false for.
func ValidateMinMaxLimits(minHours, maxHours *float64) bool {
	if minHours != nil && *minHours < 0 {
		return false
	}
	if maxHours != nil && *maxHours < 0 {
		return false
	}
	if minHours != nil && maxHours != nil && *minHours > *maxHours {
		return false
	}
	return true
}
