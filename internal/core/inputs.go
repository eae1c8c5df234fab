package core

import (
	"fmt"
	"sort"
)

// Ports for the injected lookups. Narrow on purpose so the engine stays
// unit-testable without a database.
type (
	// ConfigSource resolves an entry's external project id to its billing
	// configuration for the month. Resolution is ID-only: display names are
	// not unique or stable across the upstream time-tracking sources and
	// must never be used as a fallback. The returned config carries the
	// canonical project id, which may differ from the queried alias.
	//
	// ProjectIDs enumerates every configured canonical project id so the
	// builder can synthesize inputs for configured-but-absent projects.
	ConfigSource interface {
		BillingConfig(projectID string) (ProjectBillingConfig, bool)
		ProjectIDs() []string
	}

	// CompanyResolver maps a canonical project id to the single primary
	// company identity its hours aggregate under.
	CompanyResolver interface {
		CanonicalCompany(projectID string) CanonicalCompany
	}
)

// ConfigMap is a ConfigSource backed by a plain map keyed by canonical
// project id. Alias ids resolve only if present as extra keys.
type ConfigMap map[string]ProjectBillingConfig

func (m ConfigMap) BillingConfig(projectID string) (ProjectBillingConfig, bool) {
	cfg, ok := m[projectID]
	return cfg, ok
}

func (m ConfigMap) ProjectIDs() []string {
	ids := make([]string, 0, len(m))
	for id, cfg := range m {
		if id != cfg.ProjectID {
			// alias key
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// CompanyResolverFunc adapts a function to the CompanyResolver port.
type CompanyResolverFunc func(projectID string) CanonicalCompany

func (f CompanyResolverFunc) CanonicalCompany(projectID string) CanonicalCompany {
	return f(projectID)
}

type projectAgg struct {
	cfg   ProjectBillingConfig
	tasks map[string]int64
}

// BuildBillingInputs groups a flat entry list into the nested
// company -> project -> task shape the billers require. Grouping always uses
// the canonical identities: the config's project id and the resolver's
// company, never the entry's own raw ids, so alias and member identities
// aggregate under one primary.
//
// Entries whose project id fails to resolve are collected as unmatched and
// excluded from the inputs entirely. Configured projects with zero matching
// entries are synthesized as zero-task inputs when their configuration can
// still produce billing on its own (carryover-in, or an active minimum);
// omitting them would silently drop minimum-hours billing and carryover
// revenue.
//
// The only error case is ErrConfigOutOfSync, an internal invariant violation.
func BuildBillingInputs(entries []TimesheetEntry, configs ConfigSource, companies CompanyResolver) ([]CompanyInput, []UnmatchedProject, error) {
	projects := make(map[string]*projectAgg)
	unmatchedByID := make(map[string]*UnmatchedProject)

	for _, e := range entries {
		cfg, ok := lookupConfig(configs, e.ProjectID)
		if !ok {
			u, seen := unmatchedByID[e.ProjectID]
			if !seen {
				u = &UnmatchedProject{ProjectID: e.ProjectID, ProjectName: e.ProjectName}
				unmatchedByID[e.ProjectID] = u
			}
			u.TotalMinutes += e.Minutes
			continue
		}
		agg, seen := projects[cfg.ProjectID]
		if !seen {
			agg = &projectAgg{cfg: cfg, tasks: make(map[string]int64)}
			projects[cfg.ProjectID] = agg
		}
		agg.tasks[e.TaskName] += e.Minutes
	}

	// Post-pass: configured projects with no logged work this month still
	// bill their minimum and consume their carryover.
	for _, id := range configs.ProjectIDs() {
		if _, seen := projects[id]; seen {
			continue
		}
		cfg, ok := configs.BillingConfig(id)
		if !ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrConfigOutOfSync, id)
		}
		if !billsWithoutEntries(cfg) {
			continue
		}
		projects[id] = &projectAgg{cfg: cfg, tasks: make(map[string]int64)}
	}

	byCompany := make(map[string]*CompanyInput)
	for id, agg := range projects {
		company := companies.CanonicalCompany(id)
		ci, seen := byCompany[company.ClientID]
		if !seen {
			ci = &CompanyInput{ClientID: company.ClientID, ClientName: company.DisplayName}
			byCompany[company.ClientID] = ci
		}
		ci.Projects = append(ci.Projects, ProjectInput{
			Config: agg.cfg,
			Tasks:  sortedTasks(agg.tasks),
		})
	}

	inputs := make([]CompanyInput, 0, len(byCompany))
	for _, ci := range byCompany {
		sort.Slice(ci.Projects, func(i, j int) bool {
			return ci.Projects[i].Config.ProjectID < ci.Projects[j].Config.ProjectID
		})
		inputs = append(inputs, *ci)
	}
	sort.Slice(inputs, func(i, j int) bool { return inputs[i].ClientID < inputs[j].ClientID })

	unmatched := make([]UnmatchedProject, 0, len(unmatchedByID))
	for _, u := range unmatchedByID {
		unmatched = append(unmatched, *u)
	}
	sort.Slice(unmatched, func(i, j int) bool { return unmatched[i].ProjectID < unmatched[j].ProjectID })

	return inputs, unmatched, nil
}

func lookupConfig(configs ConfigSource, projectID string) (ProjectBillingConfig, bool) {
	if projectID == "" {
		return ProjectBillingConfig{}, false
	}
	return configs.BillingConfig(projectID)
}

// billsWithoutEntries reports whether a configuration produces billing even
// with zero logged minutes.
func billsWithoutEntries(cfg ProjectBillingConfig) bool {
	if cfg.CarryoverHoursIn > 0 {
		return true
	}
	return cfg.IsActive && cfg.MinimumHours != nil
}

func sortedTasks(minutes map[string]int64) []TaskInput {
	tasks := make([]TaskInput, 0, len(minutes))
	for name, m := range minutes {
		tasks = append(tasks, TaskInput{Name: name, TotalMinutes: m})
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Name < tasks[j].Name })
	return tasks
}
