// Package identity maps alternate (duplicate or merged) project and company
// identifiers to one canonical identifier. The maps are loaded from the alias
// tables ahead of a billing run; resolution itself is a pure lookup with no
// state in the billers.
package identity

import (
	"sort"

	"ore/internal/core"
)

// UnassignedClientID groups projects that have no client mapping at all.
// Kept visible in reports rather than dropped so the gap gets noticed.
const UnassignedClientID = "unassigned"

type Resolver struct {
	projectAliases map[string]string // alias project id -> canonical project id
	projectClients map[string]string // canonical project id -> client id
	clientAliases  map[string]string // alias/member client id -> primary client id
	clientNames    map[string]string // primary client id -> display name
}

func NewResolver(projectAliases, projectClients, clientAliases, clientNames map[string]string) *Resolver {
	if projectAliases == nil {
		projectAliases = map[string]string{}
	}
	if projectClients == nil {
		projectClients = map[string]string{}
	}
	if clientAliases == nil {
		clientAliases = map[string]string{}
	}
	if clientNames == nil {
		clientNames = map[string]string{}
	}
	return &Resolver{
		projectAliases: projectAliases,
		projectClients: projectClients,
		clientAliases:  clientAliases,
		clientNames:    clientNames,
	}
}

// CanonicalProjectID resolves an alias project id to its primary id.
// Unknown ids pass through unchanged; whether they are billable is decided by
// the config lookup, not here.
func (r *Resolver) CanonicalProjectID(projectID string) string {
	if canonical, ok := r.projectAliases[projectID]; ok {
		return canonical
	}
	return projectID
}

// CanonicalClientID resolves a member/alias client id to the primary id.
func (r *Resolver) CanonicalClientID(clientID string) string {
	if canonical, ok := r.clientAliases[clientID]; ok {
		return canonical
	}
	return clientID
}

// CanonicalCompany implements core.CompanyResolver: project id (alias or
// primary) to the single company identity its hours aggregate under.
func (r *Resolver) CanonicalCompany(projectID string) core.CanonicalCompany {
	pid := r.CanonicalProjectID(projectID)
	clientID, ok := r.projectClients[pid]
	if !ok || clientID == "" {
		return core.CanonicalCompany{ClientID: UnassignedClientID, DisplayName: "Unassigned"}
	}
	primary := r.CanonicalClientID(clientID)
	name := r.clientNames[primary]
	if name == "" {
		name = primary
	}
	return core.CanonicalCompany{ClientID: primary, DisplayName: name}
}

// ConfigIndex is a core.ConfigSource that canonicalizes alias project ids
// before the ID-only config lookup.
type ConfigIndex struct {
	resolver *Resolver
	configs  map[string]core.ProjectBillingConfig
}

func NewConfigIndex(resolver *Resolver, configs []core.ProjectBillingConfig) *ConfigIndex {
	byID := make(map[string]core.ProjectBillingConfig, len(configs))
	for _, cfg := range configs {
		byID[cfg.ProjectID] = cfg
	}
	return &ConfigIndex{resolver: resolver, configs: byID}
}

func (ix *ConfigIndex) BillingConfig(projectID string) (core.ProjectBillingConfig, bool) {
	cfg, ok := ix.configs[ix.resolver.CanonicalProjectID(projectID)]
	return cfg, ok
}

func (ix *ConfigIndex) ProjectIDs() []string {
	ids := make([]string, 0, len(ix.configs))
	for id := range ix.configs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
