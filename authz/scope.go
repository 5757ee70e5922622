package authz

import "gorm.io/gorm"

// ScopeKind classifies an access scope.
type ScopeKind int

const (
	// ScopeDenied hides every row.
	ScopeDenied ScopeKind = iota
	// ScopeAll exposes every row.
	ScopeAll
	// ScopeDesk exposes rows whose desk_id is in DeskIDs.
	ScopeDesk
)

// AccessScope is the row-level visibility predicate for one identity and
// one resource. It is the single source of truth for both list filtering
// (Apply) and single-record checks (AllowsDesk); keeping one function for
// both prevents list and detail endpoints from diverging.
type AccessScope struct {
	Kind    ScopeKind
	DeskIDs []int64
}

// AllowsDesk reports whether a row on the given desk is visible.
func (s AccessScope) AllowsDesk(deskID int64) bool {
	switch s.Kind {
	case ScopeAll:
		return true
	case ScopeDesk:
		for _, d := range s.DeskIDs {
			if d == deskID {
				return true
			}
		}
	}
	return false
}

// Apply restricts a list query to the scope.
func (s AccessScope) Apply(q *gorm.DB) *gorm.DB {
	switch s.Kind {
	case ScopeAll:
		return q
	case ScopeDesk:
		return q.Where("desk_id IN ?", s.DeskIDs)
	default:
		return q.Where("1 = 0")
	}
}

// deskScopedResources are the lead-like resources whose rows carry a
// desk_id the filter can scope on.
var deskScopedResources = map[string]bool{
	ResourceLeads:           true,
	ResourceTradingAccounts: true,
}

// DeskScoped reports whether the resource participates in desk scoping.
func DeskScoped(resource string) bool { return deskScopedResources[resource] }

// BuildScope derives the visibility predicate for the identity behind set.
// super_admin and admin see all rows; manager and sales see desk-scoped
// rows of lead-like resources; everyone else sees nothing. Scopes are
// derived per request and must never be cached across requests.
func BuildScope(set *EffectivePermissionSet, resource string) AccessScope {
	if set.IsSuperAdmin() || set.IsAdmin() {
		return AccessScope{Kind: ScopeAll}
	}
	if DeskScoped(resource) && (set.IsManager() || set.IsSales()) {
		return AccessScope{Kind: ScopeDesk, DeskIDs: set.Identity().DeskIDs}
	}
	return AccessScope{Kind: ScopeDenied}
}
