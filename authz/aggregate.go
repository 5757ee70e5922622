package authz

import (
	"context"
	"fmt"
	"sort"

	"github.com/brokercrm/crm-service/models"
)

// GrantSource provides the role->permission join. Only active permissions
// attached to active roles may be returned.
type GrantSource interface {
	RolePermissions(ctx context.Context, roleNames []string) ([]string, error)
}

// EffectivePermissionSet is the per-request union of role permissions and
// direct grants, plus the role predicates several gates consult before
// literal permission strings. Recomputed on every request; never cache it.
type EffectivePermissionSet struct {
	identity *models.Identity
	perms    map[string]struct{}
}

// Has reports membership of the named permission.
func (s *EffectivePermissionSet) Has(name string) bool {
	_, ok := s.perms[name]
	return ok
}

// Permissions returns the sorted effective permission names.
func (s *EffectivePermissionSet) Permissions() []string {
	out := make([]string, 0, len(s.perms))
	for p := range s.perms {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Identity returns the identity this set was computed for.
func (s *EffectivePermissionSet) Identity() *models.Identity { return s.identity }

// IsSuperAdmin: bypasses all filters, including coarse permission checks.
func (s *EffectivePermissionSet) IsSuperAdmin() bool {
	return s.identity.HasRole(models.RoleSuperAdmin)
}

// IsAdmin: scope "all" on every resource, but still gated by explicit
// permission checks on mutating endpoints.
func (s *EffectivePermissionSet) IsAdmin() bool {
	return s.identity.HasRole(models.RoleAdmin)
}

func (s *EffectivePermissionSet) IsManager() bool {
	return s.identity.HasRole(models.RoleManager)
}

func (s *EffectivePermissionSet) IsSales() bool {
	return s.identity.HasRole(models.RoleSales)
}

// Aggregator computes effective permission sets.
type Aggregator struct {
	src GrantSource
}

func NewAggregator(src GrantSource) *Aggregator { return &Aggregator{src: src} }

// Aggregate unions the permissions of the identity's active roles with its
// direct grants. Union semantics: a permission revoked from a role is still
// effective while a direct grant for it exists. A store failure yields
// ErrAuthorizationUnavailable and callers must treat it as deny.
func (a *Aggregator) Aggregate(ctx context.Context, ident *models.Identity) (*EffectivePermissionSet, error) {
	perms := make(map[string]struct{})
	if len(ident.Roles) > 0 {
		rolePerms, err := a.src.RolePermissions(ctx, ident.Roles)
		if err != nil {
			return nil, fmt.Errorf("%w: role permissions: %v", ErrAuthorizationUnavailable, err)
		}
		for _, p := range rolePerms {
			perms[p] = struct{}{}
		}
	}
	for _, p := range ident.DirectGrants {
		perms[p] = struct{}{}
	}
	return &EffectivePermissionSet{identity: ident, perms: perms}, nil
}
