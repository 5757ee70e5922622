package authz

import (
	"testing"

	"github.com/brokercrm/crm-service/models"
)

func setFor(ident *models.Identity) *EffectivePermissionSet {
	return &EffectivePermissionSet{identity: ident, perms: map[string]struct{}{}}
}

func TestBuildScopeAdminSeesAll(t *testing.T) {
	for _, role := range []string{models.RoleSuperAdmin, models.RoleAdmin} {
		set := setFor(&models.Identity{ID: "u1", Roles: []string{role}})
		scope := BuildScope(set, ResourceLeads)
		if scope.Kind != ScopeAll {
			t.Fatalf("role %s: expected ScopeAll, got %v", role, scope.Kind)
		}
		if !scope.AllowsDesk(999) {
			t.Fatalf("role %s: ScopeAll must allow any desk", role)
		}
	}
}

func TestBuildScopeDeskScopedForManagerAndSales(t *testing.T) {
	for _, role := range []string{models.RoleManager, models.RoleSales} {
		set := setFor(&models.Identity{ID: "u1", Roles: []string{role}, DeskIDs: []int64{7, 11}})
		scope := BuildScope(set, ResourceLeads)
		if scope.Kind != ScopeDesk {
			t.Fatalf("role %s: expected ScopeDesk, got %v", role, scope.Kind)
		}
		if !scope.AllowsDesk(7) || !scope.AllowsDesk(11) {
			t.Fatalf("role %s: member desks must be allowed", role)
		}
		if scope.AllowsDesk(9) {
			t.Fatalf("role %s: foreign desk must be denied", role)
		}
	}
}

func TestBuildScopeDeniedOtherwise(t *testing.T) {
	// A role with no hardcoded semantics gets nothing at row level.
	set := setFor(&models.Identity{ID: "u1", Roles: []string{"compliance"}, DeskIDs: []int64{7}})
	if scope := BuildScope(set, ResourceLeads); scope.Kind != ScopeDenied {
		t.Fatalf("expected ScopeDenied, got %v", scope.Kind)
	}

	// Manager on a non desk-scoped resource is denied as well.
	set = setFor(&models.Identity{ID: "u1", Roles: []string{models.RoleManager}, DeskIDs: []int64{7}})
	if scope := BuildScope(set, "settings"); scope.Kind != ScopeDenied {
		t.Fatalf("expected ScopeDenied for non desk-scoped resource, got %v", scope.Kind)
	}
}

func TestDeskScopedRegistry(t *testing.T) {
	if !DeskScoped(ResourceLeads) || !DeskScoped(ResourceTradingAccounts) {
		t.Fatal("leads and trading_accounts must be desk-scoped")
	}
	if DeskScoped("roles") {
		t.Fatal("roles must not be desk-scoped")
	}
}
