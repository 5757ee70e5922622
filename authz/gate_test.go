package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/brokercrm/crm-service/models"
)

type fakeDeskLookup struct {
	desks map[int64]int64
	err   error
}

func (f *fakeDeskLookup) DeskOf(_ context.Context, _ string, id int64) (int64, bool, error) {
	if f.err != nil {
		return 0, false, f.err
	}
	d, ok := f.desks[id]
	return d, ok, nil
}

func permSet(ident *models.Identity, perms ...string) *EffectivePermissionSet {
	m := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		m[p] = struct{}{}
	}
	return &EffectivePermissionSet{identity: ident, perms: m}
}

func TestRequirePermissionMembership(t *testing.T) {
	g := NewGate(&fakeDeskLookup{})
	set := permSet(&models.Identity{ID: "u1", Roles: []string{models.RoleSales}}, PermLeadsView)

	if err := g.RequirePermission(set, PermLeadsView); err != nil {
		t.Fatal(err)
	}
	if err := g.RequirePermission(set, PermLeadsAssign); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

// The only predicate-based bypass of the literal permission string in
// RequirePermission is super_admin. Plain admin still needs the string.
func TestRequirePermissionPredicateBypasses(t *testing.T) {
	g := NewGate(&fakeDeskLookup{})

	super := permSet(&models.Identity{ID: "u1", Roles: []string{models.RoleSuperAdmin}})
	if err := g.RequirePermission(super, PermLeadsAssign); err != nil {
		t.Fatalf("super_admin must bypass literal permission checks: %v", err)
	}

	admin := permSet(&models.Identity{ID: "u2", Roles: []string{models.RoleAdmin}})
	if err := g.RequirePermission(admin, PermLeadsAssign); !errors.Is(err, ErrForbidden) {
		t.Fatalf("admin without the literal permission must be denied, got %v", err)
	}
}

func TestRequirePermissionFailsClosedOnNilSet(t *testing.T) {
	g := NewGate(&fakeDeskLookup{})
	if err := g.RequirePermission(nil, PermLeadsView); !errors.Is(err, ErrAuthorizationUnavailable) {
		t.Fatalf("expected ErrAuthorizationUnavailable, got %v", err)
	}
}

func TestCanAccessDeskScoped(t *testing.T) {
	g := NewGate(&fakeDeskLookup{desks: map[int64]int64{1: 7, 2: 7, 3: 9}})
	set := permSet(&models.Identity{ID: "u1", Roles: []string{models.RoleSales}, DeskIDs: []int64{7}}, PermLeadsView)
	ctx := context.Background()

	for _, id := range []int64{1, 2} {
		ok, err := g.CanAccess(ctx, set, ResourceLeads, id)
		if err != nil || !ok {
			t.Fatalf("lead %d on own desk should be accessible: ok=%v err=%v", id, ok, err)
		}
	}
	ok, err := g.CanAccess(ctx, set, ResourceLeads, 3)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("lead on foreign desk must be inaccessible")
	}
}

// CanAccess consults the admin predicates through BuildScope: admin and
// super_admin short-circuit to true without a desk lookup.
func TestCanAccessAdminBypassesDeskLookup(t *testing.T) {
	g := NewGate(&fakeDeskLookup{err: errors.New("must not be called")})
	for _, role := range []string{models.RoleAdmin, models.RoleSuperAdmin} {
		set := permSet(&models.Identity{ID: "u1", Roles: []string{role}})
		ok, err := g.CanAccess(context.Background(), set, ResourceLeads, 42)
		if err != nil || !ok {
			t.Fatalf("role %s: expected scope all without lookup: ok=%v err=%v", role, ok, err)
		}
	}
}

func TestCanAccessMissingRecord(t *testing.T) {
	g := NewGate(&fakeDeskLookup{desks: map[int64]int64{}})
	set := permSet(&models.Identity{ID: "u1", Roles: []string{models.RoleSales}, DeskIDs: []int64{7}})
	ok, err := g.CanAccess(context.Background(), set, ResourceLeads, 404)
	if ok {
		t.Fatal("missing record must not be accessible")
	}
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCanAccessLookupFailureFailsClosed(t *testing.T) {
	g := NewGate(&fakeDeskLookup{err: errors.New("connection reset")})
	set := permSet(&models.Identity{ID: "u1", Roles: []string{models.RoleSales}, DeskIDs: []int64{7}})
	ok, err := g.CanAccess(context.Background(), set, ResourceLeads, 1)
	if ok {
		t.Fatal("lookup failure must deny")
	}
	if !errors.Is(err, ErrAuthorizationUnavailable) {
		t.Fatalf("expected ErrAuthorizationUnavailable, got %v", err)
	}
}

func TestParsePermission(t *testing.T) {
	p, err := ParsePermission(PermLeadsUpdate)
	if err != nil {
		t.Fatal(err)
	}
	if p.Resource != ResourceLeads || p.Verb != "update" {
		t.Fatalf("unexpected parse result: %+v", p)
	}
	for _, bad := range []string{"", "leads", ".update", "leads."} {
		if _, err := ParsePermission(bad); err == nil {
			t.Fatalf("expected parse error for %q", bad)
		}
	}
}
