package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/brokercrm/crm-service/models"
)

type fakeGrantSource struct {
	perms map[string][]string
	err   error
}

func (f *fakeGrantSource) RolePermissions(_ context.Context, roleNames []string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []string
	for _, r := range roleNames {
		out = append(out, f.perms[r]...)
	}
	return out, nil
}

func TestAggregateUnionsRolesAndDirectGrants(t *testing.T) {
	src := &fakeGrantSource{perms: map[string][]string{
		models.RoleSales: {PermLeadsView, PermLeadsUpdate},
	}}
	agg := NewAggregator(src)

	ident := &models.Identity{
		ID:           "u1",
		Roles:        []string{models.RoleSales},
		DirectGrants: []string{PermLeadsAssign, PermLeadsUpdate},
	}
	set, err := agg.Aggregate(context.Background(), ident)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range []string{PermLeadsView, PermLeadsUpdate, PermLeadsAssign} {
		if !set.Has(p) {
			t.Fatalf("expected %s in effective set", p)
		}
	}
	// Deduplicated union.
	if got := len(set.Permissions()); got != 3 {
		t.Fatalf("expected 3 distinct permissions, got %d: %v", got, set.Permissions())
	}
}

func TestAggregateDirectGrantSurvivesRoleRevocation(t *testing.T) {
	// leads.assign was revoked from the role but remains directly granted.
	src := &fakeGrantSource{perms: map[string][]string{models.RoleSales: {PermLeadsView}}}
	ident := &models.Identity{
		ID:           "u1",
		Roles:        []string{models.RoleSales},
		DirectGrants: []string{PermLeadsAssign},
	}
	set, err := NewAggregator(src).Aggregate(context.Background(), ident)
	if err != nil {
		t.Fatal(err)
	}
	if !set.Has(PermLeadsAssign) {
		t.Fatal("direct grant must override role revocation")
	}
}

func TestAggregateFailsClosedWhenStoreUnavailable(t *testing.T) {
	src := &fakeGrantSource{err: errors.New("connection refused")}
	ident := &models.Identity{ID: "u1", Roles: []string{models.RoleSales}}
	_, err := NewAggregator(src).Aggregate(context.Background(), ident)
	if !errors.Is(err, ErrAuthorizationUnavailable) {
		t.Fatalf("expected ErrAuthorizationUnavailable, got %v", err)
	}
}

func TestAggregateNoRolesNoGrants(t *testing.T) {
	set, err := NewAggregator(&fakeGrantSource{}).Aggregate(context.Background(), &models.Identity{ID: "u1"})
	if err != nil {
		t.Fatal(err)
	}
	if set.Has(PermLeadsView) {
		t.Fatal("empty identity must have empty effective set")
	}
	if len(set.Permissions()) != 0 {
		t.Fatalf("expected empty set, got %v", set.Permissions())
	}
}
