package authz

import (
	"fmt"
	"strings"
)

// Permission names follow the "resource.verb" convention. The catalog below
// is seeded into the permissions table; roles and direct grants reference
// these by name.
const (
	PermLeadsView   = "leads.view"
	PermLeadsUpdate = "leads.update"
	PermLeadsAssign = "leads.assign"
	PermLeadsDelete = "leads.delete"

	PermTradingAccountsView   = "trading_accounts.view"
	PermTradingAccountsUpdate = "trading_accounts.update"

	PermRolesManage  = "roles.manage"
	PermActivityView = "activity.view"
)

// Resource names the access filter knows about.
const (
	ResourceLeads           = "leads"
	ResourceTradingAccounts = "trading_accounts"
)

// Permission is a parsed "resource.verb" capability string.
type Permission struct {
	Resource string
	Verb     string
}

func (p Permission) String() string { return p.Resource + "." + p.Verb }

// ParsePermission splits a "resource.verb" string. The verb is the segment
// after the last dot, so resource names may themselves contain dots.
func ParsePermission(s string) (Permission, error) {
	s = strings.TrimSpace(s)
	i := strings.LastIndex(s, ".")
	if i <= 0 || i == len(s)-1 {
		return Permission{}, fmt.Errorf("invalid permission string: %q", s)
	}
	return Permission{Resource: s[:i], Verb: s[i+1:]}, nil
}
