package models

// Identity is the authenticated caller of a single request. It is built by
// the auth resolver from a validated credential plus a fresh store read and
// is never persisted or reused across requests, so role/desk changes take
// effect on the very next call.
type Identity struct {
	ID           string
	DeskIDs      []int64
	Roles        []string
	DirectGrants []string
}

// Built-in role names. These four carry hardcoded semantics in the
// authorization layer; all other roles only matter through their grants.
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleManager    = "manager"
	RoleSales      = "sales"
)

// HasRole reports whether the identity holds the named role.
func (i *Identity) HasRole(name string) bool {
	for _, r := range i.Roles {
		if r == name {
			return true
		}
	}
	return false
}

// InDesk reports whether deskID is one of the identity's desks.
func (i *Identity) InDesk(deskID int64) bool {
	for _, d := range i.DeskIDs {
		if d == deskID {
			return true
		}
	}
	return false
}
