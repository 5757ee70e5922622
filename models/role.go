package models

import "time"

// Row status for roles and permissions. Inactive rows are administered the
// same way but are ignored during permission aggregation.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Role is a flat named role. No hierarchy; elevated behavior exists only for
// the four built-in role names (see identity.go).
type Role struct {
	ID          string    `gorm:"column:id;primaryKey" json:"id"`
	Name        string    `gorm:"column:name;uniqueIndex" json:"name"`
	Status      string    `gorm:"column:status" json:"status"`
	Description string    `gorm:"column:description" json:"description"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Role) TableName() string { return "roles" }

// Permission is a named capability using the "resource.verb" convention,
// e.g. "leads.update".
type Permission struct {
	ID          string    `gorm:"column:id;primaryKey" json:"id"`
	Name        string    `gorm:"column:name;uniqueIndex" json:"name"`
	Status      string    `gorm:"column:status" json:"status"`
	Description string    `gorm:"column:description" json:"description"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Permission) TableName() string { return "permissions" }

// RolePermission grants a permission to a role.
type RolePermission struct {
	ID           string    `gorm:"column:id;primaryKey"`
	RoleID       string    `gorm:"column:role_id;index"`
	PermissionID string    `gorm:"column:permission_id;index"`
	GrantedAt    time.Time `gorm:"column:granted_at"`
}

func (RolePermission) TableName() string { return "role_permissions" }

// UserRole links a user to a role.
type UserRole struct {
	ID         string    `gorm:"column:id;primaryKey"`
	UserID     string    `gorm:"column:user_id;index"`
	RoleID     string    `gorm:"column:role_id;index"`
	AssignedAt time.Time `gorm:"column:assigned_at"`
}

func (UserRole) TableName() string { return "user_roles" }

// UserPermission is a direct grant to a user. Direct grants are an override
// mechanism: they stay effective even if the same permission is revoked from
// every role the user holds.
type UserPermission struct {
	ID           string    `gorm:"column:id;primaryKey"`
	UserID       string    `gorm:"column:user_id;index"`
	PermissionID string    `gorm:"column:permission_id;index"`
	GrantedBy    string    `gorm:"column:granted_by"`
	GrantedAt    time.Time `gorm:"column:granted_at"`
}

func (UserPermission) TableName() string { return "user_permissions" }
