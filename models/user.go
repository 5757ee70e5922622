package models

import "time"

// User is an agent or manager account. Authentication state only; the
// authorization layer never reads anything from this row except existence
// and status.
type User struct {
	ID           string    `gorm:"column:id;primaryKey" json:"id"`
	Username     string    `gorm:"column:username;uniqueIndex" json:"username"`
	PasswordHash string    `gorm:"column:password_hash" json:"-"`
	Status       string    `gorm:"column:status" json:"status"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
}

func (User) TableName() string { return "users" }

// Desk is a sales desk. Desk membership drives row-level visibility for
// manager and sales identities.
type Desk struct {
	ID        int64     `gorm:"column:id;primaryKey" json:"id"`
	Name      string    `gorm:"column:name" json:"name"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Desk) TableName() string { return "desks" }

// UserDesk assigns a user to a desk. A user may belong to several desks.
type UserDesk struct {
	ID         string    `gorm:"column:id;primaryKey"`
	UserID     string    `gorm:"column:user_id;index"`
	DeskID     int64     `gorm:"column:desk_id;index"`
	AssignedAt time.Time `gorm:"column:assigned_at"`
}

func (UserDesk) TableName() string { return "user_desks" }
