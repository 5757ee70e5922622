package models

import "time"

// Lead is a sales lead. DeskID is the column the access filter scopes on.
type Lead struct {
	ID         int64     `gorm:"column:id;primaryKey" json:"id"`
	DeskID     int64     `gorm:"column:desk_id;index" json:"desk_id"`
	AssignedTo *string   `gorm:"column:assigned_to;index" json:"assigned_to,omitempty"`
	Status     string    `gorm:"column:status" json:"status"`
	Source     string    `gorm:"column:source" json:"source"`
	Campaign   string    `gorm:"column:campaign" json:"campaign"`
	Email      string    `gorm:"column:email" json:"email"`
	Phone      string    `gorm:"column:phone" json:"phone"`
	Country    string    `gorm:"column:country" json:"country"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Lead) TableName() string { return "leads" }

// TradingAccount is a trading account linked to a lead. It carries its own
// desk_id so desk scoping never needs a join through leads.
type TradingAccount struct {
	ID        int64     `gorm:"column:id;primaryKey" json:"id"`
	LeadID    int64     `gorm:"column:lead_id;index" json:"lead_id"`
	DeskID    int64     `gorm:"column:desk_id;index" json:"desk_id"`
	Login     string    `gorm:"column:login;uniqueIndex" json:"login"`
	Currency  string    `gorm:"column:currency" json:"currency"`
	GroupName string    `gorm:"column:group_name" json:"group_name"`
	Leverage  int       `gorm:"column:leverage" json:"leverage"`
	Status    string    `gorm:"column:status" json:"status"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (TradingAccount) TableName() string { return "trading_accounts" }
