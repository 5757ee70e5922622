package models

import (
	"encoding/json"
	"time"
)

// ActivityLog records one committed change to one resource row. Written
// best-effort after commit; a failed write here never fails the request
// that caused it.
type ActivityLog struct {
	ID         string          `gorm:"column:id;primaryKey" json:"id"`
	Resource   string          `gorm:"column:resource;index" json:"resource"`
	ResourceID int64           `gorm:"column:resource_id;index" json:"resource_id"`
	ActorID    string          `gorm:"column:actor_id;index" json:"actor_id"`
	Patch      json.RawMessage `gorm:"column:patch" json:"patch"`
	Context    string          `gorm:"column:context" json:"context"`
	CreatedAt  time.Time       `gorm:"column:created_at" json:"created_at"`
}

func (ActivityLog) TableName() string { return "activity_logs" }
