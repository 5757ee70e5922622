package store

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/brokercrm/crm-service/models"
)

// ActivityStore writes and reads the activity log table.
type ActivityStore struct{ DB *gorm.DB }

func NewActivityStore(db *gorm.DB) *ActivityStore { return &ActivityStore{DB: db} }

// Record persists one activity entry. Runs outside the mutation
// transaction on purpose: a rolled-back mutation writes nothing here, and a
// failure here must not undo a commit that already happened.
func (s *ActivityStore) Record(ctx context.Context, resource string, resourceID int64, actorID string, patch map[string]any) error {
	raw, err := json.Marshal(patch)
	if err != nil {
		return err
	}
	entry := models.ActivityLog{
		ID:         models.NewID(),
		Resource:   resource,
		ResourceID: resourceID,
		ActorID:    actorID,
		Patch:      raw,
		Context:    "bulk_update",
		CreatedAt:  time.Now().UTC(),
	}
	return s.DB.WithContext(ctx).Create(&entry).Error
}

// ListActivity returns recent entries for a resource, newest first.
func (s *ActivityStore) ListActivity(ctx context.Context, resource string, limit int) ([]models.ActivityLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	q := s.DB.WithContext(ctx).Model(&models.ActivityLog{})
	if resource != "" {
		q = q.Where("resource = ?", resource)
	}
	var entries []models.ActivityLog
	err := q.Order("created_at DESC").Limit(limit).Find(&entries).Error
	return entries, err
}

// BestEffortSink adapts ActivityStore to the fire-and-forget contract the
// bulk mutator expects. Failures land in the log, never in the response:
// the row update already committed and must not be blocked by bookkeeping.
type BestEffortSink struct {
	store *ActivityStore
	log   *zap.Logger
}

func NewBestEffortSink(store *ActivityStore, log *zap.Logger) *BestEffortSink {
	return &BestEffortSink{store: store, log: log}
}

func (s *BestEffortSink) Record(ctx context.Context, resource string, resourceID int64, actorID string, patch map[string]any) {
	if err := s.store.Record(ctx, resource, resourceID, actorID, patch); err != nil {
		s.log.Warn("activity log write failed",
			zap.String("resource", resource),
			zap.Int64("resource_id", resourceID),
			zap.String("actor_id", actorID),
			zap.Error(err))
	}
}
