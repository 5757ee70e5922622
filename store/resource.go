package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/brokercrm/crm-service/authz"
	"github.com/brokercrm/crm-service/bulk"
)

// ResourceStore is the write path of the bulk mutator and the desk lookup
// of the authorization gate, generic over the desk-scoped resource tables.
// Table and column names only ever come from the static resource registry
// and allow-lists, never from request input.
type ResourceStore struct{ DB *gorm.DB }

func NewResourceStore(db *gorm.DB) *ResourceStore { return &ResourceStore{DB: db} }

func validResource(resource string) error {
	if !authz.DeskScoped(resource) {
		return fmt.Errorf("unknown resource table: %s", resource)
	}
	return nil
}

// DeskOf fetches the desk of one row. Satisfies authz.DeskLookup.
func (s *ResourceStore) DeskOf(ctx context.Context, resource string, id int64) (int64, bool, error) {
	if err := validResource(resource); err != nil {
		return 0, false, err
	}
	var deskIDs []int64
	err := s.DB.WithContext(ctx).
		Table(resource).
		Where("id = ?", id).
		Limit(1).
		Pluck("desk_id", &deskIDs).Error
	if err != nil {
		return 0, false, err
	}
	if len(deskIDs) == 0 {
		return 0, false, nil
	}
	return deskIDs[0], true, nil
}

// ExecuteUniform applies one column set to ids in a single set-based
// statement inside one transaction. Rows already carrying the patched
// values are skipped so re-applying the same patch reports zero updates.
func (s *ResourceStore) ExecuteUniform(ctx context.Context, resource string, ids []int64, set map[string]any) ([]int64, error) {
	if err := validResource(resource); err != nil {
		return nil, err
	}
	var updated []int64
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cond, args := deltaCondition(set)
		if err := tx.Table(resource).
			Where("id IN ?", ids).
			Where(cond, args...).
			Order("id ASC").
			Pluck("id", &updated).Error; err != nil {
			return err
		}
		if len(updated) == 0 {
			return nil
		}
		values := withTimestamp(set)
		return tx.Table(resource).Where("id IN ?", updated).Updates(values).Error
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ExecutePerTarget applies a distinct column set per row, all rows inside
// one transaction: any row error aborts and reverts every row.
func (s *ResourceStore) ExecutePerTarget(ctx context.Context, resource string, patches []bulk.TargetPatch) ([]int64, error) {
	if err := validResource(resource); err != nil {
		return nil, err
	}
	var updated []int64
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, p := range patches {
			cond, args := deltaCondition(p.Set)
			res := tx.Table(resource).
				Where("id = ?", p.ID).
				Where(cond, args...).
				Updates(withTimestamp(p.Set))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				updated = append(updated, p.ID)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// deltaCondition matches rows where at least one patched column differs
// from its new value. Deterministic column order for stable SQL.
func deltaCondition(set map[string]any) (string, []any) {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	conds := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys))
	for _, k := range keys {
		conds = append(conds, k+" IS DISTINCT FROM ?")
		args = append(args, set[k])
	}
	return "(" + strings.Join(conds, " OR ") + ")", args
}

func withTimestamp(set map[string]any) map[string]any {
	out := make(map[string]any, len(set)+1)
	for k, v := range set {
		out[k] = v
	}
	out["updated_at"] = time.Now().UTC()
	return out
}
