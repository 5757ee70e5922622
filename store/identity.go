package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/brokercrm/crm-service/models"
)

// IdentityStore loads the per-request identity facts: active roles, desk
// memberships, and direct grants. Everything is read fresh on every call so
// a role or desk change is visible on the next request.
type IdentityStore struct{ DB *gorm.DB }

func NewIdentityStore(db *gorm.DB) *IdentityStore { return &IdentityStore{DB: db} }

// Load builds the Identity for userID. Inactive roles are dropped here;
// inactive permissions are dropped by the joins below and in
// PermissionStore, so they can never enter an effective set.
func (s *IdentityStore) Load(ctx context.Context, userID string) (*models.Identity, error) {
	var roles []string
	err := s.DB.WithContext(ctx).
		Table("roles r").
		Select("r.name").
		Joins("JOIN user_roles ur ON ur.role_id = r.id").
		Where("ur.user_id = ? AND r.status = ?", userID, models.StatusActive).
		Order("r.name ASC").
		Scan(&roles).Error
	if err != nil {
		return nil, err
	}

	var deskIDs []int64
	err = s.DB.WithContext(ctx).
		Table("user_desks").
		Where("user_id = ?", userID).
		Order("desk_id ASC").
		Pluck("desk_id", &deskIDs).Error
	if err != nil {
		return nil, err
	}

	var grants []string
	err = s.DB.WithContext(ctx).
		Table("permissions p").
		Select("p.name").
		Joins("JOIN user_permissions up ON up.permission_id = p.id").
		Where("up.user_id = ? AND p.status = ?", userID, models.StatusActive).
		Order("p.name ASC").
		Scan(&grants).Error
	if err != nil {
		return nil, err
	}

	return &models.Identity{ID: userID, DeskIDs: deskIDs, Roles: roles, DirectGrants: grants}, nil
}
