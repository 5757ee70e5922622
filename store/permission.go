package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/brokercrm/crm-service/models"
)

// PermissionStore serves the role->permission join for aggregation and the
// grant administration used by the role endpoints.
type PermissionStore struct{ DB *gorm.DB }

func NewPermissionStore(db *gorm.DB) *PermissionStore { return &PermissionStore{DB: db} }

// RolePermissions returns the distinct active permissions attached to the
// named active roles. Satisfies authz.GrantSource.
func (s *PermissionStore) RolePermissions(ctx context.Context, roleNames []string) ([]string, error) {
	var names []string
	err := s.DB.WithContext(ctx).
		Table("permissions p").
		Distinct("p.name").
		Joins("JOIN role_permissions rp ON rp.permission_id = p.id").
		Joins("JOIN roles r ON r.id = rp.role_id").
		Where("r.name IN ? AND r.status = ? AND p.status = ?", roleNames, models.StatusActive, models.StatusActive).
		Order("p.name ASC").
		Scan(&names).Error
	return names, err
}

// ListPermissions returns the full permission catalog.
func (s *PermissionStore) ListPermissions(ctx context.Context) ([]models.Permission, error) {
	var perms []models.Permission
	err := s.DB.WithContext(ctx).Order("name ASC").Find(&perms).Error
	return perms, err
}

// GrantDirect grants a permission directly to a user. Validates the
// permission exists inside the same transaction as the insert.
func (s *PermissionStore) GrantDirect(ctx context.Context, userID, permissionName, grantedBy string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var perm models.Permission
		if err := tx.Where("name = ?", permissionName).First(&perm).Error; err != nil {
			return err
		}
		up := models.UserPermission{
			ID:           models.NewID(),
			UserID:       userID,
			PermissionID: perm.ID,
			GrantedBy:    grantedBy,
			GrantedAt:    time.Now().UTC(),
		}
		return tx.Create(&up).Error
	})
}

// RevokeDirect removes a direct grant. Role-level grants are untouched.
func (s *PermissionStore) RevokeDirect(ctx context.Context, userID, permissionName string) error {
	return s.DB.WithContext(ctx).
		Exec(`DELETE FROM user_permissions WHERE user_id = ? AND permission_id IN (SELECT id FROM permissions WHERE name = ?)`,
			userID, permissionName).Error
}
