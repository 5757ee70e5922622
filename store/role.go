package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/brokercrm/crm-service/models"
)

// RoleStore administers the role tables the authorization core reads.
type RoleStore struct{ DB *gorm.DB }

func NewRoleStore(db *gorm.DB) *RoleStore { return &RoleStore{DB: db} }

// UpsertRole creates or updates a role by name.
func (s *RoleStore) UpsertRole(ctx context.Context, role models.Role) error {
	role.Name = strings.ToLower(strings.TrimSpace(role.Name))
	if role.Name == "" {
		return gorm.ErrInvalidData
	}
	if role.Status == "" {
		role.Status = models.StatusActive
	}
	if role.Status != models.StatusActive && role.Status != models.StatusInactive {
		return gorm.ErrInvalidData
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Role
		err := tx.Where("name = ?", role.Name).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			role.ID = models.NewID()
			role.CreatedAt = time.Now().UTC()
			return tx.Create(&role).Error
		} else if err != nil {
			return err
		}
		updates := map[string]interface{}{
			"status":      role.Status,
			"description": role.Description,
		}
		return tx.Model(&models.Role{}).Where("id = ?", existing.ID).Updates(updates).Error
	})
}

func (s *RoleStore) ListRoles(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	return roles, s.DB.WithContext(ctx).Order("name ASC").Find(&roles).Error
}

func (s *RoleStore) DeleteRole(ctx context.Context, id string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM role_permissions WHERE role_id = ?`, id).Error; err != nil {
			return err
		}
		if err := tx.Exec(`DELETE FROM user_roles WHERE role_id = ?`, id).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Role{}).Error
	})
}

// AssignRoleToUser links a user to a role. Validates the role exists inside
// the same transaction.
func (s *RoleStore) AssignRoleToUser(ctx context.Context, userID, roleID string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var role models.Role
		if err := tx.Where("id = ?", roleID).First(&role).Error; err != nil {
			return err
		}
		ur := models.UserRole{ID: models.NewID(), UserID: userID, RoleID: roleID, AssignedAt: time.Now().UTC()}
		return tx.Create(&ur).Error
	})
}

// GrantPermissionToRole attaches a permission to a role by name.
func (s *RoleStore) GrantPermissionToRole(ctx context.Context, roleID, permissionName string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var perm models.Permission
		if err := tx.Where("name = ?", permissionName).First(&perm).Error; err != nil {
			return err
		}
		rp := models.RolePermission{ID: models.NewID(), RoleID: roleID, PermissionID: perm.ID, GrantedAt: time.Now().UTC()}
		return tx.Create(&rp).Error
	})
}

// RevokePermissionFromRole detaches a permission from a role. A direct
// grant of the same permission stays effective on purpose.
func (s *RoleStore) RevokePermissionFromRole(ctx context.Context, roleID, permissionName string) error {
	return s.DB.WithContext(ctx).
		Exec(`DELETE FROM role_permissions WHERE role_id = ? AND permission_id IN (SELECT id FROM permissions WHERE name = ?)`,
			roleID, permissionName).Error
}

// ListRoleAssignmentsForUser returns the roles held by a user.
func (s *RoleStore) ListRoleAssignmentsForUser(ctx context.Context, userID string) ([]models.Role, error) {
	var roles []models.Role
	err := s.DB.WithContext(ctx).
		Table("roles r").
		Select("r.*").
		Joins("JOIN user_roles ur ON ur.role_id = r.id").
		Where("ur.user_id = ?", userID).
		Order("r.name ASC").
		Scan(&roles).Error
	return roles, err
}
