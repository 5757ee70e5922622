package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/brokercrm/crm-service/models"
)

// UserStore handles agent accounts for login and seeding.
type UserStore struct{ DB *gorm.DB }

func NewUserStore(db *gorm.DB) *UserStore { return &UserStore{DB: db} }

// Authenticate checks username/password and returns the user id. Returns
// found=false for unknown users, inactive users and wrong passwords alike.
func (s *UserStore) Authenticate(ctx context.Context, username, password string) (string, bool, error) {
	username = strings.TrimSpace(strings.ToLower(username))
	var user models.User
	err := s.DB.WithContext(ctx).Where("username = ? AND status = ?", username, models.StatusActive).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", false, nil
	}
	return user.ID, true, nil
}

// CreateUser creates an agent account with a bcrypt password hash.
func (s *UserStore) CreateUser(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(strings.ToLower(username))
	if username == "" || password == "" {
		return "", gorm.ErrInvalidData
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	user := models.User{
		ID:           models.NewID(),
		Username:     username,
		PasswordHash: string(hash),
		Status:       models.StatusActive,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.DB.WithContext(ctx).Create(&user).Error; err != nil {
		return "", err
	}
	return user.ID, nil
}

// AssignDesk puts a user on a desk.
func (s *UserStore) AssignDesk(ctx context.Context, userID string, deskID int64) error {
	ud := models.UserDesk{ID: models.NewID(), UserID: userID, DeskID: deskID, AssignedAt: time.Now().UTC()}
	return s.DB.WithContext(ctx).Create(&ud).Error
}
