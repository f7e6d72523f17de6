package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/dom/restaurant-manager/internal/domain"
	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *userRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Omit("Roles").Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*domain.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *userRepository) GetByMobileNumber(ctx context.Context, mobileNumber string) (*domain.User, error) {
	return r.first(ctx, "mobile_number = ?", mobileNumber)
}

func (r *userRepository) GetByFacebookID(ctx context.Context, facebookID int64) (*domain.User, error) {
	return r.first(ctx, "facebook_id = ?", facebookID)
}

func (r *userRepository) first(ctx context.Context, query string, args ...interface{}) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).
		Preload("Roles").
		Where(query, args...).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ClearDeviceState forgets the push token and last login of a signed-out device.
func (r *userRepository) ClearDeviceState(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"push_token":    nil,
			"last_login_at": nil,
			"updated_at":    time.Now(),
		}).Error
}

func (r *userRepository) SetActive(ctx context.Context, id uint, active bool) error {
	result := r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_active":  active,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepository) AssignRoles(ctx context.Context, user *domain.User, names ...domain.RoleName) error {
	if len(names) == 0 {
		return nil
	}

	var roles []domain.Role
	if err := r.db.WithContext(ctx).Where("name IN ?", names).Find(&roles).Error; err != nil {
		return err
	}
	if len(roles) != len(names) {
		return fmt.Errorf("assign roles %v: found %d of %d roles", names, len(roles), len(names))
	}

	return r.db.WithContext(ctx).Model(user).Association("Roles").Append(&roles)
}
