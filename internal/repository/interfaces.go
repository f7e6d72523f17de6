package repository

import (
	"context"

	"github.com/dom/restaurant-manager/internal/domain"
	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uint) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByMobileNumber(ctx context.Context, mobileNumber string) (*domain.User, error)
	GetByFacebookID(ctx context.Context, facebookID int64) (*domain.User, error)
	ClearDeviceState(ctx context.Context, id uint) error
	SetActive(ctx context.Context, id uint, active bool) error
	AssignRoles(ctx context.Context, user *domain.User, names ...domain.RoleName) error
}

type SessionRepository interface {
	Create(ctx context.Context, session *domain.UserSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.UserSession, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByUserID(ctx context.Context, userID uint) error
}

type RestaurantRepository interface {
	Create(ctx context.Context, restaurant *domain.Restaurant) error
	GetByID(ctx context.Context, id uint) (*domain.Restaurant, error)
}

type RestaurantTimingRepository interface {
	ReplaceForRestaurant(ctx context.Context, restaurantID uint, timings []*domain.RestaurantTiming) error
	ListByRestaurant(ctx context.Context, restaurantID uint) ([]*domain.RestaurantTiming, error)
}

type RestaurantPhotoRepository interface {
	Create(ctx context.Context, photo *domain.RestaurantPhoto) error
	ListByRestaurant(ctx context.Context, restaurantID uint) ([]*domain.RestaurantPhoto, error)
	Delete(ctx context.Context, restaurantID, photoID uint) error
}

type Repositories struct {
	User             UserRepository
	Session          SessionRepository
	Restaurant       RestaurantRepository
	RestaurantTiming RestaurantTimingRepository
	RestaurantPhoto  RestaurantPhotoRepository
}
