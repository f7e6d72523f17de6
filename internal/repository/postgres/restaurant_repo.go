package postgres

import (
	"context"

	"github.com/dom/restaurant-manager/internal/domain"
	"gorm.io/gorm"
)

type restaurantRepository struct {
	db *gorm.DB
}

func NewRestaurantRepository(db *gorm.DB) *restaurantRepository {
	return &restaurantRepository{db: db}
}

func (r *restaurantRepository) Create(ctx context.Context, restaurant *domain.Restaurant) error {
	return r.db.WithContext(ctx).Omit("Timings", "Photos").Create(restaurant).Error
}

func (r *restaurantRepository) GetByID(ctx context.Context, id uint) (*domain.Restaurant, error) {
	var restaurant domain.Restaurant
	err := r.db.WithContext(ctx).First(&restaurant, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &restaurant, nil
}

type restaurantTimingRepository struct {
	db *gorm.DB
}

func NewRestaurantTimingRepository(db *gorm.DB) *restaurantTimingRepository {
	return &restaurantTimingRepository{db: db}
}

// ReplaceForRestaurant swaps the whole weekly schedule in one transaction.
func (r *restaurantTimingRepository) ReplaceForRestaurant(ctx context.Context, restaurantID uint, timings []*domain.RestaurantTiming) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("restaurant_id = ?", restaurantID).Delete(&domain.RestaurantTiming{}).Error; err != nil {
			return err
		}
		if len(timings) == 0 {
			return nil
		}
		for _, t := range timings {
			t.RestaurantID = restaurantID
		}
		return tx.Omit("Restaurant").Create(timings).Error
	})
}

func (r *restaurantTimingRepository) ListByRestaurant(ctx context.Context, restaurantID uint) ([]*domain.RestaurantTiming, error) {
	var timings []*domain.RestaurantTiming
	err := r.db.WithContext(ctx).
		Where("restaurant_id = ?", restaurantID).
		Order("day_of_week, from_time").
		Find(&timings).Error
	if err != nil {
		return nil, err
	}
	return timings, nil
}

type restaurantPhotoRepository struct {
	db *gorm.DB
}

func NewRestaurantPhotoRepository(db *gorm.DB) *restaurantPhotoRepository {
	return &restaurantPhotoRepository{db: db}
}

func (r *restaurantPhotoRepository) Create(ctx context.Context, photo *domain.RestaurantPhoto) error {
	return r.db.WithContext(ctx).Create(photo).Error
}

func (r *restaurantPhotoRepository) ListByRestaurant(ctx context.Context, restaurantID uint) ([]*domain.RestaurantPhoto, error) {
	var photos []*domain.RestaurantPhoto
	err := r.db.WithContext(ctx).
		Where("restaurant_id = ?", restaurantID).
		Order("created_at, id").
		Find(&photos).Error
	if err != nil {
		return nil, err
	}
	return photos, nil
}

func (r *restaurantPhotoRepository) Delete(ctx context.Context, restaurantID, photoID uint) error {
	result := r.db.WithContext(ctx).
		Where("restaurant_id = ? AND id = ?", restaurantID, photoID).
		Delete(&domain.RestaurantPhoto{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrPhotoNotFound
	}
	return nil
}
