package service

import (
	"context"
	"errors"
	"strings"

	"github.com/dom/restaurant-manager/internal/domain"
	"github.com/dom/restaurant-manager/internal/repository"
	"gorm.io/gorm"
)

type RestaurantService struct {
	restaurantRepo repository.RestaurantRepository
	timingRepo     repository.RestaurantTimingRepository
	photoRepo      repository.RestaurantPhotoRepository
}

func NewRestaurantService(restaurantRepo repository.RestaurantRepository, timingRepo repository.RestaurantTimingRepository, photoRepo repository.RestaurantPhotoRepository) *RestaurantService {
	return &RestaurantService{
		restaurantRepo: restaurantRepo,
		timingRepo:     timingRepo,
		photoRepo:      photoRepo,
	}
}

type TimingInput struct {
	DayOfWeek int
	FromTime  string
	ToTime    string
}

func (s *RestaurantService) Timings(ctx context.Context, restaurantID uint) ([]*domain.RestaurantTiming, error) {
	if err := s.ensureRestaurant(ctx, restaurantID); err != nil {
		return nil, err
	}
	return s.timingRepo.ListByRestaurant(ctx, restaurantID)
}

// SetTimings replaces the weekly schedule. Every row is validated before anything is written.
func (s *RestaurantService) SetTimings(ctx context.Context, restaurantID uint, inputs []TimingInput) ([]*domain.RestaurantTiming, error) {
	if err := s.ensureRestaurant(ctx, restaurantID); err != nil {
		return nil, err
	}

	timings := make([]*domain.RestaurantTiming, 0, len(inputs))
	for _, in := range inputs {
		from, err := domain.ParseClock(in.FromTime)
		if err != nil {
			return nil, err
		}
		to, err := domain.ParseClock(in.ToTime)
		if err != nil {
			return nil, err
		}

		timing := &domain.RestaurantTiming{
			RestaurantID: restaurantID,
			DayOfWeek:    domain.DayOfWeek(in.DayOfWeek),
			FromTime:     from,
			ToTime:       to,
		}
		if err := timing.Validate(); err != nil {
			return nil, err
		}
		timings = append(timings, timing)
	}

	if err := s.timingRepo.ReplaceForRestaurant(ctx, restaurantID, timings); err != nil {
		return nil, err
	}
	return timings, nil
}

func (s *RestaurantService) Photos(ctx context.Context, restaurantID uint) ([]*domain.RestaurantPhoto, error) {
	if err := s.ensureRestaurant(ctx, restaurantID); err != nil {
		return nil, err
	}
	return s.photoRepo.ListByRestaurant(ctx, restaurantID)
}

func (s *RestaurantService) AddPhoto(ctx context.Context, restaurantID uint, photo string) (*domain.RestaurantPhoto, error) {
	photo = strings.TrimSpace(photo)
	if photo == "" {
		return nil, domain.ErrEmptyPhoto
	}
	if err := s.ensureRestaurant(ctx, restaurantID); err != nil {
		return nil, err
	}

	p := &domain.RestaurantPhoto{RestaurantID: restaurantID, Photo: photo}
	if err := s.photoRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *RestaurantService) RemovePhoto(ctx context.Context, restaurantID, photoID uint) error {
	return s.photoRepo.Delete(ctx, restaurantID, photoID)
}

func (s *RestaurantService) ensureRestaurant(ctx context.Context, id uint) error {
	if _, err := s.restaurantRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRestaurantNotFound
		}
		return err
	}
	return nil
}
