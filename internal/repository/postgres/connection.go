package postgres

import (
	"github.com/dom/restaurant-manager/internal/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewConnection opens the gorm pool. The schema is owned by the embedded
// migrations, see RunMigrations.
func NewConnection(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	return db, nil
}

func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		User:             NewUserRepository(db),
		Session:          NewSessionRepository(db),
		Restaurant:       NewRestaurantRepository(db),
		RestaurantTiming: NewRestaurantTimingRepository(db),
		RestaurantPhoto:  NewRestaurantPhotoRepository(db),
	}
}
