package postgres_test

import (
	"context"
	"testing"

	"github.com/dom/restaurant-manager/internal/domain"
	"github.com/dom/restaurant-manager/internal/repository/postgres"
	"github.com/dom/restaurant-manager/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func TestRestaurantTimingRepository_ReplaceForRestaurant(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	restaurants := postgres.NewRestaurantRepository(testDB.DB)
	repo := postgres.NewRestaurantTimingRepository(testDB.DB)
	ctx := context.Background()

	restaurant := testutil.CreateRestaurant(t, restaurants, "Trattoria")
	other := testutil.CreateRestaurant(t, restaurants, "Bistro")

	require.NoError(t, repo.ReplaceForRestaurant(ctx, other.ID, []*domain.RestaurantTiming{
		{DayOfWeek: 1, FromTime: datatypes.NewTime(8, 0, 0, 0), ToTime: datatypes.NewTime(12, 0, 0, 0)},
	}))

	tests := []struct {
		name    string
		timings []*domain.RestaurantTiming
		want    []domain.DayOfWeek
	}{
		{
			name: "initial schedule is sorted by day",
			timings: []*domain.RestaurantTiming{
				{DayOfWeek: 5, FromTime: datatypes.NewTime(18, 0, 0, 0), ToTime: datatypes.NewTime(23, 0, 0, 0)},
				{DayOfWeek: 1, FromTime: datatypes.NewTime(11, 30, 0, 0), ToTime: datatypes.NewTime(15, 0, 0, 0)},
			},
			want: []domain.DayOfWeek{1, 5},
		},
		{
			name: "replacement drops previous rows",
			timings: []*domain.RestaurantTiming{
				{DayOfWeek: 0, FromTime: datatypes.NewTime(10, 0, 0, 0), ToTime: datatypes.NewTime(14, 0, 0, 0)},
			},
			want: []domain.DayOfWeek{0},
		},
		{
			name:    "empty schedule",
			timings: nil,
			want:    []domain.DayOfWeek{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, repo.ReplaceForRestaurant(ctx, restaurant.ID, tt.timings))

			got, err := repo.ListByRestaurant(ctx, restaurant.ID)
			require.NoError(t, err)

			days := make([]domain.DayOfWeek, 0, len(got))
			for _, timing := range got {
				days = append(days, timing.DayOfWeek)
				assert.Equal(t, restaurant.ID, timing.RestaurantID)
			}
			assert.Equal(t, tt.want, days)
		})
	}

	// The other restaurant keeps its schedule
	got, err := repo.ListByRestaurant(ctx, other.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, datatypes.NewTime(8, 0, 0, 0), got[0].FromTime)
}

func TestRestaurantPhotoRepository(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	restaurants := postgres.NewRestaurantRepository(testDB.DB)
	repo := postgres.NewRestaurantPhotoRepository(testDB.DB)
	ctx := context.Background()

	restaurant := testutil.CreateRestaurant(t, restaurants, "Trattoria")

	photo := &domain.RestaurantPhoto{RestaurantID: restaurant.ID, Photo: "photos/front.jpg"}
	require.NoError(t, repo.Create(ctx, photo))
	assert.NotZero(t, photo.ID)

	photos, err := repo.ListByRestaurant(ctx, restaurant.ID)
	require.NoError(t, err)
	require.Len(t, photos, 1)
	assert.Equal(t, "photos/front.jpg", photos[0].Photo)

	t.Run("delete from another restaurant", func(t *testing.T) {
		err := repo.Delete(ctx, restaurant.ID+1000, photo.ID)
		assert.ErrorIs(t, err, domain.ErrPhotoNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, restaurant.ID, photo.ID))
		assert.ErrorIs(t, repo.Delete(ctx, restaurant.ID, photo.ID), domain.ErrPhotoNotFound)
	})

	t.Run("photo requires restaurant", func(t *testing.T) {
		err := repo.Create(ctx, &domain.RestaurantPhoto{RestaurantID: restaurant.ID + 1000, Photo: "x.jpg"})
		assert.Error(t, err)
	})

	t.Run("restaurant delete cascades", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, &domain.RestaurantPhoto{RestaurantID: restaurant.ID, Photo: "back.jpg"}))
		require.NoError(t, testDB.DB.Delete(&domain.Restaurant{}, restaurant.ID).Error)

		photos, err := repo.ListByRestaurant(ctx, restaurant.ID)
		require.NoError(t, err)
		assert.Empty(t, photos)

		_, err = restaurants.GetByID(ctx, restaurant.ID)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}
