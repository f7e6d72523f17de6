package service_test

import (
	"context"
	"testing"

	"github.com/dom/restaurant-manager/internal/domain"
	"github.com/dom/restaurant-manager/internal/repository/memory"
	"github.com/dom/restaurant-manager/internal/service"
	"github.com/dom/restaurant-manager/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func newRestaurantService(t *testing.T) (*service.RestaurantService, *domain.Restaurant) {
	t.Helper()

	restaurants := memory.NewRestaurantRepository()
	svc := service.NewRestaurantService(restaurants, memory.NewRestaurantTimingRepository(), memory.NewRestaurantPhotoRepository())
	return svc, testutil.CreateRestaurant(t, restaurants, "Trattoria")
}

func TestRestaurantService_SetTimings(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		inputs  []service.TimingInput
		wantErr error
		wantLen int
	}{
		{
			name: "weekday lunch and dinner",
			inputs: []service.TimingInput{
				{DayOfWeek: 1, FromTime: "11:30", ToTime: "14:30"},
				{DayOfWeek: 1, FromTime: "18:00:00", ToTime: "22:30:00"},
			},
			wantLen: 2,
		},
		{
			name:    "empty schedule",
			inputs:  nil,
			wantLen: 0,
		},
		{
			name:    "day out of range",
			inputs:  []service.TimingInput{{DayOfWeek: 7, FromTime: "09:00", ToTime: "17:00"}},
			wantErr: domain.ErrInvalidDayOfWeek,
		},
		{
			name:    "runs past midnight",
			inputs:  []service.TimingInput{{DayOfWeek: 5, FromTime: "18:00", ToTime: "02:00"}},
			wantLen: 1,
		},
		{
			name:    "opens and closes at the same time",
			inputs:  []service.TimingInput{{DayOfWeek: 2, FromTime: "17:00", ToTime: "17:00"}},
			wantErr: domain.ErrInvalidTimeRange,
		},
		{
			name:    "bad clock",
			inputs:  []service.TimingInput{{DayOfWeek: 2, FromTime: "9am", ToTime: "17:00"}},
			wantErr: domain.ErrInvalidTimeFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, restaurant := newRestaurantService(t)

			got, err := svc.SetTimings(ctx, restaurant.ID, tt.inputs)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				stored, err := svc.Timings(ctx, restaurant.ID)
				require.NoError(t, err)
				assert.Empty(t, stored, "rejected schedule must not be written")
				return
			}

			require.NoError(t, err)
			assert.Len(t, got, tt.wantLen)

			stored, err := svc.Timings(ctx, restaurant.ID)
			require.NoError(t, err)
			assert.Len(t, stored, tt.wantLen)
		})
	}
}

func TestRestaurantService_TimingsParsesClock(t *testing.T) {
	svc, restaurant := newRestaurantService(t)
	ctx := context.Background()

	_, err := svc.SetTimings(ctx, restaurant.ID, []service.TimingInput{
		{DayOfWeek: 6, FromTime: "10:15", ToTime: "23:00:30"},
	})
	require.NoError(t, err)

	timings, err := svc.Timings(ctx, restaurant.ID)
	require.NoError(t, err)
	require.Len(t, timings, 1)
	assert.Equal(t, domain.DayOfWeek(6), timings[0].DayOfWeek)
	assert.Equal(t, datatypes.NewTime(10, 15, 0, 0), timings[0].FromTime)
	assert.Equal(t, datatypes.NewTime(23, 0, 30, 0), timings[0].ToTime)
}

func TestRestaurantService_Photos(t *testing.T) {
	svc, restaurant := newRestaurantService(t)
	ctx := context.Background()

	_, err := svc.AddPhoto(ctx, restaurant.ID, "   ")
	assert.ErrorIs(t, err, domain.ErrEmptyPhoto)

	photo, err := svc.AddPhoto(ctx, restaurant.ID, " photos/front.jpg ")
	require.NoError(t, err)
	assert.Equal(t, "photos/front.jpg", photo.Photo)

	photos, err := svc.Photos(ctx, restaurant.ID)
	require.NoError(t, err)
	require.Len(t, photos, 1)

	require.NoError(t, svc.RemovePhoto(ctx, restaurant.ID, photo.ID))
	assert.ErrorIs(t, svc.RemovePhoto(ctx, restaurant.ID, photo.ID), domain.ErrPhotoNotFound)
}

func TestRestaurantService_UnknownRestaurant(t *testing.T) {
	svc, restaurant := newRestaurantService(t)
	ctx := context.Background()
	missing := restaurant.ID + 1

	_, err := svc.Timings(ctx, missing)
	assert.ErrorIs(t, err, domain.ErrRestaurantNotFound)

	_, err = svc.SetTimings(ctx, missing, nil)
	assert.ErrorIs(t, err, domain.ErrRestaurantNotFound)

	_, err = svc.Photos(ctx, missing)
	assert.ErrorIs(t, err, domain.ErrRestaurantNotFound)

	_, err = svc.AddPhoto(ctx, missing, "x.jpg")
	assert.ErrorIs(t, err, domain.ErrRestaurantNotFound)
}
