package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/dom/restaurant-manager/internal/domain"
	"github.com/dom/restaurant-manager/internal/repository/postgres"
	"github.com/dom/restaurant-manager/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func strPtr(s string) *string { return &s }

func TestUserRepository_Create(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	tests := []struct {
		name    string
		user    *domain.User
		wantErr bool
	}{
		{
			name: "successful creation",
			user: &domain.User{
				Name:         "Test User",
				Email:        strPtr("test@example.com"),
				PasswordHash: "hashedpassword",
				IsActive:     true,
			},
			wantErr: false,
		},
		{
			name: "duplicate email",
			user: &domain.User{
				Name:         "Other User",
				Email:        strPtr("test@example.com"), // Same as above
				PasswordHash: "hashedpassword2",
			},
			wantErr: true,
		},
		{
			name: "inactive user without email",
			user: &domain.User{
				Name:         "Mobile User",
				MobileNumber: strPtr("5550100"),
				PasswordHash: "hashedpassword3",
				IsActive:     false,
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(ctx, tt.user)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.NotZero(t, tt.user.ID)

			got, err := repo.GetByID(ctx, tt.user.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.user.IsActive, got.IsActive)
		})
	}
}

func TestUserRepository_Lookups(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().
		WithEmail("lookup@example.com").
		WithMobileNumber("5550111").
		WithFacebookID(42).
		WithRoles(domain.RoleAdmin, domain.RoleRestaurantManager).
		Build(t, repo)

	tests := []struct {
		name    string
		lookup  func() (*domain.User, error)
		wantErr bool
	}{
		{
			name:   "by id",
			lookup: func() (*domain.User, error) { return repo.GetByID(ctx, user.ID) },
		},
		{
			name:   "by email",
			lookup: func() (*domain.User, error) { return repo.GetByEmail(ctx, "lookup@example.com") },
		},
		{
			name:   "by mobile number",
			lookup: func() (*domain.User, error) { return repo.GetByMobileNumber(ctx, "5550111") },
		},
		{
			name:   "by facebook id",
			lookup: func() (*domain.User, error) { return repo.GetByFacebookID(ctx, 42) },
		},
		{
			name:    "unknown facebook id",
			lookup:  func() (*domain.User, error) { return repo.GetByFacebookID(ctx, 999) },
			wantErr: true,
		},
		{
			name:    "unknown email",
			lookup:  func() (*domain.User, error) { return repo.GetByEmail(ctx, "nobody@example.com") },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.lookup()
			if tt.wantErr {
				assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, user.ID, got.ID)
			assert.True(t, got.HasRole(domain.RoleAdmin))
			assert.True(t, got.HasRole(domain.RoleRestaurantManager))
			assert.False(t, got.HasRole(domain.RoleCustomer))
		})
	}
}

func TestUserRepository_ClearDeviceState(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().WithMobileNumber("5550122").Build(t, repo)

	now := time.Now()
	require.NoError(t, testDB.DB.Model(&domain.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{"push_token": "device-token", "last_login_at": now}).Error)

	// Twice: the second call finds both fields already NULL.
	for i := 0; i < 2; i++ {
		require.NoError(t, repo.ClearDeviceState(ctx, user.ID))

		got, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Nil(t, got.PushToken)
		assert.Nil(t, got.LastLoginAt)
	}
}

func TestUserRepository_SetActive(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().WithMobileNumber("5550123").Build(t, repo)
	require.True(t, user.IsActive)

	require.NoError(t, repo.SetActive(ctx, user.ID, false))
	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	require.NoError(t, repo.SetActive(ctx, user.ID, true))
	got, err = repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)

	assert.ErrorIs(t, repo.SetActive(ctx, 9999, false), gorm.ErrRecordNotFound)
}

func TestUserRepository_AssignRoles(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, repo)

	err := repo.AssignRoles(ctx, user, domain.RoleName("superuser"))
	assert.Error(t, err)

	require.NoError(t, repo.AssignRoles(ctx, user, domain.RoleCustomer))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []domain.RoleName{domain.RoleCustomer}, got.RoleNames())
}
