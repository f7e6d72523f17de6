package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/dom/restaurant-manager/internal/domain"
	"github.com/dom/restaurant-manager/internal/repository/postgres"
	"github.com/dom/restaurant-manager/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSessionRepository(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	users := postgres.NewUserRepository(testDB.DB)
	repo := postgres.NewSessionRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, users)

	newSession := func() *domain.UserSession {
		return &domain.UserSession{
			ID:        uuid.New(),
			UserID:    user.ID,
			ExpiresAt: time.Now().Add(time.Hour),
			CreatedAt: time.Now(),
		}
	}

	t.Run("create and get", func(t *testing.T) {
		session := newSession()
		require.NoError(t, repo.Create(ctx, session))

		got, err := repo.GetByID(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.UserID)
		assert.False(t, got.Expired(time.Now()))
	})

	t.Run("delete", func(t *testing.T) {
		session := newSession()
		require.NoError(t, repo.Create(ctx, session))
		require.NoError(t, repo.Delete(ctx, session.ID))

		_, err := repo.GetByID(ctx, session.ID)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

		// Deleting again is a no-op
		assert.NoError(t, repo.Delete(ctx, session.ID))
	})

	t.Run("delete by user", func(t *testing.T) {
		first, second := newSession(), newSession()
		require.NoError(t, repo.Create(ctx, first))
		require.NoError(t, repo.Create(ctx, second))

		require.NoError(t, repo.DeleteByUserID(ctx, user.ID))

		for _, id := range []uuid.UUID{first.ID, second.ID} {
			_, err := repo.GetByID(ctx, id)
			assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
		}
	})
}
