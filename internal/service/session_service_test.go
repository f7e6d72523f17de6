package service

import (
	"context"
	"testing"
	"time"

	"github.com/dom/restaurant-manager/internal/config"
	"github.com/dom/restaurant-manager/internal/domain"
	"github.com/dom/restaurant-manager/internal/repository/memory"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessionService(t *testing.T) (*SessionService, *memory.SessionRepository, *domain.User, *fakeClock) {
	t.Helper()

	users := memory.NewUserRepository()
	sessions := memory.NewSessionRepository()
	user := &domain.User{Name: "Session User", PasswordHash: "x", IsActive: true}
	require.NoError(t, users.Create(context.Background(), user))

	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	svc := NewSessionService(sessions, users, &config.Config{
		AppKey:          "session-test-key",
		SessionLifetime: time.Hour,
	})
	svc.now = clock.Now

	return svc, sessions, user, clock
}

func TestSessionService_StartResolve(t *testing.T) {
	svc, sessions, user, _ := newTestSessionService(t)
	ctx := context.Background()

	value, session, err := svc.Start(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, user.ID, session.UserID)
	assert.Equal(t, 1, sessions.Count())
	assert.Equal(t, time.Hour, svc.Lifetime())

	got, resolved, err := svc.Resolve(ctx, value)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, session.ID, resolved.ID)
}

func TestSessionService_ResolveRejects(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(t *testing.T, svc *SessionService, clock *fakeClock, value string) string
	}{
		{
			name: "garbage",
			mutate: func(*testing.T, *SessionService, *fakeClock, string) string {
				return "not-a-token"
			},
		},
		{
			name: "expired",
			mutate: func(_ *testing.T, _ *SessionService, clock *fakeClock, value string) string {
				clock.Advance(time.Hour + time.Second)
				return value
			},
		},
		{
			name: "ended",
			mutate: func(t *testing.T, svc *SessionService, _ *fakeClock, value string) string {
				_, session, err := svc.Resolve(ctx, value)
				require.NoError(t, err)
				require.NoError(t, svc.End(ctx, session.ID))
				return value
			},
		},
		{
			name: "signed with another key",
			mutate: func(t *testing.T, svc *SessionService, clock *fakeClock, value string) string {
				claims := &jwt.RegisteredClaims{}
				_, _, err := jwt.NewParser().ParseUnverified(value, claims)
				require.NoError(t, err)

				forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-key"))
				require.NoError(t, err)
				return forged
			},
		},
		{
			name: "subject swapped",
			mutate: func(t *testing.T, svc *SessionService, clock *fakeClock, value string) string {
				claims := &jwt.RegisteredClaims{}
				_, _, err := jwt.NewParser().ParseUnverified(value, claims)
				require.NoError(t, err)

				claims.Subject = "9999"
				forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(svc.secret)
				require.NoError(t, err)
				return forged
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, user, clock := newTestSessionService(t)

			value, _, err := svc.Start(ctx, user)
			require.NoError(t, err)

			_, _, err = svc.Resolve(ctx, tt.mutate(t, svc, clock, value))
			assert.ErrorIs(t, err, ErrSessionNotFound)
		})
	}
}

func TestRequestGuard(t *testing.T) {
	ctx := context.Background()
	guard := NewRequestGuard()
	assert.False(t, guard.Check())
	assert.Nil(t, guard.User())

	user := &domain.User{ID: 7}
	require.NoError(t, guard.Login(ctx, user))
	assert.True(t, guard.Check())
	assert.Same(t, user, guard.User())

	require.NoError(t, guard.Logout(ctx))
	assert.False(t, guard.Check())
}
