package service

import (
	"context"

	"github.com/dom/restaurant-manager/internal/domain"
)

// Guard holds the authentication state of a single request.
type Guard interface {
	Login(ctx context.Context, user *domain.User) error
	Check() bool
	User() *domain.User
	Logout(ctx context.Context) error
}

// RequestGuard keeps the authenticated user in memory for the lifetime of one
// request. The API channel is stateless, so nothing outlives the request.
type RequestGuard struct {
	user *domain.User
}

func NewRequestGuard() *RequestGuard {
	return &RequestGuard{}
}

func (g *RequestGuard) Login(_ context.Context, user *domain.User) error {
	g.user = user
	return nil
}

func (g *RequestGuard) Check() bool {
	return g.user != nil
}

func (g *RequestGuard) User() *domain.User {
	return g.user
}

func (g *RequestGuard) Logout(_ context.Context) error {
	g.user = nil
	return nil
}
