package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dom/restaurant-manager/internal/config"
	"github.com/dom/restaurant-manager/internal/domain"
	"github.com/dom/restaurant-manager/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const sessionIssuer = "restaurant-manager"

// SessionService backs browser sessions with a user_sessions row. The cookie
// value is an HS256 token naming the row (jti) and its owner (sub).
type SessionService struct {
	sessionRepo repository.SessionRepository
	userRepo    repository.UserRepository
	secret      []byte
	lifetime    time.Duration
	now         func() time.Time
}

func NewSessionService(sessionRepo repository.SessionRepository, userRepo repository.UserRepository, cfg *config.Config) *SessionService {
	return &SessionService{
		sessionRepo: sessionRepo,
		userRepo:    userRepo,
		secret:      []byte(cfg.AppKey),
		lifetime:    cfg.SessionLifetime,
		now:         time.Now,
	}
}

// Lifetime is how long a started session stays valid.
func (s *SessionService) Lifetime() time.Duration {
	return s.lifetime
}

// Start persists a new session for user and returns the signed cookie value.
func (s *SessionService) Start(ctx context.Context, user *domain.User) (string, *domain.UserSession, error) {
	now := s.now()
	session := &domain.UserSession{
		ID:        uuid.New(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.lifetime),
		CreatedAt: now,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return "", nil, fmt.Errorf("create session: %w", err)
	}

	claims := jwt.RegisteredClaims{
		Issuer:    sessionIssuer,
		Subject:   strconv.FormatUint(uint64(user.ID), 10),
		ID:        session.ID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign session: %w", err)
	}

	return signed, session, nil
}

// Resolve returns the user and session behind a cookie value. Any invalid,
// expired or revoked session yields ErrSessionNotFound.
func (s *SessionService) Resolve(ctx context.Context, tokenString string) (*domain.User, *domain.UserSession, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithIssuer(sessionIssuer), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, nil, ErrSessionNotFound
	}

	sessionID, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, nil, ErrSessionNotFound
	}

	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrSessionNotFound
		}
		return nil, nil, err
	}
	if session.Expired(s.now()) || strconv.FormatUint(uint64(session.UserID), 10) != claims.Subject {
		return nil, nil, ErrSessionNotFound
	}

	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrSessionNotFound
		}
		return nil, nil, err
	}

	return user, session, nil
}

// End revokes a session. Ending an unknown session is not an error.
func (s *SessionService) End(ctx context.Context, sessionID uuid.UUID) error {
	return s.sessionRepo.Delete(ctx, sessionID)
}
