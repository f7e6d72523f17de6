package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dom/restaurant-manager/internal/domain"
	"github.com/dom/restaurant-manager/internal/service"
	"github.com/dom/restaurant-manager/internal/token"
	"go.uber.org/zap"
)

type contextKey string

const (
	userKey  contextKey = "user"
	guardKey contextKey = "guard"
)

// TokenHeader carries the encrypted user id on the API channel.
const TokenHeader = "X-Session-Token"

// TokenAuth authenticates API requests from the X-Session-Token header, or an
// Authorization: Bearer header as a fallback.
func TokenAuth(encrypter *token.Encrypter, authService *service.AuthService, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				unauthenticated(w)
				return
			}

			userID, err := encrypter.DecryptUserID(raw)
			if err != nil {
				log.Debug("rejecting api token", zap.Error(err))
				unauthenticated(w)
				return
			}

			user, err := authService.GetUserByID(r.Context(), userID)
			if err != nil {
				if !errors.Is(err, service.ErrUserNotFound) {
					log.Error("failed to load token user", zap.Uint("user_id", userID), zap.Error(err))
					writeMessage(w, http.StatusInternalServerError, "Server Error")
					return
				}
				unauthenticated(w)
				return
			}
			if !user.IsActive {
				unauthenticated(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RequireRole admits token users holding any of roles. It runs after TokenAuth.
func RequireRole(roles ...domain.RoleName) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				unauthenticated(w)
				return
			}
			if !user.HasAnyRole(roles...) {
				writeMessage(w, http.StatusForbidden, "This action is unauthorized.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	if tok := strings.TrimSpace(r.Header.Get(TokenHeader)); tok != "" {
		return tok
	}

	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

func unauthenticated(w http.ResponseWriter) {
	writeMessage(w, http.StatusUnauthorized, "Unauthenticated.")
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// WithUser stores the authenticated user on ctx.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the user stored by TokenAuth or LoadSession.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(userKey).(*domain.User)
	return user, ok && user != nil
}
