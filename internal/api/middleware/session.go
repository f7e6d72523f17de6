package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/dom/restaurant-manager/internal/domain"
	"github.com/dom/restaurant-manager/internal/service"
	"go.uber.org/zap"
)

const (
	SessionCookieName  = "session_id"
	IntendedCookieName = "intended_url"
)

// CookieGuard is the browser guard: a user_sessions row referenced by a
// signed HttpOnly cookie.
type CookieGuard struct {
	sessions *service.SessionService
	w        http.ResponseWriter
	secure   bool

	user    *domain.User
	session *domain.UserSession
}

var _ service.Guard = (*CookieGuard)(nil)

func NewCookieGuard(sessions *service.SessionService, w http.ResponseWriter, secure bool) *CookieGuard {
	return &CookieGuard{sessions: sessions, w: w, secure: secure}
}

// Login starts a fresh session for user, replacing any current one.
func (g *CookieGuard) Login(ctx context.Context, user *domain.User) error {
	if g.session != nil {
		if err := g.sessions.End(ctx, g.session.ID); err != nil {
			return err
		}
		g.session = nil
	}

	value, session, err := g.sessions.Start(ctx, user)
	if err != nil {
		return err
	}

	http.SetCookie(g.w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteLaxMode,
	})

	g.user = user
	g.session = session
	return nil
}

func (g *CookieGuard) Check() bool {
	return g.user != nil
}

func (g *CookieGuard) User() *domain.User {
	return g.user
}

// Logout deletes the session row and expires the cookie.
func (g *CookieGuard) Logout(ctx context.Context) error {
	if g.session != nil {
		if err := g.sessions.End(ctx, g.session.ID); err != nil {
			return err
		}
	}
	expireCookie(g.w, SessionCookieName, g.secure)

	g.user = nil
	g.session = nil
	return nil
}

func expireCookie(w http.ResponseWriter, name string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// LoadSession resolves the session cookie, if any, and attaches a CookieGuard
// to the request. Invalid cookies are expired and the request continues as a
// guest.
func LoadSession(sessions *service.SessionService, secure bool, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			guard := NewCookieGuard(sessions, w, secure)
			ctx := r.Context()

			if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
				user, session, err := sessions.Resolve(ctx, cookie.Value)
				switch {
				case err == nil && !mayKeepSession(user):
					// Deactivated or demoted since sign-in
					if err := sessions.End(ctx, session.ID); err != nil {
						log.Error("failed to end revoked session", zap.Uint("user_id", user.ID), zap.Error(err))
						http.Error(w, "Internal server error", http.StatusInternalServerError)
						return
					}
					expireCookie(w, SessionCookieName, secure)
				case err == nil:
					guard.user = user
					guard.session = session
					ctx = WithUser(ctx, user)
				case errors.Is(err, service.ErrSessionNotFound):
					expireCookie(w, SessionCookieName, secure)
				default:
					log.Error("failed to resolve session", zap.Error(err))
					http.Error(w, "Internal server error", http.StatusInternalServerError)
					return
				}
			}

			ctx = context.WithValue(ctx, guardKey, guard)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// mayKeepSession applies the browser sign-in rules to an existing session.
func mayKeepSession(user *domain.User) bool {
	return user.IsActive && user.HasAnyRole(domain.PrivilegedRoles...)
}

// GuardFromContext returns the guard attached by LoadSession.
func GuardFromContext(ctx context.Context) (*CookieGuard, bool) {
	guard, ok := ctx.Value(guardKey).(*CookieGuard)
	return guard, ok
}

// RequireSession redirects guests to /login, remembering where they were going.
func RequireSession(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if guard, ok := GuardFromContext(r.Context()); ok && guard.Check() {
				next.ServeHTTP(w, r)
				return
			}

			if r.Method == http.MethodGet {
				http.SetCookie(w, &http.Cookie{
					Name:     IntendedCookieName,
					Value:    url.QueryEscape(r.URL.RequestURI()),
					Path:     "/",
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			http.Redirect(w, r, "/login", http.StatusFound)
		})
	}
}

// Guest sends already signed-in browser users to homePath.
func Guest(homePath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if guard, ok := GuardFromContext(r.Context()); ok && guard.Check() {
				http.Redirect(w, r, homePath, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Intended returns the remembered destination, or "".
func Intended(r *http.Request) string {
	cookie, err := r.Cookie(IntendedCookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	intended, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return ""
	}
	return intended
}

// ForgetIntended clears the remembered destination once it has been used.
func ForgetIntended(w http.ResponseWriter, secure bool) {
	expireCookie(w, IntendedCookieName, secure)
}
