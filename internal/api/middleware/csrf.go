package middleware

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"go.uber.org/zap"
)

const (
	CSRFCookieName = "csrf_token"
	CSRFFieldName  = "_token"
	CSRFHeaderName = "X-CSRF-Token"
)

const csrfKey contextKey = "csrf"

// CSRF protects browser form posts with a double-submit token. Safe requests
// get a token cookie; every other request must echo it in the _token field or
// the X-CSRF-Token header.
func CSRF(secure bool, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var token string
			if cookie, err := r.Cookie(CSRFCookieName); err == nil {
				token = cookie.Value
			}

			if isSafeMethod(r.Method) {
				if token == "" {
					fresh, err := generateCSRFToken()
					if err != nil {
						log.Error("failed to generate csrf token", zap.Error(err))
						http.Error(w, "Internal server error", http.StatusInternalServerError)
						return
					}
					token = fresh
					http.SetCookie(w, &http.Cookie{
						Name:     CSRFCookieName,
						Value:    token,
						Path:     "/",
						HttpOnly: true,
						Secure:   secure,
						SameSite: http.SameSiteLaxMode,
					})
				}
				next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), csrfKey, token)))
				return
			}

			submitted := r.Header.Get(CSRFHeaderName)
			if submitted == "" {
				submitted = r.PostFormValue(CSRFFieldName)
			}
			if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(submitted)) != 1 {
				log.Warn("csrf validation failed",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
				)
				http.Error(w, "CSRF token mismatch", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), csrfKey, token)))
		})
	}
}

// CSRFToken returns the token forms must echo back.
func CSRFToken(ctx context.Context) string {
	token, _ := ctx.Value(csrfKey).(string)
	return token
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}

func generateCSRFToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
