package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/http"
	"strconv"

	"github.com/dom/restaurant-manager/internal/api/middleware"
	"github.com/dom/restaurant-manager/internal/config"
	"github.com/dom/restaurant-manager/internal/service"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *service.AuthService
	cfg         *config.Config
	log         *zap.Logger
}

func NewAuthHandler(authService *service.AuthService, cfg *config.Config, log *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, cfg: cfg, log: log}
}

var errBadBody = errors.New("invalid request body")

// Login handles both credential schemes for channel.
func (h *AuthHandler) Login(channel service.Channel) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		field := h.authService.UsernameField(channel)

		creds, err := parseCredentials(r, field)
		if err != nil {
			if channel == service.ChannelAPI {
				writeMessage(w, http.StatusBadRequest, msgBadBody)
				return
			}
			h.backToLogin(w, r, flash{Errors: map[string][]string{field: {service.MsgAuthFailed}}})
			return
		}

		rc := service.RequestContext{Channel: channel, ClientIP: clientIP(r)}
		if channel == service.ChannelAPI {
			rc.Guard = service.NewRequestGuard()
		} else {
			guard, ok := middleware.GuardFromContext(r.Context())
			if !ok {
				h.log.Error("browser login without session guard")
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}
			rc.Guard = guard
			rc.Intended = middleware.Intended(r)
		}

		result, err := h.authService.Login(r.Context(), rc, creds)
		if err != nil {
			h.loginFailed(w, r, channel, field, creds, err)
			return
		}

		if channel == service.ChannelAPI {
			w.Header().Set(middleware.TokenHeader, result.Token)
			writeJSON(w, http.StatusOK, dataResponse{Data: NewUserResponse(result.User)})
			return
		}

		middleware.ForgetIntended(w, h.cfg.SessionCookieSecure)
		http.Redirect(w, r, result.RedirectTo, http.StatusFound)
	}
}

func (h *AuthHandler) loginFailed(w http.ResponseWriter, r *http.Request, channel service.Channel, field string, creds service.Credentials, err error) {
	var (
		throttled *service.ThrottledError
		verr      *service.ValidationError
	)

	if channel == service.ChannelAPI {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			writeEmptyObject(w, http.StatusUnauthorized)
		case errors.As(err, &throttled):
			w.Header().Set("Retry-After", strconv.Itoa(throttled.Seconds()))
			writeValidation(w, http.StatusTooManyRequests, service.NewValidationError(throttled.Field, throttled.Message()))
		case errors.As(err, &verr):
			writeValidation(w, http.StatusUnprocessableEntity, verr)
		default:
			h.log.Error("api login failed", zap.Error(err))
			writeMessage(w, http.StatusInternalServerError, msgServerError)
		}
		return
	}

	f := flash{Old: map[string]string{}}
	if !creds.HasFacebookID {
		f.Old[field] = creds.Identifier
	}

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		f.Errors = map[string][]string{field: {service.MsgAuthFailed}}
	case errors.As(err, &verr):
		f.Errors = verr.Errors
	default:
		h.log.Error("browser login failed", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.backToLogin(w, r, f)
}

func (h *AuthHandler) backToLogin(w http.ResponseWriter, r *http.Request, f flash) {
	setFlash(w, f, h.cfg.SessionCookieSecure)
	http.Redirect(w, r, "/login", http.StatusFound)
}

// Logout ends the current authentication for channel.
func (h *AuthHandler) Logout(channel service.Channel) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rc := service.RequestContext{Channel: channel, ClientIP: clientIP(r)}

		if channel == service.ChannelAPI {
			user, ok := middleware.UserFromContext(r.Context())
			if !ok {
				writeMessage(w, http.StatusUnauthorized, "Unauthenticated.")
				return
			}
			guard := service.NewRequestGuard()
			guard.Login(r.Context(), user)
			rc.Guard = guard

			if err := h.authService.Logout(r.Context(), rc); err != nil {
				h.log.Error("api logout failed", zap.Uint("user_id", user.ID), zap.Error(err))
				writeMessage(w, http.StatusInternalServerError, msgServerError)
				return
			}
			writeEmptyObject(w, http.StatusOK)
			return
		}

		guard, ok := middleware.GuardFromContext(r.Context())
		if !ok {
			h.log.Error("browser logout without session guard")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		rc.Guard = guard

		if err := h.authService.Logout(r.Context(), rc); err != nil {
			h.log.Error("browser logout failed", zap.Error(err))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/", http.StatusFound)
	}
}

// parseCredentials reads a JSON or form body. facebook_id counts as submitted
// whenever the key is present.
func parseCredentials(r *http.Request, field string) (service.Credentials, error) {
	var creds service.Credentials

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var body map[string]interface{}
		dec := json.NewDecoder(r.Body)
		dec.UseNumber()
		if err := dec.Decode(&body); err != nil {
			return creds, errBadBody
		}

		creds.Identifier = stringValue(body[field])
		creds.Password = stringValue(body[service.FieldPassword])
		if v, ok := body[service.FieldFacebookID]; ok {
			creds.HasFacebookID = true
			creds.FacebookID = stringValue(v)
		}
		return creds, nil
	}

	if err := r.ParseForm(); err != nil {
		return creds, errBadBody
	}
	creds.Identifier = r.PostForm.Get(field)
	creds.Password = r.PostForm.Get(service.FieldPassword)
	if _, ok := r.PostForm[service.FieldFacebookID]; ok {
		creds.HasFacebookID = true
		creds.FacebookID = r.PostForm.Get(service.FieldFacebookID)
	}
	return creds, nil
}

func stringValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
