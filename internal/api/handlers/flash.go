package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"
)

const flashCookieName = "flash"

// flash is the one-shot state carried across the redirect back to the login form.
type flash struct {
	Errors map[string][]string `json:"errors,omitempty"`
	Old    map[string]string   `json:"old,omitempty"`
}

func (f *flash) First(field string) string {
	if f == nil {
		return ""
	}
	if msgs := f.Errors[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

func (f *flash) OldInput(field string) string {
	if f == nil {
		return ""
	}
	return f.Old[field]
}

func setFlash(w http.ResponseWriter, f flash, secure bool) {
	raw, err := json.Marshal(f)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// pullFlash reads and clears the flash cookie. A missing or corrupt cookie yields nil.
func pullFlash(w http.ResponseWriter, r *http.Request, secure bool) *flash {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})

	raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	var f flash
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil
	}
	return &f
}
