package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/dom/restaurant-manager/internal/api/middleware"
	"github.com/dom/restaurant-manager/internal/config"
	"github.com/dom/restaurant-manager/internal/domain"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// PageHandler renders the browser pages.
type PageHandler struct {
	cfg *config.Config
	log *zap.Logger
}

func NewPageHandler(cfg *config.Config, log *zap.Logger) *PageHandler {
	return &PageHandler{cfg: cfg, log: log}
}

type loginPage struct {
	Title     string
	CSRFToken string
	Flash     *flash
}

type dashboardPage struct {
	Title     string
	CSRFToken string
	User      *domain.User
}

func (h *PageHandler) Login(w http.ResponseWriter, r *http.Request) {
	f := pullFlash(w, r, h.cfg.SessionCookieSecure)
	if f == nil {
		f = &flash{}
	}
	h.render(w, "login", loginPage{
		Title:     "Sign in",
		CSRFToken: middleware.CSRFToken(r.Context()),
		Flash:     f,
	})
}

func (h *PageHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	h.render(w, "dashboard", dashboardPage{
		Title:     "Dashboard",
		CSRFToken: middleware.CSRFToken(r.Context()),
		User:      user,
	})
}

// Home sends signed-in users to the dashboard and everyone else to the login form.
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.UserFromContext(r.Context()); ok {
		http.Redirect(w, r, h.cfg.HomePath, http.StatusFound)
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (h *PageHandler) render(w http.ResponseWriter, name string, data interface{}) {
	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		h.log.Error("failed to render page", zap.String("page", name), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}
