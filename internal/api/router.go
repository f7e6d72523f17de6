package api

import (
	"net/http"

	"github.com/dom/restaurant-manager/internal/api/handlers"
	"github.com/dom/restaurant-manager/internal/api/middleware"
	"github.com/dom/restaurant-manager/internal/config"
	"github.com/dom/restaurant-manager/internal/domain"
	"github.com/dom/restaurant-manager/internal/metrics"
	"github.com/dom/restaurant-manager/internal/service"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func NewRouter(services *service.Services, cfg *config.Config, log *zap.Logger, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.RequestLogger(log))
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler(gatherer))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth, cfg, log)
	pageHandler := handlers.NewPageHandler(cfg, log)
	restaurantHandler := handlers.NewRestaurantHandler(services.Restaurant, log)

	// Browser routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.LoadSession(services.Session, cfg.SessionCookieSecure, log))
		r.Use(middleware.CSRF(cfg.SessionCookieSecure, log))

		r.Get("/", pageHandler.Home)
		r.Post("/logout", authHandler.Logout(service.ChannelBrowser))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Guest(cfg.HomePath))
			r.Get("/login", pageHandler.Login)
			r.Post("/login", authHandler.Login(service.ChannelBrowser))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession(cfg.SessionCookieSecure))
			r.Get("/dashboard", pageHandler.Dashboard)
		})
	})

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.NewRateLimiter(cfg.APIRateLimit, log).Middleware())

		r.Post("/login", authHandler.Login(service.ChannelAPI))

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.TokenAuth(services.Encrypter, services.Auth, log))

			r.Post("/logout", authHandler.Logout(service.ChannelAPI))

			r.Route("/restaurants/{id}", func(r chi.Router) {
				r.Get("/timings", restaurantHandler.GetTimings)
				r.Get("/photos", restaurantHandler.GetPhotos)

				// Back office staff only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(domain.PrivilegedRoles...))
					r.Put("/timings", restaurantHandler.SetTimings)
					r.Post("/photos", restaurantHandler.AddPhoto)
					r.Delete("/photos/{photoID}", restaurantHandler.RemovePhoto)
				})
			})
		})
	})

	return r
}
