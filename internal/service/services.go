package service

import (
	"github.com/dom/restaurant-manager/internal/config"
	"github.com/dom/restaurant-manager/internal/metrics"
	"github.com/dom/restaurant-manager/internal/repository"
	"github.com/dom/restaurant-manager/internal/token"
)

type Services struct {
	Auth       *AuthService
	Session    *SessionService
	Restaurant *RestaurantService
	Encrypter  *token.Encrypter
}

func NewServices(repos *repository.Repositories, cfg *config.Config, recorder metrics.Recorder) (*Services, error) {
	encrypter, err := token.NewEncrypter(cfg.AppKey)
	if err != nil {
		return nil, err
	}

	throttler := NewLoginThrottler(cfg.LoginMaxAttempts, cfg.LoginDecay)

	return &Services{
		Auth:       NewAuthService(repos.User, encrypter, throttler, recorder, cfg),
		Session:    NewSessionService(repos.Session, repos.User, cfg),
		Restaurant: NewRestaurantService(repos.Restaurant, repos.RestaurantTiming, repos.RestaurantPhoto),
		Encrypter:  encrypter,
	}, nil
}
