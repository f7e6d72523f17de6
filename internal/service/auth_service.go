package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dom/restaurant-manager/internal/config"
	"github.com/dom/restaurant-manager/internal/domain"
	"github.com/dom/restaurant-manager/internal/metrics"
	"github.com/dom/restaurant-manager/internal/repository"
	"github.com/dom/restaurant-manager/internal/token"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// RequestContext is threaded through every login and logout call in place of
// ambient request/auth accessors.
type RequestContext struct {
	Channel  Channel
	Guard    Guard
	ClientIP string
	// Intended is the path a guest was bounced from, browser only.
	Intended string
}

// Credentials holds one of the two credential schemes. HasFacebookID is set
// when the facebook_id key was submitted at all, even with an empty value.
type Credentials struct {
	Identifier    string
	Password      string
	FacebookID    string
	HasFacebookID bool
}

func (c Credentials) social() bool {
	return c.HasFacebookID
}

type LoginResult struct {
	User *domain.User
	// Token is the encrypted user id, API channel only.
	Token string
	// RedirectTo is where the browser goes next, browser channel only.
	RedirectTo string
}

type standardInput struct {
	Identifier string `validate:"required"`
	Password   string `validate:"required"`
}

type socialInput struct {
	FacebookID string `validate:"required,numeric"`
}

type AuthService struct {
	userRepo   repository.UserRepository
	throttler  *LoginThrottler
	recorder   metrics.Recorder
	validate   *validator.Validate
	strategies map[Channel]channelStrategy
}

func NewAuthService(userRepo repository.UserRepository, encrypter *token.Encrypter, throttler *LoginThrottler, recorder metrics.Recorder, cfg *config.Config) *AuthService {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &AuthService{
		userRepo:  userRepo,
		throttler: throttler,
		recorder:  recorder,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		strategies: map[Channel]channelStrategy{
			ChannelBrowser: browserStrategy{userRepo: userRepo, homePath: cfg.HomePath},
			ChannelAPI:     apiStrategy{userRepo: userRepo, encrypter: encrypter},
		},
	}
}

// UsernameField is the identifier field name of channel.
func (s *AuthService) UsernameField(channel Channel) string {
	return s.strategy(channel).usernameField()
}

func (s *AuthService) strategy(channel Channel) channelStrategy {
	if st, ok := s.strategies[channel]; ok {
		return st
	}
	return s.strategies[ChannelBrowser]
}

// Login validates, throttles, authenticates and authorizes one attempt.
//
// Errors: *ValidationError for bad input, *ThrottledError during lockout,
// ErrInvalidCredentials for unknown users or wrong secrets, and
// *AuthorizationError for inactive or unprivileged accounts.
func (s *AuthService) Login(ctx context.Context, rc RequestContext, creds Credentials) (*LoginResult, error) {
	st := s.strategy(rc.Channel)

	if err := s.validateLogin(ctx, st, creds); err != nil {
		s.record(rc.Channel, err)
		return nil, err
	}

	key := throttleKey(creds, rc.ClientIP)
	if locked, wait := s.throttler.TooManyAttempts(key); locked {
		err := &ThrottledError{Field: st.usernameField(), RetryAfter: wait}
		s.record(rc.Channel, err)
		return nil, err
	}

	user, err := s.attemptLogin(ctx, st, rc.Guard, creds)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			s.throttler.Hit(key)
		}
		s.record(rc.Channel, err)
		return nil, err
	}
	s.throttler.Clear(key)

	result, err := s.authenticated(ctx, st, rc, user)
	s.record(rc.Channel, err)
	return result, err
}

func (s *AuthService) validateLogin(ctx context.Context, st channelStrategy, creds Credentials) error {
	if creds.social() {
		return s.check(socialInput{FacebookID: creds.FacebookID}, map[string]string{
			"FacebookID": FieldFacebookID,
		})
	}

	err := s.check(standardInput{Identifier: creds.Identifier, Password: creds.Password}, map[string]string{
		"Identifier": st.usernameField(),
		"Password":   FieldPassword,
	})
	if err != nil {
		return err
	}

	return st.checkIdentifier(ctx, creds.Identifier)
}

// check runs struct validation and renames failures to the submitted field names.
func (s *AuthService) check(input interface{}, fields map[string]string) error {
	err := s.validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	verr := &ValidationError{}
	for _, fe := range fieldErrs {
		field := fields[fe.StructField()]
		verr.Add(field, validationMessage(field, fe.Tag()))
	}
	return verr
}

func validationMessage(field, tag string) string {
	attr := strings.ReplaceAll(field, "_", " ")
	switch tag {
	case "required":
		return fmt.Sprintf("The %s field is required.", attr)
	case "numeric":
		return fmt.Sprintf("The %s must be a number.", attr)
	default:
		return fmt.Sprintf("The %s is invalid.", attr)
	}
}

// attemptLogin resolves the credentials to a user and establishes the guard.
func (s *AuthService) attemptLogin(ctx context.Context, st channelStrategy, guard Guard, creds Credentials) (*domain.User, error) {
	var (
		user *domain.User
		err  error
	)

	if creds.social() {
		user, err = s.findBySocialID(ctx, creds.FacebookID)
	} else {
		user, err = st.findUser(ctx, creds.Identifier)
		if err == nil && bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)) != nil {
			err = ErrInvalidCredentials
		}
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := guard.Login(ctx, user); err != nil {
		return nil, fmt.Errorf("establish session: %w", err)
	}
	if !guard.Check() {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *AuthService) findBySocialID(ctx context.Context, raw string) (*domain.User, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.userRepo.GetByFacebookID(ctx, id)
}

// authenticated applies the account-status and channel rules to a user whose
// credentials already checked out.
func (s *AuthService) authenticated(ctx context.Context, st channelStrategy, rc RequestContext, user *domain.User) (*LoginResult, error) {
	if !user.IsActive {
		if err := rc.Guard.Logout(ctx); err != nil {
			return nil, fmt.Errorf("logout inactive user: %w", err)
		}
		return nil, &AuthorizationError{Reason: ReasonInactive, Field: st.usernameField(), Message: MsgAccountInactive}
	}

	return st.authorize(ctx, rc, user)
}

// Logout ends the current authentication for the request's channel.
func (s *AuthService) Logout(ctx context.Context, rc RequestContext) error {
	if err := s.strategy(rc.Channel).logout(ctx, rc); err != nil {
		return err
	}
	s.recorder.RecordLogout(rc.Channel.String())
	return nil
}

// GetUserByID loads a user, mapping a missing row to ErrUserNotFound.
func (s *AuthService) GetUserByID(ctx context.Context, id uint) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) record(channel Channel, err error) {
	s.recorder.RecordLogin(channel.String(), outcome(err))
}

func outcome(err error) string {
	var (
		throttled *ThrottledError
		authz     *AuthorizationError
		invalid   *ValidationError
	)
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.As(err, &throttled):
		return metrics.OutcomeThrottled
	case errors.As(err, &authz):
		if authz.Reason == ReasonInactive {
			return metrics.OutcomeInactive
		}
		return metrics.OutcomeForbidden
	case errors.As(err, &invalid):
		return metrics.OutcomeInvalid
	case errors.Is(err, ErrInvalidCredentials):
		return metrics.OutcomeFailed
	default:
		return metrics.OutcomeInternalError
	}
}

func throttleKey(creds Credentials, clientIP string) string {
	if creds.social() {
		return "facebook:" + creds.FacebookID + "|" + clientIP
	}
	return strings.ToLower(strings.TrimSpace(creds.Identifier)) + "|" + clientIP
}
