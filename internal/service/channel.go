package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dom/restaurant-manager/internal/domain"
	"github.com/dom/restaurant-manager/internal/repository"
	"github.com/dom/restaurant-manager/internal/token"
	"gorm.io/gorm"
)

// Channel is the API surface a request arrived through. The router fixes it
// when mounting the auth handlers.
type Channel string

const (
	ChannelBrowser Channel = "web"
	ChannelAPI     Channel = "api"
)

func (c Channel) IsValid() bool {
	return c == ChannelBrowser || c == ChannelAPI
}

func (c Channel) String() string {
	return string(c)
}

// Identifier fields per channel.
const (
	FieldEmail        = "email"
	FieldMobileNumber = "mobile_number"
	FieldPassword     = "password"
	FieldFacebookID   = "facebook_id"
)

// channelStrategy carries everything that differs between the browser and the
// API login flows.
type channelStrategy interface {
	usernameField() string
	findUser(ctx context.Context, identifier string) (*domain.User, error)
	// checkIdentifier runs after the required-field checks of the standard flow.
	checkIdentifier(ctx context.Context, identifier string) error
	authorize(ctx context.Context, rc RequestContext, user *domain.User) (*LoginResult, error)
	logout(ctx context.Context, rc RequestContext) error
}

type browserStrategy struct {
	userRepo repository.UserRepository
	homePath string
}

func (browserStrategy) usernameField() string { return FieldEmail }

func (b browserStrategy) findUser(ctx context.Context, identifier string) (*domain.User, error) {
	return b.userRepo.GetByEmail(ctx, identifier)
}

func (browserStrategy) checkIdentifier(context.Context, string) error { return nil }

// authorize admits only back-office roles. The session established by the
// guard is kept.
func (b browserStrategy) authorize(ctx context.Context, rc RequestContext, user *domain.User) (*LoginResult, error) {
	if !user.HasAnyRole(domain.PrivilegedRoles...) {
		if err := rc.Guard.Logout(ctx); err != nil {
			return nil, fmt.Errorf("logout unprivileged user: %w", err)
		}
		return nil, &AuthorizationError{Reason: ReasonForbidden, Field: FieldEmail, Message: MsgAuthFailed}
	}

	return &LoginResult{
		User:       user,
		RedirectTo: intendedOr(rc.Intended, b.homePath),
	}, nil
}

func (browserStrategy) logout(ctx context.Context, rc RequestContext) error {
	return rc.Guard.Logout(ctx)
}

type apiStrategy struct {
	userRepo  repository.UserRepository
	encrypter *token.Encrypter
}

func (apiStrategy) usernameField() string { return FieldMobileNumber }

func (a apiStrategy) findUser(ctx context.Context, identifier string) (*domain.User, error) {
	return a.userRepo.GetByMobileNumber(ctx, identifier)
}

// checkIdentifier requires an existing account, then one not linked to
// Facebook. Unknown numbers always get the generic message.
func (a apiStrategy) checkIdentifier(ctx context.Context, identifier string) error {
	user, err := a.userRepo.GetByMobileNumber(ctx, identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewValidationError(FieldMobileNumber, MsgAuthFailed)
		}
		return err
	}
	if user.HasSocialLogin() {
		return NewValidationError(FieldMobileNumber, MsgMobileLinkedToFacebook)
	}
	return nil
}

// authorize ends the request session straight away and hands out the
// encrypted user id as the bearer token. No role check on this channel.
func (a apiStrategy) authorize(ctx context.Context, rc RequestContext, user *domain.User) (*LoginResult, error) {
	if err := rc.Guard.Logout(ctx); err != nil {
		return nil, fmt.Errorf("end api session: %w", err)
	}

	tok, err := a.encrypter.EncryptUserID(user.ID)
	if err != nil {
		return nil, err
	}

	return &LoginResult{User: user, Token: tok}, nil
}

// logout forgets the device but leaves any browser session alone.
func (a apiStrategy) logout(ctx context.Context, rc RequestContext) error {
	user := rc.Guard.User()
	if user == nil {
		return ErrNotAuthenticated
	}
	if err := a.userRepo.ClearDeviceState(ctx, user.ID); err != nil {
		return fmt.Errorf("clear device state: %w", err)
	}
	user.PushToken = nil
	user.LastLoginAt = nil
	return nil
}

// intendedOr accepts only local absolute paths as redirect targets.
func intendedOr(intended, fallback string) string {
	if intended == "" || !strings.HasPrefix(intended, "/") ||
		strings.HasPrefix(intended, "//") || strings.HasPrefix(intended, "/\\") {
		return fallback
	}
	return intended
}
