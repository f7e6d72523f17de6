package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrSessionNotFound    = errors.New("session not found")
	ErrNotAuthenticated   = errors.New("not authenticated")
)

// User-facing messages.
const (
	MsgAuthFailed             = "These credentials do not match our records."
	MsgAccountInactive        = "Your account is inactive. Please contact support."
	MsgMobileLinkedToFacebook = "This mobile number is linked to a Facebook account. Please log in with Facebook."
	msgThrottle               = "Too many login attempts. Please try again in %d seconds."
)

// ValidationError is a field-keyed message bag, reported back to the caller
// against the submitted form fields.
type ValidationError struct {
	Errors map[string][]string
}

func NewValidationError(field, message string) *ValidationError {
	v := &ValidationError{}
	v.Add(field, message)
	return v
}

func (v *ValidationError) Add(field, message string) {
	if v.Errors == nil {
		v.Errors = make(map[string][]string)
	}
	v.Errors[field] = append(v.Errors[field], message)
}

// First returns the first message for field, or "".
func (v *ValidationError) First(field string) string {
	if msgs := v.Errors[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

func (v *ValidationError) Empty() bool {
	return len(v.Errors) == 0
}

func (v *ValidationError) Error() string {
	fields := make([]string, 0, len(v.Errors))
	for f := range v.Errors {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+strings.Join(v.Errors[f], " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ThrottledError is returned while a login key is locked out.
type ThrottledError struct {
	Field      string
	RetryAfter time.Duration
}

func (e *ThrottledError) Seconds() int {
	secs := int((e.RetryAfter + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}

func (e *ThrottledError) Message() string {
	return fmt.Sprintf(msgThrottle, e.Seconds())
}

func (e *ThrottledError) Error() string {
	return "login throttled: " + e.Message()
}

// Unwrap exposes the lockout as an ordinary validation error on the identifier field.
func (e *ThrottledError) Unwrap() error {
	return NewValidationError(e.Field, e.Message())
}

type AuthorizationReason string

const (
	ReasonInactive  AuthorizationReason = "inactive"
	ReasonForbidden AuthorizationReason = "forbidden"
)

// AuthorizationError is raised after the credentials checked out but the
// account may not sign in. It is reported like a validation error on the
// channel's identifier field.
type AuthorizationError struct {
	Reason  AuthorizationReason
	Field   string
	Message string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("login not authorized (%s): %s", e.Reason, e.Message)
}

func (e *AuthorizationError) Unwrap() error {
	return NewValidationError(e.Field, e.Message)
}
