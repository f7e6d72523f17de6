package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	Name         string     `json:"name" gorm:"not null"`
	Email        *string    `json:"email" gorm:"uniqueIndex"`
	MobileNumber *string    `json:"mobileNumber" gorm:"uniqueIndex"`
	PasswordHash string     `json:"-" gorm:"column:password;not null"`
	FacebookID   *int64     `json:"facebookId" gorm:"uniqueIndex"`
	IsActive     bool       `json:"isActive" gorm:"not null"`
	PushToken    *string    `json:"-"`
	LastLoginAt  *time.Time `json:"lastLoginAt"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`

	Roles []Role `json:"roles,omitempty" gorm:"many2many:role_user"`
}

// HasSocialLogin reports whether the account is linked to a Facebook identity.
func (u *User) HasSocialLogin() bool {
	return u.FacebookID != nil
}

// HasRole checks a single role assignment.
func (u *User) HasRole(name RoleName) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the user holds at least one of the given roles.
func (u *User) HasAnyRole(names ...RoleName) bool {
	for _, name := range names {
		if u.HasRole(name) {
			return true
		}
	}
	return false
}

// RoleNames returns the names of the assigned roles in assignment order.
func (u *User) RoleNames() []RoleName {
	names := make([]RoleName, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// UserSession backs an authenticated browser session.
type UserSession struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	UserID    uint      `json:"userId" gorm:"not null;index"`
	ExpiresAt time.Time `json:"expiresAt" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
}

// Expired reports whether the session is no longer usable at the given time.
func (s *UserSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
