package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestUser_HasAnyRole(t *testing.T) {
	tests := []struct {
		name  string
		roles []RoleName
		check []RoleName
		want  bool
	}{
		{"admin is privileged", []RoleName{RoleAdmin}, PrivilegedRoles, true},
		{"manager is privileged", []RoleName{RoleRestaurantManager}, PrivilegedRoles, true},
		{"customer is not privileged", []RoleName{RoleCustomer}, PrivilegedRoles, false},
		{"no roles", nil, PrivilegedRoles, false},
		{"mixed roles", []RoleName{RoleCustomer, RoleRestaurantManager}, PrivilegedRoles, true},
		{"empty check", []RoleName{RoleAdmin}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{}
			for _, r := range tt.roles {
				u.Roles = append(u.Roles, Role{Name: r})
			}
			assert.Equal(t, tt.want, u.HasAnyRole(tt.check...))
			assert.Equal(t, len(tt.roles), len(u.RoleNames()))
		})
	}
}

func TestUser_HasSocialLogin(t *testing.T) {
	id := int64(42)
	assert.True(t, (&User{FacebookID: &id}).HasSocialLogin())
	assert.False(t, (&User{}).HasSocialLogin())
}

func TestRoleName(t *testing.T) {
	for _, r := range AllRoleNames {
		assert.True(t, r.IsValid(), r.String())
		assert.NotEmpty(t, r.DisplayName())
	}
	assert.False(t, RoleName("superuser").IsValid())
}

func TestUserSession_Expired(t *testing.T) {
	now := time.Now()
	s := &UserSession{ExpiresAt: now}

	assert.False(t, s.Expired(now.Add(-time.Second)))
	assert.True(t, s.Expired(now))
	assert.True(t, s.Expired(now.Add(time.Second)))
}

func TestDayOfWeek(t *testing.T) {
	assert.Equal(t, "Sunday", DayOfWeek(0).String())
	assert.Equal(t, "Saturday", DayOfWeek(6).String())
	assert.Equal(t, "DayOfWeek(7)", DayOfWeek(7).String())
	assert.False(t, DayOfWeek(-1).IsValid())
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    datatypes.Time
		wantErr bool
	}{
		{in: "09:30", want: datatypes.NewTime(9, 30, 0, 0)},
		{in: "23:59:59", want: datatypes.NewTime(23, 59, 59, 0)},
		{in: " 07:05 ", want: datatypes.NewTime(7, 5, 0, 0)},
		{in: "24:00", wantErr: true},
		{in: "9am", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClock(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTimeFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRestaurantTiming_Validate(t *testing.T) {
	tests := []struct {
		name    string
		timing  RestaurantTiming
		wantErr error
	}{
		{
			name:   "valid",
			timing: RestaurantTiming{DayOfWeek: 3, FromTime: datatypes.NewTime(9, 0, 0, 0), ToTime: datatypes.NewTime(17, 0, 0, 0)},
		},
		{
			name:    "bad day",
			timing:  RestaurantTiming{DayOfWeek: 9, FromTime: datatypes.NewTime(9, 0, 0, 0), ToTime: datatypes.NewTime(17, 0, 0, 0)},
			wantErr: ErrInvalidDayOfWeek,
		},
		{
			name:   "overnight",
			timing: RestaurantTiming{DayOfWeek: 5, FromTime: datatypes.NewTime(18, 0, 0, 0), ToTime: datatypes.NewTime(2, 0, 0, 0)},
		},
		{
			name:    "zero-length",
			timing:  RestaurantTiming{DayOfWeek: 3, FromTime: datatypes.NewTime(9, 0, 0, 0), ToTime: datatypes.NewTime(9, 0, 0, 0)},
			wantErr: ErrInvalidTimeRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.timing.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRestaurantTiming_Overnight(t *testing.T) {
	evening := RestaurantTiming{FromTime: datatypes.NewTime(18, 0, 0, 0), ToTime: datatypes.NewTime(23, 0, 0, 0)}
	lateNight := RestaurantTiming{FromTime: datatypes.NewTime(18, 0, 0, 0), ToTime: datatypes.NewTime(2, 0, 0, 0)}

	assert.False(t, evening.Overnight())
	assert.True(t, lateNight.Overnight())
}
