package domain

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
)

type Restaurant struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Timings []RestaurantTiming `json:"timings,omitempty" gorm:"foreignKey:RestaurantID"`
	Photos  []RestaurantPhoto  `json:"photos,omitempty" gorm:"foreignKey:RestaurantID"`
}

// DayOfWeek follows time.Weekday numbering, Sunday = 0.
type DayOfWeek int

// IsValid checks if the day is within Sunday..Saturday
func (d DayOfWeek) IsValid() bool {
	return d >= 0 && d <= 6
}

func (d DayOfWeek) String() string {
	if !d.IsValid() {
		return fmt.Sprintf("DayOfWeek(%d)", int(d))
	}
	return time.Weekday(d).String()
}

// RestaurantTiming is one weekly opening-hours row.
type RestaurantTiming struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	RestaurantID uint           `json:"restaurantId" gorm:"not null;index"`
	DayOfWeek    DayOfWeek      `json:"dayOfWeek" gorm:"not null"`
	FromTime     datatypes.Time `json:"fromTime" gorm:"not null"`
	ToTime       datatypes.Time `json:"toTime" gorm:"not null"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`

	Restaurant *Restaurant `json:"restaurant,omitempty" gorm:"foreignKey:RestaurantID"`
}

// TableName returns the table name for GORM
func (RestaurantTiming) TableName() string {
	return "restaurant_timings"
}

// Validate checks the day and that the row is not empty. A closing time
// before the opening time means the row runs past midnight.
func (t *RestaurantTiming) Validate() error {
	if !t.DayOfWeek.IsValid() {
		return ErrInvalidDayOfWeek
	}
	if t.FromTime == t.ToTime {
		return ErrInvalidTimeRange
	}
	return nil
}

// Overnight reports whether the row closes on the following day.
func (t *RestaurantTiming) Overnight() bool {
	return t.ToTime < t.FromTime
}

// ParseClock parses "HH:MM" or "HH:MM:SS" into a datatypes.Time.
func ParseClock(s string) (datatypes.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return datatypes.NewTime(t.Hour(), t.Minute(), t.Second(), 0), nil
		}
	}
	return 0, ErrInvalidTimeFormat
}

// RestaurantPhoto is an image reference in a restaurant's gallery.
type RestaurantPhoto struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	RestaurantID uint      `json:"restaurantId" gorm:"not null;index"`
	Photo        string    `json:"photo" gorm:"not null"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TableName returns the table name for GORM
func (RestaurantPhoto) TableName() string {
	return "restaurant_photos"
}
