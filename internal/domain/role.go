package domain

// RoleName identifies a role assignable to a user
type RoleName string

const (
	RoleAdmin             RoleName = "admin"
	RoleRestaurantManager RoleName = "restaurant_manager"
	RoleCustomer          RoleName = "customer"
)

// AllRoleNames contains every known role
var AllRoleNames = []RoleName{RoleAdmin, RoleRestaurantManager, RoleCustomer}

// PrivilegedRoles may sign in to the back office through the browser.
var PrivilegedRoles = []RoleName{RoleAdmin, RoleRestaurantManager}

// IsValid checks if a role name is known
func (r RoleName) IsValid() bool {
	switch r {
	case RoleAdmin, RoleRestaurantManager, RoleCustomer:
		return true
	}
	return false
}

// String returns the string representation of the role
func (r RoleName) String() string {
	return string(r)
}

// DisplayName returns a user-friendly display name for the role
func (r RoleName) DisplayName() string {
	switch r {
	case RoleAdmin:
		return "Administrator"
	case RoleRestaurantManager:
		return "Restaurant Manager"
	case RoleCustomer:
		return "Customer"
	default:
		return string(r)
	}
}

type Role struct {
	ID   uint     `json:"id" gorm:"primaryKey"`
	Name RoleName `json:"name" gorm:"type:varchar(50);uniqueIndex;not null"`
}

// TableName returns the table name for GORM
func (Role) TableName() string {
	return "roles"
}
