package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dom/restaurant-manager/internal/domain"
	"github.com/dom/restaurant-manager/internal/service"
)

// UserResponse is the serialized user on the API channel.
type UserResponse struct {
	ID           uint       `json:"id"`
	Name         string     `json:"name"`
	Email        *string    `json:"email"`
	MobileNumber *string    `json:"mobile_number"`
	FacebookID   *int64     `json:"facebook_id"`
	IsActive     bool       `json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	Roles        []string   `json:"roles"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func NewUserResponse(u *domain.User) UserResponse {
	roles := make([]string, 0, len(u.Roles))
	for _, name := range u.RoleNames() {
		roles = append(roles, name.String())
	}

	return UserResponse{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		MobileNumber: u.MobileNumber,
		FacebookID:   u.FacebookID,
		IsActive:     u.IsActive,
		LastLoginAt:  u.LastLoginAt,
		Roles:        roles,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

type dataResponse struct {
	Data interface{} `json:"data"`
}

type errorResponse struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

const (
	msgInvalidData = "The given data was invalid."
	msgBadBody     = "The request body could not be parsed."
	msgServerError = "Server Error"
)

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeEmptyObject writes {} so clients always get an object to parse.
func writeEmptyObject(w http.ResponseWriter, status int) {
	writeJSON(w, status, struct{}{})
}

func writeValidation(w http.ResponseWriter, status int, verr *service.ValidationError) {
	writeJSON(w, status, errorResponse{Message: msgInvalidData, Errors: verr.Errors})
}

// writeMessage is the API error shape when there is no field to blame.
func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Message: message})
}
