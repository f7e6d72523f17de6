package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/dom/restaurant-manager/internal/api/middleware"
	"github.com/dom/restaurant-manager/internal/domain"
	"github.com/dom/restaurant-manager/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	name         string
	email        *string
	mobileNumber *string
	facebookID   *int64
	password     string
	active       bool
	roles        []domain.RoleName
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	suffix := uuid.New().String()[:8]
	email := fmt.Sprintf("user_%s@example.com", suffix)
	return &UserBuilder{
		name:     "Test User " + suffix,
		email:    &email,
		password: "testpassword123",
		active:   true,
	}
}

// WithName sets the display name
func (b *UserBuilder) WithName(name string) *UserBuilder {
	b.name = name
	return b
}

// WithEmail sets the email address
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = &email
	return b
}

// WithMobileNumber sets the mobile number used as the API username
func (b *UserBuilder) WithMobileNumber(mobile string) *UserBuilder {
	b.mobileNumber = &mobile
	return b
}

// WithFacebookID links the account to a Facebook identity
func (b *UserBuilder) WithFacebookID(id int64) *UserBuilder {
	b.facebookID = &id
	return b
}

// WithPassword sets the password
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// WithRoles assigns roles after creation
func (b *UserBuilder) WithRoles(roles ...domain.RoleName) *UserBuilder {
	b.roles = append(b.roles, roles...)
	return b
}

// Inactive marks the account as deactivated
func (b *UserBuilder) Inactive() *UserBuilder {
	b.active = false
	return b
}

// Build creates the user through repo and returns it with the raw password
func (b *UserBuilder) Build(t *testing.T, repo repository.UserRepository) (*domain.User, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		Name:         b.name,
		Email:        b.email,
		MobileNumber: b.mobileNumber,
		FacebookID:   b.facebookID,
		PasswordHash: string(hashedPassword),
		IsActive:     b.active,
	}

	ctx := context.Background()
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	if len(b.roles) > 0 {
		if err := repo.AssignRoles(ctx, user, b.roles...); err != nil {
			t.Fatalf("failed to assign roles: %v", err)
		}
	}

	return user, b.password
}

// CreateRestaurant inserts a restaurant named name
func CreateRestaurant(t *testing.T, repo repository.RestaurantRepository, name string) *domain.Restaurant {
	t.Helper()

	restaurant := &domain.Restaurant{Name: name}
	if err := repo.Create(context.Background(), restaurant); err != nil {
		t.Fatalf("failed to create restaurant: %v", err)
	}
	return restaurant
}

// UserResponse matches the serialized user on the API channel
type UserResponse struct {
	ID           uint     `json:"id"`
	Name         string   `json:"name"`
	Email        *string  `json:"email"`
	MobileNumber *string  `json:"mobile_number"`
	FacebookID   *int64   `json:"facebook_id"`
	IsActive     bool     `json:"is_active"`
	Roles        []string `json:"roles"`
}

// LoginResponse matches the API login body
type LoginResponse struct {
	Data UserResponse `json:"data"`
}

// ErrorResponse matches the API validation error body
type ErrorResponse struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// LoginAPI logs in through /api/login and returns the X-Session-Token value
func (ts *TestServer) LoginAPI(t *testing.T, mobile, password string) string {
	t.Helper()

	resp := PostJSON(t, ts.APIURL("/login"), map[string]string{
		"mobile_number": mobile,
		"password":      password,
	}, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status code: %d", resp.StatusCode)
	}

	tok := resp.Header.Get("X-Session-Token")
	if tok == "" {
		t.Fatalf("missing X-Session-Token header")
	}
	return tok
}

// PostJSON sends body as JSON, with an X-Session-Token when tok is set
func PostJSON(t *testing.T, url string, body interface{}, tok string) *http.Response {
	t.Helper()
	return DoJSON(t, http.DefaultClient, http.MethodPost, url, body, tok)
}

// DoJSON sends a JSON request through client
func DoJSON(t *testing.T, client *http.Client, method, url string, body interface{}, tok string) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if tok != "" {
		req.Header.Set("X-Session-Token", tok)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

// PostForm submits an urlencoded form through client
// PostForm posts form as a browser would. When the client's jar holds a CSRF
// cookie and form carries no token, the token is added.
func PostForm(t *testing.T, client *http.Client, target string, form url.Values) *http.Response {
	t.Helper()

	if client.Jar != nil && form.Get(middleware.CSRFFieldName) == "" {
		if u, err := url.Parse(target); err == nil {
			for _, c := range client.Jar.Cookies(u) {
				if c.Name == middleware.CSRFCookieName {
					withToken := url.Values{}
					for k, v := range form {
						withToken[k] = v
					}
					withToken.Set(middleware.CSRFFieldName, c.Value)
					form = withToken
				}
			}
		}
	}

	req, err := http.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}
