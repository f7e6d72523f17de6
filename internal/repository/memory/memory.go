// Package memory holds in-memory repositories with the same not-found
// semantics as the postgres ones (gorm.ErrRecordNotFound). Used by tests and
// local tooling.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dom/restaurant-manager/internal/domain"
	"github.com/dom/restaurant-manager/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	_ repository.UserRepository             = (*UserRepository)(nil)
	_ repository.SessionRepository          = (*SessionRepository)(nil)
	_ repository.RestaurantRepository       = (*RestaurantRepository)(nil)
	_ repository.RestaurantTimingRepository = (*RestaurantTimingRepository)(nil)
	_ repository.RestaurantPhotoRepository  = (*RestaurantPhotoRepository)(nil)
)

func NewRepositories() *repository.Repositories {
	return &repository.Repositories{
		User:             NewUserRepository(),
		Session:          NewSessionRepository(),
		Restaurant:       NewRestaurantRepository(),
		RestaurantTiming: NewRestaurantTimingRepository(),
		RestaurantPhoto:  NewRestaurantPhotoRepository(),
	}
}

type UserRepository struct {
	mu     sync.RWMutex
	nextID uint
	store  map[uint]*domain.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{nextID: 1, store: make(map[uint]*domain.User)}
}

func copyUser(u *domain.User) *domain.User {
	c := *u
	c.Roles = append([]domain.Role(nil), u.Roles...)
	return &c
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.store {
		if sameString(existing.Email, user.Email) || sameString(existing.MobileNumber, user.MobileNumber) ||
			(existing.FacebookID != nil && user.FacebookID != nil && *existing.FacebookID == *user.FacebookID) {
			return fmt.Errorf("duplicate user identifier")
		}
	}

	if user.ID == 0 {
		user.ID = r.nextID
	}
	if user.ID >= r.nextID {
		r.nextID = user.ID + 1
	}
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	r.store[user.ID] = copyUser(user)
	return nil
}

func sameString(a, b *string) bool {
	return a != nil && b != nil && *a == *b
}

func (r *UserRepository) GetByID(_ context.Context, id uint) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.ID == id })
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Email != nil && *u.Email == email })
}

func (r *UserRepository) GetByMobileNumber(_ context.Context, mobileNumber string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.MobileNumber != nil && *u.MobileNumber == mobileNumber })
}

func (r *UserRepository) GetByFacebookID(_ context.Context, facebookID int64) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.FacebookID != nil && *u.FacebookID == facebookID })
}

func (r *UserRepository) find(match func(*domain.User) bool) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.store {
		if match(u) {
			return copyUser(u), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *UserRepository) ClearDeviceState(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.store[id]; ok {
		u.PushToken = nil
		u.LastLoginAt = nil
		u.UpdatedAt = time.Now()
	}
	return nil
}

func (r *UserRepository) SetActive(_ context.Context, id uint, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.store[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.IsActive = active
	u.UpdatedAt = time.Now()
	return nil
}

func (r *UserRepository) AssignRoles(_ context.Context, user *domain.User, names ...domain.RoleName) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.store[user.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for _, name := range names {
		if !name.IsValid() {
			return fmt.Errorf("unknown role %q", name)
		}
		if !stored.HasRole(name) {
			stored.Roles = append(stored.Roles, domain.Role{ID: roleID(name), Name: name})
		}
	}
	user.Roles = append([]domain.Role(nil), stored.Roles...)
	return nil
}

func roleID(name domain.RoleName) uint {
	for i, n := range domain.AllRoleNames {
		if n == name {
			return uint(i + 1)
		}
	}
	return 0
}

type SessionRepository struct {
	mu    sync.RWMutex
	store map[uuid.UUID]domain.UserSession
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{store: make(map[uuid.UUID]domain.UserSession)}
}

func (r *SessionRepository) Create(_ context.Context, session *domain.UserSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.store[session.ID] = *session
	return nil
}

func (r *SessionRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.UserSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.store[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &s, nil
}

func (r *SessionRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.store, id)
	return nil
}

func (r *SessionRepository) DeleteByUserID(_ context.Context, userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.store {
		if s.UserID == userID {
			delete(r.store, id)
		}
	}
	return nil
}

// Count returns the number of live session rows.
func (r *SessionRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.store)
}

type RestaurantRepository struct {
	mu     sync.RWMutex
	nextID uint
	store  map[uint]domain.Restaurant
}

func NewRestaurantRepository() *RestaurantRepository {
	return &RestaurantRepository{nextID: 1, store: make(map[uint]domain.Restaurant)}
}

func (r *RestaurantRepository) Create(_ context.Context, restaurant *domain.Restaurant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	restaurant.ID = r.nextID
	r.nextID++
	now := time.Now()
	restaurant.CreatedAt, restaurant.UpdatedAt = now, now
	stored := *restaurant
	stored.Timings, stored.Photos = nil, nil
	r.store[restaurant.ID] = stored
	return nil
}

func (r *RestaurantRepository) GetByID(_ context.Context, id uint) (*domain.Restaurant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	restaurant, ok := r.store[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &restaurant, nil
}

type RestaurantTimingRepository struct {
	mu     sync.RWMutex
	nextID uint
	store  map[uint][]domain.RestaurantTiming
}

func NewRestaurantTimingRepository() *RestaurantTimingRepository {
	return &RestaurantTimingRepository{nextID: 1, store: make(map[uint][]domain.RestaurantTiming)}
}

func (r *RestaurantTimingRepository) ReplaceForRestaurant(_ context.Context, restaurantID uint, timings []*domain.RestaurantTiming) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows := make([]domain.RestaurantTiming, 0, len(timings))
	now := time.Now()
	for _, t := range timings {
		t.ID = r.nextID
		r.nextID++
		t.RestaurantID = restaurantID
		t.CreatedAt, t.UpdatedAt = now, now
		rows = append(rows, *t)
	}
	r.store[restaurantID] = rows
	return nil
}

func (r *RestaurantTimingRepository) ListByRestaurant(_ context.Context, restaurantID uint) ([]*domain.RestaurantTiming, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.RestaurantTiming, 0, len(r.store[restaurantID]))
	for _, t := range r.store[restaurantID] {
		t := t
		out = append(out, &t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DayOfWeek != out[j].DayOfWeek {
			return out[i].DayOfWeek < out[j].DayOfWeek
		}
		return out[i].FromTime < out[j].FromTime
	})
	return out, nil
}

type RestaurantPhotoRepository struct {
	mu     sync.RWMutex
	nextID uint
	store  []domain.RestaurantPhoto
}

func NewRestaurantPhotoRepository() *RestaurantPhotoRepository {
	return &RestaurantPhotoRepository{nextID: 1}
}

func (r *RestaurantPhotoRepository) Create(_ context.Context, photo *domain.RestaurantPhoto) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	photo.ID = r.nextID
	r.nextID++
	now := time.Now()
	photo.CreatedAt, photo.UpdatedAt = now, now
	r.store = append(r.store, *photo)
	return nil
}

func (r *RestaurantPhotoRepository) ListByRestaurant(_ context.Context, restaurantID uint) ([]*domain.RestaurantPhoto, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.RestaurantPhoto
	for _, p := range r.store {
		if p.RestaurantID == restaurantID {
			p := p
			out = append(out, &p)
		}
	}
	return out, nil
}

func (r *RestaurantPhotoRepository) Delete(_ context.Context, restaurantID, photoID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.store {
		if p.RestaurantID == restaurantID && p.ID == photoID {
			r.store = append(r.store[:i], r.store[i+1:]...)
			return nil
		}
	}
	return domain.ErrPhotoNotFound
}
