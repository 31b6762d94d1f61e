package memory

import (
	"context"
	"sync"
	"time"

	"handyman-recruitment-backend/internal/domain"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[domain.Principal]domain.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[domain.Principal]domain.User)}
}

func (r *UserRepository) GetByPrincipal(ctx context.Context, principal domain.Principal) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[principal]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *UserRepository) UpsertRole(ctx context.Context, principal domain.Principal, role domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.get(principal)
	u.Role = role
	r.users[principal] = u
	return nil
}

// SaveProfile creates unknown principals as guests.
func (r *UserRepository) SaveProfile(ctx context.Context, principal domain.Principal, email string, profile domain.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.get(principal)
	u.DisplayName = profile.Name
	if email != "" {
		u.Email = email
	}
	r.users[principal] = u
	return nil
}

// get must be called with mu held.
func (r *UserRepository) get(principal domain.Principal) domain.User {
	now := time.Now().UTC()
	u, ok := r.users[principal]
	if !ok {
		u = domain.User{Principal: principal, Role: domain.RoleGuest, CreatedAt: now}
	}
	u.UpdatedAt = now
	return u
}
