package domain

import (
	"context"
	"time"
)

// User is a principal known to the role store.
type User struct {
	Principal   Principal `json:"principal"`
	Email       string    `json:"email,omitempty"`
	Role        Role      `json:"role"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type UserProfile struct {
	Name string `json:"name" validate:"required,max=120,no_emoji"`
}

type UserRepository interface {
	// GetByPrincipal returns nil, nil for principals the store has never seen.
	GetByPrincipal(ctx context.Context, principal Principal) (*User, error)
	UpsertRole(ctx context.Context, principal Principal, role Role) error
	SaveProfile(ctx context.Context, principal Principal, email string, profile UserProfile) error
}

// AccessUsecase is the admin access gate plus the caller-facing identity operations.
type AccessUsecase interface {
	ResolveRole(ctx context.Context, principal Principal) (Role, error)
	// Authorize returns nil (allow) or an apperror of kind unauthorized (deny).
	Authorize(ctx context.Context, principal Principal, required Role) error
	// AuthorizeCaller runs Authorize for the principal of the session in ctx.
	AuthorizeCaller(ctx context.Context, required Role) error

	CallerRole(ctx context.Context) (Role, error)
	IsCallerAdmin(ctx context.Context) bool
	AssignRole(ctx context.Context, target Principal, role Role) error

	GetCallerProfile(ctx context.Context) (*UserProfile, error)
	SaveCallerProfile(ctx context.Context, profile *UserProfile) error
	GetUserProfile(ctx context.Context, target Principal) (*UserProfile, error)
}
