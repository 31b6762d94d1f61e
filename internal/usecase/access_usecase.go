package usecase

import (
	"context"
	"strings"

	"handyman-recruitment-backend/internal/domain"
	"handyman-recruitment-backend/pkg/apperror"
	"handyman-recruitment-backend/pkg/logger"
	"handyman-recruitment-backend/pkg/security"
	"handyman-recruitment-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type accessUsecase struct {
	users    domain.UserRepository
	validate *validator.Validate
}

func NewAccessUsecase(users domain.UserRepository, validate *validator.Validate) domain.AccessUsecase {
	return &accessUsecase{users: users, validate: validate}
}

// ResolveRole reads the role store. Principals the store has never seen,
// or whose stored role is not recognised, are guests.
func (u *accessUsecase) ResolveRole(ctx context.Context, principal domain.Principal) (domain.Role, error) {
	if principal == "" {
		return domain.RoleGuest, nil
	}
	user, err := u.users.GetByPrincipal(ctx, principal)
	if err != nil {
		return domain.RoleGuest, err
	}
	if user == nil {
		return domain.RoleGuest, nil
	}
	role, ok := domain.ParseRole(string(user.Role))
	if !ok {
		return domain.RoleGuest, nil
	}
	return role, nil
}

// Authorize re-resolves the role on every call. A role store failure is a deny.
func (u *accessUsecase) Authorize(ctx context.Context, principal domain.Principal, required domain.Role) error {
	if principal == "" {
		return apperror.Unauthenticated("Authentication required")
	}

	role, err := u.ResolveRole(ctx, principal)
	if err != nil {
		logger.Log.Error("Role resolution failed, denying access", "error", err)
		security.DefaultLogger().LogRoleResolveFailed(ctx, string(principal), err)
		return apperror.Unauthorized("Access denied")
	}

	allowed := role.Satisfies(required)
	if required == domain.RoleAdmin {
		allowed = role == domain.RoleAdmin
	}
	if !allowed {
		security.DefaultLogger().LogAccessDenied(ctx, string(principal), string(role), string(required))
		return apperror.Unauthorized("Access denied")
	}
	return nil
}

func (u *accessUsecase) AuthorizeCaller(ctx context.Context, required domain.Role) error {
	principal, ok := domain.PrincipalFromContext(ctx)
	if !ok {
		return apperror.Unauthenticated("Authentication required")
	}
	return u.Authorize(ctx, principal, required)
}

func (u *accessUsecase) CallerRole(ctx context.Context) (domain.Role, error) {
	principal, ok := domain.PrincipalFromContext(ctx)
	if !ok {
		return domain.RoleGuest, nil
	}
	role, err := u.ResolveRole(ctx, principal)
	if err != nil {
		return domain.RoleGuest, apperror.Upstream("Role store unavailable", err)
	}
	return role, nil
}

// IsCallerAdmin never fails: anything short of a positive admin check is false.
func (u *accessUsecase) IsCallerAdmin(ctx context.Context) bool {
	return u.AuthorizeCaller(ctx, domain.RoleAdmin) == nil
}

func (u *accessUsecase) AssignRole(ctx context.Context, target domain.Principal, role domain.Role) error {
	if err := u.AuthorizeCaller(ctx, domain.RoleAdmin); err != nil {
		return err
	}

	target = domain.Principal(strings.TrimSpace(string(target)))
	if target == "" {
		return apperror.BadRequest("Target principal is required")
	}
	if _, ok := domain.ParseRole(string(role)); !ok {
		return apperror.BadRequest("Role must be one of: admin, user, guest")
	}

	if err := u.users.UpsertRole(ctx, target, role); err != nil {
		return repoError(err)
	}

	caller, _ := domain.PrincipalFromContext(ctx)
	security.DefaultLogger().LogAdminAction(ctx, security.EventRoleModified, string(caller), map[string]interface{}{
		"target": security.HashValue(string(target)),
		"role":   string(role),
	})
	logger.Log.Info("Role assigned", "role", role)
	return nil
}

func (u *accessUsecase) GetCallerProfile(ctx context.Context) (*domain.UserProfile, error) {
	principal, ok := domain.PrincipalFromContext(ctx)
	if !ok {
		return nil, apperror.Unauthenticated("Authentication required")
	}
	return u.profileOf(ctx, principal)
}

func (u *accessUsecase) SaveCallerProfile(ctx context.Context, profile *domain.UserProfile) error {
	session := domain.SessionFromContext(ctx)
	if !session.IsAuthenticated() {
		return apperror.Unauthenticated("Authentication required")
	}
	if profile == nil {
		return apperror.BadRequest("Profile is required")
	}

	profile.Name = strings.TrimSpace(profile.Name)
	if err := u.validate.Struct(profile); err != nil {
		return apperror.Validation("Invalid profile", validation.FormatValidationErrors(err))
	}

	if err := u.users.SaveProfile(ctx, session.Principal, session.Email, *profile); err != nil {
		return repoError(err)
	}
	return nil
}

// GetUserProfile lets callers read their own profile and admins read anyone's.
func (u *accessUsecase) GetUserProfile(ctx context.Context, target domain.Principal) (*domain.UserProfile, error) {
	caller, ok := domain.PrincipalFromContext(ctx)
	if !ok {
		return nil, apperror.Unauthenticated("Authentication required")
	}
	if caller != target {
		if err := u.Authorize(ctx, caller, domain.RoleAdmin); err != nil {
			return nil, err
		}
	}
	return u.profileOf(ctx, target)
}

func (u *accessUsecase) profileOf(ctx context.Context, principal domain.Principal) (*domain.UserProfile, error) {
	user, err := u.users.GetByPrincipal(ctx, principal)
	if err != nil {
		return nil, repoError(err)
	}
	if user == nil || user.DisplayName == "" {
		return nil, apperror.NotFound("Profile not found")
	}
	return &domain.UserProfile{Name: user.DisplayName}, nil
}
