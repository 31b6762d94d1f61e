package postgres

import (
	"context"
	"errors"
	"fmt"

	"handyman-recruitment-backend/internal/domain"
	"handyman-recruitment-backend/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type userRepo struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) domain.UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) GetByPrincipal(ctx context.Context, principal domain.Principal) (*domain.User, error) {
	query := `SELECT principal, email, role, display_name, created_at, updated_at FROM users WHERE principal = $1`
	var (
		user       domain.User
		principalV string
		role       string
	)
	err := r.db.QueryRow(ctx, query, string(principal)).Scan(
		&principalV, &user.Email, &role, &user.DisplayName, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	user.Principal = domain.Principal(principalV)
	user.Role = domain.Role(role)
	return &user, nil
}

func (r *userRepo) UpsertRole(ctx context.Context, principal domain.Principal, role domain.Role) error {
	query := `
		INSERT INTO users (principal, role, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (principal) DO UPDATE SET role = EXCLUDED.role, updated_at = NOW()`
	if _, err := r.db.Exec(ctx, query, string(principal), string(role)); err != nil {
		if isPgError(err, pgCheckViolation) {
			return apperror.BadRequest("Role must be one of: admin, user, guest")
		}
		return apperror.Internal(fmt.Errorf("upsert role: %w", err))
	}
	return nil
}

// SaveProfile keeps the stored email when email is empty.
func (r *userRepo) SaveProfile(ctx context.Context, principal domain.Principal, email string, profile domain.UserProfile) error {
	query := `
		INSERT INTO users (principal, email, display_name, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (principal) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			email = COALESCE(NULLIF(EXCLUDED.email, ''), users.email),
			updated_at = NOW()`
	if _, err := r.db.Exec(ctx, query, string(principal), email, profile.Name); err != nil {
		return apperror.Internal(fmt.Errorf("save profile: %w", err))
	}
	return nil
}
