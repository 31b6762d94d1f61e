package postgres

import (
	"context"
	"fmt"

	"handyman-recruitment-backend/internal/domain"
	"handyman-recruitment-backend/pkg/apperror"

	"github.com/jackc/pgx/v5/pgxpool"
)

type enquiryRepository struct {
	db *pgxpool.Pool
}

func NewEnquiryRepository(db *pgxpool.Pool) domain.EnquiryRepository {
	return &enquiryRepository{db: db}
}

func (r *enquiryRepository) Create(ctx context.Context, e *domain.Enquiry) error {
	query := `
		INSERT INTO enquiries (full_name, company_name, phone_number, email, location, service_type, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query,
		e.FullName, e.CompanyName, e.PhoneNumber, e.Email, e.Location, e.ServiceType, e.Message,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return apperror.Internal(fmt.Errorf("insert enquiry: %w", err))
	}
	return nil
}

func (r *enquiryRepository) List(ctx context.Context) ([]domain.Enquiry, error) {
	query := `
		SELECT id, full_name, company_name, phone_number, email, location, service_type, message, created_at
		FROM enquiries ORDER BY id ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("list enquiries: %w", err))
	}
	defer rows.Close()

	enquiries := []domain.Enquiry{}
	for rows.Next() {
		var e domain.Enquiry
		if err := rows.Scan(&e.ID, &e.FullName, &e.CompanyName, &e.PhoneNumber, &e.Email,
			&e.Location, &e.ServiceType, &e.Message, &e.CreatedAt); err != nil {
			return nil, apperror.Internal(fmt.Errorf("scan enquiry: %w", err))
		}
		enquiries = append(enquiries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Internal(err)
	}
	return enquiries, nil
}

func (r *enquiryRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, "enquiries", id, "Enquiry not found")
}
