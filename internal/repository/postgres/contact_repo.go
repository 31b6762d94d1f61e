package postgres

import (
	"context"
	"fmt"

	"handyman-recruitment-backend/internal/domain"
	"handyman-recruitment-backend/pkg/apperror"

	"github.com/jackc/pgx/v5/pgxpool"
)

type contactRepository struct {
	db *pgxpool.Pool
}

func NewContactRepository(db *pgxpool.Pool) domain.ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) Create(ctx context.Context, m *domain.ContactMessage) error {
	query := `
		INSERT INTO contact_messages (contact_type, full_name, phone_number, email, message, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query,
		string(m.ContactType), m.FullName, m.PhoneNumber, m.Email, m.Message,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		if isPgError(err, pgCheckViolation) {
			return apperror.BadRequest("Contact type must be client or candidate")
		}
		return apperror.Internal(fmt.Errorf("insert contact message: %w", err))
	}
	return nil
}

func (r *contactRepository) List(ctx context.Context) ([]domain.ContactMessage, error) {
	query := `
		SELECT id, contact_type, full_name, phone_number, email, message, created_at
		FROM contact_messages ORDER BY id ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("list contact messages: %w", err))
	}
	defer rows.Close()

	messages := []domain.ContactMessage{}
	for rows.Next() {
		var (
			m           domain.ContactMessage
			contactType string
		)
		if err := rows.Scan(&m.ID, &contactType, &m.FullName, &m.PhoneNumber, &m.Email, &m.Message, &m.CreatedAt); err != nil {
			return nil, apperror.Internal(fmt.Errorf("scan contact message: %w", err))
		}
		m.ContactType = domain.ContactType(contactType)
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Internal(err)
	}
	return messages, nil
}

func (r *contactRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, "contact_messages", id, "Contact message not found")
}
