package security

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EventStore keeps an audit copy of security events next to the log stream.
type EventStore interface {
	PersistEvent(ctx context.Context, event SecurityEvent) error
}

// PostgresEventStore writes events to the security_events table.
type PostgresEventStore struct {
	db *pgxpool.Pool
}

var _ EventStore = (*PostgresEventStore)(nil)

func NewPostgresEventStore(db *pgxpool.Pool) *PostgresEventStore {
	return &PostgresEventStore{db: db}
}

func (s *PostgresEventStore) PersistEvent(ctx context.Context, event SecurityEvent) error {
	// Sent as text: the pool runs the simple protocol, where []byte means bytea.
	var details interface{}
	if len(event.Details) > 0 {
		b, err := json.Marshal(event.Details)
		if err != nil {
			return fmt.Errorf("encode security event details: %w", err)
		}
		details = string(b)
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO security_events (
			event_type, severity, service, environment,
			subject_type, subject_value, ip_address, user_agent,
			request_id, details, created_at
		) VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''), $10, $11)`,
		string(event.Event), string(event.Severity), event.Service, event.Environment,
		event.SubjectType, event.SubjectValue, event.IP, event.UserAgent,
		event.RequestID, details, event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("persist security event: %w", err)
	}
	return nil
}
