package postgres

import (
	"context"
	"errors"
	"fmt"

	"handyman-recruitment-backend/pkg/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

// PostgreSQL error codes
const (
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

func isPgError(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// deleteByID hard-deletes one row of table and reports NotFound when no row matched.
func deleteByID(ctx context.Context, db *pgxpool.Pool, table string, id int64, notFound string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, pq.QuoteIdentifier(table))
	tag, err := db.Exec(ctx, query, id)
	if err != nil {
		return apperror.Internal(fmt.Errorf("delete from %s: %w", table, err))
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound(notFound)
	}
	return nil
}
