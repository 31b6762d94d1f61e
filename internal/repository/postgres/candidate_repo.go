package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"handyman-recruitment-backend/internal/domain"
	"handyman-recruitment-backend/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type candidateRepository struct {
	db *pgxpool.Pool
}

func NewCandidateRepository(db *pgxpool.Pool) domain.CandidateRepository {
	return &candidateRepository{db: db}
}

const candidateColumns = `id, full_name, id_number, phone_number, email, physical_address,
	trade_skill, years_experience, work_areas, created_at, updated_at`

func scanCandidate(row pgx.Row) (*domain.Candidate, error) {
	var c domain.Candidate
	err := row.Scan(
		&c.ID, &c.FullName, &c.IDNumber, &c.PhoneNumber, &c.Email, &c.PhysicalAddress,
		&c.TradeSkill, &c.YearsExperience, &c.WorkAreas, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *candidateRepository) Create(ctx context.Context, candidate *domain.Candidate) error {
	query := `
		INSERT INTO candidates (full_name, id_number, phone_number, email, physical_address,
			trade_skill, years_experience, work_areas, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		candidate.FullName, candidate.IDNumber, candidate.PhoneNumber, candidate.Email,
		candidate.PhysicalAddress, candidate.TradeSkill, candidate.YearsExperience, candidate.WorkAreas,
	).Scan(&candidate.ID, &candidate.CreatedAt, &candidate.UpdatedAt)
	if err != nil {
		return apperror.Internal(fmt.Errorf("insert candidate: %w", err))
	}
	return nil
}

func (r *candidateRepository) GetByID(ctx context.Context, id int64) (*domain.Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE id = $1`
	c, err := scanCandidate(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperror.Internal(fmt.Errorf("get candidate: %w", err))
	}

	if err := r.loadDocuments(ctx, []*domain.Candidate{c}); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *candidateRepository) List(ctx context.Context) ([]domain.Candidate, error) {
	return r.list(ctx, `SELECT `+candidateColumns+` FROM candidates ORDER BY id ASC`)
}

// ListByTrade matches trade as a case-insensitive substring of trade_skill.
func (r *candidateRepository) ListByTrade(ctx context.Context, trade string) ([]domain.Candidate, error) {
	pattern := "%" + escapeLike(strings.ToLower(strings.TrimSpace(trade))) + "%"
	return r.list(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE LOWER(trade_skill) LIKE $1 ESCAPE '\' ORDER BY id ASC`,
		pattern)
}

func (r *candidateRepository) list(ctx context.Context, query string, args ...any) ([]domain.Candidate, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("list candidates: %w", err))
	}
	defer rows.Close()

	var ptrs []*domain.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, apperror.Internal(fmt.Errorf("scan candidate: %w", err))
		}
		ptrs = append(ptrs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Internal(err)
	}

	if err := r.loadDocuments(ctx, ptrs); err != nil {
		return nil, err
	}

	out := make([]domain.Candidate, 0, len(ptrs))
	for _, c := range ptrs {
		out = append(out, *c)
	}
	return out, nil
}

// loadDocuments fills the document slots of candidates with one query.
func (r *candidateRepository) loadDocuments(ctx context.Context, candidates []*domain.Candidate) error {
	if len(candidates) == 0 {
		return nil
	}
	byID := make(map[int64]*domain.Candidate, len(candidates))
	ids := make([]int64, 0, len(candidates))
	for _, c := range candidates {
		byID[c.ID] = c
		ids = append(ids, c.ID)
	}

	query := `
		SELECT candidate_id, doc_type, file_name, file_type, content_ref, uploaded_at
		FROM candidate_documents WHERE candidate_id = ANY($1)`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return apperror.Internal(fmt.Errorf("load documents: %w", err))
	}
	defer rows.Close()

	for rows.Next() {
		var (
			candidateID int64
			docType     string
			doc         domain.Document
		)
		if err := rows.Scan(&candidateID, &docType, &doc.FileName, &doc.FileType, &doc.ContentRef, &doc.UploadedAt); err != nil {
			return apperror.Internal(fmt.Errorf("scan document: %w", err))
		}
		dt, ok := domain.ParseDocumentType(docType)
		if !ok {
			continue
		}
		if c := byID[candidateID]; c != nil {
			d := doc
			c.SetDocument(dt, &d)
		}
	}
	return rows.Err()
}

func (r *candidateRepository) Update(ctx context.Context, id int64, input domain.CandidateInput) error {
	query := `
		UPDATE candidates SET full_name=$1, id_number=$2, phone_number=$3, email=$4,
			physical_address=$5, trade_skill=$6, years_experience=$7, work_areas=$8, updated_at=NOW()
		WHERE id=$9`
	tag, err := r.db.Exec(ctx, query,
		input.FullName, input.IDNumber, input.PhoneNumber, input.Email,
		input.PhysicalAddress, input.TradeSkill, input.YearsExperience, input.WorkAreas, id,
	)
	if err != nil {
		return apperror.Internal(fmt.Errorf("update candidate: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("Candidate not found")
	}
	return nil
}

// Delete locks the candidate row so no SetDocument can commit between
// collecting the document refs and removing the rows.
func (r *candidateRepository) Delete(ctx context.Context, id int64) ([]string, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("begin tx: %w", err))
	}
	defer tx.Rollback(ctx)

	var locked int64
	err = tx.QueryRow(ctx, `SELECT id FROM candidates WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("Candidate not found")
		}
		return nil, apperror.Internal(fmt.Errorf("lock candidate: %w", err))
	}

	rows, err := tx.Query(ctx, `DELETE FROM candidate_documents WHERE candidate_id = $1 RETURNING content_ref`, id)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("delete documents: %w", err))
	}
	refs, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("collect document refs: %w", err))
	}

	if _, err := tx.Exec(ctx, `DELETE FROM candidates WHERE id = $1`, id); err != nil {
		return nil, apperror.Internal(fmt.Errorf("delete candidate: %w", err))
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperror.Internal(fmt.Errorf("commit: %w", err))
	}
	return refs, nil
}

// SetDocument locks the candidate row so concurrent writes to the same slot
// apply one after the other and each sees the ref it replaces.
func (r *candidateRepository) SetDocument(ctx context.Context, id int64, dt domain.DocumentType, doc domain.Document) (string, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return "", apperror.Internal(fmt.Errorf("begin tx: %w", err))
	}
	defer tx.Rollback(ctx)

	var locked int64
	err = tx.QueryRow(ctx, `SELECT id FROM candidates WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperror.NotFound("Candidate not found")
		}
		return "", apperror.Internal(fmt.Errorf("lock candidate: %w", err))
	}

	var replaced string
	err = tx.QueryRow(ctx,
		`SELECT content_ref FROM candidate_documents WHERE candidate_id = $1 AND doc_type = $2`,
		id, string(dt),
	).Scan(&replaced)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return "", apperror.Internal(fmt.Errorf("read document slot: %w", err))
	}

	upsert := `
		INSERT INTO candidate_documents (candidate_id, doc_type, file_name, file_type, content_ref, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (candidate_id, doc_type) DO UPDATE SET
			file_name = EXCLUDED.file_name,
			file_type = EXCLUDED.file_type,
			content_ref = EXCLUDED.content_ref,
			uploaded_at = EXCLUDED.uploaded_at`
	if _, err := tx.Exec(ctx, upsert, id, string(dt), doc.FileName, doc.FileType, doc.ContentRef, doc.UploadedAt); err != nil {
		switch {
		case isPgError(err, pgForeignKeyViolation):
			return "", apperror.NotFound("Candidate not found")
		case isPgError(err, pgCheckViolation):
			return "", apperror.BadRequest("Unknown document type")
		}
		return "", apperror.Internal(fmt.Errorf("upsert document: %w", err))
	}

	if _, err := tx.Exec(ctx, `UPDATE candidates SET updated_at = NOW() WHERE id = $1`, id); err != nil {
		return "", apperror.Internal(fmt.Errorf("touch candidate: %w", err))
	}

	if err := tx.Commit(ctx); err != nil {
		return "", apperror.Internal(fmt.Errorf("commit: %w", err))
	}
	return replaced, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
