// Package memory holds process-local repositories for development and tests.
// Every repository is safe for concurrent use and lists records in id order.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"handyman-recruitment-backend/internal/domain"
	"handyman-recruitment-backend/pkg/apperror"
)

type CandidateRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]*domain.Candidate
	now    func() time.Time
}

func NewCandidateRepository() *CandidateRepository {
	return &CandidateRepository{rows: make(map[int64]*domain.Candidate), now: time.Now}
}

func (r *CandidateRepository) Create(ctx context.Context, candidate *domain.Candidate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	now := r.now().UTC()
	candidate.ID = r.nextID
	candidate.CreatedAt = now
	candidate.UpdatedAt = now
	candidate.CV, candidate.IDCopy, candidate.MatricCert, candidate.QualificationCert = nil, nil, nil, nil

	stored := *candidate
	r.rows[stored.ID] = &stored
	return nil
}

func (r *CandidateRepository) GetByID(ctx context.Context, id int64) (*domain.Candidate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	out := cloneCandidate(c)
	return &out, nil
}

func (r *CandidateRepository) List(ctx context.Context) ([]domain.Candidate, error) {
	return r.filter(func(*domain.Candidate) bool { return true }), nil
}

// ListByTrade matches trade as a case-insensitive substring of TradeSkill.
func (r *CandidateRepository) ListByTrade(ctx context.Context, trade string) ([]domain.Candidate, error) {
	needle := strings.ToLower(strings.TrimSpace(trade))
	return r.filter(func(c *domain.Candidate) bool {
		return strings.Contains(strings.ToLower(c.TradeSkill), needle)
	}), nil
}

func (r *CandidateRepository) Update(ctx context.Context, id int64, input domain.CandidateInput) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[id]
	if !ok {
		return apperror.NotFound("Candidate not found")
	}
	c.CandidateInput = input
	c.UpdatedAt = r.now().UTC()
	return nil
}

func (r *CandidateRepository) Delete(ctx context.Context, id int64) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[id]
	if !ok {
		return nil, apperror.NotFound("Candidate not found")
	}
	var refs []string
	for _, doc := range c.Documents() {
		refs = append(refs, doc.ContentRef)
	}
	delete(r.rows, id)
	return refs, nil
}

func (r *CandidateRepository) SetDocument(ctx context.Context, id int64, dt domain.DocumentType, doc domain.Document) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[id]
	if !ok {
		return "", apperror.NotFound("Candidate not found")
	}

	replaced := ""
	if prev := c.Document(dt); prev != nil {
		replaced = prev.ContentRef
	}
	stored := doc
	c.SetDocument(dt, &stored)
	c.UpdatedAt = r.now().UTC()
	return replaced, nil
}

func (r *CandidateRepository) filter(keep func(*domain.Candidate) bool) []domain.Candidate {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Candidate, 0, len(r.rows))
	for _, c := range r.rows {
		if keep(c) {
			out = append(out, cloneCandidate(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func cloneCandidate(c *domain.Candidate) domain.Candidate {
	out := *c
	for _, dt := range domain.DocumentTypes {
		if d := c.Document(dt); d != nil {
			doc := *d
			out.SetDocument(dt, &doc)
		}
	}
	return out
}
