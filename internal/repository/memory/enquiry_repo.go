package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"handyman-recruitment-backend/internal/domain"
	"handyman-recruitment-backend/pkg/apperror"
)

type EnquiryRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]domain.Enquiry
}

func NewEnquiryRepository() *EnquiryRepository {
	return &EnquiryRepository{rows: make(map[int64]domain.Enquiry)}
}

func (r *EnquiryRepository) Create(ctx context.Context, enquiry *domain.Enquiry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	enquiry.ID = r.nextID
	enquiry.CreatedAt = time.Now().UTC()

	stored := *enquiry
	if enquiry.CompanyName != nil {
		name := *enquiry.CompanyName
		stored.CompanyName = &name
	}
	r.rows[stored.ID] = stored
	return nil
}

func (r *EnquiryRepository) List(ctx context.Context) ([]domain.Enquiry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Enquiry, 0, len(r.rows))
	for _, e := range r.rows {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *EnquiryRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return apperror.NotFound("Enquiry not found")
	}
	delete(r.rows, id)
	return nil
}
