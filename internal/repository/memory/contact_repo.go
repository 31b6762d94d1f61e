package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"handyman-recruitment-backend/internal/domain"
	"handyman-recruitment-backend/pkg/apperror"
)

type ContactRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]domain.ContactMessage
}

func NewContactRepository() *ContactRepository {
	return &ContactRepository{rows: make(map[int64]domain.ContactMessage)}
}

func (r *ContactRepository) Create(ctx context.Context, msg *domain.ContactMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	msg.ID = r.nextID
	msg.CreatedAt = time.Now().UTC()
	r.rows[msg.ID] = *msg
	return nil
}

func (r *ContactRepository) List(ctx context.Context) ([]domain.ContactMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.ContactMessage, 0, len(r.rows))
	for _, m := range r.rows {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *ContactRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return apperror.NotFound("Contact message not found")
	}
	delete(r.rows, id)
	return nil
}
