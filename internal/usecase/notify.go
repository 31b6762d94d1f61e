package usecase

import (
	"context"
	"time"

	"handyman-recruitment-backend/internal/domain"
	"handyman-recruitment-backend/pkg/logger"
)

const notifyTimeout = 10 * time.Second

// notify runs send detached from the request's cancellation. A failed
// notification never undoes the record that triggered it.
func notify(ctx context.Context, n domain.Notifier, kind string, id int64, send func(context.Context) error) {
	if n == nil || !n.IsConfigured() {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	if err := send(ctx); err != nil {
		logger.Log.Warn("Notification failed", "kind", kind, "id", id, "error", err)
	}
}
