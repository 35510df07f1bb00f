package progress

import (
	"context"
	"log/slog"
	"time"

	"github.com/claude/ironlog/internal/models"
)

// SessionFetcher is the read side of the session store.
type SessionFetcher interface {
	FetchSessions(ctx context.Context, q models.SessionQuery) ([]models.WorkoutSession, error)
}

// Service derives progress series, previous performances and session
// comparisons from stored sessions. It holds no mutable state and is safe for
// concurrent use.
type Service struct {
	store SessionFetcher
	log   *slog.Logger
	now   func() time.Time
}

// NewService creates a new progress Service.
func NewService(store SessionFetcher, log *slog.Logger) *Service {
	return &Service{store: store, log: log, now: time.Now}
}
