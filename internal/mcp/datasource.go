package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/ironlog/internal/models"
	"github.com/claude/ironlog/internal/progress"
	"github.com/claude/ironlog/internal/storage"
	"github.com/google/uuid"
)

// DataSource abstracts the data layer for MCP tools. Both Local (in-process)
// and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	ExerciseNames(ctx context.Context, tf progress.Timeframe) ([]string, error)
	ExerciseProgress(ctx context.Context, name string, tf progress.Timeframe) (*progress.ExerciseProgressData, error)
	PreviousPerformance(ctx context.Context, name string, before time.Time) (*progress.PreviousExercisePerformance, error)
	CompareSession(ctx context.Context, id uuid.UUID) ([]progress.ExerciseComparisonResult, error)
	Sessions(ctx context.Context, start, end time.Time) ([]models.WorkoutSession, error)
}

// Local serves MCP tools straight from the store.
type Local struct {
	progress *progress.Service
	store    storage.Store
}

// Compile-time check: *Local satisfies DataSource.
var _ DataSource = (*Local)(nil)

// NewLocal creates a DataSource over an open store.
func NewLocal(svc *progress.Service, store storage.Store) *Local {
	return &Local{progress: svc, store: store}
}

func (l *Local) ExerciseNames(ctx context.Context, tf progress.Timeframe) ([]string, error) {
	return l.progress.ExerciseNames(ctx, tf), nil
}

func (l *Local) ExerciseProgress(ctx context.Context, name string, tf progress.Timeframe) (*progress.ExerciseProgressData, error) {
	data := l.progress.ProgressData(ctx, name, tf)
	return &data, nil
}

func (l *Local) PreviousPerformance(ctx context.Context, name string, before time.Time) (*progress.PreviousExercisePerformance, error) {
	return l.progress.PreviousPerformance(ctx, name, before), nil
}

func (l *Local) CompareSession(ctx context.Context, id uuid.UUID) ([]progress.ExerciseComparisonResult, error) {
	session, err := l.store.GetSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading session %s: %w", id, err)
	}
	return l.progress.CompareWithPrevious(ctx, *session), nil
}

func (l *Local) Sessions(ctx context.Context, start, end time.Time) ([]models.WorkoutSession, error) {
	return l.store.FetchSessions(ctx, models.SessionQuery{
		StartedFrom:   &start,
		StartedBefore: &end,
		CompletedOnly: true,
		Order:         models.Descending,
	})
}
