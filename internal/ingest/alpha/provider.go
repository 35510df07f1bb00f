package alpha

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/claude/ironlog/internal/ingest"
	"github.com/claude/ironlog/internal/models"
	"github.com/claude/ironlog/internal/storage"
)

// Provider imports Alpha Progression CSV exports into a session store.
type Provider struct {
	store storage.Store
	log   *slog.Logger
}

// NewProvider creates a new Alpha Progression ingest provider.
func NewProvider(store storage.Store, log *slog.Logger) *Provider {
	return &Provider{store: store, log: log}
}

// Ingest parses an export and stores every session. Sessions already stored
// with the same start time are replaced, so re-importing an export is
// idempotent.
func (p *Provider) Ingest(ctx context.Context, r io.Reader) (*ingest.Result, error) {
	sessions, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}

	result := &ingest.Result{SessionsReceived: len(sessions)}
	for _, s := range sessions {
		ws, warmups := ToWorkoutSession(s)
		result.WarmupsSkipped += warmups
		for _, ex := range ws.Exercises {
			result.SetsReceived += len(ex.Sets)
		}

		deleted, err := p.store.DeleteSessionsAt(ctx, ws.StartTime)
		if err != nil {
			return nil, fmt.Errorf("deleting existing session %s: %w", ws.StartTime.Format("2006-01-02 15:04"), err)
		}
		result.SessionsReplaced += deleted

		inserted, err := p.store.InsertSession(ctx, ws)
		if err != nil {
			return nil, fmt.Errorf("inserting session %s: %w", ws.StartTime.Format("2006-01-02 15:04"), err)
		}
		if inserted {
			result.SessionsInserted++
		}
	}

	p.log.Info("alpha import finished",
		"sessions", result.SessionsInserted,
		"replaced", result.SessionsReplaced,
		"sets", result.SetsReceived)
	return result, nil
}

// ToWorkoutSession converts a parsed session. Working sets become completed
// sets; warm-ups are dropped and counted. Exercises with no working sets are
// left out.
func ToWorkoutSession(s Session) (models.WorkoutSession, int) {
	end := s.Date.Add(s.Duration)
	ws := models.WorkoutSession{
		StartTime:   s.Date,
		EndTime:     &end,
		RoutineName: s.Name,
		Exercises:   []models.WorkoutExercise{},
	}

	warmups := 0
	for _, ex := range s.Exercises {
		var sets []models.WorkoutSet
		for _, set := range ex.Sets {
			if set.IsWarmup {
				warmups++
				continue
			}
			sets = append(sets, models.WorkoutSet{
				SetNumber:   set.Number,
				Reps:        set.Reps,
				Weight:      set.WeightKg,
				IsCompleted: true,
			})
		}
		if len(sets) == 0 {
			continue
		}
		ws.Exercises = append(ws.Exercises, models.WorkoutExercise{
			Name:       ex.Name,
			OrderIndex: len(ws.Exercises),
			Sets:       sets,
		})
	}
	return ws, warmups
}
