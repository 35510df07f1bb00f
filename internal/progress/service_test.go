package progress

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/claude/ironlog/internal/models"
	"github.com/google/uuid"
)

// fakeStore applies SessionQuery in memory the way the SQL stores do.
type fakeStore struct {
	sessions []models.WorkoutSession
	err      error
	queries  []models.SessionQuery
}

func (f *fakeStore) FetchSessions(_ context.Context, q models.SessionQuery) ([]models.WorkoutSession, error) {
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	var out []models.WorkoutSession
	for _, s := range f.sessions {
		if q.StartedFrom != nil && s.StartTime.Before(*q.StartedFrom) {
			continue
		}
		if q.StartedBefore != nil && !s.StartTime.Before(*q.StartedBefore) {
			continue
		}
		if q.CompletedOnly && !s.IsCompleted() {
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if q.Order == models.Descending {
			return out[i].StartTime.After(out[j].StartTime)
		}
		return out[i].StartTime.Before(out[j].StartTime)
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

var errStoreDown = errors.New("store down")

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestService(store SessionFetcher) *Service {
	s := NewService(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.now = func() time.Time { return testNow }
	return s
}

func daysAgo(n int) time.Time {
	return testNow.AddDate(0, 0, -n)
}

func completedSession(start time.Time, exercises ...models.WorkoutExercise) models.WorkoutSession {
	end := start.Add(time.Hour)
	return models.WorkoutSession{
		ID:          uuid.New(),
		StartTime:   start,
		EndTime:     &end,
		RoutineName: "Push Day",
		Exercises:   exercises,
	}
}

func exercise(name string, order int, sets ...models.WorkoutSet) models.WorkoutExercise {
	return models.WorkoutExercise{ID: uuid.New(), Name: name, OrderIndex: order, Sets: sets}
}

func set(n, reps int, weight float64, done bool) models.WorkoutSet {
	return models.WorkoutSet{ID: uuid.New(), SetNumber: n, Reps: reps, Weight: weight, IsCompleted: done}
}
