package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/claude/ironlog/internal/models"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a session or routine does not exist.
var ErrNotFound = errors.New("not found")

// Store is the persistence contract shared by the Postgres and SQLite
// backends.
type Store interface {
	FetchSessions(ctx context.Context, q models.SessionQuery) ([]models.WorkoutSession, error)
	GetSession(ctx context.Context, id uuid.UUID) (*models.WorkoutSession, error)
	InsertSession(ctx context.Context, s models.WorkoutSession) (bool, error)
	DeleteSessionsAt(ctx context.Context, start time.Time) (int64, error)
	SaveRoutine(ctx context.Context, r models.Routine) error
	GetRoutine(ctx context.Context, id uuid.UUID) (*models.Routine, error)
	ListRoutines(ctx context.Context) ([]models.Routine, error)
	Close() error
}

var (
	_ Store = (*DB)(nil)
	_ Store = (*LocalDB)(nil)
)

// dialect captures the differences between the two SQL backends that the
// shared query builder needs to know about.
type dialect struct {
	placeholder func(n int) string
	timeArg     func(t time.Time) any
}

var (
	postgresDialect = dialect{
		placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
		timeArg:     func(t time.Time) any { return t },
	}
	sqliteDialect = dialect{
		placeholder: func(int) string { return "?" },
		timeArg:     func(t time.Time) any { return t.UnixMilli() },
	}
)

// sessionWhere renders the WHERE, ORDER BY and LIMIT tail of a query over
// workout_sessions.
func sessionWhere(q models.SessionQuery, d dialect) (string, []any) {
	var conds []string
	var args []any

	if q.StartedFrom != nil {
		args = append(args, d.timeArg(*q.StartedFrom))
		conds = append(conds, "start_time >= "+d.placeholder(len(args)))
	}
	if q.StartedBefore != nil {
		args = append(args, d.timeArg(*q.StartedBefore))
		conds = append(conds, "start_time < "+d.placeholder(len(args)))
	}
	if q.CompletedOnly {
		conds = append(conds, "end_time IS NOT NULL")
	}

	var b strings.Builder
	if len(conds) > 0 {
		b.WriteString("WHERE ")
		b.WriteString(strings.Join(conds, " AND "))
		b.WriteString(" ")
	}
	if q.Order == models.Descending {
		b.WriteString("ORDER BY start_time DESC, id")
	} else {
		b.WriteString("ORDER BY start_time ASC, id")
	}
	if q.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", q.Limit)
	}
	return b.String(), args
}

type exerciseRow struct {
	sessionID uuid.UUID
	exercise  models.WorkoutExercise
}

type setRow struct {
	exerciseID uuid.UUID
	set        models.WorkoutSet
}

// assemble attaches exercise and set rows to their sessions. Rows must
// already be in document order.
func assemble(sessions []models.WorkoutSession, exercises []exerciseRow, sets []setRow) []models.WorkoutSession {
	sessionIdx := make(map[uuid.UUID]int, len(sessions))
	for i := range sessions {
		sessionIdx[sessions[i].ID] = i
		sessions[i].Exercises = []models.WorkoutExercise{}
	}

	type pos struct{ session, exercise int }
	exerciseIdx := make(map[uuid.UUID]pos, len(exercises))
	for _, r := range exercises {
		si, ok := sessionIdx[r.sessionID]
		if !ok {
			continue
		}
		ex := r.exercise
		ex.Sets = []models.WorkoutSet{}
		sessions[si].Exercises = append(sessions[si].Exercises, ex)
		exerciseIdx[ex.ID] = pos{si, len(sessions[si].Exercises) - 1}
	}

	for _, r := range sets {
		p, ok := exerciseIdx[r.exerciseID]
		if !ok {
			continue
		}
		ex := &sessions[p.session].Exercises[p.exercise]
		ex.Sets = append(ex.Sets, r.set)
	}
	return sessions
}

// withIDs returns a copy of the session with every missing ID generated.
func withIDs(s models.WorkoutSession) models.WorkoutSession {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	exercises := make([]models.WorkoutExercise, len(s.Exercises))
	for i, ex := range s.Exercises {
		if ex.ID == uuid.Nil {
			ex.ID = uuid.New()
		}
		sets := make([]models.WorkoutSet, len(ex.Sets))
		for j, set := range ex.Sets {
			if set.ID == uuid.Nil {
				set.ID = uuid.New()
			}
			sets[j] = set
		}
		ex.Sets = sets
		exercises[i] = ex
	}
	s.Exercises = exercises
	return s
}

func encodeMuscleGroups(groups []string) (string, error) {
	if groups == nil {
		groups = []string{}
	}
	b, err := json.Marshal(groups)
	if err != nil {
		return "", fmt.Errorf("encoding muscle groups: %w", err)
	}
	return string(b), nil
}

func decodeMuscleGroups(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	var groups []string
	if err := json.Unmarshal([]byte(s), &groups); err != nil {
		return nil, fmt.Errorf("decoding muscle groups: %w", err)
	}
	if len(groups) == 0 {
		return nil, nil
	}
	return groups, nil
}

// routineDefinition is the JSON column holding a routine's exercises.
type routineDefinition struct {
	Exercises []models.RoutineExercise `json:"exercises"`
}

func encodeRoutine(r models.Routine) ([]byte, error) {
	b, err := json.Marshal(routineDefinition{Exercises: r.Exercises})
	if err != nil {
		return nil, fmt.Errorf("encoding routine %s: %w", r.ID, err)
	}
	return b, nil
}

func decodeRoutine(id uuid.UUID, name string, def []byte) (models.Routine, error) {
	var d routineDefinition
	if err := json.Unmarshal(def, &d); err != nil {
		return models.Routine{}, fmt.Errorf("decoding routine %s: %w", id, err)
	}
	return models.Routine{ID: id, Name: name, Exercises: d.Exercises}, nil
}
