package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/claude/ironlog/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// InsertSession stores a session with its exercises and sets in one
// transaction. Returns false if a session with the same ID already exists.
func (db *DB) InsertSession(ctx context.Context, s models.WorkoutSession) (bool, error) {
	s = withIDs(s)

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	tag, err := tx.Exec(ctx,
		`INSERT INTO workout_sessions (id, start_time, end_time, routine_name)
		 VALUES ($1,$2,$3,$4)
		 ON CONFLICT DO NOTHING`,
		s.ID, s.StartTime, s.EndTime, s.RoutineName)
	if err != nil {
		return false, fmt.Errorf("inserting session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	batch := &pgx.Batch{}
	for i, ex := range s.Exercises {
		groups, err := encodeMuscleGroups(ex.MuscleGroups)
		if err != nil {
			return false, err
		}
		batch.Queue(
			`INSERT INTO workout_exercises (id, session_id, seq, name, muscle_groups, order_index, superset_group)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			ex.ID, s.ID, i, ex.Name, groups, ex.OrderIndex, ex.SupersetGroup)
		for j, set := range ex.Sets {
			batch.Queue(
				`INSERT INTO workout_sets (id, exercise_id, seq, set_number, reps, weight, is_completed, completed_at)
				 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
				set.ID, ex.ID, j, set.SetNumber, set.Reps, set.Weight, set.IsCompleted, set.CompletedAt)
		}
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return false, fmt.Errorf("inserting exercises: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("committing session: %w", err)
	}
	return true, nil
}

// FetchSessions returns the sessions matching q with their full graph.
func (db *DB) FetchSessions(ctx context.Context, q models.SessionQuery) ([]models.WorkoutSession, error) {
	tail, args := sessionWhere(q, postgresDialect)

	sessions, err := db.querySessions(ctx,
		`SELECT id, start_time, end_time, routine_name FROM workout_sessions `+tail, args...)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return sessions, nil
	}

	sub := `SELECT id FROM workout_sessions ` + tail
	return db.loadGraph(ctx, sessions,
		`WHERE e.session_id IN (`+sub+`)`, args...)
}

// GetSession returns one session by ID.
func (db *DB) GetSession(ctx context.Context, id uuid.UUID) (*models.WorkoutSession, error) {
	sessions, err := db.querySessions(ctx,
		`SELECT id, start_time, end_time, routine_name FROM workout_sessions WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, ErrNotFound
	}
	sessions, err = db.loadGraph(ctx, sessions, `WHERE e.session_id = $1`, id)
	if err != nil {
		return nil, err
	}
	return &sessions[0], nil
}

// DeleteSessionsAt removes every session starting exactly at start. Child
// rows go with them via ON DELETE CASCADE.
func (db *DB) DeleteSessionsAt(ctx context.Context, start time.Time) (int64, error) {
	tag, err := db.pool.Exec(ctx, `DELETE FROM workout_sessions WHERE start_time = $1`, start)
	if err != nil {
		return 0, fmt.Errorf("deleting sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (db *DB) querySessions(ctx context.Context, query string, args ...any) ([]models.WorkoutSession, error) {
	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	sessions := []models.WorkoutSession{}
	for rows.Next() {
		var s models.WorkoutSession
		if err := rows.Scan(&s.ID, &s.StartTime, &s.EndTime, &s.RoutineName); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// loadGraph fetches exercises and sets for the sessions selected by where,
// which filters on the exercise alias e.
func (db *DB) loadGraph(ctx context.Context, sessions []models.WorkoutSession, where string, args ...any) ([]models.WorkoutSession, error) {
	exRows, err := db.pool.Query(ctx,
		`SELECT e.session_id, e.id, e.name, e.muscle_groups, e.order_index, e.superset_group
		 FROM workout_exercises e `+where+`
		 ORDER BY e.session_id, e.seq`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer exRows.Close()

	var exercises []exerciseRow
	for exRows.Next() {
		var r exerciseRow
		var groups string
		if err := exRows.Scan(&r.sessionID, &r.exercise.ID, &r.exercise.Name, &groups,
			&r.exercise.OrderIndex, &r.exercise.SupersetGroup); err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		if r.exercise.MuscleGroups, err = decodeMuscleGroups(groups); err != nil {
			return nil, err
		}
		exercises = append(exercises, r)
	}
	if err := exRows.Err(); err != nil {
		return nil, err
	}

	setRows, err := db.pool.Query(ctx,
		`SELECT st.exercise_id, st.id, st.set_number, st.reps, st.weight, st.is_completed, st.completed_at
		 FROM workout_sets st
		 JOIN workout_exercises e ON e.id = st.exercise_id `+where+`
		 ORDER BY st.exercise_id, st.seq`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sets: %w", err)
	}
	defer setRows.Close()

	var sets []setRow
	for setRows.Next() {
		var r setRow
		if err := setRows.Scan(&r.exerciseID, &r.set.ID, &r.set.SetNumber, &r.set.Reps,
			&r.set.Weight, &r.set.IsCompleted, &r.set.CompletedAt); err != nil {
			return nil, fmt.Errorf("scanning set: %w", err)
		}
		sets = append(sets, r)
	}
	if err := setRows.Err(); err != nil {
		return nil, err
	}

	return assemble(sessions, exercises, sets), nil
}

// SaveRoutine inserts or replaces a routine.
func (db *DB) SaveRoutine(ctx context.Context, r models.Routine) error {
	def, err := encodeRoutine(r)
	if err != nil {
		return err
	}
	_, err = db.pool.Exec(ctx,
		`INSERT INTO routines (id, name, definition, updated_at)
		 VALUES ($1,$2,$3,NOW())
		 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, definition = EXCLUDED.definition, updated_at = NOW()`,
		r.ID, r.Name, def)
	if err != nil {
		return fmt.Errorf("saving routine: %w", err)
	}
	return nil
}

// GetRoutine returns one routine by ID.
func (db *DB) GetRoutine(ctx context.Context, id uuid.UUID) (*models.Routine, error) {
	var name string
	var def []byte
	err := db.pool.QueryRow(ctx, `SELECT name, definition FROM routines WHERE id = $1`, id).Scan(&name, &def)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying routine: %w", err)
	}
	r, err := decodeRoutine(id, name, def)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListRoutines returns every routine ordered by name.
func (db *DB) ListRoutines(ctx context.Context) ([]models.Routine, error) {
	rows, err := db.pool.Query(ctx, `SELECT id, name, definition FROM routines ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("querying routines: %w", err)
	}
	defer rows.Close()

	routines := []models.Routine{}
	for rows.Next() {
		var id uuid.UUID
		var name string
		var def []byte
		if err := rows.Scan(&id, &name, &def); err != nil {
			return nil, fmt.Errorf("scanning routine: %w", err)
		}
		r, err := decodeRoutine(id, name, def)
		if err != nil {
			return nil, err
		}
		routines = append(routines, r)
	}
	return routines, rows.Err()
}
