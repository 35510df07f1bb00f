package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/claude/ironlog/internal/models"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const localSchema = `
CREATE TABLE IF NOT EXISTS workout_sessions (
	id           TEXT PRIMARY KEY,
	start_time   INTEGER NOT NULL,
	end_time     INTEGER,
	routine_name TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_workout_sessions_start ON workout_sessions (start_time);

CREATE TABLE IF NOT EXISTS workout_exercises (
	id             TEXT PRIMARY KEY,
	session_id     TEXT NOT NULL REFERENCES workout_sessions (id) ON DELETE CASCADE,
	seq            INTEGER NOT NULL,
	name           TEXT NOT NULL,
	muscle_groups  TEXT NOT NULL DEFAULT '[]',
	order_index    INTEGER NOT NULL,
	superset_group TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_workout_exercises_session ON workout_exercises (session_id, seq);

CREATE TABLE IF NOT EXISTS workout_sets (
	id           TEXT PRIMARY KEY,
	exercise_id  TEXT NOT NULL REFERENCES workout_exercises (id) ON DELETE CASCADE,
	seq          INTEGER NOT NULL,
	set_number   INTEGER NOT NULL,
	reps         INTEGER NOT NULL,
	weight       REAL NOT NULL,
	is_completed INTEGER NOT NULL DEFAULT 0,
	completed_at INTEGER
);
CREATE INDEX IF NOT EXISTS idx_workout_sets_exercise ON workout_sets (exercise_id, seq);

CREATE TABLE IF NOT EXISTS routines (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	definition TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);
`

// LocalDB implements Store on an embedded SQLite file. Times are stored as
// unix milliseconds.
type LocalDB struct {
	db *sql.DB
}

// OpenLocal opens (or creates) the SQLite database at path.
func OpenLocal(path string) (*LocalDB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	// Pragmas are per connection.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma: %w", err)
		}
	}

	if _, err := db.Exec(localSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &LocalDB{db: db}, nil
}

// Close closes the database.
func (l *LocalDB) Close() error {
	return l.db.Close()
}

// InsertSession stores a session with its exercises and sets in one
// transaction. Returns false if a session with the same ID already exists.
func (l *LocalDB) InsertSession(ctx context.Context, s models.WorkoutSession) (bool, error) {
	s = withIDs(s)

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO workout_sessions (id, start_time, end_time, routine_name) VALUES (?, ?, ?, ?)`,
		s.ID.String(), s.StartTime.UnixMilli(), nullMillis(s.EndTime), s.RoutineName)
	if err != nil {
		return false, fmt.Errorf("inserting session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, nil
	}

	for i, ex := range s.Exercises {
		groups, err := encodeMuscleGroups(ex.MuscleGroups)
		if err != nil {
			return false, err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO workout_exercises (id, session_id, seq, name, muscle_groups, order_index, superset_group)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			ex.ID.String(), s.ID.String(), i, ex.Name, groups, ex.OrderIndex, ex.SupersetGroup); err != nil {
			return false, fmt.Errorf("inserting exercise: %w", err)
		}
		for j, set := range ex.Sets {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO workout_sets (id, exercise_id, seq, set_number, reps, weight, is_completed, completed_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				set.ID.String(), ex.ID.String(), j, set.SetNumber, set.Reps, set.Weight, set.IsCompleted,
				nullMillis(set.CompletedAt)); err != nil {
				return false, fmt.Errorf("inserting set: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing session: %w", err)
	}
	return true, nil
}

// FetchSessions returns the sessions matching q with their full graph.
func (l *LocalDB) FetchSessions(ctx context.Context, q models.SessionQuery) ([]models.WorkoutSession, error) {
	tail, args := sessionWhere(q, sqliteDialect)

	sessions, err := l.querySessions(ctx,
		`SELECT id, start_time, end_time, routine_name FROM workout_sessions `+tail, args...)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return sessions, nil
	}

	sub := `SELECT id FROM workout_sessions ` + tail
	return l.loadGraph(ctx, sessions, `WHERE e.session_id IN (`+sub+`)`, args...)
}

// GetSession returns one session by ID.
func (l *LocalDB) GetSession(ctx context.Context, id uuid.UUID) (*models.WorkoutSession, error) {
	sessions, err := l.querySessions(ctx,
		`SELECT id, start_time, end_time, routine_name FROM workout_sessions WHERE id = ?`, id.String())
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, ErrNotFound
	}
	sessions, err = l.loadGraph(ctx, sessions, `WHERE e.session_id = ?`, id.String())
	if err != nil {
		return nil, err
	}
	return &sessions[0], nil
}

// DeleteSessionsAt removes every session starting exactly at start together
// with its exercises and sets.
func (l *LocalDB) DeleteSessionsAt(ctx context.Context, start time.Time) (int64, error) {
	res, err := l.db.ExecContext(ctx, `DELETE FROM workout_sessions WHERE start_time = ?`, start.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("deleting sessions: %w", err)
	}
	return res.RowsAffected()
}

func (l *LocalDB) querySessions(ctx context.Context, query string, args ...any) ([]models.WorkoutSession, error) {
	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	sessions := []models.WorkoutSession{}
	for rows.Next() {
		var s models.WorkoutSession
		var start int64
		var end sql.NullInt64
		if err := rows.Scan(&s.ID, &start, &end, &s.RoutineName); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		s.StartTime = time.UnixMilli(start).UTC()
		s.EndTime = fromNullMillis(end)
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (l *LocalDB) loadGraph(ctx context.Context, sessions []models.WorkoutSession, where string, args ...any) ([]models.WorkoutSession, error) {
	exRows, err := l.db.QueryContext(ctx,
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

	setRows, err := l.db.QueryContext(ctx,
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
		var completedAt sql.NullInt64
		if err := setRows.Scan(&r.exerciseID, &r.set.ID, &r.set.SetNumber, &r.set.Reps,
			&r.set.Weight, &r.set.IsCompleted, &completedAt); err != nil {
			return nil, fmt.Errorf("scanning set: %w", err)
		}
		r.set.CompletedAt = fromNullMillis(completedAt)
		sets = append(sets, r)
	}
	if err := setRows.Err(); err != nil {
		return nil, err
	}

	return assemble(sessions, exercises, sets), nil
}

// SaveRoutine inserts or replaces a routine.
func (l *LocalDB) SaveRoutine(ctx context.Context, r models.Routine) error {
	def, err := encodeRoutine(r)
	if err != nil {
		return err
	}
	_, err = l.db.ExecContext(ctx,
		`INSERT INTO routines (id, name, definition, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET name = excluded.name, definition = excluded.definition, updated_at = excluded.updated_at`,
		r.ID.String(), r.Name, string(def), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("saving routine: %w", err)
	}
	return nil
}

// GetRoutine returns one routine by ID.
func (l *LocalDB) GetRoutine(ctx context.Context, id uuid.UUID) (*models.Routine, error) {
	var name, def string
	err := l.db.QueryRowContext(ctx, `SELECT name, definition FROM routines WHERE id = ?`, id.String()).Scan(&name, &def)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying routine: %w", err)
	}
	r, err := decodeRoutine(id, name, []byte(def))
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListRoutines returns every routine ordered by name.
func (l *LocalDB) ListRoutines(ctx context.Context) ([]models.Routine, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT id, name, definition FROM routines ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("querying routines: %w", err)
	}
	defer rows.Close()

	routines := []models.Routine{}
	for rows.Next() {
		var id uuid.UUID
		var name, def string
		if err := rows.Scan(&id, &name, &def); err != nil {
			return nil, fmt.Errorf("scanning routine: %w", err)
		}
		r, err := decodeRoutine(id, name, []byte(def))
		if err != nil {
			return nil, err
		}
		routines = append(routines, r)
	}
	return routines, rows.Err()
}

func nullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

func fromNullMillis(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.UnixMilli(v.Int64).UTC()
	return &t
}
