package upload

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/claude/ironlog/internal/models"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Outbox persists finished workouts until the server has accepted them.
type Outbox struct {
	db  *sql.DB
	now func() time.Time
}

// OpenOutbox opens (or creates) the SQLite outbox at dir/outbox.db.
func OpenOutbox(dir string) (*Outbox, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating outbox dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "outbox.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening outbox db: %w", err)
	}
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS pending_payloads (
		id           TEXT PRIMARY KEY,
		body         TEXT NOT NULL,
		queued_at    INTEGER NOT NULL,
		attempts     INTEGER NOT NULL DEFAULT 0,
		last_error   TEXT,
		rejected     INTEGER NOT NULL DEFAULT 0,
		delivered_at INTEGER
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating outbox table: %w", err)
	}

	return &Outbox{db: db, now: time.Now}, nil
}

// Enqueue stores a payload for delivery. Payloads are keyed by ID, so
// enqueueing the same workout twice keeps the first copy.
func (o *Outbox) Enqueue(ctx context.Context, p models.CompletedWorkoutPayload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshaling payload: %w", err)
	}
	_, err = o.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO pending_payloads (id, body, queued_at) VALUES (?, ?, ?)`,
		p.ID.String(), string(body), o.now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("enqueueing payload %s: %w", p.ID, err)
	}
	return nil
}

// Pending returns undelivered, unrejected payloads in the order they were
// queued.
func (o *Outbox) Pending(ctx context.Context) ([]models.CompletedWorkoutPayload, error) {
	rows, err := o.db.QueryContext(ctx,
		`SELECT body FROM pending_payloads
		 WHERE delivered_at IS NULL AND rejected = 0
		 ORDER BY queued_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying pending payloads: %w", err)
	}
	defer rows.Close()

	var out []models.CompletedWorkoutPayload
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scanning payload: %w", err)
		}
		var p models.CompletedWorkoutPayload
		if err := json.Unmarshal([]byte(body), &p); err != nil {
			return nil, fmt.Errorf("decoding payload: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// MarkDelivered records that the server accepted the payload.
func (o *Outbox) MarkDelivered(ctx context.Context, id uuid.UUID) error {
	_, err := o.db.ExecContext(ctx,
		`UPDATE pending_payloads SET delivered_at = ?, attempts = attempts + 1, last_error = NULL WHERE id = ?`,
		o.now().UnixMilli(), id.String(),
	)
	return err
}

// MarkFailed records a failed delivery. Rejected payloads are never returned
// by Pending again.
func (o *Outbox) MarkFailed(ctx context.Context, id uuid.UUID, cause error, rejected bool) error {
	_, err := o.db.ExecContext(ctx,
		`UPDATE pending_payloads SET attempts = attempts + 1, last_error = ?, rejected = ? WHERE id = ?`,
		cause.Error(), rejected, id.String(),
	)
	return err
}

// Close closes the outbox database.
func (o *Outbox) Close() error {
	return o.db.Close()
}
