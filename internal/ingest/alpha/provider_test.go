package alpha

import (
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/claude/ironlog/internal/models"
	"github.com/claude/ironlog/internal/storage"
)

// TestToWorkoutSession verifies warm-ups are dropped and working sets become
// completed sets.
func TestToWorkoutSession(t *testing.T) {
	sessions, err := Parse(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	ws, warmups := ToWorkoutSession(sessions[1])
	if warmups != 3 {
		t.Errorf("warmups = %d, want 3", warmups)
	}
	if ws.EndTime == nil || ws.EndTime.Sub(ws.StartTime) != 72*time.Minute {
		t.Errorf("end = %v, want start + 1h12m", ws.EndTime)
	}
	if len(ws.Exercises) != 1 || ws.Exercises[0].Name != "Bench Press" {
		t.Fatalf("exercises = %+v", ws.Exercises)
	}
	sets := ws.Exercises[0].Sets
	if len(sets) != 3 || sets[0].Weight != 102.5 || sets[2].Weight != 100 {
		t.Errorf("sets = %+v", sets)
	}
	for _, s := range sets {
		if !s.IsCompleted {
			t.Errorf("set %d not completed", s.SetNumber)
		}
	}
}

// TestIngestIdempotent verifies a second import replaces rather than
// duplicates sessions.
func TestIngestIdempotent(t *testing.T) {
	db, err := storage.OpenLocal(filepath.Join(t.TempDir(), "ironlog.db"))
	if err != nil {
		t.Fatalf("OpenLocal: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	p := NewProvider(db, slog.New(slog.NewTextHandler(io.Discard, nil)))

	res, err := p.Ingest(t.Context(), strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if res.SessionsReceived != 2 || res.SessionsInserted != 2 || res.SessionsReplaced != 0 {
		t.Errorf("first result = %+v", res)
	}
	if res.SetsReceived != 17+3 {
		t.Errorf("sets = %d, want 20", res.SetsReceived)
	}

	res, err = p.Ingest(t.Context(), strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("second Ingest: %v", err)
	}
	if res.SessionsReplaced != 2 || res.SessionsInserted != 2 {
		t.Errorf("second result = %+v", res)
	}

	all, err := db.FetchSessions(t.Context(), models.SessionQuery{})
	if err != nil {
		t.Fatalf("FetchSessions: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("stored sessions = %d, want 2", len(all))
	}
	if all[0].RoutineName != "Push · Day 1 · Week 4 · Push-Pull-Legs" || len(all[1].Exercises) != 6 {
		t.Errorf("stored = %+v", all)
	}
}

// TestIngestBadInput verifies parse errors are returned.
func TestIngestBadInput(t *testing.T) {
	db, err := storage.OpenLocal(filepath.Join(t.TempDir(), "ironlog.db"))
	if err != nil {
		t.Fatalf("OpenLocal: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	p := NewProvider(db, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if _, err := p.Ingest(t.Context(), strings.NewReader(`"1. Squat · Barbell · 5 reps"`)); err == nil {
		t.Error("expected an error")
	}
}
