package main

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/claude/ironlog/internal/companion"
	"github.com/claude/ironlog/internal/models"
)

type recordChannel struct {
	mu   sync.Mutex
	sent []models.CompletedWorkoutPayload
}

func (r *recordChannel) Send(p models.CompletedWorkoutPayload) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, p)
}

type nopNotifier struct{}

func (nopNotifier) Schedule(string, time.Duration, companion.Notification) error { return nil }
func (nopNotifier) Cancel(string)                                                {}

func testRoutine() models.Routine {
	return models.Routine{
		Name: "Push",
		Exercises: []models.RoutineExercise{
			{Name: "Bench Press", OrderIndex: 0, SupersetGroup: "g1", Sets: []models.RoutineSet{
				{SetNumber: 1, Reps: 8, Weight: 80, RestSeconds: 90},
				{SetNumber: 2, Reps: 8, Weight: 80, RestSeconds: 90},
			}},
			{Name: "Row", OrderIndex: 1, SupersetGroup: "g1", Sets: []models.RoutineSet{
				{SetNumber: 1, Reps: 10, Weight: 60, RestSeconds: 60},
			}},
		},
	}
}

// TestConsoleWorkout runs a short workout through the command loop.
func TestConsoleWorkout(t *testing.T) {
	ch := &recordChannel{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := companion.New(companion.NewSimulatedSensor(time.Now), ch, nopNotifier{}, log, companion.Options{})
	defer engine.DiscardWorkout()

	var out bytes.Buffer
	c := &console{engine: engine, routine: testRoutine(), out: &out}

	script := strings.Join([]string{
		"start",
		"set 10 82.5",
		"done",
		"toggle 2 1",
		"bogus",
		"end",
		"quit",
		"start",
	}, "\n")
	if err := c.run(t.Context(), strings.NewReader(script)); err != nil {
		t.Fatalf("run: %v", err)
	}

	text := out.String()
	if !strings.Contains(text, "1. Bench Press (A)") || !strings.Contains(text, "2. Row (A)") {
		t.Errorf("superset labels missing from output:\n%s", text)
	}
	if !strings.Contains(text, `unknown command "bogus"`) {
		t.Errorf("unknown command not reported:\n%s", text)
	}

	ch.mu.Lock()
	defer ch.mu.Unlock()
	if len(ch.sent) != 1 {
		t.Fatalf("payloads sent = %d, want 1", len(ch.sent))
	}
	p := ch.sent[0]
	first := p.Exercises[0].Sets[0]
	if first.ActualReps != 10 || first.ActualWeight != 82.5 || first.PlannedWeight != 80 || !first.IsCompleted {
		t.Errorf("first set = %+v", first)
	}
	if !p.Exercises[1].Sets[0].IsCompleted {
		t.Error("toggled set not completed")
	}
	if !p.ShouldUpdateRoutine {
		t.Error("modified set should request a routine update")
	}
}

// TestConsoleArgumentErrors verifies malformed arguments are reported
// without touching the engine.
func TestConsoleArgumentErrors(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := companion.New(companion.NewSimulatedSensor(time.Now), &recordChannel{}, nopNotifier{}, log, companion.Options{})
	c := &console{engine: engine, routine: testRoutine(), out: io.Discard}

	for _, cmd := range [][]string{
		{"toggle", "1"},
		{"toggle", "9", "1"},
		{"set", "ten", "80"},
		{"set", "10", "80"},
		{"rest"},
		{"rest", "soon"},
	} {
		if err := c.exec(t.Context(), cmd[0], cmd[1:]); err == nil {
			t.Errorf("%v: expected error", cmd)
		}
	}
}
