// Package companion runs a workout on the wrist device: set completion,
// exercise navigation, the rest countdown and the sensor session.
package companion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/ironlog/internal/models"
	"github.com/google/uuid"
)

var (
	// ErrNotAuthorized is returned when the sensor source denies access.
	ErrNotAuthorized = errors.New("sensor authorization denied")
	// ErrNoActiveWorkout is returned by operations that need a running workout.
	ErrNoActiveWorkout = errors.New("no active workout")
	// ErrWorkoutInProgress is returned when starting while a workout runs.
	ErrWorkoutInProgress = errors.New("workout already in progress")
)

// State is the workout lifecycle state.
type State int

const (
	StateIdle State = iota
	StateActive
	StatePaused
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StatePaused:
		return "paused"
	case StateEnded:
		return "ended"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Cursor points at the set currently being performed.
type Cursor struct {
	Exercise int
	Set      int
}

// LiveMetrics is the latest sensor reading.
type LiveMetrics struct {
	HeartRate      float64
	ActiveCalories float64
	Elapsed        time.Duration
}

// Options tunes the engine's timing. Zero values select the defaults.
type Options struct {
	Tick  time.Duration // rest countdown step, one second by default
	Poll  time.Duration // sensor poll interval, one second by default
	Grace time.Duration // how long a finished countdown stays visible, two seconds by default
	Now   func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Tick <= 0 {
		o.Tick = time.Second
	}
	if o.Poll <= 0 {
		o.Poll = time.Second
	}
	if o.Grace <= 0 {
		o.Grace = 2 * time.Second
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Engine is the workout session state machine. All methods are safe for
// concurrent use; mutations are serialized under one lock.
type Engine struct {
	sensor   SensorSource
	channel  MessageChannel
	notifier Notifier
	log      *slog.Logger
	opts     Options

	mu         sync.Mutex
	state      State
	routineID  uuid.UUID
	routine    string
	startedAt  time.Time
	exercises  []ActiveExercise
	cursor     Cursor
	live       LiveMetrics
	lastErr    error
	pollCancel context.CancelFunc

	rest       RestTimer
	restGen    uint64
	restCancel context.CancelFunc
}

// New creates an idle Engine. notifier may be nil.
func New(sensor SensorSource, channel MessageChannel, notifier Notifier, log *slog.Logger, opts Options) *Engine {
	return &Engine{
		sensor:   sensor,
		channel:  channel,
		notifier: notifier,
		log:      log,
		opts:     opts.withDefaults(),
	}
}

// StartWorkout snapshots the routine and starts the sensor session. It is
// allowed from Idle or Ended. On failure the engine stays where it was and
// the error is also available from LastError.
func (e *Engine) StartWorkout(ctx context.Context, routine models.Routine) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateActive || e.state == StatePaused {
		return ErrWorkoutInProgress
	}

	authorized, err := e.sensor.RequestAuthorization(ctx)
	if err != nil {
		return e.failLocked(fmt.Errorf("requesting sensor authorization: %w", err))
	}
	if !authorized {
		return e.failLocked(ErrNotAuthorized)
	}
	if err := e.sensor.StartSession(ctx); err != nil {
		return e.failLocked(fmt.Errorf("starting sensor session: %w", err))
	}

	e.cancelRestLocked()
	e.state = StateActive
	e.routineID = routine.ID
	e.routine = routine.Name
	e.startedAt = e.opts.Now()
	e.exercises = snapshot(routine)
	e.cursor = Cursor{}
	e.live = LiveMetrics{}
	e.lastErr = nil
	e.startPollLocked()

	e.log.Info("workout started", "routine", routine.Name, "exercises", len(e.exercises))
	return nil
}

// PauseWorkout pauses an active workout.
func (e *Engine) PauseWorkout() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateActive {
		return
	}
	e.sensor.Pause()
	e.state = StatePaused
}

// ResumeWorkout resumes a paused workout.
func (e *Engine) ResumeWorkout() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StatePaused {
		return
	}
	e.sensor.Resume()
	e.state = StateActive
}

// ToggleSet flips a set's completion. Completing stamps the time and starts
// the set's rest countdown; uncompleting clears the stamp. Unknown IDs and
// calls outside a running workout are ignored.
func (e *Engine) ToggleSet(exerciseID, setID uuid.UUID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ei, si, ok := e.findSetLocked(exerciseID, setID)
	if !ok || !e.inProgressLocked() {
		return
	}
	if e.exercises[ei].Sets[si].IsCompleted {
		s := &e.exercises[ei].Sets[si]
		s.IsCompleted = false
		s.CompletedAt = nil
		return
	}
	e.completeSetLocked(ei, si)
}

// UpdateSet edits the actual reps and weight of a set. Unknown IDs are
// ignored.
func (e *Engine) UpdateSet(exerciseID, setID uuid.UUID, reps int, weight float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ei, si, ok := e.findSetLocked(exerciseID, setID)
	if !ok || !e.inProgressLocked() {
		return
	}
	s := &e.exercises[ei].Sets[si]
	s.ActualReps = reps
	s.ActualWeight = weight
}

// CompleteCurrentSet completes the set under the cursor and moves the cursor
// to the next set, continuing into the next exercise. The cursor never moves
// past the last set of the last exercise.
func (e *Engine) CompleteCurrentSet() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.inProgressLocked() || !e.validCursorLocked() {
		return
	}
	c := e.cursor
	if !e.exercises[c.Exercise].Sets[c.Set].IsCompleted {
		e.completeSetLocked(c.Exercise, c.Set)
	}

	switch {
	case c.Set+1 < len(e.exercises[c.Exercise].Sets):
		e.cursor.Set++
	case c.Exercise+1 < len(e.exercises):
		e.cursor = Cursor{Exercise: c.Exercise + 1}
	}
}

// NextExercise moves the cursor to the next exercise's first incomplete set.
func (e *Engine) NextExercise() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.inProgressLocked() || e.cursor.Exercise+1 >= len(e.exercises) {
		return
	}
	e.moveToExerciseLocked(e.cursor.Exercise + 1)
}

// PreviousExercise moves the cursor to the previous exercise's first
// incomplete set.
func (e *Engine) PreviousExercise() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.inProgressLocked() || e.cursor.Exercise <= 0 || len(e.exercises) == 0 {
		return
	}
	e.moveToExerciseLocked(e.cursor.Exercise - 1)
}

// EndWorkout finalizes the sensor session, sends the completed workout over
// the message channel and moves to Ended. If the sensor fails the workout
// stays active so the caller can retry.
func (e *Engine) EndWorkout(ctx context.Context) (models.CompletedWorkoutPayload, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.inProgressLocked() {
		return models.CompletedWorkoutPayload{}, ErrNoActiveWorkout
	}

	e.cancelRestLocked()

	metrics, err := e.sensor.EndSession(ctx)
	if err != nil {
		e.lastErr = fmt.Errorf("ending sensor session: %w", err)
		e.log.Warn("workout finalize failed", "routine", e.routine, "error", err)
		return models.CompletedWorkoutPayload{}, e.lastErr
	}

	payload := e.payloadLocked(metrics)
	e.channel.Send(payload)

	e.stopPollLocked()
	e.state = StateEnded
	e.lastErr = nil

	e.log.Info("workout ended", "routine", e.routine, "duration", metrics.Duration, "update_routine", payload.ShouldUpdateRoutine)
	return payload, nil
}

// DiscardWorkout abandons the workout without sending anything and returns
// to Idle.
func (e *Engine) DiscardWorkout() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cancelRestLocked()
	e.stopPollLocked()
	if e.state == StateActive || e.state == StatePaused {
		e.sensor.DiscardSession()
		e.log.Info("workout discarded", "routine", e.routine)
	}

	e.state = StateIdle
	e.routineID = uuid.Nil
	e.routine = ""
	e.startedAt = time.Time{}
	e.exercises = nil
	e.cursor = Cursor{}
	e.live = LiveMetrics{}
	e.lastErr = nil
	e.rest = RestTimer{}
}

// State returns the lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Exercises returns a copy of the active exercises.
func (e *Engine) Exercises() []ActiveExercise {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]ActiveExercise, len(e.exercises))
	for i, ex := range e.exercises {
		out[i] = ex.clone()
	}
	return out
}

// Cursor returns the current position.
func (e *Engine) Cursor() Cursor {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cursor
}

// Live returns the latest sensor reading.
func (e *Engine) Live() LiveMetrics {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.live
}

// LastError returns the error of the last failed start or end, or nil.
func (e *Engine) LastError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

func (e *Engine) failLocked(err error) error {
	e.lastErr = err
	e.log.Warn("workout start failed", "error", err)
	return err
}

func (e *Engine) findSetLocked(exerciseID, setID uuid.UUID) (int, int, bool) {
	for ei := range e.exercises {
		if e.exercises[ei].ID != exerciseID {
			continue
		}
		for si := range e.exercises[ei].Sets {
			if e.exercises[ei].Sets[si].ID == setID {
				return ei, si, true
			}
		}
		return 0, 0, false
	}
	return 0, 0, false
}

func (e *Engine) completeSetLocked(ei, si int) {
	s := &e.exercises[ei].Sets[si]
	now := e.opts.Now()
	s.IsCompleted = true
	s.CompletedAt = &now
	if s.RestSeconds > 0 {
		e.startRestLocked(s.RestSeconds)
	}
}

// inProgressLocked reports whether set edits and navigation are accepted.
func (e *Engine) inProgressLocked() bool {
	return e.state == StateActive || e.state == StatePaused
}

func (e *Engine) validCursorLocked() bool {
	c := e.cursor
	return c.Exercise >= 0 && c.Exercise < len(e.exercises) &&
		c.Set >= 0 && c.Set < len(e.exercises[c.Exercise].Sets)
}

func (e *Engine) moveToExerciseLocked(i int) {
	e.cursor = Cursor{Exercise: i, Set: e.exercises[i].firstIncompleteSet()}
}

func (e *Engine) payloadLocked(metrics models.SessionMetrics) models.CompletedWorkoutPayload {
	p := models.CompletedWorkoutPayload{
		ID:                  uuid.New(),
		RoutineName:         e.routine,
		StartTime:           e.startedAt,
		EndTime:             e.opts.Now(),
		Metrics:             metrics,
		Exercises:           make([]models.CompletedExercise, 0, len(e.exercises)),
		ShouldUpdateRoutine: shouldUpdateRoutine(e.exercises),
	}
	if e.routineID != uuid.Nil {
		id := e.routineID
		p.RoutineID = &id
	}
	for _, ex := range e.exercises {
		p.Exercises = append(p.Exercises, ex.Completed())
	}
	return p
}

func (e *Engine) startPollLocked() {
	e.stopPollLocked()
	ctx, cancel := context.WithCancel(context.Background())
	e.pollCancel = cancel
	go e.poll(ctx)
}

func (e *Engine) stopPollLocked() {
	if e.pollCancel != nil {
		e.pollCancel()
		e.pollCancel = nil
	}
}

func (e *Engine) poll(ctx context.Context) {
	ticker := time.NewTicker(e.opts.Poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.mu.Lock()
			if ctx.Err() == nil {
				e.live = LiveMetrics{
					HeartRate:      e.sensor.HeartRate(),
					ActiveCalories: e.sensor.ActiveCalories(),
					Elapsed:        e.sensor.ElapsedTime(),
				}
			}
			e.mu.Unlock()
		}
	}
}
