package companion

import (
	"context"
	"fmt"
	"time"
)

// RestNotificationID identifies the pending rest-complete notification.
const RestNotificationID = "rest-timer"

// RestState is the rest countdown state.
type RestState int

const (
	RestInactive RestState = iota
	RestRunning
	RestCompleted
)

func (s RestState) String() string {
	switch s {
	case RestInactive:
		return "inactive"
	case RestRunning:
		return "running"
	case RestCompleted:
		return "completed"
	default:
		return fmt.Sprintf("RestState(%d)", int(s))
	}
}

// RestTimer is a snapshot of the rest countdown.
type RestTimer struct {
	State     RestState
	Total     int // seconds
	Remaining int // seconds
	Minimized bool
	EndsAt    time.Time
}

// StartRest starts a rest countdown, replacing any running one. Non-positive
// durations only cancel. Ignored when no workout is running.
func (e *Engine) StartRest(seconds int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.inProgressLocked() {
		return
	}
	e.startRestLocked(seconds)
}

// SkipRest cancels the rest countdown immediately.
func (e *Engine) SkipRest() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelRestLocked()
}

// ToggleRestMinimized flips whether the countdown is shown minimized.
func (e *Engine) ToggleRestMinimized() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rest.Minimized = !e.rest.Minimized
}

// Rest returns the rest countdown snapshot.
func (e *Engine) Rest() RestTimer {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rest
}

func (e *Engine) startRestLocked(seconds int) {
	e.cancelRestLocked()
	if seconds <= 0 {
		return
	}

	e.restGen++
	gen := e.restGen
	after := time.Duration(seconds) * e.opts.Tick
	e.rest = RestTimer{
		State:     RestRunning,
		Total:     seconds,
		Remaining: seconds,
		EndsAt:    e.opts.Now().Add(after),
	}

	if e.notifier != nil {
		n := Notification{Title: "Rest complete", Body: e.nextSetLabelLocked()}
		if err := e.notifier.Schedule(RestNotificationID, after, n); err != nil {
			e.log.Warn("scheduling rest notification", "error", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.restCancel = cancel
	go e.countdown(ctx, gen)
}

// cancelRestLocked stops any countdown and its pending notification and
// returns the timer to inactive. Safe to call repeatedly.
func (e *Engine) cancelRestLocked() {
	if e.restCancel != nil {
		e.restCancel()
		e.restCancel = nil
	}
	if e.rest.State == RestRunning && e.notifier != nil {
		e.notifier.Cancel(RestNotificationID)
	}
	e.restGen++
	e.rest = RestTimer{}
}

func (e *Engine) countdown(ctx context.Context, gen uint64) {
	ticker := time.NewTicker(e.opts.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		e.mu.Lock()
		if e.restGen != gen || e.rest.State != RestRunning {
			e.mu.Unlock()
			return
		}
		e.rest.Remaining--
		if e.rest.Remaining > 0 {
			e.mu.Unlock()
			continue
		}
		e.rest.Remaining = 0
		e.rest.State = RestCompleted
		e.mu.Unlock()
		break
	}

	select {
	case <-ctx.Done():
		return
	case <-time.After(e.opts.Grace):
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.restGen != gen || e.rest.State != RestCompleted {
		return
	}
	e.rest = RestTimer{}
	if e.restCancel != nil {
		e.restCancel()
		e.restCancel = nil
	}
}

func (e *Engine) nextSetLabelLocked() string {
	c := e.cursor
	if c.Exercise < 0 || c.Exercise >= len(e.exercises) {
		return "Time for your next set"
	}
	ex := e.exercises[c.Exercise]
	return fmt.Sprintf("Next up: %s", ex.Name)
}
