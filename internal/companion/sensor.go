package companion

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/claude/ironlog/internal/models"
)

// SensorSource is the device's workout sensor session: authorization, live
// heart rate and calories, and the final session metrics.
type SensorSource interface {
	RequestAuthorization(ctx context.Context) (bool, error)
	StartSession(ctx context.Context) error
	Pause()
	Resume()
	EndSession(ctx context.Context) (models.SessionMetrics, error)
	DiscardSession()
	HeartRate() float64
	ActiveCalories() float64
	ElapsedTime() time.Duration
}

// MessageChannel carries finished workouts to the paired host. Send must not
// block and reports nothing back.
type MessageChannel interface {
	Send(p models.CompletedWorkoutPayload)
}

// Notification is a local alert shown when a rest countdown runs out.
type Notification struct {
	Title string
	Body  string
}

// Notifier schedules local notifications. Scheduling an id that is already
// pending replaces it. Cancelling an unknown id is a no-op.
type Notifier interface {
	Schedule(id string, after time.Duration, n Notification) error
	Cancel(id string)
}

// SimulatedSensor is a deterministic SensorSource for running the engine
// without hardware. Heart rate climbs from RestingHeartRate by one beat per
// elapsed minute up to MaxHeartRate; calories accrue at CaloriesPerMinute.
type SimulatedSensor struct {
	RestingHeartRate  float64
	MaxHeartRate      float64
	CaloriesPerMinute float64
	Authorized        bool

	now func() time.Time

	mu        sync.Mutex
	running   bool
	paused    bool
	started   time.Time
	pausedAt  time.Time
	pausedFor time.Duration
	hrSum     float64
	hrCount   int
	hrMax     float64
}

var _ SensorSource = (*SimulatedSensor)(nil)

// NewSimulatedSensor returns an authorized simulator with typical gym values.
func NewSimulatedSensor(now func() time.Time) *SimulatedSensor {
	if now == nil {
		now = time.Now
	}
	return &SimulatedSensor{
		RestingHeartRate:  95,
		MaxHeartRate:      165,
		CaloriesPerMinute: 7,
		Authorized:        true,
		now:               now,
	}
}

// RequestAuthorization reports the Authorized field.
func (s *SimulatedSensor) RequestAuthorization(_ context.Context) (bool, error) {
	return s.Authorized, nil
}

// StartSession starts the clock and clears heart rate samples.
func (s *SimulatedSensor) StartSession(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = true
	s.paused = false
	s.started = s.now()
	s.pausedFor = 0
	s.hrSum, s.hrCount, s.hrMax = 0, 0, 0
	return nil
}

// Pause stops the clock until Resume.
func (s *SimulatedSensor) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running && !s.paused {
		s.paused = true
		s.pausedAt = s.now()
	}
}

// Resume restarts the clock, excluding the paused time from elapsed time.
func (s *SimulatedSensor) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running && s.paused {
		s.pausedFor += s.now().Sub(s.pausedAt)
		s.paused = false
	}
}

// EndSession stops the session and reports its duration, calories and heart
// rate summary.
func (s *SimulatedSensor) EndSession(_ context.Context) (models.SessionMetrics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	elapsed := s.elapsedLocked()
	hr := s.sampleLocked(elapsed)
	m := models.SessionMetrics{
		Duration:       elapsed,
		ActiveCalories: s.caloriesLocked(elapsed),
		AvgHeartRate:   s.hrSum / float64(s.hrCount),
		MaxHeartRate:   math.Max(s.hrMax, hr),
	}
	s.running = false
	return m, nil
}

// DiscardSession stops the session without producing metrics.
func (s *SimulatedSensor) DiscardSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.paused = false
}

// HeartRate samples the current heart rate, or 0 when no session runs.
func (s *SimulatedSensor) HeartRate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return 0
	}
	return s.sampleLocked(s.elapsedLocked())
}

// ActiveCalories returns calories burned so far, or 0 when no session runs.
func (s *SimulatedSensor) ActiveCalories() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return 0
	}
	return s.caloriesLocked(s.elapsedLocked())
}

// ElapsedTime returns unpaused session time, or 0 when no session runs.
func (s *SimulatedSensor) ElapsedTime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return 0
	}
	return s.elapsedLocked()
}

func (s *SimulatedSensor) elapsedLocked() time.Duration {
	end := s.now()
	if s.paused {
		end = s.pausedAt
	}
	return end.Sub(s.started) - s.pausedFor
}

func (s *SimulatedSensor) sampleLocked(elapsed time.Duration) float64 {
	hr := math.Min(s.RestingHeartRate+elapsed.Minutes(), s.MaxHeartRate)
	s.hrSum += hr
	s.hrCount++
	s.hrMax = math.Max(s.hrMax, hr)
	return hr
}

func (s *SimulatedSensor) caloriesLocked(elapsed time.Duration) float64 {
	return elapsed.Minutes() * s.CaloriesPerMinute
}
