// Package notify delivers local notifications after a delay using a gocron
// scheduler.
package notify

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/ironlog/internal/companion"
	"github.com/go-co-op/gocron"
)

// Scheduler implements companion.Notifier. Each pending notification is a
// one-shot job tagged with its id.
type Scheduler struct {
	cron    *gocron.Scheduler
	deliver func(companion.Notification)
	log     *slog.Logger

	mu sync.Mutex
}

// New creates and starts a Scheduler that hands due notifications to deliver.
func New(deliver func(companion.Notification), log *slog.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.StartAsync()
	return &Scheduler{cron: s, deliver: deliver, log: log}
}

// Schedule replaces any pending notification with the same id by one that
// fires once after the given delay.
func (s *Scheduler) Schedule(id string, after time.Duration, n companion.Notification) error {
	if after <= 0 {
		return fmt.Errorf("scheduling %s: delay must be positive, got %s", id, after)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(id)
	_, err := s.cron.Every(after).
		StartAt(time.Now().Add(after)).
		LimitRunsTo(1).
		Tag(id).
		Do(s.fire, id, n)
	if err != nil {
		return fmt.Errorf("scheduling %s: %w", id, err)
	}
	return nil
}

// Cancel drops the pending notification with this id, if any.
func (s *Scheduler) Cancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(id)
}

// Pending reports whether a notification with this id is scheduled.
func (s *Scheduler) Pending(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	jobs, err := s.cron.FindJobsByTag(id)
	if err != nil {
		return false
	}
	for _, j := range jobs {
		if j.RunCount() == 0 {
			return true
		}
	}
	return false
}

// Stop stops the underlying scheduler. Pending notifications are dropped.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) removeLocked(id string) {
	err := s.cron.RemoveByTag(id)
	if err != nil && !errors.Is(err, gocron.ErrJobNotFoundWithTag) {
		s.log.Warn("removing notification job", "id", id, "error", err)
	}
}

func (s *Scheduler) fire(id string, n companion.Notification) {
	s.log.Debug("notification due", "id", id, "title", n.Title)
	s.deliver(n)
}
