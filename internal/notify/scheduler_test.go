package notify

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/claude/ironlog/internal/companion"
)

var _ companion.Notifier = (*Scheduler)(nil)

func newTestScheduler(t *testing.T) (*Scheduler, chan companion.Notification) {
	t.Helper()
	got := make(chan companion.Notification, 4)
	s := New(func(n companion.Notification) { got <- n }, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(s.Stop)
	return s, got
}

// TestScheduleFires verifies a scheduled notification is delivered once.
func TestScheduleFires(t *testing.T) {
	s, got := newTestScheduler(t)

	if err := s.Schedule("rest", 50*time.Millisecond, companion.Notification{Title: "Rest complete"}); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if !s.Pending("rest") {
		t.Error("Pending = false right after scheduling")
	}

	select {
	case n := <-got:
		if n.Title != "Rest complete" {
			t.Errorf("title = %q", n.Title)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("notification not delivered")
	}

	select {
	case n := <-got:
		t.Errorf("unexpected second delivery %+v", n)
	case <-time.After(200 * time.Millisecond):
	}
}

// TestScheduleReplaces verifies rescheduling an id drops the earlier one.
func TestScheduleReplaces(t *testing.T) {
	s, got := newTestScheduler(t)

	if err := s.Schedule("rest", 100*time.Millisecond, companion.Notification{Title: "first"}); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if err := s.Schedule("rest", 150*time.Millisecond, companion.Notification{Title: "second"}); err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	select {
	case n := <-got:
		if n.Title != "second" {
			t.Errorf("delivered %q, want %q", n.Title, "second")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("notification not delivered")
	}
}

// TestCancel verifies a cancelled notification never fires and cancelling an
// unknown id is harmless.
func TestCancel(t *testing.T) {
	s, got := newTestScheduler(t)

	s.Cancel("nothing")

	if err := s.Schedule("rest", 100*time.Millisecond, companion.Notification{Title: "x"}); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	s.Cancel("rest")
	if s.Pending("rest") {
		t.Error("Pending = true after Cancel")
	}

	select {
	case n := <-got:
		t.Errorf("cancelled notification delivered: %+v", n)
	case <-time.After(400 * time.Millisecond):
	}
}

// TestScheduleRejectsNonPositive verifies zero delays are refused.
func TestScheduleRejectsNonPositive(t *testing.T) {
	s, _ := newTestScheduler(t)
	if err := s.Schedule("rest", 0, companion.Notification{}); err == nil {
		t.Error("expected an error for a zero delay")
	}
}
