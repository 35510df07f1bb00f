// Package upload delivers finished companion workouts to the IronLog server.
package upload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/ironlog/internal/companion"
	"github.com/claude/ironlog/internal/models"
)

// Sender delivers one payload to the server.
type Sender interface {
	SendPayload(ctx context.Context, p models.CompletedWorkoutPayload) error
}

// Channel is the companion's message channel: payloads go to the outbox and
// are delivered in the background. Send never blocks on the network.
type Channel struct {
	sender  Sender
	outbox  *Outbox
	log     *slog.Logger
	timeout time.Duration

	mu sync.Mutex // serializes flushes
	wg sync.WaitGroup
}

var _ companion.MessageChannel = (*Channel)(nil)

// NewChannel creates a Channel delivering through sender.
func NewChannel(sender Sender, outbox *Outbox, log *slog.Logger) *Channel {
	return &Channel{sender: sender, outbox: outbox, log: log, timeout: 2 * time.Minute}
}

// Send queues the payload and starts a background flush.
func (c *Channel) Send(p models.CompletedWorkoutPayload) {
	if err := c.outbox.Enqueue(context.Background(), p); err != nil {
		c.log.Error("queueing workout", "id", p.ID, "error", err)
		return
	}
	c.log.Info("workout queued", "id", p.ID, "routine", p.RoutineName)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()
		if _, err := c.Flush(ctx); err != nil {
			c.log.Warn("background sync failed, will retry on next flush", "error", err)
		}
	}()
}

// Flush delivers pending payloads in queue order and returns how many were
// accepted. It stops at the first delivery failure so later workouts never
// overtake earlier ones; rejected payloads are set aside and skipped.
func (c *Channel) Flush(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	pending, err := c.outbox.Pending(ctx)
	if err != nil {
		return 0, err
	}

	delivered := 0
	for _, p := range pending {
		err := c.sender.SendPayload(ctx, p)
		if errors.Is(err, ErrRejected) {
			c.log.Error("workout rejected by server", "id", p.ID, "error", err)
			if err := c.outbox.MarkFailed(ctx, p.ID, err, true); err != nil {
				return delivered, fmt.Errorf("recording rejection: %w", err)
			}
			continue
		}
		if err != nil {
			if markErr := c.outbox.MarkFailed(ctx, p.ID, err, false); markErr != nil {
				c.log.Warn("recording failed delivery", "id", p.ID, "error", markErr)
			}
			return delivered, fmt.Errorf("sending workout %s: %w", p.ID, err)
		}
		if err := c.outbox.MarkDelivered(ctx, p.ID); err != nil {
			return delivered, fmt.Errorf("recording delivery: %w", err)
		}
		delivered++
		c.log.Info("workout synced", "id", p.ID)
	}
	return delivered, nil
}

// Wait blocks until background flushes started by Send have finished.
func (c *Channel) Wait() {
	c.wg.Wait()
}
