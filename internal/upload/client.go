package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/claude/ironlog/internal/models"
	"github.com/google/uuid"
)

// ErrRejected marks a payload the server refused outright. Resending it will
// not help.
var ErrRejected = errors.New("payload rejected by server")

// Client sends data to the IronLog server over HTTP.
type Client struct {
	serverURL  string
	apiKey     string
	httpClient *http.Client
	backoff    time.Duration
}

// NewClient creates a new HTTP client for the IronLog server.
func NewClient(serverURL, apiKey string) *Client {
	return &Client{
		serverURL: strings.TrimRight(serverURL, "/"),
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		backoff: time.Second,
	}
}

// FetchRoutine retrieves a routine template from the server.
func (c *Client) FetchRoutine(ctx context.Context, id uuid.UUID) (*models.Routine, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.serverURL+"/api/v1/routines/"+id.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching routine: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("routine request failed (status %d): %s", resp.StatusCode, body)
	}

	var routine models.Routine
	if err := json.NewDecoder(resp.Body).Decode(&routine); err != nil {
		return nil, fmt.Errorf("decoding routine: %w", err)
	}
	return &routine, nil
}

// SendPayload POSTs a finished workout to the server's companion endpoint.
// Retries up to 3 times with exponential backoff on failure. Client errors
// other than 429 are not retried and wrap ErrRejected.
func (c *Client) SendPayload(ctx context.Context, payload models.CompletedWorkoutPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling payload: %w", err)
	}

	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			select {
			case <-time.After(c.backoff << uint(attempt-1)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL+"/api/v1/companion/workouts", bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-API-Key", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			return nil
		case resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests:
			return fmt.Errorf("%w (status %d): %s", ErrRejected, resp.StatusCode, body)
		}
		lastErr = fmt.Errorf("sync failed (status %d): %s", resp.StatusCode, body)
	}

	return fmt.Errorf("after 3 attempts: %w", lastErr)
}
