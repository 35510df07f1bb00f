package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/claude/ironlog/internal/models"
	"github.com/claude/ironlog/internal/progress"
	"github.com/google/uuid"
)

// HTTPClient implements DataSource by calling the IronLog REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values, v any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

func exercisePath(name, suffix string) string {
	return "/api/v1/exercises/" + url.PathEscape(name) + "/" + suffix
}

func (c *HTTPClient) ExerciseNames(ctx context.Context, tf progress.Timeframe) ([]string, error) {
	params := url.Values{}
	params.Set("timeframe", string(tf))

	var names []string
	if err := c.get(ctx, "/api/v1/exercises", params, &names); err != nil {
		return nil, err
	}
	return names, nil
}

func (c *HTTPClient) ExerciseProgress(ctx context.Context, name string, tf progress.Timeframe) (*progress.ExerciseProgressData, error) {
	params := url.Values{}
	params.Set("timeframe", string(tf))

	var data progress.ExerciseProgressData
	if err := c.get(ctx, exercisePath(name, "progress"), params, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (c *HTTPClient) PreviousPerformance(ctx context.Context, name string, before time.Time) (*progress.PreviousExercisePerformance, error) {
	params := url.Values{}
	params.Set("before", before.Format(time.RFC3339))

	var prev *progress.PreviousExercisePerformance
	if err := c.get(ctx, exercisePath(name, "previous"), params, &prev); err != nil {
		return nil, err
	}
	return prev, nil
}

func (c *HTTPClient) CompareSession(ctx context.Context, id uuid.UUID) ([]progress.ExerciseComparisonResult, error) {
	var results []progress.ExerciseComparisonResult
	if err := c.get(ctx, "/api/v1/sessions/"+id.String()+"/comparison", nil, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func (c *HTTPClient) Sessions(ctx context.Context, start, end time.Time) ([]models.WorkoutSession, error) {
	params := url.Values{}
	params.Set("start", start.Format(time.RFC3339))
	params.Set("end", end.Format(time.RFC3339))

	var sessions []models.WorkoutSession
	if err := c.get(ctx, "/api/v1/sessions", params, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}
