package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/claude/ironlog/internal/progress"
	"github.com/claude/ironlog/internal/storage"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// defaultTimeRange returns start/end defaulting to the last 7 days.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -7)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

func timeframeNames() []string {
	names := make([]string, len(progress.Timeframes))
	for i, tf := range progress.Timeframes {
		names[i] = string(tf)
	}
	return names
}

// --- Tool definitions ---

var toolListExercises = mcp.NewTool("list_exercises",
	mcp.WithDescription("List the distinct exercise names performed in completed sessions within a timeframe, sorted alphabetically."),
	mcp.WithString("timeframe", mcp.Description("Lookback window. Defaults to 'month'."), mcp.Enum(timeframeNames()...)),
)

var toolGetExerciseProgress = mcp.NewTool("get_exercise_progress",
	mcp.WithDescription("Per-session progress of one exercise, oldest first: max weight, Epley estimated one-rep max, volume (weight x reps), set and rep counts. Only completed sets count."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name (case-insensitive exact match, e.g. 'bench press')")),
	mcp.WithString("timeframe", mcp.Description("Lookback window. Defaults to 'month'."), mcp.Enum(timeframeNames()...)),
)

var toolGetPreviousPerformance = mcp.NewTool("get_previous_performance",
	mcp.WithDescription("The sets of the most recent completed session, before a cutoff, that contained the exercise. Returns null when the exercise was never performed before."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name (case-insensitive exact match)")),
	mcp.WithString("before", mcp.Description("Cutoff (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
)

var toolCompareSession = mcp.NewTool("compare_session",
	mcp.WithDescription("Compare every exercise of a session with the last time it was performed. Sets are aligned by position; deltas are null when there is no previous set."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session UUID")),
)

var toolListSessions = mcp.NewTool("list_sessions",
	mcp.WithDescription("Completed workout sessions in a date range, newest first, with exercises and sets."),
	mcp.WithString("start", mcp.Description("Start date. Defaults to 7 days ago.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
)

// --- Tool handlers ---

func (h *handlers) listExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tf, err := progress.ParseTimeframe(req.GetString("timeframe", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	names, err := h.ds.ExerciseNames(ctx, tf)
	if err != nil {
		h.log.Error("mcp list_exercises", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(names)
}

func (h *handlers) getExerciseProgress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercise, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}
	tf, err := progress.ParseTimeframe(req.GetString("timeframe", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	data, err := h.ds.ExerciseProgress(ctx, exercise, tf)
	if err != nil {
		h.log.Error("mcp get_exercise_progress", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(data)
}

func (h *handlers) getPreviousPerformance(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercise, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}

	before := time.Now()
	if v := req.GetString("before", ""); v != "" {
		before, err = parseFlexTime(v)
		if err != nil {
			return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
		}
	}

	prev, err := h.ds.PreviousPerformance(ctx, exercise, before)
	if err != nil {
		h.log.Error("mcp get_previous_performance", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if prev == nil {
		return mcp.NewToolResultText("No previous performance of " + exercise + " before " + before.Format("2006-01-02") + "."), nil
	}
	return jsonResult(prev)
}

func (h *handlers) compareSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idStr, err := req.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("session_id parameter is required"), nil
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return mcp.NewToolResultError("invalid session_id: " + err.Error()), nil
	}

	results, err := h.ds.CompareSession(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return mcp.NewToolResultError("session not found"), nil
	}
	if err != nil {
		h.log.Error("mcp compare_session", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(results)
}

func (h *handlers) listSessions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	sessions, err := h.ds.Sessions(ctx, start, end)
	if err != nil {
		h.log.Error("mcp list_sessions", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(sessions)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
