package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("IronLog", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("IronLog strength training log. Query exercise progress (max weight, estimated one-rep max, volume), the previous performance of an exercise, and set-by-set comparisons of a session against the last time each exercise was performed. Weights are in kilograms."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolListExercises, Handler: h.listExercises},
		server.ServerTool{Tool: toolGetExerciseProgress, Handler: h.getExerciseProgress},
		server.ServerTool{Tool: toolGetPreviousPerformance, Handler: h.getPreviousPerformance},
		server.ServerTool{Tool: toolCompareSession, Handler: h.compareSession},
		server.ServerTool{Tool: toolListSessions, Handler: h.listSessions},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resRecentSessions, Handler: h.recentSessions},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resRecentSessions = mcp.NewResource(
	"ironlog://recent_sessions",
	"Recent Sessions",
	mcp.WithResourceDescription("Completed workout sessions from the last 14 days, newest first"),
	mcp.WithMIMEType("application/json"),
)
