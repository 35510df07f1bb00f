// Package ingest defines what importers of third-party workout exports report.
package ingest

import (
	"context"
	"io"
)

// Provider imports sessions from an export format into the store.
type Provider interface {
	Ingest(ctx context.Context, r io.Reader) (*Result, error)
}

// Result holds the outcome of an ingest operation.
type Result struct {
	SessionsReceived int   `json:"sessions_received"`
	SessionsInserted int   `json:"sessions_inserted"`
	SessionsReplaced int64 `json:"sessions_replaced"`

	SetsReceived   int `json:"sets_received"`
	WarmupsSkipped int `json:"warmups_skipped"`

	Message string `json:"message,omitempty"`
}
