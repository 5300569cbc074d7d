package state

import (
	"context"
	"time"
)

type Store interface {
	EnsureSchema(ctx context.Context) error
	AppendScript(ctx context.Context, item ScriptHistoryItem) error
	RecentScripts(ctx context.Context, limit int) ([]ScriptHistoryItem, error)
	CountScripts(ctx context.Context) (int, error)
	GetSummary(ctx context.Context) (Summary, error)
	Close() error
}

// ScriptHistoryItem is one row of the session's analysis ledger. Rows
// are append-only; nothing updates or deletes them.
type ScriptHistoryItem struct {
	ID       string
	Date     time.Time
	Snippet  string
	Score    int
	Hook     string
	Fallback bool
}

type Summary struct {
	Runs      int
	BestScore int
	AvgScore  int
}
