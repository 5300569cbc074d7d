package state

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SessionStore keeps the ledger in an in-memory SQLite database, so it
// lives and dies with the process.
type SessionStore struct {
	db *sql.DB
}

func NewSession() (*SessionStore, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	// With :memory: every pooled connection gets its own database, so
	// the pool must stay at a single connection.
	db.SetMaxOpenConns(1)
	return &SessionStore{db: db}, nil
}

func (s *SessionStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS script_history (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL,
			created_ts TEXT NOT NULL,
			snippet TEXT NOT NULL,
			score INTEGER NOT NULL,
			hook TEXT NOT NULL DEFAULT '',
			fallback INTEGER NOT NULL DEFAULT 0
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (s *SessionStore) AppendScript(ctx context.Context, item ScriptHistoryItem) error {
	fallbackInt := 0
	if item.Fallback {
		fallbackInt = 1
	}
	date := item.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO script_history(id, created_ts, snippet, score, hook, fallback) VALUES(?,?,?,?,?,?)`,
		item.ID,
		date.UTC().Format(timeLayout),
		item.Snippet,
		item.Score,
		item.Hook,
		fallbackInt,
	)
	return err
}

func (s *SessionStore) RecentScripts(ctx context.Context, limit int) ([]ScriptHistoryItem, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_ts, snippet, score, hook, fallback
		FROM script_history
		ORDER BY seq DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ScriptHistoryItem
	for rows.Next() {
		var (
			item        ScriptHistoryItem
			createdRaw  string
			fallbackInt int
		)
		if err := rows.Scan(&item.ID, &createdRaw, &item.Snippet, &item.Score, &item.Hook, &fallbackInt); err != nil {
			return nil, err
		}
		if t, err := time.Parse(timeLayout, createdRaw); err == nil {
			item.Date = t
		}
		item.Fallback = fallbackInt == 1
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SessionStore) CountScripts(ctx context.Context) (int, error) {
	var n int
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM script_history`)
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *SessionStore) GetSummary(ctx context.Context) (Summary, error) {
	var out Summary
	row := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) as runs,
			COALESCE(MAX(score),0) as best,
			COALESCE(CAST(AVG(score) AS INTEGER),0) as avg
		FROM script_history
	`)
	if err := row.Scan(&out.Runs, &out.BestScore, &out.AvgScore); err != nil {
		return Summary{}, err
	}
	return out, nil
}

func (s *SessionStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

const timeLayout = "2006-01-02T15:04:05Z07:00"

var _ Store = (*SessionStore)(nil)
