// SPDX-License-Identifier: MIT

// Package history records which channels were watched, backed by SQLite.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure Go driver

	"github.com/canalview/canalview/internal/metrics"
)

// Entry is one watch event.
type Entry struct {
	ChannelID   string    `json:"channel_id"`
	ChannelName string    `json:"channel_name"`
	StreamIndex int       `json:"stream_index"`
	WatchedAt   time.Time `json:"watched_at"`
}

// Store persists watch history.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS watch_history (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	channel_id    TEXT NOT NULL,
	channel_name  TEXT NOT NULL,
	stream_index  INTEGER NOT NULL,
	watched_at    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_watch_history_channel ON watch_history(channel_id);
CREATE INDEX IF NOT EXISTS idx_watch_history_time ON watch_history(watched_at DESC);
`

// Open opens (and if needed creates) the history database. WAL mode and a
// busy timeout are set in the DSN so every pooled connection carries them.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("history: open failed: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: ping failed: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Record inserts one watch event.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.WatchedAt.IsZero() {
		e.WatchedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO watch_history (channel_id, channel_name, stream_index, watched_at) VALUES (?, ?, ?, ?)`,
		e.ChannelID, e.ChannelName, e.StreamIndex, e.WatchedAt.Unix(),
	)
	if err != nil {
		metrics.IncHistoryWrite("failure")
		return fmt.Errorf("history: insert: %w", err)
	}
	metrics.IncHistoryWrite("success")
	return nil
}

// Recent returns the latest watch events, one per channel, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT channel_id, channel_name, stream_index, MAX(watched_at) AS last_watched
		FROM watch_history
		GROUP BY channel_id
		ORDER BY last_watched DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query recent: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var out []Entry
	for rows.Next() {
		var e Entry
		var watchedAt int64
		if err := rows.Scan(&e.ChannelID, &e.ChannelName, &e.StreamIndex, &watchedAt); err != nil {
			return nil, fmt.Errorf("history: scan row: %w", err)
		}
		e.WatchedAt = time.Unix(watchedAt, 0)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterate rows: %w", err)
	}
	return out, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
