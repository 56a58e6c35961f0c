// Package store holds the persistence layer: a local SQLite watch
// history and a Postgres-backed comment store.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"geotube/internal/engine"
)

// WatchEntry is a single entry in a user's watch history.
type WatchEntry struct {
	ID        int64   `json:"id"`
	UserID    string  `json:"user_id"`
	VideoID   string  `json:"video_id"`
	Title     string  `json:"title"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Place     string  `json:"place,omitempty"`
	WatchedAt string  `json:"watched_at"`
}

// History is the SQLite-backed watch history store.
type History struct {
	db *sql.DB
}

// OpenHistory opens (or creates) the history database at path. Parent
// directories are created as needed.
func OpenHistory(path string) (*History, error) {
	if path == "" {
		return nil, errors.New("history: path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("history: mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer

	if err := initHistorySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: init schema: %w", err)
	}
	return &History{db: db}, nil
}

func initHistorySchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS watch_history (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id    TEXT NOT NULL,
		video_id   TEXT NOT NULL,
		title      TEXT NOT NULL,
		lat        REAL NOT NULL,
		lng        REAL NOT NULL,
		place      TEXT,
		watched_at TEXT NOT NULL
	)`)
	return err
}

// Close releases the underlying database handle.
func (h *History) Close() error {
	return h.db.Close()
}

// Add records that a user watched a video at a location.
func (h *History) Add(_ context.Context, e WatchEntry) (int64, error) {
	if e.UserID == "" || e.VideoID == "" {
		return 0, errors.New("history: user_id and video_id are required")
	}

	now := time.Now().UTC().Format(time.RFC3339)
	res, err := h.db.Exec(
		`INSERT INTO watch_history (user_id, video_id, title, lat, lng, place, watched_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.UserID, e.VideoID, e.Title, e.Lat, e.Lng, e.Place, now,
	)
	if err != nil {
		return 0, fmt.Errorf("history: insert: %w", err)
	}

	engine.IncrHistoryWrites()
	id, _ := res.LastInsertId()
	return id, nil
}

// Recent returns the newest entries for a user, most recent first.
func (h *History) Recent(_ context.Context, userID string, limit int) ([]WatchEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	rows, err := h.db.Query(
		`SELECT id, user_id, video_id, title, lat, lng, place, watched_at
		 FROM watch_history WHERE user_id = ? ORDER BY id DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("history: query: %w", err)
	}
	defer rows.Close()

	var entries []WatchEntry
	for rows.Next() {
		var e WatchEntry
		var place sql.NullString
		if err := rows.Scan(&e.ID, &e.UserID, &e.VideoID, &e.Title,
			&e.Lat, &e.Lng, &place, &e.WatchedAt); err != nil {
			continue
		}
		e.Place = place.String
		entries = append(entries, e)
	}

	if entries == nil {
		entries = []WatchEntry{}
	}
	return entries, rows.Err()
}

// Clear deletes all history entries for a user and reports how many
// rows were removed.
func (h *History) Clear(_ context.Context, userID string) (int64, error) {
	res, err := h.db.Exec(`DELETE FROM watch_history WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("history: clear: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
