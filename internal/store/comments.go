package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"geotube/internal/engine"
)

// ErrNotFound is returned when a comment does not exist or belongs to
// another user.
var ErrNotFound = errors.New("comment not found")

// Comment is a user comment attached to a video.
type Comment struct {
	ID        string `json:"id"`
	VideoID   string `json:"video_id"`
	UserID    string `json:"user_id"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

const commentsSchema = `CREATE TABLE IF NOT EXISTS video_comments (
	id         UUID PRIMARY KEY,
	video_id   TEXT NOT NULL,
	user_id    TEXT NOT NULL,
	text       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_video_comments_video ON video_comments (video_id, created_at DESC)`

// Comments is the Postgres-backed comment store.
type Comments struct {
	pool *pgxpool.Pool
}

// ConnectComments creates a pgx pool and ensures the schema exists.
func ConnectComments(ctx context.Context, databaseURL string) (*Comments, error) {
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, commentsSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("init comments schema: %w", err)
	}

	slog.Info("comments postgres connected", slog.String("addr", config.ConnConfig.Host))
	return &Comments{pool: pool}, nil
}

// Close releases the connection pool.
func (c *Comments) Close() {
	c.pool.Close()
}

// Add stores a new comment on a video and returns it with the
// generated id and timestamp.
func (c *Comments) Add(ctx context.Context, videoID, userID, text string) (*Comment, error) {
	text = strings.TrimSpace(text)
	if videoID == "" || userID == "" {
		return nil, errors.New("comments: video_id and user_id are required")
	}
	if text == "" {
		return nil, errors.New("comments: text is required")
	}
	if len(text) > 2000 {
		return nil, errors.New("comments: text exceeds 2000 characters")
	}

	id := uuid.NewString()
	var createdAt string
	err := c.pool.QueryRow(ctx,
		`INSERT INTO video_comments (id, video_id, user_id, text)
		 VALUES ($1, $2, $3, $4) RETURNING created_at::text`,
		id, videoID, userID, text,
	).Scan(&createdAt)
	if err != nil {
		return nil, fmt.Errorf("comments: insert: %w", err)
	}

	engine.IncrCommentWrites()
	return &Comment{ID: id, VideoID: videoID, UserID: userID, Text: text, CreatedAt: createdAt}, nil
}

// List returns comments for a video, newest first.
func (c *Comments) List(ctx context.Context, videoID string, limit int) ([]Comment, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	rows, err := c.pool.Query(ctx,
		`SELECT id, video_id, user_id, text, created_at::text
		 FROM video_comments WHERE video_id = $1 ORDER BY created_at DESC LIMIT $2`,
		videoID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("comments: query: %w", err)
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var cm Comment
		if err := rows.Scan(&cm.ID, &cm.VideoID, &cm.UserID, &cm.Text, &cm.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, cm)
	}

	if comments == nil {
		comments = []Comment{}
	}
	return comments, rows.Err()
}

// Delete removes a comment. Only the author can delete their own
// comment; anything else reports ErrNotFound.
func (c *Comments) Delete(ctx context.Context, commentID, userID string) error {
	if _, err := uuid.Parse(commentID); err != nil {
		return ErrNotFound
	}

	tag, err := c.pool.Exec(ctx,
		`DELETE FROM video_comments WHERE id = $1 AND user_id = $2`,
		commentID, userID,
	)
	if err != nil {
		return fmt.Errorf("comments: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
