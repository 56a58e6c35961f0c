package store

import (
	"context"
	"testing"
)

// Validation paths that never reach the database.

func TestCommentsAddValidation(t *testing.T) {
	c := &Comments{}
	ctx := context.Background()

	cases := []struct {
		name    string
		videoID string
		userID  string
		text    string
	}{
		{"missing video", "", "u1", "hola"},
		{"missing user", "vid1", "", "hola"},
		{"empty text", "vid1", "u1", ""},
		{"whitespace text", "vid1", "u1", "   "},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := c.Add(ctx, tc.videoID, tc.userID, tc.text); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestCommentsAddRejectsOversizeText(t *testing.T) {
	c := &Comments{}
	long := make([]byte, 2001)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := c.Add(context.Background(), "vid1", "u1", string(long)); err == nil {
		t.Error("expected error for text over 2000 characters")
	}
}

func TestCommentsDeleteRejectsBadID(t *testing.T) {
	c := &Comments{}
	if err := c.Delete(context.Background(), "not-a-uuid", "u1"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound for malformed id, got %v", err)
	}
}
