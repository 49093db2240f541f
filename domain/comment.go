package domain

import "time"

// CommentRecord is one comment on a feed item.
type CommentRecord struct {
	ID         string
	ItemID     string
	AuthorID   string
	AuthorName string
	Text       string
	CreatedAt  time.Time
}

// NewComment is a comment about to be created. The ID is assigned by the client so the
// realtime echo of a self-authored comment can be recognized.
type NewComment struct {
	ID       string
	ItemID   string
	AuthorID string
	Text     string
}
