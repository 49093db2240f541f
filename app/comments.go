package app

import (
	"context"

	"github.com/CrestNiraj12/clipflow/domain"
)

// CommentService reads and writes comments on feed items.
type CommentService interface {
	// ListComments returns an item's comments, oldest first.
	ListComments(ctx context.Context, itemID, viewerID string, limit int) ([]domain.CommentRecord, error)

	// GetComment returns one comment, or domain.ErrNotFound.
	GetComment(ctx context.Context, id string) (domain.CommentRecord, error)

	// CreateComment stores a comment. The text is trimmed; blank text fails with domain.ErrEmptyComment.
	CreateComment(ctx context.Context, c domain.NewComment) (domain.CommentRecord, error)
}

// InsertSubscriber delivers ids of comments inserted on an item.
// onInsert is called from a background goroutine until the returned cancel func runs.
type InsertSubscriber interface {
	SubscribeInserts(ctx context.Context, itemID string, onInsert func(commentID string)) (cancel func(), err error)
}
