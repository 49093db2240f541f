package app

import (
	"context"

	"github.com/CrestNiraj12/clipflow/domain"
)

// NewPost is a clip about to be published.
type NewPost struct {
	AuthorID    string
	OriginalURL string
	VideoID     string
	EmbedURL    string
	Caption     string
	Hashtags    []string
}

// FeedService lists and publishes feed items.
type FeedService interface {
	// ListFeedItems returns items for the query, newest first, with viewer flags filled in.
	// Items from blocked authors and items marked not-interested are excluded.
	ListFeedItems(ctx context.Context, q domain.FeedQuery) ([]domain.FeedItem, error)

	// GetItem returns one item, or domain.ErrNotFound.
	GetItem(ctx context.Context, id, viewerID string) (domain.FeedItem, error)

	// CreatePost publishes a clip and links its hashtags.
	CreatePost(ctx context.Context, p NewPost) (domain.FeedItem, error)
}
