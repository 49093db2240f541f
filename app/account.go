package app

import (
	"context"

	"github.com/CrestNiraj12/clipflow/domain"
)

// InteractionService toggles the viewer's like and follow relations.
// Each toggle returns the authoritative state after the write.
type InteractionService interface {
	// ToggleLike flips the viewer's like on an item and returns the new flag and count.
	ToggleLike(ctx context.Context, viewerID, itemID string) (domain.LikeState, error)

	// ToggleFollow flips the viewer's follow on an author and returns whether the viewer now follows.
	ToggleFollow(ctx context.Context, viewerID, authorID string) (bool, error)

	// Profile returns an author's card with follower counts.
	Profile(ctx context.Context, authorID string) (domain.Profile, error)
}

// ModerationService hides content from the viewer.
type ModerationService interface {
	// BlockUser hides every item and comment by authorID from the viewer.
	BlockUser(ctx context.Context, viewerID, authorID string) error

	// NotInterested hides a single item from the viewer's feeds.
	NotInterested(ctx context.Context, viewerID, itemID string) error
}
