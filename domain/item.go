package domain

import "time"

// FeedItem is one clip in the vertical feed.
type FeedItem struct {
	ID               string
	VideoRef         string // YouTube video id
	EmbedURL         string // Stored embed URL, without runtime params
	Caption          string
	AuthorID         string
	AuthorName       string
	LikeCount        int
	CommentCount     int
	LikedByViewer    bool
	FollowedByViewer bool
	CreatedAt        time.Time
}

// LikeState is the like flag and its paired counter.
type LikeState struct {
	Liked bool
	Count int
}

// Like returns the item's like pair.
func (it FeedItem) Like() LikeState {
	return LikeState{Liked: it.LikedByViewer, Count: it.LikeCount}
}

// WithLike returns a copy of it with the like pair replaced.
func (it FeedItem) WithLike(s LikeState) FeedItem {
	it.LikedByViewer = s.Liked
	it.LikeCount = max(0, s.Count)
	return it
}

// Toggled flips the like flag and adjusts the counter by one, clamped at zero.
func (s LikeState) Toggled() LikeState {
	if s.Liked {
		return LikeState{Liked: false, Count: max(0, s.Count-1)}
	}
	return LikeState{Liked: true, Count: s.Count + 1}
}

// Profile is the author card shown next to the feed.
type Profile struct {
	ID          string
	Username    string
	DisplayName string
	Bio         string
	Followers   int
	Following   int
}

// FeedMode selects which list the feed shows.
type FeedMode string

const (
	ModeNewest    FeedMode = "newest"
	ModeFollowing FeedMode = "following"
	ModeTag       FeedMode = "tag"
)

// ParseFeedMode maps persisted or user-provided names to a mode. Unknown names fall back to newest.
func ParseFeedMode(s string) FeedMode {
	switch FeedMode(s) {
	case ModeFollowing:
		return ModeFollowing
	case ModeTag:
		return ModeTag
	default:
		return ModeNewest
	}
}

// FeedQuery describes one feed list request.
type FeedQuery struct {
	Mode     FeedMode
	Tag      string
	ViewerID string // empty for anonymous viewers
	Limit    int
}

// Key identifies the list a query produces. Two queries with the same key yield the same item sequence identity.
func (q FeedQuery) Key() string {
	if q.Mode == ModeTag {
		return string(q.Mode) + ":" + q.Tag
	}
	return string(q.Mode)
}
