package feed

import (
	"github.com/CrestNiraj12/clipflow/domain"
	"github.com/CrestNiraj12/clipflow/engine/comments"
	"github.com/CrestNiraj12/clipflow/engine/optimistic"
	"github.com/CrestNiraj12/clipflow/engine/playback"
)

const (
	defaultLimit    = 40
	commentLimit    = 200
	volumeStep      = 10
	minPageHeight   = 8
	thumbnailWidth  = 24
	thumbnailHeight = 7
)

// ItemsLoadedMsg is sent when a feed list or single post fetch completes.
type ItemsLoadedMsg struct {
	Items    []domain.FeedItem
	QueryKey string
	ReqSeq   int
}

// ItemsErrorMsg is sent when a feed fetch fails.
type ItemsErrorMsg struct {
	Err      error
	QueryKey string
	ReqSeq   int
}

// ReloadMsg asks the feed to refetch its current list and scroll to the top.
type ReloadMsg struct{}

// ComposeRequestMsg asks the root model to open the composer.
type ComposeRequestMsg struct{}

// PostCreatedMsg is sent by the composer after a clip was published.
type PostCreatedMsg struct {
	Item domain.FeedItem
}

// SwitchModeMsg changes the feed list.
type SwitchModeMsg struct {
	Mode domain.FeedMode
	Tag  string
}

// PrefsSavedMsg reports the outcome of persisting UI state.
type PrefsSavedMsg struct {
	Err error
}

// LikeResultMsg carries the authoritative like state for a pending toggle.
type LikeResultMsg struct {
	Pending optimistic.Pending[domain.LikeState]
	State   domain.LikeState
	Err     error
}

// FollowResultMsg carries the authoritative follow flag for a pending toggle.
type FollowResultMsg struct {
	AuthorID  string
	Before    bool
	Flag      optimistic.Pending[bool]
	Followers optimistic.Pending[int]
	Following bool
	Err       error
}

// ProfileLoadedMsg is sent when the author card fetch completes.
type ProfileLoadedMsg struct {
	AuthorID string
	Profile  domain.Profile
	Err      error
}

type moderationKind int

const (
	moderationNotInterested moderationKind = iota
	moderationBlock
)

// ModerationResultMsg is sent after a not-interested or block call.
type ModerationResultMsg struct {
	Kind     moderationKind
	ItemID   string
	AuthorID string
	Username string
	Err      error
}

type commentsLoadedMsg struct {
	Session  comments.Session
	Comments []domain.CommentRecord
	Err      error
}

type commentsSubscribedMsg struct {
	Session comments.Session
	Cancel  func()
	Err     error
}

type commentInsertedMsg struct {
	Session   comments.Session
	CommentID string
}

type commentFetchedMsg struct {
	Session comments.Session
	Comment domain.CommentRecord
	Err     error
}

type commentPostedMsg struct {
	Session comments.Session
	LocalID string
	Comment domain.CommentRecord
	Err     error
}

type burstTickMsg struct {
	Fire playback.Fire
}

type surfaceOpenedMsg struct {
	ItemID  string
	Seq     uint64
	Surface playback.Surface
	Err     error
}

type surfaceLoadedMsg struct {
	ItemID string
	Seq    uint64
}

// remountMsg retries mounts that failed to open.
type remountMsg struct{}

type scrollFrameMsg struct {
	Seq int
}

type snapMsg struct {
	Seq int
}

// ThumbnailLoadedMsg carries a rendered placeholder for a video id.
type ThumbnailLoadedMsg struct {
	VideoID string
	Preview string
	Err     error
}

type overlay int

const (
	overlayNone overlay = iota
	overlayComments
	overlayAuthor
	overlayTag
	overlayHints
	overlayConfirmBlock
)

var feedModes = []domain.FeedMode{domain.ModeNewest, domain.ModeFollowing, domain.ModeTag}
