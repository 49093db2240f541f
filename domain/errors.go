package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized indicates the action needs a signed-in viewer.
	ErrUnauthorized = errors.New("sign in required")

	// ErrEmptyComment indicates the user submitted a blank comment.
	ErrEmptyComment = errors.New("write something first")

	// ErrInvalidVideoLink indicates the composer link is not a YouTube video.
	ErrInvalidVideoLink = errors.New("not a YouTube Shorts or video link")

	// ErrNotFound indicates the requested record does not exist or is hidden for the viewer.
	ErrNotFound = errors.New("not found")

	// ErrSurfaceGone indicates the embedded surface was torn down.
	ErrSurfaceGone = errors.New("surface is not mounted")
)

// Kind classifies errors by the component that produced them.
type Kind int

const (
	KindUnknown Kind = iota
	KindFetch
	KindMutation
	KindChannelSendSkipped
	KindRealtime
	KindUnauthorized
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindFetch:
		return "fetch"
	case KindMutation:
		return "mutation"
	case KindChannelSendSkipped:
		return "send-skipped"
	case KindRealtime:
		return "realtime"
	case KindUnauthorized:
		return "unauthorized"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Error carries a Kind and the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// FetchError wraps a failed list/detail/comment load.
func FetchError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindFetch, Op: op, Err: err}
}

// MutationError wraps a failed like/follow/comment/moderation call.
func MutationError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrUnauthorized) {
		return &Error{Kind: KindUnauthorized, Op: op, Err: err}
	}
	return &Error{Kind: KindMutation, Op: op, Err: err}
}

// SendSkipped reports a playback command that was not delivered.
func SendSkipped(reason error) error {
	return &Error{Kind: KindChannelSendSkipped, Op: "send", Err: reason}
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// HumanError renders err for the status bar.
func HumanError(err error) string {
	if err == nil {
		return "Unknown error."
	}
	var e *Error
	if errors.As(err, &e) && e.Err != nil {
		return e.Err.Error()
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "Unexpected error."
}
