// Package comments merges an initial comment snapshot with a realtime stream of
// inserted comment ids, without duplicates.
package comments

import (
	"github.com/CrestNiraj12/clipflow/domain"
)

// Session identifies one opening of the comment view. Results tagged with an older
// session are ignored.
type Session struct {
	ItemID string
	ID     uint64
}

// Stream holds the ordered comment list and SeenCommentIds for the open item.
// It is driven from the UI loop only.
type Stream struct {
	sess    Session
	open    bool
	seen    map[string]struct{}
	items   []domain.CommentRecord
	loading bool
	err     error
	cancel  func()
}

// New returns a closed stream.
func New() *Stream {
	return &Stream{seen: make(map[string]struct{})}
}

// Open starts a session for itemID, closing any previous one. SeenCommentIds is reset.
func (s *Stream) Open(itemID string) Session {
	s.Close()
	s.sess = Session{ItemID: itemID, ID: s.sess.ID + 1}
	s.open = true
	s.loading = true
	return s.sess
}

// Bind attaches the unsubscribe func of the realtime subscription for sess. If sess is
// no longer current the subscription is torn down immediately.
func (s *Stream) Bind(sess Session, cancel func()) {
	if cancel == nil {
		return
	}
	if !s.current(sess) {
		cancel()
		return
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = cancel
}

// Current returns the open session.
func (s *Stream) Current() (Session, bool) {
	return s.sess, s.open
}

// ApplySnapshot installs the fetched list. Records that arrived in realtime before the
// snapshot and are not part of it stay, appended after the snapshot; no id appears twice.
func (s *Stream) ApplySnapshot(sess Session, list []domain.CommentRecord) bool {
	if !s.current(sess) {
		return false
	}
	merged := make([]domain.CommentRecord, 0, len(list)+len(s.items))
	inSnapshot := make(map[string]struct{}, len(list))
	for _, c := range list {
		if _, dup := inSnapshot[c.ID]; dup {
			continue
		}
		inSnapshot[c.ID] = struct{}{}
		s.seen[c.ID] = struct{}{}
		merged = append(merged, c)
	}
	for _, c := range s.items {
		if _, ok := inSnapshot[c.ID]; !ok {
			merged = append(merged, c)
		}
	}
	s.items = merged
	s.loading = false
	s.err = nil
	return true
}

// SnapshotFailed records a fetch error for the retry prompt.
func (s *Stream) SnapshotFailed(sess Session, err error) {
	if !s.current(sess) {
		return
	}
	s.loading = false
	s.err = err
}

// Retry marks the session as loading again after a failed snapshot.
func (s *Stream) Retry(sess Session) bool {
	if !s.current(sess) {
		return false
	}
	s.loading = true
	s.err = nil
	return true
}

// Notify handles a realtime insert. It returns true when the caller should fetch the
// record; the id is marked seen either way, so duplicate deliveries are ignored.
func (s *Stream) Notify(sess Session, commentID string) bool {
	if !s.current(sess) || commentID == "" {
		return false
	}
	if _, ok := s.seen[commentID]; ok {
		return false
	}
	s.seen[commentID] = struct{}{}
	return true
}

// Resolve appends a record fetched for a notification and returns the comment count
// delta. A failed fetch returns 0 and leaves the list unchanged.
func (s *Stream) Resolve(sess Session, rec domain.CommentRecord, err error) int {
	if err != nil || !s.current(sess) || rec.ID == "" {
		return 0
	}
	if s.has(rec.ID) {
		return 0
	}
	s.items = append(s.items, rec)
	return 1
}

// AddLocal appends a self-authored comment before the server confirms it. Its id is
// marked seen so the realtime echo is ignored.
func (s *Stream) AddLocal(sess Session, rec domain.CommentRecord) int {
	if !s.current(sess) || s.has(rec.ID) {
		return 0
	}
	s.seen[rec.ID] = struct{}{}
	s.items = append(s.items, rec)
	return 1
}

// Replace swaps a local record for the stored one once it is confirmed.
func (s *Stream) Replace(sess Session, rec domain.CommentRecord) {
	if !s.current(sess) {
		return
	}
	for i := range s.items {
		if s.items[i].ID == rec.ID {
			s.items[i] = rec
			return
		}
	}
}

// RemoveLocal rolls back AddLocal and returns the count delta.
func (s *Stream) RemoveLocal(sess Session, commentID string) int {
	if !s.current(sess) {
		return 0
	}
	for i := range s.items {
		if s.items[i].ID == commentID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			delete(s.seen, commentID)
			return -1
		}
	}
	return 0
}

// Items returns the ordered list. Callers must not modify it.
func (s *Stream) Items() []domain.CommentRecord { return s.items }

// Loading reports whether the snapshot is still in flight.
func (s *Stream) Loading() bool { return s.open && s.loading }

// Err returns the last snapshot error.
func (s *Stream) Err() error { return s.err }

// Close tears down the subscription and clears SeenCommentIds.
func (s *Stream) Close() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.open = false
	s.loading = false
	s.err = nil
	s.items = nil
	clear(s.seen)
}

func (s *Stream) current(sess Session) bool {
	return s.open && sess == s.sess
}

func (s *Stream) has(id string) bool {
	for _, c := range s.items {
		if c.ID == id {
			return true
		}
	}
	return false
}
