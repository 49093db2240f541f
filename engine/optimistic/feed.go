package optimistic

import "github.com/CrestNiraj12/clipflow/domain"

// Items is a feed sequence addressed by item id.
type Items []domain.FeedItem

func (s Items) Lookup(id string) (domain.FeedItem, bool) {
	for _, it := range s {
		if it.ID == id {
			return it, true
		}
	}
	return domain.FeedItem{}, false
}

func (s Items) Store(id string, v domain.FeedItem) bool {
	for i := range s {
		if s[i].ID == id {
			s[i] = v
			return true
		}
	}
	return false
}

// ByAuthor addresses a feed sequence by author id. Lookup returns the first item by the
// author; Store writes the follow flag to every item by that author.
type ByAuthor []domain.FeedItem

func (s ByAuthor) Lookup(authorID string) (domain.FeedItem, bool) {
	for _, it := range s {
		if it.AuthorID == authorID {
			return it, true
		}
	}
	return domain.FeedItem{}, false
}

func (s ByAuthor) Store(authorID string, v domain.FeedItem) bool {
	found := false
	for i := range s {
		if s[i].AuthorID == authorID {
			s[i].FollowedByViewer = v.FollowedByViewer
			found = true
		}
	}
	return found
}

// Profiles holds author cards by author id.
type Profiles map[string]domain.Profile

func (p Profiles) Lookup(id string) (domain.Profile, bool) {
	v, ok := p[id]
	return v, ok
}

func (p Profiles) Store(id string, v domain.Profile) bool {
	if _, ok := p[id]; !ok {
		return false
	}
	p[id] = v
	return true
}

// Like toggles the viewer's like and the paired count.
var Like = New(
	func(it domain.FeedItem) domain.LikeState { return it.Like() },
	func(it domain.FeedItem, s domain.LikeState) domain.FeedItem { return it.WithLike(s) },
)

// Follow toggles the viewer's follow flag on an author's items.
var Follow = New(
	func(it domain.FeedItem) bool { return it.FollowedByViewer },
	func(it domain.FeedItem, v bool) domain.FeedItem { it.FollowedByViewer = v; return it },
)

// Followers adjusts an author card's follower count.
var Followers = New(
	func(p domain.Profile) int { return p.Followers },
	func(p domain.Profile, n int) domain.Profile { p.Followers = max(0, n); return p },
)

// ConfirmLike reconciles a like toggle with the server's answer. A known count wins.
// Without one, the flag decides: agreeing with the guess keeps the optimistic count,
// disagreeing restores the pre-toggle pair so flag and counter stay consistent.
func ConfirmLike(authoritative domain.LikeState) func(Pending[domain.LikeState]) domain.LikeState {
	return func(p Pending[domain.LikeState]) domain.LikeState {
		switch {
		case authoritative.Count >= 0:
			return authoritative
		case authoritative.Liked == p.Optimistic.Liked:
			return p.Optimistic
		default:
			return p.Previous
		}
	}
}

// ConfirmFollow takes the server's follow flag.
func ConfirmFollow(following bool) func(Pending[bool]) bool {
	return func(Pending[bool]) bool { return following }
}

// ConfirmFollowers re-derives the card's follower count from the server's follow flag.
func ConfirmFollowers(before bool, following bool) func(Pending[int]) int {
	return func(p Pending[int]) int {
		switch {
		case before == following:
			return p.Previous
		case following:
			return p.Previous + 1
		default:
			return max(0, p.Previous-1)
		}
	}
}

// FollowDelta is the optimistic follower adjustment for a follow toggle from before.
func FollowDelta(before bool) func(int) int {
	return func(n int) int {
		if before {
			return max(0, n-1)
		}
		return n + 1
	}
}
