package optimistic

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/CrestNiraj12/clipflow/domain"
)

func feed() Items {
	return Items{
		{ID: "a", AuthorID: "u1", LikeCount: 5},
		{ID: "b", AuthorID: "u2", LikeCount: 0, LikedByViewer: true},
		{ID: "c", AuthorID: "u1", LikeCount: 2},
	}
}

func TestLikeApplyAndRollback(t *testing.T) {
	items := feed()

	p := Like.Apply(items, "a", domain.LikeState.Toggled)
	require.True(t, p.Applied())
	require.Equal(t, 6, items[0].LikeCount)
	require.True(t, items[0].LikedByViewer)

	require.True(t, Like.Rollback(items, p))
	require.Equal(t, 5, items[0].LikeCount)
	require.False(t, items[0].LikedByViewer)
}

func TestLikeConfirmTakesServerAnswer(t *testing.T) {
	items := feed()
	p := Like.Apply(items, "a", domain.LikeState.Toggled)

	// Someone else liked it meanwhile.
	Like.Confirm(items, p, ConfirmLike(domain.LikeState{Liked: true, Count: 7}))
	require.True(t, items[0].LikedByViewer)
	require.Equal(t, 7, items[0].LikeCount)

	p = Like.Apply(items, "a", domain.LikeState.Toggled)
	require.False(t, items[0].LikedByViewer)
	Like.Confirm(items, p, ConfirmLike(domain.LikeState{Liked: true, Count: -1}))
	require.True(t, items[0].LikedByViewer, "server says liked regardless of the guess")
	require.Equal(t, 7, items[0].LikeCount)
}

func TestUnlikeClampsAtZero(t *testing.T) {
	items := feed()
	Like.Apply(items, "b", domain.LikeState.Toggled)
	require.Equal(t, 0, items[1].LikeCount)
	require.False(t, items[1].LikedByViewer)
}

func TestRemovedItemIsNoOp(t *testing.T) {
	items := feed()
	p := Like.Apply(items, "a", domain.LikeState.Toggled)

	shorter := Items{items[1], items[2]}
	require.False(t, Like.Rollback(shorter, p))
	require.False(t, Like.Confirm(shorter, p, ConfirmLike(domain.LikeState{Liked: true, Count: 6})))
	require.Equal(t, []domain.FeedItem(feed()[1:]), []domain.FeedItem(shorter))

	missing := Like.Apply(items, "zzz", domain.LikeState.Toggled)
	require.False(t, missing.Applied())
	require.False(t, Like.Rollback(items, missing))
}

func TestFollowWritesEveryItemByAuthor(t *testing.T) {
	items := feed()
	by := ByAuthor(items)

	p := Follow.Apply(by, "u1", func(v bool) bool { return !v })
	require.True(t, items[0].FollowedByViewer)
	require.True(t, items[2].FollowedByViewer)
	require.False(t, items[1].FollowedByViewer)

	Follow.Rollback(by, p)
	require.False(t, items[0].FollowedByViewer)
	require.False(t, items[2].FollowedByViewer)
}

func TestFollowersPairedAdjustment(t *testing.T) {
	cards := Profiles{"u1": {ID: "u1", Followers: 10}}

	p := Followers.Apply(cards, "u1", FollowDelta(false))
	require.Equal(t, 11, cards["u1"].Followers)

	// Server reports we were already following: no change from the original.
	Followers.Confirm(cards, p, ConfirmFollowers(false, false))
	require.Equal(t, 10, cards["u1"].Followers)

	p = Followers.Apply(cards, "u1", FollowDelta(false))
	Followers.Rollback(cards, p)
	require.Equal(t, 10, cards["u1"].Followers)

	require.False(t, Followers.Apply(cards, "u9", FollowDelta(true)).Applied())
}
