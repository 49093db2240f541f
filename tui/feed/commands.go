package feed

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/clipflow/domain"
	"github.com/CrestNiraj12/clipflow/engine/comments"
	"github.com/CrestNiraj12/clipflow/engine/optimistic"
	"github.com/CrestNiraj12/clipflow/engine/playback"
	"github.com/CrestNiraj12/clipflow/infra/config"
)

const (
	fetchTimeout    = 15 * time.Second
	mutationTimeout = 10 * time.Second
	openTimeout     = 20 * time.Second
)

func (m Model) currentQueryKey() string {
	if m.deps.PostID != "" {
		return "post:" + m.deps.PostID
	}
	return m.query.Key()
}

func (m Model) fetchItems(reqSeq int) tea.Cmd {
	svc := m.deps.Feed
	q := m.query
	postID := m.deps.PostID
	queryKey := m.currentQueryKey()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		if postID != "" {
			it, err := svc.GetItem(ctx, postID, q.ViewerID)
			if errors.Is(err, domain.ErrNotFound) {
				return ItemsLoadedMsg{QueryKey: queryKey, ReqSeq: reqSeq}
			}
			if err != nil {
				return ItemsErrorMsg{Err: domain.FetchError("get item", err), QueryKey: queryKey, ReqSeq: reqSeq}
			}
			return ItemsLoadedMsg{Items: []domain.FeedItem{it}, QueryKey: queryKey, ReqSeq: reqSeq}
		}

		// Anonymous viewers follow nobody.
		if q.Mode == domain.ModeFollowing && q.ViewerID == "" {
			return ItemsLoadedMsg{QueryKey: queryKey, ReqSeq: reqSeq}
		}
		items, err := svc.ListFeedItems(ctx, q)
		if err != nil {
			return ItemsErrorMsg{Err: domain.FetchError("list feed", err), QueryKey: queryKey, ReqSeq: reqSeq}
		}
		return ItemsLoadedMsg{Items: items, QueryKey: queryKey, ReqSeq: reqSeq}
	}
}

func (m Model) toggleLike(p optimistic.Pending[domain.LikeState]) tea.Cmd {
	svc := m.deps.Interaction
	viewer := m.deps.ViewerID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()
		state, err := svc.ToggleLike(ctx, viewer, p.Key)
		if err != nil {
			return LikeResultMsg{Pending: p, Err: domain.MutationError("toggle like", err)}
		}
		return LikeResultMsg{Pending: p, State: state}
	}
}

func (m Model) toggleFollow(res FollowResultMsg) tea.Cmd {
	svc := m.deps.Interaction
	viewer := m.deps.ViewerID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()
		following, err := svc.ToggleFollow(ctx, viewer, res.AuthorID)
		if err != nil {
			res.Err = domain.MutationError("toggle follow", err)
			return res
		}
		res.Following = following
		return res
	}
}

func (m Model) fetchProfile(authorID string) tea.Cmd {
	svc := m.deps.Interaction
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		p, err := svc.Profile(ctx, authorID)
		if err != nil {
			return ProfileLoadedMsg{AuthorID: authorID, Err: domain.FetchError("author profile", err)}
		}
		return ProfileLoadedMsg{AuthorID: authorID, Profile: p}
	}
}

func (m Model) markNotInterested(itemID string) tea.Cmd {
	svc := m.deps.Moderation
	viewer := m.deps.ViewerID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()
		err := svc.NotInterested(ctx, viewer, itemID)
		if err != nil {
			err = domain.MutationError("not interested", err)
		}
		return ModerationResultMsg{Kind: moderationNotInterested, ItemID: itemID, Err: err}
	}
}

func (m Model) blockAuthor(authorID, username string) tea.Cmd {
	svc := m.deps.Moderation
	viewer := m.deps.ViewerID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()
		err := svc.BlockUser(ctx, viewer, authorID)
		if err != nil {
			err = domain.MutationError("block user", err)
		}
		return ModerationResultMsg{Kind: moderationBlock, AuthorID: authorID, Username: username, Err: err}
	}
}

func (m Model) fetchComments(sess comments.Session) tea.Cmd {
	svc := m.deps.Comments
	viewer := m.deps.ViewerID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		list, err := svc.ListComments(ctx, sess.ItemID, viewer, commentLimit)
		if err != nil {
			return commentsLoadedMsg{Session: sess, Err: domain.FetchError("list comments", err)}
		}
		return commentsLoadedMsg{Session: sess, Comments: list}
	}
}

// subscribeComments opens the realtime insert stream for sess. Ids are pushed into ch
// from the subscriber's goroutine and picked up by waitCommentInsert.
func (m Model) subscribeComments(sess comments.Session) tea.Cmd {
	sub := m.deps.Inserts
	if sub == nil {
		return nil
	}
	ch := m.insertCh
	logger := m.log
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		stop, err := sub.SubscribeInserts(ctx, sess.ItemID, func(id string) {
			select {
			case ch <- commentInsertedMsg{Session: sess, CommentID: id}:
			default:
				logger.Warnw("msg", "realtime insert dropped", "item", sess.ItemID, "comment", id)
			}
		})
		return commentsSubscribedMsg{Session: sess, Cancel: stop, Err: err}
	}
}

func (m Model) fetchComment(sess comments.Session, id string) tea.Cmd {
	svc := m.deps.Comments
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		rec, err := svc.GetComment(ctx, id)
		return commentFetchedMsg{Session: sess, Comment: rec, Err: err}
	}
}

func (m Model) postComment(sess comments.Session, c domain.NewComment) tea.Cmd {
	svc := m.deps.Comments
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()
		rec, err := svc.CreateComment(ctx, c)
		if err != nil {
			return commentPostedMsg{Session: sess, LocalID: c.ID, Err: domain.MutationError("post comment", err)}
		}
		return commentPostedMsg{Session: sess, LocalID: c.ID, Comment: rec}
	}
}

// openSurface opens the embedded surface for a mount request. The surface's loaded
// signal arrives on another goroutine and is forwarded into ch.
func (m Model) openSurface(req playback.MountRequest) tea.Cmd {
	opener := m.deps.Opener
	if opener == nil {
		return nil
	}
	ch := m.loadedCh
	itemID, seq := req.Target.ItemID, req.Seq
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
		defer cancel()
		s, err := opener.Open(ctx, req.Target, func() {
			select {
			case ch <- surfaceLoadedMsg{ItemID: itemID, Seq: seq}:
			default:
			}
		})
		return surfaceOpenedMsg{ItemID: itemID, Seq: seq, Surface: s, Err: err}
	}
}

func waitSurfaceLoaded(ch <-chan surfaceLoadedMsg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

func waitCommentInsert(ch <-chan commentInsertedMsg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// after schedules delayed messages; tests swap it for an immediate version.
var after = tea.Tick

func burstTick(t playback.Timer) tea.Cmd {
	return after(t.Delay, func(time.Time) tea.Msg {
		return burstTickMsg{Fire: t.Fire}
	})
}

func (m Model) savePrefs() tea.Cmd {
	path := m.deps.StatePath
	st := m.uiState
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		return PrefsSavedMsg{Err: config.SaveUIState(path, st)}
	}
}
