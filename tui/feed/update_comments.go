package feed

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/CrestNiraj12/clipflow/domain"
	"github.com/CrestNiraj12/clipflow/infra/auth"
)

// openComments opens the drawer for the active item: a fresh session, a snapshot fetch
// and a realtime subscription.
func (m Model) openComments() (Model, tea.Cmd) {
	it, ok := m.ActiveItem()
	if !ok {
		return m, nil
	}
	if m.overlay == overlayComments {
		m.closeOverlay()
	}
	m.overlay = overlayComments
	m.commentsFor = it.ID
	sess := m.stream.Open(it.ID)
	m.commentInput.Reset()
	cmds := []tea.Cmd{m.fetchComments(sess), m.subscribeComments(sess)}
	if m.deps.ViewerID != "" {
		cmds = append(cmds, m.commentInput.Focus())
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleCommentInputKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.commentInput.Blur()
		return m, nil
	case "enter":
		return m.sendComment()
	}
	var cmd tea.Cmd
	m.commentInput, cmd = m.commentInput.Update(msg)
	return m, cmd
}

// handleCommentDrawerKey handles keys while the drawer is open but the input is not
// focused. Unhandled keys fall through to feed navigation.
func (m Model) handleCommentDrawerKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch {
	case msg.String() == "esc" || key.Matches(msg, m.keys.Comments):
		m.closeOverlay()
		return m, nil, true
	case msg.String() == "i" || msg.String() == "enter":
		if err := auth.RequireViewer(m.deps.ViewerID); err != nil {
			m.setError(err)
			return m, nil, true
		}
		cmd := m.commentInput.Focus()
		return m, cmd, true
	case key.Matches(msg, m.keys.Refresh):
		sess, ok := m.stream.Current()
		if !ok || m.stream.Err() == nil || !m.stream.Retry(sess) {
			return m, nil, true
		}
		return m, m.fetchComments(sess), true
	}
	return m, nil, false
}

func (m Model) sendComment() (Model, tea.Cmd) {
	sess, ok := m.stream.Current()
	if !ok {
		return m, nil
	}
	if err := auth.RequireViewer(m.deps.ViewerID); err != nil {
		m.setError(err)
		return m, nil
	}
	text := strings.TrimSpace(m.commentInput.Value())
	if text == "" {
		m.setError(domain.ErrEmptyComment)
		return m, nil
	}
	local := domain.CommentRecord{
		ID:         uuid.NewString(),
		ItemID:     sess.ItemID,
		AuthorID:   m.deps.ViewerID,
		AuthorName: "you",
		Text:       text,
		CreatedAt:  time.Now(),
	}
	m.adjustCommentCount(sess.ItemID, m.stream.AddLocal(sess, local))
	m.commentInput.Reset()
	return m, m.postComment(sess, domain.NewComment{
		ID:       local.ID,
		ItemID:   sess.ItemID,
		AuthorID: m.deps.ViewerID,
		Text:     text,
	})
}

func (m Model) handleCommentMsg(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case commentsLoadedMsg:
		if msg.Err != nil {
			m.log.Errorw("msg", "comments fetch failed", "item", msg.Session.ItemID, "err", msg.Err)
			m.stream.SnapshotFailed(msg.Session, msg.Err)
			return m, nil
		}
		m.stream.ApplySnapshot(msg.Session, msg.Comments)
		return m, nil

	case commentsSubscribedMsg:
		if msg.Err != nil {
			m.log.Warnw("msg", "realtime subscribe failed", "item", msg.Session.ItemID, "err", msg.Err)
			return m, nil
		}
		m.stream.Bind(msg.Session, msg.Cancel)
		return m, nil

	case commentInsertedMsg:
		rearm := waitCommentInsert(m.insertCh)
		if !m.stream.Notify(msg.Session, msg.CommentID) {
			return m, rearm
		}
		return m, tea.Batch(rearm, m.fetchComment(msg.Session, msg.CommentID))

	case commentFetchedMsg:
		if msg.Err != nil {
			m.log.Warnw("msg", "realtime comment fetch failed", "item", msg.Session.ItemID, "err", msg.Err)
		}
		m.adjustCommentCount(msg.Session.ItemID, m.stream.Resolve(msg.Session, msg.Comment, msg.Err))
		return m, nil

	case commentPostedMsg:
		if msg.Err != nil {
			m.stream.RemoveLocal(msg.Session, msg.LocalID)
			m.adjustCommentCount(msg.Session.ItemID, -1)
			m.log.Errorw("msg", "post comment failed", "item", msg.Session.ItemID, "err", msg.Err)
			m.setError(msg.Err)
			return m, nil
		}
		rec := msg.Comment
		if rec.ID == "" {
			rec.ID = msg.LocalID
		}
		m.stream.Replace(msg.Session, rec)
		return m, nil
	}
	return m, nil
}
