package feed

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/clipflow/domain"
	"github.com/CrestNiraj12/clipflow/engine/optimistic"
	"github.com/CrestNiraj12/clipflow/infra/auth"
)

func (m Model) likeActive() (Model, tea.Cmd) {
	it, ok := m.ActiveItem()
	if !ok {
		return m, nil
	}
	if err := auth.RequireViewer(m.deps.ViewerID); err != nil {
		m.setError(err)
		return m, nil
	}
	p := optimistic.Like.Apply(optimistic.Items(m.items), it.ID, domain.LikeState.Toggled)
	if !p.Applied() {
		return m, nil
	}
	return m, m.toggleLike(p)
}

func (m Model) followActive() (Model, tea.Cmd) {
	it, ok := m.ActiveItem()
	if !ok {
		return m, nil
	}
	if err := auth.RequireViewer(m.deps.ViewerID); err != nil {
		m.setError(err)
		return m, nil
	}
	if it.AuthorID == m.deps.ViewerID {
		m.setStatus("That's you.", false)
		return m, nil
	}
	before := it.FollowedByViewer
	res := FollowResultMsg{
		AuthorID:  it.AuthorID,
		Before:    before,
		Flag:      optimistic.Follow.Apply(optimistic.ByAuthor(m.items), it.AuthorID, func(b bool) bool { return !b }),
		Followers: optimistic.Followers.Apply(m.profiles, it.AuthorID, optimistic.FollowDelta(before)),
	}
	if !res.Flag.Applied() {
		return m, nil
	}
	return m, m.toggleFollow(res)
}

func (m Model) openAuthor() (Model, tea.Cmd) {
	if _, ok := m.ActiveItem(); !ok {
		return m, nil
	}
	if m.overlay == overlayComments {
		m.closeOverlay()
	}
	m.overlay = overlayAuthor
	cmd := m.loadAuthorCard()
	return m, cmd
}

// loadAuthorCard points the author card at the active item's author.
func (m *Model) loadAuthorCard() tea.Cmd {
	it, ok := m.ActiveItem()
	if !ok {
		return nil
	}
	m.profileFor = it.AuthorID
	m.profileErr = nil
	if _, cached := m.profiles[it.AuthorID]; cached {
		return nil
	}
	return m.fetchProfile(it.AuthorID)
}

func (m Model) handleOptimisticMsg(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LikeResultMsg:
		items := optimistic.Items(m.items)
		if msg.Err != nil {
			optimistic.Like.Rollback(items, msg.Pending)
			m.log.Errorw("msg", "like failed", "item", msg.Pending.Key, "err", msg.Err)
			m.setError(msg.Err)
			return m, nil
		}
		optimistic.Like.Confirm(items, msg.Pending, optimistic.ConfirmLike(msg.State))
		return m, nil

	case FollowResultMsg:
		byAuthor := optimistic.ByAuthor(m.items)
		if msg.Err != nil {
			optimistic.Follow.Rollback(byAuthor, msg.Flag)
			optimistic.Followers.Rollback(m.profiles, msg.Followers)
			m.log.Errorw("msg", "follow failed", "author", msg.AuthorID, "err", msg.Err)
			m.setError(msg.Err)
			return m, nil
		}
		optimistic.Follow.Confirm(byAuthor, msg.Flag, optimistic.ConfirmFollow(msg.Following))
		optimistic.Followers.Confirm(m.profiles, msg.Followers, optimistic.ConfirmFollowers(msg.Before, msg.Following))
		return m, nil

	case ProfileLoadedMsg:
		if msg.Err != nil {
			if msg.AuthorID == m.profileFor {
				m.profileErr = msg.Err
			}
			return m, nil
		}
		m.profiles[msg.AuthorID] = msg.Profile
		return m, nil

	case ModerationResultMsg:
		if msg.Err != nil {
			m.log.Errorw("msg", "moderation failed", "item", msg.ItemID, "author", msg.AuthorID, "err", msg.Err)
			m.setError(msg.Err)
			return m, nil
		}
		switch msg.Kind {
		case moderationNotInterested:
			m.setStatus("Hidden. You'll see fewer clips like this.", false)
			cmd := m.removeItems(func(it domain.FeedItem) bool { return it.ID == msg.ItemID })
			return m, cmd
		case moderationBlock:
			m.setStatus("Blocked @"+msg.Username+".", false)
			m.blockAuthorID, m.blockUsername = "", ""
			delete(m.profiles, msg.AuthorID)
			if m.overlay == overlayAuthor && m.profileFor == msg.AuthorID {
				m.overlay = overlayNone
			}
			cmd := m.removeItems(func(it domain.FeedItem) bool { return it.AuthorID == msg.AuthorID })
			return m, cmd
		}
	}
	return m, nil
}

// removeItems drops matching items from the in-memory sequence only. The active item
// keeps its identity when it survives.
func (m *Model) removeItems(drop func(domain.FeedItem) bool) tea.Cmd {
	kept := make([]domain.FeedItem, 0, len(m.items))
	removed := false
	for i := len(m.items) - 1; i >= 0; i-- {
		if drop(m.items[i]) {
			m.tracker.Remove(i)
			removed = true
		}
	}
	if !removed {
		return nil
	}
	for _, it := range m.items {
		if !drop(it) {
			kept = append(kept, it)
		}
	}
	m.items = kept
	if m.commentsFor != "" && !containsItem(kept, m.commentsFor) {
		m.closeOverlay()
	}
	idx, ok := m.tracker.Active()
	if ok {
		m.jumpTo(idx)
	}
	return m.resetPlayback()
}

func (m *Model) adjustCommentCount(itemID string, delta int) {
	if delta == 0 {
		return
	}
	for i := range m.items {
		if m.items[i].ID == itemID {
			m.items[i].CommentCount = max(0, m.items[i].CommentCount+delta)
			return
		}
	}
}

func containsItem(items []domain.FeedItem, id string) bool {
	for _, it := range items {
		if it.ID == id {
			return true
		}
	}
	return false
}
