package feed

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/clipflow/domain"
)

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.commentInput.SetWidth(max(20, min(msg.Width-6, 90)))
		if i, ok := m.tracker.Active(); ok {
			m.jumpTo(i)
		}
		return m, nil

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ThumbnailLoadedMsg:
		delete(m.thumbLoading, msg.VideoID)
		if msg.Err != nil {
			m.log.Debugw("msg", "thumbnail failed", "video", msg.VideoID, "err", msg.Err)
			return m, nil
		}
		m.thumbs[msg.VideoID] = msg.Preview
		return m, nil

	case PrefsSavedMsg:
		if msg.Err != nil {
			m.log.Errorw("msg", "save ui state", "err", msg.Err)
		}
		return m, nil
	}

	switch msg.(type) {
	case ItemsLoadedMsg, ItemsErrorMsg, ReloadMsg, SwitchModeMsg, PostCreatedMsg:
		return m.handleFeedLoadingMsg(msg)
	case burstTickMsg, surfaceOpenedMsg, surfaceLoadedMsg, remountMsg:
		return m.handlePlaybackMsg(msg)
	case scrollFrameMsg, snapMsg, tea.MouseMsg:
		return m.handleScrollMsg(msg)
	case LikeResultMsg, FollowResultMsg, ProfileLoadedMsg, ModerationResultMsg:
		return m.handleOptimisticMsg(msg)
	case commentsLoadedMsg, commentsSubscribedMsg, commentInsertedMsg, commentFetchedMsg, commentPostedMsg:
		return m.handleCommentMsg(msg)
	case tea.KeyMsg:
		return m.handleKeyMsg(msg.(tea.KeyMsg))
	}

	// Cursor blink and other widget messages.
	switch m.overlay {
	case overlayComments:
		m.commentInput, cmd = m.commentInput.Update(msg)
		return m, cmd
	case overlayTag:
		m.tagInput, cmd = m.tagInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleFeedLoadingMsg(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ItemsLoadedMsg:
		if msg.ReqSeq != m.reqSeq || msg.QueryKey != m.currentQueryKey() {
			return m, nil
		}
		m.loading = false
		m.err = nil
		m.items = msg.Items
		m.tracker.Reset(len(m.items))
		m.jumpTo(0)
		// Prime the observer; item 0 is fully visible and already active.
		m.sampleViewport()
		cmd := m.resetPlayback()
		return m, cmd

	case ItemsErrorMsg:
		if msg.ReqSeq != m.reqSeq || msg.QueryKey != m.currentQueryKey() {
			return m, nil
		}
		m.loading = false
		m.err = msg.Err
		m.log.Errorw("msg", "feed fetch failed", "query", msg.QueryKey, "err", msg.Err)
		return m, nil

	case ReloadMsg:
		cmd := m.reload()
		return m, cmd

	case PostCreatedMsg:
		m.setStatus("Posted!", false)
		cmd := m.reload()
		return m, cmd

	case SwitchModeMsg:
		tag := domain.NormalizeTag(msg.Tag)
		if msg.Mode == domain.ModeTag && tag == "" {
			return m, nil
		}
		if msg.Mode != domain.ModeTag {
			tag = m.query.Tag
		}
		if msg.Mode == m.query.Mode && tag == m.query.Tag {
			return m, nil
		}
		m.query.Mode = msg.Mode
		m.query.Tag = tag
		m.uiState.Mode = string(msg.Mode)
		m.uiState.Tag = tag
		m.closeOverlay()
		if msg.Mode == domain.ModeFollowing && m.deps.ViewerID == "" {
			m.setStatus("Sign in to see clips from people you follow.", false)
		}
		cmd := m.reload()
		return m, tea.Batch(cmd, m.savePrefs())
	}
	return m, nil
}

// reload refetches the current list. The stale-response guard is the request sequence
// plus the query key; the list identity resets ActiveIndex to 0 when results land.
func (m *Model) reload() tea.Cmd {
	m.reqSeq++
	m.loading = true
	m.err = nil
	return m.fetchItems(m.reqSeq)
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

func (m *Model) setError(err error) {
	m.setStatus(domain.HumanError(err), true)
}
