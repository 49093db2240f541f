package feed

import (
	"slices"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/clipflow/domain"
	"github.com/CrestNiraj12/clipflow/infra/auth"
)

func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.overlay {
	case overlayHints:
		if key.Matches(msg, m.keys.ToggleHints) || msg.String() == "esc" || msg.String() == "q" || msg.String() == "enter" {
			m.overlay = overlayNone
		}
		return m, nil
	case overlayComments:
		if m.commentInput.Focused() {
			return m.handleCommentInputKey(msg)
		}
		if next, cmd, handled := m.handleCommentDrawerKey(msg); handled {
			return next, cmd
		}
	case overlayTag:
		return m.handleTagKey(msg)
	case overlayConfirmBlock:
		switch msg.String() {
		case "y":
			m.overlay = overlayNone
			m.setStatus("Blocking @"+m.blockUsername+"...", false)
			return m, m.blockAuthor(m.blockAuthorID, m.blockUsername)
		case "n", "esc":
			m.overlay = overlayNone
			m.blockAuthorID, m.blockUsername = "", ""
		}
		return m, nil
	case overlayAuthor:
		if msg.String() == "esc" || key.Matches(msg, m.keys.Author) {
			m.overlay = overlayNone
			return m, nil
		}
	}

	switch {
	case key.Matches(msg, m.keys.Down):
		return m.step(1)
	case key.Matches(msg, m.keys.Up):
		return m.step(-1)
	case key.Matches(msg, m.keys.Top):
		idx, changed := m.tracker.Jump(0)
		if !changed {
			return m, nil
		}
		cmd := tea.Batch(m.activate(idx), m.scrollTo(idx))
		return m, cmd

	case key.Matches(msg, m.keys.Mute):
		cmd := m.setAudio(m.audio.ToggleMute())
		return m, cmd
	case key.Matches(msg, m.keys.VolumeUp):
		cmd := m.setAudio(m.audio.WithVolume(m.audio.Volume + volumeStep))
		return m, cmd
	case key.Matches(msg, m.keys.VolumeDown):
		cmd := m.setAudio(m.audio.WithVolume(m.audio.Volume - volumeStep))
		return m, cmd

	case key.Matches(msg, m.keys.Like):
		return m.likeActive()
	case key.Matches(msg, m.keys.Follow):
		return m.followActive()
	case key.Matches(msg, m.keys.Author):
		return m.openAuthor()
	case key.Matches(msg, m.keys.Comments):
		return m.openComments()

	case key.Matches(msg, m.keys.Compose):
		if err := auth.RequireViewer(m.deps.ViewerID); err != nil {
			m.setError(err)
			return m, nil
		}
		return m, func() tea.Msg { return ComposeRequestMsg{} }
	case key.Matches(msg, m.keys.Refresh):
		if m.loading {
			return m, nil
		}
		cmd := m.reload()
		return m, cmd
	case key.Matches(msg, m.keys.SwitchMode):
		if m.deps.PostID != "" {
			return m, nil
		}
		next := nextMode(m.query.Mode)
		if next == domain.ModeTag && m.query.Tag == "" {
			return m.openTagPrompt()
		}
		return m, func() tea.Msg { return SwitchModeMsg{Mode: next, Tag: m.query.Tag} }
	case key.Matches(msg, m.keys.Tag):
		if m.deps.PostID != "" {
			return m, nil
		}
		return m.openTagPrompt()

	case key.Matches(msg, m.keys.NotInterested):
		it, ok := m.ActiveItem()
		if !ok {
			return m, nil
		}
		if err := auth.RequireViewer(m.deps.ViewerID); err != nil {
			m.setError(err)
			return m, nil
		}
		return m, m.markNotInterested(it.ID)
	case key.Matches(msg, m.keys.Block):
		it, ok := m.ActiveItem()
		if !ok {
			return m, nil
		}
		if err := auth.RequireViewer(m.deps.ViewerID); err != nil {
			m.setError(err)
			return m, nil
		}
		if it.AuthorID == m.deps.ViewerID {
			m.setStatus("You can't block yourself.", true)
			return m, nil
		}
		m.overlay = overlayConfirmBlock
		m.blockAuthorID, m.blockUsername = it.AuthorID, it.AuthorName
		return m, nil

	case key.Matches(msg, m.keys.ToggleHints):
		m.overlay = overlayHints
		return m, nil
	}
	return m, nil
}

// step moves ActiveIndex by delta, clamped, and scrolls the new item into view.
func (m Model) step(delta int) (Model, tea.Cmd) {
	if m.overlay == overlayComments {
		m.closeOverlay()
	}
	idx, changed := m.tracker.Step(delta)
	if !changed {
		return m, nil
	}
	cmds := []tea.Cmd{m.activate(idx), m.scrollTo(idx)}
	if m.overlay == overlayAuthor {
		cmds = append(cmds, m.loadAuthorCard())
	}
	return m, tea.Batch(cmds...)
}

func nextMode(cur domain.FeedMode) domain.FeedMode {
	i := slices.Index(feedModes, cur)
	return feedModes[(i+1)%len(feedModes)]
}

func (m Model) openTagPrompt() (Model, tea.Cmd) {
	m.overlay = overlayTag
	m.tagInput.SetValue(m.query.Tag)
	m.tagInput.CursorEnd()
	cmd := m.tagInput.Focus()
	return m, cmd
}

func (m Model) handleTagKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.tagInput.Blur()
		m.overlay = overlayNone
		return m, nil
	case "enter":
		tag := domain.NormalizeTag(m.tagInput.Value())
		m.tagInput.Blur()
		m.overlay = overlayNone
		if tag == "" {
			return m, func() tea.Msg { return SwitchModeMsg{Mode: domain.ModeNewest} }
		}
		return m, func() tea.Msg { return SwitchModeMsg{Mode: domain.ModeTag, Tag: tag} }
	}
	var cmd tea.Cmd
	m.tagInput, cmd = m.tagInput.Update(msg)
	return m, cmd
}

// closeOverlay dismisses whatever overlay is open, tearing down the comment session.
func (m *Model) closeOverlay() {
	if m.overlay == overlayComments {
		m.stream.Close()
		m.commentInput.Blur()
		m.commentInput.Reset()
		m.commentsFor = ""
	}
	m.tagInput.Blur()
	m.overlay = overlayNone
}
