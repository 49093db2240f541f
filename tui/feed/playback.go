package feed

import (
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/clipflow/domain"
	"github.com/CrestNiraj12/clipflow/engine/playback"
)

func playbackItems(items []domain.FeedItem) []playback.Item {
	out := make([]playback.Item, 0, len(items))
	for _, it := range items {
		out = append(out, playback.Item{ID: it.ID, EmbedURL: it.EmbedURL})
	}
	return out
}

// runEffects turns coordinator effects into commands: burst timers become ticks and
// mount requests open surfaces.
func (m Model) runEffects(eff playback.Effects) tea.Cmd {
	if eff.Empty() {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(eff.Timers)+len(eff.Mounts))
	for _, req := range eff.Mounts {
		cmds = append(cmds, m.openSurface(req))
	}
	for _, t := range eff.Timers {
		cmds = append(cmds, burstTick(t))
	}
	return tea.Batch(cmds...)
}

// activate publishes a new ActiveIndex to the coordinator.
func (m *Model) activate(idx int) tea.Cmd {
	return tea.Batch(m.runEffects(m.coord.SetActive(idx)), m.ensureThumbnails())
}

// resetPlayback hands the coordinator a new item sequence.
func (m *Model) resetPlayback() tea.Cmd {
	active, ok := m.tracker.Active()
	if !ok {
		active = -1
	}
	return tea.Batch(m.runEffects(m.coord.SetItems(playbackItems(m.items), active)), m.ensureThumbnails())
}

func (m Model) handlePlaybackMsg(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case burstTickMsg:
		m.coord.Fire(msg.Fire)
		return m, nil

	case surfaceOpenedMsg:
		if msg.Err != nil {
			m.log.Warnw("msg", "open surface failed", "item", msg.ItemID, "err", msg.Err)
			retry, ok := m.coord.MountFailed(msg.ItemID, msg.Seq)
			if !ok {
				return m, nil
			}
			return m, after(retry, func(time.Time) tea.Msg { return remountMsg{} })
		}
		eff, ok := m.coord.Attach(msg.ItemID, msg.Seq, msg.Surface)
		if !ok {
			_ = msg.Surface.Close()
			return m, nil
		}
		return m, m.runEffects(eff)

	case remountMsg:
		return m, m.runEffects(m.coord.Reconcile())

	case surfaceLoadedMsg:
		eff := m.coord.SurfaceLoaded(msg.ItemID, msg.Seq)
		return m, tea.Batch(m.runEffects(eff), waitSurfaceLoaded(m.loadedCh))
	}
	return m, nil
}

// setAudio is the single writer of the global audio preference. The active item gets
// the change immediately; it is persisted for the next session.
func (m *Model) setAudio(a domain.AudioPreference) tea.Cmd {
	m.audio = a.Normalize()
	m.coord.SetAudio(m.audio)
	m.uiState = m.uiState.WithAudio(m.audio)
	return m.savePrefs()
}

func (m Model) audioLabel() string {
	if m.audio.Silent() {
		return "muted"
	}
	return "vol " + strconv.Itoa(m.audio.Volume)
}
