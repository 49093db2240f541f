package feed

import (
	"math"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	headerLines  = 2
	footerLines  = 2
	wheelLines   = 3
	snapDelay    = 180 * time.Millisecond
	frameRate    = time.Second / 60
	settleMargin = 0.5
)

// pageHeight is the number of lines one clip occupies. Items are laid out as a column
// of equal pages and the viewport shows exactly one page.
func (m Model) pageHeight() int {
	if m.height <= 0 {
		return 20
	}
	return max(minPageHeight, m.height-headerLines-footerLines)
}

func (m Model) maxOffset() float64 {
	return float64(max(0, len(m.items)-1) * m.pageHeight())
}

func (m Model) offsetLines() int {
	return int(math.Round(m.offset))
}

// scrollTo animates the column so item idx fills the viewport.
func (m *Model) scrollTo(idx int) tea.Cmd {
	m.target = float64(idx * m.pageHeight())
	if m.animating {
		return nil
	}
	m.animating = true
	m.frameSeq++
	return scrollFrame(m.frameSeq)
}

// jumpTo places item idx in the viewport without animation.
func (m *Model) jumpTo(idx int) {
	m.stopAnimation()
	m.offset = float64(idx * m.pageHeight())
	m.target = m.offset
	m.observer.Reset()
}

func (m *Model) stopAnimation() {
	m.animating = false
	m.velocity = 0
	m.frameSeq++
}

func scrollFrame(seq int) tea.Cmd {
	return after(frameRate, func(time.Time) tea.Msg {
		return scrollFrameMsg{Seq: seq}
	})
}

func (m Model) handleScrollMsg(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case scrollFrameMsg:
		if msg.Seq != m.frameSeq || !m.animating {
			return m, nil
		}
		m.offset, m.velocity = m.spring.Update(m.offset, m.velocity, m.target)
		if math.Abs(m.offset-m.target) < settleMargin && math.Abs(m.velocity) < settleMargin {
			m.offset = m.target
			m.stopAnimation()
			cmd := m.sampleViewport()
			return m, cmd
		}
		return m, scrollFrame(m.frameSeq)

	case snapMsg:
		if msg.Seq != m.snapSeq || len(m.items) == 0 {
			return m, nil
		}
		idx := int(math.Round(m.offset / float64(m.pageHeight())))
		var cmds []tea.Cmd
		if next, changed := m.tracker.Jump(idx); changed {
			cmds = append(cmds, m.activate(next))
		}
		cmds = append(cmds, m.scrollTo(idx))
		return m, tea.Batch(cmds...)

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress || m.overlay == overlayComments || m.overlay == overlayTag {
			return m, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelDown:
			return m.wheel(wheelLines)
		case tea.MouseButtonWheelUp:
			return m.wheel(-wheelLines)
		}
	}
	return m, nil
}

// wheel scrolls freely by lines, lets the observer pick the active item, and snaps to the
// nearest page once the wheel has been idle for snapDelay.
func (m Model) wheel(delta int) (Model, tea.Cmd) {
	if len(m.items) == 0 {
		return m, nil
	}
	m.stopAnimation()
	m.offset = math.Max(0, math.Min(m.maxOffset(), m.offset+float64(delta)))
	m.target = m.offset
	m.snapSeq++
	seq := m.snapSeq
	cmd := m.sampleViewport()
	return m, tea.Batch(
		cmd,
		after(snapDelay, func(time.Time) tea.Msg { return snapMsg{Seq: seq} }),
	)
}

// sampleViewport feeds the observer's crossings to the tracker. It is the only path by
// which scrolling moves ActiveIndex.
func (m *Model) sampleViewport() tea.Cmd {
	entries := m.observer.Sample(m.offsetLines(), m.pageHeight(), len(m.items))
	if entries == nil {
		return nil
	}
	idx, changed := m.tracker.Observe(entries)
	if !changed {
		return nil
	}
	return m.activate(idx)
}
