package feed

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/CrestNiraj12/clipflow/domain"
	"github.com/CrestNiraj12/clipflow/engine/playback"
	"github.com/CrestNiraj12/clipflow/engine/viewport"
	"github.com/CrestNiraj12/clipflow/tui/common"
)

// View renders the feed as a string.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(fitLines(m.renderBody(), m.pageHeight()))
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader() string {
	title := common.AppTitleStyle.Render("▶ clipflow")
	if m.deps.PostID != "" {
		return title + common.ModeActiveStyle.Render("post") + "\n"
	}
	tabs := make([]string, 0, len(feedModes))
	for _, mode := range feedModes {
		label := string(mode)
		if mode == domain.ModeTag && m.query.Tag != "" {
			label = "#" + m.query.Tag
		}
		if mode == m.query.Mode {
			tabs = append(tabs, common.ModeActiveStyle.Render(label))
		} else {
			tabs = append(tabs, common.ModeInactiveStyle.Render(label))
		}
	}
	line := title + strings.Join(tabs, "")
	pos := ""
	if i, ok := m.tracker.Active(); ok {
		pos = fmt.Sprintf("%d/%d", i+1, len(m.items))
	}
	audio := common.TimestampStyle.Render("♪ " + m.audioLabel())
	return line + "  " + common.TimestampStyle.Render(pos) + "  " + audio + "\n"
}

func (m Model) renderBody() string {
	switch m.overlay {
	case overlayComments:
		return m.renderComments()
	case overlayAuthor:
		return m.renderAuthorCard()
	case overlayTag:
		return m.renderTagPrompt()
	case overlayHints:
		return m.renderHints()
	}

	switch {
	case m.loading && len(m.items) == 0:
		return fmt.Sprintf("  %s Loading clips...", m.spinner.View())
	case m.err != nil && len(m.items) == 0:
		return common.ErrorStyle.Render("  Error: "+domain.HumanError(m.err)) + "\n\n  Press r to retry."
	case len(m.items) == 0:
		return "  " + m.emptyMessage()
	}
	return m.renderColumn()
}

func (m Model) emptyMessage() string {
	switch {
	case m.deps.PostID != "":
		return "Post not found."
	case m.query.Mode == domain.ModeFollowing && m.deps.ViewerID == "":
		return "Sign in to see clips from people you follow."
	case m.query.Mode == domain.ModeFollowing:
		return "Nobody you follow has posted yet."
	case m.query.Mode == domain.ModeTag:
		return "No clips tagged #" + m.query.Tag + " yet."
	default:
		return "No clips yet. Press n to post one."
	}
}

// renderColumn draws the pages overlapping the viewport and slices the visible lines.
func (m Model) renderColumn() string {
	page := m.pageHeight()
	offset := m.offsetLines()
	first := offset / page
	last := min(len(m.items)-1, (offset+page-1)/page)
	active, _ := m.tracker.Active()

	lines := make([]string, 0, (last-first+1)*page)
	for i := first; i <= last; i++ {
		card := m.renderCard(i, viewport.ModeFor(i, active), i == active, page)
		lines = append(lines, strings.Split(fitLines(card, page), "\n")...)
	}
	start := offset - first*page
	end := min(len(lines), start+page)
	if start >= end {
		return ""
	}
	return strings.Join(lines[start:end], "\n")
}

func (m Model) cardWidth() int {
	if m.width <= 0 {
		return 72
	}
	return max(40, min(m.width-2, 96))
}

func (m Model) renderCard(i int, mode viewport.RenderMode, isActive bool, page int) string {
	it := m.items[i]
	inner := m.cardWidth() - 4

	author := common.AuthorStyle.Render("@" + it.AuthorName)
	if it.AuthorID != "" && it.AuthorID == m.deps.ViewerID {
		author += common.TimestampStyle.Render(" (you)")
	} else if it.FollowedByViewer {
		author += common.HashtagStyle.Render(" ✓ following")
	}
	when := common.TimestampStyle.Render(common.RelativeTime(it.CreatedAt, time.Now()))
	head := author + " " + when + "  " + m.playbackBadge(it.ID, mode)

	var preview string
	if thumb, ok := m.thumbs[it.VideoRef]; ok && thumb != "" {
		preview = thumb
	} else {
		preview = common.TimestampStyle.Render(placeholderBox(thumbnailWidth, thumbnailHeight))
	}

	caption := common.ContentStyle.Render(ansi.Wordwrap(it.Caption, inner, " "))
	caption = fitLines(caption, max(1, page-thumbnailHeight-6))

	likes := "♡ " + common.FormatCount(it.LikeCount)
	if it.LikedByViewer {
		likes = common.LikedStyle.Render("♥ " + common.FormatCount(it.LikeCount))
	}
	counts := likes + "   " + common.CountStyle.Render("💬 "+common.FormatCount(it.CommentCount))

	body := lipgloss.JoinVertical(lipgloss.Left, head, preview, caption, counts)
	style := common.CardStyle
	if isActive {
		style = common.ActiveCardStyle
	}
	return style.Width(m.cardWidth() - 2).Height(max(1, page-2)).Render(body)
}

func (m Model) playbackBadge(itemID string, mode viewport.RenderMode) string {
	if mode == viewport.Hidden {
		return ""
	}
	switch {
	case m.coord.ModeOf(itemID) == playback.ModeActive && m.isPlaying(itemID):
		return common.PlayingBadgeStyle.Render("▶ playing")
	case !m.coord.Loaded(itemID):
		return common.PausedBadgeStyle.Render("◌ loading")
	default:
		return common.PausedBadgeStyle.Render("⏸ paused")
	}
}

func (m Model) isPlaying(itemID string) bool {
	for _, id := range m.coord.Playing() {
		if id == itemID {
			return true
		}
	}
	return false
}

func (m Model) renderComments() string {
	it, _ := m.itemByID(m.commentsFor)
	var b strings.Builder
	b.WriteString(common.AuthorStyle.Render("Comments"))
	b.WriteString(common.TimestampStyle.Render(fmt.Sprintf(" · %s on @%s", common.FormatCount(it.CommentCount), it.AuthorName)))
	b.WriteString("\n\n")

	listHeight := max(1, m.pageHeight()-8)
	switch {
	case m.stream.Loading() && len(m.stream.Items()) == 0:
		b.WriteString(fmt.Sprintf("%s Loading comments...", m.spinner.View()))
	case m.stream.Err() != nil:
		b.WriteString(common.ErrorStyle.Render("Error: " + domain.HumanError(m.stream.Err())))
		b.WriteString("\nPress r to retry.")
	case len(m.stream.Items()) == 0:
		b.WriteString(common.TimestampStyle.Render("No comments yet."))
	default:
		list := m.stream.Items()
		rows := make([]string, 0, len(list))
		for _, c := range list {
			rows = append(rows, common.AuthorStyle.Render("@"+c.AuthorName)+" "+
				common.TimestampStyle.Render(common.RelativeTime(c.CreatedAt, time.Now()))+"\n"+
				common.ContentStyle.Render(ansi.Wordwrap(c.Text, m.cardWidth()-6, " ")))
		}
		b.WriteString(tailLines(strings.Join(rows, "\n"), listHeight))
	}
	b.WriteString("\n\n")

	if m.deps.ViewerID == "" {
		b.WriteString(common.TimestampStyle.Render("Sign in to comment."))
	} else if m.commentInput.Focused() {
		b.WriteString(m.commentInput.View())
	} else {
		b.WriteString(common.TimestampStyle.Render("i: write • esc: close"))
	}
	return common.DrawerStyle.Width(m.cardWidth() - 2).Render(b.String())
}

func (m Model) renderAuthorCard() string {
	it, _ := m.ActiveItem()
	var b strings.Builder
	p, ok := m.profiles[m.profileFor]
	switch {
	case m.profileErr != nil:
		b.WriteString(common.ErrorStyle.Render("Error: " + domain.HumanError(m.profileErr)))
	case !ok:
		b.WriteString(fmt.Sprintf("%s Loading profile...", m.spinner.View()))
	default:
		name := p.DisplayName
		if name == "" {
			name = p.Username
		}
		b.WriteString(common.AuthorStyle.Render(name))
		b.WriteString(common.TimestampStyle.Render(" @" + p.Username))
		b.WriteString("\n")
		if p.Bio != "" {
			b.WriteString(common.ContentStyle.Render(ansi.Wordwrap(p.Bio, m.cardWidth()-6, " ")))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(common.CountStyle.Render(fmt.Sprintf("%s followers   %s following",
			common.FormatCount(p.Followers), common.FormatCount(p.Following))))
	}
	b.WriteString("\n\n")
	follow := "f: follow"
	if it.FollowedByViewer {
		follow = "f: unfollow"
	}
	b.WriteString(common.TimestampStyle.Render(follow + " • B: block • esc: close"))
	return common.DrawerStyle.Width(m.cardWidth() - 2).Render(b.String())
}

func (m Model) renderTagPrompt() string {
	return common.DrawerStyle.Width(m.cardWidth() - 2).Render(
		"Show clips tagged\n\n" + m.tagInput.View() + "\n\n" +
			common.TimestampStyle.Render("enter: apply • empty: newest • esc: cancel"))
}

func (m Model) renderHints() string {
	cols := m.keys.FullHelp()
	rows := make([]string, 0, len(cols))
	for _, col := range cols {
		rows = append(rows, common.HintLine(col))
	}
	return common.DrawerStyle.Width(m.cardWidth() - 2).Render("Keys\n\n" + strings.Join(rows, "\n"))
}

func (m Model) renderFooter() string {
	switch {
	case m.overlay == overlayConfirmBlock:
		return common.ConfirmStyle.Render(fmt.Sprintf("Block @%s? Their clips and comments will be hidden. (y/n)", m.blockUsername))
	case m.status != "" && m.statusErr:
		return common.StatusBarStyle.Render(common.ErrorStyle.Render(m.status))
	case m.status != "":
		return common.StatusBarStyle.Render(m.status)
	}
	return common.StatusBarStyle.Render(common.HintLine(m.keys.ShortHelp()))
}

func (m Model) itemByID(id string) (domain.FeedItem, bool) {
	for _, it := range m.items {
		if it.ID == id {
			return it, true
		}
	}
	return domain.FeedItem{}, false
}

// fitLines pads or truncates s to exactly n lines.
func fitLines(s string, n int) string {
	if n <= 0 {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	for len(lines) < n {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// tailLines keeps the last n lines of s.
func tailLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
