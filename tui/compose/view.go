package compose

import (
	"fmt"
	"strings"

	"github.com/CrestNiraj12/clipflow/domain"
	"github.com/CrestNiraj12/clipflow/tui/common"
)

// View renders the composer.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(common.AppTitleStyle.Render("▶ clipflow"))
	b.WriteString("  New clip\n\n")
	b.WriteString(m.link.View())
	b.WriteString("\n\n")
	b.WriteString(m.caption.View())
	b.WriteString("\n")

	if tags := domain.ExtractHashtags(m.caption.Value()); len(tags) > 0 {
		b.WriteString(common.HashtagStyle.Render("#" + strings.Join(tags, " #")))
		b.WriteString("\n")
	}

	switch {
	case m.publishing:
		b.WriteString(common.StatusBarStyle.Render("  Posting..."))
	case m.err != nil:
		b.WriteString(common.StatusBarStyle.Render(common.ErrorStyle.Render("  Error: " + domain.HumanError(m.err))))
	default:
		hints := fmt.Sprintf("  tab: switch field • ctrl+s: post • esc: cancel • %d/%d chars",
			len([]rune(m.caption.Value())), captionLimit)
		if m.editor != nil {
			hints = "  ctrl+e: $EDITOR •" + hints[1:]
		}
		b.WriteString(common.StatusBarStyle.Render(hints))
	}
	return b.String()
}
