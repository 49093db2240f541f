package common

import "github.com/charmbracelet/lipgloss"

var (
	// AppTitleStyle styles the application title. Rendered at call site with content.
	AppTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6600")).
			Padding(0, 1)

	// HashtagStyle styles hashtags and the active tag badge.
	HashtagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A6DA95")).
			Bold(true)

	// ModeActiveStyle highlights the current feed mode tab.
	ModeActiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6600")).
			Bold(true).
			Underline(true).
			Padding(0, 1)

	// ModeInactiveStyle styles the other feed mode tabs.
	ModeInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#6E738D")).
				Padding(0, 1)

	// AuthorStyle styles the clip author name.
	AuthorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7DC4E4"))

	// TimestampStyle styles timestamps.
	TimestampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6E738D"))

	// ContentStyle styles caption and comment text.
	ContentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CAD3F5"))

	// LikedStyle marks a like the viewer owns.
	LikedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ED8796")).
			Bold(true)

	// CountStyle styles like, comment and follower counters.
	CountStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#B8C0E0"))

	// ActiveCardStyle frames the active clip.
	ActiveCardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#FF6600")).
			Padding(0, 1)

	// CardStyle gives inactive clips a subtle greyed-out border.
	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#45475A")).
			Padding(0, 1)

	// PlayingBadgeStyle marks the playing surface.
	PlayingBadgeStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#A6DA95")).
				Bold(true)

	// PausedBadgeStyle marks a mounted surface that is not playing.
	PausedBadgeStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#EED49F"))

	// DrawerStyle frames the comment drawer and author card.
	DrawerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7DC4E4")).
			Padding(0, 1)

	// StatusBarStyle styles the bottom status bar.
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6E738D")).
			Padding(1, 0, 0, 0)

	// HintKeyStyle styles the key part of a hint.
	HintKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6600"))

	// ConfirmStyle styles y/n confirmation prompts.
	ConfirmStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ED8796")).
			Bold(true).
			Padding(0, 1)

	// ErrorStyle styles error messages.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ED8796")).
			Bold(true)

	// SuccessStyle styles success messages.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A6DA95")).
			Bold(true)
)
