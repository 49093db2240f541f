package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/clipflow/app"
	"github.com/CrestNiraj12/clipflow/tui/common"
	"github.com/CrestNiraj12/clipflow/tui/compose"
	"github.com/CrestNiraj12/clipflow/tui/feed"
)

// Deps holds all dependencies the TUI needs. Plain struct, not a DI container.
type Deps struct {
	Feed   feed.Deps
	Editor app.CaptionEditor
}

type activeView int

const (
	feedView activeView = iota
	composeView
)

// App is the root Bubble Tea model. It routes between the feed and the composer.
type App struct {
	deps    Deps
	active  activeView
	feed    feed.Model
	compose compose.Model
	keys    common.KeyMap
	status  string // Transient status message (e.g. "Cancelled.")
}

// NewApp creates the root model with all dependencies wired.
func NewApp(deps Deps) App {
	return App{
		deps:   deps,
		active: feedView,
		feed:   feed.New(deps.Feed),
		keys:   common.DefaultKeyMap(),
	}
}

// Init delegates to the feed.
func (a App) Init() tea.Cmd {
	return a.feed.Init()
}

// Close releases surfaces and subscriptions held by the feed.
func (a App) Close() {
	a.feed.Close()
}

// Update handles messages and routes to the active sub-model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, a.keys.ForceQuit) {
			return a, tea.Quit
		}
		if a.active == feedView && key.Matches(msg, a.keys.Quit) && !a.feed.InOverlay() && !a.feed.InputFocused() {
			return a, tea.Quit
		}
		a.status = ""

	case tea.WindowSizeMsg:
		// The feed keeps its geometry while the composer is open.
		var cmd tea.Cmd
		a.feed, cmd = a.feed.Update(msg)
		return a, cmd

	case feed.ComposeRequestMsg:
		a.active = composeView
		a.status = ""
		a.compose = compose.New(a.deps.Feed.Feed, a.deps.Editor, a.deps.Feed.ViewerID, a.deps.Feed.Logger)
		return a, a.compose.Init()

	case compose.DoneMsg:
		a.active = feedView
		if !msg.Posted() {
			a.status = "Cancelled."
			return a, nil
		}
		return a, func() tea.Msg { return feed.PostCreatedMsg{Item: msg.Item} }
	}

	switch a.active {
	case composeView:
		switch msg.(type) {
		case tea.KeyMsg, tea.MouseMsg:
			var cmd tea.Cmd
			a.compose, cmd = a.compose.Update(msg)
			return a, cmd
		}
		// Results of in-flight feed commands still belong to the feed.
		var feedCmd, composeCmd tea.Cmd
		a.feed, feedCmd = a.feed.Update(msg)
		a.compose, composeCmd = a.compose.Update(msg)
		return a, tea.Batch(feedCmd, composeCmd)
	default:
		var cmd tea.Cmd
		a.feed, cmd = a.feed.Update(msg)
		return a, cmd
	}
}

// View renders the active sub-model.
func (a App) View() string {
	var s string
	switch a.active {
	case feedView:
		s = a.feed.View()
	case composeView:
		s = a.compose.View()
	}

	if a.status != "" {
		s += "\n" + common.StatusBarStyle.Render(a.status)
	}
	return s
}
