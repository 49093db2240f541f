package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/clipflow/app"
	"github.com/CrestNiraj12/clipflow/domain"
	"github.com/CrestNiraj12/clipflow/tui/compose"
	"github.com/CrestNiraj12/clipflow/tui/feed"
)

type emptyFeed struct{}

func (emptyFeed) ListFeedItems(context.Context, domain.FeedQuery) ([]domain.FeedItem, error) {
	return nil, nil
}
func (emptyFeed) GetItem(context.Context, string, string) (domain.FeedItem, error) {
	return domain.FeedItem{}, domain.ErrNotFound
}
func (emptyFeed) CreatePost(context.Context, app.NewPost) (domain.FeedItem, error) {
	return domain.FeedItem{ID: "new"}, nil
}

func newTestApp(t *testing.T) App {
	t.Helper()
	a := NewApp(Deps{Feed: feed.Deps{Feed: emptyFeed{}, ViewerID: "viewer-1"}})
	t.Cleanup(a.Close)
	return a
}

func update(t *testing.T, a App, msg tea.Msg) (App, tea.Cmd) {
	t.Helper()
	next, cmd := a.Update(msg)
	out, ok := next.(App)
	if !ok {
		t.Fatalf("expected App, got %T", next)
	}
	return out, cmd
}

func TestComposeRoundTrip(t *testing.T) {
	a := newTestApp(t)

	a, _ = update(t, a, feed.ComposeRequestMsg{})
	if a.active != composeView {
		t.Fatal("expected the composer to open")
	}

	a, cmd := update(t, a, compose.DoneMsg{Item: domain.FeedItem{ID: "new"}})
	if a.active != feedView {
		t.Fatal("expected the feed to be back")
	}
	if cmd == nil {
		t.Fatal("expected a follow-up command")
	}
	if msg, ok := cmd().(feed.PostCreatedMsg); !ok || msg.Item.ID != "new" {
		t.Fatalf("expected PostCreatedMsg, got %#v", msg)
	}
}

func TestComposeCancel(t *testing.T) {
	a := newTestApp(t)

	a, _ = update(t, a, feed.ComposeRequestMsg{})
	a, cmd := update(t, a, compose.DoneMsg{})
	if cmd != nil || a.status != "Cancelled." {
		t.Fatalf("expected a cancelled status, got %q", a.status)
	}
}

func TestQuitOnlyFromFeed(t *testing.T) {
	a := newTestApp(t)
	q := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}

	a, _ = update(t, a, feed.ComposeRequestMsg{})
	_, cmd := update(t, a, q)
	if cmd != nil {
		if _, quit := cmd().(tea.QuitMsg); quit {
			t.Fatal("expected q to be typed into the composer")
		}
	}

	a, _ = update(t, a, compose.DoneMsg{})
	_, cmd = update(t, a, q)
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if _, quit := cmd().(tea.QuitMsg); !quit {
		t.Fatal("expected q to quit from the feed")
	}
}
