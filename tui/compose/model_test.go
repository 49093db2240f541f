package compose

import (
	"context"
	"errors"
	"os/exec"
	"slices"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/clipflow/app"
	"github.com/CrestNiraj12/clipflow/domain"
)

type recordingFeed struct {
	got *app.NewPost
	err error
}

func (f recordingFeed) ListFeedItems(context.Context, domain.FeedQuery) ([]domain.FeedItem, error) {
	return nil, nil
}
func (f recordingFeed) GetItem(context.Context, string, string) (domain.FeedItem, error) {
	return domain.FeedItem{}, domain.ErrNotFound
}
func (f recordingFeed) CreatePost(_ context.Context, p app.NewPost) (domain.FeedItem, error) {
	*f.got = p
	if f.err != nil {
		return domain.FeedItem{}, f.err
	}
	return domain.FeedItem{ID: "new-item", VideoRef: p.VideoID, EmbedURL: p.EmbedURL, Caption: p.Caption}, nil
}

type fakeEditor struct {
	content string
	readErr error
}

func (fakeEditor) Cmd(string) (*exec.Cmd, string, error) {
	return exec.Command("true"), "/tmp/caption.md", nil
}

func (e fakeEditor) ReadContent(string) (string, error) {
	return e.content, e.readErr
}

func typeText(m Model, s string) Model {
	for _, r := range s {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestBuildPost(t *testing.T) {
	p, err := buildPost("author-1", " https://youtube.com/shorts/abcDEF12345 ", "  Look #Cats and #cats #dogs  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.VideoID != "abcDEF12345" {
		t.Fatalf("expected video id abcDEF12345, got %q", p.VideoID)
	}
	if p.EmbedURL != domain.StoredEmbedURL("abcDEF12345") {
		t.Fatalf("unexpected embed url %q", p.EmbedURL)
	}
	if p.Caption != "Look #Cats and #cats #dogs" {
		t.Fatalf("expected trimmed caption, got %q", p.Caption)
	}
	if !slices.Equal(p.Hashtags, []string{"cats", "dogs"}) {
		t.Fatalf("expected hashtags [cats dogs], got %v", p.Hashtags)
	}
	if p.AuthorID != "author-1" || p.OriginalURL != "https://youtube.com/shorts/abcDEF12345" {
		t.Fatalf("unexpected post %+v", p)
	}
}

func TestBuildPostRejectsNonYouTube(t *testing.T) {
	_, err := buildPost("author-1", "https://vimeo.com/123456", "")
	if !errors.Is(err, domain.ErrInvalidVideoLink) {
		t.Fatalf("expected ErrInvalidVideoLink, got %v", err)
	}
}

func TestSubmitPublishes(t *testing.T) {
	var got app.NewPost
	m := New(recordingFeed{got: &got}, nil, "author-1", nil)

	m = typeText(m, "https://youtu.be/abcDEF12345")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(m, "hello #world")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd == nil {
		t.Fatal("expected a publish command")
	}
	if !strings.Contains(m.View(), "Posting...") {
		t.Fatal("expected posting status")
	}

	m, cmd = m.Update(cmd())
	if cmd == nil {
		t.Fatal("expected a done command")
	}
	done, ok := cmd().(DoneMsg)
	if !ok || !done.Posted() || done.Item.ID != "new-item" {
		t.Fatalf("expected DoneMsg for new-item, got %#v", done)
	}
	if got.VideoID != "abcDEF12345" || got.Caption != "hello #world" || !slices.Equal(got.Hashtags, []string{"world"}) {
		t.Fatalf("unexpected post %+v", got)
	}
}

func TestSubmitInvalidLinkStaysOpen(t *testing.T) {
	var got app.NewPost
	m := New(recordingFeed{got: &got}, nil, "author-1", nil)

	m = typeText(m, "not a link")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd != nil {
		t.Fatal("expected no publish for an invalid link")
	}
	if !strings.Contains(m.View(), domain.ErrInvalidVideoLink.Error()) {
		t.Fatalf("expected the validation error in the view, got:\n%s", m.View())
	}
}

func TestPublishFailureStaysOpen(t *testing.T) {
	var got app.NewPost
	m := New(recordingFeed{got: &got, err: errors.New("db down")}, nil, "author-1", nil)

	m = typeText(m, "abcDEF12345")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	m, cmd = m.Update(cmd())
	if cmd != nil {
		t.Fatal("expected the composer to stay open")
	}
	if !strings.Contains(m.View(), "db down") {
		t.Fatalf("expected the failure in the view, got:\n%s", m.View())
	}
}

func TestEscCancels(t *testing.T) {
	var got app.NewPost
	m := New(recordingFeed{got: &got}, nil, "author-1", nil)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	done, ok := cmd().(DoneMsg)
	if !ok || done.Posted() {
		t.Fatalf("expected a cancelled DoneMsg, got %#v", done)
	}
}

func TestEditorResultFillsCaption(t *testing.T) {
	var got app.NewPost
	m := New(recordingFeed{got: &got}, fakeEditor{content: "written elsewhere #go"}, "author-1", nil)

	if !strings.Contains(m.View(), "ctrl+e") {
		t.Fatal("expected the editor hint")
	}
	m, _ = m.Update(editorFinishedMsg{tmpPath: "/tmp/caption.md"})
	if m.caption.Value() != "written elsewhere #go" {
		t.Fatalf("expected caption from the editor, got %q", m.caption.Value())
	}
}

func TestEditorFailureShowsError(t *testing.T) {
	var got app.NewPost
	m := New(recordingFeed{got: &got}, fakeEditor{}, "author-1", nil)

	m, _ = m.Update(editorFinishedMsg{err: errors.New("exit status 1")})
	if !strings.Contains(m.View(), "exit status 1") {
		t.Fatalf("expected the editor failure in the view, got:\n%s", m.View())
	}
}
