package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/CrestNiraj12/clipflow/app"
	"github.com/CrestNiraj12/clipflow/domain"
	"github.com/CrestNiraj12/clipflow/engine/playback"
)

const testViewer = "6f1c2c47-5d5e-4a58-9c1b-6a3d2a0f9e01"

var errBoom = errors.New("boom")

type stubFeed struct {
	items []domain.FeedItem
	err   error
}

func (s stubFeed) ListFeedItems(context.Context, domain.FeedQuery) ([]domain.FeedItem, error) {
	return s.items, s.err
}
func (s stubFeed) GetItem(_ context.Context, id, _ string) (domain.FeedItem, error) {
	for _, it := range s.items {
		if it.ID == id {
			return it, nil
		}
	}
	return domain.FeedItem{}, domain.ErrNotFound
}
func (stubFeed) CreatePost(context.Context, app.NewPost) (domain.FeedItem, error) {
	return domain.FeedItem{}, nil
}

type stubInteraction struct {
	like      domain.LikeState
	likeErr   error
	following bool
	followErr error
	profile   domain.Profile
}

func (s stubInteraction) ToggleLike(context.Context, string, string) (domain.LikeState, error) {
	return s.like, s.likeErr
}
func (s stubInteraction) ToggleFollow(context.Context, string, string) (bool, error) {
	return s.following, s.followErr
}
func (s stubInteraction) Profile(context.Context, string) (domain.Profile, error) {
	return s.profile, nil
}

type stubModeration struct{ err error }

func (s stubModeration) BlockUser(context.Context, string, string) error     { return s.err }
func (s stubModeration) NotInterested(context.Context, string, string) error { return s.err }

type stubComments struct {
	list      []domain.CommentRecord
	byID      map[string]domain.CommentRecord
	createErr error
}

func (s stubComments) ListComments(context.Context, string, string, int) ([]domain.CommentRecord, error) {
	return s.list, nil
}
func (s stubComments) GetComment(_ context.Context, id string) (domain.CommentRecord, error) {
	if c, ok := s.byID[id]; ok {
		return c, nil
	}
	return domain.CommentRecord{}, domain.ErrNotFound
}
func (s stubComments) CreateComment(_ context.Context, c domain.NewComment) (domain.CommentRecord, error) {
	if s.createErr != nil {
		return domain.CommentRecord{}, s.createErr
	}
	return domain.CommentRecord{ID: c.ID, ItemID: c.ItemID, AuthorID: c.AuthorID, AuthorName: "me", Text: c.Text}, nil
}

// recordingSurface keeps every command it receives.
type recordingSurface struct {
	mu   sync.Mutex
	cmds []string
}

func (s *recordingSurface) Send(_ context.Context, cmd playback.Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cmds = append(s.cmds, cmd.Func.String())
	return nil
}
func (s *recordingSurface) Close() error { return nil }

func (s *recordingSurface) commands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.cmds...)
}

// recordingOpener opens one recordingSurface per item id and never signals loaded.
// failures[id] opens fail before one succeeds.
type recordingOpener struct {
	mu       sync.Mutex
	surfaces map[string]*recordingSurface
	failures map[string]int
	opens    map[string]int
}

func newRecordingOpener() *recordingOpener {
	return &recordingOpener{
		surfaces: map[string]*recordingSurface{},
		failures: map[string]int{},
		opens:    map[string]int{},
	}
}

func (o *recordingOpener) Open(_ context.Context, t playback.Target, _ func()) (playback.Surface, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.opens[t.ItemID]++
	if o.failures[t.ItemID] > 0 {
		o.failures[t.ItemID]--
		return nil, errors.New("tab crashed")
	}
	s, ok := o.surfaces[t.ItemID]
	if !ok {
		s = &recordingSurface{}
		o.surfaces[t.ItemID] = s
	}
	return s, nil
}

func (o *recordingOpener) openCount(id string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.opens[id]
}

func (o *recordingOpener) surface(id string) *recordingSurface {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.surfaces[id]
}

func makeItems(n int) []domain.FeedItem {
	items := make([]domain.FeedItem, 0, n)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := range n {
		items = append(items, domain.FeedItem{
			ID:         fmt.Sprintf("item-%d", i),
			EmbedURL:   "https://www.youtube.com/embed/vid" + fmt.Sprint(i),
			Caption:    fmt.Sprintf("clip %d #fun", i),
			AuthorID:   fmt.Sprintf("author-%d", i%2),
			AuthorName: fmt.Sprintf("user%d", i%2),
			LikeCount:  5,
			CreatedAt:  base.Add(-time.Duration(i) * time.Hour),
		})
	}
	return items
}

func newTestModel(t *testing.T, deps Deps) Model {
	t.Helper()
	if deps.Feed == nil {
		deps.Feed = stubFeed{}
	}
	if deps.Interaction == nil {
		deps.Interaction = stubInteraction{}
	}
	if deps.Moderation == nil {
		deps.Moderation = stubModeration{}
	}
	if deps.Comments == nil {
		deps.Comments = stubComments{}
	}
	if deps.Channel == nil {
		deps.Channel = playback.NewChannel(log.DefaultLogger, playback.DefaultQueueSize)
	}
	m := New(deps)
	t.Cleanup(m.Close)
	t.Cleanup(deps.Channel.Close)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 24})
	return m
}

// loaded returns m after the initial fetch delivered items.
func loaded(t *testing.T, m Model, items []domain.FeedItem) Model {
	t.Helper()
	m, _ = m.Update(ItemsLoadedMsg{Items: items, QueryKey: m.currentQueryKey(), ReqSeq: m.reqSeq})
	return m
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func typeText(m Model, s string) Model {
	for _, r := range s {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

// immediateTicks makes delayed messages fire at once for the duration of the test.
func immediateTicks(t *testing.T) {
	t.Helper()
	prev := after
	after = func(_ time.Duration, fn func(time.Time) tea.Msg) tea.Cmd {
		return func() tea.Msg { return fn(time.Now()) }
	}
	t.Cleanup(func() { after = prev })
}

// drain runs cmd and every command it produces, feeding results back into m, until
// nothing is left. Commands that block (bridges, spinner) are abandoned after a short wait.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 5000 {
			t.Fatalf("commands did not settle")
		}
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg, ok := runCmd(c, 50*time.Millisecond)
		if !ok || msg == nil {
			continue
		}
		switch msg := msg.(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
			continue
		case spinner.TickMsg:
			continue
		}
		var next tea.Cmd
		m, next = m.Update(msg)
		queue = append(queue, next)
	}
	return m
}

func runCmd(c tea.Cmd, wait time.Duration) (tea.Msg, bool) {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- c() }()
	select {
	case msg := <-ch:
		return msg, true
	case <-time.After(wait):
		return nil, false
	}
}

func waitUntil(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
