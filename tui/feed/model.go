package feed

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/CrestNiraj12/clipflow/app"
	"github.com/CrestNiraj12/clipflow/domain"
	"github.com/CrestNiraj12/clipflow/engine/comments"
	"github.com/CrestNiraj12/clipflow/engine/optimistic"
	"github.com/CrestNiraj12/clipflow/engine/playback"
	"github.com/CrestNiraj12/clipflow/engine/viewport"
	"github.com/CrestNiraj12/clipflow/infra/config"
	"github.com/CrestNiraj12/clipflow/tui/common"
)

// Deps holds what the feed controller talks to. Plain struct, not a DI container.
type Deps struct {
	Feed        app.FeedService
	Interaction app.InteractionService
	Moderation  app.ModerationService
	Comments    app.CommentService
	Inserts     app.InsertSubscriber
	Opener      playback.Opener
	Channel     *playback.Channel
	Bursts      playback.BurstSchedule
	Logger      log.Logger
	ViewerID    string
	StatePath   string
	State       config.UIState
	Limit       int
	PostID      string // single post view when set
}

// Model is the feed controller: a snap-scrolling column of clips whose active item
// drives the embedded surfaces.
type Model struct {
	deps Deps
	log  *log.Helper
	keys common.KeyMap

	query    domain.FeedQuery
	items    []domain.FeedItem
	loading  bool
	err      error
	reqSeq   int
	queryKey string

	tracker  *viewport.Tracker
	observer *viewport.Observer
	coord    *playback.Coordinator
	audio    domain.AudioPreference
	uiState  config.UIState

	width, height int
	offset        float64
	velocity      float64
	target        float64
	animating     bool
	frameSeq      int
	snapSeq       int
	spring        harmonica.Spring

	overlay       overlay
	stream        *comments.Stream
	commentInput  textarea.Model
	commentsFor   string
	tagInput      textinput.Model
	profiles      optimistic.Profiles
	profileFor    string
	profileErr    error
	blockAuthorID string
	blockUsername string

	thumbs       map[string]string
	thumbLoading map[string]bool

	spinner   spinner.Model
	status    string
	statusErr bool

	loadedCh chan surfaceLoadedMsg
	insertCh chan commentInsertedMsg
}

// New creates a feed controller with injected dependencies.
func New(deps Deps) Model {
	if deps.Logger == nil {
		deps.Logger = log.DefaultLogger
	}
	if deps.Limit <= 0 {
		deps.Limit = defaultLimit
	}
	if deps.Channel == nil {
		deps.Channel = playback.NewChannel(deps.Logger, playback.DefaultQueueSize)
	}
	if len(deps.Bursts.Activate) == 0 && len(deps.Bursts.Loaded) == 0 {
		deps.Bursts = playback.DefaultBursts()
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6600"))

	ta := textarea.New()
	ta.Placeholder = "Add a comment..."
	ta.CharLimit = 500
	ta.ShowLineNumbers = false
	ta.SetHeight(2)

	ti := textinput.New()
	ti.Placeholder = "hashtag"
	ti.Prompt = "#"
	ti.CharLimit = 64

	audio := deps.State.Audio()
	mode := domain.ParseFeedMode(deps.State.Mode)
	tag := domain.NormalizeTag(deps.State.Tag)
	if mode == domain.ModeTag && tag == "" {
		mode = domain.ModeNewest
	}

	return Model{
		deps:         deps,
		log:          log.NewHelper(log.With(deps.Logger, "module", "tui/feed")),
		keys:         common.DefaultKeyMap(),
		query:        domain.FeedQuery{Mode: mode, Tag: tag, ViewerID: deps.ViewerID, Limit: deps.Limit},
		loading:      true,
		tracker:      viewport.NewTracker(),
		observer:     &viewport.Observer{},
		coord:        playback.NewCoordinator(deps.Channel, deps.Bursts, audio, deps.Logger),
		audio:        audio,
		uiState:      deps.State,
		spring:       harmonica.NewSpring(harmonica.FPS(60), 7.0, 1.0),
		stream:       comments.New(),
		commentInput: ta,
		tagInput:     ti,
		profiles:     optimistic.Profiles{},
		thumbs:       map[string]string{},
		thumbLoading: map[string]bool{},
		spinner:      s,
		loadedCh:     make(chan surfaceLoadedMsg, 64),
		insertCh:     make(chan commentInsertedMsg, 64),
	}
}

// Init starts the initial feed fetch and the background bridges.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.fetchItems(m.reqSeq),
		m.spinner.Tick,
		waitSurfaceLoaded(m.loadedCh),
		waitCommentInsert(m.insertCh),
	)
}

// Update handles messages for the feed view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m.update(msg)
}

// Close tears down surfaces, timers and the comment subscription.
func (m Model) Close() {
	m.stream.Close()
	m.coord.Close()
}

// Items returns the current ordered sequence.
func (m Model) Items() []domain.FeedItem { return m.items }

// ActiveIndex returns the active item index, or false for an empty feed.
func (m Model) ActiveIndex() (int, bool) { return m.tracker.Active() }

// ActiveItem returns the active item, if any.
func (m Model) ActiveItem() (domain.FeedItem, bool) {
	i, ok := m.tracker.Active()
	if !ok || i >= len(m.items) {
		return domain.FeedItem{}, false
	}
	return m.items[i], true
}

// Audio returns the global audio preference.
func (m Model) Audio() domain.AudioPreference { return m.audio }

// Query returns the current feed query.
func (m Model) Query() domain.FeedQuery { return m.query }

// Loading reports whether a feed fetch is in flight.
func (m Model) Loading() bool { return m.loading }

// Err returns the current fetch error, if any.
func (m Model) Err() error { return m.err }

// Status returns the transient status line.
func (m Model) Status() string { return m.status }

// RenderModes returns the per-item render mode for the current active index.
func (m Model) RenderModes() []viewport.RenderMode {
	i, ok := m.tracker.Active()
	if !ok {
		return nil
	}
	return viewport.Window(len(m.items), i)
}

// InputFocused reports whether a text-entry element has focus.
func (m Model) InputFocused() bool {
	switch m.overlay {
	case overlayComments:
		return m.commentInput.Focused()
	case overlayTag:
		return true
	}
	return false
}

// InOverlay reports whether an overlay owns the keyboard.
func (m Model) InOverlay() bool { return m.overlay != overlayNone }
