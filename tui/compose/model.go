package compose

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/CrestNiraj12/clipflow/app"
	"github.com/CrestNiraj12/clipflow/domain"
)

const (
	captionLimit   = 500
	publishTimeout = 15 * time.Second
)

type field int

const (
	linkField field = iota
	captionField
)

// --- Messages ---

// DoneMsg is sent when composing is complete. Item is zero when the user cancelled.
type DoneMsg struct {
	Item domain.FeedItem
}

// Posted reports whether a clip was published.
func (d DoneMsg) Posted() bool { return d.Item.ID != "" }

// editorFinishedMsg is sent after the external editor exits.
type editorFinishedMsg struct {
	tmpPath string
	err     error
}

type publishedMsg struct {
	item domain.FeedItem
	err  error
}

// --- Model ---

// Model is the clip composer: a YouTube link and a caption.
type Model struct {
	feed     app.FeedService
	editor   app.CaptionEditor
	log      *log.Helper
	authorID string

	link    textinput.Model
	caption textarea.Model
	focus   field

	publishing bool
	err        error
}

// New creates a composer posting as authorID. ed may be nil, which disables $EDITOR.
func New(feed app.FeedService, ed app.CaptionEditor, authorID string, logger log.Logger) Model {
	if logger == nil {
		logger = log.DefaultLogger
	}

	link := textinput.New()
	link.Placeholder = "https://youtube.com/shorts/..."
	link.Prompt = "Link: "
	link.CharLimit = 256
	link.Width = 64
	link.Focus()

	ta := textarea.New()
	ta.Placeholder = "Say something about it. #hashtags link the clip."
	ta.CharLimit = captionLimit
	ta.ShowLineNumbers = false
	ta.SetWidth(72)
	ta.SetHeight(5)

	return Model{
		feed:     feed,
		editor:   ed,
		log:      log.NewHelper(log.With(logger, "module", "tui/compose")),
		authorID: authorID,
		link:     link,
		caption:  ta,
	}
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// launchEditor opens $EDITOR on the caption. tea.ExecProcess suspends raw mode while
// the editor runs.
func (m Model) launchEditor() tea.Cmd {
	cmd, tmpPath, err := m.editor.Cmd(m.caption.Value())
	if err != nil {
		return func() tea.Msg {
			return editorFinishedMsg{err: fmt.Errorf("preparing editor: %w", err)}
		}
	}
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return editorFinishedMsg{tmpPath: tmpPath, err: err}
	})
}

// Update handles messages for the compose view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case editorFinishedMsg:
		if msg.err != nil {
			m.err = fmt.Errorf("editor: %w", msg.err)
			return m, nil
		}
		content, err := m.editor.ReadContent(msg.tmpPath)
		if err != nil {
			m.err = err
			return m, nil
		}
		m.caption.SetValue(content)
		return m, nil

	case publishedMsg:
		m.publishing = false
		if msg.err != nil {
			m.log.Errorw("msg", "publish failed", "err", msg.err)
			m.err = msg.err
			return m, nil
		}
		return m, done(DoneMsg{Item: msg.item})

	case tea.KeyMsg:
		if m.publishing {
			return m, nil
		}
		switch msg.String() {
		case "esc":
			return m, done(DoneMsg{})
		case "tab", "shift+tab":
			cmd := m.toggleFocus()
			return m, cmd
		case "ctrl+e":
			if m.editor == nil {
				return m, nil
			}
			return m, m.launchEditor()
		case "ctrl+s", "ctrl+d":
			return m.submit()
		case "enter":
			if m.focus == linkField {
				cmd := m.toggleFocus()
				return m, cmd
			}
		}
	}

	var cmd tea.Cmd
	if m.focus == linkField {
		m.link, cmd = m.link.Update(msg)
	} else {
		m.caption, cmd = m.caption.Update(msg)
	}
	return m, cmd
}

func (m *Model) toggleFocus() tea.Cmd {
	if m.focus == linkField {
		m.focus = captionField
		m.link.Blur()
		return m.caption.Focus()
	}
	m.focus = linkField
	m.caption.Blur()
	return m.link.Focus()
}

// submit validates the link and publishes. Validation failures stay in the composer.
func (m Model) submit() (Model, tea.Cmd) {
	post, err := buildPost(m.authorID, m.link.Value(), m.caption.Value())
	if err != nil {
		m.err = err
		return m, nil
	}
	m.err = nil
	m.publishing = true

	feed := m.feed
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		it, err := feed.CreatePost(ctx, post)
		if err != nil {
			return publishedMsg{err: domain.MutationError("create post", err)}
		}
		return publishedMsg{item: it}
	}
}

// buildPost turns the form into a NewPost. Only YouTube links are accepted.
func buildPost(authorID, link, caption string) (app.NewPost, error) {
	videoID, err := domain.ParseVideoID(link)
	if err != nil {
		return app.NewPost{}, err
	}
	caption = strings.TrimSpace(caption)
	return app.NewPost{
		AuthorID:    authorID,
		OriginalURL: strings.TrimSpace(link),
		VideoID:     videoID,
		EmbedURL:    domain.StoredEmbedURL(videoID),
		Caption:     caption,
		Hashtags:    domain.ExtractHashtags(caption),
	}, nil
}

// done wraps a DoneMsg into a tea.Cmd for immediate delivery.
func done(msg DoneMsg) tea.Cmd {
	return func() tea.Msg { return msg }
}
