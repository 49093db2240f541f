package feed

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/image/draw"

	"github.com/CrestNiraj12/clipflow/domain"
	"github.com/CrestNiraj12/clipflow/engine/viewport"
)

var thumbnailClient = &http.Client{Timeout: 6 * time.Second}

// ensureThumbnails fetches placeholders for every item inside the render window.
func (m *Model) ensureThumbnails() tea.Cmd {
	active, ok := m.tracker.Active()
	if !ok {
		return nil
	}
	var cmds []tea.Cmd
	for i, mode := range viewport.Window(len(m.items), active) {
		if mode != viewport.Loaded {
			continue
		}
		id := m.items[i].VideoRef
		if id == "" {
			continue
		}
		if _, ok := m.thumbs[id]; ok || m.thumbLoading[id] {
			continue
		}
		m.thumbLoading[id] = true
		cmds = append(cmds, fetchThumbnail(id, thumbnailWidth, thumbnailHeight))
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

func fetchThumbnail(videoID string, w, h int) tea.Cmd {
	return func() tea.Msg {
		preview, err := loadThumbnail(domain.ThumbnailURL(videoID), w, h)
		return ThumbnailLoadedMsg{VideoID: videoID, Preview: preview, Err: err}
	}
}

func loadThumbnail(url string, w, h int) (string, error) {
	resp, err := thumbnailClient.Get(url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("thumbnail status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 2*1024*1024))
	if err != nil {
		return "", err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	return renderANSIThumbnail(img, w, h), nil
}

// renderANSIThumbnail paints img as w×h cells of truecolor background blocks.
func renderANSIThumbnail(img image.Image, w, h int) string {
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return ""
	}
	w, h = max(w, 4), max(h, 2)
	small := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(small, small.Bounds(), img, b, draw.Src, nil)

	var out strings.Builder
	for y := range h {
		for x := range w {
			c := small.NRGBAAt(x, y)
			fmt.Fprintf(&out, "\x1b[48;2;%d;%d;%dm  \x1b[0m", c.R, c.G, c.B)
		}
		if y < h-1 {
			out.WriteByte('\n')
		}
	}
	return out.String()
}

// placeholderBox is drawn while no thumbnail is available.
func placeholderBox(w, h int) string {
	line := strings.Repeat("░", w*2)
	rows := make([]string, h)
	for i := range rows {
		rows[i] = line
	}
	return strings.Join(rows, "\n")
}
