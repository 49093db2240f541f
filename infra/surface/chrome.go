package surface

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/CrestNiraj12/clipflow/domain"
	"github.com/CrestNiraj12/clipflow/engine/playback"
)

// ChromeOpener hosts each player in its own tab of one Chrome instance.
type ChromeOpener struct {
	browserCtx context.Context
	cancel     context.CancelFunc
	log        *log.Helper
}

var _ playback.Opener = (*ChromeOpener)(nil)

// NewChromeOpener starts Chrome. Autoplay with sound is allowed without a user gesture.
func NewChromeOpener(ctx context.Context, headless bool, logger log.Logger) (*ChromeOpener, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", headless),
		chromedp.Flag("disable-gpu", headless),
		chromedp.Flag("autoplay-policy", "no-user-gesture-required"),
		chromedp.Flag("mute-audio", false),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(420, 760),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("start chrome: %w", err)
	}
	return &ChromeOpener{
		browserCtx: browserCtx,
		cancel: func() {
			cancelBrowser()
			cancelAlloc()
		},
		log: log.NewHelper(log.With(logger, "module", "surface/chrome")),
	}, nil
}

// Open creates a tab for the target and navigates it to the host page.
func (o *ChromeOpener) Open(ctx context.Context, t playback.Target, onLoaded func()) (playback.Surface, error) {
	playerURL, err := domain.PlayerURL(t.EmbedURL, domain.PlayerOptions{Autoplay: t.Autoplay, Muted: t.Muted})
	if err != nil {
		return nil, fmt.Errorf("player url: %w", err)
	}

	tabCtx, cancel := chromedp.NewContext(o.browserCtx)
	chromedp.ListenTarget(tabCtx, func(ev any) {
		if e, ok := ev.(*runtime.EventBindingCalled); ok && e.Name == loadedBinding {
			go onLoaded()
		}
	})

	stop := context.AfterFunc(ctx, cancel)
	err = chromedp.Run(tabCtx,
		runtime.AddBinding(loadedBinding),
		chromedp.Navigate(dataURL(hostPage(playerURL))),
	)
	stop()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("open tab for %s: %w", t.ItemID, err)
	}
	o.log.Debugw("msg", "surface opened", "item", t.ItemID)
	return &chromeSurface{tabCtx: tabCtx, cancel: cancel}, nil
}

// Close shuts Chrome down.
func (o *ChromeOpener) Close() {
	o.cancel()
}

type chromeSurface struct {
	tabCtx context.Context
	cancel context.CancelFunc
	once   sync.Once
}

func (s *chromeSurface) Send(ctx context.Context, cmd playback.Command) error {
	if s.tabCtx.Err() != nil {
		return domain.ErrSurfaceGone
	}
	msg, err := encodeCommand(cmd)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithTimeout(s.tabCtx, 2*time.Second)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var delivered bool
	if err := chromedp.Run(runCtx, chromedp.Evaluate(postMessageJS(msg), &delivered)); err != nil {
		return fmt.Errorf("post %s: %w", cmd, err)
	}
	if !delivered {
		return errors.New("player frame not ready")
	}
	return nil
}

func (s *chromeSurface) Close() error {
	s.once.Do(s.cancel)
	return nil
}
