package playback

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/CrestNiraj12/clipflow/domain"
)

// DefaultQueueSize bounds the commands buffered per surface before the oldest is dropped.
const DefaultQueueSize = 16

const sendTimeout = 2 * time.Second

var errQueueFull = errors.New("surface queue full")

// Stats counts delivered and dropped commands since the channel was created.
type Stats struct {
	Sent    uint64
	Dropped uint64
	Failed  uint64
}

// Channel delivers commands to mounted surfaces without ever blocking the caller.
// Each surface gets one worker goroutine draining a bounded queue. A queued command is
// replaced by a newer one for the same setting, and a full queue drops its oldest entry,
// so the surface always ends on the latest state. Failed deliveries are logged and
// otherwise ignored.
type Channel struct {
	mu     sync.Mutex
	lanes  map[string]*lane
	size   int
	stats  Stats
	wg     sync.WaitGroup
	closed bool
	log    *log.Helper
}

type lane struct {
	surface Surface
	pending []Command
	wake    chan struct{}
	cancel  context.CancelFunc
}

// setting groups commands that overwrite each other on the player.
func setting(f Func) int {
	switch f {
	case FuncMute, FuncUnMute:
		return 0
	case FuncSetVolume:
		return 1
	default:
		return 2
	}
}

// NewChannel creates a channel whose per-surface queue holds size commands.
func NewChannel(logger log.Logger, size int) *Channel {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Channel{
		lanes: make(map[string]*lane),
		size:  size,
		log:   log.NewHelper(log.With(logger, "module", "playback/channel")),
	}
}

// Mount attaches s as the surface for itemID, replacing and closing any previous one.
func (c *Channel) Mount(itemID string, s Surface) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		_ = s.Close()
		return
	}
	c.unmountLocked(itemID)

	ctx, cancel := context.WithCancel(context.Background())
	l := &lane{surface: s, wake: make(chan struct{}, 1), cancel: cancel}
	c.lanes[itemID] = l
	c.wg.Add(1)
	go c.drain(ctx, itemID, l)
}

// Unmount tears down the surface for itemID. Queued commands are discarded.
func (c *Channel) Unmount(itemID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unmountLocked(itemID)
}

// Mounted reports whether a surface is attached for itemID.
func (c *Channel) Mounted(itemID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.lanes[itemID]
	return ok
}

// Send queues cmd for itemID. It returns a KindChannelSendSkipped error when the surface is
// not mounted; callers are free to ignore it.
func (c *Channel) Send(itemID string, cmd Command) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.lanes[itemID]
	if !ok {
		c.stats.Dropped++
		c.log.Debugw("msg", "send skipped", "item", itemID, "cmd", cmd.String(), "reason", domain.ErrSurfaceGone)
		return domain.SendSkipped(domain.ErrSurfaceGone)
	}
	l.pending = slices.DeleteFunc(l.pending, func(q Command) bool {
		return setting(q.Func) == setting(cmd.Func)
	})
	l.pending = append(l.pending, cmd)
	if len(l.pending) > c.size {
		dropped := l.pending[0]
		l.pending = l.pending[1:]
		c.stats.Dropped++
		c.log.Debugw("msg", "dropped oldest", "item", itemID, "cmd", dropped.String(), "reason", errQueueFull)
	}
	select {
	case l.wake <- struct{}{}:
	default:
	}
	return nil
}

// Stats returns a snapshot of the delivery counters.
func (c *Channel) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Close unmounts every surface and waits for the workers to exit.
func (c *Channel) Close() {
	c.mu.Lock()
	c.closed = true
	for id := range c.lanes {
		c.unmountLocked(id)
	}
	c.mu.Unlock()
	c.wg.Wait()
}

func (c *Channel) unmountLocked(itemID string) {
	l, ok := c.lanes[itemID]
	if !ok {
		return
	}
	delete(c.lanes, itemID)
	l.cancel()
}

func (c *Channel) drain(ctx context.Context, itemID string, l *lane) {
	defer c.wg.Done()
	defer func() {
		if err := l.surface.Close(); err != nil {
			c.log.Debugw("msg", "surface close failed", "item", itemID, "err", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-l.wake:
		}
		for {
			cmd, ok := c.next(l)
			if !ok || ctx.Err() != nil {
				break
			}
			sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
			err := l.surface.Send(sendCtx, cmd)
			cancel()

			c.mu.Lock()
			if err != nil {
				c.stats.Failed++
			} else {
				c.stats.Sent++
			}
			c.mu.Unlock()
			if err != nil {
				c.log.Debugw("msg", "surface send failed", "item", itemID, "cmd", cmd.String(), "err", err)
			}
		}
	}
}

func (c *Channel) next(l *lane) (Command, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(l.pending) == 0 {
		return Command{}, false
	}
	cmd := l.pending[0]
	l.pending = l.pending[1:]
	return cmd, true
}
