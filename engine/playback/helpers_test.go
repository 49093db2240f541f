package playback

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/require"
)

type fakeSurface struct {
	mu     sync.Mutex
	cmds   []Command
	closed bool
	block  chan struct{}
}

func (f *fakeSurface) Send(ctx context.Context, cmd Command) error {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cmds = append(f.cmds, cmd)
	return nil
}

func (f *fakeSurface) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeSurface) received() []Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Command(nil), f.cmds...)
}

func (f *fakeSurface) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func newTestChannel(t *testing.T) *Channel {
	t.Helper()
	ch := NewChannel(log.DefaultLogger, 0)
	t.Cleanup(ch.Close)
	return ch
}

func waitForCommands(t *testing.T, s *fakeSurface, n int) []Command {
	t.Helper()
	require.Eventually(t, func() bool { return len(s.received()) >= n }, time.Second, 5*time.Millisecond)
	return s.received()
}

func funcs(cmds []Command) []Func {
	out := make([]Func, 0, len(cmds))
	for _, c := range cmds {
		out = append(out, c.Func)
	}
	return out
}
