package surface

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/redis/go-redis/v9"

	"github.com/CrestNiraj12/clipflow/domain"
	"github.com/CrestNiraj12/clipflow/engine/playback"
)

// RelayChannel is where a companion player page listens for one item.
func RelayChannel(itemID string) string {
	return "clipflow:surface:" + itemID
}

// RelayLoadedChannel is where the companion page reports its player loaded.
func RelayLoadedChannel(itemID string) string {
	return RelayChannel(itemID) + ":loaded"
}

type mountMessage struct {
	Event     string `json:"event"`
	PlayerURL string `json:"player_url,omitempty"`
}

// RelayOpener forwards surfaces to a companion screen over Redis pub/sub: mount and
// unmount notices plus the same {func, args} commands an iframe would receive.
type RelayOpener struct {
	rdb    *redis.Client
	origin string
	log    *log.Helper
}

var _ playback.Opener = (*RelayOpener)(nil)

// NewRelayOpener publishes on rdb. origin is passed to the player URL for the companion page.
func NewRelayOpener(rdb *redis.Client, origin string, logger log.Logger) *RelayOpener {
	return &RelayOpener{rdb: rdb, origin: origin, log: log.NewHelper(log.With(logger, "module", "surface/relay"))}
}

// Open announces the mount and listens for the companion's loaded reports.
func (o *RelayOpener) Open(ctx context.Context, t playback.Target, onLoaded func()) (playback.Surface, error) {
	playerURL, err := domain.PlayerURL(t.EmbedURL, domain.PlayerOptions{Autoplay: t.Autoplay, Muted: t.Muted, Origin: o.origin})
	if err != nil {
		return nil, fmt.Errorf("player url: %w", err)
	}

	sub := o.rdb.Subscribe(ctx, RelayLoadedChannel(t.ItemID))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe loaded %s: %w", t.ItemID, err)
	}
	msgs := sub.Channel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for range msgs {
			onLoaded()
		}
	}()

	s := &relaySurface{rdb: o.rdb, itemID: t.ItemID, sub: sub, done: done, log: o.log}
	if err := s.publish(ctx, mountMessage{Event: "mount", PlayerURL: playerURL}); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

type relaySurface struct {
	rdb    *redis.Client
	itemID string
	sub    *redis.PubSub
	done   chan struct{}
	once   sync.Once
	log    *log.Helper
}

func (s *relaySurface) Send(ctx context.Context, cmd playback.Command) error {
	msg, err := encodeCommand(cmd)
	if err != nil {
		return err
	}
	if err := s.rdb.Publish(ctx, RelayChannel(s.itemID), msg).Err(); err != nil {
		return fmt.Errorf("relay %s: %w", cmd, err)
	}
	return nil
}

func (s *relaySurface) publish(ctx context.Context, m mountMessage) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return err
	}
	if err := s.rdb.Publish(ctx, RelayChannel(s.itemID), payload).Err(); err != nil {
		return fmt.Errorf("relay %s: %w", m.Event, err)
	}
	return nil
}

func (s *relaySurface) Close() error {
	var err error
	s.once.Do(func() {
		if perr := s.publish(context.Background(), mountMessage{Event: "unmount"}); perr != nil {
			s.log.Debugw("msg", "unmount notice failed", "item", s.itemID, "error", perr)
		}
		err = s.sub.Close()
		<-s.done
	})
	return err
}

// NoneOpener mounts surfaces that accept every command and never load. The feed then
// shows thumbnails only.
type NoneOpener struct{}

var _ playback.Opener = NoneOpener{}

func (NoneOpener) Open(context.Context, playback.Target, func()) (playback.Surface, error) {
	return noneSurface{}, nil
}

type noneSurface struct{}

func (noneSurface) Send(context.Context, playback.Command) error { return nil }
func (noneSurface) Close() error { return nil }
