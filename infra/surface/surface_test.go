package surface

import (
	"context"
	"encoding/json"
	"io"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/CrestNiraj12/clipflow/domain"
	"github.com/CrestNiraj12/clipflow/engine/playback"
)

func TestEncodeCommand(t *testing.T) {
	msg, err := encodeCommand(playback.SetVolume(40))
	require.NoError(t, err)
	require.JSONEq(t, `{"event":"command","func":"setVolume","args":[40]}`, string(msg))

	msg, err = encodeCommand(playback.Mute())
	require.NoError(t, err)
	require.JSONEq(t, `{"event":"command","func":"mute","args":[]}`, string(msg))
}

func TestPostMessageSendsJSONString(t *testing.T) {
	msg, err := encodeCommand(playback.Play())
	require.NoError(t, err)

	js := postMessageJS(msg)
	require.Contains(t, js, `postMessage(JSON.stringify({"event":"command","func":"playVideo","args":[]}), '*')`)
}

func TestHostPageDataURL(t *testing.T) {
	player := "https://www.youtube.com/embed/abc123?autoplay=1&enablejsapi=1"
	u := dataURL(hostPage(player))
	require.True(t, strings.HasPrefix(u, "data:text/html;charset=utf-8,"))
	require.NotContains(t, u, " ")
	require.NotContains(t, u, "#")

	html, err := url.PathUnescape(strings.TrimPrefix(u, "data:text/html;charset=utf-8,"))
	require.NoError(t, err)
	require.Contains(t, html, `id="player"`)
	require.Contains(t, html, loadedBinding+"('loaded')")
	require.Contains(t, html, "autoplay=1")
}

func TestRelaySurfaceRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	ctx := context.Background()

	companion := rdb.Subscribe(ctx, RelayChannel("p1"))
	_, err := companion.Receive(ctx)
	require.NoError(t, err)
	defer companion.Close()
	inbox := companion.Channel()

	var loaded atomic.Int32
	opener := NewRelayOpener(rdb, "https://clipflow.local", log.NewStdLogger(io.Discard))
	s, err := opener.Open(ctx, playback.Target{ItemID: "p1", EmbedURL: domain.StoredEmbedURL("abcdef1"), Autoplay: true, Muted: true}, func() { loaded.Add(1) })
	require.NoError(t, err)

	var mount mountMessage
	require.NoError(t, json.Unmarshal([]byte(receive(t, inbox)), &mount))
	require.Equal(t, "mount", mount.Event)
	require.Contains(t, mount.PlayerURL, "mute=1")
	require.Contains(t, mount.PlayerURL, "origin=")

	require.NoError(t, s.Send(ctx, playback.Pause()))
	require.JSONEq(t, `{"event":"command","func":"pauseVideo","args":[]}`, receive(t, inbox))

	mr.Publish(RelayLoadedChannel("p1"), "ok")
	require.Eventually(t, func() bool { return loaded.Load() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, s.Close())
	require.JSONEq(t, `{"event":"unmount"}`, receive(t, inbox))
}

func TestNoneSurface(t *testing.T) {
	s, err := NoneOpener{}.Open(context.Background(), playback.Target{ItemID: "x"}, func() { t.Fatal("none never loads") })
	require.NoError(t, err)
	require.NoError(t, s.Send(context.Background(), playback.Play()))
	require.NoError(t, s.Close())
}

func receive(t *testing.T, ch <-chan *redis.Message) string {
	t.Helper()
	select {
	case m := <-ch:
		return m.Payload
	case <-time.After(time.Second):
		t.Fatal("no relay message")
		return ""
	}
}
