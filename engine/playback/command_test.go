package playback

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/CrestNiraj12/clipflow/domain"
)

func TestCommandTuple(t *testing.T) {
	require.Equal(t, Tuple{Func: "mute", Args: []any{}}, Mute().Tuple())
	require.Equal(t, Tuple{Func: "setVolume", Args: []any{100}}, SetVolume(140).Tuple())
	require.Equal(t, "pauseVideo", Pause().Func.String())
	require.Equal(t, "setVolume(35)", SetVolume(35).String())
}

func TestAudioCommands(t *testing.T) {
	require.Equal(t, []Command{Mute()}, AudioCommands(domain.AudioPreference{Muted: true, Volume: 80}))
	require.Equal(t, []Command{Mute()}, AudioCommands(domain.AudioPreference{Muted: false, Volume: 0}))
	require.Equal(t, []Command{UnMute(), SetVolume(40)}, AudioCommands(domain.AudioPreference{Volume: 40}))
}

func TestBurstFromMillis(t *testing.T) {
	b := BurstFromMillis([]int{100, 300}, nil)
	require.Len(t, b.Activate, 2)
	require.Equal(t, DefaultBursts().Loaded, b.Loaded)
}
