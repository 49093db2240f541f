// Package playback drives embedded video surfaces through a one-way, unacknowledged
// command channel and keeps at most one of them playing.
package playback

import (
	"context"
	"strconv"

	"github.com/CrestNiraj12/clipflow/domain"
)

// Func is the closed set of player functions a surface understands.
type Func int

const (
	FuncMute Func = iota
	FuncUnMute
	FuncSetVolume
	FuncPlay
	FuncPause
)

func (f Func) String() string {
	switch f {
	case FuncMute:
		return "mute"
	case FuncUnMute:
		return "unMute"
	case FuncSetVolume:
		return "setVolume"
	case FuncPlay:
		return "playVideo"
	case FuncPause:
		return "pauseVideo"
	default:
		return "unknown"
	}
}

// Command is one player call. Volume is only meaningful for FuncSetVolume.
// Every command is idempotent: resending it to a surface already in that state is harmless.
type Command struct {
	Func   Func
	Volume int
}

func Mute() Command { return Command{Func: FuncMute} }
func UnMute() Command { return Command{Func: FuncUnMute} }
func Play() Command { return Command{Func: FuncPlay} }
func Pause() Command { return Command{Func: FuncPause} }
func SetVolume(v int) Command { return Command{Func: FuncSetVolume, Volume: domain.ClampVolume(v)} }

func (c Command) String() string {
	if c.Func == FuncSetVolume {
		return c.Func.String() + "(" + strconv.Itoa(c.Volume) + ")"
	}
	return c.Func.String()
}

// Tuple is the wire form a surface receives.
type Tuple struct {
	Func string `json:"func"`
	Args []any  `json:"args"`
}

// Tuple renders the command as {func, args}.
func (c Command) Tuple() Tuple {
	args := []any{}
	if c.Func == FuncSetVolume {
		args = append(args, c.Volume)
	}
	return Tuple{Func: c.Func.String(), Args: args}
}

// AudioCommands applies an AudioPreference: mute when silent, otherwise unMute then setVolume.
func AudioCommands(p domain.AudioPreference) []Command {
	if p.Silent() {
		return []Command{Mute()}
	}
	return []Command{UnMute(), SetVolume(p.Volume)}
}

// Surface is a mounted embedded player. Send must not panic after Close.
type Surface interface {
	Send(ctx context.Context, cmd Command) error
	Close() error
}

// Target describes the surface to mount for one item.
type Target struct {
	ItemID   string
	EmbedURL string
	Autoplay bool
	Muted    bool
}

// Opener creates surfaces. onLoaded may be called from any goroutine, at most once per
// underlying page load, and carries no information beyond "loaded".
type Opener interface {
	Open(ctx context.Context, t Target, onLoaded func()) (Surface, error)
}
