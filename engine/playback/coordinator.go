package playback

import (
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/CrestNiraj12/clipflow/domain"
	"github.com/CrestNiraj12/clipflow/engine/viewport"
)

// Mode is an item's player lifecycle state.
type Mode int

const (
	ModeHidden   Mode = iota // no surface
	ModeInactive             // surface mounted, paused
	ModeActive               // surface mounted, the one allowed to play
)

func (m Mode) String() string {
	switch m {
	case ModeInactive:
		return "loaded-inactive"
	case ModeActive:
		return "active"
	default:
		return "hidden"
	}
}

const (
	mountRetryBase = time.Second
	mountRetryMax  = 30 * time.Second
)

// Intent is what a burst tick is trying to achieve.
type Intent int

const (
	IntentPause Intent = iota
	IntentPlay
)

// Fire identifies one delayed burst send. It is only honoured while Epoch is current.
type Fire struct {
	ItemID string
	Epoch  uint64
	Intent Intent
}

// Timer asks the caller to deliver Fire back to Coordinator.Fire after Delay.
type Timer struct {
	Delay time.Duration
	Fire  Fire
}

// MountRequest asks the caller to open a surface and hand it to Attach with the same Seq.
type MountRequest struct {
	Seq    uint64
	Target Target
}

// Dispatch is a command the coordinator queued on the channel.
type Dispatch struct {
	ItemID string
	Cmd    Command
}

// Effects is what a transition asks of the caller, plus what it already sent.
type Effects struct {
	Timers []Timer
	Mounts []MountRequest
	Sent   []Dispatch
}

// Empty reports whether there is nothing for the caller to do.
func (e Effects) Empty() bool {
	return len(e.Timers) == 0 && len(e.Mounts) == 0
}

// Item is the part of a feed item the coordinator needs.
type Item struct {
	ID       string
	EmbedURL string
}

type slot struct {
	mode    Mode
	epoch   uint64
	seq     uint64
	loaded  bool
	playing bool
}

// Coordinator owns per-item player lifecycle and is driven from a single goroutine.
// Timers are never cancelled directly: any transition bumps the item's epoch and a
// Fire carrying an older epoch is dropped.
type Coordinator struct {
	ch     *Channel
	bursts BurstSchedule
	audio  domain.AudioPreference

	slots    map[string]*slot
	failures map[string]int
	order    []Item
	active int
	nextID uint64
	log    *log.Helper
}

// NewCoordinator returns a coordinator with no items.
func NewCoordinator(ch *Channel, bursts BurstSchedule, audio domain.AudioPreference, logger log.Logger) *Coordinator {
	return &Coordinator{
		ch:     ch,
		bursts: bursts,
		audio:  audio.Normalize(),
		slots:    make(map[string]*slot),
		failures: make(map[string]int),
		active:   -1,
		log:    log.NewHelper(log.With(logger, "module", "playback/coordinator")),
	}
}

// SetItems replaces the item sequence and ActiveIndex. Items keep their surfaces across
// calls when their id stays inside the window.
func (c *Coordinator) SetItems(items []Item, active int) Effects {
	c.order = append(c.order[:0:0], items...)
	if len(items) == 0 {
		active = -1
	}
	c.active = active
	return c.reconcile()
}

// SetActive moves ActiveIndex.
func (c *Coordinator) SetActive(active int) Effects {
	if active == c.active {
		return Effects{}
	}
	c.active = active
	return c.reconcile()
}

// Reconcile re-applies the window to the current items, mounting any windowed item that
// has no surface. It is how a failed mount gets retried.
func (c *Coordinator) Reconcile() Effects { return c.reconcile() }

// Active returns the current ActiveIndex, or -1.
func (c *Coordinator) Active() int { return c.active }

func (c *Coordinator) reconcile() Effects {
	var eff Effects
	modes := viewport.Window(len(c.order), c.active)
	want := make(map[string]Mode, len(c.order))
	for i, it := range c.order {
		switch {
		case i == c.active:
			want[it.ID] = ModeActive
		case modes[i] == viewport.Loaded:
			want[it.ID] = ModeInactive
		}
	}

	for id := range c.failures {
		if _, ok := want[id]; !ok {
			delete(c.failures, id)
		}
	}

	// Pause and teardown first so no two items are ever asked to play at once.
	for id, s := range c.slots {
		switch m, ok := want[id]; {
		case !ok:
			c.hide(id, s, &eff)
		case s.mode == ModeActive && m != ModeActive:
			c.deactivate(id, s, &eff)
		}
	}
	for _, it := range c.order {
		m, ok := want[it.ID]
		if !ok {
			continue
		}
		s, mounted := c.slots[it.ID]
		if !mounted {
			s = c.mount(it, m, &eff)
		}
		if m == ModeActive && s.mode != ModeActive {
			c.activate(it.ID, s, &eff)
		}
	}
	return eff
}

func (c *Coordinator) mount(it Item, m Mode, eff *Effects) *slot {
	c.nextID++
	s := &slot{mode: ModeInactive, seq: c.nextID, epoch: c.nextID}
	c.slots[it.ID] = s
	eff.Mounts = append(eff.Mounts, MountRequest{
		Seq: s.seq,
		Target: Target{
			ItemID:   it.ID,
			EmbedURL: it.EmbedURL,
			Autoplay: m == ModeActive,
			Muted:    c.audio.Silent(),
		},
	})
	return s
}

func (c *Coordinator) activate(id string, s *slot, eff *Effects) {
	s.mode = ModeActive
	c.bump(s)
	c.schedule(id, s, IntentPlay, c.bursts.Activate, eff)
}

func (c *Coordinator) deactivate(id string, s *slot, eff *Effects) {
	s.mode = ModeInactive
	c.bump(s)
	c.send(id, Pause(), eff)
	s.playing = false
	c.schedule(id, s, IntentPause, c.bursts.Activate, eff)
}

func (c *Coordinator) hide(id string, s *slot, eff *Effects) {
	if s.mode == ModeActive || s.playing {
		c.send(id, Pause(), eff)
	}
	delete(c.slots, id)
	c.ch.Unmount(id)
}

func (c *Coordinator) bump(s *slot) {
	c.nextID++
	s.epoch = c.nextID
}

func (c *Coordinator) schedule(id string, s *slot, intent Intent, delays []time.Duration, eff *Effects) {
	for _, d := range delays {
		eff.Timers = append(eff.Timers, Timer{Delay: d, Fire: Fire{ItemID: id, Epoch: s.epoch, Intent: intent}})
	}
}

func (c *Coordinator) send(id string, cmd Command, eff *Effects) {
	if err := c.ch.Send(id, cmd); err != nil {
		return
	}
	eff.Sent = append(eff.Sent, Dispatch{ItemID: id, Cmd: cmd})
}

// Attach hands the coordinator a surface opened for a MountRequest. It returns false when
// the request went stale; the caller must then close the surface.
func (c *Coordinator) Attach(itemID string, seq uint64, surface Surface) (Effects, bool) {
	var eff Effects
	s, ok := c.slots[itemID]
	if !ok || s.seq != seq {
		return eff, false
	}
	c.ch.Mount(itemID, surface)
	delete(c.failures, itemID)
	if s.loaded {
		c.schedule(itemID, s, c.intent(s), c.bursts.Loaded, &eff)
	}
	return eff, true
}

// MountFailed drops the slot of a surface that could not be opened so the item shows its
// placeholder. It returns how long the caller should wait before calling Reconcile to
// retry; the delay doubles per consecutive failure of the same item. ok is false for a
// stale request.
func (c *Coordinator) MountFailed(itemID string, seq uint64) (retry time.Duration, ok bool) {
	s, found := c.slots[itemID]
	if !found || s.seq != seq {
		return 0, false
	}
	delete(c.slots, itemID)
	c.failures[itemID]++
	retry = mountRetryBase << min(c.failures[itemID]-1, 5)
	return min(retry, mountRetryMax), true
}

// SurfaceLoaded handles a surface's generic loaded signal by scheduling a burst for
// whatever the item should currently be doing. A signal that beats Attach is remembered
// and the burst is scheduled on attach.
func (c *Coordinator) SurfaceLoaded(itemID string, seq uint64) Effects {
	var eff Effects
	s, ok := c.slots[itemID]
	if !ok || s.seq != seq {
		return eff
	}
	s.loaded = true
	if !c.ch.Mounted(itemID) {
		return eff
	}
	c.schedule(itemID, s, c.intent(s), c.bursts.Loaded, &eff)
	return eff
}

func (c *Coordinator) intent(s *slot) Intent {
	if s.mode == ModeActive {
		return IntentPlay
	}
	return IntentPause
}

// Fire delivers one burst tick. It re-checks, immediately before sending, that the
// epoch is current, the item still wants this intent, and its surface is mounted.
// It returns the commands sent; nil means the tick was stale.
func (c *Coordinator) Fire(f Fire) []Command {
	s, ok := c.slots[f.ItemID]
	if !ok || s.epoch != f.Epoch || !c.ch.Mounted(f.ItemID) {
		c.log.Debugw("msg", "stale burst tick", "item", f.ItemID, "epoch", f.Epoch)
		return nil
	}
	var cmds []Command
	switch {
	case f.Intent == IntentPlay && s.mode == ModeActive:
		cmds = append(AudioCommands(c.audio), Play())
		s.playing = true
	case f.Intent == IntentPause && s.mode != ModeActive:
		cmds = []Command{Pause()}
		s.playing = false
	default:
		return nil
	}
	for _, cmd := range cmds {
		_ = c.ch.Send(f.ItemID, cmd)
	}
	return cmds
}

// SetAudio applies a new preference. Only the active item receives it, immediately and
// without a burst.
func (c *Coordinator) SetAudio(p domain.AudioPreference) []Command {
	c.audio = p.Normalize()
	id, ok := c.activeID()
	if !ok || !c.ch.Mounted(id) {
		return nil
	}
	cmds := AudioCommands(c.audio)
	for _, cmd := range cmds {
		_ = c.ch.Send(id, cmd)
	}
	return cmds
}

// Audio returns the preference the coordinator applies.
func (c *Coordinator) Audio() domain.AudioPreference { return c.audio }

// ModeOf returns an item's lifecycle state.
func (c *Coordinator) ModeOf(itemID string) Mode {
	if s, ok := c.slots[itemID]; ok {
		return s.mode
	}
	return ModeHidden
}

// Loaded reports whether the item's surface has signalled loaded; until then the caller
// shows the placeholder.
func (c *Coordinator) Loaded(itemID string) bool {
	s, ok := c.slots[itemID]
	return ok && s.loaded
}

// Playing returns the ids last told to play and not told to pause since.
func (c *Coordinator) Playing() []string {
	var out []string
	for id, s := range c.slots {
		if s.playing {
			out = append(out, id)
		}
	}
	return out
}

// Close pauses the active item and unmounts everything.
func (c *Coordinator) Close() {
	var eff Effects
	for id, s := range c.slots {
		c.hide(id, s, &eff)
	}
	c.order = nil
	c.active = -1
}

func (c *Coordinator) activeID() (string, bool) {
	if c.active < 0 || c.active >= len(c.order) {
		return "", false
	}
	return c.order[c.active].ID, true
}
