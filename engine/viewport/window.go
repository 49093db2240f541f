package viewport

// RenderMode is derived per item from ActiveIndex; it is never stored.
type RenderMode int

const (
	Hidden RenderMode = iota // thumbnail only
	Loaded                   // embedded surface mounted
)

func (m RenderMode) String() string {
	if m == Loaded {
		return "loaded"
	}
	return "hidden"
}

// WindowRadius is how many neighbours on each side of the active item stay Loaded.
const WindowRadius = 2

// ModeFor returns Loaded when |i-active| <= WindowRadius.
func ModeFor(i, active int) RenderMode {
	d := i - active
	if d < 0 {
		d = -d
	}
	if d <= WindowRadius {
		return Loaded
	}
	return Hidden
}

// Window returns the render mode of every item. An empty list or a negative active
// index yields all Hidden.
func Window(count, active int) []RenderMode {
	modes := make([]RenderMode, max(0, count))
	if active < 0 {
		return modes
	}
	for i := range modes {
		modes[i] = ModeFor(i, active)
	}
	return modes
}
