package domain

// Volume bounds for AudioPreference.
const (
	MinVolume     = 0
	MaxVolume     = 100
	DefaultVolume = 80
)

// AudioPreference is the process-wide mute/volume setting applied to the active item.
type AudioPreference struct {
	Muted  bool
	Volume int
}

// DefaultAudio is used when nothing was persisted yet.
func DefaultAudio() AudioPreference {
	return AudioPreference{Muted: true, Volume: DefaultVolume}
}

// Silent reports whether the surface should be muted.
func (a AudioPreference) Silent() bool {
	return a.Muted || a.Volume <= MinVolume
}

// WithVolume sets the volume, clamped to [0,100]. Zero forces muted; anything above unmutes.
func (a AudioPreference) WithVolume(v int) AudioPreference {
	a.Volume = ClampVolume(v)
	a.Muted = a.Volume <= MinVolume
	return a
}

// ToggleMute flips the muted flag.
func (a AudioPreference) ToggleMute() AudioPreference {
	a.Muted = !a.Muted
	return a
}

// Normalize clamps volume and re-applies the volume<=0 rule. Used on values read from disk.
func (a AudioPreference) Normalize() AudioPreference {
	a.Volume = ClampVolume(a.Volume)
	if a.Volume <= MinVolume {
		a.Muted = true
	}
	return a
}

// ClampVolume restricts v to [MinVolume, MaxVolume].
func ClampVolume(v int) int {
	return max(MinVolume, min(MaxVolume, v))
}
