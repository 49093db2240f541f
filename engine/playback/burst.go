package playback

import "time"

// BurstSchedule is part of the channel contract: surfaces give no readiness signal we can
// trust, so every activation and every "loaded" report resends the same commands at these
// delays. Sends are idempotent, so overlapping bursts are harmless.
type BurstSchedule struct {
	// Activate delays are measured from the moment an item becomes active or inactive.
	Activate []time.Duration
	// Loaded delays are measured from the surface's loaded signal.
	Loaded []time.Duration
}

// DefaultBursts returns the tuned defaults: 180/600/1200ms and 200/500/1000ms.
func DefaultBursts() BurstSchedule {
	return BurstSchedule{
		Activate: []time.Duration{180 * time.Millisecond, 600 * time.Millisecond, 1200 * time.Millisecond},
		Loaded:   []time.Duration{200 * time.Millisecond, 500 * time.Millisecond, 1000 * time.Millisecond},
	}
}

// BurstFromMillis builds a schedule from config values; empty lists fall back to the defaults.
func BurstFromMillis(activate, loaded []int) BurstSchedule {
	def := DefaultBursts()
	out := BurstSchedule{Activate: toDurations(activate), Loaded: toDurations(loaded)}
	if len(out.Activate) == 0 {
		out.Activate = def.Activate
	}
	if len(out.Loaded) == 0 {
		out.Loaded = def.Loaded
	}
	return out
}

func toDurations(ms []int) []time.Duration {
	out := make([]time.Duration, 0, len(ms))
	for _, v := range ms {
		if v >= 0 {
			out = append(out, time.Duration(v)*time.Millisecond)
		}
	}
	return out
}
