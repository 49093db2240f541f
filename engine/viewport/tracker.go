// Package viewport decides which single feed item is active from the scroll position
// and which items sit inside the live render window.
package viewport

import (
	"math"
	"strconv"
)

// Thresholds are the visible fractions at which the Observer samples an item.
var Thresholds = []float64{0.45, 0.6, 0.75}

// Entry is one sampled item: its index tag and the fraction of it inside the container.
type Entry struct {
	Tag   string
	Ratio float64
}

// Tracker owns ActiveIndex. It is not safe for concurrent use; the UI loop is its only caller.
type Tracker struct {
	count  int
	active int
}

// NewTracker returns a tracker for an empty list.
func NewTracker() *Tracker {
	return &Tracker{active: -1}
}

// Reset starts a fresh list. Active is 0 for a non-empty list and unset otherwise.
func (t *Tracker) Reset(count int) {
	t.count = max(0, count)
	if t.count == 0 {
		t.active = -1
		return
	}
	t.active = 0
}

// Active returns the active index, or false when the list is empty.
func (t *Tracker) Active() (int, bool) {
	if t.active < 0 {
		return 0, false
	}
	return t.active, true
}

// Count is the number of items the tracker knows about.
func (t *Tracker) Count() int { return t.count }

// Observe applies a batch of samples. The entry with the highest ratio at or above the
// lowest threshold wins; an equal ratio keeps the current item. Entries with a tag that
// is not a finite in-range integer are ignored. It reports whether ActiveIndex changed.
func (t *Tracker) Observe(entries []Entry) (int, bool) {
	best, bestRatio := -1, -1.0
	for _, e := range entries {
		idx, ok := t.parseTag(e.Tag)
		if !ok || e.Ratio < Thresholds[0] || math.IsNaN(e.Ratio) {
			continue
		}
		switch {
		case e.Ratio > bestRatio:
			best, bestRatio = idx, e.Ratio
		case e.Ratio == bestRatio && idx == t.active:
			best = idx
		}
	}
	if best < 0 {
		return t.active, false
	}
	return t.set(best)
}

// Step moves ActiveIndex by delta, clamped to the list bounds.
func (t *Tracker) Step(delta int) (int, bool) {
	if t.active < 0 {
		return 0, false
	}
	return t.set(max(0, min(t.count-1, t.active+delta)))
}

// Jump sets ActiveIndex directly, clamped to the list bounds.
func (t *Tracker) Jump(idx int) (int, bool) {
	if t.count == 0 {
		return 0, false
	}
	return t.set(max(0, min(t.count-1, idx)))
}

// Remove drops the item at idx from the list. The active item keeps its identity when
// possible; removing the active item makes the next one active.
func (t *Tracker) Remove(idx int) (int, bool) {
	if idx < 0 || idx >= t.count {
		return t.active, false
	}
	prev := t.active
	t.count--
	switch {
	case t.count == 0:
		t.active = -1
		return 0, true
	case idx < t.active:
		t.active--
	case t.active >= t.count:
		t.active = t.count - 1
	}
	// Indexes shift, so the caller must re-derive modes even when the number is unchanged.
	return t.active, t.active != prev || idx == prev
}

func (t *Tracker) set(idx int) (int, bool) {
	if idx == t.active {
		return idx, false
	}
	t.active = idx
	return idx, true
}

func (t *Tracker) parseTag(tag string) (int, bool) {
	f, err := strconv.ParseFloat(tag, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) {
		return 0, false
	}
	idx := int(f)
	if idx < 0 || idx >= t.count {
		return 0, false
	}
	return idx, true
}
