package common

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
)

// FormatCount renders a counter compactly: 999, 1.2k, 3.4M.
func FormatCount(n int) string {
	switch {
	case n < 0:
		return "0"
	case n < 1000:
		return strconv.Itoa(n)
	case n < 1_000_000:
		return trimDecimal(float64(n)/1000) + "k"
	default:
		return trimDecimal(float64(n)/1_000_000) + "M"
	}
}

func trimDecimal(f float64) string {
	s := strconv.FormatFloat(f, 'f', 1, 64)
	return strings.TrimSuffix(s, ".0")
}

// RelativeTime renders t relative to now: "now", "5m", "3h", "2d", or a date.
func RelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return strconv.Itoa(int(d/time.Minute)) + "m"
	case d < 24*time.Hour:
		return strconv.Itoa(int(d/time.Hour)) + "h"
	case d < 7*24*time.Hour:
		return strconv.Itoa(int(d/(24*time.Hour))) + "d"
	default:
		return t.Format("Jan 02")
	}
}

// HintLine renders bindings as "key desc • key desc".
func HintLine(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		if h.Key == "" {
			continue
		}
		parts = append(parts, HintKeyStyle.Render(h.Key)+" "+h.Desc)
	}
	return strings.Join(parts, " • ")
}
