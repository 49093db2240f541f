package viewport

import "strconv"

// Observer samples a column of equal-height pages inside a scroll container and reports
// the items whose visible fraction crossed one of the Thresholds since the last sample.
type Observer struct {
	buckets []int
}

// Reset forgets previous samples; the next Sample reports every visible item.
func (o *Observer) Reset() {
	o.buckets = o.buckets[:0]
}

// Sample computes entries for a container scrolled to offset lines, where item i
// occupies [i*page, (i+1)*page). Only crossing items are returned, as with a browser
// intersection observer; nil means nothing crossed and no decision is needed.
func (o *Observer) Sample(offset, page, count int) []Entry {
	if page <= 0 || count <= 0 {
		return nil
	}
	if len(o.buckets) != count {
		o.buckets = make([]int, count)
		for i := range o.buckets {
			o.buckets[i] = -1
		}
	}

	var crossed bool
	first := max(0, offset/page-1)
	last := min(count-1, (offset+page)/page+1)
	for i := range o.buckets {
		ratio := 0.0
		if i >= first && i <= last {
			ratio = VisibleRatio(i, offset, page)
		}
		b := bucket(ratio)
		if b != o.buckets[i] {
			o.buckets[i] = b
			crossed = true
		}
	}
	if !crossed {
		return nil
	}

	entries := make([]Entry, 0, 2)
	for i := first; i <= last; i++ {
		if r := VisibleRatio(i, offset, page); r > 0 {
			entries = append(entries, Entry{Tag: strconv.Itoa(i), Ratio: r})
		}
	}
	return entries
}

// VisibleRatio is the fraction of item i inside a viewport of height page at offset.
func VisibleRatio(i, offset, page int) float64 {
	top, bottom := i*page, (i+1)*page
	lo, hi := max(top, offset), min(bottom, offset+page)
	if hi <= lo {
		return 0
	}
	return float64(hi-lo) / float64(page)
}

func bucket(ratio float64) int {
	n := 0
	for _, th := range Thresholds {
		if ratio >= th {
			n++
		}
	}
	if n == 0 && ratio > 0 {
		return 0
	}
	if n == 0 {
		return -1
	}
	return n
}
