package numbering

import "math"

// MaxLevels is the number of heading levels tracked (H1..H6).
const MaxLevels = 6

// Counters holds the running count for each heading level; slot i tracks
// level i+1. Counters are plain value data owned by one Processor per
// document and never shared.
type Counters [MaxLevels]uint64

// NewCounters returns counters initialized to 1 for every level, so the
// first heading at any level renders as "1".
func NewCounters() Counters {
	var c Counters
	for i := range c {
		c[i] = 1
	}
	return c
}

// advance applies one heading event. prev is the previous heading's level,
// 0 when this is the document's first heading. The reported overflow means
// a counter wrapped and was reset to 1; callers log it and carry on.
func (c *Counters) advance(prev, cur int) (overflowed bool) {
	switch {
	case prev == 0:
		// First heading: counters stay at their initial 1.
		return false
	case cur == prev:
		return c.bump(cur)
	case cur > prev:
		// Entering a deeper section: everything between the previous
		// level (exclusive) and the new level (inclusive) restarts,
		// including skipped intermediate levels.
		for l := prev + 1; l <= cur; l++ {
			c[l-1] = 1
		}
		return false
	default:
		// Returning to a shallower level: continue its sequence and
		// restart everything nested beneath it.
		over := c.bump(cur)
		for l := cur + 1; l <= MaxLevels; l++ {
			c[l-1] = 1
		}
		return over
	}
}

func (c *Counters) bump(level int) (overflowed bool) {
	if c[level-1] == math.MaxUint64 {
		c[level-1] = 1
		return true
	}
	c[level-1]++
	return false
}
