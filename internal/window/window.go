// Package window computes the slice of an ordered list that must be
// materialized for a given viewport, so render cost stays independent of
// total record count. Windows are recomputed against the current sequence
// on every call; positions are never cached by record identity, since
// inserts and deletes shift indices.
package window

// Defaults tuned for list rows around 64px tall. Below the activation
// threshold the whole list renders; the windowing overhead isn't worth it
// for short lists.
const (
	DefaultItemHeight = 64
	DefaultBuffer     = 5
	DefaultThreshold  = 100
)

// Config describes the fixed geometry of a windowed list
type Config struct {
	// ItemHeight is the fixed pixel height of one row
	ItemHeight int
	// Buffer is the number of extra rows materialized on each side of
	// the visible range for smooth scrolling
	Buffer int
	// Threshold is the minimum list length before windowing activates
	Threshold int
}

// DefaultConfig returns the default window geometry
func DefaultConfig() Config {
	return Config{
		ItemHeight: DefaultItemHeight,
		Buffer:     DefaultBuffer,
		Threshold:  DefaultThreshold,
	}
}

// Range is the contiguous index range [Start, End] to materialize.
// End < Start means nothing is rendered (empty list). Windowed reports
// whether windowing was active; when false the range covers the whole
// list.
type Range struct {
	Start    int  `json:"start"`
	End      int  `json:"end"`
	Windowed bool `json:"windowed"`
}

// Contains reports whether index i falls inside the range
func (r Range) Contains(i int) bool { return i >= r.Start && i <= r.End }

// Count returns the number of indices in the range
func (r Range) Count() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

// Compute returns the index range to materialize for a list of n items
// given the viewport height and scroll offset in pixels. The visible
// range is [floor(offset/h), visibleStart+ceil(viewport/h)-1], clamped to
// the list, and the rendered range widens it by the buffer on both sides.
func Compute(n int, cfg Config, viewportHeight, scrollOffset int) Range {
	if n <= 0 {
		return Range{Start: 0, End: -1}
	}
	if cfg.ItemHeight <= 0 {
		cfg.ItemHeight = DefaultItemHeight
	}
	if n < cfg.Threshold {
		return Range{Start: 0, End: n - 1}
	}
	if scrollOffset < 0 {
		scrollOffset = 0
	}
	if viewportHeight < 0 {
		viewportHeight = 0
	}

	visibleStart := scrollOffset / cfg.ItemHeight
	if visibleStart > n-1 {
		visibleStart = n - 1
	}
	visibleCount := (viewportHeight + cfg.ItemHeight - 1) / cfg.ItemHeight
	visibleEnd := visibleStart + visibleCount - 1
	if visibleEnd > n-1 {
		visibleEnd = n - 1
	}
	if visibleEnd < visibleStart {
		visibleEnd = visibleStart
	}

	start := visibleStart - cfg.Buffer
	if start < 0 {
		start = 0
	}
	end := visibleEnd + cfg.Buffer
	if end > n-1 {
		end = n - 1
	}
	return Range{Start: start, End: end, Windowed: true}
}
