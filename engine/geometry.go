package engine

import "math"

type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec) Dist(o Vec) float64 {
	return math.Hypot(v.X-o.X, v.Y-o.Y)
}

// Rect is an axis-aligned box anchored at its top-left corner.
type Rect struct {
	X, Y, W, H float64
}

// Overlaps reports strict intersection; touching edges do not overlap.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.W && r.X+r.W > o.X && r.Y < o.Y+o.H && r.Y+r.H > o.Y
}

// Grow expands the rectangle by pad on every side.
func (r Rect) Grow(pad float64) Rect {
	return Rect{X: r.X - pad, Y: r.Y - pad, W: r.W + 2*pad, H: r.H + 2*pad}
}

// boxAround is the square footprint of half-extent half centred on p.
func boxAround(p Vec, half float64) Rect {
	return Rect{X: p.X - half, Y: p.Y - half, W: 2 * half, H: 2 * half}
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// ceilSeconds converts a remaining duration to whole seconds for display,
// never reporting a negative value.
func ceilSeconds(ms float64) int {
	if ms <= 0 {
		return 0
	}
	return int(math.Ceil(ms / 1000))
}
