package engine

import "fmt"

// GenerateObstacles lays out the obstacles for a round. Obstacles come in
// pairs mirrored about the horizontal centre line, one per half, so neither
// team gets a different court. The pair count grows with the round up to
// Settings.ObstaclePairCap. Randomised placement is tried first; whatever it
// cannot place is attempted at fixed fallback slots. Pairs that still do not
// fit are skipped, so a crowded court can end up with fewer obstacles.
func GenerateObstacles(round int, players []*Player, s Settings, rng *RNG) []Obstacle {
	perSide := min(max(1, round), s.ObstaclePairCap)
	want := perSide * 2
	g := &obstacleGen{round: round, players: players, s: s, rng: rng, buffer: s.obstacleBuffer()}

	for i := 0; i < perSide; i++ {
		if !g.tryRandomPair() {
			break
		}
	}
	if remaining := perSide - len(g.placed)/2; remaining > 0 {
		g.fallbackPairs(remaining)
	}
	if len(g.placed) > want {
		g.placed = g.placed[:want]
	}
	return g.placed
}

type obstacleGen struct {
	round   int
	players []*Player
	s       Settings
	rng     *RNG
	buffer  float64
	placed  []Obstacle
}

func (g *obstacleGen) tryRandomPair() bool {
	s := g.s
	for attempt := 0; attempt < s.ObstacleMaxTries; attempt++ {
		w := g.rng.Range(s.ObstacleMinSide, s.ObstacleMaxSide)
		h := g.rng.Range(s.ObstacleMinSide, s.ObstacleMaxSide)

		xMin, xMax := g.buffer, s.CourtWidth-g.buffer-w
		if xMax <= xMin {
			continue
		}
		yMin, yMax := s.SafeZoneHeight+g.buffer, s.midline()-g.buffer-h
		if yMax <= yMin {
			continue
		}

		x := g.rng.Range(xMin, xMax)
		top := Rect{X: x, Y: g.rng.Range(yMin, yMax), W: w, H: h}
		bottom := g.mirror(top)

		if bottom.Y < s.midline()+g.buffer {
			continue
		}
		if bottom.Y+bottom.H > s.CourtHeight-s.SafeZoneHeight-g.buffer {
			continue
		}
		if !g.fits(top) || !g.fits(bottom) {
			continue
		}
		g.add(top, bottom)
		return true
	}
	return false
}

func (g *obstacleGen) fallbackPairs(remaining int) {
	s := g.s
	const slotW, slotH, inset = 70.0, 60.0, 36.0
	centres := []float64{s.CourtWidth * 0.25, s.CourtWidth*0.5 - 40, s.CourtWidth * 0.75}
	topY := s.SafeZoneHeight + g.buffer + inset

	for _, cx := range centres {
		if remaining <= 0 {
			return
		}
		top := Rect{X: cx - slotW/2, Y: topY, W: slotW, H: slotH}
		bottom := g.mirror(top)
		if !g.fits(top) || !g.fits(bottom) {
			continue
		}
		g.add(top, bottom)
		remaining--
	}
}

// mirror reflects r into the other half of the court.
func (g *obstacleGen) mirror(r Rect) Rect {
	return Rect{X: r.X, Y: g.s.CourtHeight - r.Y - r.H, W: r.W, H: r.H}
}

// fits reports whether r keeps the buffer from every active player and every
// obstacle placed so far.
func (g *obstacleGen) fits(r Rect) bool {
	reach := g.s.halfSize() + g.buffer
	for _, p := range g.players {
		if p.Active && boxAround(p.Pos, reach).Overlaps(r) {
			return false
		}
	}
	for _, o := range g.placed {
		if o.Rect().Grow(g.buffer).Overlaps(r) {
			return false
		}
	}
	return true
}

func (g *obstacleGen) add(top, bottom Rect) {
	for _, r := range []Rect{top, bottom} {
		g.placed = append(g.placed, Obstacle{
			ID:     fmt.Sprintf("obs_%d_%d", g.round, len(g.placed)),
			X:      r.X,
			Y:      r.Y,
			Width:  r.W,
			Height: r.H,
		})
	}
}
