package engine

// Integrate advances one player by dt seconds. The raider may roam the whole
// court; everyone else is held in their own half. Obstacles are resolved one
// axis at a time so players slide along edges instead of stopping dead.
func Integrate(p *Player, dt float64, obstacles []Obstacle, isRaider bool, s Settings) {
	if !p.Active {
		return
	}
	half := s.halfSize()

	nextX := p.Pos.X + p.Vel.X*dt
	nextY := p.Pos.Y + p.Vel.Y*dt

	nextX = clamp(nextX, half, s.CourtWidth-half)
	nextY = clamp(nextY, half, s.CourtHeight-half)

	if !isRaider {
		mid := s.midline()
		if p.Team == TeamA {
			nextY = clamp(nextY, half, mid)
		} else {
			nextY = clamp(nextY, mid, s.CourtHeight-half)
		}
	}

	for _, o := range obstacles {
		box := o.Rect()
		if !boxAround(Vec{X: nextX, Y: nextY}, half).Overlaps(box) {
			continue
		}
		if boxAround(Vec{X: nextX, Y: p.Pos.Y}, half).Overlaps(box) {
			nextX = p.Pos.X
		}
		if boxAround(Vec{X: nextX, Y: nextY}, half).Overlaps(box) {
			nextY = p.Pos.Y
		}
	}

	p.Pos = Vec{X: nextX, Y: nextY}
}

// velocityFor maps a direction intent to a velocity. A horizontal component
// wins over a vertical one.
func velocityFor(dx, dy int, speed float64) Vec {
	v := Vec{X: float64(dx) * speed, Y: float64(dy) * speed}
	if dx != 0 {
		v.Y = 0
	}
	return v
}
