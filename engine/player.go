package engine

// Player is a room member. Players are never shared between rooms; the match
// refers to them by ID everywhere else.
type Player struct {
	ID   string
	Name string
	Team Team

	Pos Vec
	Vel Vec

	// Active is false while tagged or eliminated; the player is frozen.
	Active bool
	Ready  bool
	// Connected is false once the member has left a running match. The record
	// is kept so rosters and rotation stay intact.
	Connected bool
}

// Obstacle is a solid rectangle placed for one round.
type Obstacle struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (o Obstacle) Rect() Rect {
	return Rect{X: o.X, Y: o.Y, W: o.Width, H: o.Height}
}

// spawn places the player on their team's baseline with a horizontal jitter
// and clears their velocity.
func (p *Player) spawn(s Settings, rng *RNG) {
	x := s.CourtWidth / 2
	if rng != nil {
		x += rng.Range(-s.SpawnJitter, s.SpawnJitter)
	}
	y := s.SpawnPadding
	if p.Team == TeamB {
		y = s.CourtHeight - s.SpawnPadding
	}
	p.Pos = Vec{X: x, Y: y}
	p.Vel = Vec{}
}

// freeze deactivates the player in place.
func (p *Player) freeze() {
	p.Active = false
	p.Vel = Vec{}
}
