package engine

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
)

// Options configures a new match.
type Options struct {
	ID             string
	PlayersPerTeam int
	Settings       Settings
	Seed           uint64

	Scheduler Scheduler
	Emit      func(Event)
	Now       func() time.Time
	Logger    *zap.Logger
}

// Match is the whole state of one room's contest. It is not safe for
// concurrent use; the owning room serialises every call, including the
// callbacks it schedules.
type Match struct {
	id    string
	s     Settings
	ppt   int
	rng   *RNG
	sched Scheduler
	emit  func(Event)
	now   func() time.Time
	log   *zap.Logger

	state   MatchState
	players map[string]*Player
	order   []string
	teams   map[Team][]string
	queues  map[Team]*rotation

	round     int
	turn      Team
	clockMS   float64
	scores    map[Team]int
	obstacles []Obstacle
	ticks     uint64

	raid raidContext

	// epoch changes whenever the match starts, restarts or ends. Work
	// scheduled under an older epoch is dropped.
	epoch       uint64
	pendingRaid Timer
}

func NewMatch(opts Options) *Match {
	s := opts.Settings
	if s.CourtWidth == 0 {
		s = DefaultSettings()
	}
	ppt := opts.PlayersPerTeam
	if ppt == 0 {
		ppt = s.DefaultPlayersPerTeam
	}
	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	m := &Match{
		id:      opts.ID,
		s:       s,
		ppt:     ppt,
		rng:     NewRNG(seed),
		sched:   opts.Scheduler,
		emit:    opts.Emit,
		now:     opts.Now,
		log:     opts.Logger,
		state:   StateWaiting,
		players: make(map[string]*Player),
		teams:   map[Team][]string{TeamA: nil, TeamB: nil},
		queues:  map[Team]*rotation{TeamA: {}, TeamB: {}},
	}
	if m.sched == nil {
		m.sched = immediate{}
	}
	if m.emit == nil {
		m.emit = func(Event) {}
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.log == nil {
		m.log = zap.NewNop()
	}
	m.resetCounters()
	return m
}

func (m *Match) resetCounters() {
	m.round = 1
	m.turn = TeamA
	m.clockMS = float64(m.s.MatchDuration.Milliseconds())
	m.scores = map[Team]int{TeamA: 0, TeamB: 0}
	m.obstacles = nil
	m.ticks = 0
	m.raid = raidContext{state: RaidIdle, clockMS: float64(m.s.RaidDuration.Milliseconds())}
}

// Join adds a member to the smaller team. Ties go to team A.
func (m *Match) Join(id, name string) (*Player, error) {
	if capacity := m.ppt * 2; len(m.players) >= capacity {
		return nil, fmt.Errorf("%w (max %d players)", ErrRoomFull, capacity)
	}
	if m.state != StateWaiting {
		return nil, ErrMatchInProgress
	}
	if _, ok := m.players[id]; ok {
		return nil, ErrAlreadyJoined
	}
	if name == "" {
		name = "Player"
	}

	team := TeamA
	if len(m.teams[TeamA]) > len(m.teams[TeamB]) {
		team = TeamB
	}
	p := &Player{ID: id, Name: name, Team: team, Active: true, Connected: true}
	p.spawn(m.s, m.rng)

	m.players[id] = p
	m.order = append(m.order, id)
	m.teams[team] = append(m.teams[team], id)

	m.emit(PlayerJoined{ID: id, Team: team, Username: name})
	return p, nil
}

// Leave handles a member going away. In a running match the record stays,
// frozen, so rotation and scoring keep their shape; otherwise it is removed.
func (m *Match) Leave(id string) error {
	p, ok := m.players[id]
	if !ok {
		return ErrUnknownPlayer
	}

	if m.state == StatePlaying {
		p.freeze()
		p.Connected = false
	} else {
		m.remove(id)
	}

	m.emit(PlayerLeft{ID: id, Team: p.Team, Username: p.Name})
	if m.state == StatePlaying {
		m.checkWin()
	}
	return nil
}

func (m *Match) remove(id string) {
	p, ok := m.players[id]
	if !ok {
		return
	}
	delete(m.players, id)
	m.order = without(m.order, id)
	m.teams[p.Team] = without(m.teams[p.Team], id)
	m.queues[p.Team].remove(id)
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// Ready marks a member ready and starts the match once everyone is ready and
// both teams are full.
func (m *Match) Ready(id string) error {
	p, ok := m.players[id]
	if !ok {
		return ErrUnknownPlayer
	}
	p.Ready = true
	m.checkStart()
	return nil
}

func (m *Match) checkStart() {
	if m.state != StateWaiting {
		return
	}
	for _, p := range m.players {
		if !p.Ready {
			return
		}
	}
	if len(m.teams[TeamA]) != m.ppt || len(m.teams[TeamB]) != m.ppt {
		return
	}
	m.state = StatePlaying
	m.epoch++
	m.begin(false)
	m.log.Info("Match started", zap.String("roomID", m.id), zap.Int("playersPerTeam", m.ppt))
}

// Restart begins a fresh match with the members still connected. Only
// allowed once the previous match has ended.
func (m *Match) Restart(id string) error {
	if _, ok := m.players[id]; !ok {
		return ErrUnknownPlayer
	}
	if m.state != StateEnded {
		return ErrMatchNotFinished
	}

	for _, pid := range append([]string(nil), m.order...) {
		if !m.players[pid].Connected {
			m.remove(pid)
		}
	}

	m.cancelPendingRaid()
	m.resetCounters()
	for _, pid := range m.order {
		p := m.players[pid]
		p.Active = true
		p.Ready = true
		p.spawn(m.s, m.rng)
	}

	m.state = StatePlaying
	m.epoch++
	m.begin(true)
	m.log.Info("Match restarted", zap.String("roomID", m.id))
	return nil
}

func (m *Match) begin(restart bool) {
	m.queues[TeamA].reset(m.teams[TeamA])
	m.queues[TeamB].reset(m.teams[TeamB])
	m.obstacles = GenerateObstacles(m.round, m.activePlayers(), m.s, m.rng)
	m.emit(MatchStarted{Restart: restart})
	if m.checkWin() {
		return
	}
	m.startRaid()
}

// Input sets a player's velocity from a direction intent. Each axis must be
// -1, 0 or 1. Members of the raiding team other than the raider are held still.
func (m *Match) Input(id string, dx, dy int) error {
	if !unitAxis(dx) || !unitAxis(dy) {
		return fmt.Errorf("%w: axes must be -1, 0 or 1", ErrInvalidDirection)
	}
	p, ok := m.players[id]
	if !ok {
		return ErrUnknownPlayer
	}
	if m.state != StatePlaying || !p.Active {
		return nil
	}
	if p.Team == m.turn && id != m.raid.raider {
		p.Vel = Vec{}
		return nil
	}
	p.Vel = velocityFor(dx, dy, m.s.PlayerSpeed)
	return nil
}

func unitAxis(v int) bool { return v >= -1 && v <= 1 }

// Tick advances the match by dt of wall-clock time: players move, then the
// match and raid rules run, then a snapshot is published.
func (m *Match) Tick(dt time.Duration) {
	if m.state != StatePlaying {
		return
	}
	m.ticks++

	sec := dt.Seconds()
	for _, id := range m.order {
		Integrate(m.players[id], sec, m.obstacles, id == m.raid.raider, m.s)
	}

	m.step(float64(dt) / float64(time.Millisecond))
	m.emit(m.Snapshot())
}

func (m *Match) activePlayers() []*Player {
	out := make([]*Player, 0, len(m.order))
	for _, id := range m.order {
		if p := m.players[id]; p.Active {
			out = append(out, p)
		}
	}
	return out
}

func (m *Match) activeCount(t Team) int {
	n := 0
	for _, id := range m.teams[t] {
		if m.players[id].Active {
			n++
		}
	}
	return n
}

// checkWin ends the match once either team has nobody left on court.
func (m *Match) checkWin() bool {
	if m.state != StatePlaying {
		return false
	}
	if m.activeCount(TeamA) == 0 || m.activeCount(TeamB) == 0 {
		m.endGame(EndElimination)
		return true
	}
	return false
}

func (m *Match) endGame(reason string) {
	if m.state != StatePlaying {
		return
	}
	m.state = StateEnded
	m.epoch++
	m.cancelPendingRaid()

	winner := m.winner()
	m.emit(GameEnded{Reason: reason, Winner: winner, Scores: m.Scores(), Round: m.round})
	m.log.Info("Match ended",
		zap.String("roomID", m.id),
		zap.String("reason", reason),
		zap.String("winner", winner),
		zap.Int("scoreA", m.scores[TeamA]),
		zap.Int("scoreB", m.scores[TeamB]),
	)
}

// winner decides by score, then by players still on court, else a draw.
func (m *Match) winner() string {
	a, b := m.scores[TeamA], m.scores[TeamB]
	if a == b {
		a, b = m.activeCount(TeamA), m.activeCount(TeamB)
	}
	switch {
	case a > b:
		return string(TeamA)
	case b > a:
		return string(TeamB)
	}
	return WinnerDraw
}

func (m *Match) cancelPendingRaid() {
	if m.pendingRaid != nil {
		m.pendingRaid.Stop()
		m.pendingRaid = nil
	}
}

// Snapshot captures the current state for clients.
func (m *Match) Snapshot() Snapshot {
	snap := Snapshot{
		T:             m.now().UnixMilli(),
		Tick:          m.ticks,
		Timer:         ceilSeconds(m.clockMS),
		RaidTimer:     ceilSeconds(m.raid.clockMS),
		RaidState:     m.raid.state,
		HasCrossedMid: m.raid.crossed,
		Scores:        m.Scores(),
		ActivePlayers: map[Team]int{TeamA: m.activeCount(TeamA), TeamB: m.activeCount(TeamB)},
		Turn:          m.turn,
		Round:         m.round,
		Raider:        m.raid.raider,
		Players:       make([]PlayerView, 0, len(m.order)),
		Obstacles:     append([]Obstacle{}, m.obstacles...),
	}
	for _, id := range m.order {
		p := m.players[id]
		act := 0
		if p.Active {
			act = 1
		}
		snap.Players = append(snap.Players, PlayerView{
			ID:       p.ID,
			Username: p.Name,
			X:        int(math.Round(p.Pos.X)),
			Y:        int(math.Round(p.Pos.Y)),
			Act:      act,
			Team:     p.Team,
		})
	}
	return snap
}

// Read-only accessors. Returned slices are copies.

func (m *Match) ID() string             { return m.id }
func (m *Match) State() MatchState      { return m.state }
func (m *Match) PlayersPerTeam() int    { return m.ppt }
func (m *Match) Round() int             { return m.round }
func (m *Match) Turn() Team             { return m.turn }
func (m *Match) Obstacles() []Obstacle  { return append([]Obstacle(nil), m.obstacles...) }
func (m *Match) Settings() Settings     { return m.s }
func (m *Match) PlayerCount() int       { return len(m.players) }
func (m *Match) Roster(t Team) []string { return append([]string(nil), m.teams[t]...) }

// Scores returns a copy of both team totals.
func (m *Match) Scores() map[Team]int {
	return map[Team]int{TeamA: m.scores[TeamA], TeamB: m.scores[TeamB]}
}

// Player returns a copy of the player record.
func (m *Match) Player(id string) (Player, bool) {
	p, ok := m.players[id]
	if !ok {
		return Player{}, false
	}
	return *p, true
}

// ConnectedCount is the number of members that have not left.
func (m *Match) ConnectedCount() int {
	n := 0
	for _, p := range m.players {
		if p.Connected {
			n++
		}
	}
	return n
}
