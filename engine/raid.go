package engine

import (
	"time"

	"go.uber.org/zap"
)

type raidContext struct {
	raider  string
	state   RaidState
	clockMS float64
	crossed bool
	// resolving is set by the first resolution of a raid and stays set until
	// the next raid starts.
	resolving bool
	tagged    []string
}

func (r *raidContext) isTagged(id string) bool {
	for _, v := range r.tagged {
		if v == id {
			return true
		}
	}
	return false
}

// startRaid picks the next raider for the team whose turn it is. Stale
// identifiers are drained off the front of the rotation; an empty rotation is
// refilled from the roster; inactive candidates are cycled past. No active
// candidate ends the match.
func (m *Match) startRaid() {
	team := m.turn
	q := m.queues[team]

	q.dropStale(func(id string) bool {
		_, ok := m.players[id]
		return ok
	})
	if q.len() == 0 {
		q.reset(m.teams[team])
	}

	raider := ""
	for i := 0; i < q.len(); i++ {
		id, _ := q.head()
		if m.players[id].Active {
			raider = id
			break
		}
		q.cycle()
	}
	if raider == "" {
		m.endGame(EndElimination)
		return
	}

	m.raid = raidContext{
		raider:  raider,
		state:   RaidIdle,
		clockMS: float64(m.s.RaidDuration.Milliseconds()),
	}
	m.emit(RaidStarted{Team: team, Raider: raider})
}

// step runs the match and raid rules for dtMS of elapsed time. Both clocks
// hold still between a raid's resolution and the next raid start. A raider
// lost before crossing also ends the raid, so the match cannot stall on it.
func (m *Match) step(dtMS float64) {
	if m.raid.resolving {
		return
	}
	m.clockMS -= dtMS
	if m.clockMS <= 0 {
		m.clockMS = 0
		m.endGame(EndTimeUp)
		return
	}

	raider, ok := m.players[m.raid.raider]
	if !ok || !raider.Active {
		m.endRaid(false, ReasonRaiderEliminated)
		return
	}

	mid := m.s.midline()
	if m.raid.state == RaidIdle && !m.raid.crossed {
		crossed := raider.Pos.Y > mid+m.s.MidCrossEps
		if raider.Team == TeamB {
			crossed = raider.Pos.Y < mid-m.s.MidCrossEps
		}
		if crossed {
			m.raid.crossed = true
			m.raid.state = RaidActive
		}
	}
	if m.raid.state != RaidActive {
		return
	}

	m.raid.clockMS -= dtMS
	if m.raid.clockMS <= 0 {
		m.raid.clockMS = 0
		m.endRaid(false, ReasonTimeExpired)
		return
	}

	if m.tagDefenders(raider) && m.checkWin() {
		return
	}

	if m.raid.crossed && m.inOwnSafeZone(raider) {
		m.endRaid(true, ReasonSafeReturn)
	}
}

// tagDefenders freezes every untagged, active defender in contact with the
// raider. Contact is centre distance below the full player size.
func (m *Match) tagDefenders(raider *Player) bool {
	tagged := false
	for _, id := range m.teams[raider.Team.Other()] {
		def := m.players[id]
		if !def.Active || m.raid.isTagged(id) {
			continue
		}
		if raider.Pos.Dist(def.Pos) < m.s.PlayerSize {
			m.raid.tagged = append(m.raid.tagged, id)
			def.freeze()
			tagged = true
			m.log.Debug("Defender tagged", zap.String("roomID", m.id), zap.String("raider", raider.ID), zap.String("defender", id))
		}
	}
	return tagged
}

func (m *Match) inOwnSafeZone(p *Player) bool {
	if p.Team == TeamA {
		return p.Pos.Y < m.s.SafeZoneHeight-m.s.SafeZoneEps
	}
	return p.Pos.Y > m.s.CourtHeight-m.s.SafeZoneHeight+m.s.SafeZoneEps
}

// endRaid resolves the current raid once. A timeout hands back every tag of
// the raid and reports no touches; only a safe return scores them and
// revives teammates.
func (m *Match) endRaid(success bool, reason string) {
	if m.raid.resolving {
		return
	}
	m.raid.resolving = true
	m.raid.state = RaidIdle

	team := m.turn
	raider := m.players[m.raid.raider]
	touches := len(m.raid.tagged)
	points := 0

	switch {
	case success:
		points = touches * m.s.PointsPerTag
		m.scores[team] += points
		m.revive(team, touches)
	case reason == ReasonTimeExpired:
		for _, id := range m.raid.tagged {
			if def, ok := m.players[id]; ok && def.Connected {
				def.Active = true
				def.spawn(m.s, m.rng)
			}
		}
		m.raid.tagged = nil
		if raider != nil && raider.Active {
			raider.Pos = m.s.SafeAnchor(team)
			raider.freeze()
		}
	default:
		if raider != nil && raider.Active {
			raider.freeze()
		}
	}

	if raider != nil {
		m.queues[team].toBack(raider.ID)
	}

	m.emit(RaidResult{
		Success:       success,
		Points:        points,
		Reason:        reason,
		RaiderTeam:    team,
		Touches:       len(m.raid.tagged),
		HasCrossedMid: m.raid.crossed,
	})
	m.log.Info("Raid resolved",
		zap.String("roomID", m.id),
		zap.String("raider", m.raid.raider),
		zap.Bool("success", success),
		zap.String("reason", reason),
		zap.Int("points", points),
	)

	if m.checkWin() {
		return
	}

	m.turn = team.Other()
	if m.turn == TeamA {
		m.round++
		m.obstacles = GenerateObstacles(m.round, m.activePlayers(), m.s, m.rng)
	}
	m.scheduleNextRaid()
}

// revive brings back up to n inactive teammates in roster order.
func (m *Match) revive(team Team, n int) {
	for _, id := range m.teams[team] {
		if n <= 0 {
			return
		}
		p := m.players[id]
		if p.Active || !p.Connected {
			continue
		}
		p.Active = true
		p.spawn(m.s, m.rng)
		n--
	}
}

func (m *Match) scheduleNextRaid() {
	m.cancelPendingRaid()
	epoch := m.epoch
	m.pendingRaid = m.sched.AfterFunc(m.s.RaidDelay, func() {
		if m.epoch != epoch || m.state != StatePlaying {
			return
		}
		m.pendingRaid = nil
		m.startRaid()
	})
}

// RaiderID is the raider of the current or just-resolved raid.
func (m *Match) RaiderID() string { return m.raid.raider }

// RaidState is the state of the current raid.
func (m *Match) RaidState() RaidState { return m.raid.state }

// HasCrossedMid reports whether the raider has crossed the midline this raid.
func (m *Match) HasCrossedMid() bool { return m.raid.crossed }

// Tagged lists the defenders tagged in the current raid, in tag order.
func (m *Match) Tagged() []string { return append([]string(nil), m.raid.tagged...) }

// RaidRemaining is the time left on the raid clock.
func (m *Match) RaidRemaining() time.Duration {
	return time.Duration(m.raid.clockMS * float64(time.Millisecond))
}

// MatchRemaining is the time left on the match clock.
func (m *Match) MatchRemaining() time.Duration {
	return time.Duration(m.clockMS * float64(time.Millisecond))
}

// Rotation is the current raider order for a team.
func (m *Match) Rotation(t Team) []string { return m.queues[t].snapshot() }
