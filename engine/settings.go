package engine

import "time"

// Team identifiers as they appear on the wire.
type Team string

const (
	TeamA Team = "TEAM_A"
	TeamB Team = "TEAM_B"
)

// Other returns the opposing team.
func (t Team) Other() Team {
	if t == TeamA {
		return TeamB
	}
	return TeamA
}

// MatchState is the match lifecycle: WAITING, then PLAYING, then ENDED.
// Restart moves an ENDED match back to PLAYING.
type MatchState string

const (
	StateWaiting MatchState = "WAITING"
	StatePlaying MatchState = "PLAYING"
	StateEnded   MatchState = "ENDED"
)

// RaidState is IDLE until the raider crosses the midline, then ACTIVE.
type RaidState string

const (
	RaidIdle   RaidState = "IDLE"
	RaidActive RaidState = "ACTIVE"
)

// Reasons reported in raid_result and game_ended.
const (
	ReasonSafeReturn       = "Safe Return"
	ReasonTimeExpired      = "Time Expired"
	ReasonRaiderEliminated = "Raider eliminated"

	EndTimeUp      = "TIME_UP"
	EndElimination = "ELIMINATION"

	WinnerDraw = "DRAW"
)

// Settings holds the constants a room is created with. They do not change for
// the lifetime of the room.
type Settings struct {
	CourtWidth     float64
	CourtHeight    float64
	PlayerSize     float64
	SafeZoneHeight float64

	MatchDuration time.Duration
	RaidDuration  time.Duration
	RaidDelay     time.Duration
	IdleRoomTTL   time.Duration
	TickRate      int

	PlayerSpeed float64

	MinPlayersPerTeam     int
	MaxPlayersPerTeam     int
	DefaultPlayersPerTeam int

	MidCrossEps  float64
	SafeZoneEps  float64
	PointsPerTag int

	ObstaclePairCap   int
	ObstacleMaxTries  int
	ObstacleMinSide   float64
	ObstacleMaxSide   float64
	ObstacleBufferPad float64

	SpawnPadding float64
	SpawnJitter  float64
}

func DefaultSettings() Settings {
	return Settings{
		CourtWidth:     800,
		CourtHeight:    600,
		PlayerSize:     20,
		SafeZoneHeight: 60,

		MatchDuration: 30 * time.Minute,
		RaidDuration:  20 * time.Second,
		RaidDelay:     2 * time.Second,
		IdleRoomTTL:   10 * time.Minute,
		TickRate:      30,

		PlayerSpeed: 250,

		MinPlayersPerTeam:     1,
		MaxPlayersPerTeam:     10,
		DefaultPlayersPerTeam: 2,

		MidCrossEps:  8,
		SafeZoneEps:  10,
		PointsPerTag: 5,

		ObstaclePairCap:   5,
		ObstacleMaxTries:  32,
		ObstacleMinSide:   40,
		ObstacleMaxSide:   100,
		ObstacleBufferPad: 12,

		SpawnPadding: 100,
		SpawnJitter:  150,
	}
}

// TickInterval is the nominal period between ticks.
func (s Settings) TickInterval() time.Duration {
	if s.TickRate <= 0 {
		return time.Second / 30
	}
	return time.Second / time.Duration(s.TickRate)
}

func (s Settings) midline() float64 { return s.CourtHeight / 2 }

func (s Settings) halfSize() float64 { return s.PlayerSize / 2 }

// obstacleBuffer is the clearance kept between a new obstacle and players or
// other obstacles.
func (s Settings) obstacleBuffer() float64 { return s.PlayerSize + s.ObstacleBufferPad }

// SafeAnchor is where a timed-out raider is returned to on their own side.
func (s Settings) SafeAnchor(t Team) Vec {
	if t == TeamA {
		return Vec{X: s.CourtWidth / 2, Y: s.SafeZoneHeight / 2}
	}
	return Vec{X: s.CourtWidth / 2, Y: s.CourtHeight - s.SafeZoneHeight/2}
}
