package engine

// Event is anything a match publishes to its room. Type is the wire name.
type Event interface {
	EventType() string
}

const (
	EventPlayerJoined = "player_joined"
	EventPlayerLeft   = "player_left"
	EventMatchStarted = "match_started"
	EventSnapshot     = "snapshot"
	EventRaidStart    = "raid_start"
	EventRaidResult   = "raid_result"
	EventGameEnded    = "game_ended"
)

type PlayerJoined struct {
	ID       string `json:"id"`
	Team     Team   `json:"team"`
	Username string `json:"username"`
}

func (PlayerJoined) EventType() string { return EventPlayerJoined }

type PlayerLeft struct {
	ID       string `json:"id"`
	Team     Team   `json:"team"`
	Username string `json:"username"`
}

func (PlayerLeft) EventType() string { return EventPlayerLeft }

// MatchStarted is published on the initial start and on every restart.
type MatchStarted struct {
	Restart bool `json:"restart"`
}

func (MatchStarted) EventType() string { return EventMatchStarted }

type RaidStarted struct {
	Team   Team   `json:"team"`
	Raider string `json:"raider"`
}

func (RaidStarted) EventType() string { return EventRaidStart }

type RaidResult struct {
	Success       bool   `json:"success"`
	Points        int    `json:"points"`
	Reason        string `json:"reason"`
	RaiderTeam    Team   `json:"raiderTeam"`
	Touches       int    `json:"touches"`
	HasCrossedMid bool   `json:"hasCrossedMid"`
}

func (RaidResult) EventType() string { return EventRaidResult }

type GameEnded struct {
	Reason string       `json:"reason"`
	Winner string       `json:"winner"`
	Scores map[Team]int `json:"scores"`
	Round  int          `json:"round"`
}

func (GameEnded) EventType() string { return EventGameEnded }

// Snapshot is the per-tick picture of a match. It shares nothing with the
// match after it is built.
type Snapshot struct {
	T             int64        `json:"t"`
	Tick          uint64       `json:"tick"`
	Timer         int          `json:"timer"`
	RaidTimer     int          `json:"raidTimer"`
	RaidState     RaidState    `json:"raidState"`
	HasCrossedMid bool         `json:"hasCrossedMid"`
	Scores        map[Team]int `json:"scores"`
	ActivePlayers map[Team]int `json:"activePlayers"`
	Turn          Team         `json:"turn"`
	Round         int          `json:"round"`
	Raider        string       `json:"raider"`
	Players       []PlayerView `json:"players"`
	Obstacles     []Obstacle   `json:"obstacles"`
}

func (Snapshot) EventType() string { return EventSnapshot }

type PlayerView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Act      int    `json:"act"`
	Team     Team   `json:"team"`
}
