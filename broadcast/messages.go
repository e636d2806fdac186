package broadcast

import "raidcourt/engine"

// クライアントから届くメッセージ
const (
	MsgJoinRoom     = "join_room"
	MsgPlayerReady  = "player_ready"
	MsgInput        = "input"
	MsgPing         = "ping"
	MsgRestartMatch = "restart_match"
)

// 送信者本人にだけ返すメッセージ
const (
	MsgJoinedRoom = "joined_room"
	MsgPong       = "pong"
	MsgError      = "error"
)

type JoinRoom struct {
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
}

// Input carries one signal per axis, each -1, 0 or 1.
type Input struct {
	Dir struct {
		X int `json:"x"`
		Y int `json:"y"`
	} `json:"dir"`
}

type JoinedRoom struct {
	RoomID         string      `json:"roomId"`
	PlayerID       string      `json:"playerId"`
	Team           engine.Team `json:"team"`
	PlayersPerTeam int         `json:"playersPerTeam"`
	Config         CourtConfig `json:"config"`
}

type CourtConfig struct {
	Court struct {
		W float64 `json:"w"`
		H float64 `json:"h"`
	} `json:"court"`
	SafeZone float64 `json:"safeZone"`
}

// CourtConfigFor describes the court a client should draw.
func CourtConfigFor(s engine.Settings) CourtConfig {
	var c CourtConfig
	c.Court.W = s.CourtWidth
	c.Court.H = s.CourtHeight
	c.SafeZone = s.SafeZoneHeight
	return c
}

type Pong struct {
	T int64 `json:"t"`
}

type ErrorMessage struct {
	Message string `json:"message"`
}
