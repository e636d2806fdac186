package models

// CreateRoomRequest は POST /api/rooms のボディです。
// playersPerTeam は整数かどうかを後で検証するため数値のまま受け取ります。
type CreateRoomRequest struct {
	Name           string   `json:"name"`
	PlayersPerTeam *float64 `json:"playersPerTeam,omitempty"`
}

// RoomSummary はルーム一覧の1要素です。
type RoomSummary struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Players        int    `json:"players"`
	State          string `json:"state"`
	PlayersPerTeam int    `json:"playersPerTeam"`
}
