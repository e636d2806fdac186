package models

import (
	"time"

	"gorm.io/gorm"
)

// MatchResult は終了した試合の結果です。試合の途中経過は保存しません。
type MatchResult struct {
	gorm.Model
	RoomID         string    `gorm:"index;not null" json:"roomId"`
	RoomName       string    `json:"roomName"`
	PlayersPerTeam int       `gorm:"not null" json:"playersPerTeam"`
	Reason         string    `gorm:"not null" json:"reason"` // "TIME_UP" または "ELIMINATION"
	Winner         string    `gorm:"not null" json:"winner"` // "TEAM_A", "TEAM_B" または "DRAW"
	ScoreA         int       `json:"scoreA"`
	ScoreB         int       `json:"scoreB"`
	Rounds         int       `json:"rounds"`
	EndedAt        time.Time `gorm:"index;not null" json:"endedAt"`
}
