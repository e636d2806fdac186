package screens

import (
	"errors"
	"math"
	"net/http"
	"strings"

	"raidcourt/engine"
	"raidcourt/models"
	"raidcourt/room"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ロビーに表示するルーム一覧を返すハンドラー
func ListRooms(c *gin.Context, rooms *room.Manager, logger *zap.Logger) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"rooms":   rooms.List(),
	})
}

// CreateRoom は新しいルームを作成します。playersPerTeam は省略時に既定値を使います。
func CreateRoom(c *gin.Context, rooms *room.Manager, logger *zap.Logger) {
	var req models.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Debug("Failed to bind create room request", zap.Error(err))
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		fail(c, http.StatusBadRequest, "name is required")
		return
	}

	s := rooms.Settings()
	playersPerTeam := s.DefaultPlayersPerTeam
	if req.PlayersPerTeam != nil {
		v := *req.PlayersPerTeam
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			fail(c, http.StatusBadRequest, "playersPerTeam must be an integer")
			return
		}
		// 範囲外の巨大な値をintに変換しないよう先に絞る
		n := s.MinPlayersPerTeam - 1
		if v >= float64(s.MinPlayersPerTeam) && v <= float64(s.MaxPlayersPerTeam) {
			n = int(v)
		}
		if err := engine.ValidatePlayersPerTeam(s, n); err != nil {
			fail(c, http.StatusBadRequest, strings.TrimPrefix(err.Error(), engine.ErrInvalidPlayersPerTeam.Error()+": "))
			return
		}
		playersPerTeam = n
	}

	r, err := rooms.Create(name, playersPerTeam)
	switch {
	case errors.Is(err, room.ErrMaxRooms):
		fail(c, http.StatusServiceUnavailable, err.Error())
		return
	case err != nil:
		logger.Error("Failed to create room", zap.Error(err))
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"roomId":         r.ID(),
		"playersPerTeam": playersPerTeam,
	})
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}
