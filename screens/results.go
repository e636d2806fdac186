package screens

import (
	"net/http"
	"strconv"

	"raidcourt/database"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultResultLimit = 20
	maxResultLimit     = 100
)

// RecentResults は最近終了した試合の結果を新しい順に返します。
// 保存先が設定されていない場合は 503 を返します。
func RecentResults(c *gin.Context, results database.Reader, logger *zap.Logger) {
	if results == nil {
		fail(c, http.StatusServiceUnavailable, "results archive disabled")
		return
	}

	limit := defaultResultLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			fail(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxResultLimit)
	}

	list, err := results.Recent(c.Request.Context(), limit)
	if err != nil {
		logger.Error("Failed to load match results", zap.Error(err))
		fail(c, http.StatusServiceUnavailable, "results unavailable")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"results": list,
	})
}
