package handlers

import (
	"net/http"

	"hubcoin/internal/logger"

	"github.com/gin-gonic/gin"
)

// GetLeaderboard returns the last published top-players snapshot
func (h *Handler) GetLeaderboard(c *gin.Context) {
	snap, err := h.Leaderboard.Get(c.Request.Context())
	if err != nil {
		logger.WithContext(c.Request.Context()).Error("leaderboard read failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch leaderboard"})
		return
	}
	c.JSON(http.StatusOK, snap)
}
