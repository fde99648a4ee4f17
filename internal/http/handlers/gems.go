package handlers

import (
	"errors"
	"net/http"

	"hubcoin/internal/service"

	"github.com/gin-gonic/gin"
)

// ClaimGems moves two unclaimed gems into the balance
func (h *Handler) ClaimGems(c *gin.Context) {
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User ID missing"})
		return
	}

	res, err := h.Accounts.ClaimGems(c.Request.Context(), req.UserID.String())
	var rule *service.RuleError
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "2 Gems claimed!", "data": res})
	case errors.As(err, &rule):
		c.JSON(http.StatusOK, gin.H{"success": false, "message": rule.Message})
	case errors.Is(err, service.ErrAccountNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Account not found."})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not claim gems"})
	}
}
