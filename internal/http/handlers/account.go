package handlers

import (
	"net/http"

	"hubcoin/internal/logger"
	"hubcoin/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateOrFetchUser returns the caller's account, creating it on first contact
func (h *Handler) CreateOrFetchUser(c *gin.Context) {
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User ID missing"})
		return
	}

	ctx := c.Request.Context()
	acc, created, err := h.Accounts.CreateOrFetch(ctx, service.AccountRequest{
		UserID:   req.UserID.String(),
		Username: req.Username,
	})
	if err != nil {
		logger.WithContext(ctx).Error("create or fetch user failed", "user_id", req.UserID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, acc)
}
