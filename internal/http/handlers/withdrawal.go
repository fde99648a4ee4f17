package handlers

import (
	"errors"
	"net/http"

	"hubcoin/internal/domain"
	"hubcoin/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type withdrawalRequest struct {
	UserID  domain.UserID       `json:"user_id"`
	Amount  decimal.NullDecimal `json:"amount"`
	Method  string              `json:"method"`
	Account string              `json:"account"`
}

// RequestWithdrawal records a pending payout request
func (h *Handler) RequestWithdrawal(c *gin.Context) {
	var req withdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing fields"})
		return
	}

	res, err := h.Accounts.RequestWithdrawal(c.Request.Context(), service.WithdrawalInput{
		UserID:  req.UserID.String(),
		Amount:  req.Amount,
		Method:  req.Method,
		Account: req.Account,
	})
	var rule *service.RuleError
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Withdrawal request submitted!", "data": res})
	case errors.Is(err, service.ErrMissingFields):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing fields"})
	case errors.As(err, &rule):
		c.JSON(http.StatusOK, gin.H{"success": false, "error": rule.Message})
	case errors.Is(err, service.ErrAccountNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Account not found."})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error during withdrawal"})
	}
}
