package handlers

import (
	"hubcoin/internal/domain"
	"hubcoin/internal/service"
)

type Handler struct {
	Accounts    *service.AccountService
	Leaderboard *service.LeaderboardService
}

func NewHandler(accounts *service.AccountService, leaderboard *service.LeaderboardService) *Handler {
	return &Handler{
		Accounts:    accounts,
		Leaderboard: leaderboard,
	}
}

// userRequest is the body shared by /user and /claim-gems
type userRequest struct {
	UserID   domain.UserID `json:"user_id"`
	Username string        `json:"username"`
}
