package service

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	GemClaims = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hubcoin_gem_claims_total",
			Help: "Gem claim attempts by outcome",
		},
		[]string{"outcome"},
	)
	WithdrawalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hubcoin_withdrawal_requests_total",
			Help: "Withdrawal attempts by method and outcome",
		},
		[]string{"method", "outcome"},
	)
	ReferralRewards = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hubcoin_referral_rewards_total",
			Help: "Referrer rewards by outcome",
		},
		[]string{"outcome"},
	)
	LeaderboardRefreshes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hubcoin_leaderboard_refreshes_total",
			Help: "Leaderboard refresh attempts by outcome",
		},
		[]string{"outcome"},
	)
	AccountsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hubcoin_accounts_created_total",
		Help: "Accounts created",
	})
)

func init() {
	prometheus.MustRegister(GemClaims)
	prometheus.MustRegister(WithdrawalRequests)
	prometheus.MustRegister(ReferralRewards)
	prometheus.MustRegister(LeaderboardRefreshes)
	prometheus.MustRegister(AccountsCreated)
}

// outcome maps an operation result to a bounded label value
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrMissingFields):
		return "missing_fields"
	case errors.Is(err, ErrInsufficientUnclaimedGems):
		return "insufficient_unclaimed_gems"
	case errors.Is(err, ErrDailyClaimLimitReached):
		return "daily_limit"
	case errors.Is(err, ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, ErrInsufficientGems):
		return "insufficient_gems"
	case errors.Is(err, ErrAccountNotFound):
		return "not_found"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrTransactionFailed):
		return "tx_failed"
	default:
		return "error"
	}
}

func methodLabel(method string) string {
	if KnownMethod(method) {
		return method
	}
	return "other"
}
