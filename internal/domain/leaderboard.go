package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LeaderboardID is the id of the single snapshot document
const LeaderboardID = "top_players"

// LeaderboardEntry represents a ranked player in the snapshot
type LeaderboardEntry struct {
	Rank           int             `json:"rank"`
	Username       string          `json:"username"`
	TotalWithdrawn decimal.Decimal `json:"totalWithdrawn"`
}

// LeaderboardSnapshot is fully replaced on every refresh
type LeaderboardSnapshot struct {
	Players     []LeaderboardEntry `json:"players"`
	LastUpdated *time.Time         `json:"lastUpdated,omitempty"`
}

// EmptyLeaderboard is served before the first refresh
func EmptyLeaderboard() *LeaderboardSnapshot {
	return &LeaderboardSnapshot{Players: []LeaderboardEntry{}}
}
