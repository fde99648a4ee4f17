package service

import (
	"context"
	"log/slog"
	"time"

	"hubcoin/internal/domain"
	"hubcoin/internal/logger"
	"hubcoin/internal/repository"
)

const LeaderboardSize = 20

// LeaderboardService rebuilds and serves the top-players snapshot
type LeaderboardService struct {
	accounts repository.AccountStore
	store    repository.LeaderboardStore
	cache    repository.LeaderboardCache
	adminID  int64
	clock    Clock
	log      *slog.Logger
}

// NewLeaderboardService creates the service. cache may be nil; adminID 0 means nobody may refresh.
func NewLeaderboardService(accounts repository.AccountStore, store repository.LeaderboardStore,
	cache repository.LeaderboardCache, adminID int64, clock Clock) *LeaderboardService {
	return &LeaderboardService{
		accounts: accounts,
		store:    store,
		cache:    cache,
		adminID:  adminID,
		clock:    clock,
		log:      logger.With("component", "leaderboard_service"),
	}
}

func (s *LeaderboardService) IsAdmin(callerID int64) bool {
	return s.adminID != 0 && callerID == s.adminID
}

// Refresh overwrites the snapshot with the current top players and returns how many were written
func (s *LeaderboardService) Refresh(ctx context.Context, callerID int64) (int, error) {
	if !s.IsAdmin(callerID) {
		LeaderboardRefreshes.WithLabelValues(outcome(ErrUnauthorized)).Inc()
		s.log.Warn("unauthorized leaderboard refresh", "caller_id", callerID)
		return 0, ErrUnauthorized
	}

	n, err := s.refresh(ctx)
	LeaderboardRefreshes.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		s.log.Error("leaderboard refresh failed", "error", err)
		return 0, err
	}
	s.log.Info("leaderboard refreshed", "players", n)
	return n, nil
}

func (s *LeaderboardService) refresh(ctx context.Context) (int, error) {
	top, err := s.accounts.TopByTotalWithdrawn(ctx, LeaderboardSize)
	if err != nil {
		return 0, storeError(err)
	}

	players := make([]domain.LeaderboardEntry, 0, len(top))
	for i, a := range top {
		name := a.Username
		if name == "" {
			name = DefaultUsername
		}
		players = append(players, domain.LeaderboardEntry{
			Rank:           i + 1,
			Username:       name,
			TotalWithdrawn: a.TotalWithdrawn,
		})
	}

	now := s.clock.Now().UTC().Truncate(time.Millisecond)
	snap := &domain.LeaderboardSnapshot{Players: players, LastUpdated: &now}
	if err := s.store.SaveLeaderboard(ctx, snap); err != nil {
		return 0, storeError(err)
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, snap); err != nil {
			s.log.Warn("leaderboard cache write failed", "error", err)
		}
	}
	return len(players), nil
}

// Get returns the last snapshot, or an empty one if it was never built
func (s *LeaderboardService) Get(ctx context.Context) (*domain.LeaderboardSnapshot, error) {
	if s.cache != nil {
		snap, err := s.cache.Get(ctx)
		if err != nil {
			s.log.Warn("leaderboard cache read failed", "error", err)
		} else if snap != nil {
			return snap, nil
		}
	}

	snap, err := s.store.GetLeaderboard(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	if snap == nil {
		return domain.EmptyLeaderboard(), nil
	}
	s.warmCache(ctx, snap)
	return snap, nil
}

// warmCache fills an empty cache after a store read. A refresh that landed
// in between keeps its entry.
func (s *LeaderboardService) warmCache(ctx context.Context, snap *domain.LeaderboardSnapshot) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Fill(ctx, snap); err != nil {
		s.log.Warn("leaderboard cache write failed", "error", err)
	}
}
