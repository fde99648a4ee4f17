package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"hubcoin/internal/domain"

	"github.com/jackc/pgx/v5"
)

func (r *PostgresLedger) SaveLeaderboard(ctx context.Context, s *domain.LeaderboardSnapshot) error {
	playersJSON, err := json.Marshal(s.Players)
	if err != nil {
		return fmt.Errorf("marshal leaderboard: %w", err)
	}

	updated := time.Now().UTC()
	if s.LastUpdated != nil {
		updated = *s.LastUpdated
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO leaderboard_snapshots (id, players, last_updated)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET players = EXCLUDED.players, last_updated = EXCLUDED.last_updated
	`, domain.LeaderboardID, playersJSON, updated)
	return err
}

func (r *PostgresLedger) GetLeaderboard(ctx context.Context) (*domain.LeaderboardSnapshot, error) {
	var (
		playersJSON []byte
		updated     time.Time
	)
	err := r.db.QueryRow(ctx, `
		SELECT players, last_updated FROM leaderboard_snapshots WHERE id = $1
	`, domain.LeaderboardID).Scan(&playersJSON, &updated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	s := &domain.LeaderboardSnapshot{LastUpdated: &updated}
	if err := json.Unmarshal(playersJSON, &s.Players); err != nil {
		return nil, fmt.Errorf("decode leaderboard players: %w", err)
	}
	if s.Players == nil {
		s.Players = []domain.LeaderboardEntry{}
	}
	return s, nil
}
