package repository

import (
	"context"
	"fmt"

	"hubcoin/internal/domain"

	"github.com/jackc/pgx/v5"
)

// insertWithdrawal records a request inside the caller's transaction.
// submitted_at is assigned by the database.
func insertWithdrawal(ctx context.Context, tx pgx.Tx, w *domain.WithdrawalRequest) error {
	err := tx.QueryRow(ctx, `
		INSERT INTO withdrawal_requests (id, user_id, amount, method, account, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING submitted_at
	`, w.ID, w.UserID, w.Amount, w.Method, w.Account, w.Status).Scan(&w.SubmittedAt)
	if err != nil {
		return fmt.Errorf("insert withdrawal request: %w", err)
	}
	return nil
}

// ListWithdrawals returns a user's most recent requests, newest first
func (r *PostgresLedger) ListWithdrawals(ctx context.Context, userID string, limit int) ([]domain.WithdrawalRequest, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, amount, method, account, status, submitted_at
		FROM withdrawal_requests
		WHERE user_id = $1
		ORDER BY submitted_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanWithdrawals(rows)
}

func scanWithdrawals(rows pgx.Rows) ([]domain.WithdrawalRequest, error) {
	var withdrawals []domain.WithdrawalRequest

	for rows.Next() {
		var w domain.WithdrawalRequest
		if err := rows.Scan(
			&w.ID, &w.UserID, &w.Amount, &w.Method, &w.Account, &w.Status, &w.SubmittedAt,
		); err != nil {
			return nil, err
		}
		withdrawals = append(withdrawals, w)
	}

	return withdrawals, rows.Err()
}
