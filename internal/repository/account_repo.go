package repository

import (
	"context"
	"errors"
	"fmt"

	"hubcoin/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const selectAccount = `
	SELECT user_id, COALESCE(username, ''), balance, gems, unclaimed_gems, gems_claimed_today,
	       last_gem_claim_date, refs, ad_watch, today_income, total_withdrawn, referred_by
	FROM accounts`

const applyAccountChange = `
	UPDATE accounts SET
		balance = balance + $2,
		gems = gems + $3,
		unclaimed_gems = unclaimed_gems + $4,
		gems_claimed_today = gems_claimed_today + $5,
		refs = refs + $6,
		last_gem_claim_date = COALESCE($7::text, last_gem_claim_date)
	WHERE user_id = $1`

// PostgresLedger implements Ledger on top of pgx
type PostgresLedger struct {
	db *pgxpool.Pool
}

func NewPostgresLedger(db *pgxpool.Pool) *PostgresLedger {
	return &PostgresLedger{db: db}
}

func (r *PostgresLedger) GetAccount(ctx context.Context, userID string) (*domain.Account, error) {
	return scanAccount(r.db.QueryRow(ctx, selectAccount+` WHERE user_id = $1`, userID))
}

func (r *PostgresLedger) CreateAccount(ctx context.Context, a *domain.Account) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO accounts (user_id, username, balance, gems, unclaimed_gems, gems_claimed_today,
		                      last_gem_claim_date, refs, ad_watch, today_income, total_withdrawn, referred_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (user_id) DO NOTHING`,
		a.UserID, a.Username, a.Balance, a.Gems, a.UnclaimedGems, a.GemsClaimedToday,
		a.LastGemClaimDate, a.Refs, a.AdWatch, a.TodayIncome, a.TotalWithdrawn, a.ReferredBy,
	)
	if err != nil {
		return false, fmt.Errorf("insert account %s: %w", a.UserID, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PostgresLedger) IncrementAccount(ctx context.Context, userID string, change domain.AccountChange) error {
	tag, err := r.db.Exec(ctx, applyAccountChange, changeArgs(userID, change)...)
	if err != nil {
		return fmt.Errorf("increment account %s: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (r *PostgresLedger) RunInTx(ctx context.Context, userID string, fn func(tx AccountTx) error) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Lock the row for the rest of the transaction
	acc, err := scanAccount(tx.QueryRow(ctx, selectAccount+` WHERE user_id = $1 FOR UPDATE`, userID))
	if err != nil {
		return err
	}

	buf := &txBuffer{snapshot: *acc}
	if err := fn(buf); err != nil {
		return err
	}

	if !buf.change.IsZero() {
		if _, err := tx.Exec(ctx, applyAccountChange, changeArgs(userID, buf.change)...); err != nil {
			return fmt.Errorf("apply account change: %w", err)
		}
	}
	for _, w := range buf.withdrawals {
		if err := insertWithdrawal(ctx, tx, w); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrCommitFailed, err)
	}
	return nil
}

// TopByTotalWithdrawn returns accounts ordered by lifetime withdrawals, ties by user id
func (r *PostgresLedger) TopByTotalWithdrawn(ctx context.Context, limit int) ([]domain.Account, error) {
	rows, err := r.db.Query(ctx, selectAccount+`
		ORDER BY total_withdrawn DESC, user_id
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *a)
	}
	return res, rows.Err()
}

func changeArgs(userID string, c domain.AccountChange) []any {
	return []any{userID, c.Balance, c.Gems, c.UnclaimedGems, c.GemsClaimedToday, c.Refs, c.LastGemClaimDate}
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	if err := row.Scan(
		&a.UserID,
		&a.Username,
		&a.Balance,
		&a.Gems,
		&a.UnclaimedGems,
		&a.GemsClaimedToday,
		&a.LastGemClaimDate,
		&a.Refs,
		&a.AdWatch,
		&a.TodayIncome,
		&a.TotalWithdrawn,
		&a.ReferredBy,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &a, nil
}
