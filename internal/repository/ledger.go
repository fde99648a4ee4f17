package repository

import (
	"context"
	"errors"

	"hubcoin/internal/domain"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrCommitFailed    = errors.New("transaction commit failed")
)

// AccountStore is the per-user document store the rules engine runs against
type AccountStore interface {
	GetAccount(ctx context.Context, userID string) (*domain.Account, error)
	// CreateAccount inserts a unless an account with the same id exists.
	CreateAccount(ctx context.Context, a *domain.Account) (created bool, err error)
	// IncrementAccount applies commutative deltas without reading first.
	IncrementAccount(ctx context.Context, userID string, change domain.AccountChange) error
	// RunInTx locks one account, hands fn a snapshot and commits whatever fn queued
	// when it returns nil. A non-nil error from fn rolls everything back.
	RunInTx(ctx context.Context, userID string, fn func(tx AccountTx) error) error
	TopByTotalWithdrawn(ctx context.Context, limit int) ([]domain.Account, error)
}

// AccountTx is the read-decide-write view inside RunInTx
type AccountTx interface {
	Snapshot() domain.Account
	Apply(change domain.AccountChange)
	AppendWithdrawal(w *domain.WithdrawalRequest)
}

// WithdrawalStore lists recorded requests for manual review
type WithdrawalStore interface {
	ListWithdrawals(ctx context.Context, userID string, limit int) ([]domain.WithdrawalRequest, error)
}

// LeaderboardStore persists the single snapshot document
type LeaderboardStore interface {
	SaveLeaderboard(ctx context.Context, s *domain.LeaderboardSnapshot) error
	// GetLeaderboard returns nil, nil before the first save.
	GetLeaderboard(ctx context.Context) (*domain.LeaderboardSnapshot, error)
}

// LeaderboardCache sits in front of LeaderboardStore
type LeaderboardCache interface {
	Get(ctx context.Context) (*domain.LeaderboardSnapshot, error)
	Set(ctx context.Context, s *domain.LeaderboardSnapshot) error
	// Fill stores s only when nothing is cached, so a read-through never
	// replaces a snapshot written by a newer refresh.
	Fill(ctx context.Context, s *domain.LeaderboardSnapshot) error
}

// Ledger is everything the services need from storage
type Ledger interface {
	AccountStore
	WithdrawalStore
	LeaderboardStore
}

// txBuffer collects writes queued inside RunInTx until commit
type txBuffer struct {
	snapshot    domain.Account
	change      domain.AccountChange
	withdrawals []*domain.WithdrawalRequest
}

func (b *txBuffer) Snapshot() domain.Account { return b.snapshot }

func (b *txBuffer) Apply(change domain.AccountChange) {
	b.change = b.change.Merge(change)
}

func (b *txBuffer) AppendWithdrawal(w *domain.WithdrawalRequest) {
	b.withdrawals = append(b.withdrawals, w)
}
