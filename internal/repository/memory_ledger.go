package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"hubcoin/internal/domain"
)

// MemoryLedger is an in-process Ledger with the same transaction semantics as
// PostgresLedger. Every operation holds one mutex, so RunInTx is serializable.
type MemoryLedger struct {
	mu          sync.Mutex
	accounts    map[string]domain.Account
	withdrawals []domain.WithdrawalRequest
	leaderboard *domain.LeaderboardSnapshot
	now         func() time.Time
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		accounts: make(map[string]domain.Account),
		now:      time.Now,
	}
}

func (m *MemoryLedger) GetAccount(_ context.Context, userID string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.accounts[userID]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return &a, nil
}

func (m *MemoryLedger) CreateAccount(_ context.Context, a *domain.Account) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.accounts[a.UserID]; ok {
		return false, nil
	}
	m.accounts[a.UserID] = *a
	return true, nil
}

func (m *MemoryLedger) IncrementAccount(_ context.Context, userID string, change domain.AccountChange) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.accounts[userID]
	if !ok {
		return ErrAccountNotFound
	}
	m.accounts[userID] = change.ApplyTo(a)
	return nil
}

func (m *MemoryLedger) RunInTx(ctx context.Context, userID string, fn func(tx AccountTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	a, ok := m.accounts[userID]
	if !ok {
		return ErrAccountNotFound
	}

	buf := &txBuffer{snapshot: a}
	if err := fn(buf); err != nil {
		return err
	}

	m.accounts[userID] = buf.change.ApplyTo(a)
	for _, w := range buf.withdrawals {
		w.SubmittedAt = m.now().UTC()
		m.withdrawals = append(m.withdrawals, *w)
	}
	return nil
}

func (m *MemoryLedger) TopByTotalWithdrawn(_ context.Context, limit int) ([]domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	all := make([]domain.Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		all = append(all, a)
	}
	sort.Slice(all, func(i, j int) bool {
		if c := all[i].TotalWithdrawn.Cmp(all[j].TotalWithdrawn); c != 0 {
			return c > 0
		}
		return all[i].UserID < all[j].UserID
	})
	if limit >= 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (m *MemoryLedger) ListWithdrawals(_ context.Context, userID string, limit int) ([]domain.WithdrawalRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var res []domain.WithdrawalRequest
	for i := len(m.withdrawals) - 1; i >= 0; i-- {
		if m.withdrawals[i].UserID != userID {
			continue
		}
		res = append(res, m.withdrawals[i])
		if limit > 0 && len(res) == limit {
			break
		}
	}
	return res, nil
}

func (m *MemoryLedger) SaveLeaderboard(_ context.Context, s *domain.LeaderboardSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *s
	cp.Players = append([]domain.LeaderboardEntry(nil), s.Players...)
	if cp.Players == nil {
		cp.Players = []domain.LeaderboardEntry{}
	}
	m.leaderboard = &cp
	return nil
}

func (m *MemoryLedger) GetLeaderboard(_ context.Context) (*domain.LeaderboardSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.leaderboard == nil {
		return nil, nil
	}
	cp := *m.leaderboard
	return &cp, nil
}

// PutAccount overwrites an account. Used to seed state in tests and dry runs.
func (m *MemoryLedger) PutAccount(a domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[a.UserID] = a
}
