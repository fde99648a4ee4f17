package repository

import (
	"context"
	"errors"
	"testing"

	"hubcoin/internal/domain"

	"github.com/shopspring/decimal"
)

var (
	_ Ledger = (*MemoryLedger)(nil)
	_ Ledger = (*PostgresLedger)(nil)

	_ LeaderboardCache = (*RedisLeaderboardCache)(nil)
)

func TestMemoryLedgerCreateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryLedger()

	created, err := m.CreateAccount(ctx, domain.NewAccount("1", "alice", "2026-10-15", nil))
	if err != nil || !created {
		t.Fatalf("first create: created=%v err=%v", created, err)
	}
	created, err = m.CreateAccount(ctx, domain.NewAccount("1", "mallory", "2026-10-16", nil))
	if err != nil || created {
		t.Fatalf("second create: created=%v err=%v", created, err)
	}

	a, err := m.GetAccount(ctx, "1")
	if err != nil {
		t.Fatal(err)
	}
	if a.Username != "alice" || a.LastGemClaimDate != "2026-10-15" {
		t.Fatalf("second create must not overwrite: %+v", a)
	}
}

func TestMemoryLedgerRunInTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryLedger()
	m.PutAccount(domain.Account{UserID: "1", Gems: 10})

	boom := errors.New("boom")
	err := m.RunInTx(ctx, "1", func(tx AccountTx) error {
		tx.Apply(domain.AccountChange{Gems: -10})
		tx.AppendWithdrawal(domain.NewWithdrawalRequest("1", decimal.NewFromInt(5), domain.MethodBinance, "addr"))
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error, got %v", err)
	}

	a, _ := m.GetAccount(ctx, "1")
	if a.Gems != 10 {
		t.Fatalf("gems changed on rollback: %d", a.Gems)
	}
	ws, _ := m.ListWithdrawals(ctx, "1", 0)
	if len(ws) != 0 {
		t.Fatalf("withdrawal recorded on rollback: %v", ws)
	}
}

func TestMemoryLedgerRunInTxCommits(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryLedger()
	m.PutAccount(domain.Account{UserID: "1", Gems: 10, Balance: decimal.NewFromInt(100)})

	err := m.RunInTx(ctx, "1", func(tx AccountTx) error {
		if tx.Snapshot().Gems != 10 {
			t.Fatalf("snapshot gems = %d", tx.Snapshot().Gems)
		}
		tx.Apply(domain.AccountChange{Gems: -4})
		tx.Apply(domain.AccountChange{Balance: decimal.NewFromInt(-30)})
		tx.AppendWithdrawal(domain.NewWithdrawalRequest("1", decimal.NewFromInt(30), domain.MethodNagad, "017"))
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	a, _ := m.GetAccount(ctx, "1")
	if a.Gems != 6 || !a.Balance.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("unexpected account: %+v", a)
	}
	ws, _ := m.ListWithdrawals(ctx, "1", 10)
	if len(ws) != 1 || ws[0].Status != domain.WithdrawalStatusPending || ws[0].SubmittedAt.IsZero() {
		t.Fatalf("unexpected withdrawals: %+v", ws)
	}
}

func TestMemoryLedgerMissingAccount(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryLedger()

	if _, err := m.GetAccount(ctx, "nope"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("get: %v", err)
	}
	if err := m.IncrementAccount(ctx, "nope", domain.AccountChange{Refs: 1}); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("increment: %v", err)
	}
	err := m.RunInTx(ctx, "nope", func(AccountTx) error { return nil })
	if !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("tx: %v", err)
	}
}

func TestMemoryLedgerTopByTotalWithdrawn(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryLedger()
	m.PutAccount(domain.Account{UserID: "a", TotalWithdrawn: decimal.NewFromInt(10)})
	m.PutAccount(domain.Account{UserID: "b", TotalWithdrawn: decimal.NewFromInt(30)})
	m.PutAccount(domain.Account{UserID: "c", TotalWithdrawn: decimal.NewFromInt(10)})

	top, err := m.TopByTotalWithdrawn(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 2 || top[0].UserID != "b" || top[1].UserID != "a" {
		t.Fatalf("unexpected order: %+v", top)
	}
}

func TestMemoryLedgerLeaderboardRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryLedger()

	s, err := m.GetLeaderboard(ctx)
	if err != nil || s != nil {
		t.Fatalf("expected nil before first save, got %v %v", s, err)
	}

	players := []domain.LeaderboardEntry{{Rank: 1, Username: "bob", TotalWithdrawn: decimal.NewFromInt(30)}}
	if err := m.SaveLeaderboard(ctx, &domain.LeaderboardSnapshot{Players: players}); err != nil {
		t.Fatal(err)
	}
	players[0].Username = "changed"

	s, _ = m.GetLeaderboard(ctx)
	if len(s.Players) != 1 || s.Players[0].Username != "bob" {
		t.Fatalf("snapshot should be stored by value: %+v", s)
	}
}
