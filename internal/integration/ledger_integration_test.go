package integration

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"hubcoin/internal/domain"
	"hubcoin/internal/migrations"
	"hubcoin/internal/repository"
	"hubcoin/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

func openLedger(t *testing.T) (*pgxpool.Pool, *repository.PostgresLedger) {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	db, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(db.Close)

	if err := migrations.Apply(context.Background(), db, nil); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return db, repository.NewPostgresLedger(db)
}

// uniqueID keeps runs against a shared database from colliding
func uniqueID(t *testing.T) string {
	return fmt.Sprintf("it-%s-%d", t.Name(), time.Now().UnixNano())
}

func TestPostgresLedgerCreateAndIncrement(t *testing.T) {
	ctx := context.Background()
	_, ledger := openLedger(t)
	id := uniqueID(t)

	created, err := ledger.CreateAccount(ctx, domain.NewAccount(id, "alice", "2026-10-15", nil))
	if err != nil || !created {
		t.Fatalf("create: created=%v err=%v", created, err)
	}
	created, err = ledger.CreateAccount(ctx, domain.NewAccount(id, "mallory", "2026-10-16", nil))
	if err != nil || created {
		t.Fatalf("second create: created=%v err=%v", created, err)
	}

	if err := ledger.IncrementAccount(ctx, id, domain.AccountChange{
		Balance: decimal.RequireFromString("25.0"), UnclaimedGems: 2, Refs: 1,
	}); err != nil {
		t.Fatalf("increment: %v", err)
	}

	acc, err := ledger.GetAccount(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if acc.Username != "alice" || !acc.Balance.Equal(decimal.NewFromInt(25)) || acc.UnclaimedGems != 2 || acc.Refs != 1 {
		t.Fatalf("unexpected account: %+v", acc)
	}

	if err := ledger.IncrementAccount(ctx, id+"-missing", domain.AccountChange{Refs: 1}); !errors.Is(err, repository.ErrAccountNotFound) {
		t.Fatalf("increment missing: %v", err)
	}
}

func TestPostgresLedgerConcurrentClaims(t *testing.T) {
	ctx := context.Background()
	_, ledger := openLedger(t)
	id := uniqueID(t)

	if _, err := ledger.CreateAccount(ctx, domain.NewAccount(id, "bob", "2026-10-14", nil)); err != nil {
		t.Fatal(err)
	}
	if err := ledger.IncrementAccount(ctx, id, domain.AccountChange{UnclaimedGems: 100, GemsClaimedToday: 6}); err != nil {
		t.Fatal(err)
	}

	svc := service.NewAccountService(ledger, nil, service.FixedClock(time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)))

	var ok atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.ClaimGems(ctx, id); err == nil {
				ok.Add(1)
			}
		}()
	}
	wg.Wait()

	if ok.Load() != 3 {
		t.Fatalf("successful claims = %d; want 3", ok.Load())
	}
	acc, _ := ledger.GetAccount(ctx, id)
	if acc.Gems != 6 || acc.UnclaimedGems != 94 || acc.GemsClaimedToday != 6 || acc.LastGemClaimDate != "2026-10-15" {
		t.Fatalf("unexpected account: %+v", acc)
	}
}

func TestPostgresLedgerWithdrawal(t *testing.T) {
	ctx := context.Background()
	_, ledger := openLedger(t)
	id := uniqueID(t)

	if _, err := ledger.CreateAccount(ctx, domain.NewAccount(id, "carol", "2026-10-15", nil)); err != nil {
		t.Fatal(err)
	}
	if err := ledger.IncrementAccount(ctx, id, domain.AccountChange{Balance: decimal.NewFromInt(1000), Gems: 60}); err != nil {
		t.Fatal(err)
	}

	svc := service.NewAccountService(ledger, nil, service.NewClock(time.UTC))
	in := service.WithdrawalInput{UserID: id, Amount: decimal.NewNullDecimal(decimal.NewFromInt(500)), Method: "Bkash", Account: "017"}

	res, err := svc.RequestWithdrawal(ctx, in)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Balance.Equal(decimal.NewFromInt(500)) || res.Gems != 31 {
		t.Fatalf("unexpected result: %+v", res)
	}

	list, err := ledger.ListWithdrawals(ctx, id, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].ID != res.RequestID || list[0].Status != domain.WithdrawalStatusPending {
		t.Fatalf("unexpected withdrawals: %+v", list)
	}
}

func TestPostgresLedgerLeaderboardSnapshot(t *testing.T) {
	ctx := context.Background()
	_, ledger := openLedger(t)

	now := time.Now().UTC().Truncate(time.Millisecond)
	snap := &domain.LeaderboardSnapshot{
		Players:     []domain.LeaderboardEntry{{Rank: 1, Username: "dave", TotalWithdrawn: decimal.NewFromInt(700)}},
		LastUpdated: &now,
	}
	if err := ledger.SaveLeaderboard(ctx, snap); err != nil {
		t.Fatal(err)
	}

	got, err := ledger.GetLeaderboard(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Players) != 1 || got.Players[0].Username != "dave" || got.LastUpdated == nil || !got.LastUpdated.Equal(now) {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
}
