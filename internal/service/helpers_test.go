package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"hubcoin/internal/domain"
	"hubcoin/internal/notify"
	"hubcoin/internal/repository"
)

var testNow = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

const testToday = "2026-10-15"

var errDown = errors.New("connection refused")

type capturingNotifier struct {
	mu  sync.Mutex
	got []notify.Notification
}

func (n *capturingNotifier) Enqueue(msg notify.Notification) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.got = append(n.got, msg)
	return true
}

func (n *capturingNotifier) sent() []notify.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Notification(nil), n.got...)
}

// brokenLedger fails every call
type brokenLedger struct {
	*repository.MemoryLedger
}

func (brokenLedger) GetAccount(context.Context, string) (*domain.Account, error) {
	return nil, errDown
}

func (brokenLedger) RunInTx(context.Context, string, func(repository.AccountTx) error) error {
	return errDown
}

func (brokenLedger) TopByTotalWithdrawn(context.Context, int) ([]domain.Account, error) {
	return nil, errDown
}

func (brokenLedger) GetLeaderboard(context.Context) (*domain.LeaderboardSnapshot, error) {
	return nil, errDown
}

// commitFailLedger runs fn but reports a failed commit without applying anything
type commitFailLedger struct {
	*repository.MemoryLedger
}

func (l commitFailLedger) RunInTx(ctx context.Context, userID string, fn func(repository.AccountTx) error) error {
	err := l.MemoryLedger.RunInTx(ctx, userID, func(tx repository.AccountTx) error {
		_ = fn(tx)
		return errors.New("abort")
	})
	if errors.Is(err, repository.ErrAccountNotFound) {
		return err
	}
	return repository.ErrCommitFailed
}

type memoryCache struct {
	mu   sync.Mutex
	snap *domain.LeaderboardSnapshot
	gets int
	err  error
}

func (c *memoryCache) Get(context.Context) (*domain.LeaderboardSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.err != nil {
		return nil, c.err
	}
	return c.snap, nil
}

func (c *memoryCache) Set(_ context.Context, s *domain.LeaderboardSnapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.snap = s
	return nil
}

func (c *memoryCache) Fill(_ context.Context, s *domain.LeaderboardSnapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	if c.snap == nil {
		c.snap = s
	}
	return nil
}

// racingStore runs beforeReturn after reading the snapshot but before handing it back
type racingStore struct {
	*repository.MemoryLedger
	beforeReturn func()
}

func (s *racingStore) GetLeaderboard(ctx context.Context) (*domain.LeaderboardSnapshot, error) {
	snap, err := s.MemoryLedger.GetLeaderboard(ctx)
	if s.beforeReturn != nil {
		hook := s.beforeReturn
		s.beforeReturn = nil
		hook()
	}
	return snap, err
}
