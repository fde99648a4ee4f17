package service

import (
	"context"

	"hubcoin/internal/repository"
)

// inAccountTx runs decide against a locked snapshot of one account.
// A rejection from decide still commits whatever it queued before rejecting.
func inAccountTx[T any](ctx context.Context, store repository.AccountStore, userID string,
	decide func(tx repository.AccountTx) (T, *RuleError)) (T, error) {
	var (
		out      T
		rejected *RuleError
	)
	err := store.RunInTx(ctx, userID, func(tx repository.AccountTx) error {
		out, rejected = decide(tx)
		return nil
	})
	if err != nil {
		var zero T
		return zero, storeError(err)
	}
	if rejected != nil {
		var zero T
		return zero, rejected
	}
	return out, nil
}
