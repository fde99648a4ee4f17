package service

import (
	"context"
	"errors"
	"fmt"

	"hubcoin/internal/repository"
)

var (
	ErrMissingFields = errors.New("missing fields")

	ErrInsufficientUnclaimedGems = errors.New("insufficient unclaimed gems")
	ErrDailyClaimLimitReached    = errors.New("daily claim limit reached")
	ErrInsufficientBalance       = errors.New("insufficient balance")
	ErrInsufficientGems          = errors.New("insufficient gems")

	ErrStoreUnavailable  = errors.New("store unavailable")
	ErrTransactionFailed = errors.New("transaction failed")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrAccountNotFound   = repository.ErrAccountNotFound
)

// RuleError is a business-rule rejection. Message is safe to show to the user;
// errors.Is matches Kind.
type RuleError struct {
	Kind    error
	Message string
}

func (e *RuleError) Error() string { return e.Message }

func (e *RuleError) Unwrap() error { return e.Kind }

func reject(kind error, format string, args ...any) *RuleError {
	return &RuleError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// IsRejection reports whether err is a business outcome rather than a failure
func IsRejection(err error) bool {
	var re *RuleError
	return errors.As(err, &re)
}

// storeError classifies a storage failure. Not-found passes through untouched.
func storeError(err error) error {
	switch {
	case errors.Is(err, repository.ErrAccountNotFound):
		return ErrAccountNotFound
	case errors.Is(err, repository.ErrCommitFailed):
		return fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	default:
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
}
