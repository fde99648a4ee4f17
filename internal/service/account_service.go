package service

import (
	"context"
	"errors"

	"hubcoin/internal/domain"
	"hubcoin/internal/logger"
	"hubcoin/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	DefaultUsername = "N/A"

	GemsPerClaim       = 2
	DailyGemClaimLimit = 6
)

// AccountRequest identifies the user behind a create-or-fetch call
type AccountRequest struct {
	UserID   string
	Username string
	// DisplayName is shown to the referrer. Falls back to Username.
	DisplayName string
	ReferrerID  string
}

type ClaimResult struct {
	Gems          int64 `json:"gems"`
	UnclaimedGems int64 `json:"unclaimedGems"`
}

type WithdrawalInput struct {
	UserID  string
	Amount  decimal.NullDecimal
	Method  string
	Account string
}

type WithdrawalResult struct {
	Balance   decimal.Decimal `json:"balance"`
	Gems      int64           `json:"gems"`
	RequestID uuid.UUID       `json:"-"`
}

// AccountService owns every balance and gem mutation
type AccountService struct {
	store     repository.AccountStore
	referrals *ReferralService
	clock     Clock
}

// NewAccountService creates the rules engine. referrals may be nil.
func NewAccountService(store repository.AccountStore, referrals *ReferralService, clock Clock) *AccountService {
	return &AccountService{
		store:     store,
		referrals: referrals,
		clock:     clock,
	}
}

// CreateOrFetch returns the stored account, creating it on first contact.
// Only the call that actually creates the account rewards the referrer.
func (s *AccountService) CreateOrFetch(ctx context.Context, req AccountRequest) (*domain.Account, bool, error) {
	if req.UserID == "" {
		return nil, false, ErrMissingFields
	}

	acc, err := s.store.GetAccount(ctx, req.UserID)
	if err == nil {
		return acc, false, nil
	}
	if !errors.Is(err, repository.ErrAccountNotFound) {
		return nil, false, storeError(err)
	}

	username := req.Username
	if username == "" {
		username = DefaultUsername
	}
	var referredBy *string
	referrer, hasReferrer := ParseReferrer(req.ReferrerID, req.UserID)
	if hasReferrer {
		referredBy = &referrer
	}

	acc = domain.NewAccount(req.UserID, username, s.clock.Today(), referredBy)
	created, err := s.store.CreateAccount(ctx, acc)
	if err != nil {
		return nil, false, storeError(err)
	}
	if !created {
		// lost the race to a concurrent first contact
		existing, err := s.store.GetAccount(ctx, req.UserID)
		if err != nil {
			return nil, false, storeError(err)
		}
		return existing, false, nil
	}

	AccountsCreated.Inc()
	logger.WithContext(ctx).Info("account created", "user_id", req.UserID, "referred_by", referrer)

	if hasReferrer && s.referrals != nil {
		name := req.DisplayName
		if name == "" {
			name = username
		}
		s.referrals.Reward(ctx, referrer, name)
	}
	return acc, true, nil
}

// ClaimGems moves GemsPerClaim unclaimed gems into the spendable balance,
// at most DailyGemClaimLimit per calendar day.
func (s *AccountService) ClaimGems(ctx context.Context, userID string) (ClaimResult, error) {
	if userID == "" {
		return ClaimResult{}, ErrMissingFields
	}
	today := s.clock.Today()

	res, err := inAccountTx(ctx, s.store, userID, func(tx repository.AccountTx) (ClaimResult, *RuleError) {
		acc := tx.Snapshot()
		if acc.UnclaimedGems < GemsPerClaim {
			return ClaimResult{}, reject(ErrInsufficientUnclaimedGems, "You need at least %d gems.", GemsPerClaim)
		}

		claimed := acc.GemsClaimedToday
		if acc.LastGemClaimDate != today {
			tx.Apply(domain.AccountChange{GemsClaimedToday: -acc.GemsClaimedToday, LastGemClaimDate: &today})
			claimed = 0
		}
		if claimed >= DailyGemClaimLimit {
			return ClaimResult{}, reject(ErrDailyClaimLimitReached, "Daily gem claiming limit reached (%d/day).", DailyGemClaimLimit)
		}

		tx.Apply(domain.AccountChange{
			Gems:             GemsPerClaim,
			UnclaimedGems:    -GemsPerClaim,
			GemsClaimedToday: GemsPerClaim,
		})
		return ClaimResult{
			Gems:          acc.Gems + GemsPerClaim,
			UnclaimedGems: acc.UnclaimedGems - GemsPerClaim,
		}, nil
	})

	GemClaims.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		if !IsRejection(err) && !errors.Is(err, ErrAccountNotFound) {
			logger.WithContext(ctx).Error("claim gems failed", "user_id", userID, "error", err)
		}
		return ClaimResult{}, err
	}
	logger.WithContext(ctx).Debug("gems claimed", "user_id", userID, "gems", res.Gems)
	return res, nil
}

// RequestWithdrawal debits balance and the gem fee and records a pending
// request for manual payout. totalWithdrawn is left to the payout process.
func (s *AccountService) RequestWithdrawal(ctx context.Context, in WithdrawalInput) (WithdrawalResult, error) {
	if in.UserID == "" || in.Method == "" || in.Account == "" || !in.Amount.Valid || in.Amount.Decimal.IsZero() {
		WithdrawalRequests.WithLabelValues(methodLabel(in.Method), outcome(ErrMissingFields)).Inc()
		return WithdrawalResult{}, ErrMissingFields
	}
	amount := in.Amount.Decimal
	required := RequiredGems(in.Method, amount)
	fee := required.Truncate(0).IntPart()

	res, err := inAccountTx(ctx, s.store, in.UserID, func(tx repository.AccountTx) (WithdrawalResult, *RuleError) {
		acc := tx.Snapshot()
		if acc.Balance.LessThan(amount) {
			return WithdrawalResult{}, reject(ErrInsufficientBalance, "Insufficient balance.")
		}
		if decimal.NewFromInt(acc.Gems).LessThan(required) {
			return WithdrawalResult{}, reject(ErrInsufficientGems, "Insufficient gems. You need %d gems.", fee)
		}

		w := domain.NewWithdrawalRequest(in.UserID, amount, in.Method, in.Account)
		tx.Apply(domain.AccountChange{Balance: amount.Neg(), Gems: -fee})
		tx.AppendWithdrawal(w)
		return WithdrawalResult{
			Balance:   acc.Balance.Sub(amount),
			Gems:      acc.Gems - fee,
			RequestID: w.ID,
		}, nil
	})

	WithdrawalRequests.WithLabelValues(methodLabel(in.Method), outcome(err)).Inc()
	if err != nil {
		if !IsRejection(err) && !errors.Is(err, ErrAccountNotFound) {
			logger.WithContext(ctx).Error("withdrawal failed", "user_id", in.UserID, "error", err)
		}
		return WithdrawalResult{}, err
	}
	logger.WithContext(ctx).Info("withdrawal requested",
		"user_id", in.UserID,
		"request_id", res.RequestID,
		"amount", amount.String(),
		"method", in.Method,
		"gem_fee", fee,
	)
	return res, nil
}
