package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"hubcoin/internal/domain"
	"hubcoin/internal/logger"
	"hubcoin/internal/notify"
	"hubcoin/internal/repository"

	"github.com/shopspring/decimal"
)

var ReferralBonus = decimal.NewFromInt(25)

const ReferralGems = 2

// Notifier queues a message for asynchronous delivery
type Notifier interface {
	Enqueue(n notify.Notification) bool
}

// ReferralService credits referrers when someone joins through their link
type ReferralService struct {
	store    repository.AccountStore
	notifier Notifier
	log      *slog.Logger
}

// NewReferralService creates the service. notifier may be nil.
func NewReferralService(store repository.AccountStore, notifier Notifier) *ReferralService {
	return &ReferralService{
		store:    store,
		notifier: notifier,
		log:      logger.With("component", "referral_service"),
	}
}

// ParseReferrer validates a /start argument. A referrer must be a Telegram
// id made of digits only and must not be the new user.
func ParseReferrer(arg, selfID string) (string, bool) {
	if arg == "" || arg == selfID {
		return "", false
	}
	for _, r := range arg {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return arg, true
}

// Reward credits the referrer and queues a notification. Failures are logged
// and never reach the caller; the new account stands either way.
func (s *ReferralService) Reward(ctx context.Context, referrerID, newUserName string) bool {
	err := s.store.IncrementAccount(ctx, referrerID, domain.AccountChange{
		Balance:       ReferralBonus,
		UnclaimedGems: ReferralGems,
		Refs:          1,
	})
	ReferralRewards.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		s.log.Warn("referral reward failed", "referrer_id", referrerID, "error", err)
		return false
	}
	s.log.Info("referrer rewarded", "referrer_id", referrerID)

	if s.notifier == nil {
		return true
	}
	chatID, err := strconv.ParseInt(referrerID, 10, 64)
	if err != nil {
		s.log.Warn("referrer id is not a chat id", "referrer_id", referrerID)
		return true
	}
	s.notifier.Enqueue(notify.Notification{
		ChatID: chatID,
		Text: fmt.Sprintf("🎉 Congratulations! %s joined using your link. You received %s TK and %d Gems!",
			newUserName, ReferralBonus.String(), ReferralGems),
	})
	return true
}
