package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// The mini-app reads balances as plain numbers (balance.toFixed(2)).
	decimal.MarshalJSONWithoutQuotes = true
}

// DateLayout is the ISO date format stored in lastGemClaimDate
const DateLayout = "2006-01-02"

// Account is the per-user ledger document
type Account struct {
	UserID           string          `db:"user_id" json:"userId"`
	Username         string          `db:"username" json:"username"`
	Balance          decimal.Decimal `db:"balance" json:"balance"`
	Gems             int64           `db:"gems" json:"gems"`
	UnclaimedGems    int64           `db:"unclaimed_gems" json:"unclaimedGems"`
	GemsClaimedToday int64           `db:"gems_claimed_today" json:"gemsClaimedToday"`
	LastGemClaimDate string          `db:"last_gem_claim_date" json:"lastGemClaimDate"`
	Refs             int64           `db:"refs" json:"refs"`
	AdWatch          int64           `db:"ad_watch" json:"adWatch"`
	TodayIncome      decimal.Decimal `db:"today_income" json:"todayIncome"`
	TotalWithdrawn   decimal.Decimal `db:"total_withdrawn" json:"totalWithdrawn"`
	ReferredBy       *string         `db:"referred_by" json:"referredBy"`
}

// NewAccount returns a zeroed account whose claim counter is anchored to today
func NewAccount(userID, username, today string, referredBy *string) *Account {
	return &Account{
		UserID:           userID,
		Username:         username,
		Balance:          decimal.Zero,
		TodayIncome:      decimal.Zero,
		TotalWithdrawn:   decimal.Zero,
		LastGemClaimDate: today,
		ReferredBy:       referredBy,
	}
}

// AccountChange is a set of commutative deltas plus an optional date overwrite.
// Both transactional writes and bare increments are expressed with it.
type AccountChange struct {
	Balance          decimal.Decimal
	Gems             int64
	UnclaimedGems    int64
	GemsClaimedToday int64
	Refs             int64
	LastGemClaimDate *string
}

// Merge folds other into c. A later date overwrite wins.
func (c AccountChange) Merge(other AccountChange) AccountChange {
	out := AccountChange{
		Balance:          c.Balance.Add(other.Balance),
		Gems:             c.Gems + other.Gems,
		UnclaimedGems:    c.UnclaimedGems + other.UnclaimedGems,
		GemsClaimedToday: c.GemsClaimedToday + other.GemsClaimedToday,
		Refs:             c.Refs + other.Refs,
		LastGemClaimDate: c.LastGemClaimDate,
	}
	if other.LastGemClaimDate != nil {
		out.LastGemClaimDate = other.LastGemClaimDate
	}
	return out
}

// IsZero reports whether applying c would change nothing
func (c AccountChange) IsZero() bool {
	return c.Balance.IsZero() && c.Gems == 0 && c.UnclaimedGems == 0 &&
		c.GemsClaimedToday == 0 && c.Refs == 0 && c.LastGemClaimDate == nil
}

// ApplyTo returns a copy of a with c applied
func (c AccountChange) ApplyTo(a Account) Account {
	a.Balance = a.Balance.Add(c.Balance)
	a.Gems += c.Gems
	a.UnclaimedGems += c.UnclaimedGems
	a.GemsClaimedToday += c.GemsClaimedToday
	a.Refs += c.Refs
	if c.LastGemClaimDate != nil {
		a.LastGemClaimDate = *c.LastGemClaimDate
	}
	return a
}

// UserID is a client-supplied identifier. Telegram sends numbers, older clients send strings.
type UserID string

var errBadUserID = errors.New("user_id must be a string or a number")

func (u *UserID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*u = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*u = UserID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errBadUserID
	}
	*u = UserID(n.String())
	return nil
}

func (u UserID) String() string { return string(u) }
