package service

import (
	"hubcoin/internal/domain"

	"github.com/shopspring/decimal"
)

type feeTier struct {
	amount int64
	gems   int64
}

var (
	mobileWalletTiers = []feeTier{{500, 29}, {1000, 49}, {1500, 79}}
	binanceTiers      = []feeTier{{5, 58}, {10, 100}, {15, 150}}

	fiveHundred = decimal.NewFromInt(500)
	fifty       = decimal.NewFromInt(50)
	ten         = decimal.NewFromInt(10)
)

// RequiredGems returns the gem fee for withdrawing amount via method.
// Off-tier amounts use the linear fallbacks. Methods without a schedule
// cost 0 gems. The result may be fractional; callers deduct its integer part.
func RequiredGems(method string, amount decimal.Decimal) decimal.Decimal {
	switch method {
	case domain.MethodBkash, domain.MethodNagad:
		if gems, ok := tierFee(mobileWalletTiers, amount); ok {
			return gems
		}
		return amount.Div(fiveHundred).Mul(fifty)
	case domain.MethodBinance:
		if gems, ok := tierFee(binanceTiers, amount); ok {
			return gems
		}
		return amount.Mul(ten)
	default:
		return decimal.Zero
	}
}

func tierFee(tiers []feeTier, amount decimal.Decimal) (decimal.Decimal, bool) {
	for _, t := range tiers {
		if amount.Equal(decimal.NewFromInt(t.amount)) {
			return decimal.NewFromInt(t.gems), true
		}
	}
	return decimal.Decimal{}, false
}

// KnownMethod reports whether method has a fee schedule
func KnownMethod(method string) bool {
	switch method {
	case domain.MethodBkash, domain.MethodNagad, domain.MethodBinance:
		return true
	}
	return false
}
