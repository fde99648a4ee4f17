package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WithdrawalStatus represents withdrawal review status. Only pending is written here;
// the rest are set by manual review.
type WithdrawalStatus string

const (
	WithdrawalStatusPending  WithdrawalStatus = "pending"
	WithdrawalStatusApproved WithdrawalStatus = "approved"
	WithdrawalStatusRejected WithdrawalStatus = "rejected"
)

// Payout methods with a known fee schedule
const (
	MethodBkash   = "Bkash"
	MethodNagad   = "Nagad"
	MethodBinance = "Binance"
)

// WithdrawalRequest is an append-only cash-out request
type WithdrawalRequest struct {
	ID          uuid.UUID        `db:"id" json:"id"`
	UserID      string           `db:"user_id" json:"userId"`
	Amount      decimal.Decimal  `db:"amount" json:"amount"`
	Method      string           `db:"method" json:"method"`
	Account     string           `db:"account" json:"account"`
	Status      WithdrawalStatus `db:"status" json:"status"`
	SubmittedAt time.Time        `db:"submitted_at" json:"submittedAt"`
}

// NewWithdrawalRequest builds a pending request with a fresh id
func NewWithdrawalRequest(userID string, amount decimal.Decimal, method, account string) *WithdrawalRequest {
	return &WithdrawalRequest{
		ID:      uuid.New(),
		UserID:  userID,
		Amount:  amount,
		Method:  method,
		Account: account,
		Status:  WithdrawalStatusPending,
	}
}
