package domain

import "github.com/shopspring/decimal"

// All amounts are int64 minor units (cents): 100 = 1.00 unit.
const (
	// SendMoneyFeeThreshold is the amount above which a flat fee applies.
	SendMoneyFeeThreshold int64 = 10000 // 100.00
	// SendMoneyFlatFee is charged to the sender on top of the amount.
	SendMoneyFlatFee int64 = 500 // 5.00

	// Starting balances granted exactly once, at admin approval.
	UserStartingBalance  int64 = 4000    // 40.00
	AgentStartingBalance int64 = 1000000 // 10000.00
)

// cashOutFeeRate is the agent commission on cash-out: 1.5%.
var cashOutFeeRate = decimal.NewFromFloat(0.015)

// SendMoneyFee returns the flat fee for a send-money transfer.
func SendMoneyFee(amount int64) int64 {
	if amount > SendMoneyFeeThreshold {
		return SendMoneyFlatFee
	}
	return 0
}

// CashOutFee computes the 1.5% cash-out fee, rounded half-up to the
// nearest minor unit. The fee is computed once at request time and
// stored on the transaction; the accept step reuses the stored value,
// so the two phases can never round differently.
func CashOutFee(amount int64) int64 {
	return decimal.NewFromInt(amount).Mul(cashOutFeeRate).Round(0).IntPart()
}

// StartingBalance returns the balance granted when an account of the
// given role is approved.
func StartingBalance(role Role) int64 {
	if role == RoleAgent {
		return AgentStartingBalance
	}
	return UserStartingBalance
}
