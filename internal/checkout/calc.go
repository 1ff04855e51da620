package checkout

import (
	"github.com/huettenzauber/kiosk/internal/cart"
	"github.com/shopspring/decimal"
)

// Summary is the amount breakdown shown before payment.
type Summary struct {
	TotalAmount        decimal.Decimal `json:"totalAmount"`
	TotalDepositAmount decimal.Decimal `json:"totalDepositAmount"`
	TotalWithDeposit   decimal.Decimal `json:"totalWithDeposit"`
	DepositReturnTotal decimal.Decimal `json:"depositReturnTotal"`
	// TotalToPay may be negative when the deposit return exceeds the order.
	TotalToPay decimal.Decimal `json:"totalToPay"`
	TotalItems int             `json:"totalItems"`
}

// Change is the amount handed back to the customer. When the received amount
// is too small, Amount holds the missing sum and Missing is set.
type Change struct {
	Amount  decimal.Decimal `json:"amount"`
	Missing bool            `json:"missing"`
}

// Summarize derives the payment totals from a cart snapshot.
func Summarize(state cart.State) Summary {
	withDeposit := state.TotalAmount.Add(state.TotalDepositAmount)
	returned := state.DepositReturn.Total()
	return Summary{
		TotalAmount:        state.TotalAmount,
		TotalDepositAmount: state.TotalDepositAmount,
		TotalWithDeposit:   withDeposit,
		DepositReturnTotal: returned,
		TotalToPay:         withDeposit.Sub(returned),
		TotalItems:         state.TotalItems,
	}
}

// ComputeChange returns received + depositReturnTotal - totalWithDeposit,
// reported as an absolute amount with Missing set when negative.
func ComputeChange(received decimal.Decimal, s Summary) Change {
	diff := received.Add(s.DepositReturnTotal).Sub(s.TotalWithDeposit)
	if diff.IsNegative() {
		return Change{Amount: diff.Abs(), Missing: true}
	}
	return Change{Amount: diff}
}
