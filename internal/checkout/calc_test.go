package checkout

import (
	"testing"

	"github.com/huettenzauber/kiosk/internal/cart"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func scenarioState() cart.State {
	state := cart.EmptyState()
	for i := 0; i < 3; i++ {
		state = cart.Reduce(state, cart.AddItemAction(cart.ItemInput{StockItemID: 1, VariantID: 1, Name: "A", Price: dec("2.50")}))
	}
	state = cart.Reduce(state, cart.AddItemAction(cart.ItemInput{StockItemID: 2, VariantID: 2, Name: "B", Price: dec("5.00"), DepositAmount: dec("1.00")}))
	return cart.Reduce(state, cart.SetDepositReturnAction(dec("2.00"), 3))
}

func TestSummarizeScenario(t *testing.T) {
	s := Summarize(scenarioState())
	checks := map[string][2]decimal.Decimal{
		"totalAmount":        {dec("12.50"), s.TotalAmount},
		"totalDepositAmount": {dec("1.00"), s.TotalDepositAmount},
		"totalWithDeposit":   {dec("13.50"), s.TotalWithDeposit},
		"depositReturnTotal": {dec("6.00"), s.DepositReturnTotal},
		"totalToPay":         {dec("7.50"), s.TotalToPay},
	}
	for name, pair := range checks {
		if !pair[0].Equal(pair[1]) {
			t.Fatalf("%s = %s, want %s", name, pair[1], pair[0])
		}
	}
	if s.TotalItems != 4 {
		t.Fatalf("expected 4 items, got %d", s.TotalItems)
	}
}

func TestComputeChange(t *testing.T) {
	s := Summarize(scenarioState())

	change := ComputeChange(dec("10.00"), s)
	if change.Missing || !change.Amount.Equal(dec("2.50")) {
		t.Fatalf("unexpected change %+v", change)
	}

	short := ComputeChange(dec("5.00"), s)
	if !short.Missing || !short.Amount.Equal(dec("2.50")) {
		t.Fatalf("expected 2.50 missing, got %+v", short)
	}

	exact := ComputeChange(dec("7.50"), s)
	if exact.Missing || !exact.Amount.IsZero() {
		t.Fatalf("expected zero change, got %+v", exact)
	}
}

func TestTotalToPayMayBeNegative(t *testing.T) {
	state := cart.Reduce(cart.EmptyState(), cart.AddItemAction(cart.ItemInput{StockItemID: 1, VariantID: 1, Name: "A", Price: dec("1.00")}))
	state = cart.Reduce(state, cart.SetDepositReturnAction(dec("2.00"), 2))
	s := Summarize(state)
	if !s.TotalToPay.Equal(dec("-3")) {
		t.Fatalf("expected -3, got %s", s.TotalToPay)
	}
	change := ComputeChange(decimal.Zero, s)
	if change.Missing || !change.Amount.Equal(dec("3")) {
		t.Fatalf("expected 3 back, got %+v", change)
	}
}

func TestSummarizeEmptyCart(t *testing.T) {
	s := Summarize(cart.EmptyState())
	if !s.TotalToPay.IsZero() || !s.DepositReturnTotal.IsZero() {
		t.Fatalf("expected zero totals, got %+v", s)
	}
}
