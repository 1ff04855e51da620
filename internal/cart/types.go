package cart

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// LineItem is one cart line. Display fields are captured when the line is
// added and are not re-synced with the catalog afterwards.
type LineItem struct {
	ID            string          `json:"id"`
	StockItemID   int64           `json:"stockItemId"`
	VariantID     int64           `json:"variantId"`
	Name          string          `json:"name"`
	VariantName   string          `json:"variantName,omitempty"`
	Price         decimal.Decimal `json:"price"`
	Quantity      int             `json:"quantity"`
	CategoryID    int64           `json:"categoryId"`
	CategoryName  string          `json:"categoryName"`
	DepositAmount decimal.Decimal `json:"depositAmount"`
}

// ItemInput is a line without id and quantity, as passed to ADD_ITEM.
type ItemInput struct {
	StockItemID   int64
	VariantID     int64
	Name          string
	VariantName   string
	Price         decimal.Decimal
	CategoryID    int64
	CategoryName  string
	DepositAmount decimal.Decimal
}

// DepositReturn is the operator-entered refund for returned deposit containers.
type DepositReturn struct {
	PricePerItem decimal.Decimal `json:"pricePerItem"`
	Quantity     int             `json:"quantity"`
}

// Total is PricePerItem × Quantity.
func (d *DepositReturn) Total() decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return d.PricePerItem.Mul(decimal.NewFromInt(int64(d.Quantity)))
}

// State is an immutable cart snapshot. Totals are derived from Items.
type State struct {
	Items              []LineItem      `json:"items"`
	TotalAmount        decimal.Decimal `json:"totalAmount"`
	TotalItems         int             `json:"totalItems"`
	TotalDepositAmount decimal.Decimal `json:"totalDepositAmount"`
	DepositReturn      *DepositReturn  `json:"depositReturn,omitempty"`
}

// EmptyState returns the canonical empty cart.
func EmptyState() State {
	return State{
		Items:              []LineItem{},
		TotalAmount:        decimal.Zero,
		TotalDepositAmount: decimal.Zero,
	}
}

// LineID builds the composite line key "{stockItemId}-{variantId}".
func LineID(stockItemID, variantID int64) string {
	return strconv.FormatInt(stockItemID, 10) + "-" + strconv.FormatInt(variantID, 10)
}

// Find returns the line with id, if present.
func (s State) Find(id string) (LineItem, bool) {
	for _, item := range s.Items {
		if item.ID == id {
			return item, true
		}
	}
	return LineItem{}, false
}

// ItemQuantity returns the quantity for the given item/variant, 0 if absent.
func (s State) ItemQuantity(stockItemID, variantID int64) int {
	if item, ok := s.Find(LineID(stockItemID, variantID)); ok {
		return item.Quantity
	}
	return 0
}

// IsEmpty reports whether the cart has no lines.
func (s State) IsEmpty() bool {
	return len(s.Items) == 0
}

// clone copies the state so callers cannot mutate shared slices.
func (s State) clone() State {
	out := s
	out.Items = make([]LineItem, len(s.Items))
	copy(out.Items, s.Items)
	if s.DepositReturn != nil {
		dr := *s.DepositReturn
		out.DepositReturn = &dr
	}
	return out
}
