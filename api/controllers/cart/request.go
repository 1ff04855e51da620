package cart

import (
	cartsvc "github.com/huettenzauber/kiosk/internal/cart"
	"github.com/shopspring/decimal"
)

// AddItemRequest is the line the order screen adds; id and quantity are
// derived by the cart.
type AddItemRequest struct {
	StockItemID   int64           `json:"stockItemId" validate:"required,gt=0"`
	VariantID     int64           `json:"variantId" validate:"required,gt=0"`
	Name          string          `json:"name" validate:"required"`
	VariantName   string          `json:"variantName"`
	Price         decimal.Decimal `json:"price"`
	CategoryID    int64           `json:"categoryId"`
	CategoryName  string          `json:"categoryName"`
	DepositAmount decimal.Decimal `json:"depositAmount"`
}

func (r AddItemRequest) toInput() cartsvc.ItemInput {
	return cartsvc.ItemInput{
		StockItemID:   r.StockItemID,
		VariantID:     r.VariantID,
		Name:          r.Name,
		VariantName:   r.VariantName,
		Price:         r.Price,
		CategoryID:    r.CategoryID,
		CategoryName:  r.CategoryName,
		DepositAmount: r.DepositAmount,
	}
}

// UpdateQuantityRequest sets an absolute quantity; zero or less removes the line.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

type DepositReturnRequest struct {
	PricePerItem decimal.Decimal `json:"pricePerItem"`
	Quantity     int             `json:"quantity"`
}

type QuantityResponse struct {
	StockItemID int64 `json:"stockItemId"`
	VariantID   int64 `json:"variantId"`
	Quantity    int   `json:"quantity"`
}
