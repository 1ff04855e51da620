package backend

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Category mirrors the backend category resource.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

type CategoryInput struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// ItemVariant is a priced option of a stock item.
type ItemVariant struct {
	ID          int64           `json:"id"`
	StockItemID int64           `json:"stock_item_id,omitempty"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	BillSteps   decimal.Decimal `json:"bill_steps"`
	IsActive    *bool           `json:"is_active,omitempty"`
}

// Active treats a missing flag as active.
func (v ItemVariant) Active() bool {
	return v.IsActive == nil || *v.IsActive
}

// Steps returns the bill step multiplier, defaulting to 1.
func (v ItemVariant) Steps() decimal.Decimal {
	if !v.BillSteps.IsPositive() {
		return decimal.NewFromInt(1)
	}
	return v.BillSteps
}

type StockItem struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	CategoryID    int64           `json:"category_id"`
	DepositAmount decimal.Decimal `json:"deposit_amount"`
	IsActive      *bool           `json:"is_active,omitempty"`
	ItemVariants  []ItemVariant   `json:"item_variants"`
}

func (s StockItem) Active() bool {
	return s.IsActive == nil || *s.IsActive
}

// VariantInput is sent when creating or updating a variant. ID is set for
// existing variants inside a stock item update.
type VariantInput struct {
	ID          int64           `json:"id,omitempty"`
	StockItemID int64           `json:"stock_item_id,omitempty"`
	Name        *string         `json:"name"`
	Price       decimal.Decimal `json:"price"`
	BillSteps   decimal.Decimal `json:"bill_steps"`
}

// MarshalJSON sends amounts as bare JSON numbers; the backend's numeric
// fields do not accept quoted decimals.
func (v VariantInput) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID          int64       `json:"id,omitempty"`
		StockItemID int64       `json:"stock_item_id,omitempty"`
		Name        *string     `json:"name"`
		Price       json.Number `json:"price"`
		BillSteps   json.Number `json:"bill_steps"`
	}{v.ID, v.StockItemID, v.Name, json.Number(v.Price.String()), json.Number(v.BillSteps.String())})
}

type StockItemInput struct {
	Name          string          `json:"name"`
	CategoryID    int64           `json:"category_id"`
	DepositAmount decimal.Decimal `json:"deposit_amount"`
	ItemVariants  []VariantInput  `json:"item_variants"`
}

func (s StockItemInput) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name          string         `json:"name"`
		CategoryID    int64          `json:"category_id"`
		DepositAmount json.Number    `json:"deposit_amount"`
		ItemVariants  []VariantInput `json:"item_variants"`
	}{s.Name, s.CategoryID, json.Number(s.DepositAmount.String()), s.ItemVariants})
}

// Bill is a submitted order.
type Bill struct {
	ID        int64      `json:"id"`
	Date      string     `json:"date"`
	IsDeleted bool       `json:"is_deleted"`
	Items     []BillItem `json:"items"`
}

// BillItem is one bill line. ItemPrice is the unit price at order time and
// may be missing for older bills.
type BillItem struct {
	ID            int64               `json:"id,omitempty"`
	BillID        int64               `json:"bill_id,omitempty"`
	ItemVariantID int64               `json:"item_variant_id"`
	ItemQuantity  decimal.Decimal     `json:"item_quantity"`
	ItemPrice     decimal.NullDecimal `json:"item_price"`
}

type BillLine struct {
	ItemVariantID int64 `json:"item_variant_id"`
	ItemQuantity  int   `json:"item_quantity"`
}

// CreateBillRequest is the POST /bills/ body.
type CreateBillRequest struct {
	Date  string     `json:"date"`
	Items []BillLine `json:"items"`
}
