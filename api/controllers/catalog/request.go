package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/huettenzauber/kiosk/pkg/backend"
)

type CategoryRequest struct {
	Name string `json:"name" validate:"required,max=50"`
	Icon string `json:"icon"`
}

func (r CategoryRequest) toInput() backend.CategoryInput {
	return backend.CategoryInput{Name: r.Name, Icon: r.Icon}
}

// Amount ranges (price >= 0, bill_steps > 0, deposit >= 0) are checked by the
// catalog service; validator tags do not apply to decimals.

// OrderRequest carries the full new order of categories or stock items.
type OrderRequest struct {
	OrderedIDs []int64 `json:"ordered_ids" validate:"required,min=1"`
}

type VariantRequest struct {
	ID          int64           `json:"id"`
	StockItemID int64           `json:"stock_item_id"`
	Name        *string         `json:"name"`
	Price       decimal.Decimal `json:"price"`
	BillSteps   decimal.Decimal `json:"bill_steps"`
}

func (r VariantRequest) toInput() backend.VariantInput {
	return backend.VariantInput{
		ID:          r.ID,
		StockItemID: r.StockItemID,
		Name:        r.Name,
		Price:       r.Price,
		BillSteps:   r.BillSteps,
	}
}

type StockItemRequest struct {
	Name          string           `json:"name" validate:"required"`
	CategoryID    int64            `json:"category_id" validate:"required,gt=0"`
	DepositAmount decimal.Decimal  `json:"deposit_amount"`
	ItemVariants  []VariantRequest `json:"item_variants" validate:"required,min=1,dive"`
}

func (r StockItemRequest) toInput() backend.StockItemInput {
	variants := make([]backend.VariantInput, 0, len(r.ItemVariants))
	for _, v := range r.ItemVariants {
		variants = append(variants, v.toInput())
	}
	return backend.StockItemInput{
		Name:          r.Name,
		CategoryID:    r.CategoryID,
		DepositAmount: r.DepositAmount,
		ItemVariants:  variants,
	}
}

// StockItemView adds the derived price range to a stock item.
type StockItemView struct {
	backend.StockItem
	PriceRange *PriceRangeView `json:"price_range,omitempty"`
}

type PriceRangeView struct {
	Min string `json:"min"`
	Max string `json:"max"`
}

type CatalogView struct {
	Categories []backend.Category `json:"categories"`
	StockItems []StockItemView    `json:"stock_items"`
	Icons      []string           `json:"icons"`
}
