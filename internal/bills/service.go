// Package bills lists submitted bills and derives consumption statistics
// from them.
package bills

import (
	"context"
	"fmt"
	"sort"

	"github.com/huettenzauber/kiosk/pkg/backend"
	pkgerrors "github.com/huettenzauber/kiosk/pkg/errors"
	"github.com/huettenzauber/kiosk/pkg/logger"
	"github.com/shopspring/decimal"
)

// DefaultVariantName labels variants stored without a name.
const DefaultVariantName = "Standard"

type billBackend interface {
	ListBills(ctx context.Context, includeDeleted bool) ([]backend.Bill, error)
	GetBill(ctx context.Context, id int64) (*backend.Bill, error)
	DeleteBill(ctx context.Context, id int64) error
}

type variantLookup interface {
	Variant(id int64) (backend.StockItem, backend.ItemVariant, bool)
}

// VariantConsumption aggregates the bill lines of one variant.
type VariantConsumption struct {
	VariantID       int64           `json:"variant_id"`
	VariantName     string          `json:"variant_name"`
	Quantity        decimal.Decimal `json:"quantity"`
	DisplayQuantity decimal.Decimal `json:"display_quantity"`
	Revenue         decimal.Decimal `json:"revenue"`
}

// ItemConsumption aggregates the bill lines of one stock item.
type ItemConsumption struct {
	ItemID          int64                `json:"item_id"`
	ItemName        string               `json:"item_name"`
	Quantity        decimal.Decimal      `json:"quantity"`
	DisplayQuantity decimal.Decimal      `json:"display_quantity"`
	Revenue         decimal.Decimal      `json:"revenue"`
	Variants        []VariantConsumption `json:"variants"`
}

type Statistics struct {
	Items        []ItemConsumption `json:"items"`
	TotalRevenue decimal.Decimal   `json:"total_revenue"`
	BillCount    int               `json:"bill_count"`
}

type Service interface {
	List(ctx context.Context, includeDeleted bool) ([]backend.Bill, error)
	Get(ctx context.Context, id int64) (*backend.Bill, error)
	Delete(ctx context.Context, id int64) error
	Statistics(ctx context.Context) (*Statistics, error)
}

type service struct {
	backend billBackend
	catalog variantLookup
	logg    *logger.Logger
}

func NewService(b billBackend, catalog variantLookup, logg *logger.Logger) (Service, error) {
	if b == nil {
		return nil, fmt.Errorf("bill backend required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("variant lookup required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{backend: b, catalog: catalog, logg: logg}, nil
}

func (s *service) List(ctx context.Context, includeDeleted bool) ([]backend.Bill, error) {
	bills, err := s.backend.ListBills(ctx, includeDeleted)
	if err != nil {
		return nil, err
	}
	if bills == nil {
		bills = []backend.Bill{}
	}
	return bills, nil
}

func (s *service) Get(ctx context.Context, id int64) (*backend.Bill, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid bill id").
			WithDetails(map[string]string{"id": "must be positive"})
	}
	return s.backend.GetBill(ctx, id)
}

// Delete soft-deletes a bill on the backend.
func (s *service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid bill id").
			WithDetails(map[string]string{"id": "must be positive"})
	}
	if err := s.backend.DeleteBill(ctx, id); err != nil {
		return err
	}
	s.logg.Info(s.logg.WithField(ctx, "bill_id", id), "bills.deleted")
	return nil
}

func (s *service) Statistics(ctx context.Context) (*Statistics, error) {
	bills, err := s.backend.ListBills(ctx, false)
	if err != nil {
		return nil, err
	}
	stats, skipped := Aggregate(bills, s.catalog)
	if skipped > 0 {
		s.logg.Warn(s.logg.WithField(ctx, "skipped_lines", skipped), "bills.statistics_unknown_variants")
	}
	return stats, nil
}

// Aggregate builds consumption statistics over the non-deleted bills. Lines
// whose variant the catalog does not know are skipped and counted.
func Aggregate(bills []backend.Bill, catalog variantLookup) (*Statistics, int) {
	stats := &Statistics{Items: []ItemConsumption{}, TotalRevenue: decimal.Zero}
	byItem := map[int64]*ItemConsumption{}
	var order []int64
	skipped := 0

	for _, bill := range bills {
		if bill.IsDeleted {
			continue
		}
		stats.BillCount++
		for _, line := range bill.Items {
			item, variant, ok := catalog.Variant(line.ItemVariantID)
			if !ok {
				skipped++
				continue
			}
			revenue := linePrice(line, variant).Mul(line.ItemQuantity)
			display := line.ItemQuantity.Mul(variant.Steps())

			consumption, exists := byItem[item.ID]
			if !exists {
				consumption = &ItemConsumption{
					ItemID:          item.ID,
					ItemName:        item.Name,
					Quantity:        decimal.Zero,
					DisplayQuantity: decimal.Zero,
					Revenue:         decimal.Zero,
				}
				byItem[item.ID] = consumption
				order = append(order, item.ID)
			}
			consumption.Quantity = consumption.Quantity.Add(line.ItemQuantity)
			consumption.DisplayQuantity = consumption.DisplayQuantity.Add(display)
			consumption.Revenue = consumption.Revenue.Add(revenue)
			addVariant(consumption, variant, line.ItemQuantity, display, revenue)

			stats.TotalRevenue = stats.TotalRevenue.Add(revenue)
		}
	}

	for _, id := range order {
		consumption := byItem[id]
		sort.SliceStable(consumption.Variants, func(i, j int) bool {
			return consumption.Variants[i].Quantity.GreaterThan(consumption.Variants[j].Quantity)
		})
		stats.Items = append(stats.Items, *consumption)
	}
	sort.SliceStable(stats.Items, func(i, j int) bool {
		return stats.Items[i].Quantity.GreaterThan(stats.Items[j].Quantity)
	})
	return stats, skipped
}

func addVariant(c *ItemConsumption, variant backend.ItemVariant, qty, display, revenue decimal.Decimal) {
	for i := range c.Variants {
		if c.Variants[i].VariantID == variant.ID {
			c.Variants[i].Quantity = c.Variants[i].Quantity.Add(qty)
			c.Variants[i].DisplayQuantity = c.Variants[i].DisplayQuantity.Add(display)
			c.Variants[i].Revenue = c.Variants[i].Revenue.Add(revenue)
			return
		}
	}
	name := variant.Name
	if name == "" {
		name = DefaultVariantName
	}
	c.Variants = append(c.Variants, VariantConsumption{
		VariantID:       variant.ID,
		VariantName:     name,
		Quantity:        qty,
		DisplayQuantity: display,
		Revenue:         revenue,
	})
}

// linePrice prefers the price stored on the bill line and falls back to the
// variant's current price.
func linePrice(line backend.BillItem, variant backend.ItemVariant) decimal.Decimal {
	if line.ItemPrice.Valid {
		return line.ItemPrice.Decimal
	}
	return variant.Price
}
