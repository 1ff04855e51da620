// Package catalog keeps the confirmed category and stock item snapshot the
// order screen renders from. Every mutation goes to the backend first; the
// snapshot only changes after the backend accepted it.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/huettenzauber/kiosk/pkg/backend"
	"github.com/huettenzauber/kiosk/pkg/enums"
	pkgerrors "github.com/huettenzauber/kiosk/pkg/errors"
	"github.com/huettenzauber/kiosk/pkg/logger"
	"github.com/shopspring/decimal"
)

const maxCategoryNameLength = 50

type catalogBackend interface {
	ListCategories(ctx context.Context) ([]backend.Category, error)
	CreateCategory(ctx context.Context, in backend.CategoryInput) (*backend.Category, error)
	UpdateCategory(ctx context.Context, id int64, in backend.CategoryInput) (*backend.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	ReorderCategories(ctx context.Context, orderedIDs []int64) error
	ListStockItems(ctx context.Context) ([]backend.StockItem, error)
	CreateStockItem(ctx context.Context, in backend.StockItemInput) (*backend.StockItem, error)
	UpdateStockItem(ctx context.Context, id int64, in backend.StockItemInput) (*backend.StockItem, error)
	DeleteStockItem(ctx context.Context, id int64) error
	ReorderStockItems(ctx context.Context, orderedIDs []int64) error
	CreateVariant(ctx context.Context, in backend.VariantInput) (*backend.ItemVariant, error)
	UpdateVariant(ctx context.Context, id int64, in backend.VariantInput) (*backend.ItemVariant, error)
	DeleteVariant(ctx context.Context, id int64) error
}

// Snapshot is the last catalog state confirmed by the backend.
type Snapshot struct {
	Categories []backend.Category  `json:"categories"`
	StockItems []backend.StockItem `json:"stock_items"`
	LoadedAt   time.Time           `json:"loaded_at"`
}

// PriceRange is the min/max price over a stock item's active variants.
type PriceRange struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

type Service interface {
	Reload(ctx context.Context) (Snapshot, error)
	Snapshot() Snapshot
	CreateCategory(ctx context.Context, in backend.CategoryInput) (*backend.Category, error)
	UpdateCategory(ctx context.Context, id int64, in backend.CategoryInput) (*backend.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	ReorderCategories(ctx context.Context, orderedIDs []int64) error
	CreateStockItem(ctx context.Context, in backend.StockItemInput) (*backend.StockItem, error)
	UpdateStockItem(ctx context.Context, id int64, in backend.StockItemInput) (*backend.StockItem, error)
	DeleteStockItem(ctx context.Context, id int64) error
	ReorderStockItems(ctx context.Context, orderedIDs []int64) error
	CreateVariant(ctx context.Context, in backend.VariantInput) (*backend.ItemVariant, error)
	UpdateVariant(ctx context.Context, id int64, in backend.VariantInput) (*backend.ItemVariant, error)
	DeleteVariant(ctx context.Context, id int64) error
	ItemsInCategory(categoryID int64) []backend.StockItem
	Variant(id int64) (backend.StockItem, backend.ItemVariant, bool)
}

type service struct {
	backend catalogBackend
	logg    *logger.Logger
	now     func() time.Time

	mu       sync.RWMutex
	snapshot Snapshot
	// started numbers reloads; applied is the number of the snapshot in place.
	started uint64
	applied uint64
}

func NewService(b catalogBackend, logg *logger.Logger) (Service, error) {
	if b == nil {
		return nil, fmt.Errorf("catalog backend required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		backend:  b,
		logg:     logg,
		now:      time.Now,
		snapshot: Snapshot{Categories: []backend.Category{}, StockItems: []backend.StockItem{}},
	}, nil
}

// Reload fetches categories and stock items and swaps the snapshot. On error
// the previous snapshot stays in place. When reloads overlap, the one started
// last wins; an earlier one finishing late is discarded.
func (s *service) Reload(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	s.started++
	seq := s.started
	s.mu.Unlock()

	categories, err := s.backend.ListCategories(ctx)
	if err != nil {
		return s.Snapshot(), err
	}
	items, err := s.backend.ListStockItems(ctx)
	if err != nil {
		return s.Snapshot(), err
	}
	for i := range categories {
		categories[i].Icon = enums.ResolveCategoryIcon(categories[i].Icon).String()
	}
	if categories == nil {
		categories = []backend.Category{}
	}
	if items == nil {
		items = []backend.StockItem{}
	}

	next := Snapshot{Categories: categories, StockItems: items, LoadedAt: s.now().UTC()}
	s.mu.Lock()
	if seq < s.applied {
		current := copySnapshot(s.snapshot)
		s.mu.Unlock()
		s.logg.Debug(s.logg.WithField(ctx, "reload", seq), "catalog.reload_superseded")
		return current, nil
	}
	s.snapshot = next
	s.applied = seq
	s.mu.Unlock()

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"categories":  len(categories),
		"stock_items": len(items),
	}), "catalog.reloaded")
	return copySnapshot(next), nil
}

func (s *service) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySnapshot(s.snapshot)
}

func (s *service) CreateCategory(ctx context.Context, in backend.CategoryInput) (*backend.Category, error) {
	in, err := normalizeCategory(in)
	if err != nil {
		return nil, err
	}
	created, err := s.backend.CreateCategory(ctx, in)
	if err != nil {
		return nil, err
	}
	s.refresh(ctx, "create_category")
	return created, nil
}

func (s *service) UpdateCategory(ctx context.Context, id int64, in backend.CategoryInput) (*backend.Category, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	in, err := normalizeCategory(in)
	if err != nil {
		return nil, err
	}
	updated, err := s.backend.UpdateCategory(ctx, id, in)
	if err != nil {
		return nil, err
	}
	s.refresh(ctx, "update_category")
	return updated, nil
}

func (s *service) DeleteCategory(ctx context.Context, id int64) error {
	if err := requireID("id", id); err != nil {
		return err
	}
	if err := s.backend.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.refresh(ctx, "delete_category")
	return nil
}

func (s *service) ReorderCategories(ctx context.Context, orderedIDs []int64) error {
	if err := validateOrder(orderedIDs); err != nil {
		return err
	}
	if err := s.backend.ReorderCategories(ctx, orderedIDs); err != nil {
		return err
	}
	s.refresh(ctx, "reorder_categories")
	return nil
}

func (s *service) CreateStockItem(ctx context.Context, in backend.StockItemInput) (*backend.StockItem, error) {
	in, err := normalizeStockItem(in)
	if err != nil {
		return nil, err
	}
	created, err := s.backend.CreateStockItem(ctx, in)
	if err != nil {
		return nil, err
	}
	s.refresh(ctx, "create_stock_item")
	return created, nil
}

func (s *service) UpdateStockItem(ctx context.Context, id int64, in backend.StockItemInput) (*backend.StockItem, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	in, err := normalizeStockItem(in)
	if err != nil {
		return nil, err
	}
	updated, err := s.backend.UpdateStockItem(ctx, id, in)
	if err != nil {
		return nil, err
	}
	s.refresh(ctx, "update_stock_item")
	return updated, nil
}

func (s *service) DeleteStockItem(ctx context.Context, id int64) error {
	if err := requireID("id", id); err != nil {
		return err
	}
	if err := s.backend.DeleteStockItem(ctx, id); err != nil {
		return err
	}
	s.refresh(ctx, "delete_stock_item")
	return nil
}

func (s *service) ReorderStockItems(ctx context.Context, orderedIDs []int64) error {
	if err := validateOrder(orderedIDs); err != nil {
		return err
	}
	if err := s.backend.ReorderStockItems(ctx, orderedIDs); err != nil {
		return err
	}
	s.refresh(ctx, "reorder_stock_items")
	return nil
}

func (s *service) CreateVariant(ctx context.Context, in backend.VariantInput) (*backend.ItemVariant, error) {
	if err := requireID("stock_item_id", in.StockItemID); err != nil {
		return nil, err
	}
	if details := variantDetails(in, "", map[string]string{}); len(details) > 0 {
		return nil, validationError(details)
	}
	created, err := s.backend.CreateVariant(ctx, in)
	if err != nil {
		return nil, err
	}
	s.refresh(ctx, "create_variant")
	return created, nil
}

func (s *service) UpdateVariant(ctx context.Context, id int64, in backend.VariantInput) (*backend.ItemVariant, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	if details := variantDetails(in, "", map[string]string{}); len(details) > 0 {
		return nil, validationError(details)
	}
	updated, err := s.backend.UpdateVariant(ctx, id, in)
	if err != nil {
		return nil, err
	}
	s.refresh(ctx, "update_variant")
	return updated, nil
}

func (s *service) DeleteVariant(ctx context.Context, id int64) error {
	if err := requireID("id", id); err != nil {
		return err
	}
	if err := s.backend.DeleteVariant(ctx, id); err != nil {
		return err
	}
	s.refresh(ctx, "delete_variant")
	return nil
}

// ItemsInCategory returns the active stock items of a category in catalog order.
func (s *service) ItemsInCategory(categoryID int64) []backend.StockItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]backend.StockItem, 0)
	for _, item := range s.snapshot.StockItems {
		if item.CategoryID == categoryID && item.Active() {
			items = append(items, item)
		}
	}
	return items
}

// Variant looks up a variant and its stock item in the snapshot.
func (s *service) Variant(id int64) (backend.StockItem, backend.ItemVariant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return findVariant(s.snapshot.StockItems, id)
}

// PriceRangeOf returns the price range over the active variants of item. ok
// is false when the item has no active variant.
func PriceRangeOf(item backend.StockItem) (PriceRange, bool) {
	var (
		r     PriceRange
		found bool
	)
	for _, v := range item.ItemVariants {
		if !v.Active() {
			continue
		}
		if !found {
			r = PriceRange{Min: v.Price, Max: v.Price}
			found = true
			continue
		}
		if v.Price.LessThan(r.Min) {
			r.Min = v.Price
		}
		if v.Price.GreaterThan(r.Max) {
			r.Max = v.Price
		}
	}
	return r, found
}

func findVariant(items []backend.StockItem, variantID int64) (backend.StockItem, backend.ItemVariant, bool) {
	for _, item := range items {
		for _, v := range item.ItemVariants {
			if v.ID == variantID {
				return item, v, true
			}
		}
	}
	return backend.StockItem{}, backend.ItemVariant{}, false
}

// refresh reloads after a confirmed mutation. A failed reload keeps the old
// snapshot; the mutation itself already succeeded.
func (s *service) refresh(ctx context.Context, op string) {
	if _, err := s.Reload(ctx); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "operation", op), "catalog.reload_failed", err)
	}
}

func copySnapshot(in Snapshot) Snapshot {
	out := Snapshot{
		Categories: append([]backend.Category{}, in.Categories...),
		StockItems: make([]backend.StockItem, len(in.StockItems)),
		LoadedAt:   in.LoadedAt,
	}
	for i, item := range in.StockItems {
		item.ItemVariants = append([]backend.ItemVariant{}, item.ItemVariants...)
		out.StockItems[i] = item
	}
	return out
}

func normalizeCategory(in backend.CategoryInput) (backend.CategoryInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	details := map[string]string{}
	switch {
	case in.Name == "":
		details["name"] = "is required"
	case utf8.RuneCountInString(in.Name) > maxCategoryNameLength:
		details["name"] = fmt.Sprintf("must be at most %d characters", maxCategoryNameLength)
	}
	if len(details) > 0 {
		return in, validationError(details)
	}
	in.Icon = enums.ResolveCategoryIcon(in.Icon).String()
	return in, nil
}

func normalizeStockItem(in backend.StockItemInput) (backend.StockItemInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	details := map[string]string{}
	if in.Name == "" {
		details["name"] = "is required"
	}
	if in.CategoryID <= 0 {
		details["category_id"] = "must be positive"
	}
	if in.DepositAmount.IsNegative() {
		details["deposit_amount"] = "must not be negative"
	}
	if len(in.ItemVariants) == 0 {
		details["item_variants"] = "at least one variant is required"
	}
	for i, v := range in.ItemVariants {
		variantDetails(v, fmt.Sprintf("item_variants[%d].", i), details)
	}
	if len(details) > 0 {
		return in, validationError(details)
	}
	return in, nil
}

func variantDetails(v backend.VariantInput, prefix string, details map[string]string) map[string]string {
	if v.Price.IsNegative() {
		details[prefix+"price"] = "must not be negative"
	}
	if !v.BillSteps.IsPositive() {
		details[prefix+"bill_steps"] = "must be positive"
	}
	return details
}

func validateOrder(ids []int64) error {
	if len(ids) == 0 {
		return validationError(map[string]string{"ordered_ids": "must not be empty"})
	}
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if id <= 0 {
			return validationError(map[string]string{"ordered_ids": "ids must be positive"})
		}
		if _, dup := seen[id]; dup {
			return validationError(map[string]string{"ordered_ids": fmt.Sprintf("duplicate id %d", id)})
		}
		seen[id] = struct{}{}
	}
	return nil
}

func requireID(field string, id int64) error {
	if id <= 0 {
		return validationError(map[string]string{field: "must be positive"})
	}
	return nil
}

func validationError(details map[string]string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid catalog input").WithDetails(details)
}
