package cart

import "fmt"

// Validate reports whether a snapshot is well formed: unique composite ids,
// non-negative amounts, and a symmetric deposit return.
func Validate(s State) error {
	seen := make(map[string]struct{}, len(s.Items))
	for i, item := range s.Items {
		if item.ID == "" {
			return fmt.Errorf("item %d: empty id", i)
		}
		if item.ID != LineID(item.StockItemID, item.VariantID) {
			return fmt.Errorf("item %d: id %q does not match %s", i, item.ID, LineID(item.StockItemID, item.VariantID))
		}
		if _, dup := seen[item.ID]; dup {
			return fmt.Errorf("item %d: duplicate id %q", i, item.ID)
		}
		seen[item.ID] = struct{}{}
		if item.Quantity < 0 {
			return fmt.Errorf("item %q: negative quantity", item.ID)
		}
		if item.Price.IsNegative() {
			return fmt.Errorf("item %q: negative price", item.ID)
		}
		if item.DepositAmount.IsNegative() {
			return fmt.Errorf("item %q: negative deposit", item.ID)
		}
	}
	if s.TotalItems < 0 || s.TotalAmount.IsNegative() || s.TotalDepositAmount.IsNegative() {
		return fmt.Errorf("negative totals")
	}
	if dr := s.DepositReturn; dr != nil {
		if !dr.PricePerItem.IsPositive() || dr.Quantity <= 0 {
			return fmt.Errorf("deposit return must have positive price and quantity")
		}
	}
	return nil
}
