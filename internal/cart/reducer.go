package cart

import (
	"github.com/shopspring/decimal"
)

// ActionKind enumerates the cart transitions.
type ActionKind string

const (
	ActionAddItem             ActionKind = "ADD_ITEM"
	ActionRemoveItem          ActionKind = "REMOVE_ITEM"
	ActionUpdateQuantity      ActionKind = "UPDATE_QUANTITY"
	ActionIncreaseQuantity    ActionKind = "INCREASE_QUANTITY"
	ActionDecreaseQuantity    ActionKind = "DECREASE_QUANTITY"
	ActionClearCart           ActionKind = "CLEAR_CART"
	ActionLoadFromStorage     ActionKind = "LOAD_FROM_STORAGE"
	ActionSetDepositReturn    ActionKind = "SET_DEPOSIT_RETURN"
	ActionCleanupZeroQuantity ActionKind = "CLEANUP_ZERO_QUANTITY"
	ActionSettleBilled        ActionKind = "SETTLE_BILLED"
)

// Action is a single reducer input. Only the fields relevant to Kind are read.
type Action struct {
	Kind         ActionKind
	Item         ItemInput
	ID           string
	Quantity     int
	PricePerItem decimal.Decimal
	Snapshot     State
}

func AddItemAction(item ItemInput) Action { return Action{Kind: ActionAddItem, Item: item} }

func RemoveItemAction(id string) Action { return Action{Kind: ActionRemoveItem, ID: id} }

func UpdateQuantityAction(id string, quantity int) Action {
	return Action{Kind: ActionUpdateQuantity, ID: id, Quantity: quantity}
}

func IncreaseQuantityAction(id string) Action { return Action{Kind: ActionIncreaseQuantity, ID: id} }

func DecreaseQuantityAction(id string) Action { return Action{Kind: ActionDecreaseQuantity, ID: id} }

func ClearCartAction() Action { return Action{Kind: ActionClearCart} }

func LoadFromStorageAction(snapshot State) Action {
	return Action{Kind: ActionLoadFromStorage, Snapshot: snapshot}
}

func SetDepositReturnAction(pricePerItem decimal.Decimal, quantity int) Action {
	return Action{Kind: ActionSetDepositReturn, PricePerItem: pricePerItem, Quantity: quantity}
}

func CleanupZeroQuantityAction() Action { return Action{Kind: ActionCleanupZeroQuantity} }

// SettleBilledAction removes what a submitted bill covered. billed is the
// snapshot the bill was built from.
func SettleBilledAction(billed State) Action {
	return Action{Kind: ActionSettleBilled, Snapshot: billed}
}

// Reduce computes the next state. It never mutates state and never fails:
// unknown kinds return state unchanged and malformed snapshots load as the
// empty cart.
func Reduce(state State, action Action) State {
	switch action.Kind {
	case ActionLoadFromStorage:
		if err := Validate(action.Snapshot); err != nil {
			return EmptyState()
		}
		return action.Snapshot.clone()

	case ActionAddItem:
		id := LineID(action.Item.StockItemID, action.Item.VariantID)
		next := state.clone()
		if idx := indexOf(next.Items, id); idx >= 0 {
			next.Items[idx].Quantity++
		} else {
			in := action.Item
			next.Items = append(next.Items, LineItem{
				ID:            id,
				StockItemID:   in.StockItemID,
				VariantID:     in.VariantID,
				Name:          in.Name,
				VariantName:   in.VariantName,
				Price:         in.Price,
				Quantity:      1,
				CategoryID:    in.CategoryID,
				CategoryName:  in.CategoryName,
				DepositAmount: in.DepositAmount,
			})
		}
		return withTotals(next)

	case ActionRemoveItem:
		return withTotals(removeLine(state.clone(), action.ID))

	case ActionUpdateQuantity:
		qty := action.Quantity
		if qty < 0 {
			qty = 0
		}
		if qty == 0 {
			return withTotals(removeLine(state.clone(), action.ID))
		}
		next := state.clone()
		if idx := indexOf(next.Items, action.ID); idx >= 0 {
			next.Items[idx].Quantity = qty
		}
		return withTotals(next)

	case ActionIncreaseQuantity:
		next := state.clone()
		if idx := indexOf(next.Items, action.ID); idx >= 0 {
			next.Items[idx].Quantity++
		}
		return withTotals(next)

	case ActionDecreaseQuantity:
		next := state.clone()
		idx := indexOf(next.Items, action.ID)
		if idx < 0 {
			return withTotals(next)
		}
		if next.Items[idx].Quantity <= 1 {
			return withTotals(removeLine(next, action.ID))
		}
		next.Items[idx].Quantity--
		return withTotals(next)

	case ActionClearCart:
		return EmptyState()

	case ActionSetDepositReturn:
		next := state.clone()
		price := action.PricePerItem
		if price.IsNegative() {
			price = decimal.Zero
		}
		if price.IsZero() || action.Quantity <= 0 {
			next.DepositReturn = nil
		} else {
			next.DepositReturn = &DepositReturn{PricePerItem: price, Quantity: action.Quantity}
		}
		return withTotals(next)

	case ActionCleanupZeroQuantity:
		next := state.clone()
		kept := next.Items[:0]
		for _, item := range next.Items {
			if item.Quantity > 0 {
				kept = append(kept, item)
			}
		}
		next.Items = kept
		return withTotals(next)

	case ActionSettleBilled:
		next := state.clone()
		kept := make([]LineItem, 0, len(next.Items))
		for _, item := range next.Items {
			if billed, ok := action.Snapshot.Find(item.ID); ok {
				item.Quantity -= billed.Quantity
			}
			if item.Quantity > 0 {
				kept = append(kept, item)
			}
		}
		next.Items = kept
		if sameDepositReturn(next.DepositReturn, action.Snapshot.DepositReturn) {
			next.DepositReturn = nil
		}
		return withTotals(next)

	default:
		return state
	}
}

func sameDepositReturn(a, b *DepositReturn) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Quantity == b.Quantity && a.PricePerItem.Equal(b.PricePerItem)
}

func indexOf(items []LineItem, id string) int {
	for i, item := range items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func removeLine(state State, id string) State {
	idx := indexOf(state.Items, id)
	if idx < 0 {
		return state
	}
	state.Items = append(state.Items[:idx], state.Items[idx+1:]...)
	return state
}

func withTotals(state State) State {
	amount := decimal.Zero
	deposit := decimal.Zero
	count := 0
	for _, item := range state.Items {
		qty := decimal.NewFromInt(int64(item.Quantity))
		amount = amount.Add(item.Price.Mul(qty))
		deposit = deposit.Add(item.DepositAmount.Mul(qty))
		count += item.Quantity
	}
	state.TotalAmount = amount
	state.TotalItems = count
	state.TotalDepositAmount = deposit
	return state
}
