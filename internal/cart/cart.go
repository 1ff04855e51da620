package cart

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/huettenzauber/kiosk/pkg/broadcast"
	pkgerrors "github.com/huettenzauber/kiosk/pkg/errors"
	"github.com/huettenzauber/kiosk/pkg/logger"
	"github.com/huettenzauber/kiosk/pkg/metrics"
	"github.com/huettenzauber/kiosk/pkg/storage"
	"github.com/shopspring/decimal"
)

// DepositPriceRecorder remembers the last deposit-return unit price entered
// by the operator.
type DepositPriceRecorder interface {
	RememberDepositReturnPrice(ctx context.Context, price decimal.Decimal) error
}

// Options wires a Cart.
type Options struct {
	Store          storage.Store
	Channel        broadcast.Channel
	Source         string
	Logger         *logger.Logger
	Metrics        *metrics.CartMetrics
	DepositPrices  DepositPriceRecorder
	ObserverBuffer int
}

// Cart is the per-process cart container. Every mutation runs the reducer,
// persists the result, broadcasts it to sibling processes and notifies
// local observers before returning.
type Cart struct {
	mu        sync.Mutex
	state     State
	persister *Persister
	channel   broadcast.Channel
	source    string
	deposits  DepositPriceRecorder
	logg      *logger.Logger
	metrics   *metrics.CartMetrics

	obsMu     sync.Mutex
	observers map[*Observer]struct{}
	obsBuffer int
}

// New builds a Cart and restores its state from the store.
func New(ctx context.Context, opts Options) (*Cart, error) {
	if opts.Channel == nil {
		return nil, fmt.Errorf("broadcast channel required")
	}
	if strings.TrimSpace(opts.Source) == "" {
		return nil, fmt.Errorf("source required")
	}
	logg := opts.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	persister, err := NewPersister(opts.Store, logg, opts.Metrics)
	if err != nil {
		return nil, err
	}
	buffer := opts.ObserverBuffer
	if buffer <= 0 {
		buffer = 8
	}

	c := &Cart{
		persister: persister,
		channel:   opts.Channel,
		source:    opts.Source,
		deposits:  opts.DepositPrices,
		logg:      logg,
		metrics:   opts.Metrics,
		observers: map[*Observer]struct{}{},
		obsBuffer: buffer,
	}
	c.state = persister.Load(ctx)
	c.metrics.IncTransition(string(ActionLoadFromStorage))
	return c, nil
}

// State returns the current snapshot.
func (c *Cart) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// ItemQuantity returns the quantity of the given item/variant, 0 if absent.
func (c *Cart) ItemQuantity(stockItemID, variantID int64) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.ItemQuantity(stockItemID, variantID)
}

func (c *Cart) AddItem(ctx context.Context, item ItemInput) (State, error) {
	if err := validateItem(item); err != nil {
		return State{}, err
	}
	return c.Dispatch(ctx, AddItemAction(item)), nil
}

func (c *Cart) RemoveItem(ctx context.Context, id string) State {
	return c.Dispatch(ctx, RemoveItemAction(id))
}

func (c *Cart) UpdateQuantity(ctx context.Context, id string, quantity int) State {
	return c.Dispatch(ctx, UpdateQuantityAction(id, quantity))
}

func (c *Cart) IncreaseQuantity(ctx context.Context, id string) State {
	return c.Dispatch(ctx, IncreaseQuantityAction(id))
}

func (c *Cart) DecreaseQuantity(ctx context.Context, id string) State {
	return c.Dispatch(ctx, DecreaseQuantityAction(id))
}

func (c *Cart) ClearCart(ctx context.Context) State {
	return c.Dispatch(ctx, ClearCartAction())
}

// SettleBilled subtracts the lines of billed from the cart under the cart
// lock. Lines added or raised after billed was taken stay in the cart.
func (c *Cart) SettleBilled(ctx context.Context, billed State) State {
	return c.Dispatch(ctx, SettleBilledAction(billed))
}

func (c *Cart) CleanupZeroQuantity(ctx context.Context) State {
	return c.Dispatch(ctx, CleanupZeroQuantityAction())
}

// SetDepositReturn sets or clears the manual deposit refund. A positive
// price is also remembered as the device's last-used deposit price.
func (c *Cart) SetDepositReturn(ctx context.Context, pricePerItem decimal.Decimal, quantity int) State {
	next := c.Dispatch(ctx, SetDepositReturnAction(pricePerItem, quantity))
	if c.deposits != nil && pricePerItem.IsPositive() {
		if err := c.deposits.RememberDepositReturnPrice(context.WithoutCancel(ctx), pricePerItem); err != nil {
			c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "cart.deposit_price_not_saved")
		}
	}
	return next
}

// Reset is the container teardown: the cart is cleared and persisted.
func (c *Cart) Reset(ctx context.Context) State {
	return c.Dispatch(ctx, ClearCartAction())
}

// Dispatch applies action and runs its side effects. LOAD_FROM_STORAGE only
// notifies local observers; every other action is persisted and, once
// saved, broadcast.
func (c *Cart) Dispatch(ctx context.Context, action Action) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := Reduce(c.state, action)
	c.state = next
	c.metrics.IncTransition(string(action.Kind))

	if action.Kind != ActionLoadFromStorage {
		c.persistAndPublish(context.WithoutCancel(ctx), next)
	}
	c.notify(next)
	return next.clone()
}

func (c *Cart) persistAndPublish(ctx context.Context, s State) {
	payload, err := c.persister.Save(ctx, s)
	if err != nil {
		return
	}
	msg := broadcast.Message{Source: c.source, State: payload}
	if err := c.channel.Publish(ctx, msg); err != nil {
		c.metrics.IncPersistenceFailure("publish")
		c.logg.Error(ctx, "cart.broadcast_failed", err)
	}
}

// Listen applies state-changed messages from other processes until ctx is
// cancelled or the channel closes. Messages carrying this cart's own source
// are ignored.
func (c *Cart) Listen(ctx context.Context) error {
	sub, err := c.channel.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribe to cart broadcasts: %w", err)
	}
	defer sub.Close()

	ctx = c.logg.WithField(ctx, "source", c.source)
	c.logg.Info(ctx, "cart.listener_started")

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-sub.Messages():
			if !ok {
				return nil
			}
			c.apply(ctx, msg)
		}
	}
}

func (c *Cart) apply(ctx context.Context, msg broadcast.Message) {
	if msg.Source == c.source {
		c.metrics.IncBroadcast("ignored")
		return
	}
	snapshot, err := DecodeSnapshot(msg.State)
	if err != nil {
		// fail closed: a malformed remote snapshot loads as the empty cart
		c.metrics.IncBroadcast("invalid")
		c.logg.Warn(c.logg.WithFields(ctx, map[string]any{
			"remote_source": msg.Source,
			"error":         err.Error(),
		}), "cart.remote_snapshot_discarded")
	} else {
		c.metrics.IncBroadcast("applied")
	}
	c.Dispatch(ctx, LoadFromStorageAction(snapshot))
}

func validateItem(item ItemInput) error {
	details := map[string]string{}
	if item.StockItemID <= 0 {
		details["stockItemId"] = "must be positive"
	}
	if item.VariantID <= 0 {
		details["variantId"] = "must be positive"
	}
	if strings.TrimSpace(item.Name) == "" {
		details["name"] = "is required"
	}
	if item.Price.IsNegative() {
		details["price"] = "must not be negative"
	}
	if item.DepositAmount.IsNegative() {
		details["depositAmount"] = "must not be negative"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid cart item").WithDetails(details)
	}
	return nil
}
