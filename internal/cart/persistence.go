package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/huettenzauber/kiosk/pkg/logger"
	"github.com/huettenzauber/kiosk/pkg/metrics"
	"github.com/huettenzauber/kiosk/pkg/storage"
)

// EncodeSnapshot serializes a state for the device store or a broadcast.
func EncodeSnapshot(s State) ([]byte, error) {
	if s.Items == nil {
		s.Items = []LineItem{}
	}
	return json.Marshal(s)
}

// DecodeSnapshot parses and validates a stored snapshot. A deposit return
// with both fields zero is read as absent.
func DecodeSnapshot(data []byte) (State, error) {
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return EmptyState(), fmt.Errorf("decode cart snapshot: %w", err)
	}
	if dr := s.DepositReturn; dr != nil && dr.PricePerItem.IsZero() && dr.Quantity == 0 {
		s.DepositReturn = nil
	}
	if s.Items == nil {
		s.Items = []LineItem{}
	}
	if err := Validate(s); err != nil {
		return EmptyState(), fmt.Errorf("invalid cart snapshot: %w", err)
	}
	return s, nil
}

// Persister mirrors the cart to the device store under storage.KeyCart.
type Persister struct {
	store   storage.Store
	logg    *logger.Logger
	metrics *metrics.CartMetrics
}

func NewPersister(store storage.Store, logg *logger.Logger, m *metrics.CartMetrics) (*Persister, error) {
	if store == nil {
		return nil, fmt.Errorf("store required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Persister{store: store, logg: logg, metrics: m}, nil
}

// Load restores the last saved cart. Missing, unreadable or malformed content
// yields the empty cart; errors are logged and never returned.
func (p *Persister) Load(ctx context.Context) State {
	raw, err := p.store.Get(ctx, storage.KeyCart)
	if errors.Is(err, storage.ErrNotFound) {
		return EmptyState()
	}
	if err != nil {
		p.metrics.IncPersistenceFailure("load")
		p.logg.Error(ctx, "cart.load_failed", err)
		return EmptyState()
	}

	state, err := DecodeSnapshot([]byte(raw))
	if err != nil {
		p.metrics.IncPersistenceFailure("decode")
		p.logg.Warn(p.logg.WithField(ctx, "error", err.Error()), "cart.snapshot_discarded")
		return EmptyState()
	}
	return state
}

// Save writes the snapshot and returns the encoded payload. Failures are
// logged and counted; callers only use the error to skip the broadcast.
func (p *Persister) Save(ctx context.Context, s State) ([]byte, error) {
	payload, err := EncodeSnapshot(s)
	if err != nil {
		p.metrics.IncPersistenceFailure("encode")
		p.logg.Error(ctx, "cart.encode_failed", err)
		return nil, err
	}
	if err := p.store.Set(ctx, storage.KeyCart, string(payload)); err != nil {
		p.metrics.IncPersistenceFailure("save")
		p.logg.Error(ctx, "cart.save_failed", err)
		return nil, err
	}
	return payload, nil
}
