package checkout

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/huettenzauber/kiosk/internal/cart"
	"github.com/huettenzauber/kiosk/pkg/backend"
	pkgerrors "github.com/huettenzauber/kiosk/pkg/errors"
	"github.com/huettenzauber/kiosk/pkg/logger"
	"github.com/huettenzauber/kiosk/pkg/metrics"
	"github.com/shopspring/decimal"
)

const billDateLayout = "2006-01-02"

type cartContainer interface {
	State() cart.State
	SettleBilled(ctx context.Context, billed cart.State) cart.State
}

type billSubmitter interface {
	CreateBill(ctx context.Context, req backend.CreateBillRequest) (*backend.Bill, error)
}

// Service settles the current cart as a bill.
type Service interface {
	Summary(received *decimal.Decimal) Quote
	Checkout(ctx context.Context, input Input) (*Receipt, error)
}

// Input carries the optional cash amount handed over by the customer.
type Input struct {
	ReceivedAmount *decimal.Decimal
}

// Quote is the pre-payment view of the cart.
type Quote struct {
	Summary Summary `json:"summary"`
	Change  *Change `json:"change,omitempty"`
}

// Receipt is returned after a successful checkout.
type Receipt struct {
	Bill    backend.Bill `json:"bill"`
	Summary Summary      `json:"summary"`
	Change  *Change      `json:"change,omitempty"`
}

type service struct {
	cart     cartContainer
	bills    billSubmitter
	logg     *logger.Logger
	metrics  *metrics.CheckoutMetrics
	now      func() time.Time
	location *time.Location
	inFlight atomic.Bool
}

// Option configures optional service behavior.
type Option func(*service)

// WithClock overrides the time source used for bill dates.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the timezone bill dates are stamped in.
func WithLocation(loc *time.Location) Option {
	return func(s *service) {
		if loc != nil {
			s.location = loc
		}
	}
}

func WithMetrics(m *metrics.CheckoutMetrics) Option {
	return func(s *service) { s.metrics = m }
}

func NewService(c cartContainer, bills billSubmitter, logg *logger.Logger, opts ...Option) (Service, error) {
	if c == nil {
		return nil, fmt.Errorf("cart required")
	}
	if bills == nil {
		return nil, fmt.Errorf("bill submitter required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	svc := &service{
		cart:     c,
		bills:    bills,
		logg:     logg,
		now:      time.Now,
		location: time.UTC,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc, nil
}

func (s *service) Summary(received *decimal.Decimal) Quote {
	summary := Summarize(s.cart.State())
	quote := Quote{Summary: summary}
	if received != nil {
		change := ComputeChange(*received, summary)
		quote.Change = &change
	}
	return quote
}

// Checkout submits the non-zero cart lines as a bill and settles exactly those
// lines on success. On failure the cart is left exactly as it was.
func (s *service) Checkout(ctx context.Context, input Input) (*Receipt, error) {
	if input.ReceivedAmount != nil && input.ReceivedAmount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "received amount must not be negative").
			WithDetails(map[string]string{"receivedAmount": "must not be negative"})
	}
	if !s.inFlight.CompareAndSwap(false, true) {
		s.metrics.IncOutcome(metrics.CheckoutConflict)
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "checkout already in progress")
	}
	defer s.inFlight.Store(false)

	billed := cart.Reduce(s.cart.State(), cart.CleanupZeroQuantityAction())
	if billed.IsEmpty() {
		s.metrics.IncOutcome(metrics.CheckoutEmpty)
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	lines := billLines(billed)
	summary := Summarize(billed)
	req := backend.CreateBillRequest{
		Date:  s.now().In(s.location).Format(billDateLayout),
		Items: lines,
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"bill_date":  req.Date,
		"bill_lines": len(lines),
	})

	bill, err := s.bills.CreateBill(ctx, req)
	if err != nil {
		s.metrics.IncOutcome(metrics.CheckoutFailure)
		s.logg.Error(ctx, "checkout.submit_failed", err)
		if pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "submit bill")
	}

	// only what was billed; lines added meanwhile stay for the next sale
	s.cart.SettleBilled(ctx, billed)
	s.metrics.IncOutcome(metrics.CheckoutSuccess)
	s.logg.Info(s.logg.WithField(ctx, "bill_id", bill.ID), "checkout.completed")

	receipt := &Receipt{Bill: *bill, Summary: summary}
	if input.ReceivedAmount != nil {
		change := ComputeChange(*input.ReceivedAmount, summary)
		receipt.Change = &change
	}
	return receipt, nil
}

func billLines(state cart.State) []backend.BillLine {
	lines := make([]backend.BillLine, 0, len(state.Items))
	for _, item := range state.Items {
		lines = append(lines, backend.BillLine{
			ItemVariantID: item.VariantID,
			ItemQuantity:  item.Quantity,
		})
	}
	return lines
}
