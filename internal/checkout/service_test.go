package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/huettenzauber/kiosk/internal/cart"
	"github.com/huettenzauber/kiosk/pkg/backend"
	"github.com/huettenzauber/kiosk/pkg/broadcast"
	pkgerrors "github.com/huettenzauber/kiosk/pkg/errors"
	"github.com/huettenzauber/kiosk/pkg/storage"
)

type stubCart struct {
	mu      sync.Mutex
	state   cart.State
	cleared int
}

func (s *stubCart) State() cart.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *stubCart) SettleBilled(_ context.Context, billed cart.State) cart.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleared++
	s.state = cart.Reduce(s.state, cart.SettleBilledAction(billed))
	return s.state
}

type memStore struct {
	mu     sync.Mutex
	values map[string]string
}

func (m *memStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return "", storage.ErrNotFound
	}
	return v, nil
}

func (m *memStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

type stubBills struct {
	req     backend.CreateBillRequest
	calls   int
	err     error
	release chan struct{}
	entered chan struct{}
}

func (s *stubBills) CreateBill(ctx context.Context, req backend.CreateBillRequest) (*backend.Bill, error) {
	s.calls++
	s.req = req
	if s.entered != nil {
		close(s.entered)
	}
	if s.release != nil {
		<-s.release
	}
	if s.err != nil {
		return nil, s.err
	}
	return &backend.Bill{ID: 42, Date: req.Date}, nil
}

func fixedClock() time.Time {
	// 23:30 UTC is already the next day in Berlin
	return time.Date(2026, 10, 16, 23, 30, 0, 0, time.UTC)
}

func newTestService(t *testing.T, c cartContainer, bills *stubBills) Service {
	t.Helper()
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	svc, err := NewService(c, bills, nil, WithClock(fixedClock), WithLocation(berlin))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func stateWithZeroLine() cart.State {
	state := scenarioState()
	snapshot := state
	snapshot.Items = append([]cart.LineItem{}, state.Items...)
	snapshot.Items = append(snapshot.Items, cart.LineItem{ID: "9-9", StockItemID: 9, VariantID: 9, Name: "pending", Price: dec("1"), Quantity: 0})
	return snapshot
}

func TestCheckoutSubmitsBillAndClearsCart(t *testing.T) {
	c := &stubCart{state: stateWithZeroLine()}
	bills := &stubBills{}
	svc := newTestService(t, c, bills)

	received := dec("10")
	receipt, err := svc.Checkout(context.Background(), Input{ReceivedAmount: &received})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if bills.req.Date != "2026-10-17" {
		t.Fatalf("unexpected bill date %q", bills.req.Date)
	}
	if len(bills.req.Items) != 2 {
		t.Fatalf("expected zero-quantity line to be skipped, got %+v", bills.req.Items)
	}
	if bills.req.Items[0] != (backend.BillLine{ItemVariantID: 1, ItemQuantity: 3}) {
		t.Fatalf("unexpected first line %+v", bills.req.Items[0])
	}
	if c.cleared != 1 {
		t.Fatalf("expected cart to be settled once, got %d", c.cleared)
	}
	if !c.State().IsEmpty() || c.State().DepositReturn != nil {
		t.Fatalf("expected empty cart after checkout, got %+v", c.State())
	}
	if receipt.Bill.ID != 42 || receipt.Change == nil || !receipt.Change.Amount.Equal(dec("2.5")) {
		t.Fatalf("unexpected receipt %+v", receipt)
	}
}

func TestCheckoutFailurePreservesCart(t *testing.T) {
	original := scenarioState()
	c := &stubCart{state: original}
	bills := &stubBills{err: pkgerrors.New(pkgerrors.CodeDependency, "create_bill request failed")}
	svc := newTestService(t, c, bills)

	_, err := svc.Checkout(context.Background(), Input{})
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if c.cleared != 0 || len(c.State().Items) != len(original.Items) {
		t.Fatal("cart must be unchanged after a failed checkout")
	}
}

func TestCheckoutWrapsUntypedErrors(t *testing.T) {
	c := &stubCart{state: scenarioState()}
	svc := newTestService(t, c, &stubBills{err: errors.New("boom")})
	_, err := svc.Checkout(context.Background(), Input{})
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	state := cart.EmptyState()
	state.Items = []cart.LineItem{{ID: "1-1", StockItemID: 1, VariantID: 1, Quantity: 0}}
	bills := &stubBills{}
	svc := newTestService(t, &stubCart{state: state}, bills)

	_, err := svc.Checkout(context.Background(), Input{})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if bills.calls != 0 {
		t.Fatal("empty cart must not be submitted")
	}
}

func TestCheckoutRejectsNegativeReceivedAmount(t *testing.T) {
	svc := newTestService(t, &stubCart{state: scenarioState()}, &stubBills{})
	negative := dec("-1")
	if _, err := svc.Checkout(context.Background(), Input{ReceivedAmount: &negative}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestConcurrentCheckoutConflicts(t *testing.T) {
	c := &stubCart{state: scenarioState()}
	bills := &stubBills{release: make(chan struct{}), entered: make(chan struct{})}
	svc := newTestService(t, c, bills)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Checkout(context.Background(), Input{})
		done <- err
	}()
	<-bills.entered

	if _, err := svc.Checkout(context.Background(), Input{}); !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	close(bills.release)
	if err := <-done; err != nil {
		t.Fatalf("first checkout failed: %v", err)
	}
}

func TestCheckoutKeepsLinesAddedWhileBillIsSubmitted(t *testing.T) {
	ctx := context.Background()
	hub := broadcast.NewHub(0)
	t.Cleanup(func() { _ = hub.Close() })
	c, err := cart.New(ctx, cart.Options{Store: &memStore{values: map[string]string{}}, Channel: hub, Source: "till-a"})
	if err != nil {
		t.Fatalf("cart: %v", err)
	}
	t.Cleanup(c.Close)

	glass := cart.ItemInput{StockItemID: 1, VariantID: 1, Name: "Glühwein", Price: dec("3.50")}
	beer := cart.ItemInput{StockItemID: 2, VariantID: 2, Name: "Bier", Price: dec("4.00")}
	if _, err := c.AddItem(ctx, glass); err != nil {
		t.Fatalf("add: %v", err)
	}

	bills := &stubBills{release: make(chan struct{}), entered: make(chan struct{})}
	svc := newTestService(t, c, bills)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Checkout(ctx, Input{})
		done <- err
	}()
	<-bills.entered

	if _, err := c.AddItem(ctx, beer); err != nil {
		t.Fatalf("add during checkout: %v", err)
	}
	if _, err := c.AddItem(ctx, glass); err != nil {
		t.Fatalf("raise during checkout: %v", err)
	}
	close(bills.release)
	if err := <-done; err != nil {
		t.Fatalf("checkout: %v", err)
	}

	if len(bills.req.Items) != 1 || bills.req.Items[0] != (backend.BillLine{ItemVariantID: 1, ItemQuantity: 1}) {
		t.Fatalf("unexpected billed lines %+v", bills.req.Items)
	}
	state := c.State()
	if got := state.ItemQuantity(2, 2); got != 1 {
		t.Fatalf("expected unbilled beer to stay in cart, got quantity %d", got)
	}
	if got := state.ItemQuantity(1, 1); got != 1 {
		t.Fatalf("expected unbilled raise to stay in cart, got quantity %d", got)
	}
	if state.TotalItems != 2 || !state.TotalAmount.Equal(dec("7.50")) {
		t.Fatalf("unexpected totals %d %s", state.TotalItems, state.TotalAmount)
	}
}

func TestSummaryWithReceivedAmount(t *testing.T) {
	svc := newTestService(t, &stubCart{state: scenarioState()}, &stubBills{})
	received := dec("5")
	quote := svc.Summary(&received)
	if !quote.Summary.TotalToPay.Equal(dec("7.5")) {
		t.Fatalf("unexpected total %s", quote.Summary.TotalToPay)
	}
	if quote.Change == nil || !quote.Change.Missing {
		t.Fatalf("expected missing change, got %+v", quote.Change)
	}
	if svc.Summary(nil).Change != nil {
		t.Fatal("expected no change without received amount")
	}
}

func TestNewServiceValidatesDependencies(t *testing.T) {
	if _, err := NewService(nil, &stubBills{}, nil); err == nil {
		t.Fatal("expected error for nil cart")
	}
	if _, err := NewService(&stubCart{}, nil, nil); err == nil {
		t.Fatal("expected error for nil submitter")
	}
}
