package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/huettenzauber/kiosk/pkg/errors"
	"github.com/huettenzauber/kiosk/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func newTestClient(t *testing.T, rt roundTripFunc) *Client {
	t.Helper()
	client, err := NewClient("http://backend.test/", WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	if _, err := NewClient("  "); !errors.Is(err, errBaseURLRequired) {
		t.Fatalf("expected errBaseURLRequired, got %v", err)
	}
}

func TestListStockItemsDecodesFloatsAsDecimals(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		if req.Method != http.MethodGet || req.URL.String() != "http://backend.test/stock-items/" {
			t.Fatalf("unexpected request %s %s", req.Method, req.URL)
		}
		return jsonResponse(http.StatusOK, `[{"id":4,"name":"Glühwein","category_id":2,"deposit_amount":2.0,"is_active":true,
			"item_variants":[{"id":7,"name":null,"price":3.5,"bill_steps":0.2}]}]`), nil
	})

	items, err := client.ListStockItems(context.Background())
	if err != nil {
		t.Fatalf("list stock items: %v", err)
	}
	if len(items) != 1 || len(items[0].ItemVariants) != 1 {
		t.Fatalf("unexpected items %+v", items)
	}
	v := items[0].ItemVariants[0]
	if !v.Price.Equal(decimal.RequireFromString("3.5")) || !v.BillSteps.Equal(decimal.RequireFromString("0.2")) {
		t.Fatalf("unexpected variant %+v", v)
	}
	if !v.Active() || !items[0].Active() {
		t.Fatal("expected active item and variant")
	}
}

func TestCreateBillSendsBody(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		if req.Method != http.MethodPost || req.URL.Path != "/bills/" {
			t.Fatalf("unexpected request %s %s", req.Method, req.URL)
		}
		if req.Header.Get("Content-Type") != "application/json" {
			t.Fatalf("missing content type")
		}
		var payload map[string]any
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if payload["date"] != "2026-10-17" {
			t.Fatalf("unexpected date %v", payload["date"])
		}
		items := payload["items"].([]any)
		first := items[0].(map[string]any)
		if first["item_variant_id"].(float64) != 7 || first["item_quantity"].(float64) != 3 {
			t.Fatalf("unexpected item %v", first)
		}
		return jsonResponse(http.StatusCreated, `{"id":99,"date":"2026-10-17","is_deleted":false,"items":[{"item_variant_id":7,"item_quantity":3}]}`), nil
	})

	bill, err := client.CreateBill(context.Background(), CreateBillRequest{
		Date:  "2026-10-17",
		Items: []BillLine{{ItemVariantID: 7, ItemQuantity: 3}},
	})
	if err != nil {
		t.Fatalf("create bill: %v", err)
	}
	if bill.ID != 99 || bill.Items[0].ItemPrice.Valid {
		t.Fatalf("unexpected bill %+v", bill)
	}
}

func TestCreateStockItemSendsAmountsAsNumbers(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		for _, want := range []string{`"deposit_amount":2.5`, `"price":3.45`, `"bill_steps":0.5`} {
			if !strings.Contains(string(body), want) {
				t.Fatalf("expected %s in %s", want, body)
			}
		}
		return jsonResponse(http.StatusCreated, `{"id":5,"name":"Glühwein","category_id":2,"deposit_amount":2.5,"item_variants":[{"id":8,"name":null,"price":3.45,"bill_steps":0.5}]}`), nil
	})

	item, err := client.CreateStockItem(context.Background(), StockItemInput{
		Name:          "Glühwein",
		CategoryID:    2,
		DepositAmount: decimal.RequireFromString("2.50"),
		ItemVariants: []VariantInput{{
			Price:     decimal.RequireFromString("3.45"),
			BillSteps: decimal.RequireFromString("0.5"),
		}},
	})
	if err != nil {
		t.Fatalf("create stock item: %v", err)
	}
	if !item.ItemVariants[0].Price.Equal(decimal.RequireFromString("3.45")) {
		t.Fatalf("unexpected item %+v", item)
	}
}

func TestReorderEndpoints(t *testing.T) {
	var calls []string
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		body, _ := io.ReadAll(req.Body)
		calls = append(calls, req.Method+" "+req.URL.Path+" "+string(body))
		return &http.Response{StatusCode: http.StatusNoContent, Body: io.NopCloser(strings.NewReader(""))}, nil
	})

	if err := client.ReorderCategories(context.Background(), []int64{3, 1, 2}); err != nil {
		t.Fatalf("reorder categories: %v", err)
	}
	if err := client.ReorderStockItems(context.Background(), nil); err != nil {
		t.Fatalf("reorder items: %v", err)
	}
	want := []string{
		`PUT /categories/bulk {"ordered_category_ids":[3,1,2]}`,
		`PUT /item-sorting/ {"ordered_item_ids":[]}`,
	}
	for i, w := range want {
		if calls[i] != w {
			t.Fatalf("call %d = %q, want %q", i, calls[i], w)
		}
	}
}

func TestListBillsPaths(t *testing.T) {
	var paths []string
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		paths = append(paths, req.URL.Path)
		return jsonResponse(http.StatusOK, `[]`), nil
	})
	if _, err := client.ListBills(context.Background(), false); err != nil {
		t.Fatalf("list bills: %v", err)
	}
	if _, err := client.ListBills(context.Background(), true); err != nil {
		t.Fatalf("list all bills: %v", err)
	}
	if paths[0] != "/bills/" || paths[1] != "/bills/all" {
		t.Fatalf("unexpected paths %v", paths)
	}
}

func TestNon2xxIsDependencyError(t *testing.T) {
	reg := prometheus.NewRegistry()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte("  category name already exists \n"))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, WithMetrics(metrics.NewBackendMetrics(reg)))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = client.CreateCategory(context.Background(), CategoryInput{Name: "Bier", Icon: "MdSportsBar"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	details, ok := pkgerrors.As(err).Details().(map[string]any)
	if !ok || details["status"] != http.StatusUnprocessableEntity || details["body"] != "category name already exists" {
		t.Fatalf("unexpected details %#v", pkgerrors.As(err).Details())
	}

	mfs, err := reg.Gather()
	if err != nil || len(mfs) == 0 {
		t.Fatalf("expected backend metrics, got %v %v", mfs, err)
	}
}

func TestTransportErrorIsDependencyError(t *testing.T) {
	client := newTestClient(t, func(*http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})
	if err := client.DeleteBill(context.Background(), 1); !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestNilClientIsDependencyError(t *testing.T) {
	var client *Client
	if _, err := client.ListCategories(context.Background()); !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}
