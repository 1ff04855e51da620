// Package backend is the REST client for the kiosk backend (catalog and
// bills). Calls are never retried; any non-2xx response is reported as a
// dependency error and callers leave their local state untouched.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/huettenzauber/kiosk/pkg/errors"
	"github.com/huettenzauber/kiosk/pkg/metrics"
)

const (
	defaultTimeout              = 10 * time.Second
	responseBodyReadLimit int64 = 1024
)

var errBaseURLRequired = errors.New("backend base url is required")

// Client talks to the kiosk REST backend.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *metrics.BackendMetrics
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithMetrics records request latency.
func WithMetrics(m *metrics.BackendMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errBaseURLRequired
	}

	client := &Client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// Categories

func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var out []Category
	if err := c.do(ctx, "list_categories", http.MethodGet, "/categories/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateCategory(ctx context.Context, in CategoryInput) (*Category, error) {
	var out Category
	if err := c.do(ctx, "create_category", http.MethodPost, "/categories/", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCategory(ctx context.Context, id int64, in CategoryInput) (*Category, error) {
	var out Category
	if err := c.do(ctx, "update_category", http.MethodPut, fmt.Sprintf("/categories/%d", id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCategory(ctx context.Context, id int64) error {
	return c.do(ctx, "delete_category", http.MethodDelete, fmt.Sprintf("/categories/%d", id), nil, nil)
}

func (c *Client) ReorderCategories(ctx context.Context, orderedIDs []int64) error {
	body := struct {
		OrderedCategoryIDs []int64 `json:"ordered_category_ids"`
	}{OrderedCategoryIDs: nonNilIDs(orderedIDs)}
	return c.do(ctx, "reorder_categories", http.MethodPut, "/categories/bulk", body, nil)
}

// Stock items

func (c *Client) ListStockItems(ctx context.Context) ([]StockItem, error) {
	var out []StockItem
	if err := c.do(ctx, "list_stock_items", http.MethodGet, "/stock-items/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateStockItem(ctx context.Context, in StockItemInput) (*StockItem, error) {
	var out StockItem
	if err := c.do(ctx, "create_stock_item", http.MethodPost, "/stock-items/", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateStockItem(ctx context.Context, id int64, in StockItemInput) (*StockItem, error) {
	var out StockItem
	if err := c.do(ctx, "update_stock_item", http.MethodPut, fmt.Sprintf("/stock-items/%d", id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteStockItem(ctx context.Context, id int64) error {
	return c.do(ctx, "delete_stock_item", http.MethodDelete, fmt.Sprintf("/stock-items/%d", id), nil, nil)
}

func (c *Client) ReorderStockItems(ctx context.Context, orderedIDs []int64) error {
	body := struct {
		OrderedItemIDs []int64 `json:"ordered_item_ids"`
	}{OrderedItemIDs: nonNilIDs(orderedIDs)}
	return c.do(ctx, "reorder_stock_items", http.MethodPut, "/item-sorting/", body, nil)
}

// Variants

func (c *Client) CreateVariant(ctx context.Context, in VariantInput) (*ItemVariant, error) {
	var out ItemVariant
	if err := c.do(ctx, "create_variant", http.MethodPost, "/item_variants/", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateVariant(ctx context.Context, id int64, in VariantInput) (*ItemVariant, error) {
	var out ItemVariant
	if err := c.do(ctx, "update_variant", http.MethodPut, fmt.Sprintf("/item_variants/%d", id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteVariant(ctx context.Context, id int64) error {
	return c.do(ctx, "delete_variant", http.MethodDelete, fmt.Sprintf("/item_variants/%d", id), nil, nil)
}

// Bills

// ListBills returns active bills, or every bill including soft-deleted ones.
func (c *Client) ListBills(ctx context.Context, includeDeleted bool) ([]Bill, error) {
	path := "/bills/"
	if includeDeleted {
		path = "/bills/all"
	}
	var out []Bill
	if err := c.do(ctx, "list_bills", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetBill(ctx context.Context, id int64) (*Bill, error) {
	var out Bill
	if err := c.do(ctx, "get_bill", http.MethodGet, fmt.Sprintf("/bills/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateBill(ctx context.Context, req CreateBillRequest) (*Bill, error) {
	var out Bill
	if err := c.do(ctx, "create_bill", http.MethodPost, "/bills/", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteBill(ctx context.Context, id int64) error {
	return c.do(ctx, "delete_bill", http.MethodDelete, fmt.Sprintf("/bills/%d", id), nil, nil)
}

func (c *Client) do(ctx context.Context, op, method, path string, body any, out any) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "backend client not configured")
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("marshal %s request", op))
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("build %s request", op))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(op, 0, time.Since(start))
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("execute %s request", op))
	}
	defer func() { _ = resp.Body.Close() }()
	c.metrics.ObserveRequest(op, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		trimmed := strings.TrimSpace(string(msg))
		return pkgerrors.Wrap(
			pkgerrors.CodeDependency,
			fmt.Errorf("status %d: %s", resp.StatusCode, trimmed),
			fmt.Sprintf("%s request failed", op),
		).WithDetails(map[string]any{"status": resp.StatusCode, "body": trimmed})
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("decode %s response", op))
	}
	return nil
}

func nonNilIDs(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
