// Package api implements the HTTP client for the restaurant backend. It is
// the only package that knows route strings and wire shapes; everything
// above it works with domain types.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/fondita/mesaboard/internal/domain"
	"github.com/fondita/mesaboard/internal/logger"
)

// Compile-time interface checks.
var (
	_ domain.OrderSource   = (*Client)(nil)
	_ domain.Authenticator = (*Client)(nil)
)

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPTimeout sets the HTTP client timeout. The backend does not answer
// slowly in practice, but a hung call must never starve the polling cadence,
// so the default is a hard 10 seconds.
func WithHTTPTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.http.Timeout = d }
}

// WithToken sets the bearer token up front, e.g. when it was saved from an
// earlier login.
func WithToken(token string) ClientOption {
	return func(c *Client) { c.token = token }
}

// Client talks to the restaurant backend over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	log     *logger.Logger

	mu    sync.RWMutex
	token string

	// Both binaries poll GET /api/pedido/todos, and a manual refresh can
	// land on top of a scheduled one. singleflight collapses concurrent
	// calls into one request.
	flight singleflight.Group
}

// NewClient creates a backend client. baseURL is the server root, e.g.
// "http://192.168.1.20:3000".
func NewClient(baseURL string, log *logger.Logger, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		log:     log,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SetToken stores the bearer token attached to subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Login authenticates against the backend. A rejected credential pair comes
// back as a LoginResult with Success=false and the server's message, not as
// an error; errors mean the login call itself failed.
func (c *Client) Login(ctx context.Context, username, password string) (*domain.LoginResult, error) {
	body := loginRequest{Username: username, Password: password}

	var result loginResponse
	if err := c.postJSON(ctx, "/api/auth/login", body, &result); err != nil {
		return nil, fmt.Errorf("login: %w: %v", domain.ErrAuthFailed, err)
	}

	c.log.Debug("api: login for %q: success=%v", username, result.Success)
	return &domain.LoginResult{
		Success: result.Success,
		Token:   result.Token,
		Message: result.Message,
	}, nil
}

// ListOrders fetches every order the backend knows about.
func (c *Client) ListOrders(ctx context.Context) ([]domain.Order, error) {
	v, err, shared := c.flight.Do("list-orders", func() (any, error) {
		// The request is shared by everyone who joins the flight, so it
		// must not die with whichever caller happened to start it. The
		// HTTP client timeout still bounds it.
		return c.fetchOrders(context.WithoutCancel(ctx))
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.log.Debug("api: list orders shared an in-flight request")
	}

	// Callers get their own copy; the cached slice is shared across
	// everyone who joined the flight.
	orders := v.([]domain.Order)
	out := make([]domain.Order, len(orders))
	copy(out, orders)
	return out, nil
}

func (c *Client) fetchOrders(ctx context.Context) ([]domain.Order, error) {
	raw, status, err := c.get(ctx, "/api/pedido/todos")
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w: %v", domain.ErrSourceUnavailable, err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("listing orders: %w: status %d", domain.ErrSourceUnavailable, status)
	}

	wires, err := decodeOrderList(raw)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}

	orders := make([]domain.Order, 0, len(wires))
	for _, w := range wires {
		o, err := w.toDomain()
		if err != nil {
			return nil, fmt.Errorf("listing orders: %w", err)
		}
		orders = append(orders, o)
	}

	c.log.Debug("api: fetched %d orders", len(orders))
	return orders, nil
}

// OrderByTable returns the table's current order. A 404 means the table has
// no active order and yields (nil, nil).
func (c *Client) OrderByTable(ctx context.Context, table string) (*domain.Order, error) {
	raw, status, err := c.get(ctx, "/api/pedido/mesa/"+url.PathEscape(table))
	if err != nil {
		return nil, fmt.Errorf("order for table %s: %w: %v", table, domain.ErrSourceUnavailable, err)
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("order for table %s: %w: status %d", table, domain.ErrSourceUnavailable, status)
	}

	var w orderWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("order for table %s: %w: %v", table, domain.ErrMalformedResponse, err)
	}
	o, err := w.toDomain()
	if err != nil {
		return nil, fmt.Errorf("order for table %s: %w", table, err)
	}
	return &o, nil
}

// CreateOrder submits a new order. New orders always start as Received.
func (c *Client) CreateOrder(ctx context.Context, draft domain.OrderDraft) error {
	body := createOrderRequest{
		Lines:  draft.Lines,
		Table:  draft.Table,
		Status: int(domain.StatusReceived),
		Total:  draft.Total,
	}

	if err := c.postJSON(ctx, "/api/pedido/pedidos", body, nil); err != nil {
		return fmt.Errorf("creating order for table %s: %w: %v", draft.Table, domain.ErrSubmissionFailed, err)
	}

	c.log.Info("api: order submitted for table %s (%d lines, total %.2f)", draft.Table, len(draft.Lines), draft.Total)
	return nil
}

// UpdateStatus moves an order to a new workflow status.
func (c *Client) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	body := statusUpdateRequest{OrderID: orderID, Status: int(status)}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("updating status: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/api/pedido/status", bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("updating status: create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("updating status of %s: %w: %v", orderID, domain.ErrSubmissionFailed, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("updating status of %s: %w: status %d", orderID, domain.ErrSubmissionFailed, resp.StatusCode)
	}

	c.log.Info("api: order %s moved to %s", orderID, status)
	return nil
}

// ── HTTP plumbing ────────────────────────────────────────────────

// postJSON sends a POST and decodes the response into out when out is
// non-nil. Any transport failure or non-2xx status is an error.
func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)

	c.log.Debug("api: POST %s (%d bytes)", path, len(jsonData))

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("status %s: %s", resp.Status, truncate(string(respBody), 120))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
		}
	}
	return nil
}

// get performs a GET and returns the raw body and status code. Only
// transport-level failures are errors; status handling is the caller's.
func (c *Client) get(ctx context.Context, path string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)

	c.log.Debug("api: GET %s", path)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read response: %w", err)
	}
	return body, resp.StatusCode, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")

	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
