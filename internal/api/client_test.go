package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/fondita/mesaboard/internal/domain"
	"github.com/fondita/mesaboard/internal/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, logger.New(logger.LevelOff, nil))
}

func TestLogin(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		if req["username"] == "chef" && req["password"] == "pozole" {
			json.NewEncoder(w).Encode(map[string]any{"success": true, "token": "tok-1", "message": "ok"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "credenciales incorrectas"})
	})

	res, err := c.Login(context.Background(), "chef", "pozole")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !res.Success || res.Token != "tok-1" {
		t.Fatalf("unexpected result: %+v", res)
	}

	// Wrong password is an answer, not an error.
	res, err = c.Login(context.Background(), "chef", "nope")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Success {
		t.Fatal("expected rejected login")
	}
	if res.Message == "" {
		t.Fatal("expected the server's message to survive")
	}
}

func TestListOrdersBareArray(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"_id":"o1","pedidos":["Pozole"],"numeroMesa":"4","status":1,"total":5.7,"timestamp":1700000000000}]`))
	})

	orders, err := c.ListOrders(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(orders))
	}
	o := orders[0]
	if o.ID != "o1" || o.Table != "4" || o.Status != domain.StatusReceived {
		t.Fatalf("unexpected order: %+v", o)
	}
	if o.CreatedAt.UnixMilli() != 1700000000000 {
		t.Fatalf("timestamp not converted from millis: %v", o.CreatedAt)
	}
}

func TestListOrdersWrappedObject(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pedidos":[{"_id":"o1","pedidos":["Tamales","Tamales"],"numeroMesa":"6","status":2,"total":13.0,"timestamp":1700000000000}]}`))
	})

	orders, err := c.ListOrders(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(orders) != 1 || orders[0].Status != domain.StatusPreparing {
		t.Fatalf("unexpected orders: %+v", orders)
	}
}

func TestListOrdersMalformed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pedidos": "not an array"}`))
	})

	_, err := c.ListOrders(context.Background())
	if !errors.Is(err, domain.ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}

	// Orders missing required fields are malformed too.
	c = newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"pedidos":["Pozole"],"numeroMesa":"4","status":1}]`))
	})
	_, err = c.ListOrders(context.Background())
	if !errors.Is(err, domain.ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse for missing _id, got %v", err)
	}
}

func TestListOrdersServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := c.ListOrders(context.Background())
	if !errors.Is(err, domain.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
}

func TestListOrdersSharedFlightSurvivesCancelledCaller(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		w.Write([]byte(`[{"_id":"o1","pedidos":["Pozole"],"numeroMesa":"4","status":1,"total":5.7,"timestamp":1700000000000}]`))
	})

	// The first caller starts the request and gets cancelled mid-flight;
	// the second caller joins the same flight and must still get orders.
	cancelCtx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.ListOrders(cancelCtx)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	orders, err := c.ListOrders(context.Background())
	if err != nil {
		t.Fatalf("caller with a live context got the cancelled caller's failure: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(orders))
	}
	wg.Wait()
}

func TestOrderByTableNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/pedido/mesa/4" {
			w.Write([]byte(`{"_id":"o9","pedidos":["Pozole"],"numeroMesa":"4","status":3,"total":5.7,"timestamp":1700000000000}`))
			return
		}
		http.NotFound(w, r)
	})

	// An occupied table.
	o, err := c.OrderByTable(context.Background(), "4")
	if err != nil {
		t.Fatalf("order by table: %v", err)
	}
	if o == nil || o.ID != "o9" {
		t.Fatalf("unexpected order: %+v", o)
	}

	// 404 means no active order: nil order, nil error.
	o, err = c.OrderByTable(context.Background(), "9")
	if err != nil {
		t.Fatalf("expected nil error for empty table, got %v", err)
	}
	if o != nil {
		t.Fatalf("expected nil order for empty table, got %+v", o)
	}
}

func TestCreateOrder(t *testing.T) {
	var got createOrderRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/pedido/pedidos" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
	})

	draft := domain.OrderDraft{
		Table: "6",
		Lines: []string{"Tacos al pastor", "Tacos al pastor", "Pozole"},
		Total: 20.70,
	}
	if err := c.CreateOrder(context.Background(), draft); err != nil {
		t.Fatalf("create: %v", err)
	}

	if got.Table != "6" || len(got.Lines) != 3 {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if got.Status != 1 {
		t.Fatalf("new orders must be submitted as Received(1), got %d", got.Status)
	}
}

func TestCreateOrderRejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "full", http.StatusServiceUnavailable)
	})

	err := c.CreateOrder(context.Background(), domain.OrderDraft{Table: "2", Lines: []string{"Pozole"}})
	if !errors.Is(err, domain.ErrSubmissionFailed) {
		t.Fatalf("expected ErrSubmissionFailed, got %v", err)
	}
}

func TestUpdateStatus(t *testing.T) {
	var got statusUpdateRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/pedido/status" || r.Method != http.MethodPut {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
	})

	if err := c.UpdateStatus(context.Background(), "o1", domain.StatusReady); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.OrderID != "o1" || got.Status != 3 {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestTokenAttached(t *testing.T) {
	var auth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	})

	c.SetToken("tok-7")
	if _, err := c.ListOrders(context.Background()); err != nil {
		t.Fatalf("list: %v", err)
	}
	if auth != "Bearer tok-7" {
		t.Fatalf("Authorization = %q, want Bearer tok-7", auth)
	}
}
