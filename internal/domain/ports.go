package domain

import "context"

// OrderSource is the remote order backend. The HTTP implementation lives in
// internal/api; tests use in-memory fakes.
type OrderSource interface {
	// ListOrders returns every order the backend knows about.
	ListOrders(ctx context.Context) ([]Order, error)
	// OrderByTable returns the table's current order, or (nil, nil) when
	// the table has no active order. That is a normal answer, not an error.
	OrderByTable(ctx context.Context, table string) (*Order, error)
	// CreateOrder submits a new order.
	CreateOrder(ctx context.Context, draft OrderDraft) error
	// UpdateStatus moves an order to a new workflow status.
	UpdateStatus(ctx context.Context, orderID string, status OrderStatus) error
}

// Authenticator handles backend login. Kept separate from OrderSource so
// the board, which never logs in, does not depend on it.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
}

// MenuCatalog resolves dish names to prices and preparation times.
// Implementations must be safe for concurrent reads.
type MenuCatalog interface {
	Dishes() []Dish
	PriceOf(name string) float64
	PrepMinutesOf(name string) int
}

// IntentParser turns raw prompt input into an Intent.
type IntentParser interface {
	Parse(ctx context.Context, input string) (*Intent, error)
}

// Notifier delivers messages to whoever is watching the board.
// Implementations can write to the terminal or, later, push elsewhere.
type Notifier interface {
	Notify(ctx context.Context, message string) error
	NotifyUrgent(ctx context.Context, message string) error
}
