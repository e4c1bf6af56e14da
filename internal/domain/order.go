// Package domain defines the core types and interfaces for the mesaboard
// clients. All other packages depend on domain; domain depends on nothing.
package domain

import "time"

// Order is a submitted table order as the backend reports it. Clients hold
// a read-only copy refreshed by polling; the only mutation path is an
// explicit status update through the OrderSource.
type Order struct {
	ID        string
	Table     string
	Lines     []string // raw dish names, repeats encode quantity
	Status    OrderStatus
	Total     float64
	CreatedAt time.Time
}

// Active reports whether the order still counts as the table's current
// order. Delivered orders are done and drop off the board.
func (o *Order) Active() bool {
	return o.Status != StatusDelivered
}

// OrderStatus is the kitchen workflow position of an order. The numeric
// values are the backend's wire values.
type OrderStatus int

const (
	StatusReceived  OrderStatus = 1
	StatusPreparing OrderStatus = 2
	StatusReady     OrderStatus = 3
	StatusDelivered OrderStatus = 4
)

// Valid reports whether the value is one of the four known statuses.
func (s OrderStatus) Valid() bool {
	return s >= StatusReceived && s <= StatusDelivered
}

// String returns a human-readable order status.
func (s OrderStatus) String() string {
	switch s {
	case StatusReceived:
		return "received"
	case StatusPreparing:
		return "preparing"
	case StatusReady:
		return "ready"
	case StatusDelivered:
		return "delivered"
	default:
		return "unknown"
	}
}

// OrderDraft is a new order before the backend has accepted it. Lines carry
// one entry per unit, matching the wire format.
type OrderDraft struct {
	Table string
	Lines []string
	Total float64
}

// LoginResult is the backend's answer to a login attempt. Success false with
// a message is a credential rejection, not a transport failure.
type LoginResult struct {
	Success bool
	Token   string
	Message string
}
