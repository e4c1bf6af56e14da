package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fondita/mesaboard/internal/domain"
)

// Wire types. Field names follow the backend's Spanish-keyed JSON.

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	Message string `json:"message"`
}

type createOrderRequest struct {
	Lines  []string `json:"pedidos"`
	Table  string   `json:"numeroMesa"`
	Status int      `json:"status"`
	Total  float64  `json:"total"`
}

type statusUpdateRequest struct {
	OrderID string `json:"pedidoId"`
	Status  int    `json:"status"`
}

type orderWire struct {
	ID        string   `json:"_id"`
	Lines     []string `json:"pedidos"`
	Table     string   `json:"numeroMesa"`
	Status    int      `json:"status"`
	Total     float64  `json:"total"`
	Timestamp int64    `json:"timestamp"` // unix milliseconds
}

// listEnvelope is the object-wrapped variant of the order list.
type listEnvelope struct {
	Orders []orderWire `json:"pedidos"`
}

// decodeOrderList accepts both shapes the backend has been seen to produce:
// a bare JSON array of orders, or an object wrapping it under "pedidos".
func decodeOrderList(raw []byte) ([]orderWire, error) {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty body", domain.ErrMalformedResponse)
	}

	if trimmed[0] == '[' {
		var wires []orderWire
		if err := json.Unmarshal(trimmed, &wires); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
		}
		return wires, nil
	}

	var env listEnvelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	return env.Orders, nil
}

// toDomain converts a wire order, rejecting records missing the fields the
// board cannot work without.
func (w orderWire) toDomain() (domain.Order, error) {
	if w.ID == "" {
		return domain.Order{}, fmt.Errorf("%w: order without _id", domain.ErrMalformedResponse)
	}
	if w.Table == "" {
		return domain.Order{}, fmt.Errorf("%w: order %s without table", domain.ErrMalformedResponse, w.ID)
	}

	return domain.Order{
		ID:        w.ID,
		Table:     w.Table,
		Lines:     w.Lines,
		Status:    domain.OrderStatus(w.Status),
		Total:     w.Total,
		CreatedAt: time.UnixMilli(w.Timestamp),
	}, nil
}
