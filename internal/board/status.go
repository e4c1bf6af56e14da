package board

import (
	"context"
	"fmt"

	"github.com/fondita/mesaboard/internal/domain"
)

// UpdateStatus moves an order to a new workflow status and refreshes the
// board right away so the change shows without waiting for the next tick.
//
// The range check always applies. The forward-only check applies only under
// WithStrictTransitions; the permissive default matches the kitchen's habit
// of walking a status back to fix a mis-tap.
func (b *Board) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: status %d out of range", domain.ErrInvalidTransition, int(status))
	}

	if b.strict {
		current := b.orderByID(orderID)
		if current == nil {
			// The guard can't check a move it can't see.
			return fmt.Errorf("%w: order %s is not on the board", domain.ErrNotFound, orderID)
		}
		if status < current.Status {
			return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, current.Status, status)
		}
	}

	if err := b.source.UpdateStatus(ctx, orderID, status); err != nil {
		return err
	}

	// Best effort: a failed refresh here just means the next poll tick
	// picks the change up.
	if err := b.Refresh(ctx); err != nil {
		b.log.Warn("board: post-update refresh: %v", err)
	}
	return nil
}

// orderByID finds an order in the current views.
func (b *Board) orderByID(orderID string) *domain.Order {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, v := range b.views {
		if v.Order != nil && v.Order.ID == orderID {
			return v.Order
		}
	}
	return nil
}
