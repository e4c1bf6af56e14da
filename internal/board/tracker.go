package board

import (
	"context"
	"sync"
	"time"

	"github.com/fondita/mesaboard/internal/domain"
	"github.com/fondita/mesaboard/internal/logger"
)

// TrackerOption configures the tracker.
type TrackerOption func(*Tracker)

// WithTrackInterval sets how often the tracker polls. Values below one
// second are clamped up to it.
func WithTrackInterval(d time.Duration) TrackerOption {
	return func(t *Tracker) {
		if d < minPollInterval {
			d = minPollInterval
		}
		t.interval = d
	}
}

// Tracker follows a single table's current order, for the "where is my
// food" view. Runs on its own cadence, slower than the board.
//
// A fetch failure keeps the last seen order; a clean 404 is a real answer
// ("nothing active for this table") and clears it.
type Tracker struct {
	source   domain.OrderSource
	table    string
	log      *logger.Logger
	interval time.Duration

	mu      sync.RWMutex
	current *domain.Order
	subs    []chan *domain.Order
}

// NewTracker creates a tracker for one table.
func NewTracker(source domain.OrderSource, table string, log *logger.Logger, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		source:   source,
		table:    table,
		log:      log,
		interval: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Run starts the tracking loop. Blocks until ctx is cancelled.
// Intended to be called as a goroutine.
func (t *Tracker) Run(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	t.log.Info("tracker started (table=%s, poll=%s)", t.table, t.interval)

	t.check(ctx)
	for {
		select {
		case <-ctx.Done():
			t.log.Info("tracker stopped (table=%s)", t.table)
			return
		case <-ticker.C:
			t.check(ctx)
		}
	}
}

// check runs one poll cycle.
func (t *Tracker) check(ctx context.Context) {
	order, err := t.source.OrderByTable(ctx, t.table)
	if err != nil {
		t.log.Warn("tracker: fetch for table %s failed, keeping last order: %v", t.table, err)
		return
	}

	t.mu.Lock()
	t.current = order
	subs := append([]chan *domain.Order(nil), t.subs...)
	t.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- order:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- order:
			default:
			}
		}
	}
}

// Current returns the last seen order for the table, or nil.
func (t *Tracker) Current() *domain.Order {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current
}

// Subscribe returns a channel receiving the order after each successful
// poll (nil when the table has no active order). Slow receivers miss
// intermediate frames.
func (t *Tracker) Subscribe() <-chan *domain.Order {
	ch := make(chan *domain.Order, 1)
	t.mu.Lock()
	t.subs = append(t.subs, ch)
	t.mu.Unlock()
	return ch
}
