// Package board implements the polling table board: it periodically pulls
// the full order list from the backend and derives a per-table view with
// wait time, estimated preparation time, and a severity tier.
package board

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fondita/mesaboard/internal/domain"
	"github.com/fondita/mesaboard/internal/estimate"
	"github.com/fondita/mesaboard/internal/logger"
)

// minPollInterval is the floor for the polling cadence. Anything lower
// would hammer the backend without making the board feel fresher.
const minPollInterval = time.Second

// Option configures the board.
type Option func(*Board)

// WithPollInterval sets how often the board refreshes. Values below one
// second are clamped up to it.
func WithPollInterval(d time.Duration) Option {
	return func(b *Board) {
		if d < minPollInterval {
			d = minPollInterval
		}
		b.interval = d
	}
}

// WithNow overrides the clock. Tests use this to pin elapsed-time math.
func WithNow(now func() time.Time) Option {
	return func(b *Board) { b.now = now }
}

// WithNotifier attaches a notifier that announces tables crossing into the
// urgent tier and orders becoming ready.
func WithNotifier(n domain.Notifier) Option {
	return func(b *Board) { b.notifier = n }
}

// WithStrictTransitions makes UpdateStatus reject backward moves (e.g.
// Ready back to Preparing). Off by default: the kitchen sometimes walks a
// status back to correct a mis-tap.
func WithStrictTransitions(strict bool) Option {
	return func(b *Board) { b.strict = strict }
}

// Board owns the derived view for a fixed set of tables. It is the sole
// writer of its own views; readers get copies via Snapshot or Subscribe.
type Board struct {
	source   domain.OrderSource
	catalog  domain.MenuCatalog
	tables   []string
	log      *logger.Logger
	interval time.Duration
	now      func() time.Time
	notifier domain.Notifier
	strict   bool

	mu    sync.RWMutex
	views []domain.TableView
	subs  []chan []domain.TableView

	runMu   sync.Mutex
	running bool
	cancel  context.CancelFunc
}

// New creates a board for the given tables. The table list is the caller's
// configuration; the board never invents or drops tables.
func New(source domain.OrderSource, catalog domain.MenuCatalog, tables []string, log *logger.Logger, opts ...Option) *Board {
	b := &Board{
		source:   source,
		catalog:  catalog,
		tables:   append([]string(nil), tables...),
		log:      log,
		interval: 5 * time.Second,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}

	// Every table starts idle until the first successful refresh.
	b.views = make([]domain.TableView, len(b.tables))
	for i, t := range b.tables {
		b.views[i] = domain.TableView{Table: t, Severity: domain.SeverityIdle}
	}
	return b
}

// Tables returns the configured table ids in board order.
func (b *Board) Tables() []string {
	return append([]string(nil), b.tables...)
}

// Start begins the background polling loop. Non-blocking.
func (b *Board) Start(ctx context.Context) {
	b.runMu.Lock()
	defer b.runMu.Unlock()

	if b.running {
		b.log.Warn("board already running")
		return
	}

	childCtx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	b.running = true

	go b.loop(childCtx)

	b.log.Info("board started (tables=%v, poll=%s)", b.tables, b.interval)
}

// Stop shuts the polling loop down. An in-flight fetch finishes on its own;
// its result is published and then no further cycles run.
func (b *Board) Stop() {
	b.runMu.Lock()
	defer b.runMu.Unlock()

	if !b.running {
		return
	}

	b.cancel()
	b.running = false
	b.log.Info("board stopped")
}

// loop is the fetch-then-sleep cycle.
func (b *Board) loop(ctx context.Context) {
	// First refresh immediately so the board isn't blank for a full tick.
	if err := b.Refresh(ctx); err != nil {
		b.log.Warn("board: initial refresh: %v", err)
	}

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Poll errors are logged inside Refresh and otherwise
			// swallowed; the previous views stay up.
			_ = b.Refresh(ctx)
		}
	}
}

// Refresh runs one poll cycle. On failure the previous views are retained
// untouched — a transient network error must not blank the board — and the
// error is returned for callers doing a manual refresh.
func (b *Board) Refresh(ctx context.Context) error {
	orders, err := b.source.ListOrders(ctx)
	if err != nil {
		b.log.Warn("board: refresh failed, keeping previous views: %v", err)
		return err
	}

	views := b.buildViews(orders, b.now())

	b.mu.Lock()
	prev := b.views
	b.views = views
	subs := append([]chan []domain.TableView(nil), b.subs...)
	b.mu.Unlock()

	b.announce(ctx, prev, views)
	publish(subs, views)
	return nil
}

// Snapshot returns a copy of the current per-table views, in table order.
func (b *Board) Snapshot() []domain.TableView {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]domain.TableView(nil), b.views...)
}

// Order returns the active order for a table, or nil. The returned order is
// the board's cached copy; callers must not mutate it.
func (b *Board) Order(table string) *domain.Order {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, v := range b.views {
		if v.Table == table {
			return v.Order
		}
	}
	return nil
}

// Subscribe returns a channel receiving the view list after each successful
// refresh. Slow receivers miss intermediate frames rather than stalling the
// poller.
func (b *Board) Subscribe() <-chan []domain.TableView {
	ch := make(chan []domain.TableView, 1)
	b.mu.Lock()
	b.subs = append(b.subs, ch)
	b.mu.Unlock()
	return ch
}

// buildViews derives one TableView per configured table. Output order is
// the configured table order, never urgency.
func (b *Board) buildViews(orders []domain.Order, now time.Time) []domain.TableView {
	views := make([]domain.TableView, 0, len(b.tables))

	for _, table := range b.tables {
		order := activeOrderFor(orders, table)
		if order == nil {
			views = append(views, domain.TableView{Table: table, Severity: domain.SeverityIdle})
			continue
		}

		elapsed := int(now.Sub(order.CreatedAt) / time.Minute)
		if elapsed < 0 {
			// Backend clock ahead of ours; show zero rather than
			// a negative wait.
			elapsed = 0
		}

		groups := estimate.Group(order.Lines)
		estimated := estimate.TotalMinutes(groups, b.catalog)
		remaining := estimated - elapsed
		if remaining < 0 {
			remaining = 0
		}

		views = append(views, domain.TableView{
			Table:            table,
			Order:            order,
			ElapsedMinutes:   elapsed,
			EstimatedMinutes: estimated,
			RemainingMinutes: remaining,
			Severity:         estimate.SeverityFor(estimated),
		})
	}
	return views
}

// activeOrderFor picks the table's most recent non-delivered order.
func activeOrderFor(orders []domain.Order, table string) *domain.Order {
	var best *domain.Order
	for i := range orders {
		o := &orders[i]
		if o.Table != table || !o.Active() {
			continue
		}
		if best == nil || o.CreatedAt.After(best.CreatedAt) {
			best = o
		}
	}
	return best
}

// announce tells the notifier about state changes worth shouting about:
// a table crossing into the urgent tier, or an order becoming ready.
func (b *Board) announce(ctx context.Context, prev, curr []domain.TableView) {
	if b.notifier == nil {
		return
	}

	prevByTable := make(map[string]domain.TableView, len(prev))
	for _, v := range prev {
		prevByTable[v.Table] = v
	}

	for _, v := range curr {
		old, seen := prevByTable[v.Table]

		if v.Occupied() && v.Severity == domain.SeverityUrgent && (!seen || old.Severity != domain.SeverityUrgent) {
			msg := fmt.Sprintf("Table %s is backed up — estimate %s.", v.Table, estimate.FormatEstimated(v.EstimatedMinutes))
			if err := b.notifier.NotifyUrgent(ctx, msg); err != nil {
				b.log.Error("board: urgent notify: %v", err)
			}
		}

		if v.Occupied() && v.Order.Status == domain.StatusReady {
			if !seen || old.Order == nil || old.Order.ID != v.Order.ID || old.Order.Status != domain.StatusReady {
				msg := fmt.Sprintf("Table %s — order ready for pickup.", v.Table)
				if err := b.notifier.Notify(ctx, msg); err != nil {
					b.log.Error("board: notify: %v", err)
				}
			}
		}
	}
}

// publish pushes the new views to subscribers without ever blocking on a
// slow one: the stale frame in the buffer is dropped first.
func publish(subs []chan []domain.TableView, views []domain.TableView) {
	for _, ch := range subs {
		frame := append([]domain.TableView(nil), views...)
		select {
		case ch <- frame:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- frame:
			default:
			}
		}
	}
}
