package main

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fondita/mesaboard/internal/display"
	"github.com/fondita/mesaboard/internal/domain"
	"github.com/fondita/mesaboard/internal/logger"
	"github.com/fondita/mesaboard/internal/session"
)

// fakeSource records the context of every table fetch so tests can check
// which pollers are still alive.
type fakeSource struct {
	mu   sync.Mutex
	ctxs []context.Context
}

func (f *fakeSource) ListOrders(_ context.Context) ([]domain.Order, error) { return nil, nil }

func (f *fakeSource) OrderByTable(ctx context.Context, _ string) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ctxs = append(f.ctxs, ctx)
	return nil, nil
}

func (f *fakeSource) CreateOrder(_ context.Context, _ domain.OrderDraft) error { return nil }

func (f *fakeSource) UpdateStatus(_ context.Context, _ string, _ domain.OrderStatus) error {
	return nil
}

// fetchCtx waits for the n-th table fetch and returns its context.
func (f *fakeSource) fetchCtx(t *testing.T, n int) context.Context {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		f.mu.Lock()
		if len(f.ctxs) >= n {
			ctx := f.ctxs[n-1]
			f.mu.Unlock()
			return ctx
		}
		f.mu.Unlock()
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("tracker never fetched (waiting for fetch %d)", n)
	return nil
}

type fakeAuth struct{}

func (fakeAuth) Login(_ context.Context, _, _ string) (*domain.LoginResult, error) {
	return &domain.LoginResult{Success: true, Token: "tok"}, nil
}

type fakeSink struct{}

func (fakeSink) SetToken(string) {}

func newTestApp(t *testing.T) (*orderApp, *fakeSource) {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	src := &fakeSource{}
	sess := session.New(fakeAuth{}, fakeSink{}, log)
	if err := sess.Login(context.Background(), "chef", "pozole"); err != nil {
		t.Fatalf("login: %v", err)
	}
	app := &orderApp{
		client:        src,
		sess:          sess,
		log:           log,
		ui:            display.NewUI("mesa> ", "Mesa"),
		trackInterval: time.Second,
	}
	return app, src
}

func TestStartTrackerReplacesPrevious(t *testing.T) {
	app, src := newTestApp(t)

	app.startTracker("4")
	first := src.fetchCtx(t, 1)

	// A second order for the same table must stop the old poller, not
	// stack a new one on top of it.
	app.startTracker("4")

	select {
	case <-first.Done():
	case <-time.After(time.Second):
		t.Fatal("replaced tracker is still running")
	}

	second := src.fetchCtx(t, 2)
	select {
	case <-second.Done():
		t.Fatal("new tracker must keep running")
	default:
	}

	app.stopTracker()
}

func TestLogoutStopsTracker(t *testing.T) {
	app, src := newTestApp(t)

	app.startTracker("6")
	first := src.fetchCtx(t, 1)

	app.handleIntent(context.Background(), &domain.Intent{Type: domain.IntentLogout})

	select {
	case <-first.Done():
	case <-time.After(time.Second):
		t.Fatal("tracker survived logout")
	}
}
