package board

import (
	"context"
	"testing"
	"time"

	"github.com/fondita/mesaboard/internal/domain"
	"github.com/fondita/mesaboard/internal/logger"
)

func TestTrackerCheck(t *testing.T) {
	src := &mockSource{}
	log := logger.New(logger.LevelOff, nil)
	tr := NewTracker(src, "4", log)

	// Table empty: current stays nil.
	tr.check(context.Background())
	if tr.Current() != nil {
		t.Fatalf("expected nil for empty table, got %+v", tr.Current())
	}

	// An order appears.
	src.mu.Lock()
	src.orders = []domain.Order{
		{ID: "o1", Table: "4", Status: domain.StatusPreparing, Lines: []string{"Pozole"}, CreatedAt: time.Now()},
	}
	src.mu.Unlock()

	tr.check(context.Background())
	if o := tr.Current(); o == nil || o.ID != "o1" {
		t.Fatalf("expected o1, got %+v", o)
	}

	// A transient failure keeps the last seen order.
	src.setErr(domain.ErrSourceUnavailable)
	tr.check(context.Background())
	if o := tr.Current(); o == nil || o.ID != "o1" {
		t.Fatalf("transient failure cleared the order: %+v", o)
	}

	// A clean "no active order" answer clears it.
	src.setErr(nil)
	src.mu.Lock()
	src.orders = nil
	src.mu.Unlock()

	tr.check(context.Background())
	if tr.Current() != nil {
		t.Fatalf("expected nil after order finished, got %+v", tr.Current())
	}
}

func TestTrackerSubscribe(t *testing.T) {
	src := &mockSource{}
	log := logger.New(logger.LevelOff, nil)
	tr := NewTracker(src, "6", log)

	src.mu.Lock()
	src.orders = []domain.Order{
		{ID: "o2", Table: "6", Status: domain.StatusReady, Lines: []string{"Tamales"}, CreatedAt: time.Now()},
	}
	src.mu.Unlock()

	ch := tr.Subscribe()
	tr.check(context.Background())

	select {
	case o := <-ch:
		if o == nil || o.ID != "o2" {
			t.Fatalf("unexpected frame: %+v", o)
		}
	case <-time.After(time.Second):
		t.Fatal("no frame published to subscriber")
	}
}

func TestTrackerRunStopsOnCancel(t *testing.T) {
	src := &mockSource{}
	log := logger.New(logger.LevelOff, nil)
	tr := NewTracker(src, "4", log)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		tr.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
