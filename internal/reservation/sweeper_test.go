package reservation

import (
	"context"
	"testing"
	"time"

	"github.com/quickseats/booking/internal/model"
)

func TestSweepOnceReclaimsExpiredHolds(t *testing.T) {
	store := newTestStore(t, 1, 2, 3)
	ctx := context.Background()
	now := time.Now().UTC()

	if err := store.TryHold(ctx, 1, []uint64{1, 2}, "stale", now.Add(-time.Second)); err != nil {
		t.Fatalf("stale hold: %v", err)
	}
	if err := store.TryHold(ctx, 1, []uint64{3}, "fresh", now.Add(time.Hour)); err != nil {
		t.Fatalf("fresh hold: %v", err)
	}

	sweeper := NewSweeper(store, time.Minute)
	released, err := sweeper.SweepOnce(ctx)
	if err != nil {
		t.Fatalf("SweepOnce: %v", err)
	}
	if released != 2 {
		t.Fatalf("released %d holds, want 2", released)
	}
	if got := seatStatus(t, store, 1, 1); got != StatusAvailable {
		t.Fatalf("seat 1 = %s, want AVAILABLE", got)
	}
	if got := seatStatus(t, store, 1, 3); got != StatusHeld {
		t.Fatalf("seat 3 = %s, fresh hold must survive the sweep", got)
	}
}

func TestSweepOnceLeavesBookedSeatsAlone(t *testing.T) {
	store := newTestStore(t, 1)
	ctx := context.Background()
	now := time.Now().UTC()

	if err := store.TryHold(ctx, 1, []uint64{1}, "tok", now.Add(time.Minute)); err != nil {
		t.Fatalf("hold: %v", err)
	}
	if err := store.Confirm(ctx, 1, []uint64{1}, "tok", now); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	sweeper := NewSweeper(store, time.Minute)
	released, err := sweeper.SweepOnce(ctx)
	if err != nil {
		t.Fatalf("SweepOnce: %v", err)
	}
	if released != 0 {
		t.Fatalf("released %d holds, want 0", released)
	}
	if got := seatStatus(t, store, 1, 1); got != StatusBooked {
		t.Fatalf("seat 1 = %s, want BOOKED", got)
	}
}

func TestSweeperBackgroundRun(t *testing.T) {
	store := NewMemoryStore()
	store.AddShow(model.Show{ID: 1, PriceCents: 1000}, []uint64{1})
	ctx := context.Background()

	if err := store.TryHold(ctx, 1, []uint64{1}, "tok", time.Now().UTC().Add(-time.Second)); err != nil {
		t.Fatalf("hold: %v", err)
	}

	sweeper := NewSweeper(store, 20*time.Millisecond)
	if err := sweeper.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer func() { _ = sweeper.Stop() }()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if seatStatus(t, store, 1, 1) == StatusAvailable {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("expired hold was not reclaimed by the background sweeper")
}

func TestSweeperIntervalFallback(t *testing.T) {
	s := NewSweeper(NewMemoryStore(), 0)
	if s.interval != 10*time.Second {
		t.Fatalf("interval = %s, want the 10s fallback", s.interval)
	}
}
