package reservation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/quickseats/booking/internal/model"
)

func newTestStore(t *testing.T, seatIDs ...uint64) *MemoryStore {
	t.Helper()
	s := NewMemoryStore()
	s.AddShow(model.Show{ID: 1, PriceCents: 1250}, seatIDs)
	return s
}

func seatStatus(t *testing.T, s *MemoryStore, showID, seatID uint64) SeatStatus {
	t.Helper()
	states, err := s.SeatStates(context.Background(), showID)
	if err != nil {
		t.Fatalf("SeatStates: %v", err)
	}
	for _, st := range states {
		if st.SeatID == seatID {
			return st.Status
		}
	}
	t.Fatalf("seat %d not found in show %d", seatID, showID)
	return ""
}

func TestTryHoldAllOrNothing(t *testing.T) {
	s := newTestStore(t, 1, 2, 3)
	ctx := context.Background()
	exp := time.Now().UTC().Add(time.Minute)

	if err := s.TryHold(ctx, 1, []uint64{2}, "tok-a", exp); err != nil {
		t.Fatalf("first hold: %v", err)
	}

	// seat 2 is taken, so the whole {1,2,3} request must fail and leave
	// seats 1 and 3 untouched
	err := s.TryHold(ctx, 1, []uint64{1, 2, 3}, "tok-b", exp)
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("want ConflictError, got %v", err)
	}
	if len(conflict.SeatIDs) != 1 || conflict.SeatIDs[0] != 2 {
		t.Fatalf("want conflict on seat 2, got %v", conflict.SeatIDs)
	}
	if got := seatStatus(t, s, 1, 1); got != StatusAvailable {
		t.Fatalf("seat 1 = %s, want AVAILABLE", got)
	}
	if got := seatStatus(t, s, 1, 3); got != StatusAvailable {
		t.Fatalf("seat 3 = %s, want AVAILABLE", got)
	}
}

func TestTryHoldUnknownSeat(t *testing.T) {
	s := newTestStore(t, 1, 2)
	err := s.TryHold(context.Background(), 1, []uint64{1, 99}, "tok", time.Now().Add(time.Minute))
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("want ValidationError for seat outside the show, got %v", err)
	}
}

func TestConcurrentHoldsExactlyOneWinner(t *testing.T) {
	s := newTestStore(t, 1, 2, 3, 4)
	ctx := context.Background()
	exp := time.Now().UTC().Add(time.Minute)

	const goroutines = 32
	var wg sync.WaitGroup
	wins := make(chan string, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		token := "tok-" + string(rune('a'+i%26)) + string(rune('0'+i/26))
		go func(tok string) {
			defer wg.Done()
			if err := s.TryHold(ctx, 1, []uint64{2, 3}, tok, exp); err == nil {
				wins <- tok
			}
		}(token)
	}
	wg.Wait()
	close(wins)

	var winners []string
	for tok := range wins {
		winners = append(winners, tok)
	}
	if len(winners) != 1 {
		t.Fatalf("want exactly one winning hold, got %d", len(winners))
	}
	if got := seatStatus(t, s, 1, 2); got != StatusHeld {
		t.Fatalf("seat 2 = %s, want HELD", got)
	}
}

func TestConfirmTransitionsAndClearsToken(t *testing.T) {
	s := newTestStore(t, 1, 2)
	ctx := context.Background()
	now := time.Now().UTC()

	if err := s.TryHold(ctx, 1, []uint64{1, 2}, "tok", now.Add(time.Minute)); err != nil {
		t.Fatalf("hold: %v", err)
	}
	if err := s.Confirm(ctx, 1, []uint64{1, 2}, "tok", now); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	states, err := s.SeatStates(ctx, 1)
	if err != nil {
		t.Fatalf("SeatStates: %v", err)
	}
	for _, st := range states {
		if st.Status != StatusBooked {
			t.Fatalf("seat %d = %s, want BOOKED", st.SeatID, st.Status)
		}
		if st.HoldToken != "" || st.HoldExpiresAt != nil {
			t.Fatalf("seat %d retains hold state after booking", st.SeatID)
		}
	}
}

func TestConfirmWrongTokenIsConflict(t *testing.T) {
	s := newTestStore(t, 1)
	ctx := context.Background()
	now := time.Now().UTC()

	if err := s.TryHold(ctx, 1, []uint64{1}, "tok-a", now.Add(time.Minute)); err != nil {
		t.Fatalf("hold: %v", err)
	}
	err := s.Confirm(ctx, 1, []uint64{1}, "tok-b", now)
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("want ConflictError for foreign token, got %v", err)
	}
	if got := seatStatus(t, s, 1, 1); got != StatusHeld {
		t.Fatalf("seat 1 = %s, want still HELD under tok-a", got)
	}
}

func TestConfirmExpiredHold(t *testing.T) {
	s := newTestStore(t, 1)
	ctx := context.Background()
	now := time.Now().UTC()

	if err := s.TryHold(ctx, 1, []uint64{1}, "tok", now.Add(time.Minute)); err != nil {
		t.Fatalf("hold: %v", err)
	}
	// confirming after the expiry instant reports the lapse
	err := s.Confirm(ctx, 1, []uint64{1}, "tok", now.Add(2*time.Minute))
	if !errors.Is(err, ErrHoldExpired) {
		t.Fatalf("want ErrHoldExpired, got %v", err)
	}
}

func TestConfirmAfterSweepReportsExpired(t *testing.T) {
	s := newTestStore(t, 1)
	ctx := context.Background()
	now := time.Now().UTC()

	if err := s.TryHold(ctx, 1, []uint64{1}, "tok", now.Add(-time.Second)); err != nil {
		t.Fatalf("hold: %v", err)
	}
	if _, err := s.ReleaseExpired(ctx, now); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	// seat is AVAILABLE again; the late confirm must not book it
	err := s.Confirm(ctx, 1, []uint64{1}, "tok", now)
	if !errors.Is(err, ErrHoldExpired) {
		t.Fatalf("want ErrHoldExpired after sweep, got %v", err)
	}
	if got := seatStatus(t, s, 1, 1); got != StatusAvailable {
		t.Fatalf("seat 1 = %s, want AVAILABLE", got)
	}
}

func TestExpiredHoldCountsAsAvailable(t *testing.T) {
	s := newTestStore(t, 1)
	ctx := context.Background()

	if err := s.TryHold(ctx, 1, []uint64{1}, "tok-old", time.Now().UTC().Add(-time.Minute)); err != nil {
		t.Fatalf("stale hold: %v", err)
	}
	// a new hold may claim the seat even before the sweeper runs
	if err := s.TryHold(ctx, 1, []uint64{1}, "tok-new", time.Now().UTC().Add(time.Minute)); err != nil {
		t.Fatalf("re-hold over expired: %v", err)
	}
	// the stale token lost the seat and cannot confirm it
	err := s.Confirm(ctx, 1, []uint64{1}, "tok-old", time.Now().UTC())
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("want ConflictError for superseded token, got %v", err)
	}
}

func TestReleaseIsIdempotentAndScoped(t *testing.T) {
	s := newTestStore(t, 1, 2, 3)
	ctx := context.Background()
	now := time.Now().UTC()

	if err := s.TryHold(ctx, 1, []uint64{1, 2}, "tok", now.Add(time.Minute)); err != nil {
		t.Fatalf("hold: %v", err)
	}
	if err := s.Confirm(ctx, 1, []uint64{2}, "tok", now); err != nil {
		t.Fatalf("confirm seat 2: %v", err)
	}

	n, err := s.Release(ctx, 1, []uint64{1, 2, 3}, "tok")
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	if n != 1 {
		t.Fatalf("released %d seats, want 1 (only the held one)", n)
	}
	if got := seatStatus(t, s, 1, 2); got != StatusBooked {
		t.Fatalf("seat 2 = %s, release must never touch BOOKED", got)
	}

	// second release is a no-op
	n, err = s.Release(ctx, 1, []uint64{1, 2, 3}, "tok")
	if err != nil || n != 0 {
		t.Fatalf("repeat release = (%d, %v), want (0, nil)", n, err)
	}
}

func TestReleaseExpiredAcrossShows(t *testing.T) {
	s := NewMemoryStore()
	s.AddShow(model.Show{ID: 1, PriceCents: 1000}, []uint64{1, 2})
	s.AddShow(model.Show{ID: 2, PriceCents: 1000}, []uint64{1})
	ctx := context.Background()
	now := time.Now().UTC()

	if err := s.TryHold(ctx, 1, []uint64{1}, "a", now.Add(-time.Second)); err != nil {
		t.Fatalf("hold show 1: %v", err)
	}
	if err := s.TryHold(ctx, 2, []uint64{1}, "b", now.Add(-time.Second)); err != nil {
		t.Fatalf("hold show 2: %v", err)
	}
	if err := s.TryHold(ctx, 1, []uint64{2}, "c", now.Add(time.Hour)); err != nil {
		t.Fatalf("fresh hold: %v", err)
	}

	n, err := s.ReleaseExpired(ctx, now)
	if err != nil {
		t.Fatalf("ReleaseExpired: %v", err)
	}
	if n != 2 {
		t.Fatalf("released %d, want 2", n)
	}
	if got := seatStatus(t, s, 1, 2); got != StatusHeld {
		t.Fatalf("fresh hold was swept: seat = %s", got)
	}
}
