package reservation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quickseats/booking/internal/model"
)

// fakeClock is a manually advanced time source.
type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time          { return f.t }
func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestCoordinator(t *testing.T, seatIDs ...uint64) (*Coordinator, *MemoryStore, *fakeClock) {
	t.Helper()
	store := newTestStore(t, seatIDs...)
	clock := &fakeClock{t: time.Date(2026, 8, 1, 18, 0, 0, 0, time.UTC)}
	coord := NewCoordinator(store, WithClock(clock.Now))
	return coord, store, clock
}

func TestHoldConfirmRoundTrip(t *testing.T) {
	coord, store, _ := newTestCoordinator(t, 1, 2, 3)
	ctx := context.Background()

	ticket, err := coord.HoldSeats(ctx, 1, 7, []uint64{1, 3}, 0)
	if err != nil {
		t.Fatalf("HoldSeats: %v", err)
	}
	if ticket.Token == "" {
		t.Fatal("empty hold token")
	}

	booking, err := coord.ConfirmBooking(ctx, ticket)
	if err != nil {
		t.Fatalf("ConfirmBooking: %v", err)
	}
	// two seats at 1250 cents each
	if booking.TotalCents != 2500 {
		t.Fatalf("total = %d, want 2500", booking.TotalCents)
	}
	if booking.Status != model.BookingConfirmed {
		t.Fatalf("status = %s, want %s", booking.Status, model.BookingConfirmed)
	}
	if booking.Reference == "" {
		t.Fatal("empty booking reference")
	}

	if got := seatStatus(t, store, 1, 1); got != StatusBooked {
		t.Fatalf("seat 1 = %s, want BOOKED", got)
	}
	if got := seatStatus(t, store, 1, 2); got != StatusAvailable {
		t.Fatalf("seat 2 = %s, want AVAILABLE (never held)", got)
	}

	mine, err := coord.Bookings(ctx, 7)
	if err != nil {
		t.Fatalf("Bookings: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != booking.ID {
		t.Fatalf("Bookings = %+v, want the confirmed booking", mine)
	}
}

func TestTotalIsSeatCountTimesPrice(t *testing.T) {
	store := NewMemoryStore()
	store.AddShow(model.Show{ID: 5, PriceCents: 1250}, []uint64{10, 11, 12, 13})
	coord := NewCoordinator(store)
	ctx := context.Background()

	ticket, err := coord.HoldSeats(ctx, 5, 1, []uint64{10, 11, 12}, 0)
	if err != nil {
		t.Fatalf("HoldSeats: %v", err)
	}
	booking, err := coord.ConfirmBooking(ctx, ticket)
	if err != nil {
		t.Fatalf("ConfirmBooking: %v", err)
	}
	if booking.TotalCents != 3750 {
		t.Fatalf("total = %d, want 3750 (3 seats at 1250)", booking.TotalCents)
	}
}

func TestHoldSeatsValidation(t *testing.T) {
	coord, _, _ := newTestCoordinator(t, 1, 2)
	ctx := context.Background()

	cases := []struct {
		name    string
		showID  uint64
		seatIDs []uint64
	}{
		{"empty seat set", 1, nil},
		{"zero seat id", 1, []uint64{0}},
		{"duplicate seat", 1, []uint64{1, 1}},
		{"seat outside show", 1, []uint64{1, 42}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := coord.HoldSeats(ctx, tc.showID, 7, tc.seatIDs, 0)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("want ValidationError, got %v", err)
			}
		})
	}

	if _, err := coord.HoldSeats(ctx, 99, 7, []uint64{1}, 0); !errors.Is(err, ErrShowNotFound) {
		t.Fatalf("unknown show: want ErrShowNotFound, got %v", err)
	}
}

func TestHoldConflictListsSeats(t *testing.T) {
	coord, _, _ := newTestCoordinator(t, 1, 2, 3)
	ctx := context.Background()

	if _, err := coord.HoldSeats(ctx, 1, 7, []uint64{2}, 0); err != nil {
		t.Fatalf("first hold: %v", err)
	}
	_, err := coord.HoldSeats(ctx, 1, 8, []uint64{1, 2}, 0)
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("want ConflictError, got %v", err)
	}
	if len(conflict.SeatIDs) != 1 || conflict.SeatIDs[0] != 2 {
		t.Fatalf("conflict seats = %v, want [2]", conflict.SeatIDs)
	}
}

func TestConfirmAfterTTLExpires(t *testing.T) {
	coord, _, clock := newTestCoordinator(t, 1, 2)
	ctx := context.Background()

	ticket, err := coord.HoldSeats(ctx, 1, 7, []uint64{1}, 0)
	if err != nil {
		t.Fatalf("HoldSeats: %v", err)
	}
	// the default TTL is five minutes; six have passed
	clock.Advance(6 * time.Minute)

	_, err = coord.ConfirmBooking(ctx, ticket)
	if !errors.Is(err, ErrHoldExpired) {
		t.Fatalf("want ErrHoldExpired, got %v", err)
	}

	// no booking record may exist for the failed confirm
	mine, err := coord.Bookings(ctx, 7)
	if err != nil {
		t.Fatalf("Bookings: %v", err)
	}
	if len(mine) != 0 {
		t.Fatalf("found %d bookings after failed confirm, want 0", len(mine))
	}
}

func TestCustomTTLIsHonoured(t *testing.T) {
	coord, _, clock := newTestCoordinator(t, 1)
	ctx := context.Background()

	ticket, err := coord.HoldSeats(ctx, 1, 7, []uint64{1}, 30*time.Second)
	if err != nil {
		t.Fatalf("HoldSeats: %v", err)
	}
	want := clock.Now().UTC().Add(30 * time.Second)
	if !ticket.ExpiresAt.Equal(want) {
		t.Fatalf("expires_at = %v, want %v", ticket.ExpiresAt, want)
	}
}

func TestCancelHoldFreesSeats(t *testing.T) {
	coord, store, _ := newTestCoordinator(t, 1, 2)
	ctx := context.Background()

	ticket, err := coord.HoldSeats(ctx, 1, 7, []uint64{1, 2}, 0)
	if err != nil {
		t.Fatalf("HoldSeats: %v", err)
	}
	if err := coord.CancelHold(ctx, ticket); err != nil {
		t.Fatalf("CancelHold: %v", err)
	}
	if got := seatStatus(t, store, 1, 1); got != StatusAvailable {
		t.Fatalf("seat 1 = %s after cancel, want AVAILABLE", got)
	}
	// cancelling again is a no-op
	if err := coord.CancelHold(ctx, ticket); err != nil {
		t.Fatalf("repeat CancelHold: %v", err)
	}
}

func TestCancelHoldNeverUnbooks(t *testing.T) {
	coord, store, _ := newTestCoordinator(t, 1)
	ctx := context.Background()

	ticket, err := coord.HoldSeats(ctx, 1, 7, []uint64{1}, 0)
	if err != nil {
		t.Fatalf("HoldSeats: %v", err)
	}
	if _, err := coord.ConfirmBooking(ctx, ticket); err != nil {
		t.Fatalf("ConfirmBooking: %v", err)
	}
	if err := coord.CancelHold(ctx, ticket); err != nil {
		t.Fatalf("CancelHold after confirm: %v", err)
	}
	if got := seatStatus(t, store, 1, 1); got != StatusBooked {
		t.Fatalf("seat 1 = %s, cancel must not release a booked seat", got)
	}
}

func TestBookingLookup(t *testing.T) {
	coord, _, _ := newTestCoordinator(t, 1)
	ctx := context.Background()

	ticket, err := coord.HoldSeats(ctx, 1, 7, []uint64{1}, 0)
	if err != nil {
		t.Fatalf("HoldSeats: %v", err)
	}
	booking, err := coord.ConfirmBooking(ctx, ticket)
	if err != nil {
		t.Fatalf("ConfirmBooking: %v", err)
	}

	got, err := coord.Booking(ctx, booking.ID)
	if err != nil {
		t.Fatalf("Booking: %v", err)
	}
	if got.Reference != booking.Reference {
		t.Fatalf("reference = %s, want %s", got.Reference, booking.Reference)
	}
	if _, err := coord.Booking(ctx, 999); !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("want ErrBookingNotFound, got %v", err)
	}
}

// flakyStore fails reads a fixed number of times before delegating.
type flakyStore struct {
	*MemoryStore
	failures int
}

func (f *flakyStore) SeatStates(ctx context.Context, showID uint64) ([]SeatState, error) {
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("connection reset")
	}
	return f.MemoryStore.SeatStates(ctx, showID)
}

func TestSeatStatesRetriesTransientErrors(t *testing.T) {
	store := newTestStore(t, 1, 2)
	flaky := &flakyStore{MemoryStore: store, failures: 2}
	coord := NewCoordinator(flaky, WithReadRetry(3, time.Millisecond))

	states, err := coord.SeatStates(context.Background(), 1)
	if err != nil {
		t.Fatalf("SeatStates after retries: %v", err)
	}
	if len(states) != 2 {
		t.Fatalf("got %d states, want 2", len(states))
	}
}

func TestSeatStatesGivesUpAfterRetries(t *testing.T) {
	store := newTestStore(t, 1)
	flaky := &flakyStore{MemoryStore: store, failures: 10}
	coord := NewCoordinator(flaky, WithReadRetry(3, time.Millisecond))

	if _, err := coord.SeatStates(context.Background(), 1); err == nil {
		t.Fatal("want error once retries are exhausted")
	}
	if flaky.failures != 7 {
		t.Fatalf("made %d attempts, want exactly 3", 10-flaky.failures)
	}
}
