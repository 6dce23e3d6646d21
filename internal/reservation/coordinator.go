package reservation

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/quickseats/booking/internal/model"
)

// Coordinator orchestrates hold → confirm → release as atomic units.
// It is the only entry point client code should use; handlers never
// talk to the ledger directly.
type Coordinator struct {
	store       Store
	now         func() time.Time
	defaultTTL  time.Duration
	readRetries int
	readBackoff time.Duration
}

// Option customises a Coordinator.
type Option func(*Coordinator)

// WithClock overrides the time source.  Tests use this to expire holds
// without sleeping.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// WithDefaultTTL sets the hold lifetime used when a request does not
// specify one.
func WithDefaultTTL(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.defaultTTL = d
		}
	}
}

// WithReadRetry tunes the bounded retry applied to idempotent reads.
func WithReadRetry(attempts int, backoff time.Duration) Option {
	return func(c *Coordinator) {
		if attempts > 0 {
			c.readRetries = attempts
		}
		if backoff > 0 {
			c.readBackoff = backoff
		}
	}
}

// NewCoordinator builds a Coordinator over the given store.
func NewCoordinator(store Store, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:       store,
		now:         time.Now,
		defaultTTL:  5 * time.Minute,
		readRetries: 3,
		readBackoff: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HoldSeats places a hold on the requested seats for the show.  The
// whole set is held or none of it.  Seat IDs must be distinct and
// non-zero; membership in the show's screen is enforced by the ledger,
// which carries exactly one row per (show, screen seat).  On success
// the returned ticket authorises ConfirmBooking and CancelHold until
// it expires.
func (c *Coordinator) HoldSeats(ctx context.Context, showID, userID uint64, seatIDs []uint64, ttl time.Duration) (*HoldTicket, error) {
	if len(seatIDs) == 0 {
		return nil, &ValidationError{Reason: "no seats requested"}
	}
	seen := make(map[uint64]struct{}, len(seatIDs))
	for _, id := range seatIDs {
		if id == 0 {
			return nil, &ValidationError{Reason: "seat id must be positive"}
		}
		if _, dup := seen[id]; dup {
			return nil, &ValidationError{Reason: fmt.Sprintf("duplicate seat id %d", id)}
		}
		seen[id] = struct{}{}
	}
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	if _, err := c.store.ShowByID(ctx, showID); err != nil {
		return nil, err
	}

	token, err := newHolderToken()
	if err != nil {
		return nil, fmt.Errorf("generate holder token: %w", err)
	}
	expiresAt := c.now().UTC().Add(ttl)

	err = c.store.WithTx(ctx, func(ctx context.Context) error {
		return c.store.TryHold(ctx, showID, seatIDs, token, expiresAt)
	})
	if err != nil {
		return nil, err
	}

	return &HoldTicket{
		Token:     token,
		ShowID:    showID,
		UserID:    userID,
		SeatIDs:   append([]uint64(nil), seatIDs...),
		ExpiresAt: expiresAt,
	}, nil
}

// ConfirmBooking finalises a hold: the ledger transition HELD→BOOKED
// and the booking record are written in one transaction, so either
// both land or neither does.  The total is len(seats) × show price.
//
// Confirm is never retried on a transport error: after an ambiguous
// failure the seats may already be booked, and a blind retry could
// double-book.  Callers surface such failures instead.
func (c *Coordinator) ConfirmBooking(ctx context.Context, t *HoldTicket) (*model.Booking, error) {
	if t == nil || t.Token == "" {
		return nil, &ValidationError{Reason: "missing hold ticket"}
	}
	if len(t.SeatIDs) == 0 {
		return nil, &ValidationError{Reason: "hold ticket has no seats"}
	}

	show, err := c.store.ShowByID(ctx, t.ShowID)
	if err != nil {
		return nil, err
	}

	now := c.now().UTC()
	booking := &model.Booking{
		Reference:  uuid.NewString(),
		UserID:     t.UserID,
		ShowID:     t.ShowID,
		SeatIDs:    append([]uint64(nil), t.SeatIDs...),
		TotalCents: uint32(len(t.SeatIDs)) * show.PriceCents,
		Status:     model.BookingConfirmed,
		CreatedAt:  now,
	}

	err = c.store.WithTx(ctx, func(ctx context.Context) error {
		if err := c.store.Confirm(ctx, t.ShowID, t.SeatIDs, t.Token, now); err != nil {
			return err
		}
		return c.store.CreateBooking(ctx, booking)
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// CancelHold releases the ticket's seats.  It is idempotent: cancelling
// an expired, already-released or already-confirmed ticket is a no-op
// (confirmed seats are BOOKED and the ledger never releases those).
func (c *Coordinator) CancelHold(ctx context.Context, t *HoldTicket) error {
	if t == nil || t.Token == "" || len(t.SeatIDs) == 0 {
		return nil
	}
	_, err := c.store.Release(ctx, t.ShowID, t.SeatIDs, t.Token)
	return err
}

// SeatStates returns the seat map of a show for rendering.  Reads are
// idempotent, so transient store errors are retried a bounded number
// of times with backoff before giving up.
func (c *Coordinator) SeatStates(ctx context.Context, showID uint64) ([]SeatState, error) {
	var lastErr error
	backoff := c.readBackoff
	for attempt := 0; attempt < c.readRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
		states, err := c.store.SeatStates(ctx, showID)
		if err == nil {
			return states, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("seat states after %d attempts: %w", c.readRetries, lastErr)
}

// Bookings returns the user's bookings, newest first.
func (c *Coordinator) Bookings(ctx context.Context, userID uint64) ([]model.Booking, error) {
	return c.store.BookingsForUser(ctx, userID)
}

// Booking fetches a single booking by ID.
func (c *Coordinator) Booking(ctx context.Context, id uint64) (*model.Booking, error) {
	return c.store.BookingByID(ctx, id)
}

// newHolderToken returns 64 hex chars of cryptographically secure
// randomness.  The token is the sole credential for a hold.
func newHolderToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
