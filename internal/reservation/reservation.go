// Package reservation implements the seat-reservation engine: a seat
// ledger tracking per-show seat state, a coordinator that turns holds
// into bookings atomically, and a sweeper that reclaims expired holds.
// All seat mutation flows through this package; nothing else writes
// seat state.
package reservation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/quickseats/booking/internal/model"
)

// Seat statuses as stored in the ledger.  BOOKED is terminal for a
// given show: no seat un-books itself.
type SeatStatus string

const (
	StatusAvailable SeatStatus = "AVAILABLE"
	StatusHeld      SeatStatus = "HELD"
	StatusBooked    SeatStatus = "BOOKED"
)

// SeatState is the mutable, per-show status of one seat.  HoldToken and
// HoldExpiresAt are only set while the seat is HELD; the token is an
// internal credential and must never appear in API responses.
type SeatState struct {
	ShowID        uint64
	SeatID        uint64
	Status        SeatStatus
	HoldToken     string
	HoldExpiresAt *time.Time
}

// Expired reports whether a HELD seat's hold has lapsed at the given
// instant.  Seats in any other status are never expired.
func (s SeatState) Expired(now time.Time) bool {
	return s.Status == StatusHeld && s.HoldExpiresAt != nil && !s.HoldExpiresAt.After(now)
}

// HoldTicket proves ownership of a set of held seats.  The token is
// opaque; presenting it authorises confirm and release for exactly the
// seats it was issued for.
type HoldTicket struct {
	Token     string
	ShowID    uint64
	UserID    uint64
	SeatIDs   []uint64
	ExpiresAt time.Time
}

// ErrHoldExpired is returned by Confirm when the caller's own hold
// lapsed before the confirmation reached the ledger.  It is distinct
// from ConflictError so clients can tell "your hold lapsed, re-hold"
// apart from "seat taken by someone else".
var ErrHoldExpired = errors.New("hold expired")

// ErrShowNotFound is returned when a show identifier does not exist.
var ErrShowNotFound = errors.New("show not found")

// ErrBookingNotFound is returned when a booking identifier does not exist.
var ErrBookingNotFound = errors.New("booking not found")

// ValidationError rejects a request before it touches the ledger:
// empty or duplicate seat sets, zero identifiers, seats that are not
// part of the show's screen.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "invalid reservation request: " + e.Reason }

// ConflictError reports which requested seats were unavailable, so the
// caller can re-render availability without refetching the whole map.
type ConflictError struct {
	SeatIDs []uint64
}

func (e *ConflictError) Error() string {
	ids := make([]string, len(e.SeatIDs))
	for i, id := range e.SeatIDs {
		ids[i] = fmt.Sprintf("%d", id)
	}
	sort.Strings(ids)
	return "seats unavailable: " + strings.Join(ids, ",")
}

// Ledger is the durable record of seat state per show.  Implementations
// must make every transition linearizable per (show, seat): two
// concurrent holds on the same available seat may not both succeed,
// and a confirm racing an expiry sweep resolves at the atomic check.
type Ledger interface {
	// SeatStates returns the state of every seat of the show, ordered
	// by seat ID.
	SeatStates(ctx context.Context, showID uint64) ([]SeatState, error)

	// TryHold transitions every requested seat AVAILABLE→HELD under
	// token, or none of them.  A seat whose previous hold has expired
	// counts as available.  Unavailable seats are reported via
	// *ConflictError; seats with no ledger row for the show via
	// *ValidationError.
	TryHold(ctx context.Context, showID uint64, seatIDs []uint64, token string, expiresAt time.Time) error

	// Confirm transitions every seat HELD→BOOKED iff each one is held
	// under token and unexpired at now.  Returns ErrHoldExpired when
	// the caller's own hold lapsed, *ConflictError otherwise.
	Confirm(ctx context.Context, showID uint64, seatIDs []uint64, token string, now time.Time) error

	// Release returns seats held under token to AVAILABLE and reports
	// how many changed.  Idempotent: already-available seats are
	// no-ops and BOOKED seats are never touched.
	Release(ctx context.Context, showID uint64, seatIDs []uint64, token string) (int64, error)

	// ReleaseExpired atomically releases every hold across all shows
	// whose expiry has passed, returning the number reclaimed.
	ReleaseExpired(ctx context.Context, now time.Time) (int64, error)
}

// BookingStore is the append-only record of confirmed bookings.  There
// is no update or delete: cancellation, when it lands, will be a
// status transition.
type BookingStore interface {
	CreateBooking(ctx context.Context, b *model.Booking) error
	BookingsForUser(ctx context.Context, userID uint64) ([]model.Booking, error)
	BookingByID(ctx context.Context, id uint64) (*model.Booking, error)
}

// Store is everything the Coordinator needs from persistence.  WithTx
// runs fn atomically: every store call made with the context it passes
// joins the same transaction, and an error from fn rolls everything
// back.  This is what guarantees a booked seat never exists without
// its booking record.
type Store interface {
	Ledger
	BookingStore
	ShowByID(ctx context.Context, showID uint64) (*model.Show, error)
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}
