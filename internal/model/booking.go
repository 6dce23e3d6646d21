package model

import "time"

// BookingConfirmed and BookingCancelled are the only booking statuses.
// A booking is created exactly once per successful confirmation and is
// immutable afterwards except for a future cancellation transition.
const (
	BookingConfirmed = "CONFIRMED"
	BookingCancelled = "CANCELLED"
)

// Booking is a confirmed purchase of one or more seats for a show.
// The seat set is pairwise-distinct and every seat it references is
// BOOKED in the ledger and owned by this booking.
//
// Fields:
//  ID         – primary key identifier.
//  Reference  – public UUID handed to the customer (ticket number).
//  UserID     – user who made the booking.
//  ShowID     – show being booked.
//  SeatIDs    – seats included in the booking.
//  TotalCents – total price: len(SeatIDs) × show.PriceCents.
//  Status     – CONFIRMED or CANCELLED.
//  CreatedAt  – creation timestamp.
type Booking struct {
	ID         uint64    // bookings.id
	Reference  string    // bookings.reference
	UserID     uint64    // bookings.user_id
	ShowID     uint64    // bookings.show_id
	SeatIDs    []uint64  // booking_seats.seat_id rows
	TotalCents uint32    // bookings.total_cents
	Status     string    // bookings.status
	CreatedAt  time.Time // bookings.created_at
}
