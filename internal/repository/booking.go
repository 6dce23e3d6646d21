package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/quickseats/booking/internal/model"
	"github.com/quickseats/booking/internal/reservation"
)

// Booking store methods.  The bookings table is append-only in this
// subsystem: rows are inserted exactly once per confirmed reservation
// and never updated or deleted here.

// CreateBooking implements reservation.BookingStore.  It inserts the
// booking row and one booking_seats row per seat; when called from
// WithTx both land in the same transaction as the ledger transition.
func (s *Store) CreateBooking(ctx context.Context, b *model.Booking) error {
	const q = `INSERT INTO bookings (reference, user_id, show_id, total_cents, status) VALUES (?, ?, ?, ?, ?)`
	res, err := s.q(ctx).ExecContext(ctx, q, b.Reference, b.UserID, b.ShowID, b.TotalCents, b.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)

	seatQ := `INSERT INTO booking_seats (booking_id, show_id, seat_id) VALUES `
	args := make([]any, 0, len(b.SeatIDs)*3)
	for i, seatID := range b.SeatIDs {
		if i > 0 {
			seatQ += ","
		}
		seatQ += "(?, ?, ?)"
		args = append(args, b.ID, b.ShowID, seatID)
	}
	_, err = s.q(ctx).ExecContext(ctx, seatQ, args...)
	return err
}

// BookingsForUser implements reservation.BookingStore, newest first.
func (s *Store) BookingsForUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	const q = `SELECT id, reference, user_id, show_id, total_cents, status, created_at
			   FROM bookings WHERE user_id = ? ORDER BY created_at DESC, id DESC`
	rows, err := s.q(ctx).QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []model.Booking
	index := make(map[uint64]int)
	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(&b.ID, &b.Reference, &b.UserID, &b.ShowID, &b.TotalCents, &b.Status, &b.CreatedAt); err != nil {
			return nil, err
		}
		index[b.ID] = len(bookings)
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(bookings) == 0 {
		return bookings, nil
	}

	ids := make([]uint64, 0, len(bookings))
	for _, b := range bookings {
		ids = append(ids, b.ID)
	}
	seatQ := `SELECT booking_id, seat_id FROM booking_seats
			  WHERE booking_id IN (` + placeholders(len(ids)) + `) ORDER BY seat_id`
	seatRows, err := s.q(ctx).QueryContext(ctx, seatQ, uint64Args(ids)...)
	if err != nil {
		return nil, err
	}
	defer seatRows.Close()
	for seatRows.Next() {
		var bookingID, seatID uint64
		if err := seatRows.Scan(&bookingID, &seatID); err != nil {
			return nil, err
		}
		i := index[bookingID]
		bookings[i].SeatIDs = append(bookings[i].SeatIDs, seatID)
	}
	return bookings, seatRows.Err()
}

// BookingByID implements reservation.BookingStore.
func (s *Store) BookingByID(ctx context.Context, id uint64) (*model.Booking, error) {
	const q = `SELECT id, reference, user_id, show_id, total_cents, status, created_at
			   FROM bookings WHERE id = ?`
	var b model.Booking
	err := s.q(ctx).QueryRowContext(ctx, q, id).Scan(
		&b.ID, &b.Reference, &b.UserID, &b.ShowID, &b.TotalCents, &b.Status, &b.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, reservation.ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}

	const seatQ = `SELECT seat_id FROM booking_seats WHERE booking_id = ? ORDER BY seat_id`
	rows, err := s.q(ctx).QueryContext(ctx, seatQ, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var seatID uint64
		if err := rows.Scan(&seatID); err != nil {
			return nil, err
		}
		b.SeatIDs = append(b.SeatIDs, seatID)
	}
	return &b, rows.Err()
}
