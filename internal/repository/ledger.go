package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/quickseats/booking/internal/model"
	"github.com/quickseats/booking/internal/reservation"
)

// Ledger methods.  One show_seats row exists per (show, seat) pair,
// created when the show is created (SeedSeats).  TryHold and Confirm
// must run inside WithTx: they take InnoDB row locks with
// SELECT ... FOR UPDATE and apply conditional updates, which is what
// makes concurrent transitions on the same seat linearizable.

// ShowByID implements reservation.Store.
func (s *Store) ShowByID(ctx context.Context, showID uint64) (*model.Show, error) {
	const q = `SELECT id, movie_id, screen_id, starts_at, ends_at, price_cents, created_at
			   FROM shows WHERE id = ?`
	var sh model.Show
	err := s.q(ctx).QueryRowContext(ctx, q, showID).Scan(
		&sh.ID, &sh.MovieID, &sh.ScreenID, &sh.StartsAt, &sh.EndsAt, &sh.PriceCents, &sh.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, reservation.ErrShowNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sh, nil
}

// SeatStates implements reservation.Ledger.
func (s *Store) SeatStates(ctx context.Context, showID uint64) ([]reservation.SeatState, error) {
	const q = `SELECT seat_id, status, hold_token, hold_expires_at
			   FROM show_seats WHERE show_id = ? ORDER BY seat_id`
	rows, err := s.q(ctx).QueryContext(ctx, q, showID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var states []reservation.SeatState
	for rows.Next() {
		st, err := scanSeatState(rows, showID)
		if err != nil {
			return nil, err
		}
		states = append(states, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(states) == 0 {
		// distinguish "no such show" from a show with no seats
		if _, err := s.ShowByID(ctx, showID); err != nil {
			return nil, err
		}
	}
	return states, nil
}

// TryHold implements reservation.Ledger.  The requested rows are locked
// first; if every one is available (or carries a lapsed hold) they all
// transition to HELD under token, otherwise nothing changes and the
// unavailable subset is reported.
func (s *Store) TryHold(ctx context.Context, showID uint64, seatIDs []uint64, token string, expiresAt time.Time) error {
	states, err := s.lockSeats(ctx, showID, seatIDs)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	var conflicts []uint64
	for _, st := range states {
		switch {
		case st.Status == reservation.StatusAvailable:
		case st.Expired(now):
		default:
			conflicts = append(conflicts, st.SeatID)
		}
	}
	if len(conflicts) > 0 {
		return &reservation.ConflictError{SeatIDs: conflicts}
	}

	q := `UPDATE show_seats SET status = 'HELD', hold_token = ?, hold_expires_at = ?
		  WHERE show_id = ? AND seat_id IN (` + placeholders(len(seatIDs)) + `)`
	args := append([]any{token, expiresAt.UTC(), showID}, uint64Args(seatIDs)...)
	_, err = s.q(ctx).ExecContext(ctx, q, args...)
	return err
}

// Confirm implements reservation.Ledger.  Conflicts take precedence
// over expiry in the error report; see the engine contract.
func (s *Store) Confirm(ctx context.Context, showID uint64, seatIDs []uint64, token string, now time.Time) error {
	states, err := s.lockSeats(ctx, showID, seatIDs)
	if err != nil {
		return err
	}

	var conflicts []uint64
	expired := false
	for _, st := range states {
		switch {
		case st.Status == reservation.StatusHeld && st.HoldToken == token && !st.Expired(now):
		case st.Status == reservation.StatusHeld && st.HoldToken == token:
			expired = true
		case st.Status == reservation.StatusAvailable:
			// the hold lapsed and the sweeper already reclaimed it
			expired = true
		default:
			conflicts = append(conflicts, st.SeatID)
		}
	}
	if len(conflicts) > 0 {
		return &reservation.ConflictError{SeatIDs: conflicts}
	}
	if expired {
		return reservation.ErrHoldExpired
	}

	q := `UPDATE show_seats SET status = 'BOOKED', hold_token = NULL, hold_expires_at = NULL
		  WHERE show_id = ? AND seat_id IN (` + placeholders(len(seatIDs)) + `)`
	args := append([]any{showID}, uint64Args(seatIDs)...)
	_, err = s.q(ctx).ExecContext(ctx, q, args...)
	return err
}

// Release implements reservation.Ledger.  A single conditional UPDATE
// keeps it atomic and idempotent: only seats still held under token
// change, BOOKED seats never match.
func (s *Store) Release(ctx context.Context, showID uint64, seatIDs []uint64, token string) (int64, error) {
	if len(seatIDs) == 0 {
		return 0, nil
	}
	q := `UPDATE show_seats SET status = 'AVAILABLE', hold_token = NULL, hold_expires_at = NULL
		  WHERE show_id = ? AND hold_token = ? AND status = 'HELD'
			AND seat_id IN (` + placeholders(len(seatIDs)) + `)`
	args := append([]any{showID, token}, uint64Args(seatIDs)...)
	res, err := s.q(ctx).ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ReleaseExpired implements reservation.Ledger.
func (s *Store) ReleaseExpired(ctx context.Context, now time.Time) (int64, error) {
	const q = `UPDATE show_seats SET status = 'AVAILABLE', hold_token = NULL, hold_expires_at = NULL
			   WHERE status = 'HELD' AND hold_expires_at <= ?`
	res, err := s.q(ctx).ExecContext(ctx, q, now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SeedSeats creates one AVAILABLE ledger row per seat for a freshly
// created show.  Called from the admin show-creation flow inside the
// same transaction that inserts the show.
func (s *Store) SeedSeats(ctx context.Context, showID uint64, seatIDs []uint64) error {
	if len(seatIDs) == 0 {
		return nil
	}
	q := `INSERT INTO show_seats (show_id, seat_id, status) VALUES `
	args := make([]any, 0, len(seatIDs)*2)
	for i, id := range seatIDs {
		if i > 0 {
			q += ","
		}
		q += "(?, ?, 'AVAILABLE')"
		args = append(args, showID, id)
	}
	_, err := s.q(ctx).ExecContext(ctx, q, args...)
	return err
}

// lockSeats selects the requested ledger rows FOR UPDATE and verifies
// that every requested seat has a row for this show.
func (s *Store) lockSeats(ctx context.Context, showID uint64, seatIDs []uint64) ([]reservation.SeatState, error) {
	if len(seatIDs) == 0 {
		return nil, &reservation.ValidationError{Reason: "no seats requested"}
	}
	q := `SELECT seat_id, status, hold_token, hold_expires_at
		  FROM show_seats WHERE show_id = ? AND seat_id IN (` + placeholders(len(seatIDs)) + `) FOR UPDATE`
	args := append([]any{showID}, uint64Args(seatIDs)...)
	rows, err := s.q(ctx).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var states []reservation.SeatState
	for rows.Next() {
		st, err := scanSeatState(rows, showID)
		if err != nil {
			return nil, err
		}
		states = append(states, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(states) != len(seatIDs) {
		return nil, &reservation.ValidationError{Reason: "seat not part of this show"}
	}
	return states, nil
}

// scanSeatState reads one show_seats row.
func scanSeatState(rows *sql.Rows, showID uint64) (reservation.SeatState, error) {
	var (
		st    reservation.SeatState
		token sql.NullString
		exp   sql.NullTime
	)
	var status string
	if err := rows.Scan(&st.SeatID, &status, &token, &exp); err != nil {
		return reservation.SeatState{}, err
	}
	st.ShowID = showID
	st.Status = reservation.SeatStatus(status)
	if token.Valid {
		st.HoldToken = token.String
	}
	if exp.Valid {
		t := exp.Time
		st.HoldExpiresAt = &t
	}
	return st, nil
}
