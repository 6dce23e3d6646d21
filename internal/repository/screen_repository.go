package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/quickseats/booking/internal/model"
)

// ErrScreenNotFound indicates that a screen was not located in the DB.
var ErrScreenNotFound = errors.New("screen not found")

// ScreenRepo manages persistence for screens and their fixed seat grid.
type ScreenRepo struct {
	db *sql.DB
}

// NewScreenRepo constructs a ScreenRepo with the given DB handle.
func NewScreenRepo(db *sql.DB) *ScreenRepo { return &ScreenRepo{db: db} }

// Create inserts a screen together with its Rows × SeatsPerRow seat
// grid in one transaction.  Seats are physical and immutable, so this
// is the only place they are ever written.
func (r *ScreenRepo) Create(ctx context.Context, sc *model.Screen) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const q = `INSERT INTO screens (name, ` + "`rows`" + `, seats_per_row) VALUES (?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, sc.Name, sc.Rows, sc.SeatsPerRow)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	sc.ID = uint64(id)

	seatQ := `INSERT INTO seats (screen_id, row_number, seat_number, seat_type) VALUES `
	args := make([]any, 0, int(sc.Rows*sc.SeatsPerRow)*4)
	first := true
	for row := uint32(1); row <= sc.Rows; row++ {
		for num := uint32(1); num <= sc.SeatsPerRow; num++ {
			if !first {
				seatQ += ","
			}
			first = false
			seatQ += "(?, ?, ?, 'STANDARD')"
			args = append(args, sc.ID, row, num)
		}
	}
	if _, err := tx.ExecContext(ctx, seatQ, args...); err != nil {
		return err
	}

	const sel = `SELECT created_at FROM screens WHERE id = ?`
	if err := tx.QueryRowContext(ctx, sel, sc.ID).Scan(&sc.CreatedAt); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID retrieves a screen or ErrScreenNotFound.
func (r *ScreenRepo) GetByID(ctx context.Context, id uint64) (*model.Screen, error) {
	const q = `SELECT id, name, ` + "`rows`" + `, seats_per_row, created_at FROM screens WHERE id = ?`
	var sc model.Screen
	err := r.db.QueryRowContext(ctx, q, id).Scan(&sc.ID, &sc.Name, &sc.Rows, &sc.SeatsPerRow, &sc.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrScreenNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sc, nil
}

// SeatsByScreen lists the screen's seats ordered by row and number.
func (r *ScreenRepo) SeatsByScreen(ctx context.Context, screenID uint64) ([]model.Seat, error) {
	const q = `SELECT id, screen_id, row_number, seat_number, seat_type
			   FROM seats WHERE screen_id = ? ORDER BY row_number, seat_number`
	rows, err := r.db.QueryContext(ctx, q, screenID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var seats []model.Seat
	for rows.Next() {
		var seat model.Seat
		if err := rows.Scan(&seat.ID, &seat.ScreenID, &seat.RowNumber, &seat.SeatNumber, &seat.SeatType); err != nil {
			return nil, err
		}
		seats = append(seats, seat)
	}
	return seats, rows.Err()
}

// SeatIDsByScreen returns just the seat IDs, used to seed the ledger
// when a show is created on this screen.
func (r *ScreenRepo) SeatIDsByScreen(ctx context.Context, screenID uint64) ([]uint64, error) {
	seats, err := r.SeatsByScreen(ctx, screenID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, len(seats))
	for i, seat := range seats {
		ids[i] = seat.ID
	}
	return ids, nil
}
