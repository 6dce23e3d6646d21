package model

// Seat is a fixed physical seat belonging to a screen.  Seats are
// immutable: per-show availability lives in show_seats, never here.
//
// Fields:
//  ID         – primary key identifier.
//  ScreenID   – screen this seat belongs to.
//  RowNumber  – 1-based row index (row 1 renders as "A").
//  SeatNumber – 1-based position within the row.
//  SeatType   – class of seat (STANDARD, PREMIUM).
type Seat struct {
	ID         uint64 // seats.id
	ScreenID   uint64 // seats.screen_id
	RowNumber  uint32 // seats.row_number
	SeatNumber uint32 // seats.seat_number
	SeatType   string // seats.seat_type
}
