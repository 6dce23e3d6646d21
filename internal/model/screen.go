package model

import "time"

// Screen is an auditorium with a fixed rectangular seat grid.  When a
// screen is created its seats are generated as Rows × SeatsPerRow
// physical positions; the grid never changes afterwards.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – display name ("Screen 1").
//  Rows        – number of seat rows.
//  SeatsPerRow – seats in each row.
//  CreatedAt   – creation timestamp.
type Screen struct {
	ID          uint64    // screens.id
	Name        string    // screens.name
	Rows        uint32    // screens.rows
	SeatsPerRow uint32    // screens.seats_per_row
	CreatedAt   time.Time // screens.created_at
}
