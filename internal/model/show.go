package model

import "time"

// Show represents a scheduled screening of a movie on a particular
// screen.  A show is immutable once created as far as the reservation
// engine is concerned: the ticket price and time window never change
// under active holds.
//
// Fields:
//  ID         – primary key identifier.
//  MovieID    – movie being screened.
//  ScreenID   – screen where the show takes place.
//  StartsAt   – when the show begins.
//  EndsAt     – when the show ends (must be after StartsAt).
//  PriceCents – ticket price in cents; every seat of the show costs
//               the same, and booking totals are seatCount × PriceCents.
//  CreatedAt  – creation timestamp.
type Show struct {
	ID         uint64    // shows.id
	MovieID    uint64    // shows.movie_id
	ScreenID   uint64    // shows.screen_id
	StartsAt   time.Time // shows.starts_at
	EndsAt     time.Time // shows.ends_at
	PriceCents uint32    // shows.price_cents
	CreatedAt  time.Time // shows.created_at
}
