package model

import "time"

// Movie describes a film that can be scheduled for shows.  Catalog
// metadata is stored alongside so the browse endpoints can render
// listings without extra lookups.
//
// Fields:
//  ID              – primary key identifier.
//  Title           – display title of the movie.
//  Description     – synopsis shown on listing pages.
//  Genre           – free-form genre label.
//  Rating          – certification rating (e.g. PG-13).
//  DurationMinutes – runtime in minutes.
//  PosterURL       – optional poster image location.
//  ReleaseDate     – optional theatrical release date.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Movie struct {
	ID              uint64     // movies.id
	Title           string     // movies.title
	Description     string     // movies.description
	Genre           string     // movies.genre
	Rating          string     // movies.rating
	DurationMinutes uint32     // movies.duration_minutes
	PosterURL       *string    // movies.poster_url (nullable)
	ReleaseDate     *time.Time // movies.release_date (nullable)
	CreatedAt       time.Time  // movies.created_at
	UpdatedAt       time.Time  // movies.updated_at
}
