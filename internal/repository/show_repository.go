package repository

import (
	"context"
	"database/sql"

	"github.com/quickseats/booking/internal/model"
)

// ShowRepo manages persistence for shows.  Reads of single shows used
// by the reservation engine live on Store.ShowByID; this repository
// carries the catalog queries and the transactional insert.
type ShowRepo struct {
	db *sql.DB
}

// NewShowRepo constructs a ShowRepo with the given DB handle.
func NewShowRepo(db *sql.DB) *ShowRepo { return &ShowRepo{db: db} }

// CreateTx inserts a show within the caller's transaction so the
// ledger rows for its seats can be seeded atomically alongside it.
func (r *ShowRepo) CreateTx(ctx context.Context, tx *sql.Tx, sh *model.Show) error {
	const q = `INSERT INTO shows (movie_id, screen_id, starts_at, ends_at, price_cents) VALUES (?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, sh.MovieID, sh.ScreenID, sh.StartsAt.UTC(), sh.EndsAt.UTC(), sh.PriceCents)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	sh.ID = uint64(id)
	const sel = `SELECT created_at FROM shows WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, sh.ID).Scan(&sh.CreatedAt)
}

// ShowListing is a show joined with its movie title and screen name,
// the shape the browse endpoints render.
type ShowListing struct {
	model.Show
	MovieTitle string
	ScreenName string
}

// ListByMovie returns upcoming shows for a movie, soonest first.
func (r *ShowRepo) ListByMovie(ctx context.Context, movieID uint64) ([]ShowListing, error) {
	const q = `SELECT s.id, s.movie_id, s.screen_id, s.starts_at, s.ends_at, s.price_cents, s.created_at,
					  m.title, sc.name
			   FROM shows s
			   JOIN movies m ON m.id = s.movie_id
			   JOIN screens sc ON sc.id = s.screen_id
			   WHERE s.movie_id = ? AND s.starts_at > UTC_TIMESTAMP()
			   ORDER BY s.starts_at`
	rows, err := r.db.QueryContext(ctx, q, movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []ShowListing
	for rows.Next() {
		var l ShowListing
		err := rows.Scan(&l.ID, &l.MovieID, &l.ScreenID, &l.StartsAt, &l.EndsAt, &l.PriceCents, &l.CreatedAt,
			&l.MovieTitle, &l.ScreenName)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// GetListing returns one show with its movie and screen names, or
// sql.ErrNoRows when absent.
func (r *ShowRepo) GetListing(ctx context.Context, showID uint64) (*ShowListing, error) {
	const q = `SELECT s.id, s.movie_id, s.screen_id, s.starts_at, s.ends_at, s.price_cents, s.created_at,
					  m.title, sc.name
			   FROM shows s
			   JOIN movies m ON m.id = s.movie_id
			   JOIN screens sc ON sc.id = s.screen_id
			   WHERE s.id = ?`
	var l ShowListing
	err := r.db.QueryRowContext(ctx, q, showID).Scan(
		&l.ID, &l.MovieID, &l.ScreenID, &l.StartsAt, &l.EndsAt, &l.PriceCents, &l.CreatedAt,
		&l.MovieTitle, &l.ScreenName,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}
