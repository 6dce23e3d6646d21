package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/quickseats/booking/internal/model"
)

// ErrMovieNotFound indicates that a movie was not located in the DB.
var ErrMovieNotFound = errors.New("movie not found")

// MovieRepo manages persistence for movies.
type MovieRepo struct {
	db *sql.DB
}

// NewMovieRepo constructs a MovieRepo with the given DB handle.
func NewMovieRepo(db *sql.DB) *MovieRepo { return &MovieRepo{db: db} }

// Create inserts a movie and assigns the generated ID back to it.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
	const q = `INSERT INTO movies (title, description, genre, rating, duration_minutes, poster_url, release_date)
			   VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, m.Title, m.Description, m.Genre, m.Rating, m.DurationMinutes, m.PosterURL, m.ReleaseDate)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	const sel = `SELECT created_at, updated_at FROM movies WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, m.ID).Scan(&m.CreatedAt, &m.UpdatedAt)
}

// List returns all movies, most recently released first.
func (r *MovieRepo) List(ctx context.Context) ([]model.Movie, error) {
	const q = `SELECT id, title, description, genre, rating, duration_minutes, poster_url, release_date, created_at, updated_at
			   FROM movies ORDER BY release_date DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movies []model.Movie
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		movies = append(movies, m)
	}
	return movies, rows.Err()
}

// GetByID retrieves a movie or ErrMovieNotFound.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (*model.Movie, error) {
	const q = `SELECT id, title, description, genre, rating, duration_minutes, poster_url, release_date, created_at, updated_at
			   FROM movies WHERE id = ?`
	row := r.db.QueryRowContext(ctx, q, id)
	var (
		m       model.Movie
		poster  sql.NullString
		release sql.NullTime
	)
	err := row.Scan(&m.ID, &m.Title, &m.Description, &m.Genre, &m.Rating, &m.DurationMinutes, &poster, &release, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMovieNotFound
	}
	if err != nil {
		return nil, err
	}
	if poster.Valid {
		m.PosterURL = &poster.String
	}
	if release.Valid {
		m.ReleaseDate = &release.Time
	}
	return &m, nil
}

func scanMovie(rows *sql.Rows) (model.Movie, error) {
	var (
		m       model.Movie
		poster  sql.NullString
		release sql.NullTime
	)
	err := rows.Scan(&m.ID, &m.Title, &m.Description, &m.Genre, &m.Rating, &m.DurationMinutes, &poster, &release, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return model.Movie{}, err
	}
	if poster.Valid {
		m.PosterURL = &poster.String
	}
	if release.Valid {
		m.ReleaseDate = &release.Time
	}
	return m, nil
}
