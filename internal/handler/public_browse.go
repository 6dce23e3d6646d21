package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/quickseats/booking/internal/model"
	"github.com/quickseats/booking/internal/repository"
	"github.com/quickseats/booking/internal/reservation"
)

// PublicHandler serves the unauthenticated catalog endpoints: movies,
// their upcoming shows, show details and the live seat map.
type PublicHandler struct {
	Movies      *repository.MovieRepo
	Screens     *repository.ScreenRepo
	Shows       *repository.ShowRepo
	Coordinator *reservation.Coordinator
}

// ListMovies handles GET /v1/movies.
func (h *PublicHandler) ListMovies(c echo.Context) error {
	movies, err := h.Movies.List(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("list movies: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list movies"})
	}
	items := make([]echo.Map, len(movies))
	for i := range movies {
		items[i] = movieJSON(&movies[i])
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetMovie handles GET /v1/movies/:id.
func (h *PublicHandler) GetMovie(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	m, err := h.Movies.GetByID(c.Request().Context(), id)
	if errors.Is(err, repository.ErrMovieNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
	}
	if err != nil {
		c.Logger().Errorf("get movie %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load movie"})
	}
	return c.JSON(http.StatusOK, movieJSON(m))
}

// ListShowsByMovie handles GET /v1/movies/:id/shows, upcoming only.
func (h *PublicHandler) ListShowsByMovie(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	ctx := c.Request().Context()
	if _, err := h.Movies.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		c.Logger().Errorf("list shows: load movie %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list shows"})
	}
	listings, err := h.Shows.ListByMovie(ctx, id)
	if err != nil {
		c.Logger().Errorf("list shows for movie %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list shows"})
	}
	items := make([]echo.Map, len(listings))
	for i := range listings {
		items[i] = listingJSON(&listings[i])
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetShow handles GET /v1/shows/:id.
func (h *PublicHandler) GetShow(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	listing, err := h.Shows.GetListing(c.Request().Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
	}
	if err != nil {
		c.Logger().Errorf("get show %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load show"})
	}
	return c.JSON(http.StatusOK, listingJSON(listing))
}

// GetSeatMap handles GET /v1/shows/:id/seats.  It merges the screen's
// physical grid with the live ledger state.  Hold tokens never leave
// the server; clients only see AVAILABLE, HELD or BOOKED.  A hold that
// has lapsed but not yet been swept still reports HELD.
func (h *PublicHandler) GetSeatMap(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	ctx := c.Request().Context()
	listing, err := h.Shows.GetListing(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
	}
	if err != nil {
		c.Logger().Errorf("seat map: load show %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load show"})
	}

	seats, err := h.Screens.SeatsByScreen(ctx, listing.ScreenID)
	if err != nil {
		c.Logger().Errorf("seat map: load seats for screen %d: %v", listing.ScreenID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load seat map"})
	}
	states, err := h.Coordinator.SeatStates(ctx, id)
	if err != nil {
		return writeReservationError(c, err)
	}

	statusBySeat := make(map[uint64]reservation.SeatStatus, len(states))
	for _, st := range states {
		statusBySeat[st.SeatID] = st.Status
	}

	items := make([]echo.Map, 0, len(seats))
	for _, seat := range seats {
		status, ok := statusBySeat[seat.ID]
		if !ok {
			// seat added after the show was seeded; not sellable
			continue
		}
		items = append(items, echo.Map{
			"seat_id":   seat.ID,
			"row":       seat.RowNumber,
			"row_label": rowLabel(seat.RowNumber),
			"number":    seat.SeatNumber,
			"seat_type": seat.SeatType,
			"status":    status,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"show_id":     id,
		"screen_name": listing.ScreenName,
		"price_cents": listing.PriceCents,
		"seats":       items,
	})
}

// rowLabel renders row 1 as "A", row 27 as "AA" and so on.
func rowLabel(row uint32) string {
	label := ""
	n := row
	for n > 0 {
		n--
		label = string(rune('A'+n%26)) + label
		n /= 26
	}
	return label
}

func movieJSON(m *model.Movie) echo.Map {
	return echo.Map{
		"id":               m.ID,
		"title":            m.Title,
		"description":      m.Description,
		"genre":            m.Genre,
		"rating":           m.Rating,
		"duration_minutes": m.DurationMinutes,
		"poster_url":       m.PosterURL,
		"release_date":     m.ReleaseDate,
	}
}

func listingJSON(l *repository.ShowListing) echo.Map {
	return echo.Map{
		"id":          l.ID,
		"movie_id":    l.MovieID,
		"movie_title": l.MovieTitle,
		"screen_id":   l.ScreenID,
		"screen_name": l.ScreenName,
		"starts_at":   l.StartsAt,
		"ends_at":     l.EndsAt,
		"price_cents": l.PriceCents,
	}
}
