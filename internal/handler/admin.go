package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/quickseats/booking/internal/model"
	"github.com/quickseats/booking/internal/repository"
)

// AdminHandler provisions the catalog: movies, screens with their seat
// grids, and shows.  Creating a show also seeds one ledger row per
// screen seat, in the same transaction, so the seat map is complete the
// moment the show becomes visible.
type AdminHandler struct {
	Movies  *repository.MovieRepo
	Screens *repository.ScreenRepo
	Shows   *repository.ShowRepo
	Store   *repository.Store
}

type createMovieRequest struct {
	Title           string `json:"title" validate:"required,max=255"`
	Description     string `json:"description"`
	Genre           string `json:"genre" validate:"max=100"`
	Rating          string `json:"rating" validate:"max=10"`
	DurationMinutes uint32 `json:"duration_minutes" validate:"required,gt=0,lte=600"`
	PosterURL       string `json:"poster_url" validate:"omitempty,url"`
	ReleaseDate     string `json:"release_date" validate:"omitempty,datetime=2006-01-02"`
}

type createScreenRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Rows        uint32 `json:"rows" validate:"required,gt=0,lte=100"`
	SeatsPerRow uint32 `json:"seats_per_row" validate:"required,gt=0,lte=100"`
}

type createShowRequest struct {
	MovieID    uint64 `json:"movie_id" validate:"required,gt=0"`
	ScreenID   uint64 `json:"screen_id" validate:"required,gt=0"`
	StartsAt   string `json:"starts_at" validate:"required"`
	EndsAt     string `json:"ends_at" validate:"required"`
	PriceCents uint32 `json:"price_cents" validate:"required,gt=0"`
}

// CreateMovie handles POST /v1/admin/movies.
func (h *AdminHandler) CreateMovie(c echo.Context) error {
	var req createMovieRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid JSON body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	m := model.Movie{
		Title:           req.Title,
		Description:     req.Description,
		Genre:           req.Genre,
		Rating:          req.Rating,
		DurationMinutes: req.DurationMinutes,
	}
	if req.PosterURL != "" {
		m.PosterURL = &req.PosterURL
	}
	if req.ReleaseDate != "" {
		d, _ := time.Parse("2006-01-02", req.ReleaseDate) // validated above
		m.ReleaseDate = &d
	}
	if err := h.Movies.Create(c.Request().Context(), &m); err != nil {
		c.Logger().Errorf("create movie: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create movie"})
	}
	return c.JSON(http.StatusCreated, movieJSON(&m))
}

// CreateScreen handles POST /v1/admin/screens.  The seat grid is
// generated with the screen and never changes afterwards.
func (h *AdminHandler) CreateScreen(c echo.Context) error {
	var req createScreenRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid JSON body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	sc := model.Screen{Name: req.Name, Rows: req.Rows, SeatsPerRow: req.SeatsPerRow}
	if err := h.Screens.Create(c.Request().Context(), &sc); err != nil {
		c.Logger().Errorf("create screen: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create screen"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"id":            sc.ID,
		"name":          sc.Name,
		"rows":          sc.Rows,
		"seats_per_row": sc.SeatsPerRow,
		"seat_count":    sc.Rows * sc.SeatsPerRow,
		"created_at":    sc.CreatedAt,
	})
}

// CreateShow handles POST /v1/admin/shows.  The show row and its ledger
// rows are written in one transaction: either the show exists with a
// full seat map or it does not exist at all.
func (h *AdminHandler) CreateShow(c echo.Context) error {
	var req createShowRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid JSON body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	startsAt, err := time.Parse(time.RFC3339, req.StartsAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "starts_at must be RFC3339"})
	}
	endsAt, err := time.Parse(time.RFC3339, req.EndsAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ends_at must be RFC3339"})
	}
	if !endsAt.After(startsAt) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ends_at must be after starts_at"})
	}

	ctx := c.Request().Context()
	if _, err := h.Movies.GetByID(ctx, req.MovieID); err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		c.Logger().Errorf("create show: load movie %d: %v", req.MovieID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create show"})
	}
	if _, err := h.Screens.GetByID(ctx, req.ScreenID); err != nil {
		if errors.Is(err, repository.ErrScreenNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "screen not found"})
		}
		c.Logger().Errorf("create show: load screen %d: %v", req.ScreenID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create show"})
	}
	seatIDs, err := h.Screens.SeatIDsByScreen(ctx, req.ScreenID)
	if err != nil {
		c.Logger().Errorf("create show: load seats for screen %d: %v", req.ScreenID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create show"})
	}

	show := model.Show{
		MovieID:    req.MovieID,
		ScreenID:   req.ScreenID,
		StartsAt:   startsAt,
		EndsAt:     endsAt,
		PriceCents: req.PriceCents,
	}
	err = h.Store.WithTx(ctx, func(txCtx context.Context) error {
		tx, _ := repository.TxFrom(txCtx)
		if err := h.Shows.CreateTx(txCtx, tx, &show); err != nil {
			return err
		}
		return h.Store.SeedSeats(txCtx, show.ID, seatIDs)
	})
	if err != nil {
		c.Logger().Errorf("create show: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create show"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"id":          show.ID,
		"movie_id":    show.MovieID,
		"screen_id":   show.ScreenID,
		"starts_at":   show.StartsAt,
		"ends_at":     show.EndsAt,
		"price_cents": show.PriceCents,
		"seat_count":  len(seatIDs),
		"created_at":  show.CreatedAt,
	})
}
