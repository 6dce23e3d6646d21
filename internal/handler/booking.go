package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/quickseats/booking/internal/model"
	"github.com/quickseats/booking/internal/queue"
	"github.com/quickseats/booking/internal/repository"
	"github.com/quickseats/booking/internal/reservation"
	queue_publisher "github.com/quickseats/booking/internal/service"
)

// BookingHandler exposes the reservation flow over HTTP: hold seats,
// confirm them into a booking, cancel a hold, and read bookings back.
// All seat mutation goes through the Coordinator.
type BookingHandler struct {
	Coordinator *reservation.Coordinator
	Shows       *repository.ShowRepo
}

type holdRequest struct {
	SeatIDs    []uint64 `json:"seat_ids" validate:"required,min=1,dive,gt=0"`
	TTLSeconds int      `json:"ttl_seconds" validate:"omitempty,gt=0,lte=1800"`
}

type confirmRequest struct {
	HoldToken string   `json:"hold_token" validate:"required"`
	SeatIDs   []uint64 `json:"seat_ids" validate:"required,min=1,dive,gt=0"`
}

type cancelRequest struct {
	HoldToken string   `json:"hold_token" validate:"required"`
	SeatIDs   []uint64 `json:"seat_ids" validate:"required,min=1,dive,gt=0"`
}

// HoldSeats handles POST /v1/shows/:id/hold.  On success the client
// receives the hold token it must present to confirm or cancel.
func (h *BookingHandler) HoldSeats(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	showID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	var req holdRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid JSON body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ttl := time.Duration(req.TTLSeconds) * time.Second
	ticket, err := h.Coordinator.HoldSeats(c.Request().Context(), showID, userID, req.SeatIDs, ttl)
	if err != nil {
		return writeReservationError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"hold_token": ticket.Token,
		"show_id":    ticket.ShowID,
		"seat_ids":   ticket.SeatIDs,
		"expires_at": ticket.ExpiresAt,
	})
}

// ConfirmBooking handles POST /v1/shows/:id/confirm.  The hold token and
// seat set from the hold response identify which hold is being finalised.
func (h *BookingHandler) ConfirmBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	showID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	var req confirmRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid JSON body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ticket := &reservation.HoldTicket{
		Token:   req.HoldToken,
		ShowID:  showID,
		UserID:  userID,
		SeatIDs: req.SeatIDs,
	}
	booking, err := h.Coordinator.ConfirmBooking(c.Request().Context(), ticket)
	if err != nil {
		return writeReservationError(c, err)
	}

	h.publishConfirmed(c, booking)

	return c.JSON(http.StatusCreated, bookingJSON(booking))
}

// CancelHold handles DELETE /v1/shows/:id/hold.  Cancelling a hold that
// already lapsed or was confirmed is a no-op, so this always succeeds
// for a well-formed request.
func (h *BookingHandler) CancelHold(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	showID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	var req cancelRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid JSON body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ticket := &reservation.HoldTicket{
		Token:   req.HoldToken,
		ShowID:  showID,
		UserID:  userID,
		SeatIDs: req.SeatIDs,
	}
	if err := h.Coordinator.CancelHold(c.Request().Context(), ticket); err != nil {
		return writeReservationError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListBookings handles GET /v1/my-bookings, newest first.
func (h *BookingHandler) ListBookings(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookings, err := h.Coordinator.Bookings(c.Request().Context(), userID)
	if err != nil {
		return writeReservationError(c, err)
	}
	items := make([]echo.Map, len(bookings))
	for i := range bookings {
		items[i] = bookingJSON(&bookings[i])
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetBooking handles GET /v1/bookings/:id.  Users can only read their
// own bookings; a foreign ID answers 404 rather than 403 so booking IDs
// cannot be probed.
func (h *BookingHandler) GetBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	booking, err := h.Coordinator.Booking(c.Request().Context(), id)
	if err != nil {
		return writeReservationError(c, err)
	}
	if booking.UserID != userID {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	}
	return c.JSON(http.StatusOK, bookingJSON(booking))
}

// publishConfirmed emits the booking.confirmed event without blocking
// the response; a broker outage only costs the audit trail.
func (h *BookingHandler) publishConfirmed(c echo.Context, b *model.Booking) {
	listing, err := h.Shows.GetListing(c.Request().Context(), b.ShowID)
	if err != nil {
		c.Logger().Errorf("booking %d: load show %d for event: %v", b.ID, b.ShowID, err)
		return
	}
	ev := queue.BookingConfirmedEvent{
		BookingID:   b.ID,
		Reference:   b.Reference,
		UserID:      b.UserID,
		ShowID:      b.ShowID,
		MovieTitle:  listing.MovieTitle,
		ScreenName:  listing.ScreenName,
		StartsAt:    listing.StartsAt.UTC().Format(time.RFC3339),
		SeatIDs:     b.SeatIDs,
		TotalCents:  b.TotalCents,
		ConfirmedAt: b.CreatedAt.UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queue_publisher.PublishBookingConfirmed(ctx, ev)
	}()
}

func bookingJSON(b *model.Booking) echo.Map {
	return echo.Map{
		"id":          b.ID,
		"reference":   b.Reference,
		"show_id":     b.ShowID,
		"seat_ids":    b.SeatIDs,
		"total_cents": b.TotalCents,
		"status":      b.Status,
		"created_at":  b.CreatedAt,
	}
}

// writeReservationError maps engine errors onto HTTP statuses.  A
// transport failure from the store maps to 502: the outcome may be
// ambiguous and the client must re-check instead of retrying blindly.
func writeReservationError(c echo.Context, err error) error {
	var vErr *reservation.ValidationError
	if errors.As(err, &vErr) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": vErr.Reason})
	}
	var cErr *reservation.ConflictError
	if errors.As(err, &cErr) {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":       "seats unavailable",
			"unavailable": cErr.SeatIDs,
		})
	}
	switch {
	case errors.Is(err, reservation.ErrHoldExpired):
		return c.JSON(http.StatusGone, echo.Map{"error": "hold expired"})
	case errors.Is(err, reservation.ErrShowNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
	case errors.Is(err, reservation.ErrBookingNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	}
	c.Logger().Errorf("reservation store error: %v", err)
	return c.JSON(http.StatusBadGateway, echo.Map{"error": "reservation store unavailable"})
}
