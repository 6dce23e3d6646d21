package router

import (
	"github.com/labstack/echo/v4"

	"github.com/quickseats/booking/internal/config"
	mw "github.com/quickseats/booking/internal/middleware"
)

// registerBooking mounts the authenticated reservation flow.  Hold and
// confirm are the contended writes, so only those carry the rate
// limiter; reads stay unthrottled.
func registerBooking(e *echo.Echo, d Deps) {
	limit := mw.NewTokenBucket(config.LoadRateLimitConfig(), d.Redis)

	g := e.Group("/v1", mw.JWTAuth(d.Cfg.JWTSecret), mw.RequireRole("USER", "ADMIN"))
	g.POST("/shows/:id/hold", d.Booking.HoldSeats, limit)
	g.POST("/shows/:id/confirm", d.Booking.ConfirmBooking, limit)
	g.DELETE("/shows/:id/hold", d.Booking.CancelHold)
	g.GET("/my-bookings", d.Booking.ListBookings)
	g.GET("/bookings/:id", d.Booking.GetBooking)
}
