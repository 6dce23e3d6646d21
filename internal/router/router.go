// Package router wires handlers, middleware and routes onto the Echo
// instance.  Route groups are split by audience: public catalog,
// authenticated booking flow, and admin provisioning.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/quickseats/booking/internal/config"
	"github.com/quickseats/booking/internal/handler"
	mw "github.com/quickseats/booking/internal/middleware"
)

// Deps carries everything route registration needs.
type Deps struct {
	Cfg     config.Config
	Auth    *handler.AuthHandler
	Public  *handler.PublicHandler
	Booking *handler.BookingHandler
	Admin   *handler.AdminHandler
	Redis   *redis.Client // nil disables rate limiting and caching
}

// Register mounts all routes on e.
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)

	auth := e.Group("/v1/auth")
	auth.POST("/register", d.Auth.Register)
	auth.POST("/login", d.Auth.Login)
	auth.POST("/refresh", d.Auth.Refresh)
	auth.POST("/logout", d.Auth.Logout)

	e.GET("/v1/me", d.Auth.Me, mw.JWTAuth(d.Cfg.JWTSecret))

	registerPublic(e, d)
	registerBooking(e, d)
	registerAdmin(e, d)
}
