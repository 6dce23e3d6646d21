package router

import (
	"github.com/labstack/echo/v4"

	mw "github.com/quickseats/booking/internal/middleware"
)

// registerAdmin mounts the catalog provisioning routes, ADMIN only.
func registerAdmin(e *echo.Echo, d Deps) {
	g := e.Group("/v1/admin", mw.JWTAuth(d.Cfg.JWTSecret), mw.RequireRole("ADMIN"))
	g.POST("/movies", d.Admin.CreateMovie)
	g.POST("/screens", d.Admin.CreateScreen)
	g.POST("/shows", d.Admin.CreateShow)
}
