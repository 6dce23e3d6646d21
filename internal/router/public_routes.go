package router

import (
	"github.com/labstack/echo/v4"

	"github.com/quickseats/booking/internal/config"
	mw "github.com/quickseats/booking/internal/middleware"
)

// registerPublic mounts the unauthenticated catalog routes.  They sit
// behind the response cache: short TTLs absorb browse traffic spikes
// while keeping the seat map close to live.
func registerPublic(e *echo.Echo, d Deps) {
	cache := mw.NewResponseCache(config.LoadCacheConfig(), d.Redis)

	g := e.Group("/v1", cache)
	g.GET("/movies", d.Public.ListMovies)
	g.GET("/movies/:id", d.Public.GetMovie)
	g.GET("/movies/:id/shows", d.Public.ListShowsByMovie)
	g.GET("/shows/:id", d.Public.GetShow)
	g.GET("/shows/:id/seats", d.Public.GetSeatMap)
}
