package handler

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"
)

// errNoUser signals that no authenticated user could be derived from
// the request context.
var errNoUser = errors.New("no authenticated user")

// getUserID extracts the authenticated user ID stored by the JWTAuth
// middleware.  Claims decoded from JSON arrive as float64; tokens we
// issue carry numeric subjects, but string subjects are tolerated.
func getUserID(c echo.Context) (uint64, error) {
	switch v := c.Get("user_id").(type) {
	case float64:
		if v > 0 {
			return uint64(v), nil
		}
	case string:
		if id, err := strconv.ParseUint(v, 10, 64); err == nil && id > 0 {
			return id, nil
		}
	}
	return 0, errNoUser
}

// pathID parses a positive uint64 path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}
