package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/lagoulette/smartport/internal/api/middleware"
)

// actorID returns the identity id stored by the Auth middleware. Its absence
// means the route was mounted without Auth, which is reported as 401.
func actorID(c echo.Context) (int64, error) {
	id, ok := c.Get(middleware.IdentityIDKey).(int64)
	if !ok || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
	}
	return id, nil
}

// pathID parses the :id route parameter as a positive identity id.
func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	return id, nil
}
