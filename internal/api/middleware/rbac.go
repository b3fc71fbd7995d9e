package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lagoulette/smartport/internal/api/metrics"
	"github.com/lagoulette/smartport/internal/core/domain"
	"github.com/lagoulette/smartport/internal/core/ports"
)

// IdentityKey is the echo context key holding the authorized *domain.Identity.
const IdentityKey = "identity"

// RequireRole gates a route on exactly one role. It must run after Auth.
// An identity whose role differs is refused even if it is admin.
func RequireRole(guard ports.AccessGuard, role domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := c.Get(IdentityIDKey).(int64)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
			}

			identity, err := guard.Authorize(c.Request().Context(), id, role)
			switch {
			case err == nil:
				metrics.AuthorizationDecisionsTotal.WithLabelValues(role.String(), "allowed").Inc()
			case errors.Is(err, domain.ErrForbidden):
				metrics.AuthorizationDecisionsTotal.WithLabelValues(role.String(), "forbidden").Inc()
				return err
			case errors.Is(err, domain.ErrUnauthenticated):
				metrics.AuthorizationDecisionsTotal.WithLabelValues(role.String(), "unknown_identity").Inc()
				return err
			default:
				return err
			}

			c.Set(IdentityKey, identity)
			return next(c)
		}
	}
}
