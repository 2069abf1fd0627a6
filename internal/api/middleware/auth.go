package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/gigmarket/account-security/internal/api/handler"
	"github.com/gigmarket/account-security/internal/core/domain"
	"github.com/gigmarket/account-security/internal/core/ports"
)

// RefreshedTokenHeader carries a re-signed token when the session claims
// were backfilled; clients should replace their stored token with it.
const RefreshedTokenHeader = "X-Session-Token"

// SessionResolver turns a bearer token into a session.
type SessionResolver interface {
	Session(ctx context.Context, token string) (*ports.SessionResult, error)
}

// Auth validates the session token and injects the session view into context.
func Auth(resolver SessionResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			res, err := resolver.Session(c.Request().Context(), parts[1])
			if err != nil {
				if errors.Is(err, domain.ErrInvalidToken) {
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
				}
				return err
			}

			if res.RefreshedToken != "" {
				c.Response().Header().Set(RefreshedTokenHeader, res.RefreshedToken)
			}
			c.Set(handler.SessionKey, res.View)
			c.Set("role", res.View.Role)

			return next(c)
		}
	}
}
