package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gigmarket/account-security/internal/core/domain"
)

// SessionKey is the echo context key the Auth middleware stores the
// session view under.
const SessionKey = "session"

// ctxSession returns the session injected by the Auth middleware. A missing
// session means the route was mounted without it; reject with 401.
func ctxSession(c echo.Context) (domain.SessionView, error) {
	view, ok := c.Get(SessionKey).(domain.SessionView)
	if !ok || view.Email == "" {
		return domain.SessionView{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return view, nil
}
