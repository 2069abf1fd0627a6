package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/gigmarket/account-security/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Message string `json:"message"`
}

// rateLimitedResponse adds the cooldown metadata clients use to render a timer.
type rateLimitedResponse struct {
	Message        string `json:"message"`
	CooldownActive bool   `json:"cooldownActive"`
	RemainingTime  int    `json:"remainingTime"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Adds cooldown metadata and Retry-After to rate-limited responses.
//   - Logs unexpected errors internally without leaking details to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var rl *domain.RateLimitedError
		if errors.As(err, &rl) {
			c.Response().Header().Set("Retry-After", strconv.Itoa(rl.RetryAfterSeconds))
			_ = c.JSON(http.StatusTooManyRequests, rateLimitedResponse{
				Message:        "Too many requests. Please try again later.",
				CooldownActive: true,
				RemainingTime:  rl.RetryAfterSeconds,
			})
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Message: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, ve.Message
	}

	// Sign-in denials carry their own instruction for the user.
	var deny *domain.DenyError
	if errors.As(err, &deny) {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			return http.StatusNotFound, "User not found with this email"
		case errors.Is(err, domain.ErrAccountBanned):
			return http.StatusForbidden, deny.Message
		case errors.Is(err, domain.ErrInvalidCredentials):
			return http.StatusUnauthorized, "invalid credentials"
		default:
			return http.StatusUnauthorized, deny.Message
		}
	}

	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "User not found with this email"
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, "an account already exists for this email"
	case errors.Is(err, domain.ErrAlreadyVerified):
		return http.StatusConflict, "email already verified"
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusBadRequest, "invalid or expired token"
	case errors.Is(err, domain.ErrOAuthFailed):
		log.Warn().Err(err).Msg("oauth exchange failed")
		return http.StatusUnauthorized, "sign-in with provider failed"
	case errors.Is(err, domain.ErrUnknownProvider):
		return http.StatusNotFound, "unknown sign-in provider"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "access forbidden"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
