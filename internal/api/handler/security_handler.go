package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gigmarket/account-security/internal/core/domain"
	"github.com/gigmarket/account-security/internal/core/ports"
)

// SecurityHandler serves the guarded email actions and their confirmations.
type SecurityHandler struct {
	service ports.AccountSecurityService
}

func NewSecurityHandler(service ports.AccountSecurityService) *SecurityHandler {
	return &SecurityHandler{service: service}
}

// RequestPasswordReset emails a reset link.
//
// @Summary      Request a password reset email
// @Tags         account-security
// @Accept       json
// @Produce      json
// @Param        body  body      emailRequest  true  "Account email"
// @Success      200   {object}  actionResponse
// @Failure      400   {object}  messageResponse
// @Failure      404   {object}  messageResponse
// @Failure      429   {object}  actionResponse
// @Router       /auth/password-reset [post]
func (h *SecurityHandler) RequestPasswordReset(c echo.Context) error {
	return h.guarded(c, h.service.RequestPasswordReset)
}

// ResendVerification emails a new verification code.
//
// @Summary      Resend the verification code
// @Tags         account-security
// @Accept       json
// @Produce      json
// @Param        body  body      emailRequest  true  "Account email"
// @Success      200   {object}  actionResponse
// @Failure      400   {object}  messageResponse
// @Failure      404   {object}  messageResponse
// @Failure      409   {object}  messageResponse
// @Failure      429   {object}  actionResponse
// @Router       /auth/verification/resend [post]
func (h *SecurityHandler) ResendVerification(c echo.Context) error {
	return h.guarded(c, h.service.ResendVerification)
}

type guardedAction func(ctx context.Context, email string) (*ports.ActionResult, error)

func (h *SecurityHandler) guarded(c echo.Context, action guardedAction) error {
	var req emailRequest
	if err := c.Bind(&req); err != nil {
		return domain.NewValidationError("invalid payload")
	}

	res, err := action(c.Request().Context(), req.Email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, actionResponse{
		Message:        res.Message,
		CooldownActive: res.CooldownActive,
		RemainingTime:  res.RemainingTime,
	})
}

// ConfirmPasswordReset sets a new password using a reset token.
//
// @Summary      Confirm a password reset
// @Tags         account-security
// @Accept       json
// @Produce      json
// @Param        body  body      confirmResetRequest  true  "Token and new password"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  messageResponse
// @Router       /auth/password-reset/confirm [post]
func (h *SecurityHandler) ConfirmPasswordReset(c echo.Context) error {
	var req confirmResetRequest
	if err := c.Bind(&req); err != nil {
		return domain.NewValidationError("invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if err := h.service.ConfirmPasswordReset(c.Request().Context(), req.Token, req.Password); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Password updated"})
}

// ConfirmVerification marks the email verified using the emailed code.
//
// @Summary      Confirm email verification
// @Tags         account-security
// @Accept       json
// @Produce      json
// @Param        body  body      confirmVerificationRequest  true  "Email and code"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  messageResponse
// @Failure      404   {object}  messageResponse
// @Router       /auth/verification/confirm [post]
func (h *SecurityHandler) ConfirmVerification(c echo.Context) error {
	var req confirmVerificationRequest
	if err := c.Bind(&req); err != nil {
		return domain.NewValidationError("invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if err := h.service.ConfirmVerification(c.Request().Context(), req.Email, req.Code); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Email verified"})
}
