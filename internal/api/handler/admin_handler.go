package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gigmarket/account-security/internal/core/ports"
)

// AdminHandler exposes read-only identity lookups to admins.
type AdminHandler struct {
	service ports.AccountSecurityService
}

func NewAdminHandler(service ports.AccountSecurityService) *AdminHandler {
	return &AdminHandler{service: service}
}

// GetIdentity returns the identity record for an email.
//
// @Summary      Look up an identity
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        email  path      string  true  "Account email"
// @Success      200    {object}  domain.Identity
// @Failure      403    {object}  messageResponse
// @Failure      404    {object}  messageResponse
// @Router       /admin/identities/{email} [get]
func (h *AdminHandler) GetIdentity(c echo.Context) error {
	identity, err := h.service.LookupIdentity(c.Request().Context(), c.Param("email"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, identity)
}
