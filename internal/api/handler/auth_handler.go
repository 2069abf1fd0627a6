package handler

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gigmarket/account-security/internal/core/domain"
	"github.com/gigmarket/account-security/internal/core/ports"
)

const (
	stateCookieName = "__oauth_state"
	stateTTL        = 5 * time.Minute
)

type AuthHandler struct {
	service      ports.AccountSecurityService
	secureCookie bool
}

func NewAuthHandler(service ports.AccountSecurityService, secureCookie bool) *AuthHandler {
	return &AuthHandler{service: service, secureCookie: secureCookie}
}

// Register creates a password-credentials account.
//
// @Summary      Register with email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  messageResponse
// @Failure      409   {object}  messageResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return domain.NewValidationError("invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.service.Register(c.Request().Context(), ports.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, authResponse{Token: res.Token, User: res.Identity})
}

// Login signs in with email and password.
//
// @Summary      Credentials sign-in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  messageResponse
// @Failure      401   {object}  messageResponse
// @Failure      404   {object}  messageResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return domain.NewValidationError("invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.service.SignInCredentials(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authResponse{Token: res.Token, User: res.Identity})
}

// OAuthLogin redirects to the provider's consent page.
//
// @Summary      Start OAuth sign-in
// @Tags         auth
// @Param        provider  path  string  true  "google or github"
// @Success      302
// @Failure      404  {object}  messageResponse
// @Router       /auth/oauth/{provider}/login [get]
func (h *AuthHandler) OAuthLogin(c echo.Context) error {
	provider := domain.Provider(c.Param("provider"))
	state, err := newState()
	if err != nil {
		return err
	}

	url, err := h.service.OAuthLoginURL(provider, state)
	if err != nil {
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(stateTTL.Seconds()),
	})
	return c.Redirect(http.StatusFound, url)
}

// OAuthCallback completes OAuth sign-in and reconciles the identity.
//
// @Summary      OAuth callback
// @Tags         auth
// @Produce      json
// @Param        provider  path   string  true  "google or github"
// @Param        code      query  string  true  "Authorization code"
// @Param        state     query  string  true  "State echoed by the provider"
// @Success      200  {object}  authResponse
// @Failure      400  {object}  messageResponse
// @Failure      401  {object}  messageResponse
// @Router       /auth/oauth/{provider}/callback [get]
func (h *AuthHandler) OAuthCallback(c echo.Context) error {
	if !validState(c) {
		return domain.NewValidationError("invalid oauth state")
	}
	h.clearState(c)

	code := c.QueryParam("code")
	if code == "" {
		return domain.NewValidationError("missing authorization code")
	}

	res, err := h.service.SignInOAuth(c.Request().Context(), domain.Provider(c.Param("provider")), code)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authResponse{Token: res.Token, User: res.Identity})
}

// Session returns the caller's session as resolved by the Auth middleware.
//
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.SessionView
// @Failure      401  {object}  messageResponse
// @Router       /auth/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	view, err := ctxSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

func newState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func validState(c echo.Context) bool {
	state := c.QueryParam("state")
	if state == "" {
		return false
	}
	cookie, err := c.Cookie(stateCookieName)
	if err != nil {
		return false
	}
	return cookie.Value == state
}

func (h *AuthHandler) clearState(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
