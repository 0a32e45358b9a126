package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sessionguard/auth-api/internal/api/middleware"
	"github.com/sessionguard/auth-api/internal/core/domain"
	"github.com/sessionguard/auth-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	catalog     ports.MessageCatalog
}

func NewAuthHandler(authService ports.AuthService, catalog ports.MessageCatalog) *AuthHandler {
	return &AuthHandler{authService: authService, catalog: catalog}
}

type credentialsRequest struct {
	Email    string `json:"email" validate:"required,email,min=3"`
	Password string `json:"password" validate:"required,min=8,max=256"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// bindCredentials decodes and validates the request body. Malformed bodies are
// reported as validation failures.
func bindCredentials(c echo.Context) (credentialsRequest, error) {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return req, domain.Fail(domain.ErrValidationFailed, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return req, err
	}
	return req, nil
}

// Register creates a new principal. It does not log the principal in.
//
// @Summary      Register a new principal
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      credentialsRequest  true  "Registration details"
// @Success      201   {object}  Envelope{data=domain.AuthenticatedIdentity}
// @Failure      400   {object}  Envelope
// @Failure      500   {object}  Envelope
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	req, err := bindCredentials(c)
	if err != nil {
		return err
	}

	principal, err := h.authService.Register(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, principal.Identity())
}

// Login authenticates a principal and returns a bearer token. Any token the
// principal held before stops working.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      credentialsRequest  true  "Login credentials"
// @Success      200   {object}  Envelope{data=loginResponse}
// @Failure      400   {object}  Envelope
// @Failure      500   {object}  Envelope
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	req, err := bindCredentials(c)
	if err != nil {
		return err
	}

	token, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, loginResponse{Token: token})
}

// Logout ends the session of the bearer token, if any. It always succeeds.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Envelope{data=string}
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if token, ok := middleware.BearerToken(c.Request().Header.Get(echo.HeaderAuthorization)); ok {
		h.authService.Logout(c.Request().Context(), token)
	}
	return respond(c, http.StatusOK, h.catalog.Lookup(domain.MsgLoggedOut, ctxLocale(c)))
}

// Me returns the identity of the current request.
//
// @Summary      Current identity
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Envelope{data=domain.AuthenticatedIdentity}
// @Failure      401  {object}  Envelope
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, id)
}
