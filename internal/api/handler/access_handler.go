package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sessionguard/auth-api/internal/core/domain"
	"github.com/sessionguard/auth-api/internal/core/ports"
)

// AccessHandler serves the /test routes used to check the role table. Access
// control is applied by the router.
type AccessHandler struct {
	catalog ports.MessageCatalog
}

func NewAccessHandler(catalog ports.MessageCatalog) *AccessHandler {
	return &AccessHandler{catalog: catalog}
}

// @Summary  Public endpoint
// @Tags     test
// @Produce  json
// @Success  200  {object}  Envelope{data=string}
// @Router   /test [get]
func (h *AccessHandler) Public(c echo.Context) error { return h.greet(c, domain.MsgAccessPublic) }

// @Summary   User endpoint
// @Tags      test
// @Produce   json
// @Security  BearerAuth
// @Success   200  {object}  Envelope{data=string}
// @Failure   401  {object}  Envelope
// @Router    /test/user [get]
func (h *AccessHandler) User(c echo.Context) error { return h.greet(c, domain.MsgAccessUser) }

// @Summary   Manager endpoint
// @Tags      test
// @Produce   json
// @Security  BearerAuth
// @Success   200  {object}  Envelope{data=string}
// @Failure   401  {object}  Envelope
// @Failure   403  {object}  Envelope
// @Router    /test/manager [get]
func (h *AccessHandler) Manager(c echo.Context) error { return h.greet(c, domain.MsgAccessManager) }

// @Summary   Admin endpoint
// @Tags      test
// @Produce   json
// @Security  BearerAuth
// @Success   200  {object}  Envelope{data=string}
// @Failure   401  {object}  Envelope
// @Failure   403  {object}  Envelope
// @Router    /test/admin [get]
func (h *AccessHandler) Admin(c echo.Context) error { return h.greet(c, domain.MsgAccessAdmin) }

func (h *AccessHandler) greet(c echo.Context, code string) error {
	return respond(c, http.StatusOK, h.catalog.Lookup(code, ctxLocale(c)))
}
