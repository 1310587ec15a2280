package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/avisos-api/internal/model/aviso"
	"github.com/deppfellow/avisos-api/internal/server"
	"github.com/deppfellow/avisos-api/internal/service"
)

// AvisoHandler serves the /avisos resource.
type AvisoHandler struct {
	Handler
	avisoService *service.AvisoService
}

func NewAvisoHandler(s *server.Server, avisoService *service.AvisoService) *AvisoHandler {
	return &AvisoHandler{
		Handler:      NewHandler(s),
		avisoService: avisoService,
	}
}

// CreateAviso handles POST /avisos. A successful create answers 200.
func (h *AvisoHandler) CreateAviso(c echo.Context) error {
	return Handle(
		h.Handler,
		func(c echo.Context, payload *aviso.CreateAvisoPayload) (*aviso.CreateAvisoResponse, error) {
			return h.avisoService.CreateAviso(c.Request().Context(), payload)
		},
		http.StatusOK,
		&aviso.CreateAvisoPayload{},
	)(c)
}

// GetAviso handles GET /avisos/:id.
func (h *AvisoHandler) GetAviso(c echo.Context) error {
	return Handle(
		h.Handler,
		func(c echo.Context, payload *aviso.GetAvisoPayload) (*aviso.AvisoResponse, error) {
			return h.avisoService.GetAviso(c.Request().Context(), payload)
		},
		http.StatusOK,
		&aviso.GetAvisoPayload{},
	)(c)
}

// ListAvisos handles GET /avisos. No active avisos is a 204.
func (h *AvisoHandler) ListAvisos(c echo.Context) error {
	return HandleCollection(
		h.Handler,
		func(c echo.Context, payload *aviso.ListAvisosPayload) ([]*aviso.AvisoResponse, error) {
			return h.avisoService.ListAvisos(c.Request().Context(), payload)
		},
		http.StatusOK,
		&aviso.ListAvisosPayload{},
	)(c)
}

// UpdateAviso handles PUT /avisos/:id.
func (h *AvisoHandler) UpdateAviso(c echo.Context) error {
	return Handle(
		h.Handler,
		func(c echo.Context, payload *aviso.UpdateAvisoPayload) (*aviso.UpdateAvisoResponse, error) {
			return h.avisoService.UpdateAviso(c.Request().Context(), payload)
		},
		http.StatusOK,
		&aviso.UpdateAvisoPayload{},
	)(c)
}

// DeleteAviso handles DELETE /avisos/:id and answers {"Dados": true}.
func (h *AvisoHandler) DeleteAviso(c echo.Context) error {
	return Handle(
		h.Handler,
		func(c echo.Context, payload *aviso.DeleteAvisoPayload) (bool, error) {
			return h.avisoService.DeleteAviso(c.Request().Context(), payload)
		},
		http.StatusOK,
		&aviso.DeleteAvisoPayload{},
	)(c)
}
