package router

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/avisos-api/internal/handler"
	"github.com/deppfellow/avisos-api/static"
)

// registerSystemRoutes registers endpoints that are not part of the
// avisos API: health, the docs UI and its assets.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/status", h.Health.CheckHealth)

	// Assets are embedded in the binary, so the docs work from any
	// working directory.
	r.StaticFS("/static", static.FS)

	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)
}
