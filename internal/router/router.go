// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and defines the API route groups,
// mapping specific paths to their corresponding handlers
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/avisos-api/internal/handler"
	"github.com/deppfellow/avisos-api/internal/middleware"
	"github.com/deppfellow/avisos-api/internal/server"
)

// apiPrefixes are the mount points of the versioned API. /api/v1 is kept
// for clients of the previous deployment.
var apiPrefixes = []string{"/v1", "/api/v1"}

// NewRouter builds the echo instance with the global middleware chain,
// the system routes and the avisos API.
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	// Order matters: the logger in ContextEnhancer needs the request id
	// and the New Relic transaction. The limiter sits inside the request
	// logger so rejections are logged with the request id, and Recover
	// must also sit inside it so panics are logged as 500s.
	router.Use(
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.RateLimit.Limit(),
		middlewares.Global.Recover(),
	)

	registerSystemRoutes(router, h)

	for _, prefix := range apiPrefixes {
		registerAvisoRoutes(router.Group(prefix), h)
	}

	return router
}

func registerAvisoRoutes(g *echo.Group, h *handler.Handlers) {
	avisos := g.Group("/avisos")

	avisos.GET("", h.Aviso.ListAvisos)
	avisos.POST("", h.Aviso.CreateAviso)
	avisos.GET("/:id", h.Aviso.GetAviso)
	avisos.PUT("/:id", h.Aviso.UpdateAviso)
	avisos.DELETE("/:id", h.Aviso.DeleteAviso)
}
