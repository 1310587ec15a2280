package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/avisos-api/internal/middleware"
	"github.com/deppfellow/avisos-api/internal/server"
)

// HealthHandler exposes /status so load balancers and uptime monitors can
// verify the service is alive and its store is reachable.
type HealthHandler struct {
	Handler
}

// NewHealthHandler constructs a HealthHandler with access to shared app dependencies.
func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
	}
}

// healthCheck probes one dependency.
type healthCheck func(ctx context.Context) error

func (h *HealthHandler) checks() map[string]healthCheck {
	known := map[string]healthCheck{
		"database": h.server.DB.Ping,
	}

	checks := make(map[string]healthCheck)
	for _, name := range h.server.Config.Observability.HealthChecks.Checks {
		if check, ok := known[name]; ok {
			checks[name] = check
		}
	}
	return checks
}

func (h *HealthHandler) recordHealthCheckError(event map[string]interface{}) {
	if app := h.server.LoggerService.GetApplication(); app != nil {
		app.RecordCustomEvent("HealthCheckError", event)
	}
}

// CheckHealth returns system health status and dependency checks.
//
// Response includes:
// - overall status (healthy/unhealthy)
// - timestamp (UTC)
// - environment (from config)
// - checks map (database)
//
// It returns:
// - 200 OK if all checks pass (or checks are disabled)
// - 503 Service Unavailable if any check fails
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()
	cfg := h.server.Config.Observability.HealthChecks

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	checks := make(map[string]interface{})
	response := map[string]interface{}{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": h.server.Config.Primary.Env,
		"checks":      checks,
	}

	isHealthy := true

	if cfg.Enabled {
		for name, check := range h.checks() {
			ctx, cancel := context.WithTimeout(c.Request().Context(), cfg.Timeout)
			checkStart := time.Now()
			err := check(ctx)
			cancel()
			elapsed := time.Since(checkStart)

			if err != nil {
				isHealthy = false
				checks[name] = map[string]interface{}{
					"status":        "unhealthy",
					"response_time": elapsed.String(),
					"error":         err.Error(),
				}

				logger.Error().
					Err(err).
					Str("check", name).
					Dur("response_time", elapsed).
					Msg("health check failed")

				h.recordHealthCheckError(map[string]interface{}{
					"check_type":       name,
					"operation":        "health_check",
					"error_type":       name + "_unhealthy",
					"response_time_ms": elapsed.Milliseconds(),
					"error_message":    err.Error(),
				})
				continue
			}

			checks[name] = map[string]interface{}{
				"status":        "healthy",
				"response_time": elapsed.String(),
			}

			logger.Debug().
				Str("check", name).
				Dur("response_time", elapsed).
				Msg("health check passed")
		}
	}

	if !isHealthy {
		response["status"] = "unhealthy"

		logger.Warn().
			Dur("total_duration", time.Since(start)).
			Msg("service unhealthy")

		h.recordHealthCheckError(map[string]interface{}{
			"check_type":        "overall",
			"operation":         "health_check",
			"error_type":        "overall_unhealthy",
			"total_duration_ms": time.Since(start).Milliseconds(),
		})

		return c.JSON(http.StatusServiceUnavailable, response)
	}

	if err := c.JSON(http.StatusOK, response); err != nil {
		logger.Error().Err(err).Msg("failed to write JSON response")
		return fmt.Errorf("failed to write JSON response: %w", err)
	}

	return nil
}
