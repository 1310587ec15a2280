package handler

import (
	"github.com/deppfellow/avisos-api/internal/server"
	"github.com/deppfellow/avisos-api/internal/service"
)

// Handlers is a container that groups all HTTP handlers, so router setup
// receives one object instead of many.
type Handlers struct {
	Health  *HealthHandler  // Health serves /status.
	OpenAPI *OpenAPIHandler // OpenAPI serves the documentation UI.
	Aviso   *AvisoHandler   // Aviso serves the /avisos resource.
}

// NewHandlers constructs the handler container.
func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(s),
		OpenAPI: NewOpenAPIHandler(s),
		Aviso:   NewAvisoHandler(s, services.Aviso),
	}
}
