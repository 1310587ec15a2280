// Package service contains the business logic.
//
// It sits between the handler and repository layers.
// It receives validated data from the handler, performs
// business operations, and calls repository methods to interact
// with the data
package service

import (
	"time"

	"github.com/deppfellow/avisos-api/internal/repository"
	"github.com/deppfellow/avisos-api/internal/server"
)

type Services struct {
	Aviso *AvisoService
}

func NewService(s *server.Server, repos *repository.Repositories) (*Services, error) {
	return &Services{
		Aviso: NewAvisoService(repos.Aviso, time.Now),
	}, nil
}
