package repository

import (
	"github.com/deppfellow/avisos-api/internal/database"
	"github.com/deppfellow/avisos-api/internal/server"
)

// Repositories is a container for all repository instances.
type Repositories struct {
	Aviso AvisoRepository
}

// NewRepositories builds the repositories on top of the opened store.
func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		Aviso: NewAvisoRepository(s.DB),
	}
}

// NewAvisoRepository picks the implementation matching the driver db was
// opened with.
func NewAvisoRepository(db *database.Database) AvisoRepository {
	if db.Pool != nil {
		return NewPgAvisoRepository(db.Pool)
	}
	return NewGormAvisoRepository(db.Gorm)
}
