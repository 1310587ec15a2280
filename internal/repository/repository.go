// Package repository handles all interactions with the database.
//
// It contains the SQL (or gorm queries) that fetch and persist Avisos,
// abstracting storage away from the service layer. Only active rows are
// ever visible: every read filters on ativo, and every write is guarded
// by it.
package repository

import (
	"context"
	"errors"

	"github.com/deppfellow/avisos-api/internal/model/aviso"
)

// ErrAvisoNotFound is returned when no active Aviso has the requested id.
var ErrAvisoNotFound = errors.New("aviso not found")

// AvisoRepository persists Avisos.
type AvisoRepository interface {
	// Create inserts a and sets a.ID to the generated id.
	Create(ctx context.Context, a *aviso.Aviso) error

	// GetActiveByID returns the active Aviso with id, or ErrAvisoNotFound.
	GetActiveByID(ctx context.Context, id int) (*aviso.Aviso, error)

	// ListActive returns every active Aviso, newest first (ties by id,
	// highest first). The result is never nil.
	ListActive(ctx context.Context) ([]*aviso.Aviso, error)

	// Update writes the mutable columns (mensagem, ativo,
	// data_modificacao) of a still-active row. A row deactivated in the
	// meantime yields ErrAvisoNotFound.
	Update(ctx context.Context, a *aviso.Aviso) error

	// ExistsActive reports whether an active Aviso with id exists.
	ExistsActive(ctx context.Context, id int) (bool, error)
}
