// Package aviso holds the Aviso entity, its request payloads and the
// response projections returned by the API.
package aviso

import (
	"math"
	"time"
)

// Field limits shared by validation tags and the storage schema.
const (
	TituloMaxLength   = 200
	MensagemMaxLength = 1000

	// MaxID is the largest id a SERIAL (int4) column can hold.
	MaxID = math.MaxInt32
)

// Aviso is a notice. It is soft-deleted: Ativo=false hides it from every
// lookup and there is no way back.
type Aviso struct {
	ID              int        `db:"id"`
	Titulo          string     `db:"titulo"`
	Mensagem        string     `db:"mensagem"`
	Ativo           bool       `db:"ativo"`
	DataCriacao     time.Time  `db:"data_criacao"`
	DataModificacao *time.Time `db:"data_modificacao"`
}

// normalize stores timestamps in UTC at microsecond precision, the
// resolution of a PostgreSQL timestamptz.
func normalize(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// New builds an active Aviso created at now. The ID is assigned by the
// store.
func New(titulo, mensagem string, now time.Time) *Aviso {
	return &Aviso{
		Titulo:      titulo,
		Mensagem:    mensagem,
		Ativo:       true,
		DataCriacao: normalize(now),
	}
}

// MarkModified stamps DataModificacao. It never moves backwards, even if
// the clock does.
func (a *Aviso) MarkModified(now time.Time) {
	now = normalize(now)
	if a.DataModificacao != nil && now.Before(*a.DataModificacao) {
		return
	}
	a.DataModificacao = &now
}

// SetMensagem replaces the message and marks the Aviso modified.
func (a *Aviso) SetMensagem(mensagem string, now time.Time) {
	a.Mensagem = mensagem
	a.MarkModified(now)
}

// Deactivate soft-deletes the Aviso.
func (a *Aviso) Deactivate(now time.Time) {
	a.Ativo = false
	a.MarkModified(now)
}
