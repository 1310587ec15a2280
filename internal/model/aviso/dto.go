package aviso

import (
	"time"

	"github.com/deppfellow/avisos-api/internal/validation"
)

// Messages returned to clients.
const (
	MsgTituloObrigatorio   = "O título é obrigatório."
	MsgTituloTamanho       = "O título deve ter no máximo 200 caracteres."
	MsgMensagemObrigatoria = "A mensagem é obrigatória."
	MsgMensagemTamanho     = "A mensagem deve ter no máximo 1000 caracteres."
	MsgIDInvalido          = "O ID do aviso deve ser maior que zero."
	MsgNaoEncontrado       = "Aviso não encontrado."
)

var (
	tituloMessages = map[string]string{
		"titulo.required": MsgTituloObrigatorio,
		"titulo.notblank": MsgTituloObrigatorio,
		"titulo.max":      MsgTituloTamanho,
	}
	mensagemMessages = map[string]string{
		"mensagem.required": MsgMensagemObrigatoria,
		"mensagem.notblank": MsgMensagemObrigatoria,
		"mensagem.max":      MsgMensagemTamanho,
	}
	idMessages = map[string]string{
		"id.gt":  MsgIDInvalido,
		"id.lte": MsgIDInvalido,
	}
)

func merge(sets ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, set := range sets {
		for k, v := range set {
			out[k] = v
		}
	}
	return out
}

// ------------------------------------------------------------
// Requests

// CreateAvisoPayload is the body of POST /avisos.
type CreateAvisoPayload struct {
	Titulo   string `json:"titulo" validate:"required,notblank,max=200"`
	Mensagem string `json:"mensagem" validate:"required,notblank,max=1000"`
}

func (p *CreateAvisoPayload) Validate() error {
	return validation.Struct(p)
}

func (p *CreateAvisoPayload) ValidationMessages() map[string]string {
	return merge(tituloMessages, mensagemMessages)
}

// GetAvisoPayload identifies one Aviso by its route id.
type GetAvisoPayload struct {
	ID int `param:"id" json:"-" validate:"gt=0,lte=2147483647"`
}

func (p *GetAvisoPayload) Validate() error {
	return validation.Struct(p)
}

func (p *GetAvisoPayload) ValidationMessages() map[string]string {
	return idMessages
}

// ListAvisosPayload carries no input; it exists so the list route goes
// through the same handler pipeline as the others.
type ListAvisosPayload struct{}

func (p *ListAvisosPayload) Validate() error {
	return nil
}

// UpdateAvisoPayload is the route id plus the body of PUT /avisos/:id.
// Only the message can change; an id or titulo in the body is ignored.
type UpdateAvisoPayload struct {
	ID       int    `param:"id" json:"-" validate:"gt=0,lte=2147483647"`
	Mensagem string `json:"mensagem" validate:"required,notblank,max=1000"`
}

func (p *UpdateAvisoPayload) Validate() error {
	return validation.Struct(p)
}

func (p *UpdateAvisoPayload) ValidationMessages() map[string]string {
	return merge(idMessages, mensagemMessages)
}

// DeleteAvisoPayload identifies the Aviso to soft-delete.
type DeleteAvisoPayload struct {
	ID int `param:"id" json:"-" validate:"gt=0,lte=2147483647"`
}

func (p *DeleteAvisoPayload) Validate() error {
	return validation.Struct(p)
}

func (p *DeleteAvisoPayload) ValidationMessages() map[string]string {
	return idMessages
}

// ------------------------------------------------------------
// Responses

// CreateAvisoResponse is returned by a successful create.
type CreateAvisoResponse struct {
	ID          int       `json:"Id"`
	Titulo      string    `json:"Titulo"`
	Mensagem    string    `json:"Mensagem"`
	DataCriacao time.Time `json:"DataCriacao"`
}

// AvisoResponse is the full projection used by get and list.
type AvisoResponse struct {
	ID              int        `json:"Id"`
	Titulo          string     `json:"Titulo"`
	Mensagem        string     `json:"Mensagem"`
	Ativo           bool       `json:"Ativo"`
	DataCriacao     time.Time  `json:"DataCriacao"`
	DataModificacao *time.Time `json:"DataModificacao"`
}

// UpdateAvisoResponse is returned by a successful update.
type UpdateAvisoResponse struct {
	ID              int        `json:"Id"`
	Titulo          string     `json:"Titulo"`
	Mensagem        string     `json:"Mensagem"`
	DataCriacao     time.Time  `json:"DataCriacao"`
	DataModificacao *time.Time `json:"DataModificacao"`
}

func ToCreateResponse(a *Aviso) *CreateAvisoResponse {
	return &CreateAvisoResponse{
		ID:          a.ID,
		Titulo:      a.Titulo,
		Mensagem:    a.Mensagem,
		DataCriacao: a.DataCriacao,
	}
}

func ToResponse(a *Aviso) *AvisoResponse {
	return &AvisoResponse{
		ID:              a.ID,
		Titulo:          a.Titulo,
		Mensagem:        a.Mensagem,
		Ativo:           a.Ativo,
		DataCriacao:     a.DataCriacao,
		DataModificacao: a.DataModificacao,
	}
}

// ToResponses keeps the order of avisos and never returns nil.
func ToResponses(avisos []*Aviso) []*AvisoResponse {
	out := make([]*AvisoResponse, 0, len(avisos))
	for _, a := range avisos {
		out = append(out, ToResponse(a))
	}
	return out
}

func ToUpdateResponse(a *Aviso) *UpdateAvisoResponse {
	return &UpdateAvisoResponse{
		ID:              a.ID,
		Titulo:          a.Titulo,
		Mensagem:        a.Mensagem,
		DataCriacao:     a.DataCriacao,
		DataModificacao: a.DataModificacao,
	}
}
