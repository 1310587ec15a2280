package aviso

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/avisos-api/internal/validation"
)

func TestNew(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	now := time.Date(2024, 5, 1, 10, 0, 0, 123456789, loc)

	a := New("Manutenção", "Sistema fora do ar às 22h", now)

	assert.Zero(t, a.ID)
	assert.True(t, a.Ativo)
	assert.Nil(t, a.DataModificacao)
	assert.Equal(t, time.UTC, a.DataCriacao.Location())
	assert.Equal(t, 123456000, a.DataCriacao.Nanosecond())
	assert.True(t, a.DataCriacao.Equal(now.Truncate(time.Microsecond)))
}

func TestMarkModified_Monotonic(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	a := New("t", "m", base)

	a.MarkModified(base.Add(time.Hour))
	require.NotNil(t, a.DataModificacao)
	assert.Equal(t, base.Add(time.Hour), *a.DataModificacao)

	// A clock going backwards does not rewind the stamp.
	a.MarkModified(base.Add(time.Minute))
	assert.Equal(t, base.Add(time.Hour), *a.DataModificacao)

	a.MarkModified(base.Add(2 * time.Hour))
	assert.Equal(t, base.Add(2*time.Hour), *a.DataModificacao)
}

func TestSetMensagem(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	a := New("t", "m", base)

	a.SetMensagem("nova", base.Add(time.Second))

	assert.Equal(t, "nova", a.Mensagem)
	assert.Equal(t, "t", a.Titulo)
	assert.Equal(t, base, a.DataCriacao)
	require.NotNil(t, a.DataModificacao)
	assert.Equal(t, base.Add(time.Second), *a.DataModificacao)
}

func TestDeactivate(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	a := New("t", "m", base)

	a.Deactivate(base.Add(time.Second))

	assert.False(t, a.Ativo)
	require.NotNil(t, a.DataModificacao)
}

func messagesOf(t *testing.T, p interface {
	Validate() error
	ValidationMessages() map[string]string
}) []string {
	t.Helper()
	err := p.Validate()
	if err == nil {
		return nil
	}
	var out []string
	for _, fe := range validation.ExtractFieldErrors(err, p) {
		out = append(out, fe.Error)
	}
	return out
}

func TestCreateAvisoPayload_Validate(t *testing.T) {
	tests := []struct {
		name    string
		payload CreateAvisoPayload
		want    []string
	}{
		{name: "valid", payload: CreateAvisoPayload{Titulo: "A", Mensagem: "B"}},
		{
			name:    "at limits",
			payload: CreateAvisoPayload{Titulo: strings.Repeat("a", 200), Mensagem: strings.Repeat("b", 1000)},
		},
		{
			name:    "multibyte at limit",
			payload: CreateAvisoPayload{Titulo: strings.Repeat("é", 200), Mensagem: "B"},
		},
		{
			name:    "both missing",
			payload: CreateAvisoPayload{},
			want:    []string{MsgTituloObrigatorio, MsgMensagemObrigatoria},
		},
		{
			name:    "blank titulo",
			payload: CreateAvisoPayload{Titulo: "   ", Mensagem: "B"},
			want:    []string{MsgTituloObrigatorio},
		},
		{
			name:    "titulo too long",
			payload: CreateAvisoPayload{Titulo: strings.Repeat("a", 201), Mensagem: "B"},
			want:    []string{MsgTituloTamanho},
		},
		{
			name:    "mensagem too long",
			payload: CreateAvisoPayload{Titulo: "A", Mensagem: strings.Repeat("b", 1001)},
			want:    []string{MsgMensagemTamanho},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.payload
			assert.Equal(t, tt.want, messagesOf(t, &p))
		})
	}
}

func TestUpdateAvisoPayload_Validate(t *testing.T) {
	assert.Nil(t, messagesOf(t, &UpdateAvisoPayload{ID: 1, Mensagem: "C"}))
	assert.Equal(t,
		[]string{MsgIDInvalido, MsgMensagemObrigatoria},
		messagesOf(t, &UpdateAvisoPayload{ID: 0, Mensagem: ""}),
	)
}

func TestIDPayloads_Validate(t *testing.T) {
	assert.Equal(t, []string{MsgIDInvalido}, messagesOf(t, &GetAvisoPayload{ID: -1}))
	assert.Equal(t, []string{MsgIDInvalido}, messagesOf(t, &DeleteAvisoPayload{ID: 0}))
	assert.Nil(t, messagesOf(t, &DeleteAvisoPayload{ID: 3}))

	// Ids beyond int4 cannot exist in the table.
	assert.Nil(t, messagesOf(t, &GetAvisoPayload{ID: MaxID}))
	assert.Equal(t, []string{MsgIDInvalido}, messagesOf(t, &GetAvisoPayload{ID: MaxID + 1}))
	assert.Equal(t, []string{MsgIDInvalido}, messagesOf(t, &DeleteAvisoPayload{ID: MaxID + 1}))
	assert.Equal(t, []string{MsgIDInvalido}, messagesOf(t, &UpdateAvisoPayload{ID: MaxID + 1, Mensagem: "C"}))
	assert.NoError(t, (&ListAvisosPayload{}).Validate())
}

func TestMappers(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	a := New("t", "m", base)
	a.ID = 4

	created := ToCreateResponse(a)
	assert.Equal(t, &CreateAvisoResponse{ID: 4, Titulo: "t", Mensagem: "m", DataCriacao: base}, created)

	full := ToResponse(a)
	assert.True(t, full.Ativo)
	assert.Nil(t, full.DataModificacao)

	a.SetMensagem("n", base.Add(time.Minute))
	updated := ToUpdateResponse(a)
	assert.Equal(t, "n", updated.Mensagem)
	require.NotNil(t, updated.DataModificacao)

	assert.NotNil(t, ToResponses(nil))
	assert.Len(t, ToResponses([]*Aviso{a, a}), 2)
}
