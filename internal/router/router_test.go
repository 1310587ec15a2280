package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/avisos-api/internal/config"
	"github.com/deppfellow/avisos-api/internal/database"
	"github.com/deppfellow/avisos-api/internal/handler"
	"github.com/deppfellow/avisos-api/internal/logger"
	"github.com/deppfellow/avisos-api/internal/model/aviso"
	"github.com/deppfellow/avisos-api/internal/repository"
	"github.com/deppfellow/avisos-api/internal/server"
	"github.com/deppfellow/avisos-api/internal/service"
	"github.com/deppfellow/avisos-api/internal/validation"
)

func testConfig() *config.Config {
	return &config.Config{
		Primary: config.Primary{Env: "test"},
		Server: config.ServerConfig{
			Port:               "0",
			ReadTimeout:        5,
			WriteTimeout:       5,
			IdleTimeout:        5,
			CORSAllowedOrigins: []string{"*"},
		},
		Database: config.DatabaseConfig{
			Driver:     config.DriverSQLite,
			SQLitePath: ":memory:",
		},
		Observability: config.DefaultObservabilityConfig(),
	}
}

func newTestRouter(t *testing.T) (*echo.Echo, *server.Server) {
	t.Helper()

	cfg := testConfig()
	log := zerolog.Nop()
	loggerService := logger.NewLoggerService(cfg.Observability)

	db, err := database.NewSQLite(cfg.Database.SQLitePath, &log, 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate(context.Background()))

	srv := server.NewWithDatabase(cfg, &log, loggerService, db)
	services, err := service.NewService(srv, repository.NewRepositories(srv))
	require.NoError(t, err)

	return NewRouter(srv, handler.NewHandlers(srv, services)), srv
}

func do(t *testing.T, e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

type envelope[T any] struct {
	Dados T `json:"Dados"`
}

type errorBody struct {
	Codigo    string   `json:"Codigo"`
	Status    int      `json:"Status"`
	Mensagens []string `json:"Mensagens"`
	Erros     []struct {
		Field string `json:"field"`
		Error string `json:"error"`
	} `json:"Erros"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestAvisoLifecycle(t *testing.T) {
	e, _ := newTestRouter(t)

	rec := do(t, e, http.MethodPost, "/v1/avisos", `{"titulo":"A","mensagem":"B"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decode[envelope[aviso.CreateAvisoResponse]](t, rec).Dados
	require.Positive(t, created.ID)
	assert.Equal(t, "A", created.Titulo)
	assert.Equal(t, "B", created.Mensagem)

	path := "/v1/avisos/" + strconv.Itoa(created.ID)

	rec = do(t, e, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[envelope[aviso.AvisoResponse]](t, rec).Dados
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "A", got.Titulo)
	assert.Equal(t, "B", got.Mensagem)
	assert.True(t, got.Ativo)
	assert.True(t, created.DataCriacao.Equal(got.DataCriacao))

	rec = do(t, e, http.MethodPut, path, `{"mensagem":"C"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[envelope[aviso.UpdateAvisoResponse]](t, rec).Dados
	assert.Equal(t, "C", updated.Mensagem)
	assert.Equal(t, "A", updated.Titulo)
	assert.NotNil(t, updated.DataModificacao)

	rec = do(t, e, http.MethodDelete, path, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decode[envelope[bool]](t, rec).Dados)

	rec = do(t, e, http.MethodGet, path, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	notFound := decode[errorBody](t, rec)
	assert.Equal(t, "NOT_FOUND", notFound.Codigo)
	assert.Equal(t, []string{aviso.MsgNaoEncontrado}, notFound.Mensagens)

	rec = do(t, e, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListAvisos(t *testing.T) {
	e, _ := newTestRouter(t)

	rec := do(t, e, http.MethodGet, "/v1/avisos", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	for _, titulo := range []string{"um", "dois", "tres"} {
		rec = do(t, e, http.MethodPost, "/v1/avisos", `{"titulo":"`+titulo+`","mensagem":"m"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec = do(t, e, http.MethodDelete, "/v1/avisos/2", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, e, http.MethodGet, "/api/v1/avisos", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	list := decode[envelope[[]aviso.AvisoResponse]](t, rec).Dados
	require.Len(t, list, 2)
	assert.Equal(t, "tres", list[0].Titulo)
	assert.Equal(t, "um", list[1].Titulo)
}

func TestCreateAviso_Validation(t *testing.T) {
	e, _ := newTestRouter(t)

	tests := []struct {
		name     string
		body     string
		status   int
		messages []string
	}{
		{
			name:     "missing fields",
			body:     `{}`,
			status:   http.StatusBadRequest,
			messages: []string{aviso.MsgTituloObrigatorio, aviso.MsgMensagemObrigatoria},
		},
		{
			name:     "blank titulo",
			body:     `{"titulo":"   ","mensagem":"B"}`,
			status:   http.StatusBadRequest,
			messages: []string{aviso.MsgTituloObrigatorio},
		},
		{
			name:     "titulo too long",
			body:     `{"titulo":"` + strings.Repeat("a", aviso.TituloMaxLength+1) + `","mensagem":"B"}`,
			status:   http.StatusBadRequest,
			messages: []string{aviso.MsgTituloTamanho},
		},
		{
			name:     "mensagem too long",
			body:     `{"titulo":"A","mensagem":"` + strings.Repeat("m", aviso.MensagemMaxLength+1) + `"}`,
			status:   http.StatusBadRequest,
			messages: []string{aviso.MsgMensagemTamanho},
		},
		{
			name:   "limits are inclusive",
			body:   `{"titulo":"` + strings.Repeat("a", aviso.TituloMaxLength) + `","mensagem":"` + strings.Repeat("m", aviso.MensagemMaxLength) + `"}`,
			status: http.StatusOK,
		},
		{
			name:   "limits count characters, not bytes",
			body:   `{"titulo":"` + strings.Repeat("é", aviso.TituloMaxLength) + `","mensagem":"` + strings.Repeat("ç", aviso.MensagemMaxLength) + `"}`,
			status: http.StatusOK,
		},
		{
			name:     "multi-byte titulo too long",
			body:     `{"titulo":"` + strings.Repeat("é", aviso.TituloMaxLength+1) + `","mensagem":"B"}`,
			status:   http.StatusBadRequest,
			messages: []string{aviso.MsgTituloTamanho},
		},
		{
			name:     "multi-byte mensagem too long",
			body:     `{"titulo":"A","mensagem":"` + strings.Repeat("ç", aviso.MensagemMaxLength+1) + `"}`,
			status:   http.StatusBadRequest,
			messages: []string{aviso.MsgMensagemTamanho},
		},
		{
			name:     "malformed json",
			body:     `{"titulo":`,
			status:   http.StatusBadRequest,
			messages: []string{validation.MessageInvalidBody},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, e, http.MethodPost, "/v1/avisos", tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.messages == nil {
				return
			}
			body := decode[errorBody](t, rec)
			assert.Equal(t, tt.messages, body.Mensagens)
		})
	}
}

func TestCreateAviso_FieldErrors(t *testing.T) {
	e, _ := newTestRouter(t)

	rec := do(t, e, http.MethodPost, "/v1/avisos", `{"mensagem":"B"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decode[errorBody](t, rec)
	require.Len(t, body.Erros, 1)
	assert.Equal(t, "titulo", body.Erros[0].Field)
	assert.Equal(t, aviso.MsgTituloObrigatorio, body.Erros[0].Error)
}

func TestUpdateAviso_IgnoresTitulo(t *testing.T) {
	e, _ := newTestRouter(t)

	rec := do(t, e, http.MethodPost, "/v1/avisos", `{"titulo":"A","mensagem":"B"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, e, http.MethodPut, "/v1/avisos/1", `{"id":99,"titulo":"X","mensagem":"C"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[envelope[aviso.UpdateAvisoResponse]](t, rec).Dados
	assert.Equal(t, 1, updated.ID)
	assert.Equal(t, "A", updated.Titulo)

	rec = do(t, e, http.MethodPut, "/v1/avisos/1", `{"mensagem":""}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{aviso.MsgMensagemObrigatoria}, decode[errorBody](t, rec).Mensagens)

	rec = do(t, e, http.MethodPut, "/v1/avisos/404", `{"mensagem":"C"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInvalidIDs(t *testing.T) {
	e, _ := newTestRouter(t)

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		for _, id := range []string{"0", "-1", "abc"} {
			rec := do(t, e, method, "/v1/avisos/"+id, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code, "%s %s", method, id)
		}
	}

	rec := do(t, e, http.MethodGet, "/v1/avisos/0", "")
	assert.Equal(t, []string{aviso.MsgIDInvalido}, decode[errorBody](t, rec).Mensagens)
}

func TestBodyCannotRetargetRouteID(t *testing.T) {
	e, _ := newTestRouter(t)

	for _, titulo := range []string{"um", "dois"} {
		rec := do(t, e, http.MethodPost, "/v1/avisos", `{"titulo":"`+titulo+`","mensagem":"m"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec := do(t, e, http.MethodDelete, "/v1/avisos/1", `{"id":2}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, http.StatusNotFound, do(t, e, http.MethodGet, "/v1/avisos/1", "").Code)
	assert.Equal(t, http.StatusOK, do(t, e, http.MethodGet, "/v1/avisos/2", "").Code)

	rec = do(t, e, http.MethodGet, "/v1/avisos/2", `{"id":0}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 2, decode[envelope[aviso.AvisoResponse]](t, rec).Dados.ID)
}

func TestIDOutOfStoreRange(t *testing.T) {
	e, _ := newTestRouter(t)

	tooBig := strconv.Itoa(aviso.MaxID + 1)
	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		rec := do(t, e, method, "/v1/avisos/"+tooBig, "")
		require.Equal(t, http.StatusBadRequest, rec.Code, method)
		assert.Equal(t, []string{aviso.MsgIDInvalido}, decode[errorBody](t, rec).Mensagens)
	}

	rec := do(t, e, http.MethodPut, "/v1/avisos/"+tooBig, `{"mensagem":"C"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, e, http.MethodGet, "/v1/avisos/"+strconv.Itoa(aviso.MaxID), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRoutingErrors(t *testing.T) {
	e, _ := newTestRouter(t)

	rec := do(t, e, http.MethodPatch, "/v1/avisos/1", `{"mensagem":"C"}`)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "METHOD_NOT_ALLOWED", decode[errorBody](t, rec).Codigo)

	for _, path := range []string{"/avisos", "/api/avisos"} {
		rec = do(t, e, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

func TestRequestIDHeader(t *testing.T) {
	e, _ := newTestRouter(t)

	rec := do(t, e, http.MethodGet, "/v1/avisos", "")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/v1/avisos", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestStatus(t *testing.T) {
	e, srv := newTestRouter(t)

	rec := do(t, e, http.MethodGet, "/status", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "healthy", decode[map[string]any](t, rec)["status"])

	require.NoError(t, srv.DB.Close())

	rec = do(t, e, http.MethodGet, "/status", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unhealthy", decode[map[string]any](t, rec)["status"])
}

func TestDocs(t *testing.T) {
	e, _ := newTestRouter(t)

	rec := do(t, e, http.MethodGet, "/docs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/html")

	rec = do(t, e, http.MethodGet, "/static/openapi.json", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"/avisos/{id}"`)
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Server.RateLimit = 1
	var logs bytes.Buffer
	log := zerolog.New(&logs)

	db, err := database.NewSQLite(":memory:", &log, 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate(context.Background()))

	srv := server.NewWithDatabase(cfg, &log, logger.NewLoggerService(cfg.Observability), db)
	services, err := service.NewService(srv, repository.NewRepositories(srv))
	require.NoError(t, err)
	e := NewRouter(srv, handler.NewHandlers(srv, services))

	assert.Equal(t, http.StatusNoContent, do(t, e, http.MethodGet, "/v1/avisos", "").Code)

	rec := do(t, e, http.MethodGet, "/v1/avisos", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Rejections carry a request id and are logged through the request logger.
	requestID := rec.Header().Get("X-Request-ID")
	require.NotEmpty(t, requestID)
	assert.Contains(t, logs.String(), "rate limit exceeded")
	assert.Contains(t, logs.String(), `"request_id":"`+requestID+`"`)

	// /status is never limited.
	assert.Equal(t, http.StatusOK, do(t, e, http.MethodGet, "/status", "").Code)
}
