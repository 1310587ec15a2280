package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/deppfellow/avisos-api/internal/config"
)

func jsonConfig(env, level string) *config.ObservabilityConfig {
	cfg := config.DefaultObservabilityConfig()
	cfg.Environment = env
	cfg.Logging.Level = level
	cfg.Logging.Format = "json"
	return cfg
}

func TestNewLoggerWithWriter_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerWithWriter(jsonConfig("production", "info"), &LoggerService{}, &buf)

	log.Debug().Msg("hidden")
	log.Info().Str("k", "v").Msg("visible")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "visible", entry["message"])
	assert.Equal(t, config.ServiceName, entry["service"])
	assert.Equal(t, "production", entry["environment"])
	assert.Equal(t, "v", entry["k"])
}

func TestNewLoggerWithWriter_LevelFromEnvironment(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerWithWriter(jsonConfig("local", ""), nil, &buf)
	assert.Equal(t, zerolog.DebugLevel, log.GetLevel())

	log = NewLoggerWithWriter(jsonConfig("production", ""), nil, &buf)
	assert.Equal(t, zerolog.InfoLevel, log.GetLevel())
}

func TestLoggerService_Disabled(t *testing.T) {
	service := NewLoggerService(config.DefaultObservabilityConfig())
	assert.Nil(t, service.GetApplication())
	service.Shutdown()

	var nilService *LoggerService
	assert.Nil(t, nilService.GetApplication())
}

func TestWithTraceContext_NilTransaction(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)
	log := WithTraceContext(base, nil)
	log.Info().Msg("x")
	assert.NotContains(t, buf.String(), "trace.id")
}

func TestGetPgxTraceLogLevel(t *testing.T) {
	assert.Equal(t, tracelog.LogLevelDebug, GetPgxTraceLogLevel(zerolog.DebugLevel))
	assert.Equal(t, tracelog.LogLevelInfo, GetPgxTraceLogLevel(zerolog.InfoLevel))
	assert.Equal(t, tracelog.LogLevelWarn, GetPgxTraceLogLevel(zerolog.WarnLevel))
	assert.Equal(t, tracelog.LogLevelError, GetPgxTraceLogLevel(zerolog.ErrorLevel))
	assert.Equal(t, tracelog.LogLevelNone, GetPgxTraceLogLevel(zerolog.Disabled))
}

func TestGormLogger_Trace(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf).Level(zerolog.DebugLevel)
	gl := NewGormLogger(base, 50*time.Millisecond)

	sql := func() (string, int64) { return "SELECT 1", 1 }

	gl.Trace(context.Background(), time.Now(), sql, errors.New("boom"))
	assert.Contains(t, buf.String(), "query failed")
	buf.Reset()

	gl.Trace(context.Background(), time.Now(), sql, gorm.ErrRecordNotFound)
	assert.NotContains(t, buf.String(), "query failed")
	buf.Reset()

	gl.Trace(context.Background(), time.Now().Add(-time.Second), sql, nil)
	assert.Contains(t, buf.String(), "slow query")
	buf.Reset()

	gl.LogMode(gormLogger.Silent).Trace(context.Background(), time.Now(), sql, errors.New("boom"))
	assert.Empty(t, buf.String())
}

func TestGormLogger_UsesContextLogger(t *testing.T) {
	var baseBuf, reqBuf bytes.Buffer
	gl := NewGormLogger(zerolog.New(&baseBuf).Level(zerolog.DebugLevel), 0)

	reqLogger := zerolog.New(&reqBuf).With().Str("request_id", "abc").Logger()
	ctx := reqLogger.WithContext(context.Background())

	gl.Trace(ctx, time.Now(), func() (string, int64) { return "SELECT 1", 1 }, nil)

	assert.Empty(t, baseBuf.String())
	assert.Contains(t, reqBuf.String(), `"request_id":"abc"`)
}
