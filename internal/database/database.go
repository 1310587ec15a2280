// Package database opens the store behind the avisos table.
//
// Two drivers are supported, selected by database.driver:
//   - postgres: a pgx connection pool (pgxpool) with query tracing
//     (pgx tracelog locally, nrpgx5 when New Relic is enabled)
//   - sqlite: a gorm handle on a SQLite file (or ":memory:"), used for
//     local runs and tests
//
// Schema changes live in embedded SQL files, one directory per driver.
package database

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	pgxzero "github.com/jackc/pgx-zerolog"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/newrelic/go-agent/v3/integrations/nrpgx5"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/deppfellow/avisos-api/internal/config"
	loggerConfig "github.com/deppfellow/avisos-api/internal/logger"
)

// Database wraps whichever handle the configured driver opened.
//
// Exactly one of Pool (postgres) or Gorm (sqlite) is set; Driver says which.
type Database struct {
	Driver string
	Pool   *pgxpool.Pool
	Gorm   *gorm.DB
	log    *zerolog.Logger
}

// multiTracer chains several pgx query tracers.
//
// pgx has a single Tracer slot in ConnConfig; this lets New Relic and the
// local SQL logger both observe every query.
type multiTracer struct {
	tracers []pgx.QueryTracer
}

func (mt *multiTracer) TraceQueryStart(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	for _, tracer := range mt.tracers {
		ctx = tracer.TraceQueryStart(ctx, conn, data)
	}
	return ctx
}

func (mt *multiTracer) TraceQueryEnd(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryEndData) {
	for _, tracer := range mt.tracers {
		tracer.TraceQueryEnd(ctx, conn, data)
	}
}

// DatabasePingTimeout defines the number of seconds to wait for a ping
// before considering the database "unreachable".
const DatabasePingTimeout = 10

// ErrUnknownDriver is returned for a database.driver value New cannot open.
var ErrUnknownDriver = errors.New("unknown database driver")

// New opens the store selected by cfg.Database.Driver and pings it.
//
// loggerService may be nil; when it carries a New Relic application the
// postgres pool is instrumented with nrpgx5.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) (*Database, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		return newPostgres(cfg, logger, loggerService)
	case config.DriverSQLite:
		return NewSQLite(cfg.Database.SQLitePath, logger, cfg.Observability.Logging.SlowQueryThreshold)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Database.Driver)
	}
}

// DSN builds the postgres URL from the config. The password is escaped
// so characters like ':' or '@' cannot break the URL.
func DSN(cfg config.DatabaseConfig) string {
	hostPort := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))

	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s",
		url.QueryEscape(cfg.User),
		url.QueryEscape(cfg.Password),
		hostPort,
		cfg.Name,
		cfg.SSLMode,
	)
}

func newPostgres(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) (*Database, error) {
	pgxPoolConfig, err := pgxpool.ParseConfig(DSN(cfg.Database))
	if err != nil {
		return nil, fmt.Errorf("failed to parse pgx pool config: %w", err)
	}

	pgxPoolConfig.MaxConns = int32(cfg.Database.MaxOpenConns)
	pgxPoolConfig.MaxConnLifetime = time.Duration(cfg.Database.ConnMaxLifetime) * time.Second
	pgxPoolConfig.MaxConnIdleTime = time.Duration(cfg.Database.ConnMaxIdleTime) * time.Second

	var tracers []pgx.QueryTracer

	if loggerService.GetApplication() != nil {
		tracers = append(tracers, nrpgx5.NewTracer())
	}

	// SQL statement logging is noisy, so only in local.
	if cfg.Primary.Env == "local" {
		globalLevel := logger.GetLevel()
		tracers = append(tracers, &tracelog.TraceLog{
			Logger:   pgxzero.NewLogger(loggerConfig.NewPgxLogger(globalLevel)),
			LogLevel: loggerConfig.GetPgxTraceLogLevel(globalLevel),
		})
	}

	switch len(tracers) {
	case 0:
	case 1:
		pgxPoolConfig.ConnConfig.Tracer = tracers[0]
	default:
		pgxPoolConfig.ConnConfig.Tracer = &multiTracer{tracers: tracers}
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), pgxPoolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	database := &Database{
		Driver: config.DriverPostgres,
		Pool:   pool,
		log:    logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), DatabasePingTimeout*time.Second)
	defer cancel()
	if err = database.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info().Str("driver", database.Driver).Msg("connected to the database")

	return database, nil
}

// FromPool wraps an already opened postgres pool.
func FromPool(pool *pgxpool.Pool, logger *zerolog.Logger) *Database {
	return &Database{Driver: config.DriverPostgres, Pool: pool, log: logger}
}

// Ping checks the store is reachable.
func (db *Database) Ping(ctx context.Context) error {
	switch {
	case db.Pool != nil:
		return db.Pool.Ping(ctx)
	case db.Gorm != nil:
		sqlDB, err := db.Gorm.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	default:
		return errors.New("database not initialized")
	}
}

// Close releases the underlying connections.
func (db *Database) Close() error {
	db.log.Info().Str("driver", db.Driver).Msg("closing database connection")

	if db.Pool != nil {
		db.Pool.Close()
	}
	if db.Gorm != nil {
		sqlDB, err := db.Gorm.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}
