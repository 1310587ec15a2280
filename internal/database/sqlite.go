package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/deppfellow/avisos-api/internal/config"
	loggerConfig "github.com/deppfellow/avisos-api/internal/logger"
)

// NewSQLite opens a gorm handle on the SQLite database at path.
//
// SQLite allows a single writer, so the pool is limited to one
// connection. This is also what keeps a ":memory:" database alive and
// shared across queries.
func NewSQLite(path string, logger *zerolog.Logger, slowThreshold time.Duration) (*Database, error) {
	gormDB, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         loggerConfig.NewGormLogger(*logger, slowThreshold),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC().Truncate(time.Microsecond)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	database := &Database{
		Driver: config.DriverSQLite,
		Gorm:   gormDB,
		log:    logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), DatabasePingTimeout*time.Second)
	defer cancel()
	if err := database.Ping(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info().Str("driver", database.Driver).Str("path", path).Msg("connected to the database")

	return database, nil
}
