package logger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// GormLogger adapts zerolog to gorm's logger.Interface.
//
// Statements are logged through the request-scoped logger when one is in
// the context (see middleware.ContextEnhancer), otherwise through base.
// Record-not-found is never reported as an error: the repository turns it
// into a domain not-found.
type GormLogger struct {
	base          zerolog.Logger
	level         gormLogger.LogLevel
	slowThreshold time.Duration
}

// NewGormLogger returns a gorm logger at the level matching base's level.
func NewGormLogger(base zerolog.Logger, slowThreshold time.Duration) *GormLogger {
	return &GormLogger{
		base:          base.With().Str("component", "database").Logger(),
		level:         gormLevelFor(base.GetLevel()),
		slowThreshold: slowThreshold,
	}
}

func gormLevelFor(level zerolog.Level) gormLogger.LogLevel {
	switch {
	case level == zerolog.Disabled:
		return gormLogger.Silent
	case level <= zerolog.DebugLevel:
		return gormLogger.Info
	case level <= zerolog.WarnLevel:
		return gormLogger.Warn
	default:
		return gormLogger.Error
	}
}

// LogMode returns a copy of the logger at the given level.
func (l *GormLogger) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *GormLogger) from(ctx context.Context) *zerolog.Logger {
	if ctxLogger := zerolog.Ctx(ctx); ctxLogger.GetLevel() != zerolog.Disabled {
		return ctxLogger
	}
	return &l.base
}

func (l *GormLogger) Info(ctx context.Context, msg string, args ...any) {
	if l.level >= gormLogger.Info {
		l.from(ctx).Info().Msg(fmt.Sprintf(msg, args...))
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, args ...any) {
	if l.level >= gormLogger.Warn {
		l.from(ctx).Warn().Msg(fmt.Sprintf(msg, args...))
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, args ...any) {
	if l.level >= gormLogger.Error {
		l.from(ctx).Error().Msg(fmt.Sprintf(msg, args...))
	}
}

// Trace logs one executed statement: errors at error level, slow
// statements at warn, everything else at debug.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormLogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	log := l.from(ctx)

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= gormLogger.Error:
		sql, rows := fc()
		log.Error().Err(err).
			Dur("duration", elapsed).
			Int64("rows", rows).
			Str("sql", sql).
			Msg("query failed")
	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.level >= gormLogger.Warn:
		sql, rows := fc()
		log.Warn().
			Dur("duration", elapsed).
			Dur("threshold", l.slowThreshold).
			Int64("rows", rows).
			Str("sql", sql).
			Msg("slow query")
	case l.level >= gormLogger.Info:
		sql, rows := fc()
		log.Debug().
			Dur("duration", elapsed).
			Int64("rows", rows).
			Str("sql", sql).
			Msg("query")
	}
}
