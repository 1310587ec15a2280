package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	tern "github.com/jackc/tern/v2/migrate"
)

// Embedded at compile time so the binary carries its schema.
//
//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrations embed.FS

// Migrate brings the schema up to date for the opened driver.
//
//   - postgres: jackc/tern, version tracked in the schema_version table
//   - sqlite: the statements are idempotent and simply replayed in order
func (db *Database) Migrate(ctx context.Context) error {
	switch {
	case db.Pool != nil:
		return db.migratePostgres(ctx)
	case db.Gorm != nil:
		return db.migrateSQLite(ctx)
	default:
		return fmt.Errorf("migrate: %w", ErrUnknownDriver)
	}
}

func (db *Database) migratePostgres(ctx context.Context) error {
	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquiring connection for migrations: %w", err)
	}
	defer conn.Release()

	m, err := tern.NewMigrator(ctx, conn.Conn(), "schema_version")
	if err != nil {
		return fmt.Errorf("constructing database migrator: %w", err)
	}

	subtree, err := fs.Sub(migrations, "migrations/postgres")
	if err != nil {
		return fmt.Errorf("retrieving database migrations subtree: %w", err)
	}

	if err := m.LoadMigrations(subtree); err != nil {
		return fmt.Errorf("loading database migrations: %w", err)
	}

	from, err := m.GetCurrentVersion(ctx)
	if err != nil {
		return fmt.Errorf("retrieving current database migration version: %w", err)
	}

	if err := m.Migrate(ctx); err != nil {
		return fmt.Errorf("applying database migrations: %w", err)
	}

	if from == int32(len(m.Migrations)) {
		db.log.Info().Msgf("database schema up to date, version %d", len(m.Migrations))
	} else {
		db.log.Info().Msgf("migrated database schema, from %d to %d", from, len(m.Migrations))
	}
	return nil
}

func (db *Database) migrateSQLite(ctx context.Context) error {
	files, err := fs.Glob(migrations, "migrations/sqlite/*.sql")
	if err != nil {
		return fmt.Errorf("listing sqlite migrations: %w", err)
	}
	sort.Strings(files)

	for _, name := range files {
		body, err := migrations.ReadFile(name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if err := db.Gorm.WithContext(ctx).Exec(string(body)).Error; err != nil {
			return fmt.Errorf("applying migration %s: %w", name, err)
		}
	}

	db.log.Info().Msgf("sqlite schema applied, %d migration(s)", len(files))
	return nil
}
