// internal/adapters/db/migrations.go
package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// ErrDirtySchema is returned when a previous run left the schema half applied
// and ForceDirty is off. It is not retried.
var ErrDirtySchema = errors.New("schema is dirty")

const (
	defaultMigrationsTable  = "schema_migrations"
	defaultMigrationsSchema = "public"
	migrationPingTimeout    = 5 * time.Second
)

// MigrationConfig holds migration configuration
type MigrationConfig struct {
	DatabaseURL string
	// SourcePath overrides the embedded schema with a directory on disk
	SourcePath       string
	TableName        string
	SchemaName       string
	ForceDirty       bool
	StatementTimeout time.Duration
}

func (c *MigrationConfig) withDefaults() MigrationConfig {
	out := *c
	if out.TableName == "" {
		out.TableName = defaultMigrationsTable
	}
	if out.SchemaName == "" {
		out.SchemaName = defaultMigrationsSchema
	}
	if out.StatementTimeout <= 0 {
		out.StatementTimeout = 10 * time.Minute
	}
	return out
}

// Migrator applies the stock schema
type Migrator struct {
	migrate *migrate.Migrate
	config  MigrationConfig
	logger  *slog.Logger
	db      *sql.DB
}

// NewMigrator opens a dedicated connection and prepares the schema source
func NewMigrator(config *MigrationConfig, logger *slog.Logger) (*Migrator, error) {
	if config == nil {
		return nil, errors.New("migration config is required")
	}
	cfg := config.withDefaults()

	conn, err := openMigrationDB(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	driver, err := postgres.WithInstance(conn, &postgres.Config{
		MigrationsTable:  cfg.TableName,
		SchemaName:       cfg.SchemaName,
		StatementTimeout: cfg.StatementTimeout,
	})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}

	sourceName, src, err := migrationSource(cfg.SourcePath)
	if err != nil {
		conn.Close()
		return nil, err
	}

	m, err := migrate.NewWithInstance(sourceName, src, "postgres", driver)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create migration instance: %w", err)
	}

	return &Migrator{
		migrate: m,
		config:  cfg,
		logger:  logger.With(slog.String("component", "migrator"), slog.String("source", sourceName)),
		db:      conn,
	}, nil
}

func openMigrationDB(url string) (*sql.DB, error) {
	conn, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	conn.SetMaxOpenConns(2)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), migrationPingTimeout)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return conn, nil
}

// migrationSource reads from disk when a path is configured, otherwise from
// the schema compiled into the binary.
func migrationSource(path string) (string, source.Driver, error) {
	if path != "" {
		src, err := source.Open("file://" + path)
		if err != nil {
			return "", nil, fmt.Errorf("failed to open migrations at %s: %w", path, err)
		}
		return "file", src, nil
	}
	src, err := iofs.New(embeddedMigrations, "migrations")
	if err != nil {
		return "", nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	return "iofs", src, nil
}

// Up applies every pending migration
func (m *Migrator) Up(ctx context.Context) error {
	version, dirty, err := m.migrate.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if dirty {
		if !m.config.ForceDirty {
			return fmt.Errorf("version %d: %w", version, ErrDirtySchema)
		}
		m.logger.WarnContext(ctx, "forcing dirty schema version", slog.Uint64("version", uint64(version)))
		if err := m.migrate.Force(int(version)); err != nil {
			return fmt.Errorf("failed to force version %d: %w", version, err)
		}
	}

	err = m.migrate.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		m.logger.InfoContext(ctx, "schema up to date", slog.Uint64("version", uint64(version)))
		return nil
	case err != nil:
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	if current, _, err := m.migrate.Version(); err == nil {
		m.logger.InfoContext(ctx, "migrations applied",
			slog.Uint64("from", uint64(version)),
			slog.Uint64("to", uint64(current)))
	}
	return nil
}

// Down rolls back every migration. The seeder's -reset flag uses it on
// development databases.
func (m *Migrator) Down(ctx context.Context) error {
	m.logger.WarnContext(ctx, "rolling back all migrations")

	if err := m.migrate.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to roll back migrations: %w", err)
	}
	return nil
}

// MigrationStatus is the version table as seen after a run
type MigrationStatus struct {
	CurrentVersion uint               `json:"currentVersion"`
	IsDirty        bool               `json:"isDirty"`
	Applied        []AppliedMigration `json:"applied"`
}

// AppliedMigration is one row of the version table
type AppliedMigration struct {
	Version uint `json:"version"`
	Dirty   bool `json:"dirty"`
}

func (m *Migrator) Status(ctx context.Context) (*MigrationStatus, error) {
	version, dirty, err := m.migrate.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return nil, fmt.Errorf("failed to read schema version: %w", err)
	}

	applied, err := appliedMigrations(ctx, m.db, m.config.SchemaName, m.config.TableName)
	if err != nil {
		return nil, err
	}
	return &MigrationStatus{CurrentVersion: version, IsDirty: dirty, Applied: applied}, nil
}

func appliedMigrations(ctx context.Context, conn *sql.DB, schema, table string) ([]AppliedMigration, error) {
	rows, err := conn.QueryContext(ctx, fmt.Sprintf(`SELECT version, dirty FROM %s.%s ORDER BY version ASC`, schema, table))
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	applied := []AppliedMigration{}
	for rows.Next() {
		var a AppliedMigration
		if err := rows.Scan(&a.Version, &a.Dirty); err != nil {
			return nil, fmt.Errorf("failed to scan migration: %w", err)
		}
		applied = append(applied, a)
	}
	return applied, rows.Err()
}

// Close releases the source and the dedicated connection
func (m *Migrator) Close() error {
	if m.migrate == nil {
		return nil
	}
	srcErr, dbErr := m.migrate.Close()
	return errors.Join(srcErr, dbErr)
}

// RunMigrationsWithRetry applies migrations, retrying connection and apply
// failures with a linear backoff. A dirty schema fails immediately.
func RunMigrationsWithRetry(ctx context.Context, config *MigrationConfig, logger *slog.Logger, maxRetries int) error {
	if maxRetries < 1 {
		maxRetries = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if attempt > 1 {
			wait := time.Duration(attempt-1) * 2 * time.Second
			logger.InfoContext(ctx, "retrying migrations",
				slog.Int("attempt", attempt),
				slog.Duration("wait", wait))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}

		lastErr = migrateOnce(ctx, config, logger)
		if lastErr == nil {
			return nil
		}
		if errors.Is(lastErr, ErrDirtySchema) {
			return lastErr
		}
		logger.ErrorContext(ctx, "migration attempt failed",
			slog.Int("attempt", attempt),
			slog.String("error", lastErr.Error()))
	}

	return fmt.Errorf("migrations failed after %d attempts: %w", maxRetries, lastErr)
}

func migrateOnce(ctx context.Context, config *MigrationConfig, logger *slog.Logger) error {
	migrator, err := NewMigrator(config, logger)
	if err != nil {
		return err
	}
	upErr := migrator.Up(ctx)
	if closeErr := migrator.Close(); closeErr != nil {
		logger.WarnContext(ctx, "failed to close migrator", slog.String("error", closeErr.Error()))
	}
	return upErr
}
