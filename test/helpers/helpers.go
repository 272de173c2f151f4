// test/helpers/helpers.go
package helpers

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/fieldstock-be/internal/adapters/db"
	"github.com/ammerola/fieldstock-be/internal/core/domain"
	"github.com/ammerola/fieldstock-be/internal/pkg/config"
)

const (
	postgresImage    = "postgres"
	postgresTag      = "16-alpine"
	testDatabaseName = "fieldstock_test"
	containerExpiry  = 10 * time.Minute
)

// stockTables lists every table the schema creates, children first
var stockTables = []string{
	"repair_transfers",
	"faulty_stock",
	"entity_stock_usages",
	"stock_usages",
	"stock_ledgers",
	"resellers",
	"products",
	"centers",
}

// TestDB is a migrated Postgres running in a throwaway container
type TestDB struct {
	Database *db.Database
	PgxPool  *pgxpool.Pool
}

// TestRedis is an in-memory Redis and a client pointed at it
type TestRedis struct {
	Client *redis.Client
	Server *miniredis.Miniredis
}

// TestLogger logs errors only, or everything under -v
func TestLogger() *slog.Logger {
	level := slog.LevelError
	if testing.Verbose() {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

// SetupTestDB starts Postgres with dockertest, applies the embedded schema
// and registers cleanup of both the pool and the container.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	cfg := startPostgres(t)
	logger := TestLogger()

	pool, err := dockertest.NewPool("")
	require.NoError(t, err)

	var database *db.Database
	require.NoError(t, pool.Retry(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
		defer cancel()
		d, err := db.NewDatabase(ctx, cfg, logger)
		if err != nil {
			return err
		}
		database = d
		return nil
	}), "postgres never became ready")
	t.Cleanup(database.Close)

	dsn := fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)
	require.NoError(t, db.RunMigrationsWithRetry(context.Background(), &db.MigrationConfig{DatabaseURL: dsn}, logger, 3))

	return &TestDB{Database: database, PgxPool: database.Pool()}
}

func startPostgres(t *testing.T) *db.Config {
	t.Helper()

	pool, err := dockertest.NewPool("")
	require.NoError(t, err, "docker is not reachable")

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: postgresImage,
		Tag:        postgresTag,
		Env: []string{
			"POSTGRES_USER=test",
			"POSTGRES_PASSWORD=test",
			"POSTGRES_DB=" + testDatabaseName,
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err, "could not start postgres")
	require.NoError(t, resource.Expire(uint(containerExpiry.Seconds())))

	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("failed to purge postgres container: %v", err)
		}
	})

	return &db.Config{
		Host:               "localhost",
		Port:               resource.GetPort("5432/tcp"),
		User:               "test",
		Password:           "test",
		Database:           testDatabaseName,
		SSLMode:            "disable",
		MaxConnections:     5,
		MinConnections:     1,
		MaxConnLifetime:    time.Hour,
		MaxConnIdleTime:    30 * time.Minute,
		HealthCheckPeriod:  time.Minute,
		ConnectTimeout:     10 * time.Second,
		StatementCacheMode: "describe",
		EnableQueryLogging: testing.Verbose(),
	}
}

// SetupTestRedis starts miniredis for the lifetime of the test
func SetupTestRedis(t *testing.T) *TestRedis {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return &TestRedis{Client: client, Server: mr}
}

// LoadTestConfig returns the configuration handlers and health checks are
// built with in tests
func LoadTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:        "fieldstock-test",
			Environment: "test",
			Version:     "test",
			LogLevel:    "debug",
			LogFormat:   "text",
			Debug:       true,
		},
		Database: config.DatabaseConfig{
			Host:           "localhost",
			Port:           "5432",
			User:           "test",
			Password:       "test",
			Name:           testDatabaseName,
			SSLMode:        "disable",
			MaxConnections: 10,
			MinConnections: 2,
		},
		Redis: config.RedisConfig{
			Host:     "localhost",
			Port:     "6379",
			TTL:      time.Hour,
			PoolSize: 10,
		},
		Security: config.SecurityConfig{
			AllowedOrigins:  []string{"*"},
			RequestIDHeader: "X-Request-ID",
		},
		Server: config.ServerConfig{
			Host:         "localhost",
			Port:         "8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Stock: config.StockConfig{
			LockTTL:         time.Second,
			ReportCacheTTL:  time.Minute,
			MaxBatchItems:   50,
			DefaultPageSize: 20,
			MaxPageSize:     100,
			ExportMaxRows:   1000,
		},
	}
}

// NewTestProduct creates an enabled product
func NewTestProduct(serialized bool, overrides ...func(*domain.Product)) *domain.Product {
	p := &domain.Product{
		ID:         uuid.New(),
		SKU:        "SKU-" + uuid.NewString()[:8],
		Name:       "ONT Router",
		Serialized: serialized,
		Enabled:    true,
	}
	for _, o := range overrides {
		o(p)
	}
	return p
}

// NewTestCenter creates an active center of the given type
func NewTestCenter(kind domain.CenterType) *domain.Center {
	return &domain.Center{
		ID:     uuid.New(),
		Name:   fmt.Sprintf("%s center %s", kind, uuid.NewString()[:4]),
		Type:   kind,
		Active: true,
	}
}

// NewCenterLedger returns a center ledger holding quantity units as opening
// stock. serials, when given, must have length quantity.
func NewCenterLedger(t *testing.T, centerID, productID uuid.UUID, quantity int, serials ...string) *domain.StockLedger {
	t.Helper()

	now := time.Now().UTC()
	l := domain.NewStockLedger(domain.LedgerCenter, centerID, centerID, productID, now)
	units := make([]domain.SerialUnit, 0, len(serials))
	for _, sn := range serials {
		units = append(units, domain.NewSerialUnit(sn, centerID, domain.SourceOpening))
	}
	require.NoError(t, l.Restock(quantity, units, domain.SourceOpening, uuid.Nil, "seed", "opening stock", now))
	return l
}

// TruncateAllTables empties the schema between tests
func TruncateAllTables(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(), "TRUNCATE TABLE "+strings.Join(stockTables, ", ")+" RESTART IDENTITY CASCADE")
	require.NoError(t, err, "failed to truncate tables")
}
