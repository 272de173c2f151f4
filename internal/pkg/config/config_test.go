package config

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")

	cfg, err := Load(discardLogger())
	require.NoError(t, err)

	assert.Equal(t, "fieldstock-api", cfg.App.Name)
	assert.Equal(t, "fieldstock", cfg.Database.Name)
	assert.Equal(t, 10*time.Second, cfg.Stock.LockTTL)
	assert.Equal(t, 100, cfg.Stock.MaxBatchItems)
	assert.Equal(t, map[string]int{"critical": 6, "default": 3, "low": 1}, cfg.Asynq.Queues)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "staging")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("STOCK_LOCK_TTL", "3s")
	t.Setenv("STOCK_MAX_BATCH_ITEMS", "25")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load(discardLogger())
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 3*time.Second, cfg.Stock.LockTTL)
	assert.Equal(t, 25, cfg.Stock.MaxBatchItems)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Security.AllowedOrigins)
}

func validConfig() *Config {
	return &Config{
		App:      AppConfig{Name: "fieldstock-api", Environment: "test"},
		Database: DatabaseConfig{Host: "localhost", Port: "5432", User: "u", Name: "db", MaxConnections: 5, MinConnections: 1},
		Redis:    RedisConfig{PoolSize: 5},
		Server:   ServerConfig{Port: "8080"},
		Stock:    StockConfig{LockTTL: time.Second, MaxBatchItems: 10, DefaultPageSize: 20, MaxPageSize: 100},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing_database_host", mutate: func(c *Config) { c.Database.Host = "" }, wantErr: "Database.Host"},
		{name: "placeholder_counts_as_missing", mutate: func(c *Config) { c.Database.User = "MISSING_USER" }, wantErr: "Database.User"},
		{name: "connection_bounds", mutate: func(c *Config) { c.Database.MinConnections = 10 }, wantErr: "max_connections"},
		{name: "batch_limit", mutate: func(c *Config) { c.Stock.MaxBatchItems = 0 }, wantErr: "max_batch_items"},
		{name: "page_size_above_max", mutate: func(c *Config) { c.Stock.DefaultPageSize = 500 }, wantErr: "default_page_size"},
		{
			name: "production_requires_ssl",
			mutate: func(c *Config) {
				c.App.Environment = "production"
				c.Database.Password = "secret"
				c.Database.SSLMode = "disable"
			},
			wantErr: "SSL",
		},
		{
			name: "production_rejects_wildcard_origin",
			mutate: func(c *Config) {
				c.App.Environment = "production"
				c.Database.Password = "secret"
				c.Database.SSLMode = "require"
				c.Security.SecureHeaders = true
				c.Security.AllowedOrigins = []string{"*"}
			},
			wantErr: "wildcard",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestApplySecrets(t *testing.T) {
	t.Setenv("DB_PASSWORD", "from-secrets")
	cfg := validConfig()

	require.NoError(t, cfg.ApplySecrets(context.Background(), NewEnvSecretsManager()))
	assert.Equal(t, "from-secrets", cfg.Database.Password)
	assert.Empty(t, cfg.Redis.Password)
}

func TestGetDatabaseURL(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Password = "pw"
	cfg.Database.SSLMode = "disable"
	assert.Equal(t, "postgresql://u:pw@localhost:5432/db?sslmode=disable", cfg.GetDatabaseURL())
}
