package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryExecMode(t *testing.T) {
	tests := []struct {
		in   string
		want pgx.QueryExecMode
	}{
		{"", pgx.QueryExecModeCacheDescribe},
		{"describe", pgx.QueryExecModeCacheDescribe},
		{"prepare", pgx.QueryExecModeCacheStatement},
		{"exec", pgx.QueryExecModeExec},
		{"simple", pgx.QueryExecModeSimpleProtocol},
	}
	for _, tt := range tests {
		got, err := queryExecMode(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := queryExecMode("bogus")
	assert.Error(t, err)
}

func TestBuildPoolConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StatementCacheMode = "exec"

	pc, err := buildPoolConfig(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, pgx.QueryExecModeExec, pc.ConnConfig.DefaultQueryExecMode)
	assert.Equal(t, applicationName, pc.ConnConfig.RuntimeParams["application_name"])
	assert.Equal(t, int32(25), pc.MaxConns)
	assert.Nil(t, pc.ConnConfig.Tracer)
}

func TestIsRetryableTx(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"serialization_failure", &pgconn.PgError{Code: pgSerializationFailure}, true},
		{"deadlock", fmt.Errorf("save ledger: %w", &pgconn.PgError{Code: pgDeadlockDetected}), true},
		{"unique_violation", &pgconn.PgError{Code: pgUniqueViolation}, false},
		{"plain_error", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableTx(tt.err))
		})
	}
}
