package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSecretAPI struct {
	secret *string
	err    error
	calls  int
}

func (f *fakeSecretAPI) GetSecretValue(_ context.Context, in *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &secretsmanager.GetSecretValueOutput{Name: in.SecretId, SecretString: f.secret}, nil
}

func TestAWSSecretsManager_GetSecrets(t *testing.T) {
	api := &fakeSecretAPI{secret: aws.String(`{"DB_PASSWORD":"s3cret","DB_PORT":6432}`)}
	sm := newAWSSecretsManager(api, "fieldstock/prod", discardLogger())

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	sm.now = func() time.Time { return now }

	got, err := sm.GetSecrets(context.Background(), []string{"DB_PASSWORD", "DB_PORT", "REDIS_PASSWORD"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"DB_PASSWORD": "s3cret", "DB_PORT": "6432"}, got)

	t.Run("served_from_cache", func(t *testing.T) {
		_, err := sm.GetSecrets(context.Background(), []string{"DB_PASSWORD"})
		require.NoError(t, err)
		assert.Equal(t, 1, api.calls)
	})

	t.Run("refetched_after_ttl", func(t *testing.T) {
		now = now.Add(6 * time.Minute)
		_, err := sm.GetSecrets(context.Background(), []string{"DB_PASSWORD"})
		require.NoError(t, err)
		assert.Equal(t, 2, api.calls)
	})
}

func TestAWSSecretsManager_Errors(t *testing.T) {
	tests := []struct {
		name string
		api  *fakeSecretAPI
	}{
		{name: "api_error", api: &fakeSecretAPI{err: errors.New("access denied")}},
		{name: "binary_secret", api: &fakeSecretAPI{}},
		{name: "not_json", api: &fakeSecretAPI{secret: aws.String("plain-password")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm := newAWSSecretsManager(tt.api, "fieldstock/prod", discardLogger())
			_, err := sm.GetSecrets(context.Background(), []string{"DB_PASSWORD"})
			assert.Error(t, err)
		})
	}
}

func TestApplySecrets_AWS(t *testing.T) {
	api := &fakeSecretAPI{secret: aws.String(`{"DB_PASSWORD":"db-pw","REDIS_PASSWORD":"redis-pw"}`)}
	cfg := validConfig()

	require.NoError(t, cfg.ApplySecrets(context.Background(), newAWSSecretsManager(api, "x", discardLogger())))
	assert.Equal(t, "db-pw", cfg.Database.Password)
	assert.Equal(t, "redis-pw", cfg.Redis.Password)
	assert.Equal(t, "redis-pw", cfg.Asynq.RedisPassword)
}
