// internal/pkg/config/secrets.go
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// SecretsManager resolves credentials kept outside the environment.
// Missing keys are left out of the result.
type SecretsManager interface {
	GetSecrets(ctx context.Context, keys []string) (map[string]string, error)
}

var (
	_ SecretsManager = (*AWSSecretsManager)(nil)
	_ SecretsManager = EnvSecretsManager{}
)

// secretValueAPI is the part of the Secrets Manager client in use
type secretValueAPI interface {
	GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// AWSSecretsManager reads one JSON secret and caches its fields
type AWSSecretsManager struct {
	api        secretValueAPI
	secretName string
	ttl        time.Duration
	now        func() time.Time
	logger     *slog.Logger

	mu        sync.Mutex
	values    map[string]string
	fetchedAt time.Time
}

func NewAWSSecretsManager(region, secretName string, logger *slog.Logger) (*AWSSecretsManager, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return newAWSSecretsManager(secretsmanager.NewFromConfig(cfg), secretName, logger), nil
}

func newAWSSecretsManager(api secretValueAPI, secretName string, logger *slog.Logger) *AWSSecretsManager {
	return &AWSSecretsManager{
		api:        api,
		secretName: secretName,
		ttl:        5 * time.Minute,
		now:        time.Now,
		logger:     logger.With(slog.String("component", "secrets")),
	}
}

func (sm *AWSSecretsManager) GetSecrets(ctx context.Context, keys []string) (map[string]string, error) {
	values, err := sm.load(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(keys))
	for _, key := range keys {
		if v, ok := values[key]; ok {
			out[key] = v
			continue
		}
		sm.logger.WarnContext(ctx, "secret key not found",
			slog.String("secret_name", sm.secretName),
			slog.String("key", key))
	}
	return out, nil
}

// load returns the cached fields, refetching once the ttl has passed
func (sm *AWSSecretsManager) load(ctx context.Context) (map[string]string, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.values != nil && sm.now().Sub(sm.fetchedAt) < sm.ttl {
		return sm.values, nil
	}

	sm.logger.InfoContext(ctx, "fetching secrets", slog.String("secret_name", sm.secretName))
	res, err := sm.api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId:     aws.String(sm.secretName),
		VersionStage: aws.String("AWSCURRENT"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get secret value: %w", err)
	}
	if res.SecretString == nil {
		return nil, fmt.Errorf("secret %s has no string value", sm.secretName)
	}

	values, err := parseSecretJSON(*res.SecretString)
	if err != nil {
		return nil, err
	}
	sm.values = values
	sm.fetchedAt = sm.now()
	return values, nil
}

// parseSecretJSON flattens a JSON object secret. Non-string scalars such as
// ports are kept in their JSON form.
func parseSecretJSON(raw string) (map[string]string, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("failed to parse secret JSON: %w", err)
	}

	out := make(map[string]string, len(fields))
	for k, v := range fields {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			out[k] = s
			continue
		}
		out[k] = string(v)
	}
	return out, nil
}

// EnvSecretsManager reads secrets from the process environment
type EnvSecretsManager struct{}

func NewEnvSecretsManager() EnvSecretsManager {
	return EnvSecretsManager{}
}

func (EnvSecretsManager) GetSecrets(_ context.Context, keys []string) (map[string]string, error) {
	out := make(map[string]string)
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			out[key] = v
		}
	}
	return out, nil
}
