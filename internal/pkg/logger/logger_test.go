package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestContextHandler_LiftsRequestScopedValues(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LogConfig{Level: "info", Format: "json"}, &buf)

	actor := uuid.New()
	ctx := context.WithValue(context.Background(), ContextKeyRequestID, "req-1")
	ctx = context.WithValue(ctx, ContextKeyActorID, actor)
	ctx = context.WithValue(ctx, ContextKeyCenterID, uuid.Nil)

	l.InfoContext(ctx, "transfer recorded", slog.Int("quantity", 3))

	entry := decodeLine(t, &buf)
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, actor.String(), entry["actor_id"])
	assert.NotContains(t, entry, "center_id")
	assert.Equal(t, float64(3), entry["quantity"])
	assert.Equal(t, "INFO", entry["severity"])
}

func TestSanitizationHandler_RedactsSensitiveKeys(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LogConfig{Level: "debug", Format: "json"}, &buf)

	l.Debug("connecting", slog.String("db_password", "hunter2"), slog.String("host", "db"))

	entry := decodeLine(t, &buf)
	assert.Equal(t, "***REDACTED***", entry["db_password"])
	assert.Equal(t, "db", entry["host"])
}

func TestNewLogger_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LogConfig{Level: "warn", Format: "json"}, &buf)

	l.Info("dropped")
	assert.Zero(t, buf.Len())

	l.Warn("kept")
	assert.NotZero(t, buf.Len())
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LogConfig{Level: "info", Format: "json"}, &buf)

	ctx := WithLogger(context.Background(), l)
	ctx = context.WithValue(ctx, ContextKeyRequestID, "req-9")

	FromContext(ctx).Info("hello")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "req-9", entry["request_id"])
}

func TestSanitizationHandler_MasksEmbeddedSecrets(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    string
		notWant string
	}{
		{
			name:    "presigned_export_url",
			value:   "https://bucket.s3.amazonaws.com/exports/a.xlsx?X-Amz-Credential=AKIA123&X-Amz-Signature=deadbeef",
			want:    "X-Amz-Signature=***REDACTED***",
			notWant: "deadbeef",
		},
		{
			name:    "database_url",
			value:   "postgresql://fieldstock:hunter2@db:5432/fieldstock",
			want:    "postgresql://fieldstock:***REDACTED***@db",
			notWant: "hunter2",
		},
		{
			name:    "credential_pair",
			value:   "retrying with token=abc123",
			want:    "token=***REDACTED***",
			notWant: "abc123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := NewLogger(&LogConfig{Level: "info", Format: "json"}, &buf)

			l.Info("export", slog.String("detail", tt.value))

			entry := decodeLine(t, &buf)
			assert.Contains(t, entry["detail"], tt.want)
			assert.NotContains(t, entry["detail"], tt.notWant)
		})
	}
}

func TestSanitizationHandler_Groups(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LogConfig{Level: "info", Format: "json"}, &buf)

	l.With(slog.String("api_key", "k-1")).Info("configured",
		slog.Group("aws", slog.String("secret_access_key", "s-1"), slog.String("region", "eu-west-1")))

	entry := decodeLine(t, &buf)
	assert.Equal(t, "***REDACTED***", entry["api_key"])
	aws := entry["aws"].(map[string]any)
	assert.Equal(t, "***REDACTED***", aws["secret_access_key"])
	assert.Equal(t, "eu-west-1", aws["region"])
}

func TestPrettyTextHandler(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LogConfig{Level: "info", Format: "text"}, &buf)

	l.With(slog.String("service", "worker")).WithGroup("task").Info("done", slog.Int("rows", 3))

	out := buf.String()
	assert.Contains(t, out, "done")
	assert.Contains(t, out, "service=worker")
	assert.Contains(t, out, "task.rows=3")
}
