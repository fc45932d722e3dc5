package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	prev := GlobalLogger
	GlobalLogger = &Logger{Logger: slog.New(slog.NewJSONHandler(buf, nil))}
	t.Cleanup(func() { GlobalLogger = prev })
	return buf
}

func TestWithCommentCorrelation(t *testing.T) {
	ctx := WithCommentCorrelation(context.Background(), 42)
	assert.Equal(t, "42", ExtractCorrelationID(ctx))
	assert.Empty(t, ExtractCorrelationID(context.Background()))
}

func TestLogAsyncOperationError_IncludesCorrelation(t *testing.T) {
	buf := captureLogs(t)
	ctx := WithCommentCorrelation(context.Background(), 7)

	LogAsyncOperationError(ctx, "provider_callback", errors.New("boom"), map[string]interface{}{
		"request_id": "req-1",
	})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "async operation failed", entry["msg"])
	assert.Equal(t, "7", entry["correlation_id"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "req-1", entry["request_id"])
}

func TestRepoLogger_Disabled(t *testing.T) {
	buf := captureLogs(t)
	Config.EnableRepoLogging = false
	t.Cleanup(func() { Config.EnableRepoLogging = true })

	NewRepoLogger("comments").LogCreate(context.Background(), map[string]interface{}{"id": 1})
	assert.Zero(t, buf.Len())
}
