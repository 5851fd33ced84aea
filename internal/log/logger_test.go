package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"verbose": slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestNewHandlerFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Component: ComponentApp, Handler: NewHandler(&buf, "JSON", slog.LevelInfo)})
	logger.Debug("hidden")
	logger.Info("shown", FieldBudgetID, "budget-1")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "budget-1", entry[FieldBudgetID])
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	logger := FromContext(context.Background())
	require.NotNil(t, logger)
	assert.Equal(t, "unknown", logger.Component())
}

func TestComponentMiddleware(t *testing.T) {
	var got string
	h := ComponentMiddleware(ComponentHTTP)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context()).Component()
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	assert.Equal(t, ComponentHTTP, got)
}

func TestLogErrorFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Handler: NewHandler(&buf, "json", slog.LevelInfo)})

	NewStructuredLogger(logger).LogError(context.Background(), "save failed", errors.New("disk full"),
		ComponentStorage, OpUpdate, LogFields{FieldVersion: 3})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "disk full", entry[FieldError])
	assert.Equal(t, ComponentStorage, entry[FieldComponent])
	assert.Equal(t, OpUpdate, entry[FieldOperation])
	assert.EqualValues(t, 3, entry[FieldVersion])
}
