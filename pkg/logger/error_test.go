package logger

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/marketlens/aptos-indexer/pkg/logger/slogx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordKeys(rec slog.Record) map[string]bool {
	keys := make(map[string]bool)
	rec.Attrs(func(attr slog.Attr) bool {
		keys[attr.Key] = true
		return true
	})
	return keys
}

func TestMiddlewareErrorAddsVerboseAttrs(t *testing.T) {
	rec := slog.NewRecord(time.Now(), slog.LevelError, "query failed", 0)
	rec.AddAttrs(slogx.Error(errors.New("connection refused")))

	var got slog.Record
	next := func(ctx context.Context, r slog.Record) error {
		got = r
		return nil
	}

	err := middlewareError()(next)(context.Background(), rec)
	require.NoError(t, err)

	keys := recordKeys(got)
	assert.True(t, keys[slogx.ErrorKey])
	assert.True(t, keys["error_verbose"])
	// errors from cockroachdb/errors carry a stack trace
	assert.True(t, keys["stack_trace"])
}

func TestMiddlewareErrorIgnoresNonErrorAttrs(t *testing.T) {
	rec := slog.NewRecord(time.Now(), slog.LevelInfo, "indexed batch", 0)
	rec.AddAttrs(slog.Int64("version", 42))

	var got slog.Record
	next := func(ctx context.Context, r slog.Record) error {
		got = r
		return nil
	}

	err := middlewareError()(next)(context.Background(), rec)
	require.NoError(t, err)

	keys := recordKeys(got)
	assert.False(t, keys["error_verbose"])
	assert.False(t, keys["stack_trace"])
}

type captureHandler struct {
	records []slog.Record
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, rec slog.Record) error {
	h.records = append(h.records, rec)
	return nil
}

func (h *captureHandler) WithGroup(string) slog.Handler      { return h }
func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func TestChainHandlersAppliesMiddleware(t *testing.T) {
	capture := &captureHandler{}
	handler := newChainHandlers(capture, middlewareError())
	log := slog.New(handler)

	log.Error("persist failed", slogx.Error(errors.New("broken pipe")))

	require.Len(t, capture.records, 1)
	keys := recordKeys(capture.records[0])
	assert.True(t, keys["error_verbose"])
}
