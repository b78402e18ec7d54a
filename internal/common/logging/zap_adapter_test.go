package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZapAdapter(t *testing.T) {
	t.Run("basic logging", func(t *testing.T) {
		var buf bytes.Buffer
		config := LogConfig{
			Level:      DebugLevel,
			Output:     &buf,
			TimeFormat: time.RFC3339,
		}

		logger, err := NewZapLogger(config)
		require.NoError(t, err)

		// Test all log levels
		logger.Debug("debug message", Field{"key", "value"})
		logger.Info("info message", Field{"count", 42})
		logger.Warn("warn message", Field{"enabled", true})
		logger.Error("error message", errors.New("test error"), Field{"level", "l2"})

		output := buf.String()
		assert.Contains(t, output, "DEBUG")
		assert.Contains(t, output, "debug message")
		assert.Contains(t, output, "INFO")
		assert.Contains(t, output, "info message")
		assert.Contains(t, output, "WARN")
		assert.Contains(t, output, "warn message")
		assert.Contains(t, output, "ERROR")
		assert.Contains(t, output, "error message")
		assert.Contains(t, output, "test error")
	})

	t.Run("with fields", func(t *testing.T) {
		var buf bytes.Buffer
		config := LogConfig{
			Level:  InfoLevel,
			Output: &buf,
		}

		logger, err := NewZapLogger(config)
		require.NoError(t, err)

		// Create logger with persistent fields
		logger = logger.WithFields(
			Field{"component", "cache-manager"},
			Field{"strategy", "financial"},
		)

		logger.Info("test message", Field{"key", "fin:123"})

		output := buf.String()
		assert.Contains(t, output, "component")
		assert.Contains(t, output, "cache-manager")
		assert.Contains(t, output, "strategy")
		assert.Contains(t, output, "financial")
		assert.Contains(t, output, "key")
		assert.Contains(t, output, "fin:123")
	})

	t.Run("log level filtering", func(t *testing.T) {
		var buf bytes.Buffer
		config := LogConfig{
			Level:  ErrorLevel,
			Output: &buf,
		}

		logger, err := NewZapLogger(config)
		require.NoError(t, err)

		logger.Debug("not logged")
		logger.Info("not logged")
		logger.Warn("not logged")
		logger.Error("only this", nil)

		output := buf.String()
		assert.NotContains(t, output, "not logged")
		assert.Contains(t, output, "only this")
	})

	t.Run("named logger prefix", func(t *testing.T) {
		var buf bytes.Buffer
		config := LogConfig{
			Level:  InfoLevel,
			Output: &buf,
			Prefix: "cache",
		}

		logger, err := NewZapLogger(config)
		require.NoError(t, err)
		logger.Info("prefixed message")

		output := buf.String()
		assert.Contains(t, output, "cache")
		assert.Contains(t, output, "prefixed message")
	})

	t.Run("error with nil error", func(t *testing.T) {
		var buf bytes.Buffer
		config := LogConfig{
			Level:  InfoLevel,
			Output: &buf,
		}

		logger, err := NewZapLogger(config)
		require.NoError(t, err)
		logger.Error("nil error message", nil)

		output := buf.String()
		assert.Contains(t, output, "nil error message")
		assert.Equal(t, 1, strings.Count(output, "\n"))
	})

	t.Run("sync", func(t *testing.T) {
		var buf bytes.Buffer
		config := LogConfig{
			Level:  InfoLevel,
			Output: &buf,
		}

		logger, err := NewZapLogger(config)
		require.NoError(t, err)

		adapter, ok := logger.(*ZapAdapter)
		require.True(t, ok)
		assert.NoError(t, adapter.Sync())
	})
}

func TestTypedFieldConstructors(t *testing.T) {
	now := time.Now()
	err := errors.New("boom")

	tests := []struct {
		name  string
		field Field
		key   string
		value interface{}
	}{
		{"String", String("k", "v"), "k", "v"},
		{"Int", Int("n", 7), "n", 7},
		{"Int64", Int64("n64", int64(9)), "n64", int64(9)},
		{"Bool", Bool("b", true), "b", true},
		{"Float64", Float64("f", 1.5), "f", 1.5},
		{"Duration", Duration("d", time.Second), "d", time.Second},
		{"Time", Time("t", now), "t", now},
		{"Any", Any("a", []int{1}), "a", []int{1}},
		{"Strings", Strings("s", []string{"x"}), "s", []string{"x"}},
		{"Err", Err(err), "error", err},
		{"NamedError", NamedError("cause", err), "cause", err},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.key, tt.field.Key)
			assert.Equal(t, tt.value, tt.field.Value)
		})
	}
}
