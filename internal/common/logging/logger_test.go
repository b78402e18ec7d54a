package logging

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{DebugLevel, "DEBUG"},
		{InfoLevel, "INFO"},
		{WarnLevel, "WARN"},
		{ErrorLevel, "ERROR"},
		{LogLevel(99), "UNKNOWN"}, // Invalid level
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.level.String())
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
	}{
		{"debug", DebugLevel},
		{"DEBUG", DebugLevel},
		{"info", InfoLevel},
		{"warn", WarnLevel},
		{"warning", WarnLevel},
		{"error", ErrorLevel},
		{"", InfoLevel},
		{"bogus", InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestDefaultLogConfig(t *testing.T) {
	config := DefaultLogConfig()

	assert.Equal(t, InfoLevel, config.Level)
	assert.Nil(t, config.Output) // Default config uses nil (stdout)
	assert.Equal(t, time.RFC3339, config.TimeFormat)
	assert.Equal(t, "", config.Prefix)
}

func TestNewZapLogger(t *testing.T) {
	var buf bytes.Buffer
	config := LogConfig{
		Level:      DebugLevel,
		Output:     &buf,
		TimeFormat: "2006-01-02 15:04:05",
		Prefix:     "cache",
	}

	logger, err := NewZapLogger(config)
	assert.NoError(t, err)
	assert.NotNil(t, logger)

	// Verify it implements the Logger interface
	var _ Logger = logger
}

func TestNewDefaultLogger(t *testing.T) {
	logger := NewDefaultLogger()
	assert.NotNil(t, logger)

	// Verify it implements the Logger interface
	var _ Logger = logger
}

func TestLogger_LogLevels(t *testing.T) {
	var buf bytes.Buffer
	config := LogConfig{
		Level:      DebugLevel,
		Output:     &buf,
		TimeFormat: "2006-01-02 15:04:05",
		Prefix:     "",
	}

	logger, err := NewZapLogger(config)
	assert.NoError(t, err)

	tests := []struct {
		name     string
		logFunc  func()
		contains []string
	}{
		{
			name: "debug log",
			logFunc: func() {
				logger.Debug("debug message", Field{"key", "value"})
			},
			contains: []string{"DEBUG", "debug message", "value"},
		},
		{
			name: "info log",
			logFunc: func() {
				logger.Info("info message", Field{"count", 42})
			},
			contains: []string{"INFO", "info message", "42"},
		},
		{
			name: "warn log",
			logFunc: func() {
				logger.Warn("warning message", Field{"flag", true})
			},
			contains: []string{"WARN", "warning message", "true"},
		},
		{
			name: "error log",
			logFunc: func() {
				err := errors.New("test error")
				logger.Error("error message", err, Field{"level", "l2"})
			},
			contains: []string{"ERROR", "error message", "test error", "l2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.logFunc()

			output := buf.String()
			for _, contains := range tt.contains {
				assert.Contains(t, output, contains)
			}
		})
	}
}

func TestLogger_LogFiltering(t *testing.T) {
	var buf bytes.Buffer
	config := LogConfig{
		Level:      WarnLevel, // Only WARN and ERROR should be logged
		Output:     &buf,
		TimeFormat: "2006-01-02 15:04:05",
	}

	logger, err := NewZapLogger(config)
	assert.NoError(t, err)

	// These should not be logged
	logger.Debug("debug message")
	logger.Info("info message")

	// These should be logged
	logger.Warn("warn message")
	logger.Error("error message", errors.New("test error"))

	output := buf.String()
	assert.NotContains(t, output, "debug message")
	assert.NotContains(t, output, "info message")
	assert.Contains(t, output, "warn message")
	assert.Contains(t, output, "error message")
}

func TestLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	config := LogConfig{
		Level:  DebugLevel,
		Output: &buf,
	}

	logger, err := NewZapLogger(config)
	assert.NoError(t, err)

	// Add persistent fields
	enrichedLogger := logger.WithFields(
		Field{"component", "cache"},
		Field{"level", "l1"},
	)

	// Log with the enriched logger
	enrichedLogger.Info("test message", Field{"key", "inventory:42"})

	output := buf.String()
	assert.Contains(t, output, "cache")
	assert.Contains(t, output, "l1")
	assert.Contains(t, output, "inventory:42")
	assert.Contains(t, output, "test message")
}

func TestLogger_FieldTypes(t *testing.T) {
	var buf bytes.Buffer
	config := LogConfig{
		Level:  DebugLevel,
		Output: &buf,
	}

	logger, err := NewZapLogger(config)
	assert.NoError(t, err)

	testError := errors.New("test error")

	logger.Info("field types test",
		String("string_val", "hello"),
		Int("int_val", 42),
		Float64("float_val", 3.14),
		Bool("bool_val", true),
		NamedError("error_val", testError),
		Duration("duration_val", 5*time.Second),
		Any("nil_val", nil),
	)

	output := buf.String()
	assert.Contains(t, output, "hello")
	assert.Contains(t, output, "42")
	assert.Contains(t, output, "3.14")
	assert.Contains(t, output, "true")
	assert.Contains(t, output, "test error")
}

func TestLogger_Concurrency(t *testing.T) {
	var buf bytes.Buffer
	config := LogConfig{
		Level:  DebugLevel,
		Output: &buf,
	}

	logger, err := NewZapLogger(config)
	assert.NoError(t, err)

	// Test concurrent WithFields calls
	const numGoroutines = 10
	const numLogs = 5

	done := make(chan bool, numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			enrichedLogger := logger.WithFields(Field{"goroutine", id})
			for j := 0; j < numLogs; j++ {
				enrichedLogger.Info("concurrent message", Field{"iteration", j})
			}
			done <- true
		}(i)
	}

	// Wait for all goroutines to complete
	for i := 0; i < numGoroutines; i++ {
		<-done
	}

	output := buf.String()
	// Just verify we got some output and no panics
	assert.NotEmpty(t, output)
	assert.Contains(t, output, "concurrent message")
}

func TestGlobalLogger(t *testing.T) {
	// Save original global logger
	originalLogger := GetGlobalLogger()
	defer SetGlobalLogger(originalLogger)

	var buf bytes.Buffer
	config := LogConfig{
		Level:  DebugLevel,
		Output: &buf,
	}

	testLogger, err := NewZapLogger(config)
	assert.NoError(t, err)
	SetGlobalLogger(testLogger)

	// Verify global logger was set
	assert.Equal(t, testLogger, GetGlobalLogger())

	// Test package-level functions
	Debug("debug from global")
	Info("info from global")
	Warn("warn from global")
	Error("error from global", errors.New("global error"))

	output := buf.String()
	assert.Contains(t, output, "debug from global")
	assert.Contains(t, output, "info from global")
	assert.Contains(t, output, "warn from global")
	assert.Contains(t, output, "error from global")
	assert.Contains(t, output, "global error")
}

func TestLogger_ChainedWithFields(t *testing.T) {
	var buf bytes.Buffer
	config := LogConfig{
		Level:  DebugLevel,
		Output: &buf,
	}

	logger, err := NewZapLogger(config)
	assert.NoError(t, err)

	// Chain multiple WithFields calls
	enrichedLogger := logger.
		WithFields(Field{"component", "cache"}).
		WithFields(Field{"level", "l2"}).
		WithFields(Field{"strategy", "financial"})

	enrichedLogger.Info("chained fields test")

	output := buf.String()
	assert.Contains(t, output, "cache")
	assert.Contains(t, output, "l2")
	assert.Contains(t, output, "financial")
}

func TestLogger_EmptyMessage(t *testing.T) {
	var buf bytes.Buffer
	config := LogConfig{
		Level:  DebugLevel,
		Output: &buf,
	}

	logger, err := NewZapLogger(config)
	assert.NoError(t, err)
	logger.Info("", Field{"key", "value"})

	output := buf.String()
	// Should contain the field value
	assert.Contains(t, output, "value")
}
