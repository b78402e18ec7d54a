package circuitbreaker

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"cache-manager/internal/common/errors"
	"cache-manager/internal/common/logging"
)

func TestGoBreakerAdapter(t *testing.T) {
	logger := logging.GetGlobalLogger()

	t.Run("basic operation", func(t *testing.T) {
		cb := NewGoBreaker("test-basic", Config{
			MaxFailures:           2,
			Timeout:               100 * time.Millisecond,
			MaxConcurrentRequests: 1,
		}, logger)

		// Should start closed
		assert.Equal(t, StateClosed, cb.State())

		err := cb.Execute(func() error {
			return nil
		})
		assert.NoError(t, err)

		// Still closed
		assert.Equal(t, StateClosed, cb.State())
		assert.False(t, cb.IsOpen())
	})

	t.Run("circuit opens after consecutive failures", func(t *testing.T) {
		cb := NewGoBreaker("test-failures", Config{
			MaxFailures:           3,
			Timeout:               100 * time.Millisecond,
			MaxConcurrentRequests: 1,
		}, logger)

		for i := 0; i < 3; i++ {
			err := cb.Execute(func() error {
				return fmt.Errorf("failure %d", i)
			})
			assert.Error(t, err)
		}

		assert.Equal(t, StateOpen, cb.State())
		assert.True(t, cb.IsOpen())

		// Next call should fail immediately without invoking fn
		err := cb.Execute(func() error {
			t.Fatal("This should not be called")
			return nil
		})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "open")
		assert.True(t, errors.IsType(err, errors.ErrTypeInternal))
	})

	t.Run("circuit transitions to half-open and recovers", func(t *testing.T) {
		cb := NewGoBreaker("test-half-open", Config{
			MaxFailures:           2,
			Timeout:               50 * time.Millisecond,
			MaxConcurrentRequests: 1,
		}, logger)

		// Open the circuit
		for i := 0; i < 2; i++ {
			cb.Execute(func() error {
				return fmt.Errorf("failure")
			})
		}

		assert.Equal(t, StateOpen, cb.State())

		// Wait for timeout
		time.Sleep(60 * time.Millisecond)

		// Next call should be allowed through
		err := cb.Execute(func() error {
			return nil
		})
		assert.NoError(t, err)

		assert.Equal(t, StateClosed, cb.State())
	})

	t.Run("cache misses don't trip breaker", func(t *testing.T) {
		cb := NewGoBreaker("test-misses", Config{
			MaxFailures:           2,
			Timeout:               100 * time.Millisecond,
			MaxConcurrentRequests: 1,
		}, logger)

		// Absent keys flow through as not-found errors and must not
		// count as failures no matter how many occur.
		for i := 0; i < 5; i++ {
			err := cb.Execute(func() error {
				return errors.NotFoundError("inventory:42")
			})
			assert.Error(t, err)
		}

		assert.Equal(t, StateClosed, cb.State())

		// Real failures still count
		for i := 0; i < 2; i++ {
			err := cb.Execute(func() error {
				return errors.InternalError("connection refused", nil)
			})
			assert.Error(t, err)
		}

		assert.Equal(t, StateOpen, cb.State())
	})

	t.Run("invalid config falls back to defaults", func(t *testing.T) {
		cb := NewGoBreaker("test-invalid", Config{
			MaxFailures: -1,
		}, logger)

		assert.NotNil(t, cb)
		assert.Equal(t, StateClosed, cb.State())

		// Defaults allow 4 failures before opening
		for i := 0; i < 4; i++ {
			cb.Execute(func() error {
				return fmt.Errorf("failure")
			})
		}
		assert.Equal(t, StateClosed, cb.State())

		cb.Execute(func() error {
			return fmt.Errorf("failure")
		})
		assert.Equal(t, StateOpen, cb.State())
	})

	t.Run("counts track successes and failures", func(t *testing.T) {
		cb := NewGoBreaker("test-counts", Config{
			MaxFailures:           10,
			Timeout:               100 * time.Millisecond,
			MaxConcurrentRequests: 1,
		}, logger)

		cb.Execute(func() error { return nil })
		cb.Execute(func() error { return nil })
		cb.Execute(func() error { return fmt.Errorf("failure") })

		counts := cb.Counts()
		assert.Equal(t, uint32(2), counts.TotalSuccesses)
		assert.Equal(t, uint32(1), counts.TotalFailures)
	})
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{StateClosed, "closed"},
		{StateOpen, "open"},
		{StateHalfOpen, "half-open"},
		{State(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.expected {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.expected)
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "valid config",
			config:  Config{MaxFailures: 5, Timeout: 30 * time.Second, MaxConcurrentRequests: 1},
			wantErr: false,
		},
		{
			name:    "zero max failures",
			config:  Config{MaxFailures: 0, Timeout: 30 * time.Second, MaxConcurrentRequests: 1},
			wantErr: true,
		},
		{
			name:    "negative timeout",
			config:  Config{MaxFailures: 5, Timeout: -time.Second, MaxConcurrentRequests: 1},
			wantErr: true,
		},
		{
			name:    "zero concurrent requests",
			config:  Config{MaxFailures: 5, Timeout: 30 * time.Second, MaxConcurrentRequests: 0},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
