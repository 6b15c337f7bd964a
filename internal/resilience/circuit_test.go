package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 3, ResetTimeout: time.Minute})

	for i := 0; i < 3; i++ {
		_ = cb.Execute(context.Background(), func(_ context.Context) error {
			return errors.New("fail")
		})
	}
	assert.Equal(t, CircuitOpen, cb.State())

	err := cb.Execute(context.Background(), func(_ context.Context) error {
		t.Error("should not be called when circuit is open")
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestCircuitBreaker_HalfOpenProbeCloses(t *testing.T) {
	now := time.Now()
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1, ResetTimeout: time.Second})
	cb.nowFunc = func() time.Time { return now }

	_ = cb.Execute(context.Background(), func(_ context.Context) error { return errors.New("fail") })
	require.Equal(t, CircuitOpen, cb.State())

	now = now.Add(2 * time.Second)
	assert.Equal(t, CircuitHalfOpen, cb.State())

	val, err := ExecuteVal(context.Background(), cb, func(_ context.Context) (string, error) {
		return "probe", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "probe", val)
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	now := time.Now()
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1, ResetTimeout: time.Second})
	cb.nowFunc = func() time.Time { return now }

	_ = cb.Execute(context.Background(), func(_ context.Context) error { return errors.New("fail") })
	now = now.Add(2 * time.Second)
	_ = cb.Execute(context.Background(), func(_ context.Context) error { return errors.New("still down") })

	assert.Equal(t, CircuitOpen, cb.State())
}

func TestCircuitState_String(t *testing.T) {
	assert.Equal(t, "closed", CircuitClosed.String())
	assert.Equal(t, "open", CircuitOpen.String())
	assert.Equal(t, "half-open", CircuitHalfOpen.String())
	assert.Equal(t, "unknown", CircuitState(9).String())
}
