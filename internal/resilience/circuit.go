// Package resilience provides retry and circuit breaker patterns for calls to
// unreliable upstream services.
package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// CircuitState represents the state of a circuit breaker.
type CircuitState int

const (
	// CircuitClosed lets calls through.
	CircuitClosed CircuitState = iota
	// CircuitOpen rejects calls until the reset timeout elapses.
	CircuitOpen
	// CircuitHalfOpen lets probe calls through to test recovery.
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned when a call is rejected because the circuit is open.
var ErrCircuitOpen = eris.New("circuit breaker is open")

// CircuitBreakerConfig controls circuit breaker behavior.
type CircuitBreakerConfig struct {
	// Name labels log lines for this breaker.
	Name string

	// FailureThreshold is the number of consecutive failures before opening
	// the circuit. Default: 5.
	FailureThreshold int

	// ResetTimeout is how long the circuit stays open before a probe is
	// allowed. Default: 30s.
	ResetTimeout time.Duration

	// HalfOpenMaxProbes is the number of successful probes needed to close
	// the circuit again. Default: 1.
	HalfOpenMaxProbes int
}

// DefaultCircuitBreakerConfig returns the default breaker settings.
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		FailureThreshold:  5,
		ResetTimeout:      30 * time.Second,
		HalfOpenMaxProbes: 1,
	}
}

// CircuitBreaker guards a single upstream service.
type CircuitBreaker struct {
	cfg   CircuitBreakerConfig
	mu    sync.Mutex
	state CircuitState

	consecutiveFailures int
	lastFailureTime     time.Time
	halfOpenSuccesses   int

	nowFunc func() time.Time
}

// NewCircuitBreaker creates a circuit breaker with the given config.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = 30 * time.Second
	}
	if cfg.HalfOpenMaxProbes <= 0 {
		cfg.HalfOpenMaxProbes = 1
	}
	return &CircuitBreaker{
		cfg:     cfg,
		state:   CircuitClosed,
		nowFunc: time.Now,
	}
}

// Execute runs fn through the breaker. It returns ErrCircuitOpen without
// calling fn while the circuit is open.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	_, err := ExecuteVal(ctx, cb, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// ExecuteVal is like Execute but preserves a return value.
func ExecuteVal[T any](ctx context.Context, cb *CircuitBreaker, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if err := cb.allowRequest(); err != nil {
		return zero, err
	}

	val, err := fn(ctx)
	cb.recordResult(err)
	return val, err
}

// State returns the current circuit state.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == CircuitOpen && cb.nowFunc().Sub(cb.lastFailureTime) >= cb.cfg.ResetTimeout {
		return CircuitHalfOpen
	}
	return cb.state
}

func (cb *CircuitBreaker) allowRequest() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state != CircuitOpen {
		return nil
	}
	if cb.nowFunc().Sub(cb.lastFailureTime) >= cb.cfg.ResetTimeout {
		cb.transition(CircuitHalfOpen)
		return nil
	}
	return ErrCircuitOpen
}

func (cb *CircuitBreaker) recordResult(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err == nil {
		switch cb.state {
		case CircuitHalfOpen:
			cb.halfOpenSuccesses++
			if cb.halfOpenSuccesses >= cb.cfg.HalfOpenMaxProbes {
				cb.transition(CircuitClosed)
				cb.consecutiveFailures = 0
				cb.halfOpenSuccesses = 0
			}
		case CircuitClosed:
			cb.consecutiveFailures = 0
		}
		return
	}

	cb.consecutiveFailures++
	cb.lastFailureTime = cb.nowFunc()

	switch cb.state {
	case CircuitClosed:
		if cb.consecutiveFailures >= cb.cfg.FailureThreshold {
			cb.transition(CircuitOpen)
		}
	case CircuitHalfOpen:
		cb.transition(CircuitOpen)
		cb.halfOpenSuccesses = 0
	}
}

func (cb *CircuitBreaker) transition(to CircuitState) {
	from := cb.state
	cb.state = to
	zap.L().Info("circuit breaker state change",
		zap.String("breaker", cb.cfg.Name),
		zap.String("from", from.String()),
		zap.String("to", to.String()),
	)
}
