package resilience

import (
	"context"
	"time"
)

// Guard composes retry around a circuit breaker. An open breaker is never
// retried.
type Guard struct {
	Service string
	Retry   RetryConfig
	Breaker *CircuitBreaker
}

// NewGuard builds a guard for one collaborator.
func NewGuard(service string, retry RetryConfig, circuit CircuitBreakerConfig) *Guard {
	if retry.OnRetry == nil {
		retry.OnRetry = RetryLogger(service, "call")
	}
	return &Guard{
		Service: service,
		Retry:   retry,
		Breaker: NewCircuitBreaker(service, circuit),
	}
}

// Call runs fn under the guard.
func Call[T any](ctx context.Context, g *Guard, fn func(ctx context.Context) (T, error)) (T, error) {
	return DoVal(ctx, g.Retry, func(ctx context.Context) (T, error) {
		return ExecuteVal(ctx, g.Breaker, fn)
	})
}

// FromRetryConfig builds a RetryConfig from flat config values. Non-positive
// values keep the defaults.
func FromRetryConfig(maxAttempts, initialBackoffMs, maxBackoffMs int) RetryConfig {
	cfg := DefaultRetryConfig()
	if maxAttempts > 0 {
		cfg.MaxAttempts = maxAttempts
	}
	if initialBackoffMs > 0 {
		cfg.InitialBackoff = time.Duration(initialBackoffMs) * time.Millisecond
	}
	if maxBackoffMs > 0 {
		cfg.MaxBackoff = time.Duration(maxBackoffMs) * time.Millisecond
	}
	return cfg
}

// FromCircuitConfig builds a CircuitBreakerConfig from flat config values.
func FromCircuitConfig(failureThreshold, resetTimeoutSecs int) CircuitBreakerConfig {
	cfg := DefaultCircuitBreakerConfig()
	if failureThreshold > 0 {
		cfg.FailureThreshold = failureThreshold
	}
	if resetTimeoutSecs > 0 {
		cfg.ResetTimeout = time.Duration(resetTimeoutSecs) * time.Second
	}
	return cfg
}
