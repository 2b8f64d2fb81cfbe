package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{MaxAttempts: attempts, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond}
}

func TestDo_RetriesTransientUntilSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastRetry(3), func(_ context.Context) error {
		calls++
		if calls < 3 {
			return NewTransientError(errors.New("busy"), 503)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_StopsOnPermanentError(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastRetry(5), func(_ context.Context) error {
		calls++
		return errors.New("bad request")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoVal_ExhaustsAttempts(t *testing.T) {
	calls := 0
	retried := []int{}
	cfg := fastRetry(3)
	cfg.OnRetry = func(attempt int, _ error) { retried = append(retried, attempt) }

	v, err := DoVal(context.Background(), cfg, func(_ context.Context) (int, error) {
		calls++
		return 7, NewTransientError(errors.New("timeout"), 504)
	})
	require.Error(t, err)
	assert.Zero(t, v)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestDo_CanceledContextStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, fastRetry(5), func(_ context.Context) error {
		calls++
		cancel()
		return NewTransientError(errors.New("busy"), 503)
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestBackoff_CappedAndNonNegative(t *testing.T) {
	cfg := RetryConfig{InitialBackoff: time.Second, MaxBackoff: 2 * time.Second, Multiplier: 2}.withDefaults()
	cfg.JitterFraction = 0
	assert.Equal(t, time.Second, cfg.backoff(0))
	assert.Equal(t, 2*time.Second, cfg.backoff(1))
	assert.Equal(t, 2*time.Second, cfg.backoff(5))
}

func TestCircuitBreaker_OpensAndRecovers(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker("listings", CircuitBreakerConfig{FailureThreshold: 2, ResetTimeout: time.Minute}).
		WithNow(func() time.Time { return now })

	fail := func(_ context.Context) error { return errors.New("down") }
	_ = cb.Execute(context.Background(), fail)
	assert.Equal(t, CircuitClosed, cb.State())
	_ = cb.Execute(context.Background(), fail)
	assert.Equal(t, CircuitOpen, cb.State())

	called := false
	err := cb.Execute(context.Background(), func(_ context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)

	now = now.Add(time.Minute)
	assert.Equal(t, CircuitHalfOpen, cb.State())
	require.NoError(t, cb.Execute(context.Background(), func(_ context.Context) error { return nil }))
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestCircuitBreaker_FailedProbeReopens(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker("listings", CircuitBreakerConfig{FailureThreshold: 1, ResetTimeout: time.Second}).
		WithNow(func() time.Time { return now })

	_ = cb.Execute(context.Background(), func(_ context.Context) error { return errors.New("x") })
	now = now.Add(2 * time.Second)
	_ = cb.Execute(context.Background(), func(_ context.Context) error { return errors.New("x") })
	assert.Equal(t, CircuitOpen, cb.State())
}

func TestGuard_DoesNotRetryOpenCircuit(t *testing.T) {
	g := NewGuard("listings", fastRetry(4), CircuitBreakerConfig{FailureThreshold: 1, ResetTimeout: time.Hour})
	calls := 0
	_, err := Call(context.Background(), g, func(_ context.Context) (string, error) {
		calls++
		return "", NewTransientError(errors.New("busy"), 503)
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, 1, calls)
}

func TestIsTransient(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.True(t, IsTransient(NewTransientError(errors.New("x"), 429)))
	assert.True(t, IsTransient(errors.New("read: connection reset by peer")))
	assert.False(t, IsTransient(errors.New("invalid grade")))
	assert.False(t, IsTransient(ErrCircuitOpen))
}

func TestStatusError(t *testing.T) {
	err := StatusError("listings", 503, "try later")
	assert.True(t, IsTransient(err))
	assert.Contains(t, err.Error(), "status 503")

	err = StatusError("listings", 404, "")
	assert.False(t, IsTransient(err))
}

func TestFromConfig(t *testing.T) {
	r := FromRetryConfig(5, 100, 0)
	assert.Equal(t, 5, r.MaxAttempts)
	assert.Equal(t, 100*time.Millisecond, r.InitialBackoff)
	assert.Equal(t, DefaultRetryConfig().MaxBackoff, r.MaxBackoff)

	c := FromCircuitConfig(0, 10)
	assert.Equal(t, 5, c.FailureThreshold)
	assert.Equal(t, 10*time.Second, c.ResetTimeout)
}
