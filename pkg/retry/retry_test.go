package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "xkcdfetch/pkg/errors"
	"xkcdfetch/pkg/logger"
)

func TestExponentialBackoff(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:    100 * time.Millisecond,
		MaxDelay:     1 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.0,
	}

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 0},
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{4, 800 * time.Millisecond},
		{5, 1 * time.Second},
		{6, 1 * time.Second},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, backoff.NextDelay(tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestExponentialBackoffJitterBounds(t *testing.T) {
	backoff := &ExponentialBackoff{BaseDelay: 100 * time.Millisecond, Multiplier: 2.0, JitterFactor: 0.3}
	for i := 0; i < 50; i++ {
		delay := backoff.NextDelay(2)
		assert.GreaterOrEqual(t, delay, 140*time.Millisecond)
		assert.LessOrEqual(t, delay, 260*time.Millisecond)
	}
}

func fastConfig(maxAttempts int, log logger.Logger) *Config {
	return &Config{
		Name:        "test op",
		MaxAttempts: maxAttempts,
		Backoff:     &ExponentialBackoff{BaseDelay: time.Millisecond, Multiplier: 1},
		Logger:      log,
	}
}

func TestDoSucceedsAfterNetworkErrors(t *testing.T) {
	log := logger.NewTestLogger()
	attempts := 0
	err := Do(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errs.New(errs.ErrorTypeServerError, "bad gateway")
		}
		return nil
	}, fastConfig(5, log))

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Len(t, log.GetMessagesByLevel("WARN"), 2, "every retry is logged")
}

func TestDoDefaultIsSingleAttempt(t *testing.T) {
	attempts := 0
	netErr := errs.New(errs.ErrorTypeNetwork, "connection reset")
	err := Do(context.Background(), func() error {
		attempts++
		return netErr
	}, nil)

	assert.Equal(t, 1, attempts)
	assert.Same(t, netErr, err)
}

func TestDoDoesNotRetryNonNetworkErrors(t *testing.T) {
	for _, e := range []error{
		errs.NotFound("comic 404"),
		errs.Consistency("permalink mismatch"),
		errors.New("plain"),
	} {
		attempts := 0
		err := Do(context.Background(), func() error {
			attempts++
			return e
		}, fastConfig(5, nil))

		assert.Equal(t, 1, attempts, e.Error())
		assert.Equal(t, e, err)
	}
}

func TestDoExhaustsAttempts(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), func() error {
		attempts++
		return errs.New(errs.ErrorTypeTimeout, "request timed out")
	}, fastConfig(3, nil))

	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.True(t, errs.Is(err, errs.ErrorTypeTimeout))
	assert.Contains(t, err.Error(), "after 3 attempts")
}

func TestDoCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := &Config{
		MaxAttempts: 5,
		Backoff:     &ExponentialBackoff{BaseDelay: time.Hour, Multiplier: 1},
		OnRetry:     func(int, error, time.Duration) { cancel() },
	}

	attempts := 0
	err := Do(ctx, func() error {
		attempts++
		return errs.New(errs.ErrorTypeNetwork, "down")
	}, cfg)

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.Contains(t, err.Error(), "retry cancelled")
	assert.True(t, errs.IsNetwork(err))
}

func TestDoWithResult(t *testing.T) {
	attempts := 0
	body, err := DoWithResult(context.Background(), func() ([]byte, error) {
		attempts++
		if attempts == 1 {
			return nil, errs.New(errs.ErrorTypeRateLimit, "slow down")
		}
		return []byte("ok"), nil
	}, fastConfig(2, nil))

	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
}

func TestFromRetries(t *testing.T) {
	cfg := FromRetries("fetch image", 2, 10*time.Millisecond, nil)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, "fetch image", cfg.Name)

	zero := FromRetries("fetch image", 0, time.Second, nil)
	assert.Equal(t, 1, zero.MaxAttempts)
}

func TestWait(t *testing.T) {
	require.NoError(t, Wait(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Wait(ctx, time.Hour), context.Canceled)
}
