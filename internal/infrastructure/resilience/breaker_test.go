package resilience

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func TestBreakerStaysClosedOnSuccess(t *testing.T) {
	b := New("test", Settings{FailureThreshold: 3})

	for i := 0; i < 10; i++ {
		err := b.Do(func() error { return nil })
		require.NoError(t, err)
	}

	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	b := New("test", Settings{FailureThreshold: 3, Cooldown: time.Minute})

	for i := 0; i < 3; i++ {
		err := b.Do(func() error { return errBoom })
		require.ErrorIs(t, err, errBoom)
	}

	assert.Equal(t, StateOpen, b.State())

	err := b.Do(func() error {
		t.Fatal("call should not run while open")
		return nil
	})
	assert.ErrorIs(t, err, ErrOpen)
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	b := New("test", Settings{FailureThreshold: 3, Cooldown: time.Minute})

	require.Error(t, b.Do(func() error { return errBoom }))
	require.Error(t, b.Do(func() error { return errBoom }))
	require.NoError(t, b.Do(func() error { return nil }))
	require.Error(t, b.Do(func() error { return errBoom }))
	require.Error(t, b.Do(func() error { return errBoom }))

	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerProbesAfterCooldown(t *testing.T) {
	b := New("test", Settings{FailureThreshold: 1, Cooldown: 10 * time.Millisecond})

	require.Error(t, b.Do(func() error { return errBoom }))
	require.Equal(t, StateOpen, b.State())

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, StateHalfOpen, b.State())

	// Failed probe reopens the breaker.
	require.ErrorIs(t, b.Do(func() error { return errBoom }), errBoom)
	assert.Equal(t, StateOpen, b.State())

	time.Sleep(20 * time.Millisecond)

	// Successful probe closes it.
	require.NoError(t, b.Do(func() error { return nil }))
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerDefaults(t *testing.T) {
	b := New("test", Settings{})
	assert.Equal(t, uint32(5), b.settings.FailureThreshold)
	assert.Equal(t, 30*time.Second, b.settings.Cooldown)
}
