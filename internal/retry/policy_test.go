package retry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDelay_Fixed(t *testing.T) {
	p := NewPolicy(BackoffFixed, 2*time.Second, 10*time.Second, 3)
	require.Equal(t, 2*time.Second, p.Delay(1))
	require.Equal(t, 2*time.Second, p.Delay(3))
}

func TestDelay_LinearCapped(t *testing.T) {
	p := NewPolicy(BackoffLinear, time.Second, 3*time.Second, 5)
	require.Equal(t, time.Second, p.Delay(1))
	require.Equal(t, 2*time.Second, p.Delay(2))
	require.Equal(t, 3*time.Second, p.Delay(4), "capped at max")
}

func TestDelay_ExponentialCapped(t *testing.T) {
	p := NewPolicy(BackoffExponential, time.Second, 5*time.Second, 5)
	require.Equal(t, time.Second, p.Delay(1))
	require.Equal(t, 2*time.Second, p.Delay(2))
	require.Equal(t, 4*time.Second, p.Delay(3))
	require.Equal(t, 5*time.Second, p.Delay(4))
}

func TestDelay_ZeroAttempt(t *testing.T) {
	require.Zero(t, NoRetries().Delay(0))
}

func TestNewPolicy_UnknownModeFallsBack(t *testing.T) {
	p := NewPolicy("bogus", 0, 0, -1)
	require.Equal(t, BackoffLinear, p.Mode)
	require.Equal(t, 2, p.MaxRetries)
	require.NoError(t, p.Validate())
}

func TestNoRetries_Valid(t *testing.T) {
	p := NoRetries()
	require.NoError(t, p.Validate())
	require.Zero(t, p.MaxRetries)
}
