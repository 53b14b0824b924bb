package network

import (
	"context"
	"testing"
	"time"

	"github.com/goran-ethernal/ScanKit/internal/logger"
	"github.com/goran-ethernal/ScanKit/pkg/types"
	"github.com/stretchr/testify/require"
)

func TestThrottle_Disabled(t *testing.T) {
	th := NewThrottle(0, 0)

	start := time.Now()
	for range 100 {
		require.NoError(t, th.Wait(context.Background()))
	}
	require.Less(t, time.Since(start), time.Second)
}

func TestThrottle_DelaysBeyondBurst(t *testing.T) {
	th := NewThrottle(50, 1)

	require.NoError(t, th.Wait(context.Background()))

	start := time.Now()
	require.NoError(t, th.Wait(context.Background()))
	require.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

func TestThrottle_ContextCanceled(t *testing.T) {
	th := NewThrottle(0.01, 1)
	require.NoError(t, th.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	require.ErrorIs(t, th.Wait(ctx), context.DeadlineExceeded)
}

func TestKeyRing(t *testing.T) {
	_, err := NewKeyRing(nil, nil)
	require.Error(t, err)

	_, err = NewKeyRing([]string{"a", " "}, nil)
	require.Error(t, err)

	ring, err := NewKeyRing([]string{"key-one", "key-two", "key-three"}, logger.NewNopLogger())
	require.NoError(t, err)
	require.Equal(t, 3, ring.Len())
	require.Equal(t, "key-one", ring.Current())

	// a stale rotation request does not skip a key
	require.Equal(t, "key-two", ring.rotate("key-one"))
	require.Equal(t, "key-two", ring.rotate("key-one"))

	limited := &types.APIError{Message: "NOTOK", Result: "Max rate limit reached"}
	var used []string
	err = ring.Do(func(key string) error {
		used = append(used, key)
		return limited
	})
	require.Same(t, limited, err)
	require.Equal(t, []string{"key-two", "key-three", "key-one"}, used)

	used = nil
	other := &types.APIError{Message: "NOTOK", Result: "Invalid API Key"}
	err = ring.Do(func(key string) error {
		used = append(used, key)
		return other
	})
	require.Same(t, other, err)
	require.Len(t, used, 1)
}

func TestMask(t *testing.T) {
	require.Equal(t, "****", mask("abc"))
	require.Equal(t, "ABCD****", mask("ABCDEFGHIJ"))
}
