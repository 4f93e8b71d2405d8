package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterval_Wait(t *testing.T) {
	t.Run("first call is admitted immediately", func(t *testing.T) {
		l := NewInterval(50 * time.Millisecond)

		start := time.Now()
		require.NoError(t, l.Wait(context.Background()))
		assert.Less(t, time.Since(start), 20*time.Millisecond)
	})

	t.Run("second call waits out the interval", func(t *testing.T) {
		l := NewInterval(50 * time.Millisecond)

		require.NoError(t, l.Wait(context.Background()))
		start := time.Now()
		require.NoError(t, l.Wait(context.Background()))
		assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
	})

	t.Run("concurrent callers serialise", func(t *testing.T) {
		l := NewInterval(30 * time.Millisecond)

		const callers = 4
		var wg sync.WaitGroup
		start := time.Now()
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, l.Wait(context.Background()))
			}()
		}
		wg.Wait()

		// 4 callers through a 30ms interval need at least 3 waits.
		assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
	})

	t.Run("cancelled context aborts the wait", func(t *testing.T) {
		l := NewInterval(time.Hour)
		require.NoError(t, l.Wait(context.Background()))

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		assert.Error(t, l.Wait(ctx))
	})

	t.Run("non-positive interval falls back to default", func(t *testing.T) {
		l := NewInterval(0)
		require.NoError(t, l.Wait(context.Background()))
	})
}

func TestUnlimited_Wait(t *testing.T) {
	var l Unlimited
	assert.NoError(t, l.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, l.Wait(ctx))
}
