package sweep

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedMutex_ExclusivePerKey(t *testing.T) {
	km := NewKeyedMutex()

	var active, maxActive atomic.Int32
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := km.Lock(context.Background(), "a")
			if !assert.NoError(t, err) {
				return
			}
			defer unlock()

			n := active.Add(1)
			for {
				cur := maxActive.Load()
				if n <= cur || maxActive.CompareAndSwap(cur, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			active.Add(-1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxActive.Load())
	assert.Zero(t, km.Len())
}

func TestKeyedMutex_IndependentKeys(t *testing.T) {
	km := NewKeyedMutex()

	unlockA, err := km.Lock(context.Background(), "a")
	require.NoError(t, err)

	unlockB, ok := km.TryLock("b")
	require.True(t, ok)
	unlockB()

	_, ok = km.TryLock("a")
	assert.False(t, ok)

	unlockA()
	unlockA() // second call is a no-op

	unlockA2, ok := km.TryLock("a")
	require.True(t, ok)
	unlockA2()
	assert.Zero(t, km.Len())
}

func TestKeyedMutex_LockHonorsContext(t *testing.T) {
	km := NewKeyedMutex()
	unlock, err := km.Lock(context.Background(), "a")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = km.Lock(ctx, "a")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, km.Len())
}
