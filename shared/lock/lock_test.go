package lock_test

import (
	"sync"
	"testing"
	"time"

	"insurai/shared/lock"

	"github.com/stretchr/testify/assert"
)

func TestKeyed_SerializesSameKey(t *testing.T) {
	keyed := lock.NewKeyed()

	var (
		mu      sync.Mutex
		inside  int
		maxSeen int
		wg      sync.WaitGroup
	)

	for range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			unlock := keyed.Lock("agent-1|2024-06-10T09:00")
			defer unlock()

			mu.Lock()
			inside++
			maxSeen = max(maxSeen, inside)
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}

	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Equal(t, 0, keyed.Len())
}

func TestKeyed_DistinctKeysDoNotBlock(t *testing.T) {
	keyed := lock.NewKeyed()

	unlockA := keyed.Lock("a")
	defer unlockA()

	done := make(chan struct{})

	go func() {
		unlockB := keyed.Lock("b")
		unlockB()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different key blocked")
	}

	assert.Equal(t, 1, keyed.Len())
}
