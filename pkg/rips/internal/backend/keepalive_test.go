package backend

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetainReleaseExactlyOnce(t *testing.T) {
	base := Retained()

	h := retain([]byte{1, 2, 3, 4})
	require.NotZero(t, h)
	assert.Equal(t, base+1, Retained())

	assert.True(t, release(h), "first release must drop the buffer")
	assert.False(t, release(h), "second release must be a no-op")
	assert.Equal(t, base, Retained())
}

func TestRetainEmptyBuffer(t *testing.T) {
	base := Retained()

	h := retain(nil)
	assert.Equal(t, base+1, Retained())
	assert.True(t, release(h))
	assert.Equal(t, base, Retained())
}

func TestRetainHandlesAreUnique(t *testing.T) {
	const n = 64
	base := Retained()

	var wg sync.WaitGroup
	handles := make(chan uintptr, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			handles <- retain(make([]byte, i+1))
		}(i)
	}
	wg.Wait()
	close(handles)

	seen := make(map[uintptr]bool, n)
	for h := range handles {
		assert.False(t, seen[h], "handle %d issued twice", h)
		seen[h] = true
	}
	assert.Equal(t, base+n, Retained())

	var released sync.WaitGroup
	for h := range seen {
		released.Add(1)
		go func(h uintptr) {
			defer released.Done()
			assert.True(t, release(h))
		}(h)
	}
	released.Wait()
	assert.Equal(t, base, Retained())
}

func TestReleaseUnknownHandle(t *testing.T) {
	assert.False(t, release(0))
}
