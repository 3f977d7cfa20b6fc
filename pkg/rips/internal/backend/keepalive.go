package backend

import (
	"runtime"
	"sync"
)

// retained is one caller buffer that libvips reads from without copying. The
// backing array is pinned so C may keep its address after the call returns.
type retained struct {
	buf    []byte
	pinner runtime.Pinner
}

var (
	mu   sync.Mutex
	next uintptr = 1
	reg          = map[uintptr]*retained{}
)

// retain pins buf and returns the handle passed to C as postclose user data.
func retain(buf []byte) uintptr {
	r := &retained{buf: buf}
	if len(buf) > 0 {
		r.pinner.Pin(&buf[0])
	}

	mu.Lock()
	h := next
	next++
	reg[h] = r
	mu.Unlock()
	return h
}

// release unpins and drops the buffer behind h. It reports false when h is
// unknown, which means it was already released.
func release(h uintptr) bool {
	mu.Lock()
	r, ok := reg[h]
	delete(reg, h)
	mu.Unlock()

	if !ok {
		return false
	}
	r.pinner.Unpin()
	r.buf = nil
	return true
}

// Retained returns the number of caller buffers currently held on behalf of
// native images.
func Retained() int {
	mu.Lock()
	defer mu.Unlock()
	return len(reg)
}
