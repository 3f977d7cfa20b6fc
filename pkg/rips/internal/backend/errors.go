package backend

import (
	"errors"
	"fmt"
)

// ErrNotBuilt reports that the native bindings were not linked into the
// current binary.
var ErrNotBuilt = errors.New("rips/internal/backend: native bindings not built")

// NativeError carries the libvips error buffer as captured immediately after
// a failed call. HasMessage is false when the buffer was empty.
type NativeError struct {
	Op         string
	Message    string
	HasMessage bool

	// Args lists the optional keyed arguments passed to Op.
	Args []string
}

func (e *NativeError) Error() string {
	if !e.HasMessage {
		return fmt.Sprintf("%s: unknown error", e.Op)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}
