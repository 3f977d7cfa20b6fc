package rips

import (
	"context"
	"errors"
	"fmt"

	"github.com/hsiuhsiu/rips-go/pkg/rips/internal/backend"
)

// ErrorKind classifies an *Error.
type ErrorKind int

const (
	// KindNative is a failure reported by libvips.
	KindNative ErrorKind = iota + 1
	// KindNul is a string argument containing a nul byte.
	KindNul
	// KindIO is a failure reading input or writing output.
	KindIO
	// KindOpaque wraps any other error.
	KindOpaque
)

func (k ErrorKind) String() string {
	switch k {
	case KindNative:
		return "native"
	case KindNul:
		return "nul"
	case KindIO:
		return "io"
	case KindOpaque:
		return "opaque"
	default:
		return "unknown"
	}
}

var (
	// ErrClosed is returned by operations on an Image after Close.
	ErrClosed = errors.New("rips: image is closed")

	// ErrNotBuilt reports that the binary was built without the native
	// bindings.
	ErrNotBuilt = backend.ErrNotBuilt
)

// Error is returned by every fallible operation in this package.
type Error struct {
	Kind ErrorKind

	// Message is the libvips error text captured at the time of failure.
	// It is only meaningful for KindNative when HasMessage is true.
	Message    string
	HasMessage bool

	// Err is the underlying error for KindNul, KindIO and KindOpaque.
	Err error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindNative:
		if !e.HasMessage {
			return "unknown error"
		}
		return e.Message
	default:
		if e.Err == nil {
			return e.Kind.String() + " error"
		}
		return e.Err.Error()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first *Error in err's chain, or zero.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// NulError reports a nul byte inside a string that must be passed to libvips
// as a C string.
type NulError struct {
	Position int
	Value    []byte
}

func (e *NulError) Error() string {
	return fmt.Sprintf("nul byte found in provided data at position: %d", e.Position)
}

// checkString fails with a KindNul error when s cannot be represented as a
// C string.
func checkString(s string) error {
	for i := 0; i < len(s); i++ {
		if s[i] == 0 {
			return &Error{Kind: KindNul, Err: &NulError{Position: i, Value: []byte(s)}}
		}
	}
	return nil
}

func ioError(err error) error {
	return &Error{Kind: KindIO, Err: err}
}

func opaqueError(err error) error {
	return &Error{Kind: KindOpaque, Err: err}
}

// remapError converts backend errors to public API errors.
func remapError(err error) error {
	if err == nil {
		return nil
	}
	var nerr *backend.NativeError
	if errors.As(err, &nerr) {
		args := []any{"op", nerr.Op, "message", nerr.Message}
		if len(nerr.Args) > 0 {
			args = append(args, "args", nerr.Args)
		}
		logger().Debug(context.Background(), "native call failed", args...)
		return &Error{Kind: KindNative, Message: nerr.Message, HasMessage: nerr.HasMessage}
	}
	var rerr *Error
	if errors.As(err, &rerr) {
		return err
	}
	return opaqueError(err)
}
