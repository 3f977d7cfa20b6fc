//go:build !cgo

package backend

import (
	"unsafe"

	"github.com/hsiuhsiu/rips-go/pkg/rips/internal/vararg"
)

// Stub implementations for non-cgo builds. They allow the module to compile
// but report ErrNotBuilt when called.

// ImageRef is an owned reference to a native VipsImage.
type ImageRef = unsafe.Pointer

// Enumeration values of libvips 8.x.
const (
	KernelNearest  = 0
	KernelLinear   = 1
	KernelCubic    = 2
	KernelMitchell = 3
	KernelLanczos2 = 4
	KernelLanczos3 = 5

	AngleD0   = 0
	AngleD90  = 1
	AngleD180 = 2
	AngleD270 = 3

	FormatNotSet    = -1
	FormatUchar     = 0
	FormatChar      = 1
	FormatUshort    = 2
	FormatShort     = 3
	FormatUint      = 4
	FormatInt       = 5
	FormatFloat     = 6
	FormatComplex   = 7
	FormatDouble    = 8
	FormatDpComplex = 9
)

func Init(string) error       { return ErrNotBuilt }
func LeakSet(bool)            {}
func RegisterShutdown() error { return ErrNotBuilt }
func Shutdown()               {}
func Version() string         { return "" }
func Unref(ImageRef)          {}
func Width(ImageRef) int      { return 0 }
func Height(ImageRef) int     { return 0 }
func Bands(ImageRef) int      { return 0 }
func Format(ImageRef) int     { return FormatNotSet }

func NewFromFile(string) (ImageRef, error) {
	return nil, ErrNotBuilt
}

func NewFromMemory([]byte, int, int, int, int) (ImageRef, error) {
	return nil, ErrNotBuilt
}

func NewFromBuffer([]byte, string) (ImageRef, error) {
	return nil, ErrNotBuilt
}

func Resize(ImageRef, float64, vararg.Optional[float64], vararg.Optional[int]) (ImageRef, error) {
	return nil, ErrNotBuilt
}

func Crop(ImageRef, int, int, int, int) (ImageRef, error) {
	return nil, ErrNotBuilt
}

func Rotate(ImageRef, int) (ImageRef, error) {
	return nil, ErrNotBuilt
}

func WriteToFile(ImageRef, string) error {
	return ErrNotBuilt
}

func WriteToBuffer(ImageRef, string) ([]byte, error) {
	return nil, ErrNotBuilt
}

func WriteToMemory(ImageRef) ([]byte, error) {
	return nil, ErrNotBuilt
}
