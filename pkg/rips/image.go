package rips

import (
	"io"
	"runtime"
	"sync"

	"github.com/hsiuhsiu/rips-go/pkg/rips/internal/backend"
)

// Image owns one native libvips image reference. Operations never modify
// the receiver; each returns a new Image that must be closed separately.
type Image struct {
	mu  sync.RWMutex
	ref backend.ImageRef
	g   *initGuard
}

func newImage(ref backend.ImageRef) *Image {
	img := &Image{ref: ref, g: &guard}
	runtime.SetFinalizer(img, (*Image).Close)
	return img
}

// construct runs a native constructor fenced against Shutdown.
func construct(fn func() (backend.ImageRef, error)) (*Image, error) {
	var ref backend.ImageRef
	err := guard.enter(func() error {
		var err error
		ref, err = fn()
		return err
	})
	if err != nil {
		return nil, remapError(err)
	}
	return newImage(ref), nil
}

func (i *Image) fence() *initGuard {
	if i.g == nil {
		return &guard
	}
	return i.g
}

// NewImageFromFile loads the image at path. The loader is chosen from the
// file contents.
func NewImageFromFile(path string) (*Image, error) {
	if err := Initialize(); err != nil {
		return nil, err
	}
	if err := checkString(path); err != nil {
		return nil, err
	}

	return construct(func() (backend.ImageRef, error) {
		return backend.NewFromFile(path)
	})
}

// NewImageFromMemory wraps raw pixel data laid out band-interleaved, row by
// row. buf is not copied: it belongs to the image pipeline until libvips
// signals it is done with it, and must not be modified in the meantime.
func NewImageFromMemory(buf []byte, width, height, bands int, format BandFormat) (*Image, error) {
	if err := Initialize(); err != nil {
		return nil, err
	}

	return construct(func() (backend.ImageRef, error) {
		return backend.NewFromMemory(buf, width, height, bands, int(format))
	})
}

// NewImageFromBuffer decodes an encoded image (PNG, JPEG, ...) held in buf.
// options is a libvips load option string such as "[shrink=2]" and may be
// empty. As with NewImageFromMemory, buf is retained without copying.
func NewImageFromBuffer(buf []byte, options string) (*Image, error) {
	if err := Initialize(); err != nil {
		return nil, err
	}
	if err := checkString(options); err != nil {
		return nil, err
	}

	return construct(func() (backend.ImageRef, error) {
		return backend.NewFromBuffer(buf, options)
	})
}

// NewImageFromReader reads r to EOF and decodes the result.
func NewImageFromReader(r io.Reader, options string) (*Image, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, ioError(err)
	}
	return NewImageFromBuffer(buf, options)
}

// Close releases the native reference. It waits for operations in flight on
// the same Image. Calling Close more than once is safe. After Shutdown the
// reference is dropped without calling into libvips.
func (i *Image) Close() error {
	if i == nil {
		return nil
	}
	i.mu.Lock()
	ref := i.ref
	i.ref = nil
	i.mu.Unlock()

	if ref == nil {
		return nil
	}
	runtime.SetFinalizer(i, nil)
	_ = i.fence().enter(func() error {
		backend.Unref(ref)
		return nil
	})
	return nil
}

// use runs fn with the native reference held open. It fails with
// ErrShutdown after Shutdown and with ErrClosed after Close.
func (i *Image) use(fn func(backend.ImageRef) error) error {
	if i == nil {
		return opaqueError(ErrClosed)
	}
	return i.fence().enter(func() error {
		i.mu.RLock()
		defer i.mu.RUnlock()
		if i.ref == nil {
			return opaqueError(ErrClosed)
		}
		err := fn(i.ref)
		runtime.KeepAlive(i)
		return err
	})
}

func (i *Image) query(fn func(backend.ImageRef) int) int {
	var v int
	_ = i.use(func(ref backend.ImageRef) error {
		v = fn(ref)
		return nil
	})
	return v
}

// Width returns the width in pixels, or 0 for a closed image.
func (i *Image) Width() int { return i.query(backend.Width) }

// Height returns the height in pixels, or 0 for a closed image.
func (i *Image) Height() int { return i.query(backend.Height) }

// Bands returns the number of bands, or 0 for a closed image.
func (i *Image) Bands() int { return i.query(backend.Bands) }

// Format returns the band format, or FormatNotSet for a closed image.
func (i *Image) Format() BandFormat {
	f := FormatNotSet
	_ = i.use(func(ref backend.ImageRef) error {
		f = BandFormat(backend.Format(ref))
		return nil
	})
	return f
}

func (i *Image) derive(fn func(backend.ImageRef) (backend.ImageRef, error)) (*Image, error) {
	var out backend.ImageRef
	err := i.use(func(ref backend.ImageRef) error {
		var err error
		out, err = fn(ref)
		return err
	})
	if err != nil {
		return nil, remapError(err)
	}
	return newImage(out), nil
}

// Resize scales the image by scale. WithVScale and WithKernel add the
// corresponding optional libvips arguments.
func (i *Image) Resize(scale float64, opts ...ResizeOption) (*Image, error) {
	var a resizeArgs
	for _, o := range opts {
		o(&a)
	}
	return i.resize(scale, a)
}

func (i *Image) resize(scale float64, a resizeArgs) (*Image, error) {
	return i.derive(func(ref backend.ImageRef) (backend.ImageRef, error) {
		return backend.Resize(ref, scale, a.vscale, a.kernel)
	})
}

// ResizeTo scales the image to the given size. A width or height of 0 is
// treated as not given: with one dimension the aspect ratio is kept, with
// neither the size is unchanged. The image must have positive dimensions.
// WithKernel is honoured; the vertical scale is always derived from height.
func (i *Image) ResizeTo(width, height int, opts ...ResizeOption) (*Image, error) {
	var plan scalePlan
	if err := i.use(func(ref backend.ImageRef) error {
		plan = planResize(backend.Width(ref), backend.Height(ref), width, height)
		return nil
	}); err != nil {
		return nil, err
	}

	var a resizeArgs
	for _, o := range opts {
		o(&a)
	}
	a.vscale = plan.vscale
	return i.resize(plan.scale, a)
}

// Crop extracts the given rectangle. A rectangle that does not fit inside
// the image is an error.
func (i *Image) Crop(left, top, width, height int) (*Image, error) {
	return i.derive(func(ref backend.ImageRef) (backend.ImageRef, error) {
		return backend.Crop(ref, left, top, width, height)
	})
}

// Rotate rotates the image clockwise by a multiple of 90 degrees.
func (i *Image) Rotate(angle Angle) (*Image, error) {
	return i.derive(func(ref backend.ImageRef) (backend.ImageRef, error) {
		return backend.Rotate(ref, int(angle))
	})
}

// WriteToFile saves the image. The file suffix selects the format, and save
// options may be appended in brackets, e.g. "out.jpg[Q=90]".
func (i *Image) WriteToFile(path string) error {
	if err := checkString(path); err != nil {
		return err
	}
	return remapError(i.use(func(ref backend.ImageRef) error {
		return backend.WriteToFile(ref, path)
	}))
}

// ToBuffer encodes the image in the format selected by suffix, e.g. ".png"
// or ".webp[Q=80]".
func (i *Image) ToBuffer(suffix string) ([]byte, error) {
	if err := checkString(suffix); err != nil {
		return nil, err
	}
	var out []byte
	err := i.use(func(ref backend.ImageRef) error {
		var err error
		out, err = backend.WriteToBuffer(ref, suffix)
		return err
	})
	if err != nil {
		return nil, remapError(err)
	}
	return out, nil
}

// ToBytes renders the image to raw pixels in its own band format, suitable
// for NewImageFromMemory with the same Width, Height, Bands and Format.
func (i *Image) ToBytes() ([]byte, error) {
	var out []byte
	err := i.use(func(ref backend.ImageRef) error {
		var err error
		out, err = backend.WriteToMemory(ref)
		return err
	})
	if err != nil {
		return nil, remapError(err)
	}
	return out, nil
}

// EncodeTo encodes the image like ToBuffer and writes the result to w.
func (i *Image) EncodeTo(w io.Writer, suffix string) (int64, error) {
	buf, err := i.ToBuffer(suffix)
	if err != nil {
		return 0, err
	}
	n, err := w.Write(buf)
	if err != nil {
		return int64(n), ioError(err)
	}
	return int64(n), nil
}

// LiveBuffers reports how many caller buffers are still retained by native
// images created with NewImageFromMemory or NewImageFromBuffer.
func LiveBuffers() int {
	return backend.Retained()
}
