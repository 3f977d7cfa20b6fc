// Package rips is a safe Go interface to the libvips image-processing
// library.
//
// An Image owns exactly one native image reference. Every operation
// (Resize, Crop, Rotate, ...) returns a new Image or an *Error; the source is
// left untouched. Close releases the native reference. A finalizer is set as
// a safety net, but explicit cleanup is recommended:
//
//	img, err := rips.NewImageFromFile("in.jpg")
//	if err != nil {
//	    return err
//	}
//	defer img.Close()
//
//	thumb, err := img.ResizeTo(200, 0)
//	if err != nil {
//	    return err
//	}
//	defer thumb.Close()
//
//	return thumb.WriteToFile("thumb.png")
//
// # Initialization
//
// libvips is initialized once per process, lazily, by the first constructor.
// Call InitializeWithOptions before creating any image to set the program
// name, leak checking or the logger; options passed after first use have no
// effect. Shutdown tears libvips down and is terminal.
//
// # Buffers
//
// NewImageFromMemory and NewImageFromBuffer take ownership of the caller's
// slice without copying it. The slice is kept alive, and must not be
// modified, until libvips reports that it has finished reading it, which
// happens after the last Image (and any pipeline derived from it) is
// released.
//
// # Concurrency
//
// Images may be read and transformed from multiple goroutines. Close waits
// for calls in flight on the same Image; calls made after it return
// ErrClosed. Shutdown likewise waits for in-flight calls, after which every
// operation returns ErrShutdown. Calls block until libvips returns; there is
// no cancellation.
//
// The package compiles without cgo; every constructor then fails with
// ErrNotBuilt.
package rips
