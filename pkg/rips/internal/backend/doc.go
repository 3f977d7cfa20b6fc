// Package backend hosts the thin cgo layer that links the Go API to libvips.
// It is the only package in the module that imports "C". The real
// implementation lives behind the cgo build tag so that the rest of the
// repository compiles, and reports ErrNotBuilt, without a C toolchain.
//
// Ownership rules kept by this layer:
//
//   - every *VipsImage returned to callers carries exactly one reference,
//     released with Unref;
//   - caller buffers handed to libvips without copying are pinned and held in
//     a registry until libvips emits "postclose" for the image using them;
//   - memory allocated by libvips for encoded output is copied into Go memory
//     and returned to GLib with g_free before the status code is examined.
package backend
