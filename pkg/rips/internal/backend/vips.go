//go:build cgo

package backend

/*
#cgo pkg-config: vips
#include <stdint.h>
#include <stdlib.h>
#include <vips/vips.h>

extern void ripsGoPostClose(uintptr_t handle);
extern void ripsGoLog(char *domain, int level, char *message);

static int rips_shutdown_done = 0;

static void rips_shutdown(void) {
	if (__atomic_exchange_n(&rips_shutdown_done, 1, __ATOMIC_SEQ_CST)) {
		return;
	}
	vips_shutdown();
}

static int rips_register_atexit(void) {
	return atexit(rips_shutdown);
}

static void rips_postclose(VipsImage *image, gpointer user_data) {
	ripsGoPostClose((uintptr_t) user_data);
}

static void rips_connect_postclose(VipsImage *image, uintptr_t handle) {
	g_signal_connect_data(image, "postclose", G_CALLBACK(rips_postclose),
		(gpointer) handle, NULL, G_CONNECT_AFTER);
}

static void rips_log(const gchar *domain, GLogLevelFlags level,
		const gchar *message, gpointer user_data) {
	ripsGoLog((char *) domain, (int) level, (char *) message);
}

static void rips_install_log_handler(void) {
	g_log_set_handler("VIPS",
		G_LOG_LEVEL_CRITICAL | G_LOG_LEVEL_WARNING | G_LOG_LEVEL_MESSAGE |
		G_LOG_LEVEL_INFO | G_LOG_LEVEL_DEBUG,
		rips_log, NULL);
}

// Fixed-arity shims over variadic entry points. Optional arguments arrive
// with a presence mask whose bit order is the parameter order, and every
// combination is spelled out as its own NULL-terminated call.

static VipsImage *rips_new_from_file(const char *path) {
	return vips_image_new_from_file(path, NULL);
}

static VipsImage *rips_new_from_buffer(const void *buf, size_t len, const char *options) {
	return vips_image_new_from_buffer(buf, len, options, NULL);
}

static int rips_resize(VipsImage *in, VipsImage **out, double scale,
		uint32_t mask, double vscale, int kernel) {
	switch (mask & 3) {
	case 0:
		return vips_resize(in, out, scale, NULL);
	case 1:
		return vips_resize(in, out, scale, "vscale", vscale, NULL);
	case 2:
		return vips_resize(in, out, scale, "kernel", (VipsKernel) kernel, NULL);
	default:
		return vips_resize(in, out, scale,
			"vscale", vscale, "kernel", (VipsKernel) kernel, NULL);
	}
}

static int rips_crop(VipsImage *in, VipsImage **out,
		int left, int top, int width, int height) {
	return vips_crop(in, out, left, top, width, height, NULL);
}

static int rips_rot(VipsImage *in, VipsImage **out, int angle) {
	return vips_rot(in, out, (VipsAngle) angle, NULL);
}

static int rips_write_to_file(VipsImage *in, const char *path) {
	return vips_image_write_to_file(in, path, NULL);
}

static int rips_write_to_buffer(VipsImage *in, const char *suffix,
		void **buf, size_t *size) {
	return vips_image_write_to_buffer(in, suffix, buf, size, NULL);
}
*/
import "C"

import (
	"errors"
	"strings"
	"unsafe"

	"github.com/hsiuhsiu/rips-go/pkg/rips/internal/vararg"
)

// ImageRef is an owned reference to a native VipsImage.
type ImageRef = *C.VipsImage

// Enumerations as defined by the linked libvips headers.
const (
	KernelNearest  = int(C.VIPS_KERNEL_NEAREST)
	KernelLinear   = int(C.VIPS_KERNEL_LINEAR)
	KernelCubic    = int(C.VIPS_KERNEL_CUBIC)
	KernelMitchell = int(C.VIPS_KERNEL_MITCHELL)
	KernelLanczos2 = int(C.VIPS_KERNEL_LANCZOS2)
	KernelLanczos3 = int(C.VIPS_KERNEL_LANCZOS3)

	AngleD0   = int(C.VIPS_ANGLE_D0)
	AngleD90  = int(C.VIPS_ANGLE_D90)
	AngleD180 = int(C.VIPS_ANGLE_D180)
	AngleD270 = int(C.VIPS_ANGLE_D270)

	FormatNotSet    = int(C.VIPS_FORMAT_NOTSET)
	FormatUchar     = int(C.VIPS_FORMAT_UCHAR)
	FormatChar      = int(C.VIPS_FORMAT_CHAR)
	FormatUshort    = int(C.VIPS_FORMAT_USHORT)
	FormatShort     = int(C.VIPS_FORMAT_SHORT)
	FormatUint      = int(C.VIPS_FORMAT_UINT)
	FormatInt       = int(C.VIPS_FORMAT_INT)
	FormatFloat     = int(C.VIPS_FORMAT_FLOAT)
	FormatComplex   = int(C.VIPS_FORMAT_COMPLEX)
	FormatDouble    = int(C.VIPS_FORMAT_DOUBLE)
	FormatDpComplex = int(C.VIPS_FORMAT_DPCOMPLEX)
)

// Init runs vips_init and installs the GLib log handler. It must be called
// at most once per process.
func Init(name string) error {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	if C.vips_init(cname) != 0 {
		return captureError("vips_init")
	}
	C.rips_install_log_handler()
	return nil
}

// LeakSet toggles libvips leak checking.
func LeakSet(on bool) {
	var v C.gboolean
	if on {
		v = 1
	}
	C.vips_leak_set(v)
}

// RegisterShutdown schedules Shutdown to run when the process exits through
// libc.
func RegisterShutdown() error {
	if C.rips_register_atexit() != 0 {
		return errors.New("rips/internal/backend: atexit registration failed")
	}
	return nil
}

// Shutdown runs vips_shutdown. Repeated calls, including the atexit hook,
// do nothing.
func Shutdown() {
	C.rips_shutdown()
}

// Version returns the version string from the native library.
func Version() string {
	return C.GoString(C.vips_version_string())
}

// captureError copies the libvips error buffer and clears it. It must run
// right after the failing call, before anything else can touch the buffer.
func captureError(op string) error {
	e := &NativeError{Op: op}
	if msg := C.vips_error_buffer(); msg != nil {
		if s := strings.TrimRight(C.GoString(msg), "\n"); s != "" {
			e.Message = strings.ToValidUTF8(s, "\uFFFD")
			e.HasMessage = true
		}
	}
	C.vips_error_clear()
	return e
}

// imageResult applies the 0/nonzero contract to an operation writing its
// output through an out parameter.
func imageResult(op string, rc C.int, out *C.VipsImage) (ImageRef, error) {
	if rc != 0 || out == nil {
		err := captureError(op)
		if out != nil {
			C.g_object_unref(C.gpointer(unsafe.Pointer(out)))
		}
		return nil, err
	}
	return out, nil
}

// takeBytes claims a GLib allocation: the bytes are copied into Go memory
// and the native block is freed. A nil buf yields nil.
func takeBytes(buf unsafe.Pointer, size C.size_t) []byte {
	if buf == nil {
		return nil
	}
	defer C.g_free(C.gpointer(buf))

	out := make([]byte, int(size))
	copy(out, unsafe.Slice((*byte)(buf), int(size)))
	return out
}

// Unref drops the reference held by img.
func Unref(img ImageRef) {
	if img == nil {
		return
	}
	C.g_object_unref(C.gpointer(unsafe.Pointer(img)))
}

func Width(img ImageRef) int  { return int(C.vips_image_get_width(img)) }
func Height(img ImageRef) int { return int(C.vips_image_get_height(img)) }
func Bands(img ImageRef) int  { return int(C.vips_image_get_bands(img)) }
func Format(img ImageRef) int { return int(C.vips_image_get_format(img)) }

// NewFromFile opens path; the loader is picked from the file contents.
func NewFromFile(path string) (ImageRef, error) {
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))

	img := C.rips_new_from_file(cpath)
	if img == nil {
		return nil, captureError("vips_image_new_from_file")
	}
	return img, nil
}

// NewFromMemory wraps raw pixel data without copying. buf stays pinned until
// libvips emits postclose for the returned image.
func NewFromMemory(buf []byte, width, height, bands, format int) (ImageRef, error) {
	h := retain(buf)

	var data unsafe.Pointer
	if len(buf) > 0 {
		data = unsafe.Pointer(&buf[0])
	}
	img := C.vips_image_new_from_memory(data, C.size_t(len(buf)),
		C.int(width), C.int(height), C.int(bands), C.VipsBandFormat(format))
	if img == nil {
		err := captureError("vips_image_new_from_memory")
		// No image exists to emit postclose, so the buffer is ours again.
		release(h)
		return nil, err
	}
	C.rips_connect_postclose(img, C.uintptr_t(h))
	return img, nil
}

// NewFromBuffer decodes an encoded image held in buf. libvips reads buf
// lazily, so it is retained exactly like NewFromMemory.
func NewFromBuffer(buf []byte, options string) (ImageRef, error) {
	coptions := C.CString(options)
	defer C.free(unsafe.Pointer(coptions))

	h := retain(buf)

	var data unsafe.Pointer
	if len(buf) > 0 {
		data = unsafe.Pointer(&buf[0])
	}
	img := C.rips_new_from_buffer(data, C.size_t(len(buf)), coptions)
	if img == nil {
		err := captureError("vips_image_new_from_buffer")
		release(h)
		return nil, err
	}
	C.rips_connect_postclose(img, C.uintptr_t(h))
	return img, nil
}

// Resize calls vips_resize. Absent optional arguments are left out of the
// native argument list.
func Resize(in ImageRef, scale float64, vscale vararg.Optional[float64], kernel vararg.Optional[int]) (ImageRef, error) {
	vs := vararg.Key("vscale", vscale, 0)
	k := vararg.Key("kernel", kernel, 0)
	mask := vararg.Mask(vs, k)

	var out *C.VipsImage
	rc := C.rips_resize(in, &out, C.double(scale), C.uint32_t(mask),
		C.double(vs.Value()), C.int(k.Value()))
	img, err := imageResult("vips_resize", rc, out)
	if nerr, ok := err.(*NativeError); ok {
		nerr.Args = vararg.Keys(vs, k)
	}
	return img, err
}

// Crop calls vips_crop.
func Crop(in ImageRef, left, top, width, height int) (ImageRef, error) {
	var out *C.VipsImage
	rc := C.rips_crop(in, &out, C.int(left), C.int(top), C.int(width), C.int(height))
	return imageResult("vips_crop", rc, out)
}

// Rotate calls vips_rot.
func Rotate(in ImageRef, angle int) (ImageRef, error) {
	var out *C.VipsImage
	rc := C.rips_rot(in, &out, C.int(angle))
	return imageResult("vips_rot", rc, out)
}

// WriteToFile saves in to path; the suffix picks the saver.
func WriteToFile(in ImageRef, path string) error {
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))

	if C.rips_write_to_file(in, cpath) != 0 {
		return captureError("vips_image_write_to_file")
	}
	return nil
}

// WriteToBuffer encodes in with the saver selected by suffix, e.g.
// ".png[compression=9]".
func WriteToBuffer(in ImageRef, suffix string) ([]byte, error) {
	csuffix := C.CString(suffix)
	defer C.free(unsafe.Pointer(csuffix))

	var buf unsafe.Pointer
	var size C.size_t
	rc := C.rips_write_to_buffer(in, csuffix, &buf, &size)

	// The allocation is claimed whatever rc says.
	data := takeBytes(buf, size)
	if rc != 0 {
		return nil, captureError("vips_image_write_to_buffer")
	}
	return data, nil
}

// WriteToMemory renders in to a raw, uncompressed pixel array.
func WriteToMemory(in ImageRef) ([]byte, error) {
	var size C.size_t
	mem := C.vips_image_write_to_memory(in, &size)
	if mem == nil {
		return nil, captureError("vips_image_write_to_memory")
	}
	return takeBytes(mem, size), nil
}
