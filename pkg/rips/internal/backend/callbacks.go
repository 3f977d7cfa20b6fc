//go:build cgo

package backend

// Functions exported to C. This file must keep its preamble free of
// definitions; the trampolines calling these live in vips.go.

/*
#include <stdint.h>
*/
import "C"

//export ripsGoPostClose
func ripsGoPostClose(handle C.uintptr_t) {
	release(uintptr(handle))
}

//export ripsGoLog
func ripsGoLog(domain *C.char, level C.int, message *C.char) {
	emitLog(C.GoString(domain), int(level), C.GoString(message))
}
