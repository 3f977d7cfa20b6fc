// Package vararg is the Go half of the variadic call bridge.
//
// libvips operations take a fixed prefix of required arguments followed by a
// NULL-terminated list of ("name", value) pairs. cgo cannot call C variadic
// functions, so every call site in the backend has a C shim with a fixed
// signature that switches over a presence mask and issues one fully spelled
// out variadic call per combination. This package builds that mask.
//
// Optional arguments are declared in the same order as the shim's parameters:
//
//	mask := vararg.Mask(
//	    vararg.Key("vscale", vscale, 0),
//	    vararg.Key("kernel", kernel, 0),
//	)
//
// Bit i of the mask is set when the i-th declared argument is present. No
// list is built at runtime; the mask only selects one of the precompiled
// call forms.
package vararg
