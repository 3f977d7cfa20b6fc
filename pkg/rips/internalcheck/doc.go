// Package internalcheck holds static policy tests over the rips packages.
//
// The tests load the module with golang.org/x/tools/go/packages and fail on
// code that breaks the ownership rules of the native bindings: cgo and
// unsafe stay inside pkg/rips/internal/backend, and native references are
// released from one place only.
//
// # Internal Use Only
//
// The package has no API. Applications should use pkg/rips.
package internalcheck
