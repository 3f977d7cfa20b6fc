package vararg

import "fmt"

// MaxArgs is the number of optional arguments one call site may declare.
const MaxArgs = 32

// Optional holds a value that may be absent. The zero value is absent.
type Optional[T any] struct {
	value T
	ok    bool
}

// Some returns a present Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, ok: true}
}

// None returns an absent Optional.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.ok
}

// Present reports whether the value is set.
func (o Optional[T]) Present() bool {
	return o.ok
}

// Or returns the value if present, otherwise def.
func (o Optional[T]) Or(def T) T {
	if o.ok {
		return o.value
	}
	return def
}

func (o Optional[T]) String() string {
	if !o.ok {
		return "None"
	}
	return fmt.Sprintf("Some(%v)", o.value)
}

// Arg is one optional keyed argument of a variadic native call.
type Arg interface {
	Key() string
	Present() bool
}

// Keyed pairs an optional value with the key libvips knows it by and the
// placeholder passed to the shim when the value is absent.
type Keyed[T any] struct {
	key string
	opt Optional[T]
	def T
}

// Key declares an optional keyed argument.
func Key[T any](key string, v Optional[T], def T) Keyed[T] {
	return Keyed[T]{key: key, opt: v, def: def}
}

func (k Keyed[T]) Key() string   { return k.key }
func (k Keyed[T]) Present() bool { return k.opt.ok }

// Value returns the argument value, or the placeholder when absent. The shim
// never forwards the placeholder to libvips.
func (k Keyed[T]) Value() T {
	return k.opt.Or(k.def)
}

// Mask returns the presence mask for args in declared order. It panics if a
// key is declared twice or more than MaxArgs arguments are declared; both are
// programming errors at the call site.
func Mask(args ...Arg) uint32 {
	if len(args) > MaxArgs {
		panic(fmt.Sprintf("vararg: %d optional arguments declared, at most %d supported", len(args), MaxArgs))
	}
	var mask uint32
	seen := make(map[string]struct{}, len(args))
	for i, a := range args {
		k := a.Key()
		if _, dup := seen[k]; dup {
			panic(fmt.Sprintf("vararg: key %q declared twice", k))
		}
		seen[k] = struct{}{}
		if a.Present() {
			mask |= 1 << uint(i)
		}
	}
	return mask
}

// Keys lists the keys of the present arguments in declared order, which is
// the order the shim passes them to libvips.
func Keys(args ...Arg) []string {
	var keys []string
	for _, a := range args {
		if a.Present() {
			keys = append(keys, a.Key())
		}
	}
	return keys
}
