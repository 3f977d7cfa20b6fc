package rips

import "github.com/hsiuhsiu/rips-go/pkg/rips/internal/vararg"

// ResizeOption sets an optional argument of Resize.
type ResizeOption func(*resizeArgs)

type resizeArgs struct {
	vscale vararg.Optional[float64]
	kernel vararg.Optional[int]
}

// WithVScale scales the vertical axis by v instead of the main scale.
func WithVScale(v float64) ResizeOption {
	return func(a *resizeArgs) { a.vscale = vararg.Some(v) }
}

// WithKernel selects the resampling kernel. libvips uses lanczos3 when none
// is given.
func WithKernel(k Kernel) ResizeOption {
	return func(a *resizeArgs) { a.kernel = vararg.Some(int(k)) }
}

// scalePlan is the argument set ResizeTo passes to Resize.
type scalePlan struct {
	scale  float64
	vscale vararg.Optional[float64]
}

// planResize derives scale factors for a target size. A non-positive target
// dimension counts as not given. The source dimensions must be positive
// whenever the matching target is given.
func planResize(srcWidth, srcHeight, width, height int) scalePlan {
	switch {
	case width > 0 && height > 0:
		h := float64(width) / float64(srcWidth)
		v := float64(height) / float64(srcHeight)
		if h == v {
			return scalePlan{scale: h}
		}
		return scalePlan{scale: h, vscale: vararg.Some(v)}
	case width > 0:
		return scalePlan{scale: float64(width) / float64(srcWidth)}
	case height > 0:
		return scalePlan{scale: float64(height) / float64(srcHeight)}
	default:
		return scalePlan{scale: 1}
	}
}
