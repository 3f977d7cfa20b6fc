package rips

import (
	"fmt"
	"strings"

	"github.com/hsiuhsiu/rips-go/pkg/rips/internal/backend"
)

// Kernel selects the resampling kernel used by Resize. Values are those of
// the linked libvips VipsKernel enumeration.
type Kernel int

const (
	KernelNearest  Kernel = Kernel(backend.KernelNearest)
	KernelLinear   Kernel = Kernel(backend.KernelLinear)
	KernelCubic    Kernel = Kernel(backend.KernelCubic)
	KernelMitchell Kernel = Kernel(backend.KernelMitchell)
	KernelLanczos2 Kernel = Kernel(backend.KernelLanczos2)
	KernelLanczos3 Kernel = Kernel(backend.KernelLanczos3)
)

var kernelNames = []struct {
	k    Kernel
	name string
}{
	{KernelNearest, "nearest"},
	{KernelLinear, "linear"},
	{KernelCubic, "cubic"},
	{KernelMitchell, "mitchell"},
	{KernelLanczos2, "lanczos2"},
	{KernelLanczos3, "lanczos3"},
}

func (k Kernel) String() string {
	for _, e := range kernelNames {
		if e.k == k {
			return e.name
		}
	}
	return fmt.Sprintf("Kernel(%d)", int(k))
}

// ParseKernel parses a kernel nickname such as "lanczos3".
func ParseKernel(s string) (Kernel, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, e := range kernelNames {
		if e.name == s {
			return e.k, nil
		}
	}
	return 0, fmt.Errorf("rips: unknown kernel %q", s)
}

// Angle is a fixed rotation, clockwise, as in the VipsAngle enumeration.
type Angle int

const (
	AngleD0   Angle = Angle(backend.AngleD0)
	AngleD90  Angle = Angle(backend.AngleD90)
	AngleD180 Angle = Angle(backend.AngleD180)
	AngleD270 Angle = Angle(backend.AngleD270)
)

var angleDegrees = []struct {
	a   Angle
	deg int
}{
	{AngleD0, 0},
	{AngleD90, 90},
	{AngleD180, 180},
	{AngleD270, 270},
}

// Degrees returns the clockwise rotation in degrees, or -1 for a value
// outside the enumeration.
func (a Angle) Degrees() int {
	for _, e := range angleDegrees {
		if e.a == a {
			return e.deg
		}
	}
	return -1
}

func (a Angle) String() string {
	if d := a.Degrees(); d >= 0 {
		return fmt.Sprintf("d%d", d)
	}
	return fmt.Sprintf("Angle(%d)", int(a))
}

// ParseAngle accepts "90", "d90" and the other multiples of 90 below 360.
func ParseAngle(s string) (Angle, error) {
	t := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "d")
	for _, e := range angleDegrees {
		if fmt.Sprint(e.deg) == t {
			return e.a, nil
		}
	}
	return 0, fmt.Errorf("rips: unsupported angle %q", s)
}

// AngleFromDegrees converts a clockwise rotation in degrees to an Angle.
func AngleFromDegrees(deg int) (Angle, error) {
	for _, e := range angleDegrees {
		if e.deg == deg {
			return e.a, nil
		}
	}
	return 0, fmt.Errorf("rips: unsupported angle %d", deg)
}

// BandFormat is the pixel format of each band, as in VipsBandFormat.
type BandFormat int

const (
	FormatNotSet    BandFormat = BandFormat(backend.FormatNotSet)
	FormatUchar     BandFormat = BandFormat(backend.FormatUchar)
	FormatChar      BandFormat = BandFormat(backend.FormatChar)
	FormatUshort    BandFormat = BandFormat(backend.FormatUshort)
	FormatShort     BandFormat = BandFormat(backend.FormatShort)
	FormatUint      BandFormat = BandFormat(backend.FormatUint)
	FormatInt       BandFormat = BandFormat(backend.FormatInt)
	FormatFloat     BandFormat = BandFormat(backend.FormatFloat)
	FormatComplex   BandFormat = BandFormat(backend.FormatComplex)
	FormatDouble    BandFormat = BandFormat(backend.FormatDouble)
	FormatDpComplex BandFormat = BandFormat(backend.FormatDpComplex)
)

var formatNames = []struct {
	f    BandFormat
	name string
	size int
}{
	{FormatNotSet, "notset", 0},
	{FormatUchar, "uchar", 1},
	{FormatChar, "char", 1},
	{FormatUshort, "ushort", 2},
	{FormatShort, "short", 2},
	{FormatUint, "uint", 4},
	{FormatInt, "int", 4},
	{FormatFloat, "float", 4},
	{FormatComplex, "complex", 8},
	{FormatDouble, "double", 8},
	{FormatDpComplex, "dpcomplex", 16},
}

func (f BandFormat) String() string {
	for _, e := range formatNames {
		if e.f == f {
			return e.name
		}
	}
	return fmt.Sprintf("BandFormat(%d)", int(f))
}

// Size returns the number of bytes one band of one pixel occupies, or 0 when
// the format is unknown.
func (f BandFormat) Size() int {
	for _, e := range formatNames {
		if e.f == f {
			return e.size
		}
	}
	return 0
}

// ParseBandFormat parses a format nickname such as "uchar" or "float".
func ParseBandFormat(s string) (BandFormat, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, e := range formatNames {
		if e.name == s {
			return e.f, nil
		}
	}
	return FormatNotSet, fmt.Errorf("rips: unknown band format %q", s)
}
