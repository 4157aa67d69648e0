package mandel

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Region within the complex plane. X is the real axis, Y the imaginary one.
type Region struct {
	Xmin, Xmax float64
	Ymin, Ymax float64
}

// Classic regions / landmarks in the Mandelbrot set
var (
	// Full view used as the starting point of a zoom session
	FullView = Region{
		Xmin: -2,
		Xmax: 1,
		Ymin: -1,
		Ymax: 1,
	}

	// Seahorse Valley – dense filaments and repeating “seahorse” curls
	SeahorseValley = Region{
		Xmin: -0.8,
		Xmax: -0.7,
		Ymin: 0.05,
		Ymax: 0.15,
	}

	// Elephant Valley – large bulb with trunk-like tendrils
	ElephantValley = Region{
		Xmin: 0.25,
		Xmax: 0.35,
		Ymin: -0.05,
		Ymax: 0.05,
	}

	// Spiral Minibrot – small Mandelbrot copy with tight spiral arms
	SpiralMinibrot = Region{
		Xmin: -0.7435,
		Xmax: -0.7420,
		Ymin: 0.1310,
		Ymax: 0.1325,
	}

	// Triple Spiral – threefold symmetric spiral structure
	TripleSpiral = Region{
		Xmin: -0.7480,
		Xmax: -0.7450,
		Ymin: 0.0950,
		Ymax: 0.0980,
	}

	// Valley of the Dragon – deep, highly detailed spiral filaments
	ValleyOfTheDragon = Region{
		Xmin: -0.7400,
		Xmax: -0.7350,
		Ymin: 0.1800,
		Ymax: 0.1850,
	}

	// Minibrot in a Mini-Spiral – self-similar Mandelbrot copy inside a spiral arm
	MinibrotInMiniSpiral = Region{
		Xmin: -1.7390,
		Xmax: -1.7375,
		Ymin: -0.0235,
		Ymax: -0.0220,
	}
)

var landmarks = map[string]Region{
	"full":          FullView,
	"seahorse":      SeahorseValley,
	"elephant":      ElephantValley,
	"spiral":        SpiralMinibrot,
	"triple-spiral": TripleSpiral,
	"dragon":        ValleyOfTheDragon,
	"mini-spiral":   MinibrotInMiniSpiral,
}

// Landmark returns the named preset region. Names are case insensitive.
func Landmark(name string) (Region, bool) {
	r, ok := landmarks[strings.ToLower(name)]
	return r, ok
}

// LandmarkNames returns the preset names in sorted order.
func LandmarkNames() []string {
	names := make([]string, 0, len(landmarks))
	for n := range landmarks {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Validate reports whether r is a finite, non-degenerate rectangle.
func (r Region) Validate() error {
	for _, v := range [...]float64{r.Xmin, r.Xmax, r.Ymin, r.Ymax} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite bound in %s", ErrInvalidRegion, r)
		}
	}
	if !(r.Xmin < r.Xmax) {
		return fmt.Errorf("%w: xmin %g must be less than xmax %g", ErrInvalidRegion, r.Xmin, r.Xmax)
	}
	if !(r.Ymin < r.Ymax) {
		return fmt.Errorf("%w: ymin %g must be less than ymax %g", ErrInvalidRegion, r.Ymin, r.Ymax)
	}
	return nil
}

func (r Region) Width() float64  { return r.Xmax - r.Xmin }
func (r Region) Height() float64 { return r.Ymax - r.Ymin }

// PointAt maps pixel (px, py) of a w×h grid onto the plane.
// The mapping is half-open: pixel 0 sits on the min bound and the last
// pixel one step short of the max bound. Row 0 is Ymin.
func (r Region) PointAt(px, py, w, h int) complex128 {
	re := r.Xmin + float64(px)*(r.Xmax-r.Xmin)/float64(w)
	im := r.Ymin + float64(py)*(r.Ymax-r.Ymin)/float64(h)
	return complex(re, im)
}

func (r Region) String() string {
	return fmt.Sprintf("[%g, %g]x[%g, %g]", r.Xmin, r.Xmax, r.Ymin, r.Ymax)
}

// Rectangle is a user selection given by two opposite corners in plane
// coordinates. The corners may come in any order.
type Rectangle struct {
	A, B complex128
}

// RegionFromCorners normalises a selection into a Region by sorting the
// corner coordinates. The result is validated.
func RegionFromCorners(a, b complex128) (Region, error) {
	r := Region{
		Xmin: math.Min(real(a), real(b)),
		Xmax: math.Max(real(a), real(b)),
		Ymin: math.Min(imag(a), imag(b)),
		Ymax: math.Max(imag(a), imag(b)),
	}
	if err := r.Validate(); err != nil {
		return Region{}, err
	}
	return r, nil
}

// Region normalises the selection; see RegionFromCorners.
func (rc Rectangle) Region() (Region, error) {
	return RegionFromCorners(rc.A, rc.B)
}
