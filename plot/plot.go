// Package plot turns escape-count grids into images and maps display
// coordinates back onto the complex plane.
//
// Grids store row 0 at the lowest imaginary value. Images put row 0 at
// the top, so Image flips the grid vertically and View assumes the same
// top-down orientation: increasing imaginary part renders upward.
package plot

import (
	"image"
	"math"
	"strconv"

	mandel "github.com/marben/mandelzoom"
	"github.com/marben/mandelzoom/palette"
)

// Image renders g with pal. Pixel (x, y) shows cell (x, g.Height-1-y).
func Image(g *mandel.Grid, pal palette.Palette) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, g.Width, g.Height))
	for y := 0; y < g.Height; y++ {
		row := g.Height - 1 - y
		for x := 0; x < g.Width; x++ {
			img.SetRGBA(x, y, pal.Color(g.At(x, row), g.MaxIter))
		}
	}
	return img
}

// View maps a Width×Height display viewport onto Region.
// Display row 0 is the top edge (Ymax); column 0 is Xmin.
type View struct {
	Region        mandel.Region
	Width, Height int
}

// Point returns the plane point under display position (x, y).
// Fractional positions are allowed; (Width, Height) is the bottom-right corner.
func (v View) Point(x, y float64) complex128 {
	r := v.Region
	re := r.Xmin + x*(r.Xmax-r.Xmin)/float64(v.Width)
	im := r.Ymax - y*(r.Ymax-r.Ymin)/float64(v.Height)
	return complex(re, im)
}

// Pixel is the inverse of Point.
func (v View) Pixel(c complex128) (x, y float64) {
	r := v.Region
	x = (real(c) - r.Xmin) * float64(v.Width) / (r.Xmax - r.Xmin)
	y = (r.Ymax - imag(c)) * float64(v.Height) / (r.Ymax - r.Ymin)
	return x, y
}

// Selection converts two display corners into a plane rectangle.
// Both corners are treated inclusively, so a drag from cell a to cell b
// covers both cells.
func (v View) Selection(x0, y0, x1, y1 int) mandel.Rectangle {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	return mandel.Rectangle{
		A: v.Point(float64(x0), float64(y0)),
		B: v.Point(float64(x1+1), float64(y1+1)),
	}
}

// Tick is an axis label: a display position and the plane value there.
type Tick struct {
	Pos   int
	Value float64
}

// XTicks places a tick every `every` columns across a width-pixel axis.
// Values follow the sampler's mapping: xmin + pos*(xmax-xmin)/width.
func XTicks(r mandel.Region, width, every int) []Tick {
	if width <= 0 || every <= 0 {
		return nil
	}
	var ticks []Tick
	for pos := 0; pos < width; pos += every {
		ticks = append(ticks, Tick{
			Pos:   pos,
			Value: r.Xmin + float64(pos)*(r.Xmax-r.Xmin)/float64(width),
		})
	}
	return ticks
}

// YTicks places a tick every `every` grid rows, counted from the bottom.
// Pos is the top-down display row; Value is ymin + row*(ymax-ymin)/height.
func YTicks(r mandel.Region, height, every int) []Tick {
	if height <= 0 || every <= 0 {
		return nil
	}
	var ticks []Tick
	for row := 0; row < height; row += every {
		ticks = append(ticks, Tick{
			Pos:   height - 1 - row,
			Value: r.Ymin + float64(row)*(r.Ymax-r.Ymin)/float64(height),
		})
	}
	return ticks
}

// FormatTick formats v with just enough digits to tell neighbouring
// ticks apart when they are step apart.
func FormatTick(v, step float64) string {
	prec := 2
	if step > 0 && !math.IsInf(step, 0) {
		prec = max(2, int(math.Ceil(-math.Log10(math.Abs(step))))+1)
	}
	prec = min(prec, 15)
	if v == 0 {
		v = 0 // drop the sign of -0
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}
