// Package palette maps escape counts to colors.
package palette

import (
	"fmt"
	"image/color"
	"math"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Palette maps an escape count in [0, maxIter] to a color.
type Palette interface {
	Color(count, maxIter int) color.RGBA
}

// Default is the palette used when none is configured.
const Default = "jet"

const tableSize = 256

var black = color.RGBA{A: 255}

var builders = map[string]func() Palette{
	"jet": func() Palette {
		// matplotlib's jet: interior gets the top of the scale like any other count
		return newGradient(false, colorful.Color.BlendRgb,
			"#00007f", "#0000ff", "#007fff", "#00ffff", "#7fff7f", "#ffff00", "#ff7f00", "#ff0000", "#7f0000")
	},
	"gray": func() Palette {
		return newGradient(true, colorful.Color.BlendRgb, "#000000", "#ffffff")
	},
	"fire": func() Palette {
		return newGradient(true, colorful.Color.BlendHcl, "#000000", "#7f0000", "#ff4500", "#ffd700", "#ffffe0")
	},
	"ocean": func() Palette {
		return newGradient(true, colorful.Color.BlendLab, "#000814", "#001d3d", "#0077b6", "#48cae4", "#caf0f8")
	},
	"hsv": func() Palette {
		return newCycle(50)
	},
}

// New returns the named palette. Names are case insensitive.
func New(name string) (Palette, error) {
	b, ok := builders[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown palette %q (known: %s)", name, strings.Join(Names(), ", "))
	}
	return b(), nil
}

// Names returns the known palette names in sorted order.
func Names() []string {
	names := make([]string, 0, len(builders))
	for n := range builders {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Gradient spreads a list of color stops over [0, maxIter].
type Gradient struct {
	table       [tableSize]color.RGBA
	blackInside bool
}

type blendFunc func(a, b colorful.Color, t float64) colorful.Color

func newGradient(blackInside bool, blend blendFunc, stops ...string) *Gradient {
	cs := make([]colorful.Color, len(stops))
	for i, s := range stops {
		cs[i] = mustHex(s)
	}

	g := &Gradient{blackInside: blackInside}
	segments := float64(len(cs) - 1)
	for i := range g.table {
		t := float64(i) / float64(tableSize-1) * segments
		lo := int(math.Floor(t))
		if lo >= len(cs)-1 {
			lo = len(cs) - 2
		}
		c := blend(cs[lo], cs[lo+1], t-float64(lo)).Clamped()
		r, gg, b := c.RGB255()
		g.table[i] = color.RGBA{R: r, G: gg, B: b, A: 255}
	}
	return g
}

// mustHex parses a built-in "#rrggbb" stop.
func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(fmt.Sprintf("palette: bad color stop %q: %v", s, err))
	}
	return c
}

func (g *Gradient) Color(count, maxIter int) color.RGBA {
	if maxIter <= 0 {
		return black
	}
	if count >= maxIter && g.blackInside {
		return black
	}
	count = max(0, min(count, maxIter))
	return g.table[count*(tableSize-1)/maxIter]
}

// Cycle repeats a hue wheel every period counts, independent of maxIter,
// so colors stay stable as the iteration cap grows between zooms.
type Cycle struct {
	wheel []color.RGBA
}

func newCycle(period int) *Cycle {
	c := &Cycle{wheel: make([]color.RGBA, period)}
	for i := range c.wheel {
		hue := 360 * float64(i) / float64(period)
		r, g, b := colorful.Hsv(hue, 1, 1).RGB255()
		c.wheel[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return c
}

func (c *Cycle) Color(count, maxIter int) color.RGBA {
	if count >= maxIter || count < 0 {
		return black
	}
	return c.wheel[count%len(c.wheel)]
}
