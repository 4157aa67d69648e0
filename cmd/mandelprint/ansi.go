package main

import (
	"fmt"
	"image"
	"io"
	"math"
)

// fit scales a width x height aspect to the largest size inside maxW x maxH.
// Both results are at least 1.
func fit(width, height, maxW, maxH int) (int, int) {
	maxW, maxH = max(1, maxW), max(1, maxH)
	if width <= 0 || height <= 0 {
		return maxW, maxH
	}
	w := maxW
	h := int(math.Round(float64(w) * float64(height) / float64(width)))
	if h > maxH {
		h = maxH
		w = int(math.Round(float64(h) * float64(width) / float64(height)))
	}
	return max(1, w), max(1, h)
}

// writeANSI prints img with 24-bit color escapes, two pixel rows per line:
// the upper half block takes the top pixel as foreground and the bottom
// pixel as background. An odd last row gets the default background.
func writeANSI(w io.Writer, img *image.RGBA) error {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		for x := b.Min.X; x < b.Max.X; x++ {
			top := img.RGBAAt(x, y)
			if _, err := fmt.Fprintf(w, "\x1b[38;2;%d;%d;%dm", top.R, top.G, top.B); err != nil {
				return err
			}
			if y+1 < b.Max.Y {
				bottom := img.RGBAAt(x, y+1)
				if _, err := fmt.Fprintf(w, "\x1b[48;2;%d;%d;%dm", bottom.R, bottom.G, bottom.B); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, "▀"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "\x1b[0m\n"); err != nil {
			return err
		}
	}
	return nil
}
