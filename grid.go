package mandel

// Grid holds the escape counts sampled over Region.
// Counts is row-major: cell (x, y) is Counts[y*Width+x]. Row 0 is Region.Ymin.
type Grid struct {
	Width, Height int
	MaxIter       int
	Region        Region
	Counts        []int
}

func newGrid(r Region, w, h, maxIter int) *Grid {
	return &Grid{
		Width:   w,
		Height:  h,
		MaxIter: maxIter,
		Region:  r,
		Counts:  make([]int, w*h),
	}
}

// At returns the escape count of cell (x, y).
func (g *Grid) At(x, y int) int {
	return g.Counts[y*g.Width+x]
}

// Point returns the plane point sampled for cell (x, y).
func (g *Grid) Point(x, y int) complex128 {
	return g.Region.PointAt(x, y, g.Width, g.Height)
}

// Inside reports whether cell (x, y) never escaped.
func (g *Grid) Inside(x, y int) bool {
	return g.At(x, y) >= g.MaxIter
}
