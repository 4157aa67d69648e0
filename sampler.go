package mandel

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"runtime"
	"sync"
	"time"
)

// DefaultTileSize is the edge length of the square tiles a grid is split into.
const DefaultTileSize = 64

// MaxIterLimit bounds the iteration cap a session can grow to.
const MaxIterLimit = 1 << 30

// MaxCells bounds width×height of a grid.
const MaxCells = 1 << 28

// ValidateSize checks grid dimensions: both positive, at most MaxCells cells.
func ValidateSize(width, height int) error {
	if width <= 0 || height <= 0 || width > MaxCells/height {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	return nil
}

// ValidateIterationCap checks that maxIter is in [1, MaxIterLimit].
func ValidateIterationCap(maxIter int) error {
	if maxIter <= 0 || maxIter > MaxIterLimit {
		return fmt.Errorf("%w: %d", ErrInvalidIterationCap, maxIter)
	}
	return nil
}

// Sampler fills grids of escape counts. Work is split into tiles that a
// fixed set of workers pull from a shared queue; every tile covers a
// disjoint set of cells, so workers never share writes.
//
// A Sampler holds no per-call state and is safe for concurrent use.
type Sampler struct {
	// Workers is the number of goroutines per Sample call.
	// Zero or negative means runtime.GOMAXPROCS(0).
	Workers int

	// TileSize is the tile edge in cells. Zero or negative means DefaultTileSize.
	TileSize int

	// Evaluator runs the per-cell iteration.
	Evaluator Evaluator

	// OnTile, if set, is called from the worker goroutine after each tile.
	OnTile func(tile image.Rectangle)
}

var _ GridSampler = (*Sampler)(nil)

// SampleGrid samples region with a default Sampler.
func SampleGrid(region Region, width, height, maxIter int) (*Grid, error) {
	var s Sampler
	return s.Sample(context.Background(), region, width, height, maxIter)
}

// Sample returns a width×height grid of escape counts over region.
// Arguments are validated before any work starts. Cancellation is
// checked between tiles; a cancelled call returns ctx.Err() and no grid.
func (s *Sampler) Sample(ctx context.Context, region Region, width, height, maxIter int) (*Grid, error) {
	if err := region.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateSize(width, height); err != nil {
		return nil, err
	}
	if err := ValidateIterationCap(maxIter); err != nil {
		return nil, err
	}

	start := time.Now()
	g := newGrid(region, width, height, maxIter)
	tiles := SplitRect(image.Rect(0, 0, width, height), s.tileSize(), s.tileSize())

	queue := make(chan image.Rectangle, len(tiles))
	for _, t := range tiles {
		queue <- t
	}
	close(queue)

	workers := s.workers()
	if workers > len(tiles) {
		workers = len(tiles)
	}

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for tile := range queue {
				if ctx.Err() != nil {
					return
				}
				s.fillTile(g, tile)
				if s.OnTile != nil {
					s.OnTile(tile)
				}
			}
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	Logger().Debug("grid sampled",
		slog.String("region", region.String()),
		slog.Int("width", width),
		slog.Int("height", height),
		slog.Int("max_iter", maxIter),
		slog.Int("tiles", len(tiles)),
		slog.Duration("took", time.Since(start)))
	return g, nil
}

// fillTile writes every cell of tile exactly once.
func (s *Sampler) fillTile(g *Grid, tile image.Rectangle) {
	r2 := s.Evaluator.radius2()

	for py := tile.Min.Y; py < tile.Max.Y; py++ {
		row := g.Counts[py*g.Width : (py+1)*g.Width]
		for px := tile.Min.X; px < tile.Max.X; px++ {
			c := g.Point(px, py)
			row[px] = escape(real(c), imag(c), g.MaxIter, r2)
		}
	}
}

func (s *Sampler) workers() int {
	if s.Workers > 0 {
		return s.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func (s *Sampler) tileSize() int {
	if s.TileSize > 0 {
		return s.TileSize
	}
	return DefaultTileSize
}

// SplitRect splits r into tiles of size tileW × tileH.
// Tiles at the right and bottom edges are smaller if r is not divisible.
func SplitRect(r image.Rectangle, tileW, tileH int) []image.Rectangle {
	if tileW <= 0 || tileH <= 0 {
		panic("tile dimensions must be positive")
	}

	w := r.Dx()
	h := r.Dy()

	var tiles []image.Rectangle

	for oy := 0; oy < h; oy += tileH {
		th := min(tileH, h-oy)

		for ox := 0; ox < w; ox += tileW {
			tw := min(tileW, w-ox)

			tiles = append(tiles, image.Rect(
				r.Min.X+ox,
				r.Min.Y+oy,
				r.Min.X+ox+tw,
				r.Min.Y+oy+th,
			))
		}
	}

	return tiles
}
