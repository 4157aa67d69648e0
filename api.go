package mandel

import (
	"context"
	"time"
)

// GridSampler produces grids of escape counts. *Sampler implements it.
type GridSampler interface {
	Sample(ctx context.Context, r Region, width, height, maxIter int) (*Grid, error)
}

// Display renders a grid. Implementations own their output surface and
// update it in place on every call.
type Display interface {
	Show(ctx context.Context, g *Grid) error
}

// Input waits for the user to select a zoom rectangle.
// A zero timeout waits indefinitely. Ending the session is signalled with
// ErrCancelled or ErrSelectTimeout; device failures wrap ErrInputUnavailable.
type Input interface {
	AwaitRectangle(ctx context.Context, timeout time.Duration) (Rectangle, error)
}
