// Package session drives an interactive zoom session: show the current
// grid, wait for a selection, zoom in with a larger iteration cap, repeat
// until the user cancels.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	mandel "github.com/marben/mandelzoom"
)

// State of a session.
type State int

const (
	Displaying State = iota
	AwaitingSelection
	Terminal
)

func (s State) String() string {
	switch s {
	case Displaying:
		return "displaying"
	case AwaitingSelection:
		return "awaiting-selection"
	case Terminal:
		return "terminal"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// DefaultGrowth is the iteration cap multiplier applied on every zoom.
const DefaultGrowth = 2

// Config holds the session parameters.
type Config struct {
	Region        mandel.Region
	Width, Height int
	MaxIter       int

	// Growth multiplies MaxIter after every zoom. Zero means DefaultGrowth.
	Growth int

	// SelectTimeout bounds each wait for a selection. Zero waits forever.
	SelectTimeout time.Duration
}

func (c Config) validate() error {
	if err := c.Region.Validate(); err != nil {
		return err
	}
	if err := mandel.ValidateSize(c.Width, c.Height); err != nil {
		return err
	}
	if err := mandel.ValidateIterationCap(c.MaxIter); err != nil {
		return err
	}
	if c.Growth < 0 {
		return fmt.Errorf("negative growth factor %d", c.Growth)
	}
	if c.SelectTimeout < 0 {
		return fmt.Errorf("negative select timeout %s", c.SelectTimeout)
	}
	return nil
}

// Session is a single-threaded zoom loop. It owns its current grid and
// never has more than one sample in flight.
type Session struct {
	cfg     Config
	sampler mandel.GridSampler
	display mandel.Display
	input   mandel.Input
	log     *slog.Logger

	state   State
	region  mandel.Region
	maxIter int
	grid    *mandel.Grid
	zooms   int
}

// New returns a session in the Displaying state. Nothing is sampled until Run or Step.
func New(cfg Config, sampler mandel.GridSampler, display mandel.Display, input mandel.Input) (*Session, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("session config: %w", err)
	}
	if cfg.Growth == 0 {
		cfg.Growth = DefaultGrowth
	}
	return &Session{
		cfg:     cfg,
		sampler: sampler,
		display: display,
		input:   input,
		log:     mandel.Logger().With(slog.String("component", "session")),
		state:   Displaying,
		region:  cfg.Region,
		maxIter: cfg.MaxIter,
	}, nil
}

func (s *Session) State() State          { return s.state }
func (s *Session) Region() mandel.Region { return s.region }
func (s *Session) MaxIter() int          { return s.maxIter }
func (s *Session) Zooms() int            { return s.zooms }
func (s *Session) Grid() *mandel.Grid    { return s.grid }

// Run steps the session until it reaches Terminal. A user cancel or a
// selection timeout ends it with a nil error.
func (s *Session) Run(ctx context.Context) error {
	s.log.Info("session started",
		slog.String("region", s.region.String()),
		slog.Int("max_iter", s.maxIter))
	for s.state != Terminal {
		if err := s.Step(ctx); err != nil {
			s.log.Info("session ended", slog.Int("zooms", s.zooms), slog.Any("err", err))
			return err
		}
	}
	s.log.Info("session ended", slog.Int("zooms", s.zooms))
	return nil
}

// Step performs one state transition.
func (s *Session) Step(ctx context.Context) error {
	switch s.state {
	case Displaying:
		return s.show(ctx)
	case AwaitingSelection:
		return s.await(ctx)
	}
	return nil
}

func (s *Session) show(ctx context.Context) error {
	if s.grid == nil {
		if err := s.resample(ctx); err != nil {
			s.state = Terminal
			return err
		}
	}
	if err := s.display.Show(ctx, s.grid); err != nil {
		s.state = Terminal
		return fmt.Errorf("display: %w", err)
	}
	s.state = AwaitingSelection
	return nil
}

func (s *Session) await(ctx context.Context) error {
	rect, err := s.input.AwaitRectangle(ctx, s.cfg.SelectTimeout)
	switch {
	case errors.Is(err, mandel.ErrCancelled), errors.Is(err, mandel.ErrSelectTimeout):
		s.log.Info("selection ended session", slog.Any("reason", err))
		s.state = Terminal
		return nil
	case err != nil:
		s.state = Terminal
		if errors.Is(err, mandel.ErrInputUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %w", mandel.ErrInputUnavailable, err)
	}

	region, err := rect.Region()
	if err != nil {
		// a click without a drag; keep waiting
		s.log.Warn("ignoring selection", slog.Any("err", err))
		return nil
	}

	s.region = region
	s.maxIter = grow(s.maxIter, s.cfg.Growth)
	if err := s.resample(ctx); err != nil {
		s.state = Terminal
		return err
	}
	s.zooms++
	s.log.Info("zoomed",
		slog.Int("zoom", s.zooms),
		slog.String("region", s.region.String()),
		slog.Int("max_iter", s.maxIter))
	s.state = Displaying
	return nil
}

func (s *Session) resample(ctx context.Context) error {
	start := time.Now()
	g, err := s.sampler.Sample(ctx, s.region, s.cfg.Width, s.cfg.Height, s.maxIter)
	if err != nil {
		return fmt.Errorf("sample %s: %w", s.region, err)
	}
	s.grid = g
	s.log.Debug("resampled", slog.Duration("took", time.Since(start)))
	return nil
}

// grow multiplies n by factor, saturating at mandel.MaxIterLimit. It never
// lowers n.
func grow(n, factor int) int {
	if n >= mandel.MaxIterLimit/factor {
		return max(n, mandel.MaxIterLimit)
	}
	return n * factor
}
