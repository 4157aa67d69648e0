package session

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	mandel "github.com/marben/mandelzoom"
)

type recordingDisplay struct {
	grids []*mandel.Grid
	err   error
}

func (d *recordingDisplay) Show(_ context.Context, g *mandel.Grid) error {
	d.grids = append(d.grids, g)
	return d.err
}

type step struct {
	rect mandel.Rectangle
	err  error
}

type scriptedInput struct {
	steps    []step
	timeouts []time.Duration
}

func (in *scriptedInput) AwaitRectangle(_ context.Context, timeout time.Duration) (mandel.Rectangle, error) {
	in.timeouts = append(in.timeouts, timeout)
	if len(in.steps) == 0 {
		return mandel.Rectangle{}, mandel.ErrCancelled
	}
	s := in.steps[0]
	in.steps = in.steps[1:]
	return s.rect, s.err
}

// countingSampler wraps a real sampler and fails the test on overlapping calls.
type countingSampler struct {
	t        *testing.T
	inner    mandel.Sampler
	calls    int
	inFlight bool
}

func (s *countingSampler) Sample(ctx context.Context, r mandel.Region, w, h, maxIter int) (*mandel.Grid, error) {
	if s.inFlight {
		s.t.Fatal("sample issued while another is outstanding")
	}
	s.inFlight = true
	defer func() { s.inFlight = false }()
	s.calls++
	return s.inner.Sample(ctx, r, w, h, maxIter)
}

func baseConfig() Config {
	return Config{
		Region:  mandel.Region{Xmin: -2, Xmax: 1, Ymin: -1, Ymax: 1},
		Width:   30,
		Height:  20,
		MaxIter: 20,
	}
}

func TestSession_ZoomNormalisesAndDoublesCap(t *testing.T) {
	display := &recordingDisplay{}
	input := &scriptedInput{steps: []step{
		{rect: mandel.Rectangle{A: complex(0.5, 0.5), B: complex(-0.5, -0.5)}},
	}}
	sampler := &countingSampler{t: t}

	s, err := New(baseConfig(), sampler, display, input)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := mandel.Region{Xmin: -0.5, Xmax: 0.5, Ymin: -0.5, Ymax: 0.5}
	if s.Region() != want {
		t.Errorf("region = %v, want %v", s.Region(), want)
	}
	if s.MaxIter() != 40 {
		t.Errorf("max iter = %d, want 40", s.MaxIter())
	}
	if s.Zooms() != 1 {
		t.Errorf("zooms = %d, want 1", s.Zooms())
	}
	if s.State() != Terminal {
		t.Errorf("state = %s, want terminal", s.State())
	}
	if sampler.calls != 2 {
		t.Errorf("sampler called %d times, want 2", sampler.calls)
	}

	if len(display.grids) != 2 {
		t.Fatalf("display shown %d grids, want 2", len(display.grids))
	}
	first, second := display.grids[0], display.grids[1]
	if first.MaxIter != 20 || first.Region != baseConfig().Region {
		t.Errorf("first grid: maxIter %d region %v", first.MaxIter, first.Region)
	}
	if second.MaxIter != 40 || second.Region != want {
		t.Errorf("second grid: maxIter %d region %v", second.MaxIter, second.Region)
	}
	if second.Width != 30 || second.Height != 20 {
		t.Errorf("second grid is %dx%d, want same resolution 30x20", second.Width, second.Height)
	}
}

func TestSession_StepTransitions(t *testing.T) {
	input := &scriptedInput{steps: []step{
		{rect: mandel.Rectangle{A: complex(-1, -0.5), B: complex(0, 0.5)}},
	}}
	s, err := New(baseConfig(), &mandel.Sampler{}, &recordingDisplay{}, input)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	want := []State{AwaitingSelection, Displaying, AwaitingSelection, Terminal}
	if s.State() != Displaying {
		t.Fatalf("initial state = %s, want displaying", s.State())
	}
	for i, w := range want {
		if err := s.Step(ctx); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if s.State() != w {
			t.Fatalf("after step %d state = %s, want %s", i, s.State(), w)
		}
	}
	if err := s.Step(ctx); err != nil || s.State() != Terminal {
		t.Errorf("stepping a terminal session: state %s err %v", s.State(), err)
	}
}

func TestSession_RepeatedZoomsKeepDoubling(t *testing.T) {
	input := &scriptedInput{steps: []step{
		{rect: mandel.Rectangle{A: complex(-1, -0.5), B: complex(0, 0.5)}},
		{rect: mandel.Rectangle{A: complex(-0.8, 0), B: complex(-0.7, 0.1)}},
		{rect: mandel.Rectangle{A: complex(-0.75, 0.05), B: complex(-0.74, 0.06)}},
	}}
	cfg := baseConfig()
	cfg.Growth = 3
	s, err := New(cfg, &mandel.Sampler{}, &recordingDisplay{}, input)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if s.MaxIter() != 20*27 {
		t.Errorf("max iter = %d, want %d", s.MaxIter(), 20*27)
	}
	if s.Zooms() != 3 {
		t.Errorf("zooms = %d, want 3", s.Zooms())
	}
}

func TestSession_DegenerateSelectionIgnored(t *testing.T) {
	display := &recordingDisplay{}
	input := &scriptedInput{steps: []step{
		{rect: mandel.Rectangle{A: complex(0.1, 0.1), B: complex(0.1, 0.1)}},
		{rect: mandel.Rectangle{A: complex(0, 0), B: complex(0.5, 0.5)}},
	}}
	s, err := New(baseConfig(), &mandel.Sampler{}, display, input)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if s.Zooms() != 1 || s.MaxIter() != 40 {
		t.Errorf("zooms = %d, max iter = %d; want 1 and 40", s.Zooms(), s.MaxIter())
	}
	if len(display.grids) != 2 {
		t.Errorf("display shown %d grids, want 2", len(display.grids))
	}
}

func TestSession_TerminationSignals(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{"cancelled", mandel.ErrCancelled, nil},
		{"wrapped cancel", errors.Join(errors.New("esc pressed"), mandel.ErrCancelled), nil},
		{"timeout", mandel.ErrSelectTimeout, nil},
		{"device failure", io.ErrUnexpectedEOF, mandel.ErrInputUnavailable},
		{"already classified", mandel.ErrInputUnavailable, mandel.ErrInputUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			display := &recordingDisplay{}
			input := &scriptedInput{steps: []step{{err: tt.err}}}
			s, err := New(baseConfig(), &mandel.Sampler{}, display, input)
			if err != nil {
				t.Fatalf("New: %v", err)
			}

			err = s.Run(context.Background())
			if tt.wantErr == nil && err != nil {
				t.Fatalf("Run: %v, want nil", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("Run: %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil && tt.err != tt.wantErr && !errors.Is(err, tt.err) {
				t.Errorf("Run: %v, cause %v lost", err, tt.err)
			}
			if s.State() != Terminal {
				t.Errorf("state = %s, want terminal", s.State())
			}
			if len(display.grids) != 1 {
				t.Errorf("display shown %d grids after termination, want 1", len(display.grids))
			}
		})
	}
}

func TestSession_PassesSelectTimeout(t *testing.T) {
	cfg := baseConfig()
	cfg.SelectTimeout = 3 * time.Second
	input := &scriptedInput{}
	s, err := New(cfg, &mandel.Sampler{}, &recordingDisplay{}, input)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(input.timeouts) != 1 || input.timeouts[0] != 3*time.Second {
		t.Errorf("timeouts = %v, want [3s]", input.timeouts)
	}
}

func TestSession_DisplayError(t *testing.T) {
	boom := errors.New("screen gone")
	s, err := New(baseConfig(), &mandel.Sampler{}, &recordingDisplay{err: boom}, &scriptedInput{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Run(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Run: %v, want %v", err, boom)
	}
	if s.State() != Terminal {
		t.Errorf("state = %s, want terminal", s.State())
	}
}

func TestSession_ContextCancelledBeforeSample(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s, err := New(baseConfig(), &mandel.Sampler{}, &recordingDisplay{}, &scriptedInput{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run: %v, want context.Canceled", err)
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"degenerate region", func(c *Config) { c.Region.Xmax = c.Region.Xmin }, mandel.ErrInvalidRegion},
		{"zero width", func(c *Config) { c.Width = 0 }, mandel.ErrInvalidDimensions},
		{"zero cap", func(c *Config) { c.MaxIter = 0 }, mandel.ErrInvalidIterationCap},
		{"cap above limit", func(c *Config) { c.MaxIter = mandel.MaxIterLimit + 1 }, mandel.ErrInvalidIterationCap},
		{"too many cells", func(c *Config) { c.Width, c.Height = mandel.MaxCells, 2 }, mandel.ErrInvalidDimensions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseConfig()
			tt.mutate(&cfg)
			if _, err := New(cfg, &mandel.Sampler{}, &recordingDisplay{}, &scriptedInput{}); !errors.Is(err, tt.want) {
				t.Errorf("New: %v, want %v", err, tt.want)
			}
		})
	}

	cfg := baseConfig()
	cfg.Growth = -1
	if _, err := New(cfg, &mandel.Sampler{}, &recordingDisplay{}, &scriptedInput{}); err == nil {
		t.Error("New with negative growth should fail")
	}
}

func TestGrow_Saturates(t *testing.T) {
	if got := grow(20, 2); got != 40 {
		t.Errorf("grow(20, 2) = %d, want 40", got)
	}
	if got := grow(mandel.MaxIterLimit-1, 2); got != mandel.MaxIterLimit {
		t.Errorf("grow near limit = %d, want %d", got, mandel.MaxIterLimit)
	}
	if got := grow(mandel.MaxIterLimit, 5); got != mandel.MaxIterLimit {
		t.Errorf("grow at limit = %d, want %d", got, mandel.MaxIterLimit)
	}
}

func TestGrow_NeverLowersCap(t *testing.T) {
	for _, n := range []int{mandel.MaxIterLimit + 1, 2 * mandel.MaxIterLimit} {
		for _, factor := range []int{1, 2, 7} {
			if got := grow(n, factor); got < n {
				t.Errorf("grow(%d, %d) = %d, lowered the cap", n, factor, got)
			}
		}
	}
	if got := grow(30, 1); got != 30 {
		t.Errorf("grow(30, 1) = %d, want 30", got)
	}
}
