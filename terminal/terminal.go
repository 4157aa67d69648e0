// Package terminal shows grids in a terminal and reads zoom selections
// from mouse drags, using tcell.
//
// The image is drawn with upper half blocks, so every cell carries two
// vertically stacked pixels: foreground on top, background below.
package terminal

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/image/draw"

	mandel "github.com/marben/mandelzoom"
	"github.com/marben/mandelzoom/palette"
	"github.com/marben/mandelzoom/plot"
)

const (
	gutter    = 10 // columns reserved for imaginary-axis labels
	xTickStep = 16 // columns between real-axis ticks
	yTickStep = 4  // rows between imaginary-axis ticks
	halfBlock = '▀'
)

var (
	styleText   = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack)
	styleStatus = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorYellow)
)

// Terminal is a tcell backed display and input. It owns the screen from
// New until Close and redraws in place on every Show.
type Terminal struct {
	screen tcell.Screen
	pal    palette.Palette
	log    *slog.Logger

	events    chan tcell.Event
	quit      chan struct{}
	closeOnce sync.Once

	grid *mandel.Grid
	img  *image.RGBA
	lay  layout

	dragging bool
	sel      selection
}

type selection struct {
	x0, y0, x1, y1 int
}

func (s selection) contains(x, y int) bool {
	return min(s.x0, s.x1) <= x && x <= max(s.x0, s.x1) &&
		min(s.y0, s.y1) <= y && y <= max(s.y0, s.y1)
}

// layout locates the image area on screen, in cells.
type layout struct {
	left, top  int
	cols, rows int
}

func newLayout(w, h int) layout {
	return layout{
		left: gutter,
		top:  1,
		cols: max(0, w-gutter),
		rows: max(0, h-2),
	}
}

func (l layout) empty() bool { return l.cols == 0 || l.rows == 0 }

func (l layout) contains(x, y int) bool {
	return x >= l.left && x < l.left+l.cols && y >= l.top && y < l.top+l.rows
}

// clamp converts screen coordinates to image cell coordinates inside the area.
func (l layout) clamp(x, y int) (int, int) {
	return max(0, min(x-l.left, l.cols-1)), max(0, min(y-l.top, l.rows-1))
}

// New initialises screen, enables mouse reporting and starts reading events.
func New(screen tcell.Screen, pal palette.Palette) (*Terminal, error) {
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("init screen: %w", err)
	}
	screen.EnableMouse(tcell.MouseButtonEvents | tcell.MouseDragEvents)
	screen.HideCursor()
	screen.SetStyle(styleText)
	screen.Clear()

	t := &Terminal{
		screen: screen,
		pal:    pal,
		log:    mandel.Logger().With(slog.String("component", "terminal")),
		events: make(chan tcell.Event, 16),
		quit:   make(chan struct{}),
	}
	go t.pump()
	return t, nil
}

// pump forwards screen events until the screen is finalised.
func (t *Terminal) pump() {
	defer close(t.events)
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case t.events <- ev:
		case <-t.quit:
			return
		}
	}
}

// Close releases the screen. Safe to call more than once.
func (t *Terminal) Close() {
	t.closeOnce.Do(func() {
		close(t.quit)
		t.screen.Fini()
	})
}

// Show draws g with axes and a status line.
func (t *Terminal) Show(_ context.Context, g *mandel.Grid) error {
	t.grid = g
	t.img = plot.Image(g, t.pal)
	t.dragging = false
	t.draw()
	return nil
}

// AwaitRectangle blocks until a drag selection completes, the user presses
// Esc, q or Ctrl-C, the timeout expires, or ctx is done.
func (t *Terminal) AwaitRectangle(ctx context.Context, timeout time.Duration) (mandel.Rectangle, error) {
	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return mandel.Rectangle{}, fmt.Errorf("%w: %w", mandel.ErrCancelled, ctx.Err())
		case <-expired:
			return mandel.Rectangle{}, mandel.ErrSelectTimeout
		case ev, ok := <-t.events:
			if !ok {
				return mandel.Rectangle{}, fmt.Errorf("%w: terminal closed", mandel.ErrInputUnavailable)
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if quitKey(ev) {
					return mandel.Rectangle{}, mandel.ErrCancelled
				}
			case *tcell.EventResize:
				if !t.closed() {
					t.screen.Sync()
					t.draw()
				}
			case *tcell.EventMouse:
				if rect, done := t.mouse(ev); done {
					return rect, nil
				}
			}
		}
	}
}

func quitKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return ev.Rune() == 'q' || ev.Rune() == 'Q'
	}
	return false
}

// mouse tracks a button-1 drag over the image. It reports a rectangle when
// the button is released. A release on the press cell yields a degenerate
// rectangle, which callers treat as a click.
func (t *Terminal) mouse(ev *tcell.EventMouse) (mandel.Rectangle, bool) {
	if t.grid == nil || t.lay.empty() {
		return mandel.Rectangle{}, false
	}
	x, y := ev.Position()
	pressed := ev.Buttons()&tcell.Button1 != 0

	switch {
	case pressed && !t.dragging:
		if !t.lay.contains(x, y) {
			return mandel.Rectangle{}, false
		}
		cx, cy := t.lay.clamp(x, y)
		t.dragging = true
		t.sel = selection{cx, cy, cx, cy}
	case pressed:
		t.sel.x1, t.sel.y1 = t.lay.clamp(x, y)
	case t.dragging:
		t.dragging = false
		t.sel.x1, t.sel.y1 = t.lay.clamp(x, y)
		t.draw()
		return t.rectangle(), true
	default:
		return mandel.Rectangle{}, false
	}
	t.draw()
	return mandel.Rectangle{}, false
}

func (t *Terminal) view() plot.View {
	return plot.View{Region: t.grid.Region, Width: t.lay.cols, Height: t.lay.rows}
}

func (t *Terminal) rectangle() mandel.Rectangle {
	s, v := t.sel, t.view()
	if s.x0 == s.x1 && s.y0 == s.y1 {
		p := v.Point(float64(s.x0)+0.5, float64(s.y0)+0.5)
		t.log.Debug("click without drag", slog.Int("x", s.x0), slog.Int("y", s.y0))
		return mandel.Rectangle{A: p, B: p}
	}
	rect := v.Selection(s.x0, s.y0, s.x1, s.y1)
	t.log.Debug("selection", slog.Any("a", rect.A), slog.Any("b", rect.B))
	return rect
}

func (t *Terminal) closed() bool {
	select {
	case <-t.quit:
		return true
	default:
		return false
	}
}

func (t *Terminal) draw() {
	if t.closed() {
		return
	}

	w, h := t.screen.Size()
	t.lay = newLayout(w, h)
	t.screen.Clear()

	if t.grid == nil {
		t.screen.Show()
		return
	}

	t.drawStatus(w)
	if !t.lay.empty() {
		t.drawImage()
		t.drawAxes()
	}
	t.screen.Show()
}

func (t *Terminal) drawStatus(w int) {
	g := t.grid
	status := fmt.Sprintf(" re [%g, %g]  im [%g, %g]  maxiter %d  %dx%d  drag to zoom, esc/q quits",
		g.Region.Xmin, g.Region.Xmax, g.Region.Ymin, g.Region.Ymax, g.MaxIter, g.Width, g.Height)
	t.putString(0, 0, w, status, styleStatus)
}

// drawImage scales the grid image to the area, two pixels per cell.
func (t *Terminal) drawImage() {
	l := t.lay
	scaled := image.NewRGBA(image.Rect(0, 0, l.cols, l.rows*2))
	draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), t.img, t.img.Bounds(), draw.Src, nil)

	for cy := 0; cy < l.rows; cy++ {
		for cx := 0; cx < l.cols; cx++ {
			top := scaled.RGBAAt(cx, 2*cy)
			bottom := scaled.RGBAAt(cx, 2*cy+1)
			style := tcell.StyleDefault.Foreground(rgb(top)).Background(rgb(bottom))
			if t.dragging && t.sel.contains(cx, cy) {
				style = style.Reverse(true)
			}
			t.screen.SetContent(l.left+cx, l.top+cy, halfBlock, nil, style)
		}
	}
}

func (t *Terminal) drawAxes() {
	l, r := t.lay, t.grid.Region

	xStep := r.Width() / float64(l.cols) * xTickStep
	bottom := l.top + l.rows
	for _, tk := range plot.XTicks(r, l.cols, xTickStep) {
		x := l.left + tk.Pos
		t.putString(x, bottom, min(xTickStep, l.left+l.cols-x), "|"+plot.FormatTick(tk.Value, xStep), styleText)
	}

	yStep := r.Height() / float64(l.rows) * yTickStep
	for _, tk := range plot.YTicks(r, l.rows, yTickStep) {
		t.putString(0, l.top+tk.Pos, gutter-1, plot.FormatTick(tk.Value, yStep), styleText)
		t.screen.SetContent(gutter-1, l.top+tk.Pos, '-', nil, styleText)
	}
}

// putString writes s at (x, y), truncated to width cells.
func (t *Terminal) putString(x, y, width int, s string, style tcell.Style) {
	i := 0
	for _, r := range s {
		if i >= width {
			return
		}
		t.screen.SetContent(x+i, y, r, nil, style)
		i++
	}
}

func rgb(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
