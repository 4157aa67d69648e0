package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"log/slog"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	mandel "github.com/marben/mandelzoom"
	"github.com/marben/mandelzoom/palette"
	"github.com/marben/mandelzoom/plot"
)

// Message types.
const (
	msgFrame  = "frame"
	msgSelect = "select"
	msgCancel = "cancel"
)

// frameMessage carries one rendered grid to the page. Row 0 of the PNG is
// the top of the image (largest imaginary part).
type frameMessage struct {
	Type    string        `json:"type"`
	Region  mandel.Region `json:"region"`
	MaxIter int           `json:"maxIter"`
	Width   int           `json:"width"`
	Height  int           `json:"height"`
	PNG     []byte        `json:"png"`
}

// clientMessage is a selection or a cancel request from the page. Select
// corners are inclusive image pixels of the last frame.
type clientMessage struct {
	Type string `json:"type"`
	X0   int    `json:"x0"`
	Y0   int    `json:"y0"`
	X1   int    `json:"x1"`
	Y1   int    `json:"y1"`
}

// conn adapts one websocket to the Display and Input of a session.
type conn struct {
	ws  *websocket.Conn
	pal palette.Palette
	log *slog.Logger

	view plot.View

	msgs chan clientMessage
	done chan struct{}
	err  error // read error, valid once done is closed
}

var (
	_ mandel.Display = (*conn)(nil)
	_ mandel.Input   = (*conn)(nil)
)

// newConn starts reading ws until ctx is done or the socket fails. Reads
// run in their own goroutine because a read cancelled by a context closes
// the websocket, which a selection timeout must not do.
func newConn(ctx context.Context, ws *websocket.Conn, pal palette.Palette) *conn {
	c := &conn{
		ws:   ws,
		pal:  pal,
		log:  mandel.Logger().With(slog.String("component", "web")),
		msgs: make(chan clientMessage),
		done: make(chan struct{}),
	}
	go c.read(ctx)
	return c
}

func (c *conn) read(ctx context.Context) {
	defer close(c.done)
	for {
		var m clientMessage
		if err := wsjson.Read(ctx, c.ws, &m); err != nil {
			c.err = err
			return
		}
		select {
		case c.msgs <- m:
		case <-ctx.Done():
			c.err = ctx.Err()
			return
		}
	}
}

// Show encodes g as a PNG and sends it as a frame message.
func (c *conn) Show(ctx context.Context, g *mandel.Grid) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, plot.Image(g, c.pal)); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}

	msg := frameMessage{
		Type:    msgFrame,
		Region:  g.Region,
		MaxIter: g.MaxIter,
		Width:   g.Width,
		Height:  g.Height,
		PNG:     buf.Bytes(),
	}
	if err := wsjson.Write(ctx, c.ws, msg); err != nil {
		return fmt.Errorf("send frame: %w", err)
	}
	c.view = plot.View{Region: g.Region, Width: g.Width, Height: g.Height}
	return nil
}

// AwaitRectangle waits for a select or cancel message. A socket closed by
// the page counts as a cancel; any other read failure makes input
// unavailable.
func (c *conn) AwaitRectangle(ctx context.Context, timeout time.Duration) (mandel.Rectangle, error) {
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
		case <-c.done:
			return mandel.Rectangle{}, c.readError()
		case m := <-c.msgs:
			switch m.Type {
			case msgCancel:
				return mandel.Rectangle{}, mandel.ErrCancelled
			case msgSelect:
				return c.rectangle(m), nil
			default:
				c.log.Warn("unknown message", slog.String("type", m.Type))
			}
		}
	}
}

func (c *conn) readError() error {
	switch websocket.CloseStatus(c.err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return mandel.ErrCancelled
	}
	if errors.Is(c.err, context.Canceled) {
		return fmt.Errorf("%w: %w", mandel.ErrCancelled, c.err)
	}
	return fmt.Errorf("%w: %w", mandel.ErrInputUnavailable, c.err)
}

// rectangle maps the pixel corners of m, clamped to the last frame, into
// its plane. Equal corners give a degenerate rectangle at the pixel centre.
func (c *conn) rectangle(m clientMessage) mandel.Rectangle {
	m.X0, m.Y0 = c.clamp(m.X0, m.Y0)
	m.X1, m.Y1 = c.clamp(m.X1, m.Y1)
	if m.X0 == m.X1 && m.Y0 == m.Y1 {
		p := c.view.Point(float64(m.X0)+0.5, float64(m.Y0)+0.5)
		return mandel.Rectangle{A: p, B: p}
	}
	return c.view.Selection(m.X0, m.Y0, m.X1, m.Y1)
}

func (c *conn) clamp(x, y int) (int, int) {
	return max(0, min(x, c.view.Width-1)), max(0, min(y, c.view.Height-1))
}
