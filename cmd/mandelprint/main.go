// mandelprint renders one view of the Mandelbrot set in true color half
// blocks, sized to the terminal, and exits. It takes the same options as
// mandelzoom; width and height only set the aspect ratio.
//
//	mandelprint -preset seahorse -maxiter 200 -palette fire
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"golang.org/x/term"

	mandel "github.com/marben/mandelzoom"
	"github.com/marben/mandelzoom/internal/config"
	"github.com/marben/mandelzoom/palette"
	"github.com/marben/mandelzoom/plot"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("mandelprint: %v", err)
	}
}

func run(args []string, stdout *os.File) error {
	cfg, err := config.Parse("mandelprint", args)
	if err != nil {
		return err
	}
	level, err := cfg.Level()
	if err != nil {
		return err
	}
	mandel.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	defer mandel.SetLogger(nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cols, rows := 80, 24
	if w, h, err := term.GetSize(int(stdout.Fd())); err == nil {
		cols, rows = w, h
	}

	out := bufio.NewWriter(stdout)
	if err := render(ctx, out, cfg, cols, rows); err != nil {
		return err
	}
	return out.Flush()
}

// render samples cfg's region to fit a cols x rows terminal, keeping the
// last row for the caption, and writes it to w.
func render(ctx context.Context, w io.Writer, cfg config.Config, cols, rows int) error {
	pal, err := palette.New(cfg.Palette)
	if err != nil {
		return err
	}
	pw, ph := fit(cfg.Width, cfg.Height, cols, 2*(rows-1))

	g, err := cfg.Sampler().Sample(ctx, cfg.Region, pw, ph, cfg.MaxIter)
	if err != nil {
		return err
	}
	if err := writeANSI(w, plot.Image(g, pal)); err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "re [%g, %g]  im [%g, %g]  maxiter %d\n",
		g.Region.Xmin, g.Region.Xmax, g.Region.Ymin, g.Region.Ymax, g.MaxIter)
	return err
}
