// mandelzoom explores the Mandelbrot set interactively. Drag a rectangle to
// zoom in; every zoom raises the iteration cap. Esc or q quits.
//
// The terminal frontend draws into the current terminal. The web frontend
// serves the same session to a browser:
//
//	mandelzoom -frontend web -addr :8080
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"

	mandel "github.com/marben/mandelzoom"
	"github.com/marben/mandelzoom/internal/config"
	"github.com/marben/mandelzoom/palette"
	"github.com/marben/mandelzoom/session"
	"github.com/marben/mandelzoom/terminal"
	"github.com/marben/mandelzoom/web"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("mandelzoom: %v", err)
	}
}

func run(args []string) error {
	cfg, err := config.Parse("mandelzoom", args)
	if err != nil {
		return err
	}

	closeLog, err := setupLogging(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	pal, err := palette.New(cfg.Palette)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cfg.Frontend {
	case config.FrontendWeb:
		err = web.NewServer(cfg.Session(), cfg.Sampler(), pal).ListenAndServe(ctx, cfg.Addr)
	default:
		err = runTerminal(ctx, cfg, pal)
	}
	return interrupted(ctx, err)
}

// interrupted drops an error caused by a signal cancelling ctx, such as a
// sample cut short by SIGTERM.
func interrupted(ctx context.Context, err error) error {
	if err != nil && ctx.Err() != nil && errors.Is(err, context.Canceled) {
		mandel.Logger().Info("interrupted", slog.Any("err", err))
		return nil
	}
	return err
}

func runTerminal(ctx context.Context, cfg config.Config, pal palette.Palette) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("new screen: %w", err)
	}
	term, err := terminal.New(screen, pal)
	if err != nil {
		return err
	}
	defer term.Close()

	s, err := session.New(cfg.Session(), cfg.Sampler(), term, term)
	if err != nil {
		return err
	}
	if err := s.Run(ctx); err != nil {
		return err
	}
	mandel.Logger().Info("bye", slog.Int("zooms", s.Zooms()), slog.String("region", s.Region().String()))
	return nil
}
