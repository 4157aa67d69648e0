// Package web serves an interactive zoom session to the browser.
//
// GET / returns a single page; the page opens a websocket on /ws and
// every connection runs its own session. The server pushes "frame"
// messages holding a PNG of the current grid; the page answers with
// "select" (image pixel corners) or "cancel".
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	mandel "github.com/marben/mandelzoom"
	"github.com/marben/mandelzoom/palette"
	"github.com/marben/mandelzoom/session"
)

//go:embed static
var staticFiles embed.FS

// Server runs one session per websocket connection. Sessions share the
// sampler but nothing else.
type Server struct {
	cfg     session.Config
	sampler mandel.GridSampler
	pal     palette.Palette
	log     *slog.Logger

	m        sync.Mutex
	sessions int
}

func NewServer(cfg session.Config, sampler mandel.GridSampler, pal palette.Palette) *Server {
	return &Server{
		cfg:     cfg,
		sampler: sampler,
		pal:     pal,
		log:     mandel.Logger().With(slog.String("component", "web")),
	}
}

// Handler serves the page on / and the websocket endpoint on /ws.
func (s *Server) Handler() http.Handler {
	static, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err) // embedded at build time
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.websocketHandler)
	mux.Handle("/", http.FileServer(http.FS(static)))
	return mux
}

// HTTPServer wraps Handler in an http.Server listening on addr.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// ListenAndServe serves on addr until ctx is done, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := s.HTTPServer(addr)

	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", slog.String("url", "http://localhost"+addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Sessions returns the number of sessions currently running.
func (s *Server) Sessions() int {
	s.m.Lock()
	defer s.m.Unlock()
	return s.sessions
}

func (s *Server) incSessions() {
	s.m.Lock()
	s.sessions++
	n := s.sessions
	s.m.Unlock()

	s.log.Info("session opened", slog.Int("sessions", n))
}

func (s *Server) decSessions() {
	s.m.Lock()
	s.sessions--
	n := s.sessions
	s.m.Unlock()

	s.log.Info("session closed", slog.Int("sessions", n))
}

// websocketHandler upgrades the request and runs a session on it until
// the user cancels, the socket drops or the server shuts down.
func (s *Server) websocketHandler(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.log.Warn("websocket accept", slog.Any("err", err))
		return
	}
	defer ws.CloseNow()

	s.incSessions()
	defer s.decSessions()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	c := newConn(ctx, ws, s.pal)
	sess, err := session.New(s.cfg, s.sampler, c, c)
	if err != nil {
		s.log.Error("session config", slog.Any("err", err))
		ws.Close(websocket.StatusInternalError, "bad session config")
		return
	}

	if err := sess.Run(ctx); err != nil {
		if errors.Is(err, mandel.ErrInputUnavailable) {
			s.log.Warn("connection lost", slog.String("remote", r.RemoteAddr), slog.Any("err", err))
			return
		}
		s.log.Error("session failed", slog.String("remote", r.RemoteAddr), slog.Any("err", err))
		ws.Close(websocket.StatusInternalError, "session failed")
		return
	}
	ws.Close(websocket.StatusNormalClosure, "session ended")
}
