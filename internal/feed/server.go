package feed

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	scerrors "github.com/rileyhilliard/stripchart/internal/errors"
	"github.com/rileyhilliard/stripchart/internal/logger"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// DefaultAddr is where serve listens unless told otherwise.
const DefaultAddr = "127.0.0.1:8437"

const shutdownTimeout = 5 * time.Second

// Server exposes a Broadcaster over HTTP.
type Server struct {
	broadcaster *Broadcaster
	mux         *http.ServeMux
	log         logger.Logger
}

// NewServer registers the /ws and /snapshot handlers.
func NewServer(b *Broadcaster, log logger.Logger) *Server {
	if log == nil {
		log = logger.Noop()
	}
	s := &Server{
		broadcaster: b,
		mux:         http.NewServeMux(),
		log:         log,
	}
	s.mux.HandleFunc("/ws", s.handleWebSocket)
	s.mux.HandleFunc("/snapshot", s.handleSnapshot)
	return s
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) handleWebSocket(w http.ResponseWriter, req *http.Request) {
	c, err := websocket.Accept(w, req, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.log.Warn("failed to accept websocket connection: %v", err)
		return
	}

	// write-only: CloseRead handles control frames and cancels ctx when the
	// client goes away
	ctx := c.CloseRead(req.Context())

	channel := make(chan Message, s.broadcaster.Replay()+16)
	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()
		for {
			select {
			case m := <-channel:
				if err := wsjson.Write(ctx, c, m); err != nil {
					s.log.Debug("websocket write failed: %v", err)
					return
				}
			case <-ctx.Done():
				c.Close(websocket.StatusNormalClosure, "")
				return
			}
		}
	}()

	s.broadcaster.Register(channel)
	wg.Wait()
	s.broadcaster.Deregister(channel)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, req *http.Request) {
	m, ok := s.broadcaster.Latest()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(m); err != nil {
		s.log.Warn("failed to encode snapshot: %v", err)
	}
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully. It returns nil after a shutdown caused by ctx.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return scerrors.WrapWithCode(err, scerrors.ErrFeed,
			"Cannot listen on "+addr,
			"Pick another address with --addr, or stop whatever is using this one.")
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("serving live feed at http://%s (websocket at /ws)", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return scerrors.WrapWithCode(err, scerrors.ErrFeed, "Live feed server stopped", "")
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Warn("feed shutdown: %v", err)
		}
		return nil
	}
}
