// Package transport carries session protocol frames over WebSocket
// connections. Each connection gets one session, one reader and one writer;
// everything else happens behind the Handler.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	ws "github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/cory-johannsen/warband/internal/config"
	"github.com/cory-johannsen/warband/internal/game/session"
	"github.com/cory-johannsen/warband/internal/observability"
	"github.com/cory-johannsen/warband/internal/protocol"
)

// HealthPath is the liveness endpoint.
const HealthPath = "/healthz"

// healthTimeout bounds a single health check.
const healthTimeout = 2 * time.Second

// shutdownTimeout bounds Stop's wait for the HTTP server.
const shutdownTimeout = 5 * time.Second

// Handler consumes the sessions the transport creates.
type Handler interface {
	Connect(sess *session.Session) error
	Handle(ctx context.Context, sess *session.Session, env protocol.Envelope)
	Disconnect(ctx context.Context, sess *session.Session)
}

// HealthFunc reports whether a dependency is usable.
type HealthFunc func(ctx context.Context) error

// Server accepts WebSocket upgrades and bridges each connection to a
// session.
type Server struct {
	cfg     config.WebSocketConfig
	handler Handler
	health  HealthFunc
	logger  *zap.Logger

	upgrader ws.Upgrader

	mu      sync.Mutex
	http    *http.Server
	conns   map[*ws.Conn]struct{}
	stopped bool
	wg      sync.WaitGroup
}

// NewServer creates a Server.
//
// Precondition: handler and logger must be non-nil. health may be nil.
func NewServer(cfg config.WebSocketConfig, handler Handler, health HealthFunc, logger *zap.Logger) *Server {
	return &Server{
		cfg:     cfg,
		handler: handler,
		health:  health,
		logger:  logger,
		upgrader: ws.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		conns: make(map[*ws.Conn]struct{}),
	}
}

// Routes returns the HTTP handler serving the upgrade path and HealthPath.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.cfg.Path, s.serveWS)
	mux.HandleFunc(HealthPath, s.serveHealth)
	return mux
}

// ListenAndServe serves until Stop is called.
//
// Postcondition: Returns nil after Stop, or the listen error.
func (s *Server) ListenAndServe() error {
	start := time.Now()
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr(), err)
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		ln.Close()
		return nil
	}
	s.http = &http.Server{
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.http
	s.mu.Unlock()

	s.logger.Info("websocket listener started",
		zap.String("addr", ln.Addr().String()),
		zap.String("path", s.cfg.Path),
		zap.Duration("startup", time.Since(start)),
	)
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving websocket: %w", err)
	}
	return nil
}

// Stop closes the listener and every open connection, then waits for their
// sessions to disconnect.
func (s *Server) Stop() {
	s.mu.Lock()
	s.stopped = true
	srv := s.http
	for c := range s.conns {
		c.Close()
	}
	s.mu.Unlock()

	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			s.logger.Warn("websocket listener shutdown", zap.Error(err))
		}
	}
	s.wg.Wait()
	s.logger.Info("websocket listener stopped")
}

func (s *Server) track(c *ws.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	s.conns[c] = struct{}{}
	s.wg.Add(1)
	return true
}

func (s *Server) untrack(c *ws.Conn) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
	s.wg.Done()
}

func (s *Server) serveHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		if err := s.health(ctx); err != nil {
			s.logger.Warn("health check failed", zap.Error(err))
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	c, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}
	if !s.track(c) {
		c.Close()
		return
	}
	defer s.untrack(c)

	sess := session.New(s.cfg.SendBuffer)
	if err := s.handler.Connect(sess); err != nil {
		s.logger.Error("registering session", zap.Error(err))
		c.Close()
		return
	}
	s.logger.Info("client connected",
		zap.String("remote_addr", r.RemoteAddr),
		zap.String("session", sess.ID()),
	)

	start := time.Now()
	cn := newConn(c, s.cfg, observability.ForSession(s.logger, sess.ID()))
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		cn.writeLoop(sess)
	}()

	ctx, cancel := context.WithCancel(context.Background())
	err = cn.readLoop(ctx, sess, s.handler)
	cancel()

	s.handler.Disconnect(context.Background(), sess)
	<-writerDone
	c.Close()
	s.logger.Info("client disconnected",
		zap.String("remote_addr", r.RemoteAddr),
		zap.String("session", sess.ID()),
		zap.NamedError("reason", err),
		zap.Duration("duration", time.Since(start)),
	)
}
