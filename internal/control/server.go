// ABOUTME: HTTP control API for a running playback session
// ABOUTME: Status polling, stop requests, a WebSocket status feed and Prometheus metrics
package control

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/binaural-go/binaural/internal/version"
	"github.com/binaural-go/binaural/pkg/binaural"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const (
	// DefaultStatusInterval is how often /ws pushes a status update
	DefaultStatusInterval = 500 * time.Millisecond

	pingInterval  = 30 * time.Second
	writeDeadline = 10 * time.Second
	shutdownGrace = 5 * time.Second
)

// ErrNotListening is returned by Serve before Listen succeeded
var ErrNotListening = errors.New("control server is not listening")

// Config holds control server configuration
type Config struct {
	// Addr is the listen address, e.g. ":8928" or "127.0.0.1:0"
	Addr string
	// Status returns the current session status
	Status func() binaural.Status
	// Stop receives one event per accepted stop request
	Stop *binaural.ChanSource
	// StatusInterval overrides DefaultStatusInterval for /ws
	StatusInterval time.Duration
	Logger         *zap.Logger
}

// Server serves the control API
type Server struct {
	config   Config
	logger   *zap.Logger
	router   chi.Router
	upgrader websocket.Upgrader

	mu         sync.Mutex
	listener   net.Listener
	httpServer *http.Server
	conns      map[*websocket.Conn]struct{}
}

// New creates a control server
func New(config Config) *Server {
	if config.StatusInterval <= 0 {
		config.StatusInterval = DefaultStatusInterval
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		config: config,
		logger: logger.Named("control"),
		upgrader: websocket.Upgrader{
			// The API is meant for trusted local networks; CORS is open too.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]struct{}),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.Group(func(r chi.Router) {
		r.Use(s.logRequests)
		r.Get("/healthz", s.handleHealth)
		r.Get("/status", s.handleStatus)
		r.Post("/stop", s.handleStop)
		r.Handle("/metrics", promhttp.Handler())
	})
	r.Get("/ws", s.handleWebSocket)
	return r
}

// Handler returns the HTTP handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Listen binds the configured address
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("control server listen on %s: %w", s.config.Addr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Unlock()
	return nil
}

// Port returns the bound TCP port, or 0 before Listen
func (s *Server) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return 0
	}
	if addr, ok := s.listener.Addr().(*net.TCPAddr); ok {
		return addr.Port
	}
	return 0
}

// Serve handles requests until ctx is done, then shuts down gracefully
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	ln, srv := s.listener, s.httpServer
	s.mu.Unlock()
	if ln == nil {
		return ErrNotListening
	}

	s.logger.Info("control API listening", zap.String("addr", ln.Addr().String()))

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case err := <-errChan:
		serveErr = err
	}

	s.closeConns()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("control API shutdown", zap.Error(err))
	}

	if serveErr != nil {
		return fmt.Errorf("control server failed: %w", serveErr)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": version.Version})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if s.config.Status == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no session"})
		return
	}
	writeJSON(w, http.StatusOK, s.config.Status())
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if !s.requestStop("stop") {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "session is not accepting stop requests"})
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]bool{"stopping": true})
}

// requestStop queues a stop event. Every event on the shared source is a
// stop, so a full buffer means one is already pending and the request is
// still accepted. Only a missing or closed source refuses it.
func (s *Server) requestStop(key string) bool {
	if s.config.Stop == nil {
		return false
	}
	queued := s.config.Stop.Send(binaural.Event{Key: key, Source: "http"})
	accepted := queued || !s.config.Stop.Closed()
	s.logger.Info("stop requested", zap.Bool("accepted", accepted), zap.Bool("queued", queued))
	return accepted
}

// handleWebSocket streams status snapshots until the client goes away.
// A text message "stop" from the client requests a stop.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade", zap.Error(err))
		return
	}
	if !s.track(conn) {
		_ = conn.Close()
		return
	}
	defer s.untrack(conn)

	s.logger.Debug("websocket connected", zap.String("remote", r.RemoteAddr))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if string(data) == "stop" {
				s.requestStop("stop")
			}
		}
	}()

	s.writeStatus(conn, done)
}

func (s *Server) writeStatus(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(s.config.StatusInterval)
	defer ticker.Stop()
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	send := func() bool {
		if s.config.Status == nil {
			return true
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
		if err := conn.WriteJSON(s.config.Status()); err != nil {
			s.logger.Debug("websocket write", zap.Error(err))
			return false
		}
		return true
	}

	if !send() {
		return
	}
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if !send() {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeDeadline)); err != nil {
				return
			}
		}
	}
}

func (s *Server) track(conn *websocket.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conns == nil {
		return false
	}
	s.conns[conn] = struct{}{}
	return true
}

func (s *Server) untrack(conn *websocket.Conn) {
	s.mu.Lock()
	if s.conns != nil {
		delete(s.conns, conn)
	}
	s.mu.Unlock()
	_ = conn.Close()
}

// closeConns ends all WebSocket feeds; hijacked connections are not
// covered by http.Server.Shutdown.
func (s *Server) closeConns() {
	s.mu.Lock()
	conns := s.conns
	s.conns = nil
	s.mu.Unlock()

	for conn := range conns {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(time.Second))
		_ = conn.Close()
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(start)))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
