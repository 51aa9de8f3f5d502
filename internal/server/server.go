// Package server provides the slabs dev server.
//
// The server renders the registry module and its type declarations on demand
// from the session's BlockRegistry and pushes reload notifications to
// connected editors over a websocket whenever a rescan publishes a new block
// set. It serves generated text only; bundler integration consumes the same
// bytes through the virtual-module protocol.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/slabs-dev/slabs/internal/config"
	"github.com/slabs-dev/slabs/internal/logging"
	"github.com/slabs-dev/slabs/internal/registry"
)

// reloadCoalesce groups the burst of per-block registry events emitted by
// one Replace into a single reload push.
const reloadCoalesce = 100 * time.Millisecond

// Server serves the generated registry artifacts and live-reload events.
type Server struct {
	cfg      config.ServerConfig
	registry *registry.BlockRegistry
	logger   logging.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}

	httpServer *http.Server
}

// New creates a dev server bound to a registry.
func New(cfg config.ServerConfig, reg *registry.BlockRegistry, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NopLogger{}
	}

	return &Server{
		cfg:      cfg,
		registry: reg,
		logger:   logger.WithComponent("server"),
		clients:  make(map[*websocket.Conn]struct{}),
	}
}

// Start serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/registry.js", s.handleModule)
	mux.HandleFunc("/registry.d.ts", s.handleTypes)
	mux.HandleFunc("/api/blocks", s.handleBlocks)
	mux.HandleFunc("/ws", s.handleWebSocket)

	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprintf("%d", s.cfg.Port))
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	events := s.registry.Watch()
	defer s.registry.Unwatch(events)
	go s.broadcastLoop(ctx, events)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()

	s.logger.Info(ctx, "dev server listening", "addr", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return err
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<!doctype html>
<html>
<head><title>slabs</title></head>
<body>
<h1>slabs dev server</h1>
<p>%d blocks registered.</p>
<ul>
<li><a href="/registry.js">registry.js</a></li>
<li><a href="/registry.d.ts">registry.d.ts</a></li>
<li><a href="/api/blocks">block metadata</a></li>
</ul>
</body>
</html>
`, s.registry.Count())
}

func (s *Server) handleModule(w http.ResponseWriter, r *http.Request) {
	source, err := registry.GenerateModule(s.registry.All())
	if err != nil {
		s.logger.Error(r.Context(), err, "generating registry module")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	_, _ = w.Write([]byte(source))
}

func (s *Server) handleTypes(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(registry.GenerateTypes(s.registry.All())))
}

// blockView is the JSON shape served to editor tooling.
type blockView struct {
	Name     string `json:"name"`
	Title    string `json:"title"`
	Category string `json:"category,omitempty"`
	Path     string `json:"path"`
	Preview  bool   `json:"hasPreview"`
	Style    bool   `json:"hasStyle"`
}

func (s *Server) handleBlocks(w http.ResponseWriter, r *http.Request) {
	defs := s.registry.All()
	views := make([]blockView, len(defs))
	for i, def := range defs {
		views[i] = blockView{
			Name:     def.Name,
			Title:    def.Meta.Title,
			Category: def.Meta.Category,
			Path:     def.Path,
			Preview:  def.Files.PreviewPath != "",
			Style:    def.Files.StylePath != "",
		}
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(views); err != nil {
		s.logger.Error(r.Context(), err, "encoding block list")
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Warn(r.Context(), err, "websocket accept failed")
		return
	}

	s.mu.Lock()
	s.clients[conn] = struct{}{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
		_ = conn.CloseNow()
	}()

	// Hold the connection open; reads only to observe close.
	ctx := r.Context()
	for {
		if _, _, err := conn.Read(ctx); err != nil {
			return
		}
	}
}

// broadcastLoop coalesces registry events and pushes one reload per batch.
func (s *Server) broadcastLoop(ctx context.Context, events <-chan registry.BlockEvent) {
	var timer *time.Timer
	var timerCh <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-events:
			if !ok {
				return
			}
			if timer == nil {
				timer = time.NewTimer(reloadCoalesce)
				timerCh = timer.C
			} else {
				timer.Reset(reloadCoalesce)
			}
		case <-timerCh:
			s.broadcastReload(ctx)
		}
	}
}

func (s *Server) broadcastReload(ctx context.Context) {
	s.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(s.clients))
	for conn := range s.clients {
		conns = append(conns, conn)
	}
	s.mu.Unlock()

	for _, conn := range conns {
		writeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := conn.Write(writeCtx, websocket.MessageText, []byte("reload")); err != nil {
			s.logger.Debug(ctx, "dropping stale websocket client", "error", err.Error())
			s.mu.Lock()
			delete(s.clients, conn)
			s.mu.Unlock()
			_ = conn.CloseNow()
		}
		cancel()
	}

	s.logger.Debug(ctx, "reload broadcast", "clients", len(conns))
}
