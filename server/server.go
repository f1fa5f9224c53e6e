// Package server exposes the multi-agent system over HTTP: a chat endpoint
// running the master agent, a websocket stream of call events, health, and
// Prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jd-opensource/oxygent-go/config"
	"github.com/jd-opensource/oxygent-go/llm"
	"github.com/jd-opensource/oxygent-go/mas"
	"github.com/jd-opensource/oxygent-go/oxy"
)

// Server serves the chat/inspection API on top of an assembled space.
type Server struct {
	cfg       config.ServerConfig
	space     *mas.MAS
	providers *llm.Registry
	logger    *zap.Logger
	http      *http.Server

	mu   sync.Mutex
	subs map[chan mas.Event]struct{}
}

// Option configures a Server.
type Option func(*Server)

// WithProviders wires the LLM providers into the health endpoint, which
// then reports live reachability per provider.
func WithProviders(providers *llm.Registry) Option {
	return func(s *Server) { s.providers = providers }
}

// New creates a server for the given space.
func New(cfg config.ServerConfig, space *mas.MAS, logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		cfg:    cfg,
		space:  space,
		logger: logger.With(zap.String("component", "server")),
		subs:   make(map[chan mas.Event]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	space.Subscribe(s.broadcast)

	mux := http.NewServeMux()
	mux.Handle("/chat", methodOnly(http.MethodPost, http.HandlerFunc(s.handleChat)))
	mux.Handle("/ws", methodOnly(http.MethodGet, http.HandlerFunc(s.handleWS)))
	mux.Handle("/healthz", methodOnly(http.MethodGet, http.HandlerFunc(s.handleHealth)))
	mux.Handle("/metrics", methodOnly(http.MethodGet, promhttp.Handler()))

	s.http = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.http.Handler }

// ListenAndServe blocks until the listener fails or Shutdown is called.
func (s *Server) ListenAndServe() error {
	s.logger.Info("server listening", zap.String("addr", s.cfg.Addr()))
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	s.logger.Info("server shutting down")
	return s.http.Shutdown(shutdownCtx)
}

type chatRequest struct {
	Query    string `json:"query"`
	FileName string `json:"file_name,omitempty"`
}

type chatResponse struct {
	State  oxy.State `json:"state"`
	Output string    `json:"output,omitempty"`
	Error  string    `json:"error,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, chatResponse{State: oxy.StateFailed, Error: "invalid JSON body"})
		return
	}
	if req.Query == "" {
		writeJSON(w, http.StatusBadRequest, chatResponse{State: oxy.StateFailed, Error: "query is required"})
		return
	}

	args := map[string]any{"query": req.Query}
	if req.FileName != "" {
		args["file_name"] = req.FileName
	}
	resp, err := s.space.ChatWithAgent(r.Context(), args)
	if err != nil {
		s.logger.Warn("chat failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, chatResponse{State: oxy.StateFailed, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{State: resp.State, Output: resp.Output, Error: resp.Err})
}

type providerHealth struct {
	Healthy   bool   `json:"healthy"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

// handleHealth reports the space size and, when a provider registry is
// wired, live reachability per provider. Any unhealthy provider degrades
// the overall status without failing the endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status":    "ok",
		"operators": len(s.space.Names()),
	}

	if s.providers != nil {
		checks := make(map[string]providerHealth)
		for _, name := range s.providers.Names() {
			p, err := s.providers.Get(name)
			if err != nil {
				continue
			}
			checkCtx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
			status, err := p.HealthCheck(checkCtx)
			cancel()

			var check providerHealth
			if status != nil {
				check.Healthy = status.Healthy
				check.LatencyMS = status.Latency.Milliseconds()
			}
			if err != nil {
				check.Error = err.Error()
				body["status"] = "degraded"
			}
			checks[name] = check
		}
		body["providers"] = checks
	}
	writeJSON(w, http.StatusOK, body)
}

// handleWS streams call events to the client until it disconnects.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket accept failed", zap.Error(err))
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	events := s.subscribe()
	defer s.unsubscribe(events)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := wsjson.Write(ctx, conn, event); err != nil {
				return
			}
		}
	}
}

func (s *Server) subscribe() chan mas.Event {
	ch := make(chan mas.Event, 64)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()
	return ch
}

func (s *Server) unsubscribe(ch chan mas.Event) {
	s.mu.Lock()
	delete(s.subs, ch)
	s.mu.Unlock()
}

// broadcast fans an event out to websocket subscribers. Slow subscribers
// drop events instead of blocking the dispatcher.
func (s *Server) broadcast(event mas.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// methodOnly restricts a route to one HTTP method, mirroring the
// "METHOD /path" ServeMux patterns of Go 1.22+ on older toolchains.
func methodOnly(method string, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			w.Header().Set("Allow", method)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		h.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
