// Package mas implements the multi-agent system: a registry of operators
// (LLM providers, tools, agents) and the dispatcher that routes calls
// between them with trace propagation and cycle detection.
package mas

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jd-opensource/oxygent-go/internal/metrics"
	"github.com/jd-opensource/oxygent-go/oxy"
	"github.com/jd-opensource/oxygent-go/types"
)

// Event describes one dispatched call, delivered to observers as it
// completes. The server's websocket endpoint streams these.
type Event struct {
	TraceID  string        `json:"trace_id"`
	Caller   string        `json:"caller,omitempty"`
	Callee   string        `json:"callee"`
	State    oxy.State     `json:"state"`
	Output   string        `json:"output,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Observer receives call events. Implementations must not block.
type Observer func(Event)

// MAS is the operator registry and dispatcher.
type MAS struct {
	mu        sync.RWMutex
	oxys      map[string]oxy.Oxy
	master    string
	observers []Observer

	history HistoryStore
	logger  *zap.Logger
	metrics *metrics.Collector
}

// Option configures a MAS.
type Option func(*MAS)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(m *MAS) { m.logger = logger }
}

// WithHistory sets the per-trace call history store.
func WithHistory(h HistoryStore) Option {
	return func(m *MAS) { m.history = h }
}

// New creates an empty MAS.
func New(opts ...Option) *MAS {
	m := &MAS{
		oxys:    make(map[string]oxy.Oxy),
		history: NopHistory{},
		logger:  zap.NewNop(),
		metrics: metrics.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With(zap.String("component", "mas"))
	return m
}

// Register adds an operator under its name. Duplicate names are an error.
func (m *MAS) Register(o oxy.Oxy) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	name := o.Name()
	if name == "" {
		return types.NewError(types.ErrConfigInvalid, "operator has no name")
	}
	if _, exists := m.oxys[name]; exists {
		return types.NewError(types.ErrConfigInvalid, fmt.Sprintf("operator %q already registered", name))
	}
	m.oxys[name] = o
	m.logger.Debug("operator registered", zap.String("name", name))
	return nil
}

// SetMaster marks the named agent as the entry point for ChatWithAgent.
func (m *MAS) SetMaster(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.oxys[name]; !exists {
		return types.NewError(types.ErrOxyNotFound, fmt.Sprintf("master %q is not registered", name))
	}
	m.master = name
	return nil
}

// Lookup implements oxy.Dispatcher.
func (m *MAS) Lookup(name string) (oxy.Oxy, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.oxys[name]
	return o, ok
}

// Names returns the registered operator names.
func (m *MAS) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.oxys))
	for name := range m.oxys {
		names = append(names, name)
	}
	return names
}

// Subscribe registers an observer for call events.
func (m *MAS) Subscribe(obs Observer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, obs)
}

// Call implements oxy.Dispatcher. It resolves the callee, guards against
// delegation cycles, executes, and records the outcome.
func (m *MAS) Call(ctx context.Context, req *oxy.Request) (*oxy.Response, error) {
	if req.TraceID == "" {
		req.TraceID = uuid.NewString()
	}
	req.Bind(m)

	target, ok := m.Lookup(req.Callee)
	if !ok {
		return nil, types.NewError(types.ErrOxyNotFound, fmt.Sprintf("operator %q is not registered", req.Callee))
	}
	if req.OnStack(req.Callee) {
		return nil, types.NewError(types.ErrOxyCycle,
			fmt.Sprintf("operator %q is already on the call stack %v", req.Callee, req.CallStack))
	}

	start := time.Now()
	resp, err := target.Execute(ctx, req)
	elapsed := time.Since(start)

	if err != nil {
		if ctx.Err() != nil {
			resp = &oxy.Response{State: oxy.StateCanceled, Err: err.Error()}
		} else {
			resp = &oxy.Response{State: oxy.StateFailed, Err: err.Error()}
		}
	}

	m.metrics.ObserveOxyCall(req.Callee, string(resp.State), elapsed)
	m.logger.Info("call finished",
		zap.String("trace_id", req.TraceID),
		zap.String("caller", req.Caller),
		zap.String("callee", req.Callee),
		zap.String("state", string(resp.State)),
		zap.Duration("duration", elapsed))

	event := Event{
		TraceID:  req.TraceID,
		Caller:   req.Caller,
		Callee:   req.Callee,
		State:    resp.State,
		Output:   resp.Output,
		Error:    resp.Err,
		Duration: elapsed,
	}
	m.notify(event)
	if herr := m.history.Append(ctx, req, resp); herr != nil {
		m.logger.Warn("history append failed", zap.Error(herr))
	}

	if err != nil {
		return resp, err
	}
	return resp, nil
}

func (m *MAS) notify(event Event) {
	m.mu.RLock()
	observers := m.observers
	m.mu.RUnlock()
	for _, obs := range observers {
		obs(event)
	}
}

// ChatWithAgent runs one query through the master agent.
func (m *MAS) ChatWithAgent(ctx context.Context, args map[string]any) (*oxy.Response, error) {
	m.mu.RLock()
	master := m.master
	m.mu.RUnlock()
	if master == "" {
		return nil, types.NewError(types.ErrMasterNotSet, "no master agent configured")
	}
	return m.Call(ctx, oxy.NewRequest(master, args))
}
