package mas

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jd-opensource/oxygent-go/oxy"
)

// HistoryStore records the request/response of every dispatched call,
// keyed by trace ID, for later inspection.
type HistoryStore interface {
	Append(ctx context.Context, req *oxy.Request, resp *oxy.Response) error
	Trace(ctx context.Context, traceID string) ([]HistoryEntry, error)
}

// HistoryEntry is one recorded call within a trace.
type HistoryEntry struct {
	Caller    string         `json:"caller,omitempty"`
	Callee    string         `json:"callee"`
	Arguments map[string]any `json:"arguments,omitempty"`
	State     oxy.State      `json:"state"`
	Output    string         `json:"output,omitempty"`
	Error     string         `json:"error,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// NopHistory discards everything.
type NopHistory struct{}

func (NopHistory) Append(context.Context, *oxy.Request, *oxy.Response) error { return nil }
func (NopHistory) Trace(context.Context, string) ([]HistoryEntry, error)     { return nil, nil }

// RedisHistory stores each trace as a Redis list of JSON entries.
type RedisHistory struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisHistory creates a Redis-backed history store. Entries expire
// after ttl; 0 keeps them forever.
func NewRedisHistory(client *redis.Client, ttl time.Duration) *RedisHistory {
	return &RedisHistory{client: client, prefix: "oxygent:trace:", ttl: ttl}
}

func (h *RedisHistory) key(traceID string) string { return h.prefix + traceID }

// Append implements HistoryStore.
func (h *RedisHistory) Append(ctx context.Context, req *oxy.Request, resp *oxy.Response) error {
	entry := HistoryEntry{
		Caller:    req.Caller,
		Callee:    req.Callee,
		Arguments: req.Arguments,
		State:     resp.State,
		Output:    resp.Output,
		Error:     resp.Err,
		Timestamp: time.Now().UTC(),
	}
	b, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal history entry: %w", err)
	}
	key := h.key(req.TraceID)
	if err := h.client.RPush(ctx, key, b).Err(); err != nil {
		return fmt.Errorf("rpush %s: %w", key, err)
	}
	if h.ttl > 0 {
		if err := h.client.Expire(ctx, key, h.ttl).Err(); err != nil {
			return fmt.Errorf("expire %s: %w", key, err)
		}
	}
	return nil
}

// Trace implements HistoryStore.
func (h *RedisHistory) Trace(ctx context.Context, traceID string) ([]HistoryEntry, error) {
	raw, err := h.client.LRange(ctx, h.key(traceID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange %s: %w", h.key(traceID), err)
	}
	entries := make([]HistoryEntry, 0, len(raw))
	for _, item := range raw {
		var entry HistoryEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			return nil, fmt.Errorf("decode history entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
