package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/jd-opensource/oxygent-go/oxy"
	"github.com/jd-opensource/oxygent-go/types"
)

const defaultWaybackBaseURL = "https://archive.org"

// Wayback queries the Internet Archive's availability API for archived
// snapshots of a URL.
type Wayback struct {
	client  *Client
	baseURL string
	logger  *zap.Logger
}

// WaybackOption configures a Wayback tool.
type WaybackOption func(*Wayback)

// WithWaybackBaseURL overrides the API base URL.
func WithWaybackBaseURL(base string) WaybackOption {
	return func(w *Wayback) { w.baseURL = strings.TrimRight(base, "/") }
}

// NewWayback creates the Wayback Machine tool.
func NewWayback(client *Client, logger *zap.Logger, opts ...WaybackOption) *Wayback {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &Wayback{client: client, baseURL: defaultWaybackBaseURL, logger: logger}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

type waybackAvailability struct {
	URL               string `json:"url"`
	ArchivedSnapshots struct {
		Closest struct {
			Available bool   `json:"available"`
			URL       string `json:"url"`
			Timestamp string `json:"timestamp"`
			Status    string `json:"status"`
		} `json:"closest"`
	} `json:"archived_snapshots"`
}

// Snapshot finds the archived snapshot of target closest to timestamp
// (YYYYMMDD or longer; empty means the most recent).
func (w *Wayback) Snapshot(ctx context.Context, target, timestamp string) (string, error) {
	if strings.TrimSpace(target) == "" {
		return "", types.NewError(types.ErrToolValidation, "url is required")
	}
	q := url.Values{}
	q.Set("url", target)
	if timestamp != "" {
		q.Set("timestamp", timestamp)
	}

	var out waybackAvailability
	if err := w.client.GetJSON(ctx, w.baseURL+"/wayback/available?"+q.Encode(), nil, &out); err != nil {
		return "", fmt.Errorf("wayback lookup for %q: %w", target, err)
	}

	closest := out.ArchivedSnapshots.Closest
	if !closest.Available {
		return fmt.Sprintf("No archived snapshot found for %s", target), nil
	}
	return fmt.Sprintf("Closest snapshot of %s:\nURL: %s\nTimestamp: %s\nStatus: %s",
		target, closest.URL, closest.Timestamp, closest.Status), nil
}

var waybackSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"query": {"type": "string", "description": "URL to look up in the Wayback Machine"},
		"timestamp": {"type": "string", "description": "Preferred snapshot time, YYYYMMDD or longer"}
	},
	"required": ["query"]
}`)

// Operators exposes the tool's operations as operators.
func (w *Wayback) Operators() []oxy.Oxy {
	return []oxy.Oxy{
		oxy.NewFunctionTool("wayback_snapshot", "Find an archived snapshot of a URL in the Wayback Machine.", waybackSchema,
			func(ctx context.Context, args map[string]any) (string, error) {
				target, _ := args["query"].(string)
				ts, _ := args["timestamp"].(string)
				return w.Snapshot(ctx, target, ts)
			}, w.logger),
	}
}
