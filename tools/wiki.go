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

const defaultWikipediaBaseURL = "https://en.wikipedia.org"

// Wikipedia exposes article summaries and revision history from the
// Wikipedia REST and Action APIs.
type Wikipedia struct {
	client  *Client
	baseURL string
	logger  *zap.Logger
}

// WikipediaOption configures a Wikipedia tool.
type WikipediaOption func(*Wikipedia)

// WithWikipediaBaseURL overrides the API base URL.
func WithWikipediaBaseURL(base string) WikipediaOption {
	return func(w *Wikipedia) { w.baseURL = strings.TrimRight(base, "/") }
}

// NewWikipedia creates the Wikipedia tool.
func NewWikipedia(client *Client, logger *zap.Logger, opts ...WikipediaOption) *Wikipedia {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &Wikipedia{client: client, baseURL: defaultWikipediaBaseURL, logger: logger}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

type wikiSummary struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Extract     string `json:"extract"`
	ContentURLs struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
}

// Summary fetches the lead-section summary of an article.
func (w *Wikipedia) Summary(ctx context.Context, title string) (string, error) {
	if strings.TrimSpace(title) == "" {
		return "", types.NewError(types.ErrToolValidation, "title is required")
	}
	var out wikiSummary
	u := w.baseURL + "/api/rest_v1/page/summary/" + url.PathEscape(strings.ReplaceAll(title, " ", "_"))
	if err := w.client.GetJSON(ctx, u, nil, &out); err != nil {
		return "", fmt.Errorf("wikipedia summary for %q: %w", title, err)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", out.Title)
	if out.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", out.Description)
	}
	fmt.Fprintf(&b, "Summary: %s", out.Extract)
	if page := out.ContentURLs.Desktop.Page; page != "" {
		fmt.Fprintf(&b, "\nURL: %s", page)
	}
	return b.String(), nil
}

type wikiRevisions struct {
	Query struct {
		Pages map[string]struct {
			Title     string `json:"title"`
			Revisions []struct {
				RevID     int64  `json:"revid"`
				Timestamp string `json:"timestamp"`
				User      string `json:"user"`
				Comment   string `json:"comment"`
			} `json:"revisions"`
		} `json:"pages"`
	} `json:"query"`
}

// Revisions lists the most recent revisions of an article.
func (w *Wikipedia) Revisions(ctx context.Context, title string, limit int) (string, error) {
	if strings.TrimSpace(title) == "" {
		return "", types.NewError(types.ErrToolValidation, "title is required")
	}
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	q := url.Values{}
	q.Set("action", "query")
	q.Set("format", "json")
	q.Set("prop", "revisions")
	q.Set("titles", title)
	q.Set("rvprop", "ids|timestamp|user|comment")
	q.Set("rvlimit", fmt.Sprint(limit))

	var out wikiRevisions
	if err := w.client.GetJSON(ctx, w.baseURL+"/w/api.php?"+q.Encode(), nil, &out); err != nil {
		return "", fmt.Errorf("wikipedia revisions for %q: %w", title, err)
	}

	var b strings.Builder
	for _, page := range out.Query.Pages {
		fmt.Fprintf(&b, "Revisions of %s:\n", page.Title)
		for _, rev := range page.Revisions {
			fmt.Fprintf(&b, "- %s by %s (rev %d): %s\n", rev.Timestamp, rev.User, rev.RevID, rev.Comment)
		}
	}
	if b.Len() == 0 {
		return "No revisions found for " + title, nil
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

var wikiSummarySchema = json.RawMessage(`{
	"type": "object",
	"properties": {"query": {"type": "string", "description": "Article title to summarize"}},
	"required": ["query"]
}`)

var wikiRevisionsSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"query": {"type": "string", "description": "Article title"},
		"limit": {"type": "integer", "description": "Number of revisions, max 50"}
	},
	"required": ["query"]
}`)

// Operators exposes the tool's operations as operators.
func (w *Wikipedia) Operators() []oxy.Oxy {
	return []oxy.Oxy{
		oxy.NewFunctionTool("wiki_summary", "Get the summary of a Wikipedia article by title.", wikiSummarySchema,
			func(ctx context.Context, args map[string]any) (string, error) {
				title, _ := args["query"].(string)
				return w.Summary(ctx, title)
			}, w.logger),
		oxy.NewFunctionTool("wiki_revisions", "List recent revisions of a Wikipedia article.", wikiRevisionsSchema,
			func(ctx context.Context, args map[string]any) (string, error) {
				title, _ := args["query"].(string)
				limit, _ := args["limit"].(float64)
				return w.Revisions(ctx, title, int(limit))
			}, w.logger),
	}
}
