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

const defaultGitHubBaseURL = "https://api.github.com"

// GitHub queries the GitHub REST API for repository metadata and issues.
// Requests are authenticated when a token is configured; unauthenticated
// requests work but are rate limited harder by GitHub.
type GitHub struct {
	client  *Client
	baseURL string
	token   string
	logger  *zap.Logger
}

// GitHubOption configures a GitHub tool.
type GitHubOption func(*GitHub)

// WithGitHubBaseURL overrides the API base URL.
func WithGitHubBaseURL(base string) GitHubOption {
	return func(g *GitHub) { g.baseURL = strings.TrimRight(base, "/") }
}

// NewGitHub creates the GitHub tool.
func NewGitHub(client *Client, token string, logger *zap.Logger, opts ...GitHubOption) *GitHub {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &GitHub{client: client, baseURL: defaultGitHubBaseURL, token: token, logger: logger}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *GitHub) headers() map[string]string {
	h := map[string]string{"Accept": "application/vnd.github+json"}
	if g.token != "" {
		h["Authorization"] = "Bearer " + g.token
	}
	return h
}

// splitRepo parses "owner/repo".
func splitRepo(full string) (string, string, error) {
	parts := strings.SplitN(strings.TrimSpace(full), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", types.NewError(types.ErrToolValidation,
			fmt.Sprintf("repository must be owner/repo, got %q", full))
	}
	return parts[0], parts[1], nil
}

type githubRepo struct {
	FullName        string `json:"full_name"`
	Description     string `json:"description"`
	Language        string `json:"language"`
	StargazersCount int    `json:"stargazers_count"`
	OpenIssuesCount int    `json:"open_issues_count"`
	DefaultBranch   string `json:"default_branch"`
	CreatedAt       string `json:"created_at"`
	HTMLURL         string `json:"html_url"`
}

// Repo fetches repository metadata.
func (g *GitHub) Repo(ctx context.Context, fullName string) (string, error) {
	owner, repo, err := splitRepo(fullName)
	if err != nil {
		return "", err
	}
	var out githubRepo
	u := buildURL(g.baseURL, []string{"repos", owner, repo}, nil)
	if err := g.client.GetJSON(ctx, u, g.headers(), &out); err != nil {
		return "", fmt.Errorf("github repo %s: %w", fullName, err)
	}
	return fmt.Sprintf("Repository: %s\nDescription: %s\nLanguage: %s\nStars: %d\nOpen issues: %d\nDefault branch: %s\nCreated: %s\nURL: %s",
		out.FullName, out.Description, out.Language, out.StargazersCount,
		out.OpenIssuesCount, out.DefaultBranch, out.CreatedAt, out.HTMLURL), nil
}

type githubIssue struct {
	Number    int    `json:"number"`
	Title     string `json:"title"`
	State     string `json:"state"`
	CreatedAt string `json:"created_at"`
	ClosedAt  string `json:"closed_at"`
	User      struct {
		Login string `json:"login"`
	} `json:"user"`
	Labels []struct {
		Name string `json:"name"`
	} `json:"labels"`
	PullRequest *struct{} `json:"pull_request,omitempty"`
}

// Issues lists repository issues filtered by state ("open", "closed",
// "all") and label. Pull requests are excluded.
func (g *GitHub) Issues(ctx context.Context, fullName, state, label string, limit int) (string, error) {
	owner, repo, err := splitRepo(fullName)
	if err != nil {
		return "", err
	}
	if state == "" {
		state = "all"
	}
	if limit <= 0 || limit > 100 {
		limit = 30
	}
	q := url.Values{}
	q.Set("state", state)
	q.Set("per_page", fmt.Sprint(limit))
	q.Set("sort", "created")
	q.Set("direction", "asc")
	if label != "" {
		q.Set("labels", label)
	}

	var out []githubIssue
	u := buildURL(g.baseURL, []string{"repos", owner, repo, "issues"}, q)
	if err := g.client.GetJSON(ctx, u, g.headers(), &out); err != nil {
		return "", fmt.Errorf("github issues %s: %w", fullName, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Issues of %s (state=%s):\n", fullName, state)
	count := 0
	for _, issue := range out {
		if issue.PullRequest != nil {
			continue
		}
		labels := make([]string, 0, len(issue.Labels))
		for _, l := range issue.Labels {
			labels = append(labels, l.Name)
		}
		fmt.Fprintf(&b, "- #%d %q by %s, %s, created %s", issue.Number, issue.Title, issue.User.Login, issue.State, issue.CreatedAt)
		if issue.ClosedAt != "" {
			fmt.Fprintf(&b, ", closed %s", issue.ClosedAt)
		}
		if len(labels) > 0 {
			fmt.Fprintf(&b, ", labels: %s", strings.Join(labels, ", "))
		}
		b.WriteString("\n")
		count++
	}
	if count == 0 {
		return fmt.Sprintf("No issues found for %s (state=%s, label=%q)", fullName, state, label), nil
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

var githubRepoSchema = json.RawMessage(`{
	"type": "object",
	"properties": {"query": {"type": "string", "description": "Repository as owner/repo"}},
	"required": ["query"]
}`)

var githubIssuesSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"query": {"type": "string", "description": "Repository as owner/repo"},
		"state": {"type": "string", "description": "Issue state: open, closed, or all"},
		"label": {"type": "string", "description": "Filter by label name"},
		"limit": {"type": "integer", "description": "Max issues to return, up to 100"}
	},
	"required": ["query"]
}`)

// Operators exposes the tool's operations as operators.
func (g *GitHub) Operators() []oxy.Oxy {
	return []oxy.Oxy{
		oxy.NewFunctionTool("github_repo", "Get metadata of a GitHub repository.", githubRepoSchema,
			func(ctx context.Context, args map[string]any) (string, error) {
				full, _ := args["query"].(string)
				return g.Repo(ctx, full)
			}, g.logger),
		oxy.NewFunctionTool("github_issues", "List issues of a GitHub repository, oldest first.", githubIssuesSchema,
			func(ctx context.Context, args map[string]any) (string, error) {
				full, _ := args["query"].(string)
				state, _ := args["state"].(string)
				label, _ := args["label"].(string)
				limit, _ := args["limit"].(float64)
				return g.Issues(ctx, full, state, label, int(limit))
			}, g.logger),
	}
}
