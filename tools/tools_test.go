package tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jd-opensource/oxygent-go/types"
)

func testClient() *Client {
	return NewClient(WithRateLimit(1000, 1000))
}

func TestWikipediaSummary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/rest_v1/page/summary/Mercedes_Sosa", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"title": "Mercedes Sosa",
			"description": "Argentine singer",
			"extract": "Haydée Mercedes Sosa was an Argentine singer.",
			"content_urls": {"desktop": {"page": "https://en.wikipedia.org/wiki/Mercedes_Sosa"}}
		}`))
	}))
	defer srv.Close()

	wiki := NewWikipedia(testClient(), nil, WithWikipediaBaseURL(srv.URL))
	got, err := wiki.Summary(context.Background(), "Mercedes Sosa")
	require.NoError(t, err)
	assert.Contains(t, got, "Title: Mercedes Sosa")
	assert.Contains(t, got, "Argentine singer")
	assert.Contains(t, got, "URL: https://en.wikipedia.org/wiki/Mercedes_Sosa")
}

func TestWikipediaSummaryEmptyTitle(t *testing.T) {
	wiki := NewWikipedia(testClient(), nil)
	_, err := wiki.Summary(context.Background(), "  ")
	require.Error(t, err)
	assert.Equal(t, types.ErrToolValidation, types.GetErrorCode(err))
}

func TestWikipediaRevisions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/w/api.php", r.URL.Path)
		assert.Equal(t, "Go (programming language)", r.URL.Query().Get("titles"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"query": {"pages": {"12345": {
				"title": "Go (programming language)",
				"revisions": [
					{"revid": 99, "timestamp": "2023-01-02T03:04:05Z", "user": "gopher", "comment": "fix typo"}
				]
			}}}
		}`))
	}))
	defer srv.Close()

	wiki := NewWikipedia(testClient(), nil, WithWikipediaBaseURL(srv.URL))
	got, err := wiki.Revisions(context.Background(), "Go (programming language)", 5)
	require.NoError(t, err)
	assert.Contains(t, got, "rev 99")
	assert.Contains(t, got, "gopher")
}

func TestWaybackSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wayback/available", r.URL.Path)
		assert.Equal(t, "example.com", r.URL.Query().Get("url"))
		assert.Equal(t, "20200101", r.URL.Query().Get("timestamp"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"url": "example.com",
			"archived_snapshots": {"closest": {
				"available": true,
				"url": "http://web.archive.org/web/20200101000000/http://example.com",
				"timestamp": "20200101000000",
				"status": "200"
			}}
		}`))
	}))
	defer srv.Close()

	wb := NewWayback(testClient(), nil, WithWaybackBaseURL(srv.URL))
	got, err := wb.Snapshot(context.Background(), "example.com", "20200101")
	require.NoError(t, err)
	assert.Contains(t, got, "20200101000000")
	assert.Contains(t, got, "web.archive.org")
}

func TestWaybackNoSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"url": "nowhere.test", "archived_snapshots": {}}`))
	}))
	defer srv.Close()

	wb := NewWayback(testClient(), nil, WithWaybackBaseURL(srv.URL))
	got, err := wb.Snapshot(context.Background(), "nowhere.test", "")
	require.NoError(t, err)
	assert.Contains(t, got, "No archived snapshot")
}

func TestGitHubRepo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/golang/go", r.URL.Path)
		assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"full_name": "golang/go",
			"description": "The Go programming language",
			"language": "Go",
			"stargazers_count": 120000,
			"open_issues_count": 9000,
			"default_branch": "master",
			"created_at": "2014-08-19T04:33:40Z",
			"html_url": "https://github.com/golang/go"
		}`))
	}))
	defer srv.Close()

	gh := NewGitHub(testClient(), "token-123", nil, WithGitHubBaseURL(srv.URL))
	got, err := gh.Repo(context.Background(), "golang/go")
	require.NoError(t, err)
	assert.Contains(t, got, "golang/go")
	assert.Contains(t, got, "Stars: 120000")
}

func TestGitHubIssuesSkipsPullRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/numpy/numpy/issues", r.URL.Path)
		assert.Equal(t, "closed", r.URL.Query().Get("state"))
		assert.Equal(t, "06 - Regression", r.URL.Query().Get("labels"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"number": 1, "title": "real issue", "state": "closed",
			 "created_at": "2019-04-15T00:00:00Z", "closed_at": "2019-05-01T00:00:00Z",
			 "user": {"login": "alice"}, "labels": [{"name": "06 - Regression"}]},
			{"number": 2, "title": "a pr", "state": "closed",
			 "created_at": "2019-04-16T00:00:00Z",
			 "user": {"login": "bob"}, "labels": [], "pull_request": {}}
		]`))
	}))
	defer srv.Close()

	gh := NewGitHub(testClient(), "", nil, WithGitHubBaseURL(srv.URL))
	got, err := gh.Issues(context.Background(), "numpy/numpy", "closed", "06 - Regression", 10)
	require.NoError(t, err)
	assert.Contains(t, got, "#1")
	assert.Contains(t, got, "alice")
	assert.NotContains(t, got, "#2")
}

func TestGitHubBadRepoName(t *testing.T) {
	gh := NewGitHub(testClient(), "", nil)
	_, err := gh.Repo(context.Background(), "not-a-repo")
	require.Error(t, err)
	assert.Equal(t, types.ErrToolValidation, types.GetErrorCode(err))
}

func TestYouTubeVideo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/videos", r.URL.Path)
		assert.Equal(t, "dQw4w9WgXcQ", r.URL.Query().Get("id"))
		assert.Equal(t, "yt-key", r.URL.Query().Get("key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"items": [{
				"id": "dQw4w9WgXcQ",
				"snippet": {"title": "A video", "channelTitle": "A channel",
					"publishedAt": "2009-10-25T06:57:33Z", "description": "desc"},
				"contentDetails": {"duration": "PT3M33S"},
				"statistics": {"viewCount": "1000000", "likeCount": "50000"}
			}]
		}`))
	}))
	defer srv.Close()

	yt := NewYouTube(testClient(), "yt-key", nil, WithYouTubeBaseURL(srv.URL))
	got, err := yt.Video(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Contains(t, got, "Title: A video")
	assert.Contains(t, got, "Duration: PT3M33S")
}

func TestYouTubeMissingKey(t *testing.T) {
	yt := NewYouTube(testClient(), "", nil)
	_, err := yt.Video(context.Background(), "dQw4w9WgXcQ")
	require.Error(t, err)
	assert.Equal(t, types.ErrAuthentication, types.GetErrorCode(err))
}

func TestExtractVideoID(t *testing.T) {
	cases := map[string]string{
		"dQw4w9WgXcQ": "dQw4w9WgXcQ",
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ": "dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ":                "dQw4w9WgXcQ",
		"https://www.youtube.com/shorts/dQw4w9WgXcQ":  "dQw4w9WgXcQ",
	}
	for input, want := range cases {
		got, err := extractVideoID(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}
	_, err := extractVideoID("https://example.com/not-youtube")
	require.Error(t, err)
}

func TestCurrentTimeTool(t *testing.T) {
	fixed := func() time.Time {
		return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	}
	tool := NewCurrentTimeTool(fixed, nil)
	assert.Equal(t, "current_time", tool.Name())

	out, err := tool.Execute(context.Background(), reqWithArgs(map[string]any{"query": ""}))
	require.NoError(t, err)
	assert.Contains(t, out.Output, "2024-06-01 12:00:00 UTC")

	_, err = tool.Execute(context.Background(), reqWithArgs(map[string]any{"query": "Mars/Olympus"}))
	require.Error(t, err)
}

func TestClientUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	var out map[string]any
	err := testClient().GetJSON(context.Background(), srv.URL, nil, &out)
	require.Error(t, err)
	assert.Equal(t, types.ErrUpstreamError, types.GetErrorCode(err))
	assert.True(t, types.IsRetryable(err))
}

func TestTruncateKeepsRunesIntact(t *testing.T) {
	long := strings.Repeat("号", 200)
	got := truncate(long, 500)
	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), 503)
	assert.True(t, strings.HasSuffix(got, "..."))

	assert.Equal(t, "short", truncate("short", 500))
}
