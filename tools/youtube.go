package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/jd-opensource/oxygent-go/oxy"
	"github.com/jd-opensource/oxygent-go/types"
)

const defaultYouTubeBaseURL = "https://www.googleapis.com/youtube/v3"

var youtubeIDPattern = regexp.MustCompile(`(?:v=|youtu\.be/|/shorts/|/embed/)([\w-]{11})`)

// YouTube queries the YouTube Data API v3 for video metadata. Requires an
// API key.
type YouTube struct {
	client  *Client
	baseURL string
	apiKey  string
	logger  *zap.Logger
}

// YouTubeOption configures a YouTube tool.
type YouTubeOption func(*YouTube)

// WithYouTubeBaseURL overrides the API base URL.
func WithYouTubeBaseURL(base string) YouTubeOption {
	return func(y *YouTube) { y.baseURL = strings.TrimRight(base, "/") }
}

// NewYouTube creates the YouTube tool.
func NewYouTube(client *Client, apiKey string, logger *zap.Logger, opts ...YouTubeOption) *YouTube {
	if logger == nil {
		logger = zap.NewNop()
	}
	y := &YouTube{client: client, baseURL: defaultYouTubeBaseURL, apiKey: apiKey, logger: logger}
	for _, opt := range opts {
		opt(y)
	}
	return y
}

// extractVideoID accepts a bare 11-character video ID or any common
// YouTube URL form.
func extractVideoID(input string) (string, error) {
	input = strings.TrimSpace(input)
	if m := youtubeIDPattern.FindStringSubmatch(input); m != nil {
		return m[1], nil
	}
	if len(input) == 11 && !strings.ContainsAny(input, "/?&=") {
		return input, nil
	}
	return "", types.NewError(types.ErrToolValidation,
		fmt.Sprintf("cannot extract a video ID from %q", input))
}

type youtubeVideoList struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			ChannelTitle string `json:"channelTitle"`
			PublishedAt  string `json:"publishedAt"`
			Description  string `json:"description"`
		} `json:"snippet"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
		Statistics struct {
			ViewCount string `json:"viewCount"`
			LikeCount string `json:"likeCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// Video fetches metadata for a video given its ID or URL.
func (y *YouTube) Video(ctx context.Context, idOrURL string) (string, error) {
	if y.apiKey == "" {
		return "", types.NewError(types.ErrAuthentication, "YouTube API key is not configured")
	}
	id, err := extractVideoID(idOrURL)
	if err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("part", "snippet,contentDetails,statistics")
	q.Set("id", id)
	q.Set("key", y.apiKey)

	var out youtubeVideoList
	if err := y.client.GetJSON(ctx, y.baseURL+"/videos?"+q.Encode(), nil, &out); err != nil {
		return "", fmt.Errorf("youtube video %s: %w", id, err)
	}
	if len(out.Items) == 0 {
		return "", types.NewError(types.ErrTaskNotFound, fmt.Sprintf("video %s not found", id))
	}

	v := out.Items[0]
	desc := truncate(v.Snippet.Description, 500)
	return fmt.Sprintf("Title: %s\nChannel: %s\nPublished: %s\nDuration: %s\nViews: %s\nLikes: %s\nDescription: %s",
		v.Snippet.Title, v.Snippet.ChannelTitle, v.Snippet.PublishedAt,
		v.ContentDetails.Duration, v.Statistics.ViewCount, v.Statistics.LikeCount, desc), nil
}

// truncate shortens s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

var youtubeSchema = json.RawMessage(`{
	"type": "object",
	"properties": {"query": {"type": "string", "description": "YouTube video URL or 11-character video ID"}},
	"required": ["query"]
}`)

// Operators exposes the tool's operations as operators.
func (y *YouTube) Operators() []oxy.Oxy {
	return []oxy.Oxy{
		oxy.NewFunctionTool("youtube_video", "Get metadata of a YouTube video by URL or ID.", youtubeSchema,
			func(ctx context.Context, args map[string]any) (string, error) {
				q, _ := args["query"].(string)
				return y.Video(ctx, q)
			}, y.logger),
	}
}
