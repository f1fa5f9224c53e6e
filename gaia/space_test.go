package gaia

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jd-opensource/oxygent-go/config"
	"github.com/jd-opensource/oxygent-go/types"
)

func TestBuildSpaceRequiresAProvider(t *testing.T) {
	cfg := config.DefaultConfig()
	_, _, err := BuildSpace(cfg, nil)
	require.Error(t, err)
	assert.Equal(t, types.ErrConfigInvalid, types.GetErrorCode(err))
}

func TestBuildSpaceWithOneModel(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Models.DeepSeekV3.APIKey = "sk-test"

	m, providers, err := BuildSpace(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"deepseek-v3"}, providers.Names())

	names := m.Names()
	assert.Contains(t, names, "deepseek-v3")
	assert.Contains(t, names, MasterAgentName)
	assert.Contains(t, names, "planning_agent")
	assert.Contains(t, names, "result_agent")
	assert.Contains(t, names, "searcher_agent")
	assert.Contains(t, names, "wiki_agent")
	assert.Contains(t, names, "wiki_summary")
	assert.Contains(t, names, "wayback_snapshot")
	assert.Contains(t, names, "current_time")

	// Token-gated tools and their agents are absent without credentials.
	assert.NotContains(t, names, "github_agent")
	assert.NotContains(t, names, "github_repo")
	assert.NotContains(t, names, "youtube_agent")
	assert.NotContains(t, names, "youtube_video")
}

func TestBuildSpaceWithTokens(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Models.DeepSeekV3.APIKey = "sk-test"
	cfg.Tools.GitHubToken = "gh-token"
	cfg.Tools.YouTubeAPIKey = "yt-key"

	m, _, err := BuildSpace(cfg, nil)
	require.NoError(t, err)

	names := m.Names()
	assert.Contains(t, names, "github_agent")
	assert.Contains(t, names, "github_repo")
	assert.Contains(t, names, "github_issues")
	assert.Contains(t, names, "youtube_agent")
	assert.Contains(t, names, "youtube_video")
}

func TestBuildSpaceFallbackProvider(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Models.GPT4o.APIKey = "sk-gpt"

	m, _, err := BuildSpace(cfg, nil)
	require.NoError(t, err)
	assert.Contains(t, m.Names(), "gpt-4o")
	assert.NotContains(t, m.Names(), "deepseek-v3")
	assert.Contains(t, m.Names(), MasterAgentName)
}
