package gaia

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/jd-opensource/oxygent-go/agent"
	"github.com/jd-opensource/oxygent-go/config"
	"github.com/jd-opensource/oxygent-go/llm"
	"github.com/jd-opensource/oxygent-go/mas"
	"github.com/jd-opensource/oxygent-go/oxy"
	"github.com/jd-opensource/oxygent-go/tools"
	"github.com/jd-opensource/oxygent-go/types"
)

// MasterAgentName is the entry agent of the benchmark space.
const MasterAgentName = "master_agent"

// BuildSpace assembles the benchmark multi-agent system from config:
// providers from their credentials, tools from their tokens, and the agent
// hierarchy on top. Agents referencing an unregistered model fail here,
// not mid-run. The returned registry exposes the providers for health
// reporting.
func BuildSpace(cfg *config.Config, logger *zap.Logger, opts ...mas.Option) (*mas.MAS, *llm.Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := mas.New(append([]mas.Option{mas.WithLogger(logger)}, opts...)...)

	providers := llm.NewRegistry()
	for _, mc := range cfg.Models.All() {
		if !mc.Enabled() {
			logger.Warn("model credential not set, provider disabled", zap.String("model", mc.Name))
			continue
		}
		p := llm.NewHTTPLLM(llm.Config{
			Name:        mc.Name,
			APIKey:      mc.APIKey,
			BaseURL:     mc.BaseURL,
			Model:       mc.Model,
			Temperature: mc.Temperature,
			MaxTokens:   mc.MaxTokens,
			Concurrency: mc.Concurrency,
			Timeout:     mc.Timeout,
			MaxRetries:  mc.MaxRetries,
		}, logger)
		if err := providers.Register(p); err != nil {
			return nil, nil, err
		}
		if err := m.Register(p); err != nil {
			return nil, nil, err
		}
	}
	if len(providers.Names()) == 0 {
		return nil, nil, types.NewError(types.ErrConfigInvalid,
			"no model credentials configured; set MODEL_DEEPSEEK_V3, MODEL_GPT4O, or MODEL_CLAUDE")
	}

	toolNames, err := registerTools(m, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	if err := registerAgents(m, cfg, providers, toolNames, logger); err != nil {
		return nil, nil, err
	}
	if err := m.SetMaster(MasterAgentName); err != nil {
		return nil, nil, err
	}
	return m, providers, nil
}

// registerTools wires the research tools whose credentials are available
// and returns the registered operator names by tool group.
func registerTools(m *mas.MAS, cfg *config.Config, logger *zap.Logger) (map[string][]string, error) {
	clientOpts := []tools.ClientOption{tools.WithClientLogger(logger)}
	if cfg.Tools.RatePerSecond > 0 {
		clientOpts = append(clientOpts, tools.WithRateLimit(cfg.Tools.RatePerSecond, int(cfg.Tools.RatePerSecond)+1))
	}
	client := tools.NewClient(clientOpts...)

	names := map[string][]string{}
	register := func(group string, ops []oxy.Oxy) error {
		for _, op := range ops {
			if err := m.Register(op); err != nil {
				return err
			}
			names[group] = append(names[group], op.Name())
		}
		return nil
	}

	if err := register("wiki", tools.NewWikipedia(client, logger).Operators()); err != nil {
		return nil, err
	}
	if err := register("wayback", tools.NewWayback(client, logger).Operators()); err != nil {
		return nil, err
	}
	if err := register("time", []oxy.Oxy{tools.NewCurrentTimeTool(nil, logger)}); err != nil {
		return nil, err
	}

	// Token-gated tools: agents for absent tokens are not assembled.
	if cfg.Tools.GitHubToken != "" {
		if err := register("github", tools.NewGitHub(client, cfg.Tools.GitHubToken, logger).Operators()); err != nil {
			return nil, err
		}
	} else {
		logger.Warn("GITHUB_TOKEN not set, github tools disabled")
	}
	if cfg.Tools.YouTubeAPIKey != "" {
		if err := register("youtube", tools.NewYouTube(client, cfg.Tools.YouTubeAPIKey, logger).Operators()); err != nil {
			return nil, err
		}
	} else {
		logger.Warn("YT_API_KEY not set, youtube tools disabled")
	}
	return names, nil
}

func registerAgents(m *mas.MAS, cfg *config.Config, providers *llm.Registry, toolNames map[string][]string, logger *zap.Logger) error {
	primary := cfg.Models.DeepSeekV3
	if !primary.Enabled() {
		// Fall back to whichever provider is configured.
		for _, mc := range cfg.Models.All() {
			if mc.Enabled() {
				primary = mc
				break
			}
		}
	}
	provider, err := providers.Get(primary.Name)
	if err != nil {
		return types.NewError(types.ErrConfigInvalid,
			fmt.Sprintf("agent model %q is not registered", primary.Name)).WithCause(err)
	}

	register := func(cfg agent.Config, react bool) error {
		var op oxy.Oxy
		if react {
			op = agent.NewReActAgent(cfg, provider, logger)
		} else {
			op = agent.NewChatAgent(cfg, provider, logger)
		}
		return m.Register(op)
	}

	subAgents := []string{"searcher_agent", "wiki_agent", "wayback_agent", "time_agent", "result_agent"}

	if err := register(agent.Config{
		Name:   "wiki_agent",
		Desc:   "Wiki historian: Wikipedia content and revision history at specific dates.",
		Prompt: wikiPrompt,
		Tools:  toolNames["wiki"],
	}, true); err != nil {
		return err
	}
	if err := register(agent.Config{
		Name:      "searcher_agent",
		Desc:      "Searcher: web page analysis and multi-step fact research.",
		Prompt:    searcherPrompt,
		Tools:     append(append([]string{}, toolNames["wiki"]...), toolNames["wayback"]...),
		SubAgents: []string{"wiki_agent"},
	}, true); err != nil {
		return err
	}
	if err := register(agent.Config{
		Name:   "wayback_agent",
		Desc:   "Archiver: use only for explicit historical URL snapshot requests.",
		Prompt: waybackPrompt,
		Tools:  toolNames["wayback"],
	}, true); err != nil {
		return err
	}
	if err := register(agent.Config{
		Name:   "time_agent",
		Desc:   "Time agent: current date and time in any timezone.",
		Prompt: timePrompt,
		Tools:  toolNames["time"],
	}, true); err != nil {
		return err
	}
	if err := register(agent.Config{
		Name:   "result_agent",
		Desc:   "Finisher: applies unit conversion, scaling, and formatting. Input must contain the initial answer.",
		Prompt: resultPrompt,
	}, false); err != nil {
		return err
	}

	if len(toolNames["github"]) > 0 {
		if err := register(agent.Config{
			Name:   "github_agent",
			Desc:   "Repo analyst: GitHub issue and pull request data; requires an owner/repo identifier.",
			Prompt: githubPrompt,
			Tools:  toolNames["github"],
		}, true); err != nil {
			return err
		}
		subAgents = append(subAgents, "github_agent")
	}
	if len(toolNames["youtube"]) > 0 {
		if err := register(agent.Config{
			Name:   "youtube_agent",
			Desc:   "Video researcher: YouTube metadata; requires a video ID or extractable URL.",
			Prompt: youtubePrompt,
			Tools:  toolNames["youtube"],
		}, true); err != nil {
			return err
		}
		subAgents = append(subAgents, "youtube_agent")
	}

	if err := register(agent.Config{
		Name:      "planning_agent",
		Desc:      "First invoker: decomposes the task into an ordered plan naming one agent per step.",
		Prompt:    planningPrompt,
		SubAgents: subAgents,
	}, true); err != nil {
		return err
	}

	return register(agent.Config{
		Name:      MasterAgentName,
		Desc:      "A planning agent that can plan the steps to complete the task.",
		Prompt:    masterPrompt,
		SubAgents: append([]string{"planning_agent"}, subAgents...),
		MaxRounds: cfg.Bench.MaxRounds,
	}, true)
}
