package providers

import (
	"fmt"
	"strings"

	"github.com/studybuddyhq/studybuddy/pkg/config"
)

const (
	ProviderGroq   = "groq"
	ProviderOpenAI = "openai"

	defaultGroqAPIBase   = "https://api.groq.com/openai/v1"
	defaultOpenAIAPIBase = "https://api.openai.com/v1"

	defaultGroqModel   = "llama-3.3-70b-versatile"
	defaultOpenAIModel = "gpt-4o-mini"
)

func NormalizeProviderName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ProviderGroq
	}
	return name
}

// CreateProvider builds the configured LLM provider. Groq is the
// default when no provider is named.
func CreateProvider(cfg *config.Config) (LLMProvider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	switch NormalizeProviderName(cfg.Agents.Provider) {
	case ProviderGroq:
		base := cfg.Providers.Groq.APIBase
		if base == "" {
			base = defaultGroqAPIBase
		}
		model := cfg.Agents.Model
		if model == "" {
			model = defaultGroqModel
		}
		return newChatCompletionsProvider(ProviderGroq, base, cfg.Providers.Groq.APIKey, model, cfg.Providers.Groq.Proxy)
	case ProviderOpenAI:
		base := cfg.Providers.OpenAI.APIBase
		if base == "" {
			base = defaultOpenAIAPIBase
		}
		model := cfg.Agents.Model
		if model == "" {
			model = defaultOpenAIModel
		}
		return newChatCompletionsProvider(ProviderOpenAI, base, cfg.Providers.OpenAI.APIKey, model, cfg.Providers.OpenAI.Proxy)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Agents.Provider)
	}
}
