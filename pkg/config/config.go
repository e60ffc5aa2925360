package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Agents    AgentsConfig    `json:"agents"`
	Providers ProvidersConfig `json:"providers"`
	Tools     ToolsConfig     `json:"tools"`
	Memory    MemoryConfig    `json:"memory"`
	Log       LogConfig       `json:"log"`
}

type AgentsConfig struct {
	Model         string  `json:"model" env:"STUDYBUDDY_AGENTS_MODEL"`
	Provider      string  `json:"provider" env:"STUDYBUDDY_AGENTS_PROVIDER"`
	MaxTokens     int     `json:"max_tokens" env:"STUDYBUDDY_AGENTS_MAX_TOKENS"`
	Temperature   float64 `json:"temperature" env:"STUDYBUDDY_AGENTS_TEMPERATURE"`
	MaxToolPasses int     `json:"max_tool_passes" env:"STUDYBUDDY_AGENTS_MAX_TOOL_PASSES"`
}

type ProvidersConfig struct {
	Groq   ProviderConfig `json:"groq" envPrefix:"STUDYBUDDY_PROVIDERS_GROQ_"`
	OpenAI ProviderConfig `json:"openai" envPrefix:"STUDYBUDDY_PROVIDERS_OPENAI_"`
}

type ProviderConfig struct {
	APIKey  string `json:"api_key" env:"API_KEY"`
	APIBase string `json:"api_base" env:"API_BASE"`
	Proxy   string `json:"proxy,omitempty" env:"PROXY"`
}

type ToolsConfig struct {
	Wikipedia WikipediaConfig `json:"wikipedia"`
	Arxiv     ArxivConfig     `json:"arxiv"`
	WebSearch WebSearchConfig `json:"web_search"`
	Extract   ExtractConfig   `json:"extract"`
}

type WikipediaConfig struct {
	Enabled    bool `json:"enabled" env:"STUDYBUDDY_TOOLS_WIKIPEDIA_ENABLED"`
	MaxResults int  `json:"max_results" env:"STUDYBUDDY_TOOLS_WIKIPEDIA_MAX_RESULTS"`
	MaxChars   int  `json:"max_chars" env:"STUDYBUDDY_TOOLS_WIKIPEDIA_MAX_CHARS"`
}

type ArxivConfig struct {
	Enabled    bool `json:"enabled" env:"STUDYBUDDY_TOOLS_ARXIV_ENABLED"`
	MaxResults int  `json:"max_results" env:"STUDYBUDDY_TOOLS_ARXIV_MAX_RESULTS"`
	MaxChars   int  `json:"max_chars" env:"STUDYBUDDY_TOOLS_ARXIV_MAX_CHARS"`
}

type WebSearchConfig struct {
	Enabled    bool `json:"enabled" env:"STUDYBUDDY_TOOLS_WEB_SEARCH_ENABLED"`
	MaxResults int  `json:"max_results" env:"STUDYBUDDY_TOOLS_WEB_SEARCH_MAX_RESULTS"`
}

type ExtractConfig struct {
	Enabled  bool `json:"enabled" env:"STUDYBUDDY_TOOLS_EXTRACT_ENABLED"`
	MaxChars int  `json:"max_chars" env:"STUDYBUDDY_TOOLS_EXTRACT_MAX_CHARS"`
}

// URL tracker scopes: "turn" resets visited-URL tracking at the start of
// every search call, "conversation" accumulates across the whole
// conversation.
const (
	URLScopeTurn         = "turn"
	URLScopeConversation = "conversation"
)

type MemoryConfig struct {
	Dir                string  `json:"dir" env:"STUDYBUDDY_MEMORY_DIR"`
	StoreBackend       string  `json:"store_backend" env:"STUDYBUDDY_MEMORY_STORE_BACKEND"` // "file" or "sqlite"
	MainCapacity       int     `json:"main_capacity" env:"STUDYBUDDY_MEMORY_MAIN_CAPACITY"`
	AttentionSinkSize  int     `json:"attention_sink_size" env:"STUDYBUDDY_MEMORY_ATTENTION_SINK_SIZE"`
	RecencyWeight      float64 `json:"recency_weight" env:"STUDYBUDDY_MEMORY_RECENCY_WEIGHT"`
	RelevanceThreshold float64 `json:"relevance_threshold" env:"STUDYBUDDY_MEMORY_RELEVANCE_THRESHOLD"`
	Scorer             string  `json:"scorer" env:"STUDYBUDDY_MEMORY_SCORER"`     // "keyword" or "embedding"
	Embedder           string  `json:"embedder" env:"STUDYBUDDY_MEMORY_EMBEDDER"` // "chargram" or "hash", embedding scorer only
	URLTrackerScope    string  `json:"url_tracker_scope" env:"STUDYBUDDY_MEMORY_URL_TRACKER_SCOPE"`
	CleanupCron        string  `json:"cleanup_cron" env:"STUDYBUDDY_MEMORY_CLEANUP_CRON"`
	MaxAgeHours        int     `json:"max_age_hours" env:"STUDYBUDDY_MEMORY_MAX_AGE_HOURS"`
}

type LogConfig struct {
	Level string `json:"level" env:"STUDYBUDDY_LOG_LEVEL"`
}

func DefaultConfig() *Config {
	return &Config{
		Agents: AgentsConfig{
			Model:         "llama-3.3-70b-versatile",
			Provider:      "groq",
			MaxTokens:     4096,
			Temperature:   0.7,
			MaxToolPasses: 3,
		},
		Providers: ProvidersConfig{
			Groq:   ProviderConfig{},
			OpenAI: ProviderConfig{},
		},
		Tools: ToolsConfig{
			Wikipedia: WikipediaConfig{Enabled: true, MaxResults: 2, MaxChars: 4000},
			Arxiv:     ArxivConfig{Enabled: true, MaxResults: 3, MaxChars: 4000},
			WebSearch: WebSearchConfig{Enabled: true, MaxResults: 3},
			Extract:   ExtractConfig{Enabled: true, MaxChars: 8000},
		},
		Memory: MemoryConfig{
			Dir:                "~/.studybuddy/memory_store",
			StoreBackend:       "file",
			MainCapacity:       10,
			AttentionSinkSize:  2,
			RecencyWeight:      0.6,
			RelevanceThreshold: 0.3,
			Scorer:             "keyword",
			Embedder:           "chargram",
			URLTrackerScope:    URLScopeTurn,
			CleanupCron:        "0 * * * *",
			MaxAgeHours:        24,
		},
		Log: LogConfig{Level: "info"},
	}
}

func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if err := env.Parse(cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func SaveConfig(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// MemoryDir returns the memory store directory with ~ expanded.
func (c *Config) MemoryDir() string {
	return expandHome(c.Memory.Dir)
}

func expandHome(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		home, _ := os.UserHomeDir()
		if len(path) > 1 && path[1] == '/' {
			return home + path[1:]
		}
		return home
	}
	return path
}
