// Package config defines and loads the YAML configuration: LLM providers,
// debate rosters, prompt templates, gateway, schedule, and broadcast
// channels. Loading is fail-fast: missing or malformed required fields are
// errors, never silent defaults, except where a default is documented
// (default provider/roster key selection, prompt templates).
package config

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/agorabot/agora/internal/schema"
)

// Provider holds the endpoint and credentials of one OpenAI-compatible
// chat-completion provider.
type Provider struct {
	Name         string            `yaml:"name"`
	BaseURL      string            `yaml:"baseUrl"`
	APIKey       string            `yaml:"apiKey"`
	Models       []string          `yaml:"models"`
	ExtraHeaders map[string]string `yaml:"extraHeaders,omitempty"`
}

// DefaultModel returns the first configured model, or "".
func (p Provider) DefaultModel() string {
	if len(p.Models) == 0 {
		return ""
	}
	return p.Models[0]
}

// knownBaseURLs fills in the endpoint for well-known provider keys when the
// config omits baseUrl.
var knownBaseURLs = map[string]string{
	"openai":      "https://api.openai.com/v1",
	"openrouter":  "https://openrouter.ai/api/v1",
	"deepseek":    "https://api.deepseek.com/v1",
	"groq":        "https://api.groq.com/openai/v1",
	"moonshot":    "https://api.moonshot.cn/v1",
	"siliconflow": "https://api.siliconflow.cn/v1",
}

// SlackConfig configures the Slack transcript broadcast channel.
type SlackConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"botToken"`
	Channel  string `yaml:"channel"`
}

// TelegramConfig configures the Telegram transcript broadcast channel.
type TelegramConfig struct {
	Enabled bool   `yaml:"enabled"`
	Token   string `yaml:"token"`
	ChatID  int64  `yaml:"chatId"`
}

// ChannelsConfig groups the broadcast channels.
type ChannelsConfig struct {
	Slack    SlackConfig    `yaml:"slack"`
	Telegram TelegramConfig `yaml:"telegram"`
}

// GatewayConfig configures the HTTP gateway.
type GatewayConfig struct {
	Port int `yaml:"port"`
}

// ScheduleConfig configures the scheduled-debate service.
type ScheduleConfig struct {
	Store string `yaml:"store,omitempty"` // jobs file path; default DataDir()/schedule/jobs.json
}

// Config is the root configuration document.
type Config struct {
	DefaultProvider string                   `yaml:"defaultProvider,omitempty"`
	DefaultRoster   string                   `yaml:"defaultRoster,omitempty"`
	Providers       map[string]Provider      `yaml:"providers"`
	Rosters         map[string]schema.Roster `yaml:"rosters"`
	Prompts         schema.ArenaPrompts      `yaml:"prompts,omitempty"`
	Gateway         GatewayConfig            `yaml:"gateway,omitempty"`
	Schedule        ScheduleConfig           `yaml:"schedule,omitempty"`
	Channels        ChannelsConfig           `yaml:"channels,omitempty"`
}

// Provider resolves a provider by key. An empty or unknown key falls back to
// DefaultProvider, then to the first key in sorted order.
func (c *Config) Provider(key string) (string, Provider, bool) {
	if key == "" {
		key = c.DefaultProvider
	}
	if p, ok := c.Providers[key]; ok {
		return key, p, true
	}
	for _, k := range sortedKeys(c.Providers) {
		return k, c.Providers[k], true
	}
	return "", Provider{}, false
}

// Roster resolves a roster by key with the same fallback rules as Provider.
func (c *Config) Roster(key string) (string, schema.Roster, bool) {
	if key == "" {
		key = c.DefaultRoster
	}
	if r, ok := c.Rosters[key]; ok {
		return key, r, true
	}
	for _, k := range sortedKeys(c.Rosters) {
		return k, c.Rosters[k], true
	}
	return "", schema.Roster{}, false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ConfigPath returns the default configuration file path: ~/.agora/config.yaml.
func ConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".agora/config.yaml"
	}
	return filepath.Join(home, ".agora", "config.yaml")
}

// DataDir returns the agora data directory: ~/.agora.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".agora"
	}
	return filepath.Join(home, ".agora")
}

// ScheduleStorePath resolves the scheduled-jobs file.
func (c *Config) ScheduleStorePath() string {
	if c.Schedule.Store != "" {
		return c.Schedule.Store
	}
	return filepath.Join(DataDir(), "schedule", "jobs.json")
}

// DefaultConfig returns the starter configuration written by `agora init`:
// an OpenRouter provider placeholder and a small example roster.
func DefaultConfig() Config {
	return Config{
		DefaultProvider: "openrouter",
		DefaultRoster:   "salon",
		Providers: map[string]Provider{
			"openrouter": {
				Name:    "OpenRouter",
				BaseURL: "https://openrouter.ai/api/v1",
				APIKey:  "",
				Models:  []string{"openai/gpt-4o-mini", "anthropic/claude-3.5-haiku"},
			},
		},
		Rosters: map[string]schema.Roster{
			"salon": {
				Name: "The Salon",
				Agents: []schema.AgentProfile{
					{ID: "optimist", Name: "Vera", Persona: "a relentless optimist who finds the upside in every argument", Accent: "#4caf50"},
					{ID: "skeptic", Name: "Milo", Persona: "a dry skeptic who demands evidence and distrusts consensus", Accent: "#ff9800"},
					{ID: "historian", Name: "Ada", Persona: "a historian who reframes every question through precedent", Accent: "#2196f3"},
				},
			},
		},
		Prompts: schema.DefaultPrompts(),
		Gateway: GatewayConfig{Port: 18790},
	}
}
