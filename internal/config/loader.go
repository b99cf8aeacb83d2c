package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/agorabot/agora/internal/schema"
)

// Load reads and validates the config file at path. If path is empty,
// ConfigPath() is used. A missing file, unparsable YAML, or invalid content
// is an error: configuration problems are fatal at load time.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no config at %s (run `agora init` to create one)", path)
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes cfg to path as YAML. If path is empty, ConfigPath() is used.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = ConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// validate checks required fields and applies documented defaults: base URLs
// for well-known provider keys and the built-in prompt templates for any
// prompt field left empty.
func (c *Config) validate() error {
	if len(c.Providers) == 0 {
		return fmt.Errorf("no providers configured")
	}
	for key, p := range c.Providers {
		if p.BaseURL == "" {
			base, ok := knownBaseURLs[key]
			if !ok {
				return fmt.Errorf("provider %q: baseUrl is required", key)
			}
			p.BaseURL = base
			c.Providers[key] = p
		}
		if p.Name == "" {
			return fmt.Errorf("provider %q: name is required", key)
		}
	}

	if len(c.Rosters) == 0 {
		return fmt.Errorf("no rosters configured")
	}
	for key, r := range c.Rosters {
		if len(r.Agents) == 0 {
			return fmt.Errorf("roster %q: needs at least one agent", key)
		}
		seen := map[string]bool{}
		for i, a := range r.Agents {
			if a.ID == "" {
				return fmt.Errorf("roster %q: agent %d: id is required", key, i)
			}
			if a.Name == "" {
				return fmt.Errorf("roster %q: agent %q: name is required", key, a.ID)
			}
			if seen[a.ID] {
				return fmt.Errorf("roster %q: duplicate agent id %q", key, a.ID)
			}
			seen[a.ID] = true
		}
	}

	c.Prompts = mergePrompts(c.Prompts)

	if c.Gateway.Port == 0 {
		c.Gateway.Port = 18790
	}
	return nil
}

// mergePrompts fills empty template fields from the built-in bundle.
func mergePrompts(p schema.ArenaPrompts) schema.ArenaPrompts {
	def := schema.DefaultPrompts()
	if p.SystemName == "" {
		p.SystemName = def.SystemName
	}
	if p.UnknownAgent == "" {
		p.UnknownAgent = def.UnknownAgent
	}
	if p.SystemProposition == "" {
		p.SystemProposition = def.SystemProposition
	}
	if p.AgentSystemBase == "" {
		p.AgentSystemBase = def.AgentSystemBase
	}
	if p.AgentPersona == "" {
		p.AgentPersona = def.AgentPersona
	}
	if p.UserChatLog == "" {
		p.UserChatLog = def.UserChatLog
	}
	return p
}
