// Package channels delivers finished debate transcripts to chat platforms.
package channels

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/agorabot/agora/internal/config"
	"github.com/agorabot/agora/internal/schema"
)

// Broadcaster posts one text block to a platform destination. "to" overrides
// the configured destination when non-empty.
type Broadcaster interface {
	Name() string
	Send(ctx context.Context, to, text string) error
}

// Manager owns the enabled broadcasters.
type Manager struct {
	channels map[string]Broadcaster
}

// NewManager initialises all channels enabled in cfg.
func NewManager(cfg *config.Config) *Manager {
	m := &Manager{channels: make(map[string]Broadcaster)}
	if cfg.Channels.Slack.Enabled {
		m.register(NewSlackChannel(cfg.Channels.Slack))
	}
	if cfg.Channels.Telegram.Enabled {
		m.register(NewTelegramChannel(cfg.Channels.Telegram))
	}
	return m
}

func (m *Manager) register(b Broadcaster) {
	m.channels[b.Name()] = b
	slog.Info("channel enabled", "name", b.Name())
}

// Enabled returns the names of all enabled channels.
func (m *Manager) Enabled() []string {
	names := make([]string, 0, len(m.channels))
	for n := range m.channels {
		names = append(names, n)
	}
	return names
}

// Broadcast splits text to the platform's length limit and sends the chunks
// in order. channel "" means every enabled channel.
func (m *Manager) Broadcast(ctx context.Context, channel, to, text string) error {
	if text == "" {
		return nil
	}
	targets := m.channels
	if channel != "" {
		b, ok := m.channels[channel]
		if !ok {
			return fmt.Errorf("channel %q not enabled", channel)
		}
		targets = map[string]Broadcaster{channel: b}
	}
	for name, b := range targets {
		for _, chunk := range splitMessage(text, maxMessageLen(name)) {
			if err := b.Send(ctx, to, chunk); err != nil {
				return fmt.Errorf("send to %s: %w", name, err)
			}
		}
		slog.Info("transcript delivered", "channel", name, "bytes", len(text))
	}
	return nil
}

// Platform hard limits, with headroom for formatting.
func maxMessageLen(channel string) int {
	switch channel {
	case "telegram":
		return 4096
	default:
		return 4000
	}
}

// RenderTranscript formats a debate log as plain text for delivery:
// speaker names resolved against the roster, system lines prefixed.
func RenderTranscript(roster schema.Roster, log []schema.Message) string {
	var b strings.Builder
	for _, m := range log {
		if m.Content == "" {
			continue
		}
		name := "moderator"
		if m.AgentID != nil {
			name = *m.AgentID
			if p := roster.FindAgent(*m.AgentID); p != nil {
				name = p.Name
			}
		}
		fmt.Fprintf(&b, "%s: %s\n\n", name, m.Content)
	}
	return strings.TrimRight(b.String(), "\n")
}

// splitMessage splits content into chunks that fit within maxLen,
// preferring newline breaks, then space breaks, then hard cut.
func splitMessage(content string, maxLen int) []string {
	if len(content) <= maxLen {
		return []string{content}
	}
	var chunks []string
	for len(content) > 0 {
		if len(content) <= maxLen {
			chunks = append(chunks, content)
			break
		}
		cut := content[:maxLen]
		pos := strings.LastIndex(cut, "\n")
		if pos <= 0 {
			pos = strings.LastIndex(cut, " ")
		}
		if pos <= 0 {
			pos = maxLen
		}
		chunks = append(chunks, content[:pos])
		content = strings.TrimLeft(content[pos:], " \t\n")
	}
	return chunks
}
