package channels

import (
	"context"
	"fmt"

	slackgo "github.com/slack-go/slack"

	"github.com/agorabot/agora/internal/config"
)

// SlackChannel posts transcripts via the Slack Web API.
type SlackChannel struct {
	cfg    config.SlackConfig
	client *slackgo.Client
}

func NewSlackChannel(cfg config.SlackConfig) *SlackChannel {
	return &SlackChannel{cfg: cfg, client: slackgo.New(cfg.BotToken)}
}

func (s *SlackChannel) Name() string { return "slack" }

func (s *SlackChannel) Send(ctx context.Context, to, text string) error {
	channel := to
	if channel == "" {
		channel = s.cfg.Channel
	}
	if channel == "" {
		return fmt.Errorf("slack: no channel configured")
	}
	_, _, err := s.client.PostMessageContext(ctx, channel,
		slackgo.MsgOptionText(text, false))
	return err
}
