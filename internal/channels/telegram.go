package channels

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/agorabot/agora/internal/config"
)

// TelegramChannel posts transcripts via the Telegram Bot API.
type TelegramChannel struct {
	cfg config.TelegramConfig

	mu  sync.Mutex
	bot *tgbotapi.BotAPI
}

func NewTelegramChannel(cfg config.TelegramConfig) *TelegramChannel {
	return &TelegramChannel{cfg: cfg}
}

func (t *TelegramChannel) Name() string { return "telegram" }

// The bot connects lazily so a bad token surfaces on first send, not at
// manager construction.
func (t *TelegramChannel) api() (*tgbotapi.BotAPI, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.bot != nil {
		return t.bot, nil
	}
	bot, err := tgbotapi.NewBotAPI(t.cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram: connect: %w", err)
	}
	t.bot = bot
	return bot, nil
}

func (t *TelegramChannel) Send(ctx context.Context, to, text string) error {
	chatID := t.cfg.ChatID
	if to != "" {
		id, err := strconv.ParseInt(to, 10, 64)
		if err != nil {
			return fmt.Errorf("telegram: bad chat id %q: %w", to, err)
		}
		chatID = id
	}
	if chatID == 0 {
		return fmt.Errorf("telegram: no chat id configured")
	}
	bot, err := t.api()
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("telegram: send: %w", err)
	}
	return nil
}
