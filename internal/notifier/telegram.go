// Package notifier pushes escalation alerts to the moderator channel.
package notifier

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Telegram sends moderation alerts to a configured Telegram chat. A nil
// *Telegram is a valid no-op notifier, so callers don't need to branch
// on whether alerts are configured.
type Telegram struct {
	api    *tgbotapi.BotAPI
	chatID int64
	logger *zap.Logger
}

// New creates the Telegram notifier. Returns (nil, nil) when disabled so
// the caller can wire it unconditionally.
func New(enabled bool, token string, chatID int64, logger *zap.Logger) (*Telegram, error) {
	if !enabled || token == "" {
		logger.Info("Telegram alerts are disabled (alerts.enabled=false or token is empty)")
		return nil, nil
	}

	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot API: %w", err)
	}

	logger.Info("Telegram alert bot authorized", zap.String("username", botAPI.Self.UserName))

	return &Telegram{
		api:    botAPI,
		chatID: chatID,
		logger: logger,
	}, nil
}

// TextEscalation alerts moderators about a high-risk text event. Send
// failures are logged and swallowed; alerting never fails a request.
func (t *Telegram) TextEscalation(userID, platform, riskLevel string, riskScore int) {
	if t == nil {
		return
	}
	text := fmt.Sprintf("⚠️ Escalation on %s\nUser: %s\nRisk: %d (%s)", platform, userID, riskScore, riskLevel)
	t.send(text)
}

// MediaVerdict alerts moderators about a non-Real media verdict.
func (t *Telegram) MediaVerdict(userID, label string) {
	if t == nil {
		return
	}
	text := fmt.Sprintf("🎞 Media flagged\nUser: %s\nVerdict: %s", userID, label)
	t.send(text)
}

func (t *Telegram) send(text string) {
	msg := tgbotapi.NewMessage(t.chatID, text)
	if _, err := t.api.Send(msg); err != nil {
		t.logger.Error("Failed to send Telegram alert", zap.Error(err))
	}
}
