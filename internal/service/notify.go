package service

import (
	"fmt"

	"SJ_storefront_backend/internal/model"
	"SJ_storefront_backend/pkg/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type NotifierConfig struct {
	Enabled  bool
	BotToken string
	ChatID   int64
	Debug    bool
}

// Notifier pushes storefront events to a staff Telegram chat. A disabled
// notifier is a no-op, and send failures only get logged: notifications
// never block or fail the originating request.
type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewNotifier(config NotifierConfig) (*Notifier, error) {
	if !config.Enabled {
		return &Notifier{}, nil
	}

	bot, err := tgbotapi.NewBotAPI(config.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize bot: %w", err)
	}

	bot.Debug = config.Debug

	return &Notifier{
		bot:    bot,
		chatID: config.ChatID,
	}, nil
}

func (n *Notifier) NotifyNewUser(user *model.User) {
	referrer := "company root"
	if user.ReferrerID != nil {
		referrer = fmt.Sprintf("user %d", *user.ReferrerID)
	}
	n.send(fmt.Sprintf("New signup: %s (id %d), referred by %s", user.Username, user.ID, referrer))
}

func (n *Notifier) NotifyMetalRate(rate *model.MetalRate) {
	n.send(fmt.Sprintf("Metal rate recorded: %s %s at ₹%s/g", rate.MetalType, rate.Purity, rate.PriceINR.StringFixed(2)))
}

func (n *Notifier) send(text string) {
	if n.bot == nil {
		return
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		logger.Logger().Warn("failed to send staff notification", zap.Error(err))
	}
}
