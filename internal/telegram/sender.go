package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender sends messages to Telegram chats.
type Sender interface {
	SendMessage(chatID int64, text string) error
	SendMarkdown(chatID int64, text string) error
}

// BotSender implements Sender over the Bot API. It also satisfies
// scheduler.Sender.
type BotSender struct{ bot *tgbotapi.BotAPI }

// NewBotSender wraps an authorized Bot API client.
func NewBotSender(bot *tgbotapi.BotAPI) *BotSender {
	return &BotSender{bot: bot}
}

// SendMessage sends a plain text message.
func (s *BotSender) SendMessage(chatID int64, text string) error {
	_, err := s.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// SendMarkdown sends a Markdown-formatted message.
func (s *BotSender) SendMarkdown(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err := s.bot.Send(msg)
	return err
}
