package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

//go:generate go run go.uber.org/mock/mockgen -source=telegram.go -destination=mocks/mock.go
type Client interface {
	GetUpdatesChan(u tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()

	SendMessage(chatID int64, text string) (int, error)

	// SendMarkdownToDefaultChannel posts MarkdownV2 text to the configured
	// channel. It is a no-op when no channel is configured.
	SendMarkdownToDefaultChannel(text string) error
}
