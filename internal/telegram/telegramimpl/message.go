package telegramimpl

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// GetUpdatesChan wraps the bot's GetUpdatesChan method
func (tg *TelegramImpl) GetUpdatesChan(u tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return tg.TgBot.GetUpdatesChan(u)
}

func (tg *TelegramImpl) StopReceivingUpdates() {
	tg.TgBot.StopReceivingUpdates()
}

// SendMessage sends a plain text message to a specific chat ID
func (tg *TelegramImpl) SendMessage(chatID int64, text string) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	sentMsg, err := tg.TgBot.Send(msg)
	if err != nil {
		tg.Logger.Error("Error sending message",
			"chatID", chatID,
			"error", err)
		return 0, fmt.Errorf("failed to send message: %w", err)
	}

	tg.Logger.Debug("Message sent",
		"chatID", chatID,
		"messageID", sentMsg.MessageID)
	return sentMsg.MessageID, nil
}

// SendMarkdownToDefaultChannel sends a MarkdownV2 message to the configured channel
func (tg *TelegramImpl) SendMarkdownToDefaultChannel(text string) error {
	if tg.Config.Telegram.Channel == "" {
		return nil
	}

	channelName := "@" + strings.TrimPrefix(tg.Config.Telegram.Channel, "@")
	msg := tgbotapi.NewMessageToChannel(channelName, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2

	if _, err := tg.TgBot.Send(msg); err != nil {
		tg.Logger.Error("Error sending message to channel",
			"channel", channelName,
			"error", err)
		return fmt.Errorf("failed to send message to channel: %w", err)
	}

	tg.Logger.Info("Message sent to channel",
		"channel", channelName)
	return nil
}
