package telegram

import (
	dtelegram "sowing_calendar_bot/internal/domain/telegram"

	"gopkg.in/telebot.v3"
)

var _ dtelegram.Notifier = (*TelebotAdapter)(nil)

// TelebotAdapter implements the Notifier interface on top of gopkg.in/telebot.v3.
type TelebotAdapter struct {
	bot *telebot.Bot
}

func NewTelebotAdapter(b *telebot.Bot) *TelebotAdapter {
	return &TelebotAdapter{bot: b}
}

// SendMessage sends a text message to a private chat with the farmer.
func (tba *TelebotAdapter) SendMessage(chatID int64, text string, options *telebot.SendOptions) error {
	if options == nil {
		options = &telebot.SendOptions{}
	}
	_, err := tba.bot.Send(&telebot.User{ID: chatID}, text, options)
	return err
}
