package telegram

import "gopkg.in/telebot.v3"

// Notifier delivers bot-initiated messages (reminders, admin notices) to a chat.
// Services depend on this instead of *telebot.Bot so they can be tested with a fake.
type Notifier interface {
	SendMessage(chatID int64, text string, options *telebot.SendOptions) error
}
