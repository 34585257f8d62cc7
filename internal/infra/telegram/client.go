// internal/infra/telegram/client.go
package telegram

import (
	"gopkg.in/telebot.v3"
)

// TelebotAdapter implements the domain Client interface using the
// gopkg.in/telebot.v3 library.
type TelebotAdapter struct {
	bot *telebot.Bot
}

func NewTelebotAdapter(b *telebot.Bot) *TelebotAdapter {
	return &TelebotAdapter{bot: b}
}

// Deliver sends a text message to the owner's direct chat.
func (tba *TelebotAdapter) Deliver(ownerChatID int64, text string) error {
	recipient := &telebot.User{ID: ownerChatID}
	_, err := tba.bot.Send(recipient, text)
	return err
}
