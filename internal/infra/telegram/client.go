// internal/infra/telegram/client.go
package telegram

import (
	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"qcdt_reminder_bot/internal/domain/checkin"
)

// TelebotAdapter implements the domain Notifier interface using the
// gopkg.in/telebot.v3 library. Every message goes to the one configured chat.
type TelebotAdapter struct {
	bot  *telebot.Bot
	chat *telebot.Chat
	log  *logrus.Entry
}

func NewTelebotAdapter(b *telebot.Bot, chatID int64, log *logrus.Entry) *TelebotAdapter {
	return &TelebotAdapter{
		bot:  b,
		chat: &telebot.Chat{ID: chatID},
		log:  log,
	}
}

// SendText posts a plain text message to the configured chat.
func (tba *TelebotAdapter) SendText(text string) error {
	_, err := tba.bot.Send(tba.chat, text)
	return err
}

// SendPoll posts a non-anonymous poll and pins it without an audible
// notification. A pin failure is logged but does not fail the send.
func (tba *TelebotAdapter) SendPoll(question string, options []string, multiple bool) error {
	poll := &telebot.Poll{
		Type:            telebot.PollRegular,
		Question:        question,
		Anonymous:       false,
		MultipleAnswers: multiple,
	}
	poll.AddOptions(options...)

	msg, err := tba.bot.Send(tba.chat, poll)
	if err != nil {
		return err
	}
	if err := tba.bot.Pin(msg, telebot.Silent); err != nil {
		tba.log.WithError(err).Warn("Poll sent but pinning failed")
	}
	return nil
}

// SendCheckin posts the check-in prompt with one row of inline buttons and
// pins it without an audible notification.
func (tba *TelebotAdapter) SendCheckin(prompt string, buttons []checkin.Button) error {
	markup := &telebot.ReplyMarkup{}
	row := make([]telebot.Btn, 0, len(buttons))
	for _, b := range buttons {
		row = append(row, markup.Data(b.Label, b.Unique))
	}
	markup.Inline(markup.Row(row...))

	msg, err := tba.bot.Send(tba.chat, prompt, &telebot.SendOptions{ReplyMarkup: markup})
	if err != nil {
		return err
	}
	if err := tba.bot.Pin(msg, telebot.Silent); err != nil {
		tba.log.WithError(err).Warn("Check-in sent but pinning failed")
	}
	return nil
}
