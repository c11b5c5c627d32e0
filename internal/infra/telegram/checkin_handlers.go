// internal/infra/telegram/checkin_handlers.go
package telegram

import (
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"qcdt_reminder_bot/internal/app"
)

// RegisterCheckinHandlers wires inline-button clicks to the reminder service.
// Every click is answered so the client stops showing its loading state; only
// recognized payloads from the designated user change the tracked state.
func RegisterCheckinHandlers(b *telebot.Bot, service app.ReminderService, log *logrus.Entry) {
	b.Handle(telebot.OnCallback, func(c telebot.Context) error {
		cb := c.Callback()

		payload := cb.Unique
		if payload == "" {
			// Telebot only splits out Unique for data it produced itself.
			payload = strings.TrimPrefix(cb.Data, "\f")
		}

		var username string
		if sender := c.Sender(); sender != nil {
			username = sender.Username
		}

		ack, ok := service.HandleCheckinResponse(username, payload)
		if !ok {
			// Ack with no text: stale buttons and other users' clicks are
			// acknowledged but change nothing.
			return c.Respond()
		}

		log.WithFields(logrus.Fields{
			"username": username,
			"payload":  payload,
		}).Debug("Check-in callback acknowledged")
		return c.Respond(&telebot.CallbackResponse{Text: ack})
	})
}
