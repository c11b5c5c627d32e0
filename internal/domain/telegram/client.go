package telegram

import "qcdt_reminder_bot/internal/domain/checkin"

// Notifier defines the outbound messaging operations the bot needs.
// This helps in decoupling the application logic from the specific bot library.
// All implementations target the single configured chat; transport errors are
// returned for the caller to log and swallow, never to abort on.
type Notifier interface {
	// SendText posts a plain text message.
	SendText(text string) error
	// SendPoll posts a non-anonymous poll and pins it silently on success.
	SendPoll(question string, options []string, multiple bool) error
	// SendCheckin posts a prompt with one row of inline buttons and pins it
	// silently on success.
	SendCheckin(prompt string, buttons []checkin.Button) error
}
