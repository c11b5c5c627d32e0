// internal/app/reminder_service.go
package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"qcdt_reminder_bot/internal/domain/calendar"
	"qcdt_reminder_bot/internal/domain/checkin"
	"qcdt_reminder_bot/internal/domain/holiday"
	domainTelegram "qcdt_reminder_bot/internal/domain/telegram"
)

// Clock abstracts "now" so the weekly window can be pinned in tests.
type Clock interface {
	Now() time.Time
}

// ReminderService defines every action the trigger table can fire, plus the
// inbound side: turning a button click into recorded check-in state.
type ReminderService interface {
	SendStartup(ctx context.Context) error
	SendHolidaySummary(ctx context.Context) error
	SendDailyReminder(ctx context.Context) error
	SendDailyPoll(ctx context.Context) error
	SendCheckin(ctx context.Context) error
	SendNag(ctx context.Context) error

	// HandleCheckinResponse processes a button click. Only a recognized
	// payload from the designated user changes state; in that case ok is true
	// and ack carries the confirmation text for the callback answer.
	HandleCheckinResponse(username, payload string) (ack string, ok bool)
}

// ReminderConfig carries the fixed texts and lookup configuration.
type ReminderConfig struct {
	BotName           string
	DailyReminderText string
	PollQuestion      string
	PollOptions       []string
	PollMultiple      bool
	CheckinQuestion   string
	NagUsername       string
	NagText           string
	Countries         []holiday.Country
}

// ReminderServiceImpl implements the ReminderService interface.
type ReminderServiceImpl struct {
	notifier domainTelegram.Notifier
	holidays holiday.Source
	clock    Clock
	tracker  *checkin.Tracker
	cfg      ReminderConfig
	logger   *logrus.Entry
}

func NewReminderService(
	notifier domainTelegram.Notifier,
	holidays holiday.Source,
	clock Clock,
	tracker *checkin.Tracker,
	cfg ReminderConfig,
	logger *logrus.Entry,
) *ReminderServiceImpl {
	return &ReminderServiceImpl{
		notifier: notifier,
		holidays: holidays,
		clock:    clock,
		tracker:  tracker,
		cfg:      cfg,
		logger:   logger,
	}
}

func (s *ReminderServiceImpl) SendStartup(ctx context.Context) error {
	now := s.clock.Now()
	text := fmt.Sprintf("✅ %s online at %s (%s)",
		s.cfg.BotName, now.Format("Mon 02 Jan 2006 15:04:05"), now.Format("MST"))
	return s.notifier.SendText(text)
}

// WeeklySummary renders the public-holiday report for the week containing
// "now": a header with the Monday→Sunday range, then per configured country
// either "None" or the holidays falling inside the week, sorted by date.
func (s *ReminderServiceImpl) WeeklySummary(ctx context.Context) string {
	monday, sunday := calendar.WeekBounds(s.clock.Now())

	years := []int{monday.Year()}
	if sunday.Year() != monday.Year() {
		years = append(years, sunday.Year())
	}

	// Holiday dates come back in the provider's zone; compare calendar days,
	// not instants.
	monISO := monday.Format("2006-01-02")
	sunISO := sunday.Format("2006-01-02")

	var b strings.Builder
	fmt.Fprintf(&b, "📅 Public Holidays This Week (%s → %s)",
		calendar.FormatDay(monday), calendar.FormatDay(sunday))

	for _, country := range s.cfg.Countries {
		var hits []holiday.Holiday
		for _, year := range years {
			for _, h := range s.holidays.Holidays(ctx, country.Code, year) {
				day := h.Date.Format("2006-01-02")
				if monISO <= day && day <= sunISO {
					hits = append(hits, h)
				}
			}
		}
		sort.Slice(hits, func(i, j int) bool { return hits[i].Date.Before(hits[j].Date) })

		if len(hits) == 0 {
			fmt.Fprintf(&b, "\n\n• %s: None", country.Label)
			continue
		}
		fmt.Fprintf(&b, "\n\n• %s:", country.Label)
		for _, h := range hits {
			fmt.Fprintf(&b, "\n  - %s: %s", calendar.FormatShort(h.Date), h.Name)
		}
	}
	return b.String()
}

func (s *ReminderServiceImpl) SendHolidaySummary(ctx context.Context) error {
	text := s.WeeklySummary(ctx)
	if err := s.notifier.SendText(text); err != nil {
		return fmt.Errorf("send holiday summary: %w", err)
	}
	s.logger.Info("Weekly holiday summary sent")
	return nil
}

func (s *ReminderServiceImpl) SendDailyReminder(ctx context.Context) error {
	if err := s.notifier.SendText(s.cfg.DailyReminderText); err != nil {
		return fmt.Errorf("send daily reminder: %w", err)
	}
	s.logger.Info("Daily reminder sent")
	return nil
}

func (s *ReminderServiceImpl) SendDailyPoll(ctx context.Context) error {
	if err := s.notifier.SendPoll(s.cfg.PollQuestion, s.cfg.PollOptions, s.cfg.PollMultiple); err != nil {
		return fmt.Errorf("send daily poll: %w", err)
	}
	s.logger.Info("Daily poll sent")
	return nil
}

// SendCheckin resets today's response state and posts the check-in prompt.
// Re-sending the prompt re-arms the nag even if an earlier answer existed.
func (s *ReminderServiceImpl) SendCheckin(ctx context.Context) error {
	s.tracker.Reset()
	buttons := []checkin.Button{
		{Label: "Yes", Unique: checkin.UniqueYes},
		{Label: "No", Unique: checkin.UniqueNo},
		{Label: "NA - public holiday", Unique: checkin.UniqueNA},
	}
	if err := s.notifier.SendCheckin(s.cfg.CheckinQuestion, buttons); err != nil {
		return fmt.Errorf("send check-in: %w", err)
	}
	s.tracker.MarkPrompted()
	s.logger.Info("Daily check-in sent")
	return nil
}

func (s *ReminderServiceImpl) SendNag(ctx context.Context) error {
	text := fmt.Sprintf("⏰ @%s %s", s.cfg.NagUsername, s.cfg.NagText)
	if err := s.notifier.SendText(text); err != nil {
		return fmt.Errorf("send nag: %w", err)
	}
	s.logger.WithField("username", s.cfg.NagUsername).Info("Nag reminder sent")
	return nil
}

func (s *ReminderServiceImpl) HandleCheckinResponse(username, payload string) (string, bool) {
	response, recognized := checkin.ResponseFor(payload)
	if !recognized {
		s.logger.WithField("payload", payload).Debug("Ignoring unrecognized callback payload")
		return "", false
	}
	if !strings.EqualFold(username, s.cfg.NagUsername) || s.cfg.NagUsername == "" {
		s.logger.WithFields(logrus.Fields{
			"username": username,
			"payload":  payload,
		}).Debug("Ignoring check-in click from non-designated user")
		return "", false
	}

	s.tracker.Record(response)
	s.logger.WithFields(logrus.Fields{
		"username": username,
		"response": response,
	}).Info("Check-in response recorded")

	switch response {
	case checkin.ResponseYes:
		return "Recorded: Yes ✔", true
	case checkin.ResponseNo:
		return "Recorded: No", true
	default:
		return "Recorded: NA - public holiday", true
	}
}
