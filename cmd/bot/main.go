package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"qcdt_reminder_bot/internal/app"
	"qcdt_reminder_bot/internal/domain/calendar"
	"qcdt_reminder_bot/internal/domain/checkin"
	"qcdt_reminder_bot/internal/domain/schedule"
	"qcdt_reminder_bot/internal/infra/config"
	"qcdt_reminder_bot/internal/infra/logger"
	"qcdt_reminder_bot/internal/infra/nager"
	"qcdt_reminder_bot/internal/infra/scheduler"
	itelegram "qcdt_reminder_bot/internal/infra/telegram"
)

func main() {
	fmt.Println("QCDT Reminder Bot starting...")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Could not load application configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.LogLevel, cfg.Environment)
	log := logger.Get().WithField("component", "main")
	log.WithFields(logrus.Fields{
		"timezone": cfg.Timezone,
		"chat_id":  cfg.ChatID,
		"interval": cfg.TickInterval.String(),
	}).Info("Configuration loaded")

	clock, err := calendar.NewClock(cfg.Timezone)
	if err != nil {
		log.WithError(err).Fatal("Could not load configured timezone")
	}

	pref := telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) { // Global error handler
			entry := logger.Get().WithField("component", "telebot").WithError(err)
			if c != nil && c.Sender() != nil {
				entry = entry.WithField("sender_id", c.Sender().ID)
			}
			entry.Error("Telegram update handling failed")
		},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		log.WithError(err).Fatal("Could not create Telegram bot")
	}

	notifier := itelegram.NewTelebotAdapter(bot, cfg.ChatID, logger.Get().WithField("component", "telegram"))
	holidays := nager.NewClient(cfg.HolidayAPIBase, logger.Get().WithField("component", "nager"))
	tracker := checkin.NewTracker()

	service := app.NewReminderService(notifier, holidays, clock, tracker, app.ReminderConfig{
		BotName:           cfg.BotName,
		DailyReminderText: cfg.DailyReminderText,
		PollQuestion:      cfg.PollQuestion,
		PollOptions:       cfg.PollOptions,
		PollMultiple:      cfg.PollMultipleAnswers,
		CheckinQuestion:   cfg.CheckinQuestion,
		NagUsername:       cfg.NagUsername,
		NagText:           cfg.NagText,
		Countries:         cfg.HolidayCountries,
	}, logger.Get().WithField("component", "reminder_service"))

	rules, err := buildRules(cfg, service)
	if err != nil {
		log.WithError(err).Fatal("Could not build trigger table")
	}

	nag := scheduler.NagConfig{
		Enabled:        cfg.NagUsername != "",
		CadenceMinutes: cfg.NagCadenceMinutes,
		WindowStartMin: cfg.NagWindowStartMin,
		WindowEndMin:   cfg.NagWindowEndMin,
		Action:         service.SendNag,
	}

	engine := scheduler.NewEngine(
		rules,
		nag,
		clock,
		tracker,
		notifier,
		logger.Get().WithField("component", "scheduler"),
		cfg.TickInterval,
	)

	itelegram.RegisterCheckinHandlers(bot, service, logger.Get().WithField("component", "checkin_handler"))
	log.Info("Check-in callback handlers registered")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Startup confirmation into the chat, best effort.
	if err := service.SendStartup(ctx); err != nil {
		log.WithError(err).Warn("Startup confirmation could not be sent")
	}

	go bot.Start()
	go engine.Run(ctx)
	log.Info("Application setup complete. Bot and scheduler are running")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down application...")
	cancel()
	bot.Stop()
	log.Info("Application shut down gracefully")
}

// buildRules assembles the fixed trigger table in a stable evaluation order.
// The check-in trigger only exists when a designated responder is configured.
func buildRules(cfg *config.AppConfig, service app.ReminderService) ([]schedule.Rule, error) {
	type triggerEntry struct {
		id     string
		spec   string
		action schedule.Action
	}
	entries := []triggerEntry{
		{"MON_HOL_SUMMARY", cfg.CronSpecHolidaySummary, service.SendHolidaySummary},
		{"DAILY_REMINDER", cfg.CronSpecDailyReminder, service.SendDailyReminder},
		{"DAILY_POLL", cfg.CronSpecDailyPoll, service.SendDailyPoll},
	}
	if cfg.NagUsername != "" {
		entries = append(entries, triggerEntry{"DAILY_CHECKIN", cfg.CronSpecCheckin, service.SendCheckin})
	}

	rules := make([]schedule.Rule, 0, len(entries))
	for _, e := range entries {
		rule, err := schedule.NewRule(e.id, e.spec, e.action)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}
