package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"qcdt_reminder_bot/internal/domain/checkin"
	"qcdt_reminder_bot/internal/domain/schedule"
	domainTelegram "qcdt_reminder_bot/internal/domain/telegram"
)

// Clock provides the scheduler's notion of local time.
type Clock interface {
	Now() time.Time
}

// NagConfig controls the repeating reminder fired while a check-in is
// outstanding. Window bounds are minutes from local midnight, inclusive.
type NagConfig struct {
	Enabled        bool
	CadenceMinutes int
	WindowStartMin int
	WindowEndMin   int
	Action         schedule.Action
}

// Engine is the trigger loop: every tick it compares local time against the
// fixed rule table and fires each matching rule at most once per local day.
// The fired set and the check-in tracker are reset together at the first tick
// observed on a new date; no other code path resets them.
type Engine struct {
	rules    []schedule.Rule
	nag      NagConfig
	fired    *schedule.FiredSet
	tracker  *checkin.Tracker
	notifier domainTelegram.Notifier
	clock    Clock
	logger   *logrus.Entry
	interval time.Duration

	lastDate   string
	lastMinute string
}

func NewEngine(
	rules []schedule.Rule,
	nag NagConfig,
	clock Clock,
	tracker *checkin.Tracker,
	notifier domainTelegram.Notifier,
	logger *logrus.Entry,
	interval time.Duration,
) *Engine {
	return &Engine{
		rules:    rules,
		nag:      nag,
		fired:    schedule.NewFiredSet(),
		tracker:  tracker,
		notifier: notifier,
		clock:    clock,
		logger:   logger,
		interval: interval,
	}
}

// Run executes the tick loop until ctx is canceled. It never returns early:
// every failure inside a tick is contained there.
func (e *Engine) Run(ctx context.Context) {
	now := e.clock.Now()
	e.lastDate = dateOf(now)
	e.logger.WithFields(logrus.Fields{
		"rules":    len(e.rules),
		"interval": e.interval.String(),
		"date":     e.lastDate,
	}).Info("Scheduler engine starting")

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("Scheduler engine stopping")
			return
		case <-ticker.C:
			e.tick(ctx)
		}
	}
}

func (e *Engine) tick(ctx context.Context) {
	now := e.clock.Now()

	// One log line per observed minute so operators can see liveness.
	if minute := now.Format("2006-01-02 15:04"); minute != e.lastMinute {
		e.lastMinute = minute
		e.logger.WithField("tick", now.Format("Mon 02 Jan 2006 15:04:05")).Debug("Tick")
	}

	if today := dateOf(now); today != e.lastDate {
		e.fired.Reset()
		if e.tracker != nil {
			e.tracker.Reset()
		}
		e.lastDate = today
		e.logger.WithField("date", today).Info("New day, daily trigger state cleared")
	}

	for _, rule := range e.rules {
		if e.fired.Fired(rule.ID) || !rule.Matches(now) {
			continue
		}
		e.fire(ctx, rule.ID, rule.Action)
	}

	e.maybeNag(ctx, now)
}

// fire runs one trigger action behind an error and panic boundary. The
// trigger is marked fired even on failure: there is no retry within the day.
func (e *Engine) fire(ctx context.Context, id string, action schedule.Action) {
	e.logger.WithField("trigger", id).Info("Trigger fired")
	if err := e.runAction(ctx, action); err != nil {
		e.logger.WithField("trigger", id).WithError(err).Error("Trigger action failed")
		if sendErr := e.notifier.SendText(fmt.Sprintf("⚠️ %s failed: %v", id, err)); sendErr != nil {
			e.logger.WithField("trigger", id).WithError(sendErr).Warn("Could not report trigger failure")
		}
	}
	e.fired.Mark(id)
}

func (e *Engine) runAction(ctx context.Context, action schedule.Action) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return action(ctx)
}

// maybeNag fires the repeating reminder while today's check-in is outstanding.
// Each occurrence gets a trigger id unique to its hour:minute, so it goes
// through the same at-most-once-per-day gate as every other trigger.
func (e *Engine) maybeNag(ctx context.Context, now time.Time) {
	if !e.nag.Enabled || e.tracker == nil {
		return
	}
	if !e.tracker.Prompted() || e.tracker.Responded() {
		return
	}
	minuteOfDay := now.Hour()*60 + now.Minute()
	if minuteOfDay < e.nag.WindowStartMin || minuteOfDay > e.nag.WindowEndMin {
		return
	}
	if now.Minute()%e.nag.CadenceMinutes != 0 {
		return
	}

	id := fmt.Sprintf("NAG_%02d:%02d", now.Hour(), now.Minute())
	if e.fired.Fired(id) {
		return
	}
	e.fire(ctx, id, e.nag.Action)
}

func dateOf(t time.Time) string {
	return t.Format("2006-01-02")
}
