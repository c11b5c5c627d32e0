package app

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qcdt_reminder_bot/internal/domain/checkin"
	"qcdt_reminder_bot/internal/domain/holiday"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

type fetchKey struct {
	code string
	year int
}

// fakeSource returns canned holidays and records which keys were asked for.
type fakeSource struct {
	holidays map[fetchKey][]holiday.Holiday
	fetched  []fetchKey
}

func (f *fakeSource) Holidays(ctx context.Context, code string, year int) []holiday.Holiday {
	key := fetchKey{code: code, year: year}
	f.fetched = append(f.fetched, key)
	return f.holidays[key]
}

// fakeNotifier records everything sent through it.
type fakeNotifier struct {
	texts    []string
	polls    []string
	checkins []string
	fail     bool
}

func (f *fakeNotifier) SendText(text string) error {
	if f.fail {
		return errors.New("network down")
	}
	f.texts = append(f.texts, text)
	return nil
}

func (f *fakeNotifier) SendPoll(question string, options []string, multiple bool) error {
	if f.fail {
		return errors.New("network down")
	}
	f.polls = append(f.polls, question)
	return nil
}

func (f *fakeNotifier) SendCheckin(prompt string, buttons []checkin.Button) error {
	if f.fail {
		return errors.New("network down")
	}
	f.checkins = append(f.checkins, prompt)
	return nil
}

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestService(now time.Time, source holiday.Source, notifier *fakeNotifier) (*ReminderServiceImpl, *checkin.Tracker) {
	tracker := checkin.NewTracker()
	svc := NewReminderService(notifier, source, fixedClock{now: now}, tracker, ReminderConfig{
		BotName:           "QCDT bot",
		DailyReminderText: "📝 Ascent, please remember to update QCDT price on the portal.",
		PollQuestion:      "Has QCDT price been updated on portal?",
		PollOptions:       []string{"Yes", "No", "NA - public holiday"},
		CheckinQuestion:   "Has QCDT price been updated on portal?",
		NagUsername:       "ascent",
		NagText:           "friendly reminder: please respond to today's check-in.",
		Countries: []holiday.Country{
			{Label: "Singapore", Code: "SG"},
			{Label: "USA", Code: "US"},
		},
	}, testLog())
	return svc, tracker
}

func TestWeeklySummary_FiltersToWeekInclusive(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Singapore")
	require.NoError(t, err)
	// Wednesday of the week Mon 2025-03-03 .. Sun 2025-03-09.
	now := time.Date(2025, time.March, 5, 14, 45, 0, 0, loc)

	source := &fakeSource{holidays: map[fetchKey][]holiday.Holiday{
		{code: "SG", year: 2025}: {
			{Date: day(2025, time.March, 2), Name: "Day Before Monday"}, // excluded
			{Date: day(2025, time.March, 9), Name: "Sunday Holiday"},    // included, boundary
			{Date: day(2025, time.March, 3), Name: "Monday Holiday"},    // included, boundary
			{Date: day(2025, time.March, 10), Name: "Day After Sunday"}, // excluded
		},
	}}
	notifier := &fakeNotifier{}
	svc, _ := newTestService(now, source, notifier)

	summary := svc.WeeklySummary(context.Background())

	assert.Contains(t, summary, "📅 Public Holidays This Week (Mon 03 Mar 2025 → Sun 09 Mar 2025)")
	assert.Contains(t, summary, "• Singapore:")
	assert.Contains(t, summary, "  - Mon 03 Mar: Monday Holiday")
	assert.Contains(t, summary, "  - Sun 09 Mar: Sunday Holiday")
	assert.NotContains(t, summary, "Day Before Monday")
	assert.NotContains(t, summary, "Day After Sunday")
	assert.Contains(t, summary, "• USA: None")

	// Monday holiday must be listed before Sunday's.
	assert.Less(t, strings.Index(summary, "Monday Holiday"), strings.Index(summary, "Sunday Holiday"))
}

func TestWeeklySummary_YearSpanningWeekFetchesBothYears(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Singapore")
	require.NoError(t, err)
	// Wednesday of the week Mon 2024-12-30 .. Sun 2025-01-05.
	now := time.Date(2025, time.January, 1, 10, 0, 0, 0, loc)

	source := &fakeSource{holidays: map[fetchKey][]holiday.Holiday{
		{code: "SG", year: 2025}: {{Date: day(2025, time.January, 1), Name: "New Year's Day"}},
		{code: "SG", year: 2024}: {{Date: day(2024, time.December, 25), Name: "Christmas Day"}}, // prior week
	}}
	notifier := &fakeNotifier{}
	svc, _ := newTestService(now, source, notifier)

	summary := svc.WeeklySummary(context.Background())

	assert.Contains(t, summary, "New Year's Day")
	assert.NotContains(t, summary, "Christmas Day")
	assert.Contains(t, source.fetched, fetchKey{code: "SG", year: 2024})
	assert.Contains(t, source.fetched, fetchKey{code: "SG", year: 2025})
}

func TestSendHolidaySummary_EmptySourceRendersNone(t *testing.T) {
	now := time.Date(2025, time.March, 5, 14, 45, 0, 0, time.UTC)
	notifier := &fakeNotifier{}
	svc, _ := newTestService(now, &fakeSource{}, notifier)

	require.NoError(t, svc.SendHolidaySummary(context.Background()))
	require.Len(t, notifier.texts, 1)
	assert.Contains(t, notifier.texts[0], "• Singapore: None")
	assert.Contains(t, notifier.texts[0], "• USA: None")
}

func TestSendCheckin_ResetsAndArmsTracker(t *testing.T) {
	now := time.Date(2025, time.March, 5, 15, 0, 0, 0, time.UTC)
	notifier := &fakeNotifier{}
	svc, tracker := newTestService(now, &fakeSource{}, notifier)

	tracker.Record(checkin.ResponseYes) // stale state from earlier in the day

	require.NoError(t, svc.SendCheckin(context.Background()))
	assert.Len(t, notifier.checkins, 1)
	assert.True(t, tracker.Prompted())
	assert.False(t, tracker.Responded(), "re-sending the prompt clears the old answer")
}

func TestSendCheckin_SendFailureLeavesTrackerUnarmed(t *testing.T) {
	now := time.Date(2025, time.March, 5, 15, 0, 0, 0, time.UTC)
	notifier := &fakeNotifier{fail: true}
	svc, tracker := newTestService(now, &fakeSource{}, notifier)

	assert.Error(t, svc.SendCheckin(context.Background()))
	assert.False(t, tracker.Prompted())
}

func TestHandleCheckinResponse(t *testing.T) {
	now := time.Date(2025, time.March, 5, 15, 20, 0, 0, time.UTC)

	t.Run("designated user with recognized payload records", func(t *testing.T) {
		svc, tracker := newTestService(now, &fakeSource{}, &fakeNotifier{})
		ack, ok := svc.HandleCheckinResponse("ascent", checkin.UniqueYes)
		assert.True(t, ok)
		assert.NotEmpty(t, ack)
		value, recorded := tracker.Value()
		assert.True(t, recorded)
		assert.Equal(t, checkin.ResponseYes, value)
	})

	t.Run("username match is case-insensitive", func(t *testing.T) {
		svc, tracker := newTestService(now, &fakeSource{}, &fakeNotifier{})
		_, ok := svc.HandleCheckinResponse("Ascent", checkin.UniqueNA)
		assert.True(t, ok)
		assert.True(t, tracker.Responded())
	})

	t.Run("other users are ignored", func(t *testing.T) {
		svc, tracker := newTestService(now, &fakeSource{}, &fakeNotifier{})
		_, ok := svc.HandleCheckinResponse("someone_else", checkin.UniqueYes)
		assert.False(t, ok)
		assert.False(t, tracker.Responded())
	})

	t.Run("unrecognized payload is ignored", func(t *testing.T) {
		svc, tracker := newTestService(now, &fakeSource{}, &fakeNotifier{})
		_, ok := svc.HandleCheckinResponse("ascent", "something_stale")
		assert.False(t, ok)
		assert.False(t, tracker.Responded())
	})
}

func TestSendNag_MentionsDesignatedUser(t *testing.T) {
	now := time.Date(2025, time.March, 5, 15, 30, 0, 0, time.UTC)
	notifier := &fakeNotifier{}
	svc, _ := newTestService(now, &fakeSource{}, notifier)

	require.NoError(t, svc.SendNag(context.Background()))
	require.Len(t, notifier.texts, 1)
	assert.Contains(t, notifier.texts[0], "@ascent")
}

func TestSendStartup(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Singapore")
	require.NoError(t, err)
	now := time.Date(2025, time.March, 5, 9, 0, 0, 0, loc)
	notifier := &fakeNotifier{}
	svc, _ := newTestService(now, &fakeSource{}, notifier)

	require.NoError(t, svc.SendStartup(context.Background()))
	require.Len(t, notifier.texts, 1)
	assert.Contains(t, notifier.texts[0], "✅ QCDT bot online at Wed 05 Mar 2025 09:00:00")
}
