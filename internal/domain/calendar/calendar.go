// internal/domain/calendar/calendar.go
package calendar

import (
	"fmt"
	"time"
)

// Clock provides the current time in the single timezone the bot operates in.
// The zone is fixed at startup and never changes at runtime.
type Clock struct {
	loc *time.Location
}

func NewClock(tz string) (*Clock, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", tz, err)
	}
	return &Clock{loc: loc}, nil
}

func (c *Clock) Now() time.Time {
	return time.Now().In(c.loc)
}

func (c *Clock) Location() *time.Location {
	return c.loc
}

// WeekBounds returns the Monday and Sunday of the week containing d,
// both normalized to midnight in d's location. Weeks run Monday to Sunday.
func WeekBounds(d time.Time) (monday, sunday time.Time) {
	midnight := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
	// time.Weekday has Sunday=0; shift so Monday=0.
	offset := (int(midnight.Weekday()) + 6) % 7
	monday = midnight.AddDate(0, 0, -offset)
	sunday = monday.AddDate(0, 0, 6)
	return monday, sunday
}

// Ordinal renders a day of month with its English ordinal suffix.
func Ordinal(day int) string {
	suffix := "th"
	if day%100 < 11 || day%100 > 13 {
		switch day % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", day, suffix)
}

// FormatLong renders a date as e.g. "5th March 2025 (Wed)".
func FormatLong(d time.Time) string {
	return fmt.Sprintf("%s %s %d (%s)", Ordinal(d.Day()), d.Month(), d.Year(), d.Format("Mon"))
}

// FormatDay renders a date as e.g. "Wed 05 Mar 2025".
func FormatDay(d time.Time) string {
	return d.Format("Mon 02 Jan 2006")
}

// FormatShort renders a date as e.g. "Wed 05 Mar".
func FormatShort(d time.Time) string {
	return d.Format("Mon 02 Jan")
}
