// internal/domain/schedule/schedule.go
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Action is the work a trigger performs when its minute arrives.
type Action func(ctx context.Context) error

// Rule is one entry of the fixed trigger table: a unique id, a standard
// 5-field cron expression naming the day-of-week/hour/minute, and the action
// to run. Rules are built once at startup and never mutated.
type Rule struct {
	ID     string
	Spec   string
	Action Action

	schedule cron.Schedule
}

func NewRule(id, spec string, action Action) (Rule, error) {
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return Rule{}, fmt.Errorf("parse trigger spec %q for %s: %w", spec, id, err)
	}
	return Rule{ID: id, Spec: spec, Action: action, schedule: sched}, nil
}

// Matches reports whether now falls inside an activation minute of the rule.
// The match is on the exact minute only: a minute missed because the process
// was down or the loop was delayed is skipped, never caught up.
func (r Rule) Matches(now time.Time) bool {
	minute := now.Truncate(time.Minute)
	return r.schedule.Next(minute.Add(-time.Second)).Equal(minute)
}

// FiredSet records which trigger ids have already run today. It is owned by
// the scheduler loop, which is its only reader and writer, so no lock.
type FiredSet struct {
	ids map[string]struct{}
}

func NewFiredSet() *FiredSet {
	return &FiredSet{ids: make(map[string]struct{})}
}

func (f *FiredSet) Fired(id string) bool {
	_, ok := f.ids[id]
	return ok
}

func (f *FiredSet) Mark(id string) {
	f.ids[id] = struct{}{}
}

// Reset clears the set. Only the day-boundary check may call this.
func (f *FiredSet) Reset() {
	f.ids = make(map[string]struct{})
}

func (f *FiredSet) Len() int {
	return len(f.ids)
}
