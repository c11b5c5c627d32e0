// internal/domain/checkin/checkin.go
package checkin

import "sync"

// Response is the answer a user can give to the daily check-in.
type Response string

const (
	ResponseYes Response = "YES"
	ResponseNo  Response = "NO"
	ResponseNA  Response = "NA"
)

// Callback uniques carried by the inline buttons.
const (
	UniqueYes = "chk_yes"
	UniqueNo  = "chk_no"
	UniqueNA  = "chk_na"
)

// Button is one inline action offered under the check-in prompt.
type Button struct {
	Label  string
	Unique string
}

// ResponseFor maps a callback unique to a Response. Unrecognized payloads
// return ok=false and must not change any state.
func ResponseFor(unique string) (Response, bool) {
	switch unique {
	case UniqueYes:
		return ResponseYes, true
	case UniqueNo:
		return ResponseNo, true
	case UniqueNA:
		return ResponseNA, true
	}
	return "", false
}

// Tracker holds the per-day check-in state. The Telegram poller goroutine
// records responses while the scheduler loop reads them, hence the mutex.
type Tracker struct {
	mu        sync.RWMutex
	prompted  bool
	responded bool
	value     Response
}

func NewTracker() *Tracker {
	return &Tracker{}
}

// MarkPrompted notes that today's check-in prompt has been sent, which arms
// the nag reminders until a response arrives.
func (t *Tracker) MarkPrompted() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.prompted = true
}

func (t *Tracker) Prompted() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.prompted
}

// Record stores the user's response. Recording the same response twice is a
// no-op, which makes reprocessing a replayed click safe.
func (t *Tracker) Record(r Response) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.responded = true
	t.value = r
}

func (t *Tracker) Responded() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.responded
}

// Value returns the recorded response, if any.
func (t *Tracker) Value() (Response, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.value, t.responded
}

// Reset clears all daily fields. Called at local midnight rollover and again
// whenever the check-in prompt is (re-)sent.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.prompted = false
	t.responded = false
	t.value = ""
}
