package checkin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResponseFor(t *testing.T) {
	tests := []struct {
		unique string
		want   Response
		ok     bool
	}{
		{UniqueYes, ResponseYes, true},
		{UniqueNo, ResponseNo, true},
		{UniqueNA, ResponseNA, true},
		{"chk_maybe", "", false},
		{"", "", false},
	}
	for _, tc := range tests {
		got, ok := ResponseFor(tc.unique)
		assert.Equal(t, tc.ok, ok, "unique %q", tc.unique)
		assert.Equal(t, tc.want, got, "unique %q", tc.unique)
	}
}

func TestTrackerLifecycle(t *testing.T) {
	tracker := NewTracker()

	assert.False(t, tracker.Prompted())
	assert.False(t, tracker.Responded())
	_, ok := tracker.Value()
	assert.False(t, ok)

	tracker.MarkPrompted()
	assert.True(t, tracker.Prompted())
	assert.False(t, tracker.Responded())

	tracker.Record(ResponseYes)
	assert.True(t, tracker.Responded())
	value, ok := tracker.Value()
	assert.True(t, ok)
	assert.Equal(t, ResponseYes, value)

	// Recording again (replayed click) keeps the state consistent.
	tracker.Record(ResponseYes)
	value, ok = tracker.Value()
	assert.True(t, ok)
	assert.Equal(t, ResponseYes, value)

	tracker.Reset()
	assert.False(t, tracker.Prompted())
	assert.False(t, tracker.Responded())
	_, ok = tracker.Value()
	assert.False(t, ok)
}
