package cron

import (
	"testing"
	"time"
)

func TestNextRun(t *testing.T) {
	from := time.Date(2024, 4, 10, 12, 0, 0, 0, time.UTC)

	if got := nextRun("300", from); got != from.Add(5*time.Minute) {
		t.Errorf("seconds schedule: got %v", got)
	}

	// Monday 03:00 after a Wednesday noon is the following Monday.
	if got := nextRun("0 3 * * 1", from); !got.After(from) || got.Weekday() != time.Monday || got.Hour() != 3 {
		t.Errorf("cron schedule: got %v, want next Monday 03:00", got)
	}

	if got := nextRun("not-a-schedule", from); got != from.Add(24*time.Hour) {
		t.Errorf("fallback schedule: got %v", got)
	}
}
