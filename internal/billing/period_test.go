package billing

import (
	"testing"
	"time"
)

func TestSplitPeriod_OnReadingDay(t *testing.T) {
	// Today is exactly the reading day: the new period opened today.
	today := Date(2024, time.March, 26)
	split := SplitPeriod(today, 26)

	if !split.Start.Equal(Date(2024, time.March, 26)) {
		t.Fatalf("unexpected period start: %s", split.Start)
	}
	if split.PrevDays != 0 {
		t.Errorf("expected 0 previous-month days, got %d", split.PrevDays)
	}
	if split.CurrDays != 1 {
		t.Errorf("expected 1 current-month day, got %d", split.CurrDays)
	}
	if split.TotalDays != 1 {
		t.Errorf("expected 1 total day, got %d", split.TotalDays)
	}
}

func TestSplitPeriod_SpansMonths(t *testing.T) {
	today := Date(2024, time.March, 10)
	split := SplitPeriod(today, 26)

	if !split.Start.Equal(Date(2024, time.February, 26)) {
		t.Fatalf("unexpected period start: %s", split.Start)
	}
	// Feb 26..29 in a leap year.
	if split.PrevDays != 4 {
		t.Errorf("expected 4 previous-month days, got %d", split.PrevDays)
	}
	// Mar 1..10.
	if split.CurrDays != 10 {
		t.Errorf("expected 10 current-month days, got %d", split.CurrDays)
	}
	if split.TotalDays != 14 {
		t.Errorf("expected 14 total days, got %d", split.TotalDays)
	}
}

func TestLastReadingDate_EndOfMonthLeapYear(t *testing.T) {
	// Feb 29 in a leap year is itself the end-of-month reading day.
	today := Date(2024, time.February, 29)
	start := LastReadingDate(today, LastDayOfMonth)
	if !start.Equal(today) {
		t.Fatalf("expected start %s, got %s", today, start)
	}

	next := NextReadingDate(start, LastDayOfMonth)
	if !next.Equal(Date(2024, time.March, 31)) {
		t.Fatalf("expected next reading 2024-03-31, got %s", next)
	}
}

func TestLastReadingDate_EndOfMonthMidMonth(t *testing.T) {
	today := Date(2024, time.March, 15)
	start := LastReadingDate(today, LastDayOfMonth)
	if !start.Equal(Date(2024, time.February, 29)) {
		t.Fatalf("expected start 2024-02-29, got %s", start)
	}
}

func TestLastReadingDate_BeforeReadingDay(t *testing.T) {
	today := Date(2024, time.January, 5)
	start := LastReadingDate(today, 26)
	if !start.Equal(Date(2023, time.December, 26)) {
		t.Fatalf("expected start 2023-12-26, got %s", start)
	}
}

func TestNextReadingDate_FixedDay(t *testing.T) {
	next := NextReadingDate(Date(2024, time.January, 26), 26)
	if !next.Equal(Date(2024, time.February, 26)) {
		t.Fatalf("expected 2024-02-26, got %s", next)
	}
}

// Day-split totality: prev + curr must always equal the inclusive day
// count from the period start through today.
func TestSplitPeriod_Totality(t *testing.T) {
	for _, readingDay := range []int{0, 1, 15, 26, 28} {
		day := Date(2023, time.November, 1)
		end := Date(2024, time.April, 1)
		for day.Before(end) {
			split := SplitPeriod(day, readingDay)
			want := daysBetween(split.Start, day) + 1
			if split.TotalDays != want {
				t.Fatalf("readingDay=%d today=%s: total %d, want %d",
					readingDay, day.Format(time.DateOnly), split.TotalDays, want)
			}
			if split.PrevDays < 0 || split.CurrDays < 0 {
				t.Fatalf("readingDay=%d today=%s: negative day count %+v",
					readingDay, day.Format(time.DateOnly), split)
			}
			if split.PrevDays+split.CurrDays != split.TotalDays {
				t.Fatalf("readingDay=%d today=%s: split %d+%d != %d",
					readingDay, day.Format(time.DateOnly),
					split.PrevDays, split.CurrDays, split.TotalDays)
			}
			day = day.AddDate(0, 0, 1)
		}
	}
}
