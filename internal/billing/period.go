package billing

import "time"

// A reading day of zero means the installation is read on the last
// calendar day of each month.
const LastDayOfMonth = 0

// PeriodSplit describes the elapsed portion of the current billing
// period, divided at the calendar-month boundary. Tariffs are published
// per calendar month, so a reading cycle that spans two months must be
// prorated between the previous month's rates and the current month's.
type PeriodSplit struct {
	Start     time.Time
	PrevDays  int
	CurrDays  int
	TotalDays int
}

func lastDay(year int, month time.Month) int {
	// Day zero of the following month normalizes to the last day.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func daysBetween(a, b time.Time) int {
	return int(b.Sub(a) / (24 * time.Hour))
}

// LastReadingDate returns the most recent reading date on or before
// today for the given reading day (1..28, or LastDayOfMonth).
func LastReadingDate(today time.Time, readingDay int) time.Time {
	y, m, d := today.Date()
	if readingDay == LastDayOfMonth {
		if d == lastDay(y, m) {
			return Date(y, m, d)
		}
		// Day zero of this month is the last day of the previous one.
		return Date(y, m, 0)
	}
	if d >= readingDay {
		return Date(y, m, readingDay)
	}
	return Date(y, m-1, readingDay)
}

// NextReadingDate returns the reading date one cycle after start.
func NextReadingDate(start time.Time, readingDay int) time.Time {
	y, m, _ := start.Date()
	if readingDay == LastDayOfMonth {
		return Date(y, m+2, 0)
	}
	return Date(y, m+1, readingDay)
}

// SplitPeriod computes the start of the current billing period and the
// day counts falling in the previous and current calendar months. The
// reading day itself opens the new period: when today equals the
// reading date, the split is a single current-month day.
//
// Invariant: PrevDays + CurrDays == daysBetween(Start, today) + 1 and
// both counts are non-negative whenever today >= Start.
func SplitPeriod(today time.Time, readingDay int) PeriodSplit {
	start := LastReadingDate(today, readingDay)
	split := PeriodSplit{Start: start}
	if today.Before(start) {
		// LastReadingDate never returns a future date.
		return split
	}

	firstOfMonth := Date(today.Year(), today.Month(), 1)
	if start.Before(firstOfMonth) {
		lastOfPrev := firstOfMonth.AddDate(0, 0, -1)
		split.PrevDays = daysBetween(start, lastOfPrev) + 1
	}

	currStart := start
	if firstOfMonth.After(currStart) {
		currStart = firstOfMonth
	}
	split.CurrDays = daysBetween(currStart, today) + 1
	split.TotalDays = split.PrevDays + split.CurrDays
	return split
}
