package shared

import "time"

// MonthWindow is an inclusive date range within one calendar month.
type MonthWindow struct {
	Start time.Time
	End   time.Time
}

// TariffWindows returns the previous-month window (first through last
// day) and the current-month window (first day through today). Heat
// lookup endpoints take these two ranges.
func TariffWindows(today time.Time) (prev, curr MonthWindow) {
	y, m, _ := today.Date()
	firstOfCurr := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	lastOfPrev := firstOfCurr.AddDate(0, 0, -1)
	firstOfPrev := time.Date(lastOfPrev.Year(), lastOfPrev.Month(), 1, 0, 0, 0, 0, time.UTC)

	prev = MonthWindow{Start: firstOfPrev, End: lastOfPrev}
	curr = MonthWindow{Start: firstOfCurr, End: today}
	return prev, curr
}
