package auth

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseExpirationDuration turns a token expiry request into an absolute
// time. "never" and the empty string mean no expiry. Relative forms are
// Go durations ("24h", "2h30m") plus day and week suffixes ("30d",
// "2w"). Absolute dates are "2006-01-02" or "2006-01-02 15:04" and must
// lie in the future.
func ParseExpirationDuration(expiresIn string) (*time.Time, error) {
	if expiresIn == "" || expiresIn == "never" {
		return nil, nil
	}

	if dur, ok := parseRelative(expiresIn); ok {
		t := time.Now().Add(dur)
		return &t, nil
	}

	for _, layout := range []string{time.DateOnly, "2006-01-02 15:04"} {
		t, err := time.Parse(layout, expiresIn)
		if err != nil {
			continue
		}
		if t.Before(time.Now()) {
			return nil, fmt.Errorf("expiration date must be in the future: %s", expiresIn)
		}
		return &t, nil
	}

	return nil, fmt.Errorf("invalid expiration %q (use 'never', a duration like '24h' or '30d', or a date like '2026-12-25')", expiresIn)
}

func parseRelative(s string) (time.Duration, bool) {
	if dur, err := time.ParseDuration(s); err == nil {
		return dur, true
	}
	// time.ParseDuration stops at hours; accept day and week suffixes.
	var day time.Duration
	switch {
	case strings.HasSuffix(s, "d"):
		day = 24 * time.Hour
	case strings.HasSuffix(s, "w"):
		day = 7 * 24 * time.Hour
	default:
		return 0, false
	}
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || n < 0 {
		return 0, false
	}
	return time.Duration(n) * day, true
}
