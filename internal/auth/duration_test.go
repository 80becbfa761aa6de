package auth

import (
	"testing"
	"time"
)

func TestParseExpirationDuration(t *testing.T) {
	for _, never := range []string{"", "never"} {
		got, err := ParseExpirationDuration(never)
		if err != nil || got != nil {
			t.Errorf("ParseExpirationDuration(%q) = %v, %v, want nil, nil", never, got, err)
		}
	}

	now := time.Now()
	cases := map[string]time.Duration{
		"24h":   24 * time.Hour,
		"2h30m": 2*time.Hour + 30*time.Minute,
		"30d":   30 * 24 * time.Hour,
		"2w":    14 * 24 * time.Hour,
	}
	for in, want := range cases {
		got, err := ParseExpirationDuration(in)
		if err != nil || got == nil {
			t.Fatalf("ParseExpirationDuration(%q): %v, %v", in, got, err)
		}
		diff := got.Sub(now) - want
		if diff < 0 {
			diff = -diff
		}
		if diff > time.Minute {
			t.Errorf("ParseExpirationDuration(%q) = %v, want about now+%v", in, got, want)
		}
	}

	got, err := ParseExpirationDuration("2099-12-25")
	if err != nil {
		t.Fatalf("date form: %v", err)
	}
	if got.Year() != 2099 || got.Month() != time.December || got.Day() != 25 {
		t.Errorf("date form = %v", got)
	}

	if _, err := ParseExpirationDuration("2001-01-01"); err == nil {
		t.Error("past date should be rejected")
	}
	for _, bad := range []string{"banana", "-3d", "d", "12/25/2026"} {
		if _, err := ParseExpirationDuration(bad); err == nil {
			t.Errorf("ParseExpirationDuration(%q) should fail", bad)
		}
	}
}
