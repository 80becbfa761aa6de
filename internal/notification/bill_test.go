package notification

import (
	"strings"
	"testing"

	"github.com/bher20/gasbillmanager/internal/billing"
	"github.com/bher20/gasbillmanager/internal/estimator"
	"github.com/bher20/gasbillmanager/internal/storage"
)

func TestFormatKRW(t *testing.T) {
	cases := map[int64]string{
		0:       "0",
		999:     "999",
		1000:    "1,000",
		27500:   "27,500",
		1234567: "1,234,567",
		-52250:  "-52,250",
	}
	for in, want := range cases {
		if got := formatKRW(in); got != want {
			t.Errorf("formatKRW(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatBillSummaryHTML(t *testing.T) {
	inst := storage.Installation{Name: "home", ProviderKey: "seoul"}
	est := &estimator.Estimate{
		PeriodStart:      billing.Date(2024, 3, 26),
		PeriodEnd:        billing.Date(2024, 4, 25),
		ElapsedDays:      31,
		UsageM3:          40.7,
		CorrectedUsageM3: 40.7,
		PeriodFee:        38120,
		TotalFee:         38120,
	}
	html := FormatBillSummaryHTML(inst, est)

	for _, want := range []string{"home", "seoul", "2024-03-26 ~ 2024-04-25 (31 days)", "40.70 m³", "38,120 KRW"} {
		if !strings.Contains(html, want) {
			t.Errorf("summary missing %q:\n%s", want, html)
		}
	}
	if strings.Contains(html, "Corrected usage") {
		t.Error("corrected row should be omitted when equal to raw usage")
	}
	if strings.Contains(html, "With carried periods") {
		t.Error("carried row should be omitted when totals match")
	}
}
