package billing

import (
	"testing"
	"time"
)

func TestIsBillingMonth(t *testing.T) {
	march := Date(2024, time.March, 15)
	april := Date(2024, time.April, 15)

	if !IsBillingMonth(march, CycleOdd) {
		t.Errorf("March should be a billing month on the odd cycle")
	}
	if IsBillingMonth(april, CycleOdd) {
		t.Errorf("April should not be a billing month on the odd cycle")
	}
	if !IsBillingMonth(april, CycleEven) {
		t.Errorf("April should be a billing month on the even cycle")
	}
	if IsBillingMonth(march, CycleDisabled) {
		t.Errorf("disabled cycle never bills")
	}
}

func TestIsBillingMonth_QuarterlyPhases(t *testing.T) {
	cases := []struct {
		cycle  ReadingCycle
		months []time.Month
	}{
		{CycleQuarterly1, []time.Month{time.January, time.April, time.July, time.October}},
		{CycleQuarterly2, []time.Month{time.February, time.May, time.August, time.November}},
		{CycleQuarterly3, []time.Month{time.March, time.June, time.September, time.December}},
	}
	for _, tc := range cases {
		want := map[time.Month]bool{}
		for _, m := range tc.months {
			want[m] = true
		}
		for m := time.January; m <= time.December; m++ {
			got := IsBillingMonth(Date(2024, m, 10), tc.cycle)
			if got != want[m] {
				t.Errorf("%s month %s: got %v, want %v", tc.cycle, m, got, want[m])
			}
		}
	}
}

func TestAggregatePeriodic_Bimonthly(t *testing.T) {
	march := Date(2024, time.March, 26)
	if got := AggregatePeriodic(100, 50, 0, march, CycleOdd); got != 150 {
		t.Fatalf("expected 150 on billing month, got %f", got)
	}
	april := Date(2024, time.April, 26)
	if got := AggregatePeriodic(100, 50, 0, april, CycleOdd); got != 100 {
		t.Fatalf("expected passthrough 100 off billing month, got %f", got)
	}
}

func TestAggregatePeriodic_Quarterly(t *testing.T) {
	april := Date(2024, time.April, 26)
	if got := AggregatePeriodic(100, 50, 25, april, CycleQuarterly1); got != 175 {
		t.Fatalf("expected 175 on quarterly billing month, got %f", got)
	}
	may := Date(2024, time.May, 26)
	if got := AggregatePeriodic(100, 50, 25, may, CycleQuarterly1); got != 100 {
		t.Fatalf("expected passthrough 100, got %f", got)
	}
}

// Off-cycle aggregation must be the identity: repeated calls cannot
// drift the displayed value.
func TestAggregatePeriodic_IdempotentOffCycle(t *testing.T) {
	feb := Date(2024, time.February, 1)
	v := 1234.5
	for i := 0; i < 5; i++ {
		v = AggregatePeriodic(v, 999, 999, feb, CycleOdd)
	}
	if v != 1234.5 {
		t.Fatalf("off-cycle aggregation drifted to %f", v)
	}
}
