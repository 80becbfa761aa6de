package billing

import (
	"testing"
	"time"
)

func TestApplyReduction_WinterProration(t *testing.T) {
	applied, net := ApplyReduction(10000, 10, 30, time.January, 6000, 1200)
	if !almostEqual(applied, 2000) {
		t.Fatalf("expected 6000*10/30 = 2000 applied, got %f", applied)
	}
	if !almostEqual(net, 8000) {
		t.Errorf("expected net 8000, got %f", net)
	}
}

func TestApplyReduction_NonWinter(t *testing.T) {
	applied, _ := ApplyReduction(10000, 15, 30, time.July, 6000, 1200)
	if !almostEqual(applied, 600) {
		t.Fatalf("expected 1200*15/30 = 600 applied, got %f", applied)
	}
}

func TestApplyReduction_CappedAtFee(t *testing.T) {
	applied, net := ApplyReduction(500, 30, 30, time.December, 6000, 1200)
	if !almostEqual(applied, 500) {
		t.Fatalf("expected reduction capped at fee 500, got %f", applied)
	}
	if net != 0 {
		t.Errorf("expected net 0, got %f", net)
	}
}

func TestApplyReduction_NeverNegative(t *testing.T) {
	for m := time.January; m <= time.December; m++ {
		for _, days := range []int{0, 1, 15, 30} {
			applied, net := ApplyReduction(3000, days, 30, m, 6000, 1200)
			if applied < 0 {
				t.Fatalf("month %s days %d: negative reduction %f", m, days, applied)
			}
			if applied > 3000 {
				t.Fatalf("month %s days %d: reduction %f exceeds fee", m, days, applied)
			}
			if net < 0 {
				t.Fatalf("month %s days %d: negative net fee %f", m, days, net)
			}
		}
	}
}

func TestIsWinterMonth(t *testing.T) {
	winter := map[time.Month]bool{
		time.December: true, time.January: true,
		time.February: true, time.March: true,
	}
	for m := time.January; m <= time.December; m++ {
		if IsWinterMonth(m) != winter[m] {
			t.Errorf("month %s: winter=%v, want %v", m, IsWinterMonth(m), winter[m])
		}
	}
}

func TestFinalize_Truncation(t *testing.T) {
	// 1250 * 1.1 = 1375, truncated down to 1370.
	if got := FinalizeBaseOnly(1250); got != 1370 {
		t.Fatalf("expected 1370, got %d", got)
	}
}

func TestFinalize_MultipleOfStep(t *testing.T) {
	for _, base := range []float64{0, 1, 999.9, 1250, 33333.33} {
		got := Finalize(base, 1234.56, 7890.12)
		if got%CurrencyStep != 0 {
			t.Errorf("base %f: %d is not a multiple of %d", base, got, CurrencyStep)
		}
		if float64(got) > (base+1234.56+7890.12)*VATRate {
			t.Errorf("base %f: %d exceeds the pre-truncation total", base, got)
		}
	}
}
