package samchully

import (
	"errors"
	"testing"

	"github.com/bher20/gasbillmanager/pkg/providers"
)

const sampleHeatJSON = `{"result":"SUCCESS","caloryFactor":"42.839"}`

const samplePriceHTML = `
<table class="tbl">
  <tr class="LRC1">
    <th>주택용(취사난방 겸용)</th>
    <td>16.4473</td>
    <td>22.4818</td>
  </tr>
</table>
<p>취사난방 겸용의 취사 구간은 516 MJ 까지 적용됩니다.</p>
<p>기본요금 1,250 원</p>
`

func TestParseHeatResponse(t *testing.T) {
	v, err := ParseHeatResponse(sampleHeatJSON)
	if err != nil {
		t.Fatalf("ParseHeatResponse: %v", err)
	}
	if v != 42.839 {
		t.Errorf("heat = %v, want 42.839", v)
	}
}

func TestParseHeatResponseFailure(t *testing.T) {
	if _, err := ParseHeatResponse(`{"result":"FAIL","caloryFactor":""}`); err == nil {
		t.Error("expected error for failed lookup")
	}
	if _, err := ParseHeatResponse(`not json`); err == nil {
		t.Error("expected error for malformed payload")
	}
}

func TestParsePricesFromHTML(t *testing.T) {
	cook, heat, err := ParsePricesFromHTML(samplePriceHTML)
	if err != nil {
		t.Fatalf("ParsePricesFromHTML: %v", err)
	}
	if cook != 16.4473 {
		t.Errorf("cooking = %v, want 16.4473", cook)
	}
	if heat != 22.4818 {
		t.Errorf("heating = %v, want 22.4818", heat)
	}
}

func TestParsePricesPendingPage(t *testing.T) {
	if _, _, err := ParsePricesFromHTML(`<td>변동없음</td>`); err == nil {
		t.Error("expected error for pending tariff page")
	}
}

func TestParseBoundaryFromHTML(t *testing.T) {
	b, err := ParseBoundaryFromHTML(samplePriceHTML)
	if err != nil {
		t.Fatalf("ParseBoundaryFromHTML: %v", err)
	}
	if b != 516 {
		t.Errorf("boundary = %v, want 516", b)
	}
}

func TestParseBoundaryMissing(t *testing.T) {
	_, err := ParseBoundaryFromHTML(`<p>no such note</p>`)
	if !errors.Is(err, providers.ErrNotSupported) {
		t.Errorf("err = %v, want ErrNotSupported", err)
	}
}

func TestProviderMetadata(t *testing.T) {
	p := New(RegionGyeonggi)
	if p.Key() != "samchully" {
		t.Errorf("Key = %q", p.Key())
	}
	if !p.SupportsCentralHeating() {
		t.Error("expected central heating support")
	}
	if got := p.Regions(); len(got) != 2 {
		t.Errorf("Regions = %v, want 2 entries", got)
	}
}
