package seoul

import "testing"

const sampleHeatHTML = `
<div id="content">
  <p>조회 기간: 2024.03.01 ~ 2024.03.10</p>
  <p>평균 열량 : 42.507 MJ/N㎥</p>
</div>
`

const samplePriceHTML = `
<div class="tblgas"><table>
<tr><th>주택취사용</th><td>22.1096</td><td>22.3094</td></tr>
<tr><th>개별난방용</th><td>21.8721</td><td>22.0512</td></tr>
</table></div>
`

func TestParseHeatFromHTML(t *testing.T) {
	v, err := ParseHeatFromHTML(sampleHeatHTML)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 42.507 {
		t.Errorf("expected 42.507, got %v", v)
	}
}

func TestParseHeatFromHTML_Missing(t *testing.T) {
	if _, err := ParseHeatFromHTML("<div>no data</div>"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestParsePriceFromHTML(t *testing.T) {
	prices, err := ParsePriceFromHTML(samplePriceHTML)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prices.PrevCooking != 22.1096 || prices.CurrCooking != 22.3094 {
		t.Errorf("unexpected cooking prices: %+v", prices)
	}
	if prices.PrevHeating != 21.8721 || prices.CurrHeating != 22.0512 {
		t.Errorf("unexpected heating prices: %+v", prices)
	}
}

func TestParsePriceFromHTML_CookingOnlyTable(t *testing.T) {
	html := `<table><tr><th>주택취사용</th><td>22.1096</td><td>22.3094</td></tr></table>`
	prices, err := ParsePriceFromHTML(html)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prices.PrevHeating != prices.PrevCooking {
		t.Errorf("expected heating to fall back to cooking price: %+v", prices)
	}
}
