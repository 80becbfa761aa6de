package daeryun

import (
	"context"
	"errors"
	"testing"

	"github.com/bher20/gasbillmanager/pkg/providers"
)

const sampleHeatHTML = `
<form id="tempFrm">
  <div>
    <p>조회 기간: 2024-02-01 ~ 2024-02-29</p>
    <p>평균 열량 <span>단위</span> <span>42.563 MJ/Nm3</span></p>
  </div>
</form>
`

const sampleTariffText = `
도시가스 소매요금표
시행일: 2024년 3월 1일
주택용 (취사/난방) 19.1234 원/MJ
일반용 18.0011 원/MJ
`

func TestParseHeatFromHTML(t *testing.T) {
	v, err := ParseHeatFromHTML(sampleHeatHTML)
	if err != nil {
		t.Fatalf("ParseHeatFromHTML: %v", err)
	}
	if v != 42.563 {
		t.Errorf("heat = %v, want 42.563", v)
	}
}

func TestParseHeatFromHTMLMissing(t *testing.T) {
	if _, err := ParseHeatFromHTML(`<div>no results</div>`); err == nil {
		t.Error("expected error for page without heat span")
	}
}

func TestParseTariffText(t *testing.T) {
	p := &Provider{}
	prices, err := p.ParseTariffText(sampleTariffText)
	if err != nil {
		t.Fatalf("ParseTariffText: %v", err)
	}
	if prices.CurrCooking != 19.1234 || prices.CurrHeating != 19.1234 {
		t.Errorf("current prices = %+v, want 19.1234 for both", prices)
	}
	if prices.PrevCooking != prices.CurrCooking {
		t.Errorf("previous and current should match for a single-rate sheet")
	}
}

func TestParseTariffTextMissingRate(t *testing.T) {
	p := &Provider{}
	if _, err := p.ParseTariffText("일반용 18.0 원/MJ"); err == nil {
		t.Error("expected error when residential row is absent")
	}
}

func TestEffectiveMonth(t *testing.T) {
	y, m := EffectiveMonth(sampleTariffText)
	if y != 2024 || m != 3 {
		t.Errorf("EffectiveMonth = %d-%d, want 2024-3", y, m)
	}
}

func TestFetchPriceNotSupported(t *testing.T) {
	p := &Provider{}
	_, err := p.FetchPrice(context.Background())
	if !errors.Is(err, providers.ErrNotSupported) {
		t.Errorf("err = %v, want ErrNotSupported", err)
	}
}

func TestFixedBaseFee(t *testing.T) {
	p := &Provider{}
	fee, err := p.FetchBaseFee(context.Background())
	if err != nil {
		t.Fatalf("FetchBaseFee: %v", err)
	}
	if fee != 1250 {
		t.Errorf("base fee = %v, want 1250", fee)
	}
}
