package seoul

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"time"

	"github.com/bher20/gasbillmanager/pkg/providers"
	"github.com/bher20/gasbillmanager/pkg/providers/gasproviders"
	"github.com/bher20/gasbillmanager/pkg/providers/shared"
)

func init() {
	gasproviders.Register(&Provider{})
}

const (
	heatURL  = "https://www.seoulgas.co.kr/front/payment/selectHeat.do"
	priceURL = "https://www.seoulgas.co.kr/front/payment/gasPayTable.do"
)

// Provider scrapes Seoul City Gas. Heat values come from a per-period
// lookup form; prices come from the published tariff table, which
// carries previous and current month columns per tariff row.
type Provider struct{}

func (p *Provider) Key() string { return "seoul" }

func (p *Provider) Name() string { return "서울도시가스" }

func (p *Provider) LandingURL() string { return priceURL }

func (p *Provider) Regions() []string { return nil }

func (p *Provider) SupportsCentralHeating() bool { return false }

func (p *Provider) fetchHeatForWindow(ctx context.Context, w shared.MonthWindow) (float64, error) {
	form := url.Values{
		"startDate": {w.Start.Format("2006.01.02")},
		"endDate":   {w.End.Format("2006.01.02")},
	}
	body, err := shared.PostForm(ctx, shared.DefaultHTTPClient(), heatURL, form)
	if err != nil {
		return 0, err
	}
	return ParseHeatFromHTML(body)
}

func (p *Provider) FetchHeat(ctx context.Context) (*gasproviders.HeatValues, error) {
	prev, curr := shared.TariffWindows(time.Now().UTC())

	prevHeat, err := p.fetchHeatForWindow(ctx, prev)
	if err != nil {
		return nil, fmt.Errorf("previous month heat: %w", err)
	}
	currHeat, err := p.fetchHeatForWindow(ctx, curr)
	if err != nil {
		return nil, fmt.Errorf("current month heat: %w", err)
	}
	return &gasproviders.HeatValues{PrevMonth: prevHeat, CurrMonth: currHeat}, nil
}

func (p *Provider) FetchPrice(ctx context.Context) (*gasproviders.PriceValues, error) {
	body, err := shared.GetText(ctx, shared.DefaultHTTPClient(), priceURL, nil)
	if err != nil {
		return nil, err
	}
	return ParsePriceFromHTML(body)
}

func (p *Provider) FetchBaseFee(ctx context.Context) (float64, error) {
	return 0, providers.ErrNotSupported
}

func (p *Provider) FetchCookingHeatingBoundary(ctx context.Context) (float64, error) {
	return 0, providers.ErrNotSupported
}

// heatRe matches the average calorific value line of the heat lookup
// result page, e.g. "평균 열량 : 42.507 MJ/N㎥".
var heatRe = regexp.MustCompile(`평균\s*열량[^0-9]*(\d+\.\d+)`)

// ParseHeatFromHTML extracts the average calorific value from the heat
// lookup result page.
func ParseHeatFromHTML(html string) (float64, error) {
	v := shared.ParseFirstFloat(heatRe, html)
	if v == 0 {
		return 0, fmt.Errorf("average heat value: %w", providers.ErrParseFailed)
	}
	return v, nil
}

// The tariff table lists one row per tariff category with previous and
// current month unit prices in the first two value cells.
var (
	cookingRowRe = regexp.MustCompile(`(?s)<th[^>]*>[^<]*취사[^<]*</th>\s*<td[^>]*>\s*([\d.,]+)\s*</td>\s*<td[^>]*>\s*([\d.,]+)\s*</td>`)
	heatingRowRe = regexp.MustCompile(`(?s)<th[^>]*>[^<]*개별난방[^<]*</th>\s*<td[^>]*>\s*([\d.,]+)\s*</td>\s*<td[^>]*>\s*([\d.,]+)\s*</td>`)
)

// ParsePriceFromHTML extracts cooking and heating unit prices from the
// tariff table page. When the page has no separate heating row, the
// cooking price covers both categories.
func ParsePriceFromHTML(html string) (*gasproviders.PriceValues, error) {
	cook := cookingRowRe.FindStringSubmatch(html)
	if len(cook) < 3 {
		return nil, fmt.Errorf("cooking tariff row: %w", providers.ErrParseFailed)
	}
	prevCook, err := shared.ParseKoreanNumber(cook[1])
	if err != nil {
		return nil, err
	}
	currCook, err := shared.ParseKoreanNumber(cook[2])
	if err != nil {
		return nil, err
	}

	prices := &gasproviders.PriceValues{
		PrevCooking: prevCook,
		PrevHeating: prevCook,
		CurrCooking: currCook,
		CurrHeating: currCook,
	}

	if heat := heatingRowRe.FindStringSubmatch(html); len(heat) >= 3 {
		if v, err := shared.ParseKoreanNumber(heat[1]); err == nil {
			prices.PrevHeating = v
		}
		if v, err := shared.ParseKoreanNumber(heat[2]); err == nil {
			prices.CurrHeating = v
		}
	}
	return prices, nil
}
