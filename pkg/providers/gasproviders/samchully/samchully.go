package samchully

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/bher20/gasbillmanager/pkg/providers"
	"github.com/bher20/gasbillmanager/pkg/providers/gasproviders"
	"github.com/bher20/gasbillmanager/pkg/providers/shared"
)

func init() {
	gasproviders.Register(New(RegionGyeonggi))
}

const (
	pricePageURL = "https://www.samchully.co.kr/customer/gas/info/fee/system.do"
	heatAPIURL   = "https://www.samchully.co.kr/customer/gas/info/fee/ajax/getUnitFee.do"

	RegionGyeonggi = "0001"
	RegionIncheon  = "0002"
)

// Provider scrapes Samchully City Gas. Heat values come from a JSON
// lookup endpoint; unit prices and the cooking/heating boundary come
// from the residential tariff page of the configured region.
type Provider struct {
	region string
}

// New returns a provider bound to one of the supported region codes.
func New(region string) *Provider {
	return &Provider{region: region}
}

func (p *Provider) Key() string { return "samchully" }

func (p *Provider) Name() string { return "삼천리 도시가스" }

func (p *Provider) LandingURL() string { return pricePageURL }

func (p *Provider) Regions() []string { return []string{RegionGyeonggi, RegionIncheon} }

func (p *Provider) SupportsCentralHeating() bool { return true }

type heatAPIResponse struct {
	Result       string `json:"result"`
	CaloryFactor string `json:"caloryFactor"`
}

func (p *Provider) fetchHeatForWindow(ctx context.Context, w shared.MonthWindow) (float64, error) {
	// The endpoint rejects ranges that end today or later.
	end := w.End
	if yesterday := time.Now().UTC().AddDate(0, 0, -1); end.After(yesterday) {
		end = yesterday
	}
	if end.Before(w.Start) {
		return 0, fmt.Errorf("heat window %s..%s not yet queryable: %w",
			w.Start.Format(time.DateOnly), end.Format(time.DateOnly), providers.ErrParseFailed)
	}

	form := url.Values{
		"findStartDate": {w.Start.Format("2006.01.02")},
		"findEndDate":   {end.Format("2006.01.02")},
	}
	body, err := shared.PostForm(ctx, shared.DefaultHTTPClient(), heatAPIURL, form)
	if err != nil {
		return 0, err
	}
	return ParseHeatResponse(body)
}

// ParseHeatResponse decodes the heat lookup JSON payload.
func ParseHeatResponse(body string) (float64, error) {
	var resp heatAPIResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return 0, fmt.Errorf("decode heat response: %w", err)
	}
	if resp.Result != "SUCCESS" || strings.TrimSpace(resp.CaloryFactor) == "" {
		return 0, fmt.Errorf("heat response result %q: %w", resp.Result, providers.ErrParseFailed)
	}
	return shared.ParseKoreanNumber(resp.CaloryFactor)
}

func (p *Provider) FetchHeat(ctx context.Context) (*gasproviders.HeatValues, error) {
	prev, curr := shared.TariffWindows(time.Now().UTC())

	prevHeat, err := p.fetchHeatForWindow(ctx, prev)
	if err != nil {
		return nil, fmt.Errorf("previous month heat: %w", err)
	}

	currHeat, err := p.fetchHeatForWindow(ctx, curr)
	if err != nil {
		// Early in the month the current window is not queryable yet;
		// the previous month's value is the best available stand-in.
		currHeat = prevHeat
	}
	return &gasproviders.HeatValues{PrevMonth: prevHeat, CurrMonth: currHeat}, nil
}

func (p *Provider) fetchPricePage(ctx context.Context, month time.Time) (string, error) {
	params := url.Values{
		"region":     {p.region},
		"useTypeCod": {"LRC1"},
		"priceDate":  {month.Format("200601") + "01"},
	}
	return shared.GetText(ctx, shared.DefaultHTTPClient(), pricePageURL, params)
}

func (p *Provider) FetchPrice(ctx context.Context) (*gasproviders.PriceValues, error) {
	prev, curr := shared.TariffWindows(time.Now().UTC())

	prevPage, err := p.fetchPricePage(ctx, prev.Start)
	if err != nil {
		return nil, err
	}
	prevCook, prevHeat, err := ParsePricesFromHTML(prevPage)
	if err != nil {
		return nil, fmt.Errorf("previous month prices: %w", err)
	}

	currPage, err := p.fetchPricePage(ctx, curr.Start)
	if err != nil {
		return nil, err
	}
	currCook, currHeat, err := ParsePricesFromHTML(currPage)
	if err != nil {
		// The tariff page reports "변동없음" until a change is posted;
		// carry the previous month's prices forward.
		currCook, currHeat = prevCook, prevHeat
	}

	return &gasproviders.PriceValues{
		PrevCooking: prevCook,
		PrevHeating: prevHeat,
		CurrCooking: currCook,
		CurrHeating: currHeat,
	}, nil
}

func (p *Provider) FetchBaseFee(ctx context.Context) (float64, error) {
	page, err := p.fetchPricePage(ctx, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	fee := shared.ParseFirstFloat(baseFeeRe, page)
	if fee == 0 {
		return 0, providers.ErrNotSupported
	}
	return fee, nil
}

func (p *Provider) FetchCookingHeatingBoundary(ctx context.Context) (float64, error) {
	page, err := p.fetchPricePage(ctx, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return ParseBoundaryFromHTML(page)
}

// The residential combined (LRC1) tariff table lists the cooking price
// in the second cell and the heating price in the third.
var (
	cookingCellRe = regexp.MustCompile(`(?s)class="LRC1"[^>]*>.*?<td[^>]*>\s*([\d.,]+)\s*</td>`)
	heatingCellRe = regexp.MustCompile(`(?s)class="LRC1"[^>]*>.*?<td[^>]*>[\s\d.,]*</td>\s*<td[^>]*>\s*([\d.,]+)\s*</td>`)
	boundaryRe    = regexp.MustCompile(`취사난방[^0-9]*([\d,]+)\s*MJ`)
	baseFeeRe     = regexp.MustCompile(`기본요금[^0-9]*([\d,]+)\s*원`)
)

// ParsePricesFromHTML extracts the cooking and heating unit prices from
// a residential tariff page.
func ParsePricesFromHTML(html string) (cooking, heating float64, err error) {
	cook := cookingCellRe.FindStringSubmatch(html)
	if len(cook) < 2 || strings.Contains(html, "변동없음") {
		return 0, 0, fmt.Errorf("cooking price cell: %w", providers.ErrParseFailed)
	}
	cooking, err = shared.ParseKoreanNumber(cook[1])
	if err != nil {
		return 0, 0, err
	}

	heating = cooking
	if heat := heatingCellRe.FindStringSubmatch(html); len(heat) >= 2 {
		if v, err := shared.ParseKoreanNumber(heat[1]); err == nil {
			heating = v
		}
	}
	return cooking, heating, nil
}

// ParseBoundaryFromHTML extracts the cooking/heating boundary (MJ) from
// the tariff page notes.
func ParseBoundaryFromHTML(html string) (float64, error) {
	m := boundaryRe.FindStringSubmatch(html)
	if len(m) < 2 {
		return 0, providers.ErrNotSupported
	}
	return shared.ParseKoreanNumber(m[1])
}
