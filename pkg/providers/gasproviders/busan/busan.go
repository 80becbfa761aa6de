package busan

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"time"

	"github.com/bher20/gasbillmanager/pkg/providers"
	"github.com/bher20/gasbillmanager/pkg/providers/gasproviders"
	"github.com/bher20/gasbillmanager/pkg/providers/shared"
)

func init() {
	gasproviders.Register(New(false))
}

const (
	pricePageURL = "https://www.skens.com/busan/rate/guide.do"
	heatAPIURL   = "https://www.skens.com/busan/caloric/call_EBPP_044.do"

	RegionBusan = "276"
)

// Provider scrapes Busan City Gas (SK E&S). The tariff page splits
// residential rates into dedicated cooking and heating rows, so the
// cooking/heating boundary is always zero.
type Provider struct {
	centralHeating bool
}

// New returns a provider. When centralHeating is set the heating price
// is read from the central heating row instead of the individual one.
func New(centralHeating bool) *Provider {
	return &Provider{centralHeating: centralHeating}
}

func (p *Provider) Key() string { return "busan" }

func (p *Provider) Name() string { return "부산도시가스 (SK E&S)" }

func (p *Provider) LandingURL() string { return pricePageURL }

func (p *Provider) Regions() []string { return []string{RegionBusan} }

func (p *Provider) SupportsCentralHeating() bool { return true }

func (p *Provider) heatingLabel() string {
	if p.centralHeating {
		return "중앙난방"
	}
	return "난방전용"
}

type heatAPIResponse struct {
	List []struct {
		AvgHeat string `json:"E_CALOR"`
	} `json:"list"`
}

func (p *Provider) fetchHeatForWindow(ctx context.Context, w shared.MonthWindow) (float64, error) {
	form := url.Values{
		"I_FDATE": {w.Start.Format("20060102")},
		"I_TDATE": {w.End.Format("20060102")},
		"I_CALOR": {"C000"},
	}
	body, err := shared.PostForm(ctx, shared.DefaultHTTPClient(), heatAPIURL, form)
	if err != nil {
		return 0, err
	}
	return ParseHeatResponse(body)
}

// ParseHeatResponse decodes the average heat API payload.
func ParseHeatResponse(body string) (float64, error) {
	var resp heatAPIResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return 0, fmt.Errorf("decode heat response: %w", err)
	}
	if len(resp.List) == 0 {
		return 0, fmt.Errorf("heat response has no rows: %w", providers.ErrParseFailed)
	}
	return shared.ParseKoreanNumber(resp.List[0].AvgHeat)
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

var monthOptionRe = regexp.MustCompile(`<option\s+value="([^"]+)"[^>]*>\s*(\d{4}-\d{2}-01)\s*</option>`)

// monthCodes maps option labels (YYYY-MM-01) to their form codes on the
// tariff page.
func monthCodes(html string) map[string]string {
	codes := make(map[string]string)
	for _, m := range monthOptionRe.FindAllStringSubmatch(html, -1) {
		codes[m[2]] = m[1]
	}
	return codes
}

func (p *Provider) fetchPricesForCode(ctx context.Context, code string) (cooking, heating float64, err error) {
	form := url.Values{
		"regionSeq":   {RegionBusan},
		"seq":         {"0"},
		"item-select": {code},
	}
	body, err := shared.PostForm(ctx, shared.DefaultHTTPClient(), pricePageURL, form)
	if err != nil {
		return 0, 0, err
	}
	return ParsePricesFromHTML(body, p.heatingLabel())
}

func rowPriceRe(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?s)<td[^>]*>\s*` + regexp.QuoteMeta(label) + `\s*</td>\s*<td[^>]*>\s*([\d.,]+)\s*</td>`)
}

var cookingRowRe = rowPriceRe("취사전용")

// ParsePricesFromHTML extracts the cooking price and the price for the
// given heating row from a tariff page.
func ParsePricesFromHTML(html, heatingLabel string) (cooking, heating float64, err error) {
	cook := cookingRowRe.FindStringSubmatch(html)
	if len(cook) < 2 {
		return 0, 0, fmt.Errorf("cooking row: %w", providers.ErrParseFailed)
	}
	cooking, err = shared.ParseKoreanNumber(cook[1])
	if err != nil {
		return 0, 0, err
	}

	heat := rowPriceRe(heatingLabel).FindStringSubmatch(html)
	if len(heat) < 2 {
		return 0, 0, fmt.Errorf("heating row %q: %w", heatingLabel, providers.ErrParseFailed)
	}
	heating, err = shared.ParseKoreanNumber(heat[1])
	if err != nil {
		return 0, 0, err
	}
	return cooking, heating, nil
}

func (p *Provider) FetchPrice(ctx context.Context) (*gasproviders.PriceValues, error) {
	page, err := shared.GetText(ctx, shared.DefaultHTTPClient(), pricePageURL, nil)
	if err != nil {
		return nil, err
	}
	codes := monthCodes(page)

	prev, curr := shared.TariffWindows(time.Now().UTC())
	prevKey := prev.Start.Format("2006-01-02")
	currKey := curr.Start.Format("2006-01-02")

	prevCode, ok := codes[prevKey]
	if !ok {
		return nil, fmt.Errorf("no tariff entry for %s: %w", prevKey, providers.ErrParseFailed)
	}
	currCode, ok := codes[currKey]
	if !ok {
		return nil, fmt.Errorf("no tariff entry for %s: %w", currKey, providers.ErrParseFailed)
	}

	prevCook, prevHeat, err := p.fetchPricesForCode(ctx, prevCode)
	if err != nil {
		return nil, fmt.Errorf("previous month prices: %w", err)
	}
	currCook, currHeat, err := p.fetchPricesForCode(ctx, currCode)
	if err != nil {
		return nil, fmt.Errorf("current month prices: %w", err)
	}

	return &gasproviders.PriceValues{
		PrevCooking: prevCook,
		PrevHeating: prevHeat,
		CurrCooking: currCook,
		CurrHeating: currHeat,
	}, nil
}

var (
	baseDescRe = regexp.MustCompile(`(?s)\$\("#baseDesc"\)\.html\((['"])(.*?)(['"])\)`)
	baseFeeRe  = regexp.MustCompile(`([\d,]+)\s*원`)
)

// ParseBaseFeeFromHTML extracts the base fee from the notice text that
// the tariff page injects via javascript.
func ParseBaseFeeFromHTML(html string) (float64, error) {
	script := baseDescRe.FindStringSubmatch(html)
	if len(script) < 3 {
		return 0, fmt.Errorf("base fee notice script: %w", providers.ErrParseFailed)
	}
	fee := baseFeeRe.FindStringSubmatch(script[2])
	if len(fee) < 2 {
		return 0, fmt.Errorf("fee amount in notice %q: %w", script[2], providers.ErrParseFailed)
	}
	return shared.ParseKoreanNumber(fee[1])
}

func (p *Provider) FetchBaseFee(ctx context.Context) (float64, error) {
	page, err := shared.GetText(ctx, shared.DefaultHTTPClient(), pricePageURL, nil)
	if err != nil {
		return 0, err
	}
	return ParseBaseFeeFromHTML(page)
}

// Cooking and heating use separate dedicated tariffs here, so there is
// no combined-tariff boundary to apply.
func (p *Provider) FetchCookingHeatingBoundary(ctx context.Context) (float64, error) {
	return 0, nil
}
