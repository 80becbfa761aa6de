package incheon

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/bher20/gasbillmanager/pkg/providers"
	"github.com/bher20/gasbillmanager/pkg/providers/gasproviders"
	"github.com/bher20/gasbillmanager/pkg/providers/shared"
)

func init() {
	gasproviders.Register(&Provider{})
}

const (
	landingURL = "https://www.icgas.co.kr/customer/fee/fee_info.jsp"
	heatDWRURL = "https://www.icgas.co.kr/dwr/call/plaincall/feeAjax.getHeatAmt.dwr"
	feeDWRURL  = "https://www.icgas.co.kr/dwr/call/plaincall/feeAjax.getFeeInfo.dwr"
)

// Provider scrapes Incheon City Gas. Both heat values and prices are
// served by DWR remoting endpoints that return javascript fragments;
// the interesting numbers are extracted from the callback arguments.
type Provider struct{}

func (p *Provider) Key() string { return "incheon" }

func (p *Provider) Name() string { return "인천도시가스" }

func (p *Provider) LandingURL() string { return landingURL }

func (p *Provider) Regions() []string { return nil }

func (p *Provider) SupportsCentralHeating() bool { return false }

func dwrPayload(script, method string, params ...string) string {
	var b strings.Builder
	b.WriteString("callCount=1\n")
	b.WriteString("page=/customer/fee/fee_info.jsp\n")
	b.WriteString("httpSessionId=\nscriptSessionId=\n")
	fmt.Fprintf(&b, "c0-scriptName=%s\n", script)
	fmt.Fprintf(&b, "c0-methodName=%s\n", method)
	b.WriteString("c0-id=0\n")
	for i, v := range params {
		fmt.Fprintf(&b, "c0-param%d=string:%s\n", i, v)
	}
	b.WriteString("batchId=0\n")
	return b.String()
}

func (p *Provider) callDWR(ctx context.Context, endpoint string, params ...string) (string, error) {
	payload := dwrPayload("feeAjax", dwrMethod(endpoint), params...)
	return shared.PostText(ctx, shared.DefaultHTTPClient(), endpoint, "text/plain", payload)
}

func dwrMethod(endpoint string) string {
	if strings.Contains(endpoint, "getHeatAmt") {
		return "getHeatAmt"
	}
	return "getFeeInfo"
}

var (
	heatStringRe = regexp.MustCompile(`var s0="(.+?)";`)
	heatValueRe  = regexp.MustCompile(`(\d+\.\d+)\s*MJ/Nm`)
	priceRe      = regexp.MustCompile(`var s6="(\d+\.\d+)";`)
)

// ParseHeatFromDWR extracts the monthly heat value from a getHeatAmt
// response fragment.
func ParseHeatFromDWR(body string) (float64, error) {
	m := heatStringRe.FindStringSubmatch(body)
	if len(m) < 2 {
		return 0, fmt.Errorf("heat callback string: %w", providers.ErrParseFailed)
	}
	v := shared.ParseFirstFloat(heatValueRe, m[1])
	if v == 0 {
		return 0, fmt.Errorf("heat value in %q: %w", m[1], providers.ErrParseFailed)
	}
	return v, nil
}

// ParsePriceFromDWR extracts the residential unit price from a
// getFeeInfo response fragment.
func ParsePriceFromDWR(body string) (float64, error) {
	m := priceRe.FindStringSubmatch(body)
	if len(m) < 2 {
		return 0, fmt.Errorf("price callback string: %w", providers.ErrParseFailed)
	}
	return shared.ParseKoreanNumber(m[1])
}

func (p *Provider) fetchHeatForMonth(ctx context.Context, month time.Time) (float64, error) {
	body, err := p.callDWR(ctx, heatDWRURL, month.Format("200601"))
	if err != nil {
		return 0, err
	}
	return ParseHeatFromDWR(body)
}

func (p *Provider) FetchHeat(ctx context.Context) (*gasproviders.HeatValues, error) {
	prev, curr := shared.TariffWindows(time.Now().UTC())

	prevHeat, err := p.fetchHeatForMonth(ctx, prev.Start)
	if err != nil {
		return nil, fmt.Errorf("previous month heat: %w", err)
	}
	currHeat, err := p.fetchHeatForMonth(ctx, curr.Start)
	if err != nil {
		// Published with a lag at the start of the month.
		currHeat = prevHeat
	}
	return &gasproviders.HeatValues{PrevMonth: prevHeat, CurrMonth: currHeat}, nil
}

func (p *Provider) fetchPriceForMonth(ctx context.Context, month time.Time) (float64, error) {
	body, err := p.callDWR(ctx, feeDWRURL, month.Format("200601"))
	if err != nil {
		return 0, err
	}
	return ParsePriceFromDWR(body)
}

func (p *Provider) FetchPrice(ctx context.Context) (*gasproviders.PriceValues, error) {
	prev, curr := shared.TariffWindows(time.Now().UTC())

	prevPrice, err := p.fetchPriceForMonth(ctx, prev.Start)
	if err != nil {
		return nil, fmt.Errorf("previous month price: %w", err)
	}
	currPrice, err := p.fetchPriceForMonth(ctx, curr.Start)
	if err != nil {
		currPrice = prevPrice
	}

	// Incheon publishes a single residential rate; cooking and heating
	// share it, which collapses the boundary split downstream.
	return &gasproviders.PriceValues{
		PrevCooking: prevPrice,
		PrevHeating: prevPrice,
		CurrCooking: currPrice,
		CurrHeating: currPrice,
	}, nil
}

func (p *Provider) FetchBaseFee(ctx context.Context) (float64, error) {
	return 0, providers.ErrNotSupported
}

func (p *Provider) FetchCookingHeatingBoundary(ctx context.Context) (float64, error) {
	return 0, providers.ErrNotSupported
}
