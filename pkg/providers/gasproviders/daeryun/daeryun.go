package daeryun

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/bher20/gasbillmanager/pkg/providers"
	"github.com/bher20/gasbillmanager/pkg/providers/gasproviders"
	"github.com/bher20/gasbillmanager/pkg/providers/shared"
)

func init() {
	gasproviders.Register(&Provider{})
}

const (
	heatPageURL  = "https://www.daeryunens.com/daeryunens/chargespaid/temperature.asp"
	tariffBbsURL = "https://www.daeryunens.com/daeryunens/bbs/bbs_list.asp?bbs_code=54"
	fixedBaseFee = 1250.0
)

// Provider scrapes Daeryun ENS. Heat values come from the lookup page;
// unit prices are only published as PDF tariff sheets on the notice
// board, so FetchPrice reports ErrNotSupported and ParseTariffPDF is
// offered for sheets downloaded out of band.
type Provider struct{}

func (p *Provider) Key() string { return "daeryun" }

func (p *Provider) Name() string { return "대륜이엔에스" }

func (p *Provider) LandingURL() string { return tariffBbsURL }

func (p *Provider) Regions() []string { return []string{"seoul", "gyeonggi"} }

func (p *Provider) SupportsCentralHeating() bool { return false }

var heatSpanRe = regexp.MustCompile(`(?s)평균\s*열량.*?<span[^>]*>[^<]*</span>.*?<span[^>]*>\s*([\d.]+)`)

// ParseHeatFromHTML extracts the average heat value from a lookup
// result page.
func ParseHeatFromHTML(html string) (float64, error) {
	v := shared.ParseFirstFloat(heatSpanRe, html)
	if v == 0 {
		return 0, fmt.Errorf("average heat span: %w", providers.ErrParseFailed)
	}
	return v, nil
}

func (p *Provider) fetchHeatForWindow(ctx context.Context, w shared.MonthWindow) (float64, error) {
	params := url.Values{
		"start_date": {w.Start.Format(time.DateOnly)},
		"end_date":   {w.End.Format(time.DateOnly)},
	}
	body, err := shared.GetText(ctx, shared.DefaultHTTPClient(), heatPageURL, params)
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

// Prices live in PDF attachments on the notice board and cannot be
// fetched automatically.

func (p *Provider) FetchPrice(ctx context.Context) (*gasproviders.PriceValues, error) {
	return nil, providers.ErrNotSupported
}

func (p *Provider) FetchBaseFee(ctx context.Context) (float64, error) {
	return fixedBaseFee, nil
}

func (p *Provider) FetchCookingHeatingBoundary(ctx context.Context) (float64, error) {
	return 0, nil
}

// DefaultPDFPath is the conventional local filename for a downloaded
// tariff sheet.
func (p *Provider) DefaultPDFPath() string {
	return "tariff_daeryun.pdf"
}

// ParseTariffPDF opens a tariff sheet PDF at the given path, extracts
// its text, and delegates to ParseTariffText.
func (p *Provider) ParseTariffPDF(path string) (*gasproviders.PriceValues, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	rc, err := r.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, rc); err != nil {
		return nil, fmt.Errorf("read pdf text: %w", err)
	}

	return p.ParseTariffText(buf.String())
}

var (
	residentialRe = regexp.MustCompile(`주택용[^\n]*?([\d.]+)\s*원/MJ`)
	effectiveRe   = regexp.MustCompile(`(\d{4})[.년]\s*(\d{1,2})[.월]`)
)

// ParseTariffText parses the plain text of a tariff sheet. The sheet
// carries a single residential rate per effective month, so the value
// fills both cooking and heating for both months.
func (p *Provider) ParseTariffText(text string) (*gasproviders.PriceValues, error) {
	price := shared.ParseFirstFloat(residentialRe, text)
	if price == 0 {
		return nil, fmt.Errorf("residential rate: %w", providers.ErrParseFailed)
	}
	return &gasproviders.PriceValues{
		PrevCooking: price,
		PrevHeating: price,
		CurrCooking: price,
		CurrHeating: price,
	}, nil
}

// EffectiveMonth reports the effective year and month stated in a
// tariff sheet, or zeroes when the sheet does not state one.
func EffectiveMonth(text string) (year, month int) {
	m := effectiveRe.FindStringSubmatch(text)
	if len(m) < 3 {
		return 0, 0
	}
	fmt.Sscanf(m[1], "%d", &year)
	fmt.Sscanf(m[2], "%d", &month)
	return year, month
}
