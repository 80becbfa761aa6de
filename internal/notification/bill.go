package notification

import (
	"context"
	"fmt"
	"strings"

	"github.com/bher20/gasbillmanager/internal/estimator"
	"github.com/bher20/gasbillmanager/internal/storage"
)

// SendBillSummary mails the closing bill for an installation. It is
// called by the worker when a billing period closes on the reading day.
func (s *Service) SendBillSummary(ctx context.Context, to string, inst storage.Installation, est *estimator.Estimate) error {
	subject := fmt.Sprintf("Gas bill closed for %s (%s ~ %s)",
		inst.Name,
		est.PeriodStart.Format("2006-01-02"),
		est.PeriodEnd.Format("2006-01-02"))
	return s.SendEmail(ctx, to, subject, FormatBillSummaryHTML(inst, est))
}

// FormatBillSummaryHTML renders the closing bill as a small HTML table.
func FormatBillSummaryHTML(inst storage.Installation, est *estimator.Estimate) string {
	var b strings.Builder
	b.WriteString("<h2>Gas bill summary</h2>")
	fmt.Fprintf(&b, "<p>Installation: <b>%s</b> (provider %s)</p>", inst.Name, inst.ProviderKey)
	b.WriteString("<table border=\"1\" cellpadding=\"4\" cellspacing=\"0\">")
	row := func(k, v string) {
		fmt.Fprintf(&b, "<tr><td>%s</td><td align=\"right\">%s</td></tr>", k, v)
	}
	row("Period", fmt.Sprintf("%s ~ %s (%d days)",
		est.PeriodStart.Format("2006-01-02"),
		est.PeriodEnd.Format("2006-01-02"),
		est.ElapsedDays))
	row("Usage", fmt.Sprintf("%.2f m³", est.UsageM3))
	if est.CorrectedUsageM3 != est.UsageM3 {
		row("Corrected usage", fmt.Sprintf("%.2f m³", est.CorrectedUsageM3))
	}
	row("Amount due", fmt.Sprintf("%s KRW", formatKRW(est.PeriodFee)))
	if est.TotalFee != est.PeriodFee {
		row("With carried periods", fmt.Sprintf("%s KRW", formatKRW(est.TotalFee)))
	}
	b.WriteString("</table>")
	return b.String()
}

// formatKRW inserts thousands separators the way Korean bills print them.
func formatKRW(v int64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := fmt.Sprintf("%d", v)
	var out strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out.WriteByte(',')
		}
		out.WriteRune(c)
	}
	if neg {
		return "-" + out.String()
	}
	return out.String()
}
