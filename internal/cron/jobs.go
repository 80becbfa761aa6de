package cron

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/bher20/gasbillmanager/internal/alerting"
	"github.com/bher20/gasbillmanager/internal/estimator"
	"github.com/bher20/gasbillmanager/internal/metrics"
	"github.com/bher20/gasbillmanager/pkg/providers"
	"github.com/bher20/gasbillmanager/pkg/providers/gasproviders"
)

// runRefresh re-fetches tariffs for every provider that supports live
// fetching and alerts on failures.
func (w *worker) runRefresh(ctx context.Context) error {
	started := time.Now()

	var (
		total    int
		failures []alerting.ProviderFailure
		firstErr error
	)
	for _, key := range gasproviders.List() {
		err := w.tariffs.Refresh(ctx, key)
		if errors.Is(err, providers.ErrNotSupported) {
			// Manual providers have nothing to fetch.
			continue
		}
		total++
		if err != nil {
			log.Printf("cron: refresh provider %s failed: %v", key, err)
			failures = append(failures, alerting.ProviderFailure{
				Provider: key,
				Error:    err.Error(),
				Attempts: 1,
			})
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if len(failures) > 0 {
		alert := alerting.RefreshAlert{
			JobName:       "refresh_tariffs",
			TotalCount:    total,
			SuccessCount:  total - len(failures),
			FailedCount:   len(failures),
			Duration:      time.Since(started),
			FailedDetails: failures,
			Timestamp:     time.Now(),
		}
		if err := w.alerter.SendRefreshAlert(ctx, alert); err != nil {
			log.Printf("cron: send refresh alert failed: %v", err)
		}
	}

	return firstErr
}

// runResetCheck walks all installations and closes the billing period
// for any whose reading day arrived. The closing bill is mailed to the
// admin address when one is configured.
func (w *worker) runResetCheck(ctx context.Context) error {
	installations, err := w.st.ListInstallations(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	var firstErr error
	for _, inst := range installations {
		reading, ok, err := w.est.LastReading(ctx, inst.ID)
		if err != nil {
			log.Printf("cron: last reading for %s: %v", inst.ID, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if !ok {
			// No meter reading submitted yet, nothing to close.
			continue
		}

		closing, err := w.est.MaybeReset(ctx, inst.ID, reading, now)
		if err != nil {
			if errors.Is(err, estimator.ErrNotReady) {
				continue
			}
			log.Printf("cron: reset check for %s: %v", inst.ID, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if closing == nil {
			continue
		}

		metrics.PeriodResetsTotal.WithLabelValues(inst.ID).Inc()
		log.Printf("cron: closed billing period for %s: %.2f m³, %d KRW",
			inst.ID, closing.UsageM3, closing.PeriodFee)

		if w.cfg.AdminEmail != "" {
			if err := w.notify.SendBillSummary(ctx, w.cfg.AdminEmail, inst, closing); err != nil {
				log.Printf("cron: bill summary email for %s: %v", inst.ID, err)
			}
		}
	}
	return firstErr
}
