package cron

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/bher20/gasbillmanager/internal/alerting"
	"github.com/bher20/gasbillmanager/internal/config"
	"github.com/bher20/gasbillmanager/internal/estimator"
	"github.com/bher20/gasbillmanager/internal/metrics"
	"github.com/bher20/gasbillmanager/internal/notification"
	"github.com/bher20/gasbillmanager/internal/storage"
	"github.com/bher20/gasbillmanager/internal/tariff"
	"github.com/robfig/cron/v3"
)

// Advisory lock keys. One per job so replicas can interleave jobs.
const (
	refreshLockKey int64 = 42
	resetLockKey   int64 = 1013
)

// locker is the advisory lock surface the worker needs. Postgres
// deployments use a dedicated LockPool; sqlite and memory fall back to
// the storage's no-op locks since they are single-instance anyway.
type locker interface {
	TryLock(ctx context.Context, key int64) (bool, error)
	Unlock(ctx context.Context, key int64) (bool, error)
}

type storageLocker struct {
	st storage.Storage
}

func (l storageLocker) TryLock(ctx context.Context, key int64) (bool, error) {
	return l.st.AcquireAdvisoryLock(ctx, key)
}

func (l storageLocker) Unlock(ctx context.Context, key int64) (bool, error) {
	return l.st.ReleaseAdvisoryLock(ctx, key)
}

type worker struct {
	cfg     config.Config
	st      storage.Storage
	tariffs *tariff.Service
	est     *estimator.Service
	notify  *notification.Service
	alerter *alerting.Alerter
	locks   locker
	pool    *storage.LockPool // nil unless postgres
}

// Run starts the scheduled worker. It periodically refreshes provider
// tariffs and, once a minute, closes billing periods for installations
// whose reading day arrived. Postgres advisory locks ensure each job
// runs on exactly one instance in a multi-replica deployment.
func Run(ctx context.Context, cfg config.Config) error {
	st, err := storage.Open(ctx, storage.Config{Driver: cfg.DBDriver, DSN: cfg.DSN})
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer st.Close()

	w := &worker{
		cfg: cfg,
		st:  st,
		tariffs: tariff.NewServiceWithStorage(tariff.Config{
			DaeryunPDFPath: cfg.DaeryunPDFPath,
			MaxSnapshotAge: cfg.MaxSnapshotAge,
		}, st),
		notify:  notification.NewService(st),
		alerter: alerting.NewAlerter(alerting.DefaultAlertConfig()),
		locks:   storageLocker{st: st},
	}
	w.est = estimator.NewService(st, w.tariffs)

	if cfg.DBDriver == "postgres" || cfg.DBDriver == "postgrespool" {
		pool, err := storage.OpenLockPool(ctx, cfg.DSN)
		if err != nil {
			return fmt.Errorf("open lock pool: %w", err)
		}
		defer pool.Close()
		w.pool = pool
		w.locks = pool
	}

	return w.loop(ctx)
}

func (w *worker) loop(ctx context.Context) error {
	schedule := w.cfg.RefreshSchedule
	if val, err := w.st.GetSetting(ctx, "refresh_schedule"); err == nil && val != "" {
		schedule = val
	}

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	// Refresh immediately on a fresh start so new deployments have
	// tariffs before the first scheduled slot.
	nextRefresh := time.Now()
	nextResetCheck := time.Now()

	log.Printf("cron: worker starting, refresh schedule=%q driver=%s", schedule, w.cfg.DBDriver)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if val, err := w.st.GetSetting(ctx, "refresh_schedule"); err == nil && val != "" && val != schedule {
				log.Printf("cron: refresh schedule updated from %q to %q", schedule, val)
				schedule = val
				nextRefresh = nextRun(schedule, time.Now())
			}

			if w.pool != nil {
				stat := w.pool.Stat()
				metrics.UpdateDBPoolMetrics("postgres",
					float64(stat.TotalConns()),
					float64(stat.IdleConns()),
					float64(stat.AcquiredConns()),
					uint64(stat.AcquireCount()))
			}

			if !time.Now().Before(nextRefresh) {
				w.runLocked(ctx, "refresh_tariffs", refreshLockKey, w.runRefresh)
				nextRefresh = nextRun(schedule, time.Now())
			}

			if !time.Now().Before(nextResetCheck) {
				w.runLocked(ctx, "close_periods", resetLockKey, w.runResetCheck)
				nextResetCheck = time.Now().Add(time.Minute)
			}
		}
	}
}

// nextRun interprets the schedule as plain seconds or a standard cron
// expression, falling back to daily when neither parses.
func nextRun(schedule string, from time.Time) time.Time {
	if v, err := strconv.Atoi(schedule); err == nil && v > 0 {
		return from.Add(time.Duration(v) * time.Second)
	}
	if sched, err := cron.ParseStandard(schedule); err == nil {
		return sched.Next(from)
	}
	return from.Add(24 * time.Hour)
}

// runLocked executes a job under its advisory lock and records metrics
// and the scheduled_jobs row.
func (w *worker) runLocked(ctx context.Context, jobName string, lockKey int64, job func(ctx context.Context) error) {
	started := time.Now()

	ok, err := w.locks.TryLock(ctx, lockKey)
	if err != nil {
		log.Printf("cron: acquire advisory lock for %s failed: %v", jobName, err)
		metrics.UpdateJobMetrics(jobName, started, err)
		return
	}
	if !ok {
		log.Printf("cron: %s lock held by another worker, skipping run", jobName)
		return
	}

	var runErr error
	func() {
		defer func() {
			if _, err := w.locks.Unlock(ctx, lockKey); err != nil {
				log.Printf("cron: release advisory lock for %s failed: %v", jobName, err)
			}
		}()
		runErr = job(ctx)
	}()

	metrics.UpdateJobMetrics(jobName, started, runErr)
	dur := time.Since(started)
	errMsg := ""
	if runErr != nil {
		errMsg = runErr.Error()
	}
	if err := w.st.UpdateScheduledJob(ctx, jobName, started, dur, runErr == nil, errMsg); err != nil {
		log.Printf("cron: update scheduled_jobs failed: %v", err)
	}

	if runErr != nil {
		log.Printf("cron: job %s completed with error: %v (duration=%s)", jobName, runErr, dur)
	} else {
		log.Printf("cron: job %s completed successfully (duration=%s)", jobName, dur)
	}
}
