package api

import (
	"context"
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bher20/gasbillmanager/internal/api/swagger"
	"github.com/bher20/gasbillmanager/internal/auth"
	"github.com/bher20/gasbillmanager/internal/config"
	"github.com/bher20/gasbillmanager/internal/estimator"
	migrate "github.com/bher20/gasbillmanager/internal/migrate"
	"github.com/bher20/gasbillmanager/internal/notification"
	"github.com/bher20/gasbillmanager/internal/storage"
	"github.com/bher20/gasbillmanager/internal/tariff"
	"github.com/bher20/gasbillmanager/internal/ui"
)

// NewMux constructs the HTTP mux, wiring in storage, the tariff and
// estimator services, metrics, and health endpoints.
func NewMux(ctx context.Context, cfg config.Config) (*http.ServeMux, error) {
	// Optional auto-migration: run `goose up` on startup when enabled.
	if cfg.AutoMigrate {
		if err := migrate.Up(ctx, cfg.DBDriver, cfg.DSN); err != nil {
			log.Printf("auto-migration failed: %v", err)
		}
	}

	st, err := storage.Open(ctx, storage.Config{Driver: cfg.DBDriver, DSN: cfg.DSN})
	if err != nil {
		return nil, err
	}

	tariffSvc := tariff.NewServiceWithStorage(tariff.Config{
		DaeryunPDFPath: cfg.DaeryunPDFPath,
		MaxSnapshotAge: cfg.MaxSnapshotAge,
	}, st)
	estSvc := estimator.NewService(st, tariffSvc)
	notifSvc := notification.NewService(st)

	var authSvc *auth.Service
	if cfg.AuthEnabled {
		authSvc, err = auth.NewService(st)
		if err != nil {
			return nil, err
		}
	}

	mux := http.NewServeMux()

	// Metrics endpoint.
	mux.Handle("/metrics", promhttp.Handler())

	// Health / readiness / liveness.
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := st.Ping(r.Context()); err != nil {
			log.Printf("readyz: db ping failed: %v", err)
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	mux.HandleFunc("/livez", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("live"))
	})

	// Provider and tariff API.
	RegisterProvidersHandler(mux)
	RegisterTariffHandlers(mux, tariffSvc, authSvc)

	// Installations, estimates and period records.
	RegisterInstallationHandlers(mux, st, tariffSvc, estSvc, authSvc)

	if authSvc != nil {
		registerAuthRoutes(mux, authSvc)
		registerNotificationRoutes(mux, authSvc, notifSvc)
	}

	// API documentation.
	mux.Handle("/swagger/", http.StripPrefix("/swagger", swagger.Handler()))

	// Web UI
	mux.Handle("/ui/", http.StripPrefix("/ui/", ui.Handler()))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, "/ui/", http.StatusFound)
	})

	return mux, nil
}
