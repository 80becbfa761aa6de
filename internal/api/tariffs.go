package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/bher20/gasbillmanager/internal/auth"
	"github.com/bher20/gasbillmanager/internal/metrics"
	"github.com/bher20/gasbillmanager/internal/tariff"
	"github.com/bher20/gasbillmanager/pkg/providers"
	"github.com/bher20/gasbillmanager/pkg/providers/gasproviders"
	"github.com/bher20/gasbillmanager/pkg/providers/shared"
)

// RegisterTariffHandlers serves /tariffs/{provider} and
// /tariffs/{provider}/refresh using the tariff service.
func RegisterTariffHandlers(mux *http.ServeMux, svc *tariff.Service, authSvc *auth.Service) {
	var h http.Handler = handleTariffs(svc, authSvc)
	if authSvc != nil {
		h = authSvc.Middleware(h)
	}
	mux.Handle("/tariffs/", h)
}

func handleTariffs(svc *tariff.Service, authSvc *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Expected paths: /tariffs/{provider} or /tariffs/{provider}/refresh
		path := strings.TrimPrefix(r.URL.Path, "/tariffs/")
		parts := strings.Split(strings.Trim(path, "/"), "/")
		if len(parts) < 1 || parts[0] == "" {
			metrics.RequestErrorsTotal.WithLabelValues("unknown", r.URL.Path, "404").Inc()
			http.NotFound(w, r)
			return
		}

		providerKey := strings.ToLower(parts[0])
		if _, ok := gasproviders.Get(providerKey); !ok {
			metrics.RequestErrorsTotal.WithLabelValues(providerKey, r.URL.Path, "404").Inc()
			http.NotFound(w, r)
			return
		}

		if len(parts) == 2 && parts[1] == "pdf" {
			handleTariffPDF(w, r, svc, authSvc, providerKey)
			return
		}

		if len(parts) == 2 && parts[1] == "refresh" {
			labelsPath := "/tariffs/refresh"
			defer func() {
				metrics.RequestDurationSeconds.WithLabelValues(providerKey, labelsPath).Observe(time.Since(start).Seconds())
			}()
			metrics.RequestsTotal.WithLabelValues(providerKey).Inc()

			if r.Method != http.MethodPost {
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			if !enforce(w, r, authSvc, "tariffs", "write") {
				return
			}

			if err := svc.Refresh(r.Context(), providerKey); err != nil {
				log.Printf("refresh tariff for %s failed: %v", providerKey, err)
				metrics.RequestErrorsTotal.WithLabelValues(providerKey, labelsPath, "502").Inc()
				http.Error(w, err.Error(), http.StatusBadGateway)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"provider": providerKey, "status": "refreshed"})
			return
		}

		if len(parts) != 1 {
			metrics.RequestErrorsTotal.WithLabelValues(providerKey, r.URL.Path, "404").Inc()
			http.NotFound(w, r)
			return
		}

		labelsPath := "/tariffs"
		defer func() {
			metrics.RequestDurationSeconds.WithLabelValues(providerKey, labelsPath).Observe(time.Since(start).Seconds())
		}()
		metrics.RequestsTotal.WithLabelValues(providerKey).Inc()

		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if !enforce(w, r, authSvc, "tariffs", "read") {
			return
		}

		snap, err := svc.ProviderTariff(r.Context(), providerKey)
		if err != nil {
			if errors.Is(err, providers.ErrNotSupported) {
				metrics.RequestErrorsTotal.WithLabelValues(providerKey, labelsPath, "404").Inc()
				http.Error(w, "provider has no published tariff", http.StatusNotFound)
				return
			}
			log.Printf("get tariff for %s failed: %v", providerKey, err)
			metrics.RequestErrorsTotal.WithLabelValues(providerKey, labelsPath, "500").Inc()
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(snap); err != nil {
			log.Printf("encode response failed: %v", err)
		}
	}
}

// handleTariffPDF serves and accepts the tariff sheet for providers
// whose prices are parsed from an uploaded PDF.
func handleTariffPDF(w http.ResponseWriter, r *http.Request, svc *tariff.Service, authSvc *auth.Service, providerKey string) {
	path := svc.PDFPath(providerKey)
	if path == "" {
		http.Error(w, "provider has no tariff PDF", http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		if !enforce(w, r, authSvc, "tariffs", "read") {
			return
		}
		if _, err := os.Stat(path); err != nil {
			http.Error(w, "no tariff PDF uploaded yet", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s_tariff.pdf", providerKey))
		http.ServeFile(w, r, path)

	case http.MethodPut:
		if !enforce(w, r, authSvc, "tariffs", "write") {
			return
		}
		if err := shared.WriteFileAtomically(path, r.Body); err != nil {
			log.Printf("store tariff pdf for %s failed: %v", providerKey, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		// Re-resolve the tariff so the new sheet takes effect now
		// rather than on the next scheduled refresh.
		if err := svc.Refresh(r.Context(), providerKey); err != nil {
			log.Printf("refresh after pdf upload for %s failed: %v", providerKey, err)
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// enforce checks the caller's permission when auth is enabled. It
// writes the error response and returns false on denial.
func enforce(w http.ResponseWriter, r *http.Request, authSvc *auth.Service, obj, act string) bool {
	if authSvc == nil {
		return true
	}
	allowed, err := authSvc.Enforce(getUserID(r), obj, act)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return false
	}
	if !allowed {
		http.Error(w, "forbidden", http.StatusForbidden)
		return false
	}
	return true
}
