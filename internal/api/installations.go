package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/bher20/gasbillmanager/internal/auth"
	"github.com/bher20/gasbillmanager/internal/billing"
	"github.com/bher20/gasbillmanager/internal/estimator"
	"github.com/bher20/gasbillmanager/internal/metrics"
	"github.com/bher20/gasbillmanager/internal/storage"
	"github.com/bher20/gasbillmanager/internal/tariff"
	"github.com/bher20/gasbillmanager/pkg/providers/gasproviders"
	"github.com/google/uuid"
)

type installationHandler struct {
	st      storage.Storage
	tariffs *tariff.Service
	est     *estimator.Service
	authSvc *auth.Service
}

// RegisterInstallationHandlers wires the installation CRUD and
// estimation endpoints under /api/v1/installations.
func RegisterInstallationHandlers(mux *http.ServeMux, st storage.Storage, tariffs *tariff.Service, est *estimator.Service, authSvc *auth.Service) {
	h := &installationHandler{st: st, tariffs: tariffs, est: est, authSvc: authSvc}

	withAuth := func(handler http.HandlerFunc) http.Handler {
		if authSvc == nil {
			return handler
		}
		return authSvc.Middleware(handler)
	}

	mux.Handle("/api/v1/installations", withAuth(h.handleCollection))
	mux.Handle("/api/v1/installations/", withAuth(h.handleItem))
}

func (h *installationHandler) handleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if !enforce(w, r, h.authSvc, "installations", "read") {
			return
		}
		list, err := h.st.ListInstallations(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(list)

	case http.MethodPost:
		if !enforce(w, r, h.authSvc, "installations", "write") {
			return
		}
		var inst storage.Installation
		if err := json.NewDecoder(r.Body).Decode(&inst); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if inst.ID == "" {
			inst.ID = uuid.New().String()
		}
		if err := validateInstallation(&inst); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		now := time.Now().UTC()
		inst.CreatedAt = now
		inst.UpdatedAt = now
		if err := h.st.UpsertInstallation(r.Context(), inst); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(inst)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *installationHandler) handleItem(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/installations/")
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 1 || parts[0] == "" {
		http.NotFound(w, r)
		return
	}
	id := parts[0]

	if len(parts) == 1 {
		h.handleOne(w, r, id)
		return
	}
	if len(parts) != 2 {
		http.NotFound(w, r)
		return
	}

	switch parts[1] {
	case "estimate":
		h.handleEstimate(w, r, id)
	case "state":
		h.handleState(w, r, id)
	case "periods":
		h.handlePeriods(w, r, id)
	case "overrides":
		h.handleOverrides(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

func (h *installationHandler) handleOne(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		if !enforce(w, r, h.authSvc, "installations", "read") {
			return
		}
		inst, err := h.st.GetInstallation(r.Context(), id)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if inst == nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(inst)

	case http.MethodPut:
		if !enforce(w, r, h.authSvc, "installations", "write") {
			return
		}
		existing, err := h.st.GetInstallation(r.Context(), id)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if existing == nil {
			http.NotFound(w, r)
			return
		}
		var inst storage.Installation
		if err := json.NewDecoder(r.Body).Decode(&inst); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		inst.ID = id
		if err := validateInstallation(&inst); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		inst.CreatedAt = existing.CreatedAt
		inst.UpdatedAt = time.Now().UTC()
		if err := h.st.UpsertInstallation(r.Context(), inst); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(inst)

	case http.MethodDelete:
		if !enforce(w, r, h.authSvc, "installations", "write") {
			return
		}
		if err := h.st.DeleteInstallation(r.Context(), id); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// EstimateRequest carries a meter reading for estimation. Date is
// optional and defaults to today; it mainly serves tests and backfills.
type EstimateRequest struct {
	MeterM3 float64 `json:"meter_m3"`
	Date    string  `json:"date,omitempty"`
}

// EstimateResponse is the running estimate plus the closing bill when
// this reading happened to land on the reading day.
type EstimateResponse struct {
	Estimate *estimator.Estimate `json:"estimate"`
	Closed   *estimator.Estimate `json:"closed,omitempty"`
}

func (h *installationHandler) handleEstimate(w http.ResponseWriter, r *http.Request, id string) {
	start := time.Now()
	labelsPath := "/installations/estimate"
	defer func() {
		metrics.RequestDurationSeconds.WithLabelValues(id, labelsPath).Observe(time.Since(start).Seconds())
	}()

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !enforce(w, r, h.authSvc, "installations", "read") {
		return
	}

	var req EstimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	today := time.Now()
	if req.Date != "" {
		t, err := time.Parse(time.DateOnly, req.Date)
		if err != nil {
			http.Error(w, "invalid date, want YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		today = t
	}

	// A reading submitted on the reading day closes the period first,
	// then the estimate continues into the fresh one.
	closed, err := h.est.MaybeReset(r.Context(), id, req.MeterM3, today)
	if err != nil && !errors.Is(err, estimator.ErrNotReady) {
		log.Printf("reset for %s failed: %v", id, err)
		metrics.RequestErrorsTotal.WithLabelValues(id, labelsPath, "500").Inc()
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if closed != nil {
		metrics.PeriodResetsTotal.WithLabelValues(id).Inc()
	}

	est, err := h.est.Estimate(r.Context(), id, req.MeterM3, today)
	if err != nil {
		if errors.Is(err, estimator.ErrNotReady) {
			http.Error(w, "no period start recorded, POST a meter value to /state first", http.StatusConflict)
			return
		}
		log.Printf("estimate for %s failed: %v", id, err)
		metrics.RequestErrorsTotal.WithLabelValues(id, labelsPath, "500").Inc()
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	metrics.EstimatesTotal.WithLabelValues(id).Inc()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(EstimateResponse{Estimate: est, Closed: closed})
}

func (h *installationHandler) handleState(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !enforce(w, r, h.authSvc, "installations", "write") {
		return
	}
	var req EstimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.est.InitializeState(r.Context(), id, req.MeterM3); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *installationHandler) handlePeriods(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !enforce(w, r, h.authSvc, "installations", "read") {
		return
	}
	prev, err := h.st.GetPeriodRecord(r.Context(), id, storage.SlotPrev)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	preprev, err := h.st.GetPeriodRecord(r.Context(), id, storage.SlotPrePrev)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	resp := struct {
		Prev    *storage.PeriodRecord `json:"prev,omitempty"`
		PrePrev *storage.PeriodRecord `json:"preprev,omitempty"`
	}{Prev: prev, PrePrev: preprev}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *installationHandler) handleOverrides(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		if !enforce(w, r, h.authSvc, "tariffs", "read") {
			return
		}
		doc, err := h.tariffs.Overrides(r.Context(), id)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(doc)

	case http.MethodPut:
		if !enforce(w, r, h.authSvc, "tariffs", "write") {
			return
		}
		var doc map[string]float64
		if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if err := h.tariffs.SetOverrides(r.Context(), id, doc); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func validateInstallation(inst *storage.Installation) error {
	if inst.Name == "" {
		return errors.New("name is required")
	}
	if _, ok := gasproviders.Get(inst.ProviderKey); !ok {
		return fmt.Errorf("unknown provider %q", inst.ProviderKey)
	}
	if inst.ReadingDay < 0 || inst.ReadingDay > 28 {
		return fmt.Errorf("reading day %d out of range 0..28", inst.ReadingDay)
	}
	if inst.ReadingCycle == "" {
		inst.ReadingCycle = string(billing.CycleDisabled)
	}
	if !billing.ReadingCycle(inst.ReadingCycle).Valid() {
		return fmt.Errorf("unknown reading cycle %q", inst.ReadingCycle)
	}
	if inst.UsageType == "" {
		inst.UsageType = string(billing.UsageCombined)
	}
	if !billing.UsageType(inst.UsageType).Valid() {
		return fmt.Errorf("unknown usage type %q", inst.UsageType)
	}
	if inst.CorrectionFactor < 0 {
		return errors.New("correction factor must not be negative")
	}
	return nil
}
