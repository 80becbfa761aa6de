package api

import (
	"encoding/json"
	"net/http"

	"github.com/bher20/gasbillmanager/pkg/providers/gasproviders"
)

// ProviderDTO represents a provider in the API.
type ProviderDTO struct {
	Key                    string   `json:"key"`
	Name                   string   `json:"name"`
	LandingURL             string   `json:"landing_url"`
	Regions                []string `json:"regions,omitempty"`
	SupportsCentralHeating bool     `json:"supports_central_heating"`
}

func RegisterProvidersHandler(mux *http.ServeMux) {
	mux.HandleFunc("/providers", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var list []ProviderDTO
		for _, p := range gasproviders.GetAll() {
			list = append(list, ProviderDTO{
				Key:                    p.Key(),
				Name:                   p.Name(),
				LandingURL:             p.LandingURL(),
				Regions:                p.Regions(),
				SupportsCentralHeating: p.SupportsCentralHeating(),
			})
		}

		response := struct {
			Providers []ProviderDTO `json:"providers"`
		}{
			Providers: list,
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	})
}
