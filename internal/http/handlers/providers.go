package handlers

import (
	"net/http"
)

type providerInfo struct {
	ID             string   `json:"id"`
	DisplayName    string   `json:"displayName"`
	Models         []string `json:"models"`
	AnalysisModels []string `json:"analysisModels,omitempty"`
	EditTier       string   `json:"editTier"`
	CanAnalyze     bool     `json:"canAnalyze"`
	Configured     bool     `json:"configured"`
	FreeTier       string   `json:"freeTier,omitempty"`
	RateLimit      string   `json:"rateLimit,omitempty"`
}

// Providers lists the registry with a configured flag per provider so the UI
// can grey out providers without credentials.
func (a *App) Providers(w http.ResponseWriter, r *http.Request) {
	descriptors := a.Gateway.Registry().List()
	items := make([]providerInfo, 0, len(descriptors))
	for _, d := range descriptors {
		items = append(items, providerInfo{
			ID:             d.ID,
			DisplayName:    d.DisplayName,
			Models:         d.Models,
			AnalysisModels: d.AnalysisModels,
			EditTier:       string(d.EditTier),
			CanAnalyze:     d.CanAnalyze,
			Configured:     a.Gateway.CredentialConfigured(r.Context(), d),
			FreeTier:       d.FreeTierNote,
			RateLimit:      d.RateLimitNote,
		})
	}
	a.json(w, http.StatusOK, map[string]any{
		"items":   items,
		"default": a.Config.DefaultProvider,
	})
}
