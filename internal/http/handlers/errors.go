package handlers

import (
	"net/http"

	"server/internal/gateway"
)

type failureResponse struct {
	Error      string `json:"error"`
	Provider   string `json:"provider,omitempty"`
	Model      string `json:"model,omitempty"`
	Status     string `json:"status"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// failureStatus mirrors the failure taxonomy onto HTTP statuses and the
// caller-facing status string.
func failureStatus(kind gateway.FailureKind) (int, string) {
	switch kind {
	case gateway.FailureClientError:
		return http.StatusBadRequest, "error"
	case gateway.FailureRateLimited:
		return http.StatusTooManyRequests, "rate_limited"
	case gateway.FailureOutOfService:
		return http.StatusServiceUnavailable, "out_of_service"
	default:
		return http.StatusInternalServerError, "error"
	}
}

// suggestions holds the localized user-facing hint per failure kind.
// Renderers fall back to English for unknown locales.
var suggestions = map[gateway.FailureKind]map[string]string{
	gateway.FailureRateLimited: {
		"en": "This provider is rate limited right now. Try again in a minute or switch to another provider.",
		"es": "Este proveedor alcanzó su límite de uso. Intenta de nuevo en un minuto o cambia de proveedor.",
		"id": "Penyedia ini sedang dibatasi. Coba lagi sebentar atau ganti penyedia lain.",
	},
	gateway.FailureOutOfService: {
		"en": "This provider is not available. Ask the operator to configure its API key or select another provider.",
		"es": "Este proveedor no está disponible. Pide al operador configurar su clave de API o elige otro proveedor.",
		"id": "Penyedia ini tidak tersedia. Minta operator mengatur kunci API-nya atau pilih penyedia lain.",
	},
	gateway.FailureMalformedResponse: {
		"en": "The provider returned an unexpected response. Retrying or switching providers usually helps.",
		"es": "El proveedor devolvió una respuesta inesperada. Reintentar o cambiar de proveedor suele ayudar.",
		"id": "Penyedia mengembalikan respons yang tidak terduga. Mencoba ulang atau mengganti penyedia biasanya membantu.",
	},
	gateway.FailureTransient: {
		"en": "The provider had a temporary problem. Retrying or switching providers usually helps.",
		"es": "El proveedor tuvo un problema temporal. Reintentar o cambiar de proveedor suele ayudar.",
		"id": "Penyedia mengalami gangguan sementara. Mencoba ulang atau mengganti penyedia biasanya membantu.",
	},
}

func suggestionFor(kind gateway.FailureKind, locale string) string {
	byLocale, ok := suggestions[kind]
	if !ok {
		return ""
	}
	if msg, ok := byLocale[locale]; ok {
		return msg
	}
	return byLocale["en"]
}

// failure writes the uniform error payload for a gateway failure.
func (a *App) failure(w http.ResponseWriter, locale string, f *gateway.Failure) {
	code, status := failureStatus(f.Kind)
	a.json(w, code, failureResponse{
		Error:      f.Message,
		Provider:   f.Provider,
		Model:      f.Model,
		Status:     status,
		Details:    f.Details,
		Suggestion: suggestionFor(f.Kind, locale),
	})
}

// badRequest reports a malformed inbound payload before any dispatch.
func (a *App) badRequest(w http.ResponseWriter, message string) {
	a.json(w, http.StatusBadRequest, failureResponse{Error: message, Status: "error"})
}
