package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"server/internal/domain"
	"server/internal/gateway"
	"server/internal/middleware"
)

type analyzeRequest struct {
	ImageBase64      string `json:"imageBase64"`
	SelectedProvider string `json:"selectedProvider,omitempty"`
	SelectedModel    string `json:"selectedModel,omitempty"`
}

type analyzeResponse struct {
	Detections []gateway.DetectedObject `json:"detections"`
	Provider   string                   `json:"provider"`
	Model      string                   `json:"model"`
	Status     string                   `json:"status"`
	Fallback   bool                     `json:"fallback,omitempty"`
}

// ImagesAnalyze dispatches an analysis request. Vision models occasionally
// answer with prose instead of the requested JSON; one re-dispatch is allowed
// for that case, and a second malformed reply degrades to the hardcoded
// minimal detection set so the user-facing flow keeps moving. Every other
// failure kind surfaces as a hard failure immediately.
func (a *App) ImagesAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.badRequest(w, "invalid payload")
		return
	}
	image, err := gateway.ParseSourceImage(req.ImageBase64)
	if err != nil || image == nil {
		a.badRequest(w, "imageBase64 is required")
		return
	}

	dispatch := gateway.AnalysisRequest{
		Image:    image,
		Provider: req.SelectedProvider,
		Model:    req.SelectedModel,
	}

	start := time.Now()
	res := a.Gateway.DispatchAnalysis(r.Context(), dispatch)
	a.recordDispatch(domain.DispatchOpAnalyze, res, time.Since(start))

	if !res.Ok() && res.Failure.Kind == gateway.FailureMalformedResponse {
		start = time.Now()
		res = a.Gateway.DispatchAnalysis(r.Context(), dispatch)
		a.recordDispatch(domain.DispatchOpAnalyze, res, time.Since(start))
		if !res.Ok() && res.Failure.Kind == gateway.FailureMalformedResponse {
			a.Logger.Warn().
				Str("provider", res.Provider).
				Str("model", res.Model).
				Msg("handlers: analysis unparseable twice, serving fallback detections")
			a.json(w, http.StatusOK, analyzeResponse{
				Detections: gateway.FallbackDetections(),
				Provider:   res.Provider,
				Model:      res.Model,
				Status:     "success",
				Fallback:   true,
			})
			return
		}
	}

	if !res.Ok() {
		a.failure(w, middleware.LocaleFromContext(r.Context()), res.Failure)
		return
	}

	a.json(w, http.StatusOK, analyzeResponse{
		Detections: res.Detections,
		Provider:   res.Provider,
		Model:      res.Model,
		Status:     "success",
	})
}
