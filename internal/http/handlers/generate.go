package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"server/internal/domain"
	"server/internal/gateway"
	"server/internal/middleware"
)

type generateRequest struct {
	Prompt           string  `json:"prompt"`
	OriginalImage    string  `json:"originalImage,omitempty"`
	SelectedProvider string  `json:"selectedProvider,omitempty"`
	SelectedModel    string  `json:"selectedModel,omitempty"`
	Width            int     `json:"width,omitempty"`
	Height           int     `json:"height,omitempty"`
	Strength         float64 `json:"strength,omitempty"`
}

type generateResponse struct {
	ImageURL string `json:"imageUrl"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Status   string `json:"status"`
}

// ImagesGenerate accepts a generation request, dispatches it through the
// gateway once, and returns the uniform result contract.
func (a *App) ImagesGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.badRequest(w, "invalid payload")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		a.badRequest(w, "prompt is required")
		return
	}
	source, err := gateway.ParseSourceImage(req.OriginalImage)
	if err != nil {
		a.badRequest(w, "originalImage is not a valid image reference")
		return
	}

	start := time.Now()
	res := a.Gateway.DispatchGeneration(r.Context(), gateway.GenerationRequest{
		Prompt:      req.Prompt,
		SourceImage: source,
		Strength:    req.Strength,
		Width:       req.Width,
		Height:      req.Height,
		Provider:    req.SelectedProvider,
		Model:       req.SelectedModel,
	})
	a.recordDispatch(domain.DispatchOpGenerate, res, time.Since(start))

	if !res.Ok() {
		a.failure(w, middleware.LocaleFromContext(r.Context()), res.Failure)
		return
	}

	imageURL, err := a.persistImage(r, res)
	if err != nil {
		a.Logger.Error().Err(err).Str("provider", res.Provider).Msg("handlers: failed to persist generated image")
		a.failure(w, middleware.LocaleFromContext(r.Context()), &gateway.Failure{
			Kind:     gateway.FailureTransient,
			Message:  "failed to store generated image",
			Provider: res.Provider,
			Model:    res.Model,
		})
		return
	}

	a.json(w, http.StatusOK, generateResponse{
		ImageURL: imageURL,
		Provider: res.Provider,
		Model:    res.Model,
		Status:   "success",
	})
}

// persistImage turns the gateway's image result into a caller-usable URL.
// Hosted references pass through; inline bytes land in the file store and are
// served from /static.
func (a *App) persistImage(r *http.Request, res gateway.Result) (string, error) {
	img := res.Image
	if len(img.Data) == 0 {
		return img.URL, nil
	}
	key := fmt.Sprintf("generated/%s%s", uuid.NewString(), extensionForMIME(img.MIME))
	storedKey, err := a.Store.Write(r.Context(), key, img.Data)
	if err != nil {
		return "", err
	}
	return a.Config.StorageBaseURL + "/" + storedKey, nil
}

func extensionForMIME(mime string) string {
	switch strings.ToLower(strings.TrimSpace(mime)) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}
