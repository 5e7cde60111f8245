package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"server/internal/infra"
)

// huggingFaceClient speaks the synchronous binary-blob inference API: the
// request is JSON but a successful response body is the image bytes with no
// envelope.
type huggingFaceClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

func newHuggingFaceClient(baseURL string, httpClient *http.Client, logger *infra.Logger) *huggingFaceClient {
	return &huggingFaceClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

type huggingFaceRequest struct {
	Inputs     string         `json:"inputs"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// img2imgModels is the subset of hosted models that accept a conditioning
// image. Everything else gets prompt-only input even when an edit was
// requested; the remote API is the authority on what it honors.
var img2imgModels = map[string]bool{
	"timbrooks/instruct-pix2pix": true,
}

// Generate fulfils the generator contract for the Hugging Face family.
func (c *huggingFaceClient) Generate(ctx context.Context, credential, model string, req GenerationRequest) Result {
	payload := huggingFaceRequest{Inputs: strings.TrimSpace(req.Prompt)}
	if req.SourceImage != nil && img2imgModels[model] {
		payload.Parameters = map[string]any{
			"image":    req.SourceImage.Base64(),
			"strength": req.Strength,
		}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Fail(FailureTransient, req.Provider, model, "huggingface: encode request: %v", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+model, bytes.NewReader(body))
	if err != nil {
		return Fail(FailureTransient, req.Provider, model, "huggingface: build request: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+credential)
	httpReq.Header.Set("Accept", "image/png")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Fail(FailureTransient, req.Provider, model, "huggingface request failed: %v", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Fail(FailureTransient, req.Provider, model, "huggingface: read response: %v", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return failureFromStatus(req.Provider, model, resp.StatusCode, raw)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") || len(raw) == 0 {
		return Fail(FailureMalformedResponse, req.Provider, model,
			"huggingface: expected image bytes, got %s", firstLine(contentType, raw))
	}
	c.logger.Debug().Str("model", model).Int("bytes", len(raw)).Msg("huggingface: generated image")
	return ImageOf(req.Provider, model, ImageResult{Data: raw, MIME: contentType})
}

func firstLine(contentType string, body []byte) string {
	summary := strings.TrimSpace(contentType)
	if summary == "" {
		summary = "empty content type"
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		return summary
	}
	if idx := strings.IndexByte(text, '\n'); idx > 0 {
		text = text[:idx]
	}
	if len(text) > 128 {
		text = text[:128]
	}
	return fmt.Sprintf("%s (%s)", summary, text)
}
