package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"server/internal/infra"
)

// openAIClient speaks two endpoints: the flat image-generation REST API for
// generation and the chat-completions API with image_url content parts for
// analysis. The image API has no true edit mode; edit intent is folded into
// an elaborated prompt instead.
type openAIClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

func newOpenAIClient(baseURL string, httpClient *http.Client, logger *infra.Logger) *openAIClient {
	return &openAIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

type openAIImageRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	ResponseFormat string `json:"response_format,omitempty"`
}

type openAIImageResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
		URL     string `json:"url"`
	} `json:"data"`
}

type openAIChatRequest struct {
	Model    string          `json:"model"`
	Messages []openAIMessage `json:"messages"`
}

type openAIMessage struct {
	Role    string              `json:"role"`
	Content []openAIContentPart `json:"content"`
}

type openAIContentPart struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	ImageURL *openAIImageRef `json:"image_url,omitempty"`
}

type openAIImageRef struct {
	URL string `json:"url"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate fulfils the generator contract for the OpenAI family.
func (c *openAIClient) Generate(ctx context.Context, credential, model string, req GenerationRequest) Result {
	payload := openAIImageRequest{
		Model:          model,
		Prompt:         foldEditIntent(req),
		N:              1,
		Size:           nearestOpenAISize(req.Width, req.Height),
		ResponseFormat: "b64_json",
	}
	status, body, err := c.post(ctx, credential, "/images/generations", payload)
	if err != nil {
		return Fail(FailureTransient, req.Provider, model, "openai request failed: %v", err)
	}
	if status < 200 || status >= 300 {
		return failureFromStatus(req.Provider, model, status, body)
	}

	var decoded openAIImageResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return Fail(FailureMalformedResponse, req.Provider, model, "openai: decode response: %v", err)
	}
	for _, item := range decoded.Data {
		if item.B64JSON != "" {
			data, err := base64.StdEncoding.DecodeString(item.B64JSON)
			if err != nil || len(data) == 0 {
				continue
			}
			c.logger.Debug().Str("model", model).Int("bytes", len(data)).Msg("openai: generated image")
			return ImageOf(req.Provider, model, ImageResult{Data: data, MIME: "image/png"})
		}
		if item.URL != "" {
			return ImageOf(req.Provider, model, ImageResult{URL: item.URL, MIME: "image/png"})
		}
	}
	return Fail(FailureMalformedResponse, req.Provider, model, "openai: empty image data")
}

// Analyze fulfils the analyzer contract for the OpenAI family.
func (c *openAIClient) Analyze(ctx context.Context, credential, model string, req AnalysisRequest) Result {
	payload := openAIChatRequest{
		Model: model,
		Messages: []openAIMessage{{
			Role: "user",
			Content: []openAIContentPart{
				{Type: "text", Text: analysisPrompt()},
				{Type: "image_url", ImageURL: &openAIImageRef{URL: req.Image.DataURI()}},
			},
		}},
	}
	status, body, err := c.post(ctx, credential, "/chat/completions", payload)
	if err != nil {
		return Fail(FailureTransient, req.Provider, model, "openai request failed: %v", err)
	}
	if status < 200 || status >= 300 {
		return failureFromStatus(req.Provider, model, status, body)
	}

	var decoded openAIChatResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return Fail(FailureMalformedResponse, req.Provider, model, "openai: decode response: %v", err)
	}
	if len(decoded.Choices) == 0 {
		return Fail(FailureMalformedResponse, req.Provider, model, "openai: no choices in response")
	}
	detections, ok := ExtractDetections(decoded.Choices[0].Message.Content)
	if !ok {
		return Fail(FailureMalformedResponse, req.Provider, model, "openai: no detections in response")
	}
	return DetectionsOf(req.Provider, model, detections)
}

func (c *openAIClient) post(ctx context.Context, credential, path string, payload any) (int, []byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("openai: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("openai: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+credential)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, nil, fmt.Errorf("openai: http request: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("openai: read response: %w", err)
	}
	return resp.StatusCode, raw, nil
}

// foldEditIntent compensates for the missing edit mode: when a source image
// was supplied the prompt is elaborated to describe an edit of an existing
// room. Documented limitation of this family, not a bug.
func foldEditIntent(req GenerationRequest) string {
	prompt := strings.TrimSpace(req.Prompt)
	if !req.EditMode() {
		return prompt
	}
	return fmt.Sprintf("A photorealistic interior photo of an existing room after this renovation: %s. Keep the original room layout, window placement, and camera perspective.", prompt)
}

// nearestOpenAISize maps a free-form target raster onto the discrete sizes
// the image endpoint accepts.
func nearestOpenAISize(width, height int) string {
	width, height = defaultDimension(width), defaultDimension(height)
	switch {
	case width > height:
		return "1792x1024"
	case height > width:
		return "1024x1792"
	default:
		return "1024x1024"
	}
}
