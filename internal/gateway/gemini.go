package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"server/internal/infra"
)

// geminiClient speaks the synchronous generateContent JSON API. Images travel
// both directions as base64 inlineData parts inside content candidates.
type geminiClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

func newGeminiClient(baseURL string, httpClient *http.Client, logger *infra.Logger) *geminiClient {
	return &geminiClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

type geminiInlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts,omitempty"`
}

type geminiGenerationConfig struct {
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

// Generate fulfils the generator contract for the Gemini family.
func (c *geminiClient) Generate(ctx context.Context, credential, model string, req GenerationRequest) Result {
	parts := []geminiPart{{Text: generationPrompt(req)}}
	if req.SourceImage != nil {
		parts = append(parts, geminiPart{InlineData: &geminiInlineData{
			MimeType: coalesceMIME(req.SourceImage.MIME),
			Data:     req.SourceImage.Base64(),
		}})
	}
	payload := geminiRequest{
		Contents:         []geminiContent{{Role: "user", Parts: parts}},
		GenerationConfig: &geminiGenerationConfig{ResponseModalities: []string{"TEXT", "IMAGE"}},
	}

	status, body, err := c.invoke(ctx, credential, model, payload)
	if err != nil {
		return Fail(FailureTransient, req.Provider, model, "gemini request failed: %v", err)
	}
	if status < 200 || status >= 300 {
		return failureFromStatus(req.Provider, model, status, body)
	}

	var decoded geminiResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return Fail(FailureMalformedResponse, req.Provider, model, "gemini: decode response: %v", err)
	}
	for _, candidate := range decoded.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.InlineData == nil || part.InlineData.Data == "" {
				continue
			}
			data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
			if err != nil || len(data) == 0 {
				continue
			}
			c.logger.Debug().Str("model", model).Int("bytes", len(data)).Msg("gemini: generated image")
			return ImageOf(req.Provider, model, ImageResult{
				Data: data,
				MIME: coalesceMIME(part.InlineData.MimeType),
			})
		}
	}
	return Fail(FailureMalformedResponse, req.Provider, model, "gemini: no image in response")
}

// Analyze fulfils the analyzer contract for the Gemini family.
func (c *geminiClient) Analyze(ctx context.Context, credential, model string, req AnalysisRequest) Result {
	payload := geminiRequest{
		Contents: []geminiContent{{
			Role: "user",
			Parts: []geminiPart{
				{Text: analysisPrompt()},
				{InlineData: &geminiInlineData{
					MimeType: coalesceMIME(req.Image.MIME),
					Data:     req.Image.Base64(),
				}},
			},
		}},
	}

	status, body, err := c.invoke(ctx, credential, model, payload)
	if err != nil {
		return Fail(FailureTransient, req.Provider, model, "gemini request failed: %v", err)
	}
	if status < 200 || status >= 300 {
		return failureFromStatus(req.Provider, model, status, body)
	}

	var decoded geminiResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return Fail(FailureMalformedResponse, req.Provider, model, "gemini: decode response: %v", err)
	}
	var text strings.Builder
	for _, candidate := range decoded.Candidates {
		for _, part := range candidate.Content.Parts {
			text.WriteString(part.Text)
		}
	}
	detections, ok := ExtractDetections(text.String())
	if !ok {
		return Fail(FailureMalformedResponse, req.Provider, model, "gemini: no detections in response")
	}
	return DetectionsOf(req.Provider, model, detections)
}

func (c *geminiClient) invoke(ctx context.Context, credential, model string, payload geminiRequest) (int, []byte, error) {
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, url.PathEscape(model))
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("gemini: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("gemini: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", credential)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, nil, fmt.Errorf("gemini: http request: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("gemini: read response: %w", err)
	}
	return resp.StatusCode, raw, nil
}

// generationPrompt renders the canonical request as model-facing text. In
// edit mode the strength knob is expressed as wording because the
// generateContent API has no numeric equivalent.
func generationPrompt(req GenerationRequest) string {
	prompt := strings.TrimSpace(req.Prompt)
	if !req.EditMode() {
		return prompt
	}
	intensity := "subtle"
	switch {
	case req.Strength >= 0.7:
		intensity = "dramatic"
	case req.Strength >= 0.4:
		intensity = "noticeable"
	}
	return fmt.Sprintf("Edit the attached room photo: %s. Apply a %s transformation while keeping the room layout and perspective intact.", prompt, intensity)
}

func coalesceMIME(mime string) string {
	mime = strings.TrimSpace(mime)
	if mime == "" {
		return "image/png"
	}
	return mime
}
