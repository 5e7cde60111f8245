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

// chatClient speaks the chat-completion-shaped multimodal API (OpenRouter).
// Prompt and optional image are packed as ordered content parts inside one
// conversational message; a modalities flag tells the model whether to answer
// with text or an embedded image.
type chatClient struct {
	baseURL    string
	referer    string
	title      string
	httpClient *http.Client
	logger     *infra.Logger
}

func newChatClient(baseURL string, httpClient *http.Client, logger *infra.Logger) *chatClient {
	return &chatClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		referer:    "https://renovation-assistant.local",
		title:      "Renovation Assistant",
		httpClient: httpClient,
		logger:     logger,
	}
}

type chatCompletionRequest struct {
	Model      string        `json:"model"`
	Modalities []string      `json:"modalities,omitempty"`
	Messages   []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string            `json:"role"`
	Content []chatContentPart `json:"content"`
}

type chatContentPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *chatImageRef `json:"image_url,omitempty"`
}

type chatImageRef struct {
	URL string `json:"url"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Images  []struct {
				ImageURL chatImageRef `json:"image_url"`
			} `json:"images"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate fulfils the generator contract for the chat-completion family.
func (c *chatClient) Generate(ctx context.Context, credential, model string, req GenerationRequest) Result {
	content := []chatContentPart{{Type: "text", Text: generationPrompt(req)}}
	if req.SourceImage != nil {
		content = append(content, chatContentPart{
			Type:     "image_url",
			ImageURL: &chatImageRef{URL: req.SourceImage.DataURI()},
		})
	}
	payload := chatCompletionRequest{
		Model:      model,
		Modalities: []string{"image", "text"},
		Messages:   []chatMessage{{Role: "user", Content: content}},
	}

	status, body, err := c.post(ctx, credential, payload)
	if err != nil {
		return Fail(FailureTransient, req.Provider, model, "openrouter request failed: %v", err)
	}
	if status < 200 || status >= 300 {
		return failureFromStatus(req.Provider, model, status, body)
	}

	var decoded chatCompletionResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return Fail(FailureMalformedResponse, req.Provider, model, "openrouter: decode response: %v", err)
	}
	for _, choice := range decoded.Choices {
		for _, img := range choice.Message.Images {
			ref := strings.TrimSpace(img.ImageURL.URL)
			if ref == "" {
				continue
			}
			if source, err := ParseSourceImage(ref); err == nil && source != nil {
				c.logger.Debug().Str("model", model).Msg("openrouter: generated image")
				return ImageOf(req.Provider, model, ImageResult{
					URL:  source.URL,
					Data: source.Data,
					MIME: coalesceMIME(source.MIME),
				})
			}
		}
	}
	return Fail(FailureMalformedResponse, req.Provider, model, "openrouter: no image in response")
}

// Analyze fulfils the analyzer contract for the chat-completion family.
func (c *chatClient) Analyze(ctx context.Context, credential, model string, req AnalysisRequest) Result {
	payload := chatCompletionRequest{
		Model: model,
		Messages: []chatMessage{{
			Role: "user",
			Content: []chatContentPart{
				{Type: "text", Text: analysisPrompt()},
				{Type: "image_url", ImageURL: &chatImageRef{URL: req.Image.DataURI()}},
			},
		}},
	}

	status, body, err := c.post(ctx, credential, payload)
	if err != nil {
		return Fail(FailureTransient, req.Provider, model, "openrouter request failed: %v", err)
	}
	if status < 200 || status >= 300 {
		return failureFromStatus(req.Provider, model, status, body)
	}

	var decoded chatCompletionResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return Fail(FailureMalformedResponse, req.Provider, model, "openrouter: decode response: %v", err)
	}
	if len(decoded.Choices) == 0 {
		return Fail(FailureMalformedResponse, req.Provider, model, "openrouter: no choices in response")
	}
	detections, ok := ExtractDetections(decoded.Choices[0].Message.Content)
	if !ok {
		return Fail(FailureMalformedResponse, req.Provider, model, "openrouter: no detections in response")
	}
	return DetectionsOf(req.Provider, model, detections)
}

func (c *chatClient) post(ctx context.Context, credential string, payload chatCompletionRequest) (int, []byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("openrouter: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("openrouter: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+credential)
	httpReq.Header.Set("HTTP-Referer", c.referer)
	httpReq.Header.Set("X-Title", c.title)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, nil, fmt.Errorf("openrouter: http request: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("openrouter: read response: %w", err)
	}
	return resp.StatusCode, raw, nil
}
