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

// replicateClient speaks the asynchronous job/poll prediction API. The
// creation call returns a job handle immediately; the poller re-fetches the
// prediction until it reaches a terminal state.
type replicateClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
	poller     poller
}

func newReplicateClient(baseURL string, httpClient *http.Client, logger *infra.Logger, p poller) *replicateClient {
	return &replicateClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
		poller:     p,
	}
}

type replicatePredictionRequest struct {
	Input map[string]any `json:"input"`
}

type replicatePrediction struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  string          `json:"error"`
}

// Generate fulfils the generator contract for the Replicate family. Prompt,
// image, strength, and size all travel in the prediction's input object.
func (c *replicateClient) Generate(ctx context.Context, credential, model string, req GenerationRequest) Result {
	input := map[string]any{
		"prompt": strings.TrimSpace(req.Prompt),
		"width":  defaultDimension(req.Width),
		"height": defaultDimension(req.Height),
	}
	if req.SourceImage != nil {
		input["image"] = req.SourceImage.DataURI()
		input["prompt_strength"] = req.Strength
	}

	status, body, err := c.do(ctx, credential, http.MethodPost,
		fmt.Sprintf("%s/models/%s/predictions", c.baseURL, model),
		replicatePredictionRequest{Input: input})
	if err != nil {
		return Fail(FailureTransient, req.Provider, model, "replicate request failed: %v", err)
	}
	if status < 200 || status >= 300 {
		return failureFromStatus(req.Provider, model, status, body)
	}

	var created replicatePrediction
	if err := json.Unmarshal(body, &created); err != nil || created.ID == "" {
		return Fail(FailureMalformedResponse, req.Provider, model, "replicate: no prediction id in response")
	}
	c.logger.Debug().Str("model", model).Str("prediction_id", created.ID).Msg("replicate: prediction created")

	if res, terminal := c.normalizePrediction(req.Provider, model, created); terminal {
		return res
	}
	return c.poller.await(ctx, req.Provider, model, func(ctx context.Context) pollOutcome {
		return c.fetchPrediction(ctx, credential, req.Provider, model, created.ID)
	})
}

// fetchPrediction is one status check of an in-flight prediction.
func (c *replicateClient) fetchPrediction(ctx context.Context, credential, provider, model, id string) pollOutcome {
	status, body, err := c.do(ctx, credential, http.MethodGet,
		fmt.Sprintf("%s/predictions/%s", c.baseURL, id), nil)
	if err != nil {
		return pollOutcome{terminal: true, result: Fail(FailureTransient, provider, model, "replicate poll failed: %v", err)}
	}
	if status < 200 || status >= 300 {
		return pollOutcome{terminal: true, result: failureFromStatus(provider, model, status, body)}
	}
	var prediction replicatePrediction
	if err := json.Unmarshal(body, &prediction); err != nil {
		return pollOutcome{terminal: true, result: Fail(FailureMalformedResponse, provider, model, "replicate: decode prediction: %v", err)}
	}
	res, terminal := c.normalizePrediction(provider, model, prediction)
	return pollOutcome{terminal: terminal, result: res}
}

// normalizePrediction maps a prediction snapshot onto the result contract.
// starting/processing are the only non-terminal states.
func (c *replicateClient) normalizePrediction(provider, model string, p replicatePrediction) (Result, bool) {
	switch p.Status {
	case "starting", "processing":
		return Result{}, false
	case "succeeded":
		url := firstOutputURL(p.Output)
		if url == "" {
			return Fail(FailureMalformedResponse, provider, model, "replicate: succeeded with empty output"), true
		}
		return ImageOf(provider, model, ImageResult{URL: url, MIME: "image/png"}), true
	case "failed", "canceled":
		msg := strings.TrimSpace(p.Error)
		if msg == "" {
			msg = p.Status
		}
		return Fail(FailureTransient, provider, model, "replicate: prediction %s: %s", p.Status, msg), true
	default:
		return Fail(FailureMalformedResponse, provider, model, "replicate: unknown prediction status %q", p.Status), true
	}
}

// firstOutputURL tolerates both output shapes the prediction API uses: a
// single URL string or a list of URLs.
func firstOutputURL(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return strings.TrimSpace(single)
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return strings.TrimSpace(list[0])
	}
	return ""
}

func (c *replicateClient) do(ctx context.Context, credential, method, endpoint string, payload any) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("replicate: encode request: %w", err)
		}
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("replicate: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+credential)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, nil, fmt.Errorf("replicate: http request: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("replicate: read response: %w", err)
	}
	return resp.StatusCode, raw, nil
}
