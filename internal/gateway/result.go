package gateway

import (
	"fmt"
	"strings"
)

// FailureKind classifies a dispatch failure into the shared taxonomy.
type FailureKind string

const (
	FailureClientError       FailureKind = "client_error"
	FailureOutOfService      FailureKind = "out_of_service"
	FailureRateLimited       FailureKind = "rate_limited"
	FailureMalformedResponse FailureKind = "malformed_response"
	FailureTransient         FailureKind = "transient_error"
)

// Failure carries a classified dispatch failure.
type Failure struct {
	Kind     FailureKind
	Message  string
	Provider string
	Model    string
	Details  string
}

// ImageResult references a produced image: either a hosted URL or inline
// bytes with their MIME type. Exactly one of URL or Data is populated by the
// adapters.
type ImageResult struct {
	URL  string
	MIME string
	Data []byte
}

// DetectedObject is one detected object from an analysis response. The
// renovation-suggestion fields are provider-dependent and therefore optional.
type DetectedObject struct {
	Name          string   `json:"name"`
	Confidence    float64  `json:"confidence"`
	Location      string   `json:"location"`
	Suggestion    string   `json:"suggestion,omitempty"`
	EstimatedCost string   `json:"estimatedCost,omitempty"`
	Timeline      string   `json:"timeline,omitempty"`
	ShoppingLinks []string `json:"shoppingLinks,omitempty"`
}

// Result is the single type crossing the gateway boundary. Exactly one of
// Image, Detections, or Failure is populated; the constructors below are the
// only way a Result is produced.
type Result struct {
	Provider   string
	Model      string
	Image      *ImageResult
	Detections []DetectedObject
	Failure    *Failure
}

// ImageOf builds a successful generation result.
func ImageOf(provider, model string, img ImageResult) Result {
	return Result{Provider: provider, Model: model, Image: &img}
}

// DetectionsOf builds a successful analysis result.
func DetectionsOf(provider, model string, objects []DetectedObject) Result {
	if objects == nil {
		objects = []DetectedObject{}
	}
	return Result{Provider: provider, Model: model, Detections: objects}
}

// Fail builds a failed result.
func Fail(kind FailureKind, provider, model, format string, args ...any) Result {
	return Result{
		Provider: provider,
		Model:    model,
		Failure: &Failure{
			Kind:     kind,
			Message:  fmt.Sprintf(format, args...),
			Provider: provider,
			Model:    model,
		},
	}
}

// FailWithDetails builds a failed result carrying the provider's raw message
// for diagnostics.
func FailWithDetails(kind FailureKind, provider, model, message, details string) Result {
	return Result{
		Provider: provider,
		Model:    model,
		Failure: &Failure{
			Kind:     kind,
			Message:  message,
			Provider: provider,
			Model:    model,
			Details:  details,
		},
	}
}

// Ok reports whether the dispatch succeeded.
func (r Result) Ok() bool {
	return r.Failure == nil
}

// failureFromStatus classifies a non-2xx provider response. HTTP 429 maps to
// rate_limited regardless of which adapter produced it; everything else is a
// transient provider error carrying the raw body for diagnostics.
func failureFromStatus(provider, model string, status int, body []byte) Result {
	detail := strings.TrimSpace(string(body))
	if len(detail) > 512 {
		detail = detail[:512]
	}
	if status == 429 {
		return FailWithDetails(FailureRateLimited, provider, model,
			fmt.Sprintf("%s rate limit exceeded", provider), detail)
	}
	return FailWithDetails(FailureTransient, provider, model,
		fmt.Sprintf("%s returned status %d", provider, status), detail)
}
