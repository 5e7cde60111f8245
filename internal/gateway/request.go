package gateway

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// SourceImage is an uploaded photo used as conditioning input. It is either
// inline bytes with a MIME type or a hosted reference, never both.
type SourceImage struct {
	Data []byte
	MIME string
	URL  string
}

// DataURI renders the image as a data URI, fetching the declared MIME type or
// defaulting to PNG. Hosted references are returned unchanged.
func (s *SourceImage) DataURI() string {
	if s == nil {
		return ""
	}
	if len(s.Data) > 0 {
		mime := s.MIME
		if mime == "" {
			mime = "image/png"
		}
		return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(s.Data)
	}
	return s.URL
}

// Base64 returns the raw base64 payload without the data-URI prefix.
func (s *SourceImage) Base64() string {
	if s == nil || len(s.Data) == 0 {
		return ""
	}
	return base64.StdEncoding.EncodeToString(s.Data)
}

// ParseSourceImage accepts a data URI, a bare base64 payload, or an http(s)
// reference and normalizes it into a SourceImage. Empty input yields nil.
func ParseSourceImage(raw string) (*SourceImage, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return &SourceImage{URL: raw}, nil
	}
	mime := "image/png"
	payload := raw
	if strings.HasPrefix(raw, "data:") {
		rest := strings.TrimPrefix(raw, "data:")
		idx := strings.Index(rest, ",")
		if idx < 0 {
			return nil, errors.New("gateway: malformed data uri")
		}
		meta := rest[:idx]
		payload = rest[idx+1:]
		if m := strings.TrimSuffix(meta, ";base64"); m != "" {
			mime = m
		}
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("gateway: decode image: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("gateway: empty image payload")
	}
	return &SourceImage{Data: data, MIME: mime}, nil
}

// GenerationRequest is the canonical request for image generation. A present
// SourceImage means edit mode; absent means create mode. Immutable once
// constructed; it lives only for the duration of one dispatch.
type GenerationRequest struct {
	Prompt      string
	SourceImage *SourceImage
	Strength    float64
	Width       int
	Height      int
	Provider    string
	Model       string
}

// EditMode reports whether a source image conditions the generation.
func (r GenerationRequest) EditMode() bool {
	return r.SourceImage != nil
}

// AnalysisRequest is the canonical request for image analysis.
type AnalysisRequest struct {
	Image    *SourceImage
	Provider string
	Model    string
}

// clampStrength bounds the provider-specific deviation knob to [0,1].
// Out-of-range values are clamped rather than rejected.
func clampStrength(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// defaultDimension substitutes the canonical raster size for missing or
// non-positive dimensions.
func defaultDimension(v int) int {
	if v <= 0 {
		return 1024
	}
	return v
}
