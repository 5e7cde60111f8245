package gateway

import (
	"encoding/json"
	"strings"
)

// Vision models are asked for pure JSON but are not contractually obligated
// to honor it. ExtractDetections is the one place free-form model text is
// turned into structured detections: it strips code fences, slices out the
// first recoverable JSON fragment, and decodes it. The boolean reports
// whether a usable payload was found; callers treat false as
// malformed_response, never as an empty detection list.
func ExtractDetections(raw string) ([]DetectedObject, bool) {
	fragment := extractJSONFragment(raw)
	if fragment == "" {
		return nil, false
	}

	var envelope struct {
		Detections []DetectedObject `json:"detections"`
		Objects    []DetectedObject `json:"objects"`
	}
	if err := json.Unmarshal([]byte(fragment), &envelope); err == nil {
		if out := sanitizeDetections(envelope.Detections); out != nil {
			return out, true
		}
		if out := sanitizeDetections(envelope.Objects); out != nil {
			return out, true
		}
	}

	var list []DetectedObject
	if err := json.Unmarshal([]byte(fragment), &list); err == nil {
		if out := sanitizeDetections(list); out != nil {
			return out, true
		}
	}
	return nil, false
}

func sanitizeDetections(objects []DetectedObject) []DetectedObject {
	out := make([]DetectedObject, 0, len(objects))
	for _, obj := range objects {
		obj.Name = strings.TrimSpace(obj.Name)
		if obj.Name == "" {
			continue
		}
		if obj.Confidence < 0 {
			obj.Confidence = 0
		}
		if obj.Confidence > 1 {
			obj.Confidence = 1
		}
		out = append(out, obj)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func extractJSONFragment(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}
	text = trimCodeFence(text)
	start := strings.IndexAny(text, "{[")
	end := strings.LastIndexAny(text, "]}")
	if start < 0 || end < start {
		return ""
	}
	return strings.TrimSpace(text[start : end+1])
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}

// FallbackDetections is the hardcoded minimal set returned when a model
// refuses to produce parseable JSON twice in a row. It keeps the user-facing
// flow moving instead of surfacing a hard failure.
func FallbackDetections() []DetectedObject {
	return []DetectedObject{
		{
			Name:       "walls",
			Confidence: 0.5,
			Location:   "room perimeter",
			Suggestion: "A fresh coat of paint in a light neutral tone brightens most rooms.",
			Timeline:   "1-2 days",
		},
		{
			Name:       "flooring",
			Confidence: 0.5,
			Location:   "floor",
			Suggestion: "Consider refinishing or replacing worn flooring.",
			Timeline:   "3-5 days",
		},
		{
			Name:       "lighting",
			Confidence: 0.5,
			Location:   "ceiling",
			Suggestion: "Updated fixtures and warmer bulbs change the feel of a room quickly.",
			Timeline:   "1 day",
		},
	}
}

// analysisPrompt instructs a vision model to respond with the detection
// schema. Models still wander off-format; ExtractDetections tolerates that.
func analysisPrompt() string {
	sb := &strings.Builder{}
	sb.WriteString("You are a home renovation assistant. Identify the objects and surfaces in this room photo that could be upgraded. ")
	sb.WriteString("Respond strictly with JSON matching this schema: ")
	sb.WriteString(`{"detections":[{"name":string,"confidence":number,"location":string,"suggestion":string,"estimatedCost":string,"timeline":string,"shoppingLinks":string[]}]}`)
	sb.WriteString(". Confidence is a number between 0 and 1. Do not include any text outside the JSON object.")
	return sb.String()
}
