package gateway

import "testing"

func TestExtractDetectionsFromFencedEnvelope(t *testing.T) {
	raw := "Sure! Here is the analysis:\n```json\n{\"detections\":[{\"name\":\"sofa\",\"confidence\":0.92,\"location\":\"center\"}]}\n```\nLet me know if you need more."
	detections, ok := ExtractDetections(raw)
	if !ok {
		t.Fatal("expected detections")
	}
	if len(detections) != 1 || detections[0].Name != "sofa" {
		t.Fatalf("unexpected detections %+v", detections)
	}
}

func TestExtractDetectionsObjectsAlias(t *testing.T) {
	detections, ok := ExtractDetections(`{"objects":[{"name":"window","confidence":0.7,"location":"north wall"}]}`)
	if !ok || len(detections) != 1 || detections[0].Name != "window" {
		t.Fatalf("ExtractDetections = (%+v, %v)", detections, ok)
	}
}

func TestExtractDetectionsBareArray(t *testing.T) {
	detections, ok := ExtractDetections(`[{"name":"cabinet","confidence":0.6,"location":"kitchen"}]`)
	if !ok || len(detections) != 1 {
		t.Fatalf("ExtractDetections = (%+v, %v)", detections, ok)
	}
}

func TestExtractDetectionsClampsConfidence(t *testing.T) {
	detections, ok := ExtractDetections(`{"detections":[{"name":"rug","confidence":7.5,"location":"floor"},{"name":"lamp","confidence":-1,"location":"corner"}]}`)
	if !ok || len(detections) != 2 {
		t.Fatalf("ExtractDetections = (%+v, %v)", detections, ok)
	}
	if detections[0].Confidence != 1 || detections[1].Confidence != 0 {
		t.Fatalf("confidence not clamped: %+v", detections)
	}
}

func TestExtractDetectionsDropsUnnamedObjects(t *testing.T) {
	for _, raw := range []string{
		`{"detections":[{"name":"  ","confidence":0.9,"location":"floor"}]}`,
		`{"objects":[{"name":"","confidence":0.4,"location":"wall"}]}`,
		`[{"name":"  ","confidence":0.9,"location":"floor"},{"name":"","confidence":0.2,"location":"x"}]`,
	} {
		detections, ok := ExtractDetections(raw)
		if ok || detections != nil {
			t.Fatalf("ExtractDetections(%q) = (%+v, %v), want (nil, false)", raw, detections, ok)
		}
	}
}

func TestExtractDetectionsKeepsNamedAmongDropped(t *testing.T) {
	detections, ok := ExtractDetections(`{"detections":[{"name":" ","confidence":0.9,"location":"floor"},{"name":"sink","confidence":0.8,"location":"corner"}]}`)
	if !ok || len(detections) != 1 || detections[0].Name != "sink" {
		t.Fatalf("ExtractDetections = (%+v, %v)", detections, ok)
	}
}

func TestExtractDetectionsRejectsProse(t *testing.T) {
	for _, raw := range []string{
		"",
		"I cannot analyze this image.",
		"```json\nnot actually json\n```",
		`{"detections":[]}`,
	} {
		if _, ok := ExtractDetections(raw); ok {
			t.Fatalf("ExtractDetections(%q) unexpectedly succeeded", raw)
		}
	}
}

func TestFallbackDetectionsAlwaysUsable(t *testing.T) {
	detections := FallbackDetections()
	if len(detections) == 0 {
		t.Fatal("fallback set is empty")
	}
	for _, d := range detections {
		if d.Name == "" || d.Suggestion == "" {
			t.Fatalf("fallback detection missing fields: %+v", d)
		}
		if d.Confidence <= 0 || d.Confidence > 1 {
			t.Fatalf("fallback confidence out of range: %+v", d)
		}
	}
}
