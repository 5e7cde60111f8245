package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHuggingFaceGenerateReturnsRawBytes(t *testing.T) {
	imageBytes := []byte{0xff, 0xd8, 0xff}
	var gotPath string
	var gotReq huggingFaceRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(imageBytes)
	}))
	defer server.Close()

	client := newHuggingFaceClient(server.URL, server.Client(), testLogger())
	res := client.Generate(context.Background(), "hf-token", "stabilityai/stable-diffusion-xl-base-1.0", GenerationRequest{
		Provider: "HUGGINGFACE",
		Prompt:   "mid-century study",
	})
	if !res.Ok() {
		t.Fatalf("generate failed: %+v", res.Failure)
	}
	if string(res.Image.Data) != string(imageBytes) || res.Image.MIME != "image/jpeg" {
		t.Fatalf("unexpected image %+v", res.Image)
	}
	if !strings.HasSuffix(gotPath, "/stabilityai/stable-diffusion-xl-base-1.0") {
		t.Fatalf("path = %q", gotPath)
	}
	if gotReq.Inputs != "mid-century study" {
		t.Fatalf("inputs = %q", gotReq.Inputs)
	}
}

func TestHuggingFaceJSONBodyIsMalformed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"estimated_time":45.2}`))
	}))
	defer server.Close()

	client := newHuggingFaceClient(server.URL, server.Client(), testLogger())
	res := client.Generate(context.Background(), "hf-token", "stabilityai/stable-diffusion-xl-base-1.0", GenerationRequest{Provider: "HUGGINGFACE", Prompt: "x"})
	if res.Ok() || res.Failure.Kind != FailureMalformedResponse {
		t.Fatalf("result = %+v, want malformed_response", res)
	}
}

func TestHuggingFaceRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("Rate limit reached"))
	}))
	defer server.Close()

	client := newHuggingFaceClient(server.URL, server.Client(), testLogger())
	res := client.Generate(context.Background(), "hf-token", "stabilityai/stable-diffusion-xl-base-1.0", GenerationRequest{Provider: "HUGGINGFACE", Prompt: "x"})
	if res.Ok() || res.Failure.Kind != FailureRateLimited {
		t.Fatalf("result = %+v, want rate_limited", res)
	}
}

func TestHuggingFaceImageParamsOnlyForImg2ImgModels(t *testing.T) {
	requests := map[string]huggingFaceRequest{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req huggingFaceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		requests[r.URL.Path] = req
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("img"))
	}))
	defer server.Close()

	client := newHuggingFaceClient(server.URL, server.Client(), testLogger())
	source := &SourceImage{Data: []byte("photo"), MIME: "image/png"}

	res := client.Generate(context.Background(), "hf-token", "timbrooks/instruct-pix2pix", GenerationRequest{
		Provider: "HUGGINGFACE", Prompt: "x", SourceImage: source, Strength: 0.4,
	})
	if !res.Ok() {
		t.Fatalf("pix2pix generate failed: %+v", res.Failure)
	}
	res = client.Generate(context.Background(), "hf-token", "stabilityai/stable-diffusion-xl-base-1.0", GenerationRequest{
		Provider: "HUGGINGFACE", Prompt: "x", SourceImage: source, Strength: 0.4,
	})
	if !res.Ok() {
		t.Fatalf("sdxl generate failed: %+v", res.Failure)
	}

	if requests["/timbrooks/instruct-pix2pix"].Parameters == nil {
		t.Fatal("img2img model did not receive image parameters")
	}
	if requests["/stabilityai/stable-diffusion-xl-base-1.0"].Parameters != nil {
		t.Fatal("text-only model unexpectedly received image parameters")
	}
}
