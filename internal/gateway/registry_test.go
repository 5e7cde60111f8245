package gateway

import "testing"

func TestRegistryLookupIsCaseInsensitive(t *testing.T) {
	registry := DefaultRegistry()
	for _, id := range []string{"gemini", "GEMINI", " Gemini "} {
		d, ok := registry.Lookup(id)
		if !ok {
			t.Fatalf("Lookup(%q) not found", id)
		}
		if d.ID != "GEMINI" {
			t.Fatalf("Lookup(%q) = %q, want GEMINI", id, d.ID)
		}
	}
	if _, ok := registry.Lookup("midjourney"); ok {
		t.Fatal("unknown provider unexpectedly found")
	}
}

func TestDefaultRegistryShape(t *testing.T) {
	registry := DefaultRegistry()
	list := registry.List()
	if len(list) != 5 {
		t.Fatalf("List() = %d providers, want 5", len(list))
	}
	if list[0].ID != "GEMINI" {
		t.Fatalf("first provider = %q, want GEMINI", list[0].ID)
	}

	analyzeCapable := 0
	for _, d := range list {
		if d.DefaultModel() == "" {
			t.Fatalf("%s has no generation model", d.ID)
		}
		if d.CredentialKey == "" {
			t.Fatalf("%s has no credential key", d.ID)
		}
		if d.CanAnalyze {
			analyzeCapable++
			if d.DefaultAnalysisModel() == "" {
				t.Fatalf("%s analyzes but declares no analysis model", d.ID)
			}
		}
	}
	if analyzeCapable != 3 {
		t.Fatalf("analysis-capable providers = %d, want 3", analyzeCapable)
	}
}

func TestDescriptorHasModelCoversBothLists(t *testing.T) {
	registry := DefaultRegistry()
	d, _ := registry.Lookup("OPENAI")
	if !d.HasModel("dall-e-3") {
		t.Fatal("generation model not recognized")
	}
	if !d.HasModel("gpt-4o-mini") {
		t.Fatal("analysis model not recognized")
	}
	if d.HasModel("dall-e-9") {
		t.Fatal("unknown model unexpectedly recognized")
	}
}
