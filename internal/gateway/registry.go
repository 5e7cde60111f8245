package gateway

import "strings"

// Family identifies the wire-format family an adapter speaks. Providers in the
// same family share request shaping and response normalization.
type Family string

const (
	FamilyGemini      Family = "gemini"      // synchronous JSON, inline image parts
	FamilyOpenAI      Family = "openai"      // direct image-generation REST
	FamilyChat        Family = "chat"        // chat-completion-shaped multimodal
	FamilyReplicate   Family = "replicate"   // asynchronous job + poll
	FamilyHuggingFace Family = "huggingface" // synchronous binary blob
)

// EditTier declares how well a provider supports image-conditioned editing.
type EditTier string

const (
	EditTierNone    EditTier = "none"
	EditTierLimited EditTier = "limited"
	EditTierFull    EditTier = "full"
)

// ProviderDescriptor is the connection metadata for one provider. Pure data,
// created once at startup and never mutated.
type ProviderDescriptor struct {
	ID             string
	DisplayName    string
	CredentialKey  string
	Family         Family
	Models         []string
	AnalysisModels []string
	EditTier       EditTier
	CanAnalyze     bool
	FreeTierNote   string
	RateLimitNote  string
}

// DefaultModel returns the first declared generation model.
func (d ProviderDescriptor) DefaultModel() string {
	if len(d.Models) == 0 {
		return ""
	}
	return d.Models[0]
}

// DefaultAnalysisModel returns the first declared analysis model.
func (d ProviderDescriptor) DefaultAnalysisModel() string {
	if len(d.AnalysisModels) == 0 {
		return ""
	}
	return d.AnalysisModels[0]
}

// HasModel reports whether the model is declared for generation or analysis.
func (d ProviderDescriptor) HasModel(model string) bool {
	for _, m := range d.Models {
		if m == model {
			return true
		}
	}
	for _, m := range d.AnalysisModels {
		if m == model {
			return true
		}
	}
	return false
}

// Registry is the immutable provider table. Lookups are case-insensitive on
// the provider identifier.
type Registry struct {
	byID  map[string]ProviderDescriptor
	order []string
}

// NewRegistry builds a registry from the given descriptors.
func NewRegistry(descriptors ...ProviderDescriptor) *Registry {
	r := &Registry{byID: make(map[string]ProviderDescriptor, len(descriptors))}
	for _, d := range descriptors {
		id := strings.ToUpper(strings.TrimSpace(d.ID))
		if id == "" {
			continue
		}
		d.ID = id
		if _, exists := r.byID[id]; !exists {
			r.order = append(r.order, id)
		}
		r.byID[id] = d
	}
	return r
}

// Lookup resolves a provider identifier to its descriptor.
func (r *Registry) Lookup(id string) (ProviderDescriptor, bool) {
	d, ok := r.byID[strings.ToUpper(strings.TrimSpace(id))]
	return d, ok
}

// List returns the descriptors in registration order.
func (r *Registry) List() []ProviderDescriptor {
	out := make([]ProviderDescriptor, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// DefaultRegistry declares the providers the gateway ships with. Rate-limit
// and free-tier figures are informational only; the gateway never enforces
// them.
func DefaultRegistry() *Registry {
	return NewRegistry(
		ProviderDescriptor{
			ID:             "GEMINI",
			DisplayName:    "Google Gemini",
			CredentialKey:  "GEMINI_API_KEY",
			Family:         FamilyGemini,
			Models:         []string{"gemini-2.0-flash-exp-image-generation", "gemini-1.5-flash"},
			AnalysisModels: []string{"gemini-1.5-flash", "gemini-2.0-flash"},
			EditTier:       EditTierFull,
			CanAnalyze:     true,
			FreeTierNote:   "1500 requests/day",
			RateLimitNote:  "15 RPM",
		},
		ProviderDescriptor{
			ID:             "OPENAI",
			DisplayName:    "OpenAI",
			CredentialKey:  "OPENAI_API_KEY",
			Family:         FamilyOpenAI,
			Models:         []string{"dall-e-3", "dall-e-2"},
			AnalysisModels: []string{"gpt-4o-mini", "gpt-4o"},
			EditTier:       EditTierNone,
			CanAnalyze:     true,
			FreeTierNote:   "paid only",
			RateLimitNote:  "tier dependent",
		},
		ProviderDescriptor{
			ID:             "OPENROUTER",
			DisplayName:    "OpenRouter",
			CredentialKey:  "OPENROUTER_API_KEY",
			Family:         FamilyChat,
			Models:         []string{"google/gemini-2.0-flash-exp:free"},
			AnalysisModels: []string{"google/gemini-2.0-flash-exp:free", "qwen/qwen2.5-vl-72b-instruct:free"},
			EditTier:       EditTierLimited,
			CanAnalyze:     true,
			FreeTierNote:   "50 requests/day",
			RateLimitNote:  "20 RPM",
		},
		ProviderDescriptor{
			ID:            "REPLICATE",
			DisplayName:   "Replicate",
			CredentialKey: "REPLICATE_API_TOKEN",
			Family:        FamilyReplicate,
			Models:        []string{"stability-ai/sdxl", "black-forest-labs/flux-schnell"},
			EditTier:      EditTierFull,
			CanAnalyze:    false,
			FreeTierNote:  "trial credit",
			RateLimitNote: "600 requests/min",
		},
		ProviderDescriptor{
			ID:            "HUGGINGFACE",
			DisplayName:   "Hugging Face",
			CredentialKey: "HUGGINGFACE_API_KEY",
			Family:        FamilyHuggingFace,
			Models:        []string{"stabilityai/stable-diffusion-xl-base-1.0", "timbrooks/instruct-pix2pix"},
			EditTier:      EditTierLimited,
			CanAnalyze:    false,
			FreeTierNote:  "shared quota",
			RateLimitNote: "throttled per account",
		},
	)
}
