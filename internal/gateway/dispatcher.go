package gateway

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"server/internal/infra"
)

// generator adapts the canonical generation request into one provider
// family's wire format and normalizes whatever comes back.
type generator interface {
	Generate(ctx context.Context, credential, model string, req GenerationRequest) Result
}

// analyzer does the same for image analysis.
type analyzer interface {
	Analyze(ctx context.Context, credential, model string, req AnalysisRequest) Result
}

// Options configures a Dispatcher. Base URLs default to the public provider
// endpoints; tests point them at local stubs.
type Options struct {
	Registry          *Registry
	Credentials       CredentialResolver
	DefaultProvider   string
	GeminiBaseURL     string
	OpenAIBaseURL     string
	OpenRouterBaseURL string
	ReplicateBaseURL  string
	HuggingFaceURL    string
	PollInterval      time.Duration
	PollMaxAttempts   int
	HTTPClient        *http.Client
	Logger            *infra.Logger
}

// Dispatcher is the gateway entry point. It validates the incoming request,
// resolves provider and credential, invokes the matching adapter family, and
// returns the normalized result. One dispatch makes exactly one attempt
// against exactly one provider; callers wanting resilience re-dispatch
// themselves, optionally to a different provider.
type Dispatcher struct {
	registry        *Registry
	credentials     CredentialResolver
	defaultProvider string
	generators      map[Family]generator
	analyzers       map[Family]analyzer
	logger          *infra.Logger
}

// NewDispatcher wires the adapter families. The Dispatcher holds no mutable
// state beyond its immutable collaborators, so concurrent dispatches need no
// locking.
func NewDispatcher(opts Options) *Dispatcher {
	registry := opts.Registry
	if registry == nil {
		registry = DefaultRegistry()
	}
	credentials := opts.Credentials
	if credentials == nil {
		credentials = EnvResolver{}
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	defaultProvider := strings.ToUpper(strings.TrimSpace(opts.DefaultProvider))
	if defaultProvider == "" {
		defaultProvider = "GEMINI"
	}

	gemini := newGeminiClient(withDefault(opts.GeminiBaseURL, "https://generativelanguage.googleapis.com/v1beta"), httpClient, logger)
	openai := newOpenAIClient(withDefault(opts.OpenAIBaseURL, "https://api.openai.com/v1"), httpClient, logger)
	chat := newChatClient(withDefault(opts.OpenRouterBaseURL, "https://openrouter.ai/api/v1"), httpClient, logger)
	replicate := newReplicateClient(withDefault(opts.ReplicateBaseURL, "https://api.replicate.com/v1"), httpClient, logger,
		newPoller(opts.PollInterval, opts.PollMaxAttempts))
	huggingface := newHuggingFaceClient(withDefault(opts.HuggingFaceURL, "https://api-inference.huggingface.co/models"), httpClient, logger)

	return &Dispatcher{
		registry:        registry,
		credentials:     credentials,
		defaultProvider: defaultProvider,
		generators: map[Family]generator{
			FamilyGemini:      gemini,
			FamilyOpenAI:      openai,
			FamilyChat:        chat,
			FamilyReplicate:   replicate,
			FamilyHuggingFace: huggingface,
		},
		analyzers: map[Family]analyzer{
			FamilyGemini: gemini,
			FamilyOpenAI: openai,
			FamilyChat:   chat,
		},
		logger: logger,
	}
}

func withDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

// Registry exposes the immutable provider table.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// CredentialConfigured reports whether a secret resolves for the provider,
// without dispatching anything.
func (d *Dispatcher) CredentialConfigured(ctx context.Context, descriptor ProviderDescriptor) bool {
	_, err := d.credentials.Resolve(ctx, descriptor)
	return err == nil
}

// DispatchGeneration runs one generation attempt. Validation failures are
// rejected before any network call.
func (d *Dispatcher) DispatchGeneration(ctx context.Context, req GenerationRequest) Result {
	descriptor, model, fail := d.resolveTarget(req.Provider, req.Model, false)
	if fail != nil {
		return *fail
	}
	req.Provider = descriptor.ID
	req.Model = model
	if strings.TrimSpace(req.Prompt) == "" {
		return Fail(FailureClientError, descriptor.ID, model, "prompt is required")
	}
	req.Strength = clampStrength(req.Strength)

	credential, err := d.credentials.Resolve(ctx, descriptor)
	if err != nil {
		return d.credentialFailure(descriptor, model, err)
	}

	gen, ok := d.generators[descriptor.Family]
	if !ok {
		return Fail(FailureOutOfService, descriptor.ID, model, "provider %s has no generation adapter", descriptor.ID)
	}

	start := time.Now()
	res := gen.Generate(ctx, credential, model, req)
	d.logResult("generate", res, time.Since(start))
	return res
}

// DispatchAnalysis runs one analysis attempt. Providers without analysis
// support are structurally unusable for this mode and fail as
// out_of_service before any network call.
func (d *Dispatcher) DispatchAnalysis(ctx context.Context, req AnalysisRequest) Result {
	descriptor, model, fail := d.resolveTarget(req.Provider, req.Model, true)
	if fail != nil {
		return *fail
	}
	req.Provider = descriptor.ID
	req.Model = model
	if req.Image == nil {
		return Fail(FailureClientError, descriptor.ID, model, "image is required")
	}
	if !descriptor.CanAnalyze {
		return Fail(FailureOutOfService, descriptor.ID, model, "provider %s does not support image analysis", descriptor.ID)
	}

	credential, err := d.credentials.Resolve(ctx, descriptor)
	if err != nil {
		return d.credentialFailure(descriptor, model, err)
	}

	an, ok := d.analyzers[descriptor.Family]
	if !ok {
		return Fail(FailureOutOfService, descriptor.ID, model, "provider %s has no analysis adapter", descriptor.ID)
	}

	start := time.Now()
	res := an.Analyze(ctx, credential, model, req)
	d.logResult("analyze", res, time.Since(start))
	return res
}

// resolveTarget maps the requested provider and model onto the registry.
// Unknown identifiers are caller faults.
func (d *Dispatcher) resolveTarget(providerID, model string, analysis bool) (ProviderDescriptor, string, *Result) {
	if strings.TrimSpace(providerID) == "" {
		providerID = d.defaultProvider
	}
	descriptor, ok := d.registry.Lookup(providerID)
	if !ok {
		res := Fail(FailureClientError, strings.ToUpper(strings.TrimSpace(providerID)), model,
			"unknown provider %q", providerID)
		return ProviderDescriptor{}, "", &res
	}
	model = strings.TrimSpace(model)
	if model == "" {
		if analysis {
			model = descriptor.DefaultAnalysisModel()
		} else {
			model = descriptor.DefaultModel()
		}
	} else if !descriptor.HasModel(model) {
		res := Fail(FailureClientError, descriptor.ID, model, "unknown model %q for provider %s", model, descriptor.ID)
		return ProviderDescriptor{}, "", &res
	}
	return descriptor, model, nil
}

func (d *Dispatcher) credentialFailure(descriptor ProviderDescriptor, model string, err error) Result {
	if errors.Is(err, ErrMissingCredential) {
		return Fail(FailureOutOfService, descriptor.ID, model,
			"no credential configured for %s (set %s)", descriptor.ID, descriptor.CredentialKey)
	}
	return Fail(FailureOutOfService, descriptor.ID, model, "credential lookup failed: %v", err)
}

func (d *Dispatcher) logResult(op string, res Result, elapsed time.Duration) {
	event := d.logger.Info()
	if !res.Ok() {
		event = d.logger.Warn().Str("failure_kind", string(res.Failure.Kind)).Str("failure_message", res.Failure.Message)
	}
	event.
		Str("op", op).
		Str("provider", res.Provider).
		Str("model", res.Model).
		Dur("elapsed", elapsed).
		Msg("gateway: dispatch finished")
}
