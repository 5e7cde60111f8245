package gateway

import (
	"context"
	"errors"
	"os"
	"strings"
)

// ErrMissingCredential indicates the selected provider has no secret
// configured. It is a first-class state, mapped to out_of_service by the
// dispatcher, never surfaced as an unrecoverable fault.
var ErrMissingCredential = errors.New("gateway: credential not configured")

// CredentialResolver looks up the secret for a provider. Implementations
// return ErrMissingCredential when no secret is configured.
type CredentialResolver interface {
	Resolve(ctx context.Context, descriptor ProviderDescriptor) (string, error)
}

// EnvResolver resolves credentials from the process environment using the
// descriptor's credential key.
type EnvResolver struct{}

// Resolve fulfils the CredentialResolver interface.
func (EnvResolver) Resolve(_ context.Context, descriptor ProviderDescriptor) (string, error) {
	secret := strings.TrimSpace(os.Getenv(descriptor.CredentialKey))
	if secret == "" {
		return "", ErrMissingCredential
	}
	return secret, nil
}

// TokenStore is the subset of the integration-token store the gateway needs.
type TokenStore interface {
	Token(ctx context.Context, provider string) (string, error)
}

// StoreResolver resolves credentials from a DB-backed token store keyed by
// the lower-cased provider identifier.
type StoreResolver struct {
	Store TokenStore
}

// Resolve fulfils the CredentialResolver interface.
func (s StoreResolver) Resolve(ctx context.Context, descriptor ProviderDescriptor) (string, error) {
	if s.Store == nil {
		return "", ErrMissingCredential
	}
	token, err := s.Store.Token(ctx, strings.ToLower(descriptor.ID))
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(token) == "" {
		return "", ErrMissingCredential
	}
	return strings.TrimSpace(token), nil
}

// ChainResolver tries each resolver in order and returns the first configured
// secret. The chain reports ErrMissingCredential only when every link does.
type ChainResolver []CredentialResolver

// Resolve fulfils the CredentialResolver interface.
func (c ChainResolver) Resolve(ctx context.Context, descriptor ProviderDescriptor) (string, error) {
	for _, r := range c {
		secret, err := r.Resolve(ctx, descriptor)
		if err == nil {
			return secret, nil
		}
		if !errors.Is(err, ErrMissingCredential) {
			return "", err
		}
	}
	return "", ErrMissingCredential
}
