package gateway

import (
	"context"
	"errors"
	"testing"
)

type mapTokenStore map[string]string

func (m mapTokenStore) Token(_ context.Context, provider string) (string, error) {
	return m[provider], nil
}

type failingTokenStore struct{ err error }

func (f failingTokenStore) Token(context.Context, string) (string, error) {
	return "", f.err
}

func TestEnvResolver(t *testing.T) {
	descriptor := ProviderDescriptor{ID: "GEMINI", CredentialKey: "TEST_GEMINI_KEY"}

	t.Setenv("TEST_GEMINI_KEY", "  secret-123  ")
	secret, err := EnvResolver{}.Resolve(context.Background(), descriptor)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if secret != "secret-123" {
		t.Fatalf("secret = %q", secret)
	}

	t.Setenv("TEST_GEMINI_KEY", "")
	if _, err := (EnvResolver{}).Resolve(context.Background(), descriptor); !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("err = %v, want ErrMissingCredential", err)
	}
}

func TestStoreResolverLowercasesProviderID(t *testing.T) {
	store := mapTokenStore{"replicate": "r8_token"}
	resolver := StoreResolver{Store: store}
	secret, err := resolver.Resolve(context.Background(), ProviderDescriptor{ID: "REPLICATE"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if secret != "r8_token" {
		t.Fatalf("secret = %q", secret)
	}
}

func TestChainResolverFallsThroughMissing(t *testing.T) {
	descriptor := ProviderDescriptor{ID: "OPENAI", CredentialKey: "TEST_CHAIN_OPENAI_KEY"}
	chain := ChainResolver{
		EnvResolver{},
		StoreResolver{Store: mapTokenStore{"openai": "db-secret"}},
	}

	t.Setenv("TEST_CHAIN_OPENAI_KEY", "")
	secret, err := chain.Resolve(context.Background(), descriptor)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if secret != "db-secret" {
		t.Fatalf("secret = %q, want store fallback", secret)
	}

	t.Setenv("TEST_CHAIN_OPENAI_KEY", "env-secret")
	secret, err = chain.Resolve(context.Background(), descriptor)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if secret != "env-secret" {
		t.Fatalf("secret = %q, want environment to win", secret)
	}
}

func TestChainResolverPropagatesStoreErrors(t *testing.T) {
	boom := errors.New("connection refused")
	chain := ChainResolver{StoreResolver{Store: failingTokenStore{err: boom}}}
	if _, err := chain.Resolve(context.Background(), ProviderDescriptor{ID: "GEMINI"}); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want store error", err)
	}
}

func TestChainResolverEmptyReportsMissing(t *testing.T) {
	if _, err := (ChainResolver{}).Resolve(context.Background(), ProviderDescriptor{ID: "GEMINI"}); !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("err = %v, want ErrMissingCredential", err)
	}
}
