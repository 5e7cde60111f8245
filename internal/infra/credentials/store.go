package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"server/internal/infra"
	"server/internal/sqlinline"
)

// Known provider identifiers for the token store. Keys are stored
// lower-cased; callers may pass any casing.
const (
	ProviderGemini      = "gemini"
	ProviderOpenAI      = "openai"
	ProviderOpenRouter  = "openrouter"
	ProviderReplicate   = "replicate"
	ProviderHuggingFace = "huggingface"
)

// Store persists provider API keys in the integration_tokens table. It backs
// the gateway's credential chain for deployments where operators prefer
// rotating keys through the database instead of the environment.
type Store struct {
	sql infra.SQLExecutor
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

// Token returns the stored API key for the provider, or the empty string
// when none is configured.
func (s *Store) Token(ctx context.Context, provider string) (string, error) {
	provider = normalizeProvider(provider)
	if provider == "" {
		return "", errors.New("credentials: provider is required")
	}
	row := s.sql.QueryRow(ctx, sqlinline.QSelectIntegrationToken, provider)
	var token string
	if err := row.Scan(&token); err != nil {
		if infra.IsNoRows(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(token), nil
}

// SetToken stores or replaces the API key for the provider.
func (s *Store) SetToken(ctx context.Context, provider, key string) error {
	provider = normalizeProvider(provider)
	if provider == "" {
		return errors.New("credentials: provider is required")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("credentials: api key is required")
	}
	return s.upsert(ctx, provider, key, nil)
}

func (s *Store) upsert(ctx context.Context, provider, token string, props map[string]any) error {
	payload := props
	if payload == nil {
		payload = map[string]any{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = s.sql.Exec(ctx, sqlinline.QUpsertIntegrationToken, provider, token, raw)
	return err
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}
