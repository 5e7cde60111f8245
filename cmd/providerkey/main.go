// Command providerkey stores a provider API key in the integration token
// table so the gateway can resolve it without environment variables.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"server/internal/infra"
	"server/internal/infra/credentials"
)

// envKeys maps each provider onto the environment variable consulted when
// -key is omitted. It mirrors the gateway registry's credential keys.
var envKeys = map[string]string{
	credentials.ProviderGemini:      "GEMINI_API_KEY",
	credentials.ProviderOpenAI:      "OPENAI_API_KEY",
	credentials.ProviderOpenRouter:  "OPENROUTER_API_KEY",
	credentials.ProviderReplicate:   "REPLICATE_API_TOKEN",
	credentials.ProviderHuggingFace: "HUGGINGFACE_API_KEY",
}

func main() {
	var (
		keyFlag      string
		providerFlag string
		showFlag     bool
	)
	flag.StringVar(&keyFlag, "key", "", "API key for the selected provider (fallbacks to environment)")
	flag.StringVar(&providerFlag, "provider", credentials.ProviderGemini, "Provider to configure (gemini, openai, openrouter, replicate, huggingface)")
	flag.BoolVar(&showFlag, "show", false, "Print the stored key (masked) instead of writing one")
	flag.Parse()

	provider := strings.TrimSpace(strings.ToLower(providerFlag))
	if provider == "" {
		provider = credentials.ProviderGemini
	}
	envKey, ok := envKeys[provider]
	if !ok {
		fmt.Fprintf(os.Stderr, "unsupported provider %q\n", providerFlag)
		os.Exit(1)
	}

	key := strings.TrimSpace(keyFlag)
	if key == "" && !showFlag {
		key = strings.TrimSpace(os.Getenv(envKey))
	}
	if key == "" && !showFlag {
		fmt.Fprintf(os.Stderr, "%s API key is required via -key or %s\n", strings.ToUpper(provider), envKey)
		os.Exit(1)
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create pool: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	logger := infra.NewLogger("cli").With().Str("cmd", "providerkey").Str("provider", provider).Logger()
	store := credentials.NewStore(infra.NewSQLRunner(pool, logger))

	ctxExec, cancelExec := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelExec()

	if showFlag {
		token, err := store.Token(ctxExec, provider)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to read %s api key: %v\n", provider, err)
			os.Exit(1)
		}
		if token == "" {
			fmt.Printf("%s: no key stored\n", strings.ToUpper(provider))
			return
		}
		fmt.Printf("%s: %s\n", strings.ToUpper(provider), maskKey(token))
		return
	}

	if err := store.SetToken(ctxExec, provider, key); err != nil {
		fmt.Fprintf(os.Stderr, "failed to persist %s api key: %v\n", provider, err)
		os.Exit(1)
	}

	fmt.Printf("%s API key stored successfully\n", strings.ToUpper(provider))
}

func maskKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
