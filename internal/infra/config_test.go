package infra

import (
	"testing"
	"time"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"APP_ENV", "PORT", "DATABASE_URL", "STORAGE_PATH", "STORAGE_BASE_URL",
		"GEOIP_DB_PATH", "ALLOWED_ORIGINS", "DEFAULT_PROVIDER",
		"GEMINI_BASE_URL", "OPENAI_BASE_URL", "OPENROUTER_BASE_URL",
		"REPLICATE_BASE_URL", "HUGGINGFACE_BASE_URL",
		"POLL_INTERVAL_SECONDS", "POLL_MAX_ATTEMPTS", "PROVIDER_TIMEOUT_SECONDS",
		"HTTP_READ_TIMEOUT_SECONDS", "HTTP_WRITE_TIMEOUT_SECONDS",
		"HTTP_IDLE_TIMEOUT_SECONDS", "RATE_LIMIT_PER_MINUTE",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.AppEnv != "development" || cfg.Port != "8080" {
		t.Fatalf("unexpected env/port: %q %q", cfg.AppEnv, cfg.Port)
	}
	if cfg.DefaultProvider != "GEMINI" {
		t.Fatalf("DefaultProvider = %q", cfg.DefaultProvider)
	}
	if cfg.PollInterval != 2*time.Second || cfg.PollMaxAttempts != 60 {
		t.Fatalf("poll defaults = %v / %d", cfg.PollInterval, cfg.PollMaxAttempts)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "http://localhost:3000" {
		t.Fatalf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
	if cfg.DatabaseURL != "" {
		t.Fatalf("DatabaseURL = %q, want empty", cfg.DatabaseURL)
	}
}

func TestLoadConfigInheritsPortInStorageBaseURL(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("PORT", "9090")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.StorageBaseURL != "http://localhost:9090/static" {
		t.Fatalf("StorageBaseURL = %q", cfg.StorageBaseURL)
	}
}

func TestLoadConfigHonorsExplicitStorageBaseURL(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("STORAGE_BASE_URL", "https://cdn.example.com/assets/")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.StorageBaseURL != "https://cdn.example.com/assets" {
		t.Fatalf("StorageBaseURL = %q, want trailing slash trimmed", cfg.StorageBaseURL)
	}
}

func TestLoadConfigPollCeilingNeverZero(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("POLL_MAX_ATTEMPTS", "-5")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.PollMaxAttempts != 60 {
		t.Fatalf("PollMaxAttempts = %d, want default 60", cfg.PollMaxAttempts)
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" http://a.example , ,http://b.example ")
	if len(got) != 2 || got[0] != "http://a.example" || got[1] != "http://b.example" {
		t.Fatalf("splitList = %v", got)
	}
	if got := splitList(""); got != nil {
		t.Fatalf("splitList(\"\") = %v, want nil", got)
	}
}
