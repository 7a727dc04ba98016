package config

import "testing"

func TestCredentialStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()

	store := NewCredentialStore("correct horse battery staple")
	store.Set("OpenAI", "sk-openai")
	store.Set("Anthropic", "sk-ant")

	if err := store.Save(dir); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	reloaded := NewCredentialStore("correct horse battery staple")
	if err := reloaded.Load(dir); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if got := reloaded.Get("OpenAI"); got != "sk-openai" {
		t.Errorf("Get(OpenAI) = %q, want sk-openai", got)
	}
	if got := reloaded.Get("Anthropic"); got != "sk-ant" {
		t.Errorf("Get(Anthropic) = %q, want sk-ant", got)
	}
	if got := reloaded.Get("Unknown"); got != "" {
		t.Errorf("Get(Unknown) = %q, want empty", got)
	}
}

func TestCredentialStoreWrongPassphrase(t *testing.T) {
	dir := t.TempDir()

	store := NewCredentialStore("right")
	store.Set("OpenAI", "sk-secret")
	if err := store.Save(dir); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	intruder := NewCredentialStore("wrong")
	if err := intruder.Load(dir); err == nil {
		t.Fatal("Load() with wrong passphrase succeeded")
	}
}

func TestCredentialStoreMissingFile(t *testing.T) {
	store := NewCredentialStore("pass")
	if err := store.Load(t.TempDir()); err != nil {
		t.Fatalf("Load() with no file should be a no-op, got: %v", err)
	}
	if got := store.Get("OpenAI"); got != "" {
		t.Errorf("Get() on empty store = %q, want empty", got)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q, want :8080", cfg.ListenAddr)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("SCRAPINGAI_ADDR", ":9999")
	t.Setenv("SITE_URL", "https://example.test")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.ListenAddr != ":9999" {
		t.Errorf("ListenAddr = %q, want :9999", cfg.ListenAddr)
	}
	if cfg.SiteURL != "https://example.test" {
		t.Errorf("SiteURL = %q, want override", cfg.SiteURL)
	}
}
