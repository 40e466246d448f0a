package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.API.Port != 5000 {
		t.Errorf("API.Port = %d, want 5000", cfg.API.Port)
	}
	if cfg.LLM.Model != "gemini-2.5-flash" {
		t.Errorf("LLM.Model = %q, want gemini-2.5-flash", cfg.LLM.Model)
	}
	if cfg.Directory.TTLHours != 24 {
		t.Errorf("Directory.TTLHours = %d, want 24", cfg.Directory.TTLHours)
	}
}

func TestLegacyEnvOverrides(t *testing.T) {
	t.Setenv("GENAI_API_KEY", "legacy-gemini-key")
	t.Setenv("MARKETAUX_API_KEY", "legacy-news-key")
	t.Setenv("FMP_API_KEY", "legacy-fmp-key")
	t.Setenv("PORT", "8123")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.LLM.GeminiKey != "legacy-gemini-key" {
		t.Errorf("GeminiKey = %q, want legacy-gemini-key", cfg.LLM.GeminiKey)
	}
	if cfg.Providers.MarketauxKey != "legacy-news-key" {
		t.Errorf("MarketauxKey = %q, want legacy-news-key", cfg.Providers.MarketauxKey)
	}
	if cfg.Providers.FMPKey != "legacy-fmp-key" {
		t.Errorf("FMPKey = %q, want legacy-fmp-key", cfg.Providers.FMPKey)
	}
	if cfg.API.Port != 8123 {
		t.Errorf("API.Port = %d, want 8123", cfg.API.Port)
	}
}

func TestPrefixedEnvWinsOverLegacy(t *testing.T) {
	t.Setenv("GENAI_API_KEY", "legacy")
	t.Setenv("NIVESH_LLM_GEMINI_KEY", "prefixed")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.GeminiKey != "prefixed" {
		t.Errorf("GeminiKey = %q, want prefixed", cfg.LLM.GeminiKey)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
llm:
  gemini_key: file-key
  model: gemini-2.0-flash
api:
  port: 9000
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if cfg.LLM.GeminiKey != "file-key" {
		t.Errorf("GeminiKey = %q, want file-key", cfg.LLM.GeminiKey)
	}
	if cfg.LLM.Model != "gemini-2.0-flash" {
		t.Errorf("Model = %q, want gemini-2.0-flash", cfg.LLM.Model)
	}
	if cfg.API.Port != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.API.Port)
	}
}

func TestCheckAPIKeys(t *testing.T) {
	cfg := &Config{}
	cfg.LLM.GeminiKey = "AIzaSyExampleExampleExample"

	keys := CheckAPIKeys(cfg)
	if len(keys) != 3 {
		t.Fatalf("CheckAPIKeys returned %d entries, want 3", len(keys))
	}

	gemini := keys[0]
	if !gemini.IsSet {
		t.Error("Gemini key should be reported set")
	}
	if gemini.Masked == cfg.LLM.GeminiKey {
		t.Error("masked key must not equal the raw key")
	}

	fmp := keys[2]
	if fmp.IsSet || fmp.Source != KeySourceNone {
		t.Errorf("FMP key should be unset, got %+v", fmp)
	}
}
