// Package config handles configuration loading for Nivesh.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	LLM       LLMConfig       `mapstructure:"llm"       yaml:"llm"`
	Providers ProvidersConfig `mapstructure:"providers" yaml:"providers"`
	Directory DirectoryConfig `mapstructure:"directory" yaml:"directory"`
	API       APIConfig       `mapstructure:"api"       yaml:"api"`
}

// LLMConfig holds LLM provider configuration.
type LLMConfig struct {
	GeminiKey string `mapstructure:"gemini_key" yaml:"gemini_key"`
	Model     string `mapstructure:"model"      yaml:"model"`
}

// ProvidersConfig holds market-data and news provider credentials.
type ProvidersConfig struct {
	// FMPKey enables the primary fundamentals provider. When empty the
	// fetcher falls back to Yahoo Finance.
	FMPKey string `mapstructure:"fmp_key" yaml:"fmp_key"`
	// MarketauxKey enables the Marketaux news provider. When empty the
	// news fetcher falls back to public RSS feeds.
	MarketauxKey string `mapstructure:"marketaux_key" yaml:"marketaux_key"`
}

// DirectoryConfig holds ticker directory cache settings.
type DirectoryConfig struct {
	TTLHours int `mapstructure:"ttl_hours" yaml:"ttl_hours"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.nivesh/config.yaml (home directory)
//  3. /etc/nivesh/config.yaml (system)
//
// Environment variables override config file values.
// Format: NIVESH_<SECTION>_<KEY>, e.g., NIVESH_LLM_GEMINI_KEY.
// The legacy plain names GENAI_API_KEY, MARKETAUX_API_KEY, FMP_API_KEY
// and PORT are also recognized for deployment compatibility.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".nivesh"))
	v.AddConfigPath("/etc/nivesh")

	v.SetEnvPrefix("NIVESH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found — that's fine, use defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("NIVESH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.model", "gemini-2.5-flash")

	v.SetDefault("directory.ttl_hours", 24)

	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 5000)
	v.SetDefault("api.cors_origins", []string{"*"})
}

// overrideFromEnv explicitly reads sensitive keys from environment
// variables, preferring the prefixed names over the legacy plain names.
func overrideFromEnv(cfg *Config) {
	if key := firstEnv("NIVESH_LLM_GEMINI_KEY", "GENAI_API_KEY"); key != "" {
		cfg.LLM.GeminiKey = key
	}
	if key := firstEnv("NIVESH_PROVIDERS_MARKETAUX_KEY", "MARKETAUX_API_KEY"); key != "" {
		cfg.Providers.MarketauxKey = key
	}
	if key := firstEnv("NIVESH_PROVIDERS_FMP_KEY", "FMP_API_KEY"); key != "" {
		cfg.Providers.FMPKey = key
	}
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil && p > 0 {
			cfg.API.Port = p
		}
	}
}

// firstEnv returns the first non-empty value among the named variables.
func firstEnv(names ...string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
