// Package config manages global (~/.config/shoprec/config.toml) and
// per-shop (.shoprec/config.toml) configuration for shoprec.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// GlobalConfig holds user-wide settings.
type GlobalConfig struct {
	DefaultModel string       `toml:"default_model"`
	Keys         KeysConfig   `toml:"keys"`
	Ollama       OllamaConfig `toml:"ollama"`
	Engine       EngineConfig `toml:"engine"`
	Pitch        PitchConfig  `toml:"pitch"`
	Output       OutputConfig `toml:"output"`
}

type KeysConfig struct {
	Anthropic string `toml:"anthropic"`
	OpenAI    string `toml:"openai"`
}

type OllamaConfig struct {
	Host            string `toml:"host"`
	CompletionModel string `toml:"completion_model"`
}

// EngineConfig tunes the recommendation core.
type EngineConfig struct {
	CacheTTLMinutes int    `toml:"cache_ttl_minutes"`
	DefaultLimit    int    `toml:"default_limit"`
	Mode            string `toml:"mode"` // "ranked" or "single"
}

// CacheTTL returns the configured TTL as a duration.
func (e EngineConfig) CacheTTL() time.Duration {
	return time.Duration(e.CacheTTLMinutes) * time.Minute
}

// PitchConfig controls LLM sales-pitch generation.
type PitchConfig struct {
	MaxTokens    int     `toml:"max_tokens"`
	Temperature  float64 `toml:"temperature"`
	PromptBudget int     `toml:"prompt_budget"` // tokens allowed for the product context block
}

type OutputConfig struct {
	Stream bool `toml:"stream"`
	Color  bool `toml:"color"`
}

// ShopConfig holds per-shop overrides stored in .shoprec/config.toml.
type ShopConfig struct {
	DefaultModel string   `toml:"default_model"`
	Shop         ShopMeta `toml:"shop"`
}

type ShopMeta struct {
	Name    string `toml:"name"`
	BaseURL string `toml:"base_url"` // prefixed to product handles when printing links
}

// DefaultGlobal returns sensible defaults.
func DefaultGlobal() GlobalConfig {
	return GlobalConfig{
		DefaultModel: "claude",
		Ollama: OllamaConfig{
			Host:            "http://localhost:11434",
			CompletionModel: "llama3.2",
		},
		Engine: EngineConfig{
			CacheTTLMinutes: 5,
			DefaultLimit:    3,
			Mode:            "ranked",
		},
		Pitch: PitchConfig{
			MaxTokens:    512,
			Temperature:  0.7,
			PromptBudget: 1500,
		},
		Output: OutputConfig{
			Stream: true,
			Color:  true,
		},
	}
}

// GlobalConfigPath returns the path to the global config file.
func GlobalConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "shoprec", "config.toml"), nil
}

// LoadGlobal loads the global config, applying defaults for any missing values.
func LoadGlobal() (GlobalConfig, error) {
	cfg := DefaultGlobal()

	path, err := GlobalConfigPath()
	if err != nil {
		return cfg, nil // Return defaults if we can't determine home dir.
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil // File doesn't exist yet — use defaults.
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("config: load global: %w", err)
	}

	// Let env vars override config file API keys.
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		cfg.Keys.Anthropic = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Keys.OpenAI = v
	}

	return cfg, nil
}

// SaveGlobal writes the global config to disk.
func SaveGlobal(cfg GlobalConfig) error {
	path, err := GlobalConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: mkdir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("config: create global config: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// LoadShop loads .shoprec/config.toml from the given shop root.
func LoadShop(root string) (ShopConfig, error) {
	var cfg ShopConfig
	path := filepath.Join(root, ".shoprec", "config.toml")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("config: load shop: %w", err)
	}
	return cfg, nil
}

// SaveShop writes the shop config to .shoprec/config.toml.
func SaveShop(root string, cfg ShopConfig) error {
	dir := filepath.Join(root, ".shoprec")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("config: mkdir shop: %w", err)
	}

	path := filepath.Join(dir, "config.toml")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("config: create shop config: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// Load returns the effective config for a shop root (global merged with
// shop overrides).
func Load(root string) (GlobalConfig, error) {
	global, err := LoadGlobal()
	if err != nil {
		global = DefaultGlobal()
	}

	shop, err := LoadShop(root)
	if err == nil && shop.DefaultModel != "" {
		global.DefaultModel = shop.DefaultModel
	}

	return global, nil
}

// ShopDBPath returns the path to the shop's SQLite database.
func ShopDBPath(root string) string {
	return filepath.Join(root, ".shoprec", "shoprec.db")
}

// RulesPath returns the path to the shop's trigger-rule table.
func RulesPath(root string) string {
	return filepath.Join(root, ".shoprec", "rules.toml")
}

// ShopConfigDirPath returns the path to the shop's .shoprec/ directory.
func ShopConfigDirPath(root string) string {
	return filepath.Join(root, ".shoprec")
}
