// Package config handles the plugin settings surface.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

const (
	appName        = "chattrans"
	configFileName = "config.json"
)

// Translation services.
const (
	ServiceFree       = "free"       // Google web endpoint, no credential
	ServicePaid       = "paid"       // DeepL
	ServiceOpenRouter = "openrouter" // chat models
)

// ValidService reports whether s names a known translation service.
func ValidService(s string) bool {
	switch s {
	case ServiceFree, ServicePaid, ServiceOpenRouter:
		return true
	}
	return false
}

// Language is an ISO 639-1 code, with "auto" allowed on input sides. Older
// versions stored the select-widget object {"value":..,"label":..}; both
// shapes load.
type Language string

func (l *Language) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*l = Language(s)
		return nil
	}
	var obj struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("language is neither a string nor an object")
	}
	*l = Language(obj.Value)
	return nil
}

// Model is one entry of the cached model list. Older versions stored bare id
// strings; both shapes load.
type Model struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (m *Model) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*m = Model{ID: s, Name: s}
		return nil
	}
	type plain Model
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("model is neither a string nor an object")
	}
	if p.Name == "" {
		p.Name = p.ID
	}
	*m = Model(p)
	return nil
}

// Config represents the plugin settings.
type Config struct {
	Service string `json:"service"`

	ReceivedInput  Language `json:"receivedInput"`
	ReceivedOutput Language `json:"receivedOutput"`
	SentInput      Language `json:"sentInput"`
	SentOutput     Language `json:"sentOutput"`

	AutoTranslate bool `json:"autoTranslate"`

	DeeplAPIKey string `json:"deeplApiKey,omitempty"`
	DeeplPro    bool   `json:"deeplPro,omitempty"`

	OpenRouterAPIKey string  `json:"openRouterApiKey,omitempty"`
	OpenRouterModel  string  `json:"openRouterModel,omitempty"`
	OpenRouterPrompt string  `json:"openRouterPrompt,omitempty"`
	OpenRouterModels []Model `json:"openRouterModels,omitempty"`

	// Legacy field (deprecated, kept for migration)
	TargetLanguage Language `json:"targetLanguage,omitempty"`

	path string
}

// Default returns a configuration with defaults applied, bound to the
// default path on the first Save.
func Default() *Config {
	return defaultConfig()
}

// Load reads the configuration from the default location. A missing file
// yields defaults rather than an error.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, fmt.Errorf("get config path: %w", err)
	}
	return LoadFrom(path)
}

// LoadFrom reads the configuration from an explicit path. Later Save calls
// write back to the same path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := defaultConfig()
			cfg.path = path
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.path = path
	cfg.normalize()
	return &cfg, nil
}

// Save persists the configuration to the path it was loaded from.
func (c *Config) Save() error {
	path := c.path
	if path == "" {
		var err error
		if path, err = configPath(); err != nil {
			return fmt.Errorf("get config path: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// LanguagePair resolves the configured source and target languages for a
// direction ("sent" or "received").
func (c *Config) LanguagePair(direction string) (source, target string) {
	if direction == "sent" {
		return string(c.SentInput), string(c.SentOutput)
	}
	return string(c.ReceivedInput), string(c.ReceivedOutput)
}

// SetModels replaces the cached model list and persists.
func (c *Config) SetModels(models []Model) error {
	c.OpenRouterModels = models
	return c.Save()
}

// ─────────────────────────────────────────────────────────────────────────────
// Normalization & Migration
// ─────────────────────────────────────────────────────────────────────────────

// normalize migrates legacy fields and fills defaults so the rest of the
// system never sees a partial or legacy shape.
func (c *Config) normalize() {
	c.migrateTargetLanguage()

	if !ValidService(c.Service) {
		if c.Service != "" {
			slog.Warn("unknown translation service, falling back to free", "service", c.Service)
		}
		c.Service = ServiceFree
	}
	if c.ReceivedInput == "" {
		c.ReceivedInput = "auto"
	}
	if c.ReceivedOutput == "" {
		c.ReceivedOutput = "en"
	}
	if c.SentInput == "" {
		c.SentInput = "auto"
	}
	if c.SentOutput == "" {
		c.SentOutput = "en"
	}
}

// migrateTargetLanguage moves the pre-split single target language into the
// per-direction outputs. The legacy key disappears on the next save.
func (c *Config) migrateTargetLanguage() {
	if c.TargetLanguage == "" {
		return
	}
	if c.ReceivedOutput == "" {
		c.ReceivedOutput = c.TargetLanguage
	}
	if c.SentOutput == "" {
		c.SentOutput = c.TargetLanguage
	}
	c.TargetLanguage = ""
}

func configPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get user config dir: %w", err)
	}
	return filepath.Join(dir, appName, configFileName), nil
}

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.normalize()
	return cfg
}
