package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromMissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Service != ServiceFree {
		t.Errorf("Service = %q, want %q", cfg.Service, ServiceFree)
	}
	if cfg.ReceivedInput != "auto" || cfg.SentInput != "auto" {
		t.Errorf("input languages = %q/%q, want auto/auto", cfg.ReceivedInput, cfg.SentInput)
	}
	if cfg.ReceivedOutput != "en" || cfg.SentOutput != "en" {
		t.Errorf("output languages = %q/%q, want en/en", cfg.ReceivedOutput, cfg.SentOutput)
	}
	if cfg.AutoTranslate {
		t.Error("AutoTranslate = true, want false by default")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	cfg.Service = ServiceOpenRouter
	cfg.ReceivedOutput = "de"
	cfg.OpenRouterAPIKey = "sk-or-v1-x"
	cfg.OpenRouterModel = "meta-llama/llama-3-8b"
	cfg.OpenRouterModels = []Model{{ID: "a/b", Name: "AB"}}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("reload error = %v", err)
	}
	if loaded.Service != ServiceOpenRouter {
		t.Errorf("Service = %q, want %q", loaded.Service, ServiceOpenRouter)
	}
	if loaded.ReceivedOutput != "de" {
		t.Errorf("ReceivedOutput = %q, want de", loaded.ReceivedOutput)
	}
	if loaded.OpenRouterModel != "meta-llama/llama-3-8b" {
		t.Errorf("OpenRouterModel = %q", loaded.OpenRouterModel)
	}
	if len(loaded.OpenRouterModels) != 1 || loaded.OpenRouterModels[0].Name != "AB" {
		t.Errorf("OpenRouterModels = %+v", loaded.OpenRouterModels)
	}
}

func TestLanguagePair(t *testing.T) {
	cfg := &Config{
		ReceivedInput:  "auto",
		ReceivedOutput: "en",
		SentInput:      "en",
		SentOutput:     "ja",
	}

	tests := []struct {
		name       string
		direction  string
		wantSource string
		wantTarget string
	}{
		{name: "received", direction: "received", wantSource: "auto", wantTarget: "en"},
		{name: "sent", direction: "sent", wantSource: "en", wantTarget: "ja"},
		{name: "anything else reads as received", direction: "", wantSource: "auto", wantTarget: "en"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source, target := cfg.LanguagePair(tt.direction)
			if source != tt.wantSource || target != tt.wantTarget {
				t.Errorf("LanguagePair(%q) = %q/%q, want %q/%q",
					tt.direction, source, target, tt.wantSource, tt.wantTarget)
			}
		})
	}
}

func TestSetModelsPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := cfg.SetModels([]Model{{ID: "x/y", Name: "XY"}}); err != nil {
		t.Fatalf("SetModels() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal written config: %v", err)
	}
	if _, ok := raw["openRouterModels"]; !ok {
		t.Error("openRouterModels missing from saved config")
	}
}
