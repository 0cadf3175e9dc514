// Package translator provides the translation backends: the free Google
// web endpoint, the DeepL API, and OpenRouter chat models.
package translator

import "context"

// Direction says whether text is translated on receipt or before sending.
// It selects which configured language pair applies.
type Direction string

const (
	DirectionReceived Direction = "received"
	DirectionSent     Direction = "sent"
)

// SourceLLM is the sourceLanguage sentinel reported by chat-model backends,
// which do not detect the source language.
const SourceLLM = "LLM"

// Result is a single translation.
type Result struct {
	Text           string `json:"text"`
	SourceLanguage string `json:"sourceLanguage"`
}

// Provider performs single translations. Language codes are ISO 639-1;
// source may be "auto" where the backend supports detection.
type Provider interface {
	Name() string
	Translate(ctx context.Context, text, source, target string) (Result, error)
}

// BatchProvider is an optional capability: translate several texts in one
// upstream request. The returned slice matches the input by position but may
// be shorter when the upstream reply covered fewer items.
type BatchProvider interface {
	Provider
	TranslateBatch(ctx context.Context, texts []string, source, target string) ([]Result, error)
}

// Model identifies a selectable chat model.
type Model struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ModelLister is an optional capability: enumerate the models a backend can
// translate with, sorted by display name.
type ModelLister interface {
	ListModels(ctx context.Context) ([]Model, error)
}
