package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/matty/chattrans/config"
	"github.com/matty/chattrans/history"
	"github.com/matty/chattrans/langdetect"
	"github.com/matty/chattrans/translator"
)

// provider returns the backend for the active service.
func (s *Service) provider() translator.Provider {
	return s.providerFor(s.cfg.Service)
}

// providerFor builds the backend for a service. Backends are built per call
// so credential and model edits take effect immediately.
func (s *Service) providerFor(service string) translator.Provider {
	if s.newProvider != nil {
		return s.newProvider(service)
	}

	switch service {
	case config.ServicePaid:
		return translator.NewDeepL(s.cfg.DeeplAPIKey, translator.DeepLOptions{
			Pro:        s.cfg.DeeplPro,
			HTTPClient: s.http,
		})
	case config.ServiceOpenRouter:
		return translator.NewOpenRouter(s.cfg.OpenRouterAPIKey, s.cfg.OpenRouterModel, translator.OpenRouterOptions{
			Prompt:     s.cfg.OpenRouterPrompt,
			HTTPClient: s.http,
		})
	default:
		return translator.NewGoogle(translator.GoogleOptions{HTTPClient: s.http})
	}
}

// TranslateMessage translates one received message and stores the result
// keyed by its id.
func (s *Service) TranslateMessage(ctx context.Context, messageID string) (translator.Result, error) {
	msg, ok := s.msgs.Message(messageID)
	if !ok {
		return translator.Result{}, fmt.Errorf("message not found: %s", messageID)
	}
	if strings.TrimSpace(msg.Content) == "" {
		return translator.Result{}, fmt.Errorf("message %s has no text content", messageID)
	}

	s.progress.Start(0)
	defer s.progress.End()

	source, target := s.cfg.LanguagePair(string(translator.DirectionReceived))
	result, err := s.provider().Translate(ctx, msg.Content, source, target)
	if err != nil {
		return translator.Result{}, s.reportError("translate message", err)
	}

	if err := s.saveResult(ctx, messageID, result); err != nil {
		return translator.Result{}, s.reportError("translate message", err)
	}
	return result, nil
}

// TranslateText translates free-standing text, channel names for example.
// Nothing is persisted.
func (s *Service) TranslateText(ctx context.Context, direction translator.Direction, text string) (translator.Result, error) {
	source, target := s.cfg.LanguagePair(string(direction))
	result, err := s.provider().Translate(ctx, text, source, target)
	if err != nil {
		return translator.Result{}, s.reportError("translate text", err)
	}
	return result, nil
}

// OnBeforeSend optionally rewrites an outgoing message. With auto-translate
// off, or when detection says the text is already in the target language,
// the original passes through unchanged. On translation failure the original
// is returned alongside the error so the message is never lost.
func (s *Service) OnBeforeSend(ctx context.Context, channelID, content string) (string, error) {
	if !s.cfg.AutoTranslate || strings.TrimSpace(content) == "" {
		return content, nil
	}

	source, target := s.cfg.LanguagePair(string(translator.DirectionSent))
	if code, _ := langdetect.Detect(content); code == target {
		slog.Debug("outgoing text already in target language", "channel", channelID, "language", code)
		return content, nil
	}

	result, err := s.provider().Translate(ctx, content, source, target)
	if err != nil {
		return content, s.reportError("translate outgoing message", err)
	}
	return result.Text, nil
}

// saveResult persists a translation, recording the model when a chat
// backend produced it.
func (s *Service) saveResult(ctx context.Context, messageID string, r translator.Result) error {
	entry := history.Entry{Text: r.Text, SourceLanguage: r.SourceLanguage}
	if s.cfg.Service == config.ServiceOpenRouter {
		entry.Model = s.cfg.OpenRouterModel
	}
	if err := s.history.Save(ctx, messageID, entry); err != nil {
		return fmt.Errorf("save translation: %w", err)
	}
	return nil
}

// DetectResult names the detected language of a text.
type DetectResult struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// DetectLanguage detects the language of the given text.
func (s *Service) DetectLanguage(text string) DetectResult {
	code, name := langdetect.Detect(text)
	return DetectResult{Code: code, Name: name}
}
