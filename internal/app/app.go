// Package app provides the core plugin service bound to the host chat client.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/matty/chattrans/config"
	"github.com/matty/chattrans/history"
	"github.com/matty/chattrans/progress"
	"github.com/matty/chattrans/selection"
	"github.com/matty/chattrans/store"
	"github.com/matty/chattrans/translator"
)

// Service provides the plugin functionality exposed to the host client.
// This struct focuses on orchestration; business logic lives in sub-packages.
type Service struct {
	cfg       *config.Config
	store     store.KV
	history   *history.Store
	progress  *progress.Tracker
	selection *selection.Tracker
	http      *http.Client

	// Host references - set via Init
	msgs   MessageSource
	emitFn func(name string, data any)

	// newProvider overrides backend construction; set by tests.
	newProvider func(service string) translator.Provider

	// Version info (set by caller)
	version string
}

// New creates a new Service. Call Init() once the host hooks are available.
func New(version string) *Service {
	return &Service{version: version}
}

// GetVersion returns the plugin version.
func (s *Service) GetVersion() string {
	return s.version
}

// Init wires the service to the host: message lookup and event emission.
func (s *Service) Init(msgs MessageSource, emit func(name string, data any)) {
	s.msgs = msgs
	s.emitFn = emit

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		cfg = config.Default()
	}
	s.cfg = cfg

	// Open the history store
	s.setupStore()

	s.selection = selection.New()
	s.progress = progress.New(progress.DefaultResetDelay)
	s.progress.Subscribe(func(st progress.State) {
		s.emit(EventProgress, st)
	})

	s.http = &http.Client{}
}

// Shutdown cleans up resources.
func (s *Service) Shutdown() {
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			slog.Error("close history store", "error", err)
		}
	}
}

func (s *Service) setupStore() {
	s.store = s.openStore()
	s.history = history.New(s.store)
}

// openStore opens the durable store under the user config dir, falling back
// to process memory when that fails so translation keeps working without
// persistence.
func (s *Service) openStore() store.KV {
	configDir, err := os.UserConfigDir()
	if err != nil {
		slog.Error("get config dir for history", "error", err)
		return store.NewMemory()
	}

	path := filepath.Join(configDir, "chattrans", "history")
	kv, err := store.OpenBadger(path)
	if err != nil {
		slog.Error("open history store", "error", err, "path", path)
		return store.NewMemory()
	}
	slog.Info("history store opened", "path", path)
	return kv
}

// emit is a safe wrapper around the host event hook.
func (s *Service) emit(name string, data any) {
	if s.emitFn != nil {
		s.emitFn(name, data)
	}
}

// reportError logs a failed operation and surfaces it to the host as a
// transient notification.
func (s *Service) reportError(operation string, err error) error {
	slog.Error(operation, "error", err)
	s.emit(EventError, ErrorEvent{Operation: operation, Message: err.Error()})
	return err
}

// ─────────────────────────────────────────────────────────────────────────────
// Translation History
// ─────────────────────────────────────────────────────────────────────────────

// Translation returns the stored translation for a message, if any.
func (s *Service) Translation(messageID string) (history.Entry, bool) {
	return s.history.Get(messageID)
}

// Translations returns all stored translations, newest first.
func (s *Service) Translations(ctx context.Context) ([]history.Saved, error) {
	return s.history.All(ctx)
}

// DeleteTranslation removes one stored translation.
func (s *Service) DeleteTranslation(ctx context.Context, messageID string) error {
	return s.history.Delete(ctx, messageID)
}

// ClearTranslations removes all stored translations.
func (s *Service) ClearTranslations(ctx context.Context) error {
	return s.history.Clear(ctx)
}

// TranslationCount returns the number of stored translations.
func (s *Service) TranslationCount(ctx context.Context) (int, error) {
	return s.history.Count(ctx)
}

// ─────────────────────────────────────────────────────────────────────────────
// Settings
// ─────────────────────────────────────────────────────────────────────────────

// GetConfig returns a copy of the current settings.
func (s *Service) GetConfig() config.Config {
	return *s.cfg
}

// SetService switches the active translation service.
func (s *Service) SetService(service string) error {
	if !config.ValidService(service) {
		return fmt.Errorf("unknown translation service: %s", service)
	}
	s.cfg.Service = service
	return s.cfg.Save()
}

// SetAutoTranslate toggles translation of outgoing messages.
func (s *Service) SetAutoTranslate(enabled bool) error {
	s.cfg.AutoTranslate = enabled
	return s.cfg.Save()
}

// SetLanguagePair sets the source and target languages for a direction.
func (s *Service) SetLanguagePair(direction translator.Direction, source, target string) error {
	if direction == translator.DirectionSent {
		s.cfg.SentInput, s.cfg.SentOutput = config.Language(source), config.Language(target)
	} else {
		s.cfg.ReceivedInput, s.cfg.ReceivedOutput = config.Language(source), config.Language(target)
	}
	return s.cfg.Save()
}

// SetModel selects the chat model used by the openrouter service.
func (s *Service) SetModel(id string) error {
	s.cfg.OpenRouterModel = id
	return s.cfg.Save()
}

// FillCredentials sets any empty credential fields, leaving configured
// values alone. Used to apply environment credentials at startup; nothing is
// persisted.
func (s *Service) FillCredentials(deeplKey, openRouterKey, openRouterModel string) {
	if s.cfg.DeeplAPIKey == "" {
		s.cfg.DeeplAPIKey = deeplKey
	}
	if s.cfg.OpenRouterAPIKey == "" {
		s.cfg.OpenRouterAPIKey = openRouterKey
	}
	if s.cfg.OpenRouterModel == "" {
		s.cfg.OpenRouterModel = openRouterModel
	}
}
