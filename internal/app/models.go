package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/matty/chattrans/config"
	"github.com/matty/chattrans/translator"
)

// ListModels fetches the models available to the chat backend and refreshes
// the cached list in the configuration. When fetching fails, a previously
// cached non-empty list is returned instead so the settings surface still
// has something to offer.
func (s *Service) ListModels(ctx context.Context) ([]translator.Model, error) {
	lister, ok := s.providerFor(config.ServiceOpenRouter).(translator.ModelLister)
	if !ok {
		return nil, fmt.Errorf("service %s does not list models", config.ServiceOpenRouter)
	}

	models, err := lister.ListModels(ctx)
	if err != nil {
		if cached := s.cachedModels(); len(cached) > 0 {
			slog.Warn("list models failed, serving cached list", "error", err, "cached", len(cached))
			return cached, nil
		}
		return nil, s.reportError("list models", err)
	}

	cache := make([]config.Model, len(models))
	for i, m := range models {
		cache[i] = config.Model{ID: m.ID, Name: m.Name}
	}
	if err := s.cfg.SetModels(cache); err != nil {
		slog.Warn("persist model cache", "error", err)
	}
	return models, nil
}

func (s *Service) cachedModels() []translator.Model {
	models := make([]translator.Model, len(s.cfg.OpenRouterModels))
	for i, m := range s.cfg.OpenRouterModels {
		models[i] = translator.Model{ID: m.ID, Name: m.Name}
	}
	return models
}
