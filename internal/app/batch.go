package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/matty/chattrans/translator"
)

// ─────────────────────────────────────────────────────────────────────────────
// Selection
// ─────────────────────────────────────────────────────────────────────────────

// ToggleSelection flips selection mode and reports the new state.
func (s *Service) ToggleSelection() bool {
	active := s.selection.Toggle()
	s.emitSelection()
	return active
}

// ExitSelection leaves selection mode regardless of the current state.
func (s *Service) ExitSelection() {
	s.selection.Exit()
	s.emitSelection()
}

// SelectMessage toggles a message's membership in the current selection and
// reports whether the message is now selected.
func (s *Service) SelectMessage(messageID, channelID string) bool {
	selected := s.selection.Select(messageID, channelID)
	s.emitSelection()
	return selected
}

// SelectionActive reports whether selection mode is on.
func (s *Service) SelectionActive() bool {
	return s.selection.Active()
}

// SelectionCount returns the number of selected messages.
func (s *Service) SelectionCount() int {
	return s.selection.Count()
}

// IsSelected reports whether a message is part of the current selection.
func (s *Service) IsSelected(messageID string) bool {
	return s.selection.IsSelected(messageID)
}

func (s *Service) emitSelection() {
	s.emit(EventSelection, SelectionEvent{
		Active:    s.selection.Active(),
		ChannelID: s.selection.Channel(),
		Count:     s.selection.Count(),
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// Batch Translation
// ─────────────────────────────────────────────────────────────────────────────

// TranslateSelected translates every selected message in selection order.
// Messages go through one at a time, never concurrently; a failure stops the
// run and later items are not attempted. Batch-capable backends get one
// combined request instead. Selection mode is exited and progress ended no
// matter how the run finishes.
func (s *Service) TranslateSelected(ctx context.Context) error {
	channelID, ids := s.selection.Snapshot()
	defer s.ExitSelection()

	if len(ids) == 0 {
		return nil
	}

	run := uuid.NewString()[:8]
	log := slog.With("run", run, "channel", channelID)

	// Resolve ids to current content; deleted or edited-empty messages drop out.
	type item struct {
		id   string
		text string
	}
	items := make([]item, 0, len(ids))
	for _, id := range ids {
		msg, ok := s.msgs.Message(id)
		if !ok || strings.TrimSpace(msg.Content) == "" {
			log.Debug("skipping message without text", "message", id)
			continue
		}
		items = append(items, item{id: id, text: msg.Content})
	}
	if len(items) == 0 {
		return nil
	}

	log.Info("batch translation started", "selected", len(ids), "translating", len(items))

	s.progress.Start(len(items))
	defer s.progress.End()

	prov := s.provider()
	source, target := s.cfg.LanguagePair(string(translator.DirectionReceived))

	if batch, ok := prov.(translator.BatchProvider); ok {
		texts := make([]string, len(items))
		for i, it := range items {
			texts[i] = it.text
		}

		results, err := batch.TranslateBatch(ctx, texts, source, target)
		if err != nil {
			return s.reportError("batch translate", err)
		}
		for i, r := range results {
			if err := s.saveResult(ctx, items[i].id, r); err != nil {
				return s.reportError("batch translate", err)
			}
			s.progress.Advance()
		}
		log.Info("batch translation finished", "translated", len(results))
		return nil
	}

	for i, it := range items {
		result, err := prov.Translate(ctx, it.text, source, target)
		if err != nil {
			log.Warn("batch stopped on failure", "message", it.id, "done", i)
			return s.reportError("batch translate", fmt.Errorf("translate message %s: %w", it.id, err))
		}
		if err := s.saveResult(ctx, it.id, result); err != nil {
			return s.reportError("batch translate", err)
		}
		s.progress.Advance()
	}

	log.Info("batch translation finished", "translated", len(items))
	return nil
}
