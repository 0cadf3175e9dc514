package app

import (
	"context"
	"testing"

	"github.com/matty/chattrans/config"
	"github.com/matty/chattrans/translator"
)

func TestTranslateMessagePersists(t *testing.T) {
	prov := &fakeProvider{}
	s, src := newTestService(t, prov)
	src.add("m1", "ch1", "bonjour")

	result, err := s.TranslateMessage(context.Background(), "m1")
	if err != nil {
		t.Fatalf("TranslateMessage() error = %v", err)
	}
	if result.Text != "t:bonjour" {
		t.Errorf("Text = %q, want %q", result.Text, "t:bonjour")
	}

	entry, ok := s.Translation("m1")
	if !ok {
		t.Fatal("translation missing from history")
	}
	if entry.Text != "t:bonjour" || entry.Model != "" {
		t.Errorf("entry = %+v", entry)
	}
}

func TestTranslateMessageRecordsModel(t *testing.T) {
	s, src := newTestService(t, &fakeProvider{})
	s.cfg.Service = config.ServiceOpenRouter
	s.cfg.OpenRouterModel = "meta-llama/llama-3-8b"
	src.add("m1", "ch1", "hi")

	if _, err := s.TranslateMessage(context.Background(), "m1"); err != nil {
		t.Fatalf("TranslateMessage() error = %v", err)
	}

	entry, _ := s.Translation("m1")
	if entry.Model != "meta-llama/llama-3-8b" {
		t.Errorf("Model = %q, want the configured model", entry.Model)
	}
}

func TestTranslateMessageUnavailable(t *testing.T) {
	tests := []struct {
		name  string
		id    string
		setup func(*fakeSource)
	}{
		{name: "unknown id", id: "missing", setup: func(*fakeSource) {}},
		{name: "whitespace content", id: "m1", setup: func(f *fakeSource) { f.add("m1", "ch1", "   ") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prov := &fakeProvider{}
			s, src := newTestService(t, prov)
			tt.setup(src)

			if _, err := s.TranslateMessage(context.Background(), tt.id); err == nil {
				t.Error("TranslateMessage() error = nil, want failure")
			}
			if len(prov.calls) != 0 {
				t.Errorf("provider calls = %v, want none", prov.texts())
			}
		})
	}
}

func TestTranslateFailureEmitsErrorEvent(t *testing.T) {
	s, src := newTestService(t, &fakeProvider{failOn: "hola"})

	var events []ErrorEvent
	s.emitFn = func(name string, data any) {
		if name == EventError {
			events = append(events, data.(ErrorEvent))
		}
	}
	src.add("m1", "ch1", "hola")

	if _, err := s.TranslateMessage(context.Background(), "m1"); err == nil {
		t.Fatal("TranslateMessage() error = nil, want failure")
	}

	if len(events) != 1 || events[0].Operation != "translate message" {
		t.Errorf("error events = %+v, want one translate message event", events)
	}
	if n, _ := s.TranslationCount(context.Background()); n != 0 {
		t.Errorf("TranslationCount() = %d, want nothing persisted", n)
	}
}

func TestTranslateTextLeavesHistoryAlone(t *testing.T) {
	s, _ := newTestService(t, &fakeProvider{})

	result, err := s.TranslateText(context.Background(), translator.DirectionReceived, "general-chat")
	if err != nil {
		t.Fatalf("TranslateText() error = %v", err)
	}
	if result.Text != "t:general-chat" {
		t.Errorf("Text = %q, want %q", result.Text, "t:general-chat")
	}
	if n, _ := s.TranslationCount(context.Background()); n != 0 {
		t.Errorf("TranslationCount() = %d, want 0", n)
	}
}

func TestTranslateTextUsesDirectionPair(t *testing.T) {
	prov := &fakeProvider{}
	s, _ := newTestService(t, prov)
	s.cfg.SentInput = "en"
	s.cfg.SentOutput = "ja"

	if _, err := s.TranslateText(context.Background(), translator.DirectionSent, "good morning"); err != nil {
		t.Fatalf("TranslateText() error = %v", err)
	}

	got := prov.calls[0]
	if got.source != "en" || got.target != "ja" {
		t.Errorf("pair = %s/%s, want en/ja", got.source, got.target)
	}
}

func TestOnBeforeSend(t *testing.T) {
	tests := []struct {
		name          string
		autoTranslate bool
		content       string
		failOn        string
		want          string
		wantErr       bool
		wantCalls     int
	}{
		{
			name:          "auto-translate off passes through",
			autoTranslate: false,
			content:       "hola amigos",
			want:          "hola amigos",
		},
		{
			name:          "translates outgoing text",
			autoTranslate: true,
			content:       "hola amigos",
			want:          "t:hola amigos",
			wantCalls:     1,
		},
		{
			name:          "already in target language",
			autoTranslate: true,
			content:       "The committee will publish the final report tomorrow morning.",
			want:          "The committee will publish the final report tomorrow morning.",
		},
		{
			name:          "failure returns the original",
			autoTranslate: true,
			content:       "hola amigos",
			failOn:        "hola amigos",
			want:          "hola amigos",
			wantErr:       true,
			wantCalls:     1,
		},
		{
			name:          "blank content passes through",
			autoTranslate: true,
			content:       "   ",
			want:          "   ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prov := &fakeProvider{failOn: tt.failOn}
			s, _ := newTestService(t, prov)
			s.cfg.AutoTranslate = tt.autoTranslate

			got, err := s.OnBeforeSend(context.Background(), "ch1", tt.content)
			if (err != nil) != tt.wantErr {
				t.Fatalf("OnBeforeSend() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("OnBeforeSend() = %q, want %q", got, tt.want)
			}
			if len(prov.calls) != tt.wantCalls {
				t.Errorf("provider calls = %d, want %d", len(prov.calls), tt.wantCalls)
			}
		})
	}
}

func TestDetectLanguage(t *testing.T) {
	s, _ := newTestService(t, &fakeProvider{})

	got := s.DetectLanguage("Le gouvernement a annoncé une réforme majeure du système éducatif hier soir.")
	if got.Code != "fr" || got.Name != "French" {
		t.Errorf("DetectLanguage() = %+v, want fr/French", got)
	}

	if got := s.DetectLanguage(""); got.Code != "auto" {
		t.Errorf("DetectLanguage(empty) = %+v, want auto", got)
	}
}
