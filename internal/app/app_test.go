package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/matty/chattrans/config"
	"github.com/matty/chattrans/history"
	"github.com/matty/chattrans/progress"
	"github.com/matty/chattrans/selection"
	"github.com/matty/chattrans/store"
	"github.com/matty/chattrans/translator"
)

// fakeSource serves a fixed message set.
type fakeSource struct {
	msgs map[string]Message
}

func (f *fakeSource) Message(id string) (Message, bool) {
	m, ok := f.msgs[id]
	return m, ok
}

func (f *fakeSource) add(id, channel, content string) {
	f.msgs[id] = Message{ID: id, ChannelID: channel, Author: "user", Content: content}
}

type call struct {
	text   string
	source string
	target string
}

// fakeProvider translates by prefixing the input and can be scripted to fail
// on a specific text.
type fakeProvider struct {
	calls  []call
	failOn string
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Translate(_ context.Context, text, source, target string) (translator.Result, error) {
	f.calls = append(f.calls, call{text: text, source: source, target: target})
	if f.failOn != "" && text == f.failOn {
		return translator.Result{}, translator.NewError(translator.KindQuota, "quota exhausted")
	}
	return translator.Result{Text: "t:" + text, SourceLanguage: source}, nil
}

func (f *fakeProvider) texts() []string {
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.text
	}
	return out
}

// fakeBatchProvider adds the combined-request capability. short > 0 caps how
// many results a call returns, mimicking an underdelivering model.
type fakeBatchProvider struct {
	fakeProvider
	batches [][]string
	short   int
}

func (f *fakeBatchProvider) TranslateBatch(_ context.Context, texts []string, source, _ string) ([]translator.Result, error) {
	f.batches = append(f.batches, texts)
	n := len(texts)
	if f.short > 0 && f.short < n {
		n = f.short
	}
	results := make([]translator.Result, n)
	for i := range results {
		results[i] = translator.Result{Text: "t:" + texts[i], SourceLanguage: source}
	}
	return results, nil
}

// fakeLister serves a scripted model list.
type fakeLister struct {
	fakeProvider
	models []translator.Model
	err    error
}

func (f *fakeLister) ListModels(context.Context) ([]translator.Model, error) {
	return f.models, f.err
}

// newTestService builds a Service on in-memory collaborators, with the given
// provider injected for every service name.
func newTestService(t *testing.T, prov translator.Provider) (*Service, *fakeSource) {
	t.Helper()

	cfg, err := config.LoadFrom(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	kv := store.NewMemory()
	src := &fakeSource{msgs: make(map[string]Message)}
	s := &Service{
		cfg:       cfg,
		store:     kv,
		history:   history.New(kv),
		progress:  progress.New(time.Minute), // reset never fires mid-test
		selection: selection.New(),
		msgs:      src,
		newProvider: func(string) translator.Provider {
			return prov
		},
	}
	return s, src
}
