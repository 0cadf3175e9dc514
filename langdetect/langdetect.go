// Package langdetect identifies the language of chat text. Detection backs
// the detect command and lets auto-translate skip text already written in
// the target language.
package langdetect

import (
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"
)

// The detector loads language models for every supported language, so it is
// built once, on first use.
var detector = sync.OnceValue(func() lingua.LanguageDetector {
	return lingua.NewLanguageDetectorBuilder().
		FromAllLanguages().
		Build()
})

// Detect returns the ISO 639-1 code and English name of the language of
// text, or ("auto", "Unknown") when there is nothing to go on.
func Detect(text string) (code, name string) {
	if strings.TrimSpace(text) == "" {
		return "auto", "Unknown"
	}
	lang, ok := detector().DetectLanguageOf(text)
	if !ok {
		return "auto", "Unknown"
	}
	return strings.ToLower(lang.IsoCode639_1().String()), lang.String()
}
