package translator

import (
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// languageName renders an ISO code as an English display name for use in
// chat-model prompts ("fr" reads worse than "French" to a model). Unknown
// codes fall back to the code itself.
func languageName(code string) string {
	if code == "" || code == "auto" {
		return code
	}
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return code
}
