package transcription

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

var titleCaser = cases.Title(language.English)

// DisplayLanguage renders an engine language value for people. ISO codes
// ("es") become English names ("Spanish"); names ("spanish") are title-cased.
func DisplayLanguage(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if len(raw) <= 3 {
		if tag, err := language.Parse(raw); err == nil {
			if name := display.English.Languages().Name(tag); name != "" {
				return name
			}
		}
	}
	return titleCaser.String(strings.ToLower(raw))
}
