// Package i18n renders the user-facing session messages in the configured language.
// Message keys are the English format strings from the messages package; languages
// without a translation fall back to English.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/kongondo/SitesManager-sub001/internal/messages"
)

// DefaultLanguage is used when no language is configured or none matches.
const DefaultLanguage = "en"

var supported = []language.Tag{
	language.English,
	language.German,
}

var translations = map[language.Tag]map[string]string{
	language.German: {
		messages.InstallSuccessFmt:            "%s wurde erfolgreich installiert.",
		messages.CleanupSuccessFmt:            "%s wurde erfolgreich entfernt.",
		messages.CleanupSuccessWithFilesFmt:   "%s und Dateien wurden erfolgreich entfernt.",
		messages.InstallCollisionPagesFmt:     "Diese Seiten existieren bereits: %s",
		messages.InstallCollisionFieldsFmt:    "Diese Felder existieren bereits: %s",
		messages.InstallCollisionTemplatesFmt: "Diese Templates existieren bereits: %s",
		messages.InstallCollisionFilesFmt:     "Diese Dateien existieren bereits im Stammverzeichnis: %s",
	},
}

var builder = newCatalog()

func newCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, entries := range translations {
		for key, msg := range entries {
			// Keys and translations are static; SetString only fails on invalid tags.
			_ = b.SetString(tag, key, msg)
		}
	}
	return b
}

// Localizer formats messages for one language.
type Localizer struct {
	tag     language.Tag
	printer *message.Printer
}

// New returns a Localizer for the best supported match of lang. Unknown or empty
// values select English.
func New(lang string) *Localizer {
	tag := language.English
	if lang != "" {
		matcher := language.NewMatcher(supported)
		_, index := language.MatchStrings(matcher, lang)
		tag = supported[index]
	}
	return &Localizer{tag: tag, printer: message.NewPrinter(tag, message.Catalog(builder))}
}

// Language returns the BCP 47 tag in use.
func (l *Localizer) Language() string {
	return l.tag.String()
}

// Sprintf formats key in the localizer's language.
func (l *Localizer) Sprintf(key string, args ...any) string {
	if l == nil {
		return New(DefaultLanguage).Sprintf(key, args...)
	}
	return l.printer.Sprintf(key, args...)
}

// Supported lists the supported language tags.
func Supported() []string {
	out := make([]string, 0, len(supported))
	for _, tag := range supported {
		out = append(out, tag.String())
	}
	return out
}
