// Package i18n provides the message catalog for user-facing strings.
// It wraps go-i18n: translation files embedded under locales/ are parsed
// into a bundle once, and lookups go through a package-level localizer.
// Russian is the default language of the site.
package i18n

import (
	"embed"
	"io/fs"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

var bundle *i18n.Bundle

var localizer *i18n.Localizer

// Init parses the embedded locale files and activates the given language.
// Unknown languages fall back to Russian message by message.
func Init(lang string) {
	bundle = i18n.NewBundle(language.Russian)
	bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)

	files, _ := fs.ReadDir(localeFS, "locales")
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		data, _ := localeFS.ReadFile("locales/" + f.Name())
		bundle.ParseMessageFileBytes(data, f.Name())
	}

	localizer = i18n.NewLocalizer(bundle, lang, "ru")
}

// T translates a message by its ID. Unknown IDs come back verbatim so a
// missing translation shows up in the page instead of an empty string.
func T(messageID string) string {
	if localizer == nil {
		Init("ru")
	}
	msg, err := localizer.Localize(&i18n.LocalizeConfig{MessageID: messageID})
	if err != nil {
		return messageID
	}
	return msg
}

// TData translates a message with template data, e.g. {{.Min}}.
func TData(messageID string, data map[string]any) string {
	if localizer == nil {
		Init("ru")
	}
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: data,
	})
	if err != nil {
		return messageID
	}
	return msg
}
