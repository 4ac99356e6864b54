package sportsfeed

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys double as the English text.
const (
	msgSuccess = "Sport code: %d, Successful result: %s"
	msgError   = "Error code: %d, Error type: %s"
	msgAd      = "Ad click. Sending data to server..."
	msgResult  = "Result: %s"
	msgWarning = "WARNING: %s"
)

var supportedLocales = []language.Tag{language.English, language.Spanish}

var translations = map[language.Tag]map[string]string{
	language.English: {
		msgSuccess: msgSuccess,
		msgError:   msgError,
		msgAd:      msgAd,
		msgResult:  msgResult,
		msgWarning: msgWarning,
	},
	language.Spanish: {
		msgSuccess: "Codigo Deporte: %d, Resultado Correcto: %s",
		msgError:   "Codigo Error: %d, Tipo del Error: %s",
		msgAd:      "Clic en anuncio. Enviando datos al servidor...",
		msgResult:  "Resultado: %s",
		msgWarning: "ADVERTENCIA: %s",
	},
}

func newCatalog() (catalog.Catalog, error) {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, msgs := range translations {
		for key, text := range msgs {
			if err := b.SetString(tag, key, text); err != nil {
				return nil, fmt.Errorf("catalog %s %q: %w", tag, key, err)
			}
		}
	}
	return b, nil
}

// newPrinter returns a printer for the closest supported locale.
// Unknown but well-formed locales fall back to English.
func newPrinter(locale string) (*message.Printer, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidLocale, locale, err)
	}

	cat, err := newCatalog()
	if err != nil {
		return nil, err
	}

	_, idx, _ := language.NewMatcher(supportedLocales).Match(tag)
	return message.NewPrinter(supportedLocales[idx], message.Catalog(cat)), nil
}
