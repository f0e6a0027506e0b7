// Package translate localises the user visible strings of vurec.
//
// Messages are keyed by their en-US Sprintf() format. Other languages are
// registered from the catalog; a message missing from the catalog prints
// as written.
package translate

import (
	"log"
	"maps"
	"slices"
	"strings"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DEFAULT_LOCALE is used when the host reports no locale.
const DEFAULT_LOCALE = "en-US"

var printer *message.Printer

func init() {
	err := register(catalog)
	if err != nil {
		log.Printf("vurec: catalog: %v", err)
	}

	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("vurec: locale: %v", err)
	}

	if len(locales) == 0 {
		locales = []string{DEFAULT_LOCALE}
	}

	printer = message.NewPrinter(match(locales...))
}

// match picks the supported language closest to the locales, en-US when
// none is close.
func match(locales ...string) language.Tag {
	supported := Languages()
	_, index := language.MatchStrings(language.NewMatcher(supported), locales...)
	return supported[index]
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	return printer.Sprintf(key, args...)
}

// Use forces a specific language, mostly for tests and the -lang flag.
// Strings built before the call, such as sentinel errors, keep their
// language.
func Use(tag string) (err error) {
	lang, err := language.Parse(tag)
	if err != nil {
		return
	}

	printer = message.NewPrinter(match(lang.String()))
	return
}

// Languages returns the supported languages, en-US first.
func Languages() []language.Tag {
	others := slices.SortedFunc(maps.Keys(catalog), func(a, b language.Tag) int {
		return strings.Compare(a.String(), b.String())
	})
	return append([]language.Tag{language.AmericanEnglish}, others...)
}
