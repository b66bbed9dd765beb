// Package i18n provides internationalization support for error messages.
package i18n

import (
	"bytes"
	"strings"
	"sync"
	"text/template"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Code is a machine-readable error code (duplicated from errors package to avoid cycle).
type Code = string

// BaseLocale is the fallback locale for every lookup.
const BaseLocale = "en-US"

// Catalog maps error codes to message templates for a specific locale.
type Catalog struct {
	locale  string
	printer *message.Printer
	known   map[Code]bool
}

var (
	catalogsMu sync.RWMutex
	// catalogs holds override and runtime-built catalogs by locale.
	catalogs = map[string]*Catalog{}

	builder   = mustBuildCatalog()
	supported = builder.Languages()
	matcher   = language.NewMatcher(supported)
)

// GetCatalog returns the catalog for the given locale.
// Falls back to en-US if the locale is not found.
func GetCatalog(locale string) *Catalog {
	requested := strings.TrimSpace(locale)
	if requested == "" {
		requested = BaseLocale
	}

	if c, ok := lookupCatalog(requested); ok {
		return c
	}

	resolved := resolveLocale(requested)
	if c, ok := lookupCatalog(resolved.String()); ok {
		return c
	}

	built := &Catalog{
		locale:  resolved.String(),
		printer: message.NewPrinter(resolved, message.Catalog(builder)),
		known:   knownCodes(),
	}
	return storeCatalogIfAbsent(resolved.String(), built)
}

// Locale returns the locale of this catalog.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders the message template with the given metadata.
// Falls back to the error code itself if no template is found.
func (c *Catalog) Format(code Code, metadata map[string]string) string {
	if !c.known[code] {
		return code
	}
	tmpl := c.printer.Sprintf(code)

	if metadata == nil {
		metadata = map[string]string{}
	}

	t, err := template.New("msg").Parse(tmpl)
	if err != nil {
		return tmpl
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, metadata); err != nil {
		return tmpl
	}
	return buf.String()
}

// NewCatalog creates a standalone catalog with the given locale and messages.
func NewCatalog(locale string, messages map[Code]string) *Catalog {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Und
	}
	b := catalog.NewBuilder(catalog.Fallback(tag))
	known := make(map[Code]bool, len(messages))
	for key, value := range messages {
		// Messages are stored verbatim; % is escaped so the printer
		// never interprets template text as a format verb.
		_ = b.SetString(tag, key, strings.ReplaceAll(value, "%", "%%"))
		known[key] = true
	}
	return &Catalog{
		locale:  locale,
		printer: message.NewPrinter(tag, message.Catalog(b)),
		known:   known,
	}
}

func resolveLocale(requested string) language.Tag {
	tag, err := language.Parse(requested)
	if err != nil {
		return language.MustParse(BaseLocale)
	}
	_, index, confidence := matcher.Match(tag)
	if confidence == language.No {
		return language.MustParse(BaseLocale)
	}
	return supported[index]
}

func lookupCatalog(locale string) (*Catalog, bool) {
	catalogsMu.RLock()
	defer catalogsMu.RUnlock()
	cat, ok := catalogs[locale]
	return cat, ok
}

func storeCatalogIfAbsent(locale string, candidate *Catalog) *Catalog {
	catalogsMu.Lock()
	defer catalogsMu.Unlock()
	if existing, ok := catalogs[locale]; ok {
		return existing
	}
	catalogs[locale] = candidate
	return candidate
}

func mustBuildCatalog() *catalog.Builder {
	base := language.MustParse(BaseLocale)
	b := catalog.NewBuilder(catalog.Fallback(base))
	for locale, messages := range localeMessages {
		tag := language.MustParse(locale)
		for code, text := range messages {
			if err := b.SetString(tag, code, strings.ReplaceAll(text, "%", "%%")); err != nil {
				panic(err)
			}
		}
	}
	return b
}

func knownCodes() map[Code]bool {
	out := make(map[Code]bool, len(localeMessages[BaseLocale]))
	for code := range localeMessages[BaseLocale] {
		out[code] = true
	}
	return out
}
