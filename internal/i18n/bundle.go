package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

//go:embed catalogs/*.json languages.json
var bundleFS embed.FS

// Bundle serves the embedded translation catalogs for the boot payload.
type Bundle struct {
	defaultLang string
	catalogs    map[string]map[string]string
	langDict    map[string]string
	matcher     language.Matcher
	codes       []string
}

// NewBundle parses the embedded catalogs. defaultLang is served when a
// requested language cannot be matched; it must have a catalog.
func NewBundle(defaultLang string) (*Bundle, error) {
	entries, err := bundleFS.ReadDir("catalogs")
	if err != nil {
		return nil, fmt.Errorf("i18n: read catalogs: %w", err)
	}
	catalogs := make(map[string]map[string]string, len(entries))
	for _, entry := range entries {
		code := strings.TrimSuffix(entry.Name(), ".json")
		raw, err := bundleFS.ReadFile("catalogs/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("i18n: read catalog %s: %w", code, err)
		}
		catalog := map[string]string{}
		if err := json.Unmarshal(raw, &catalog); err != nil {
			return nil, fmt.Errorf("i18n: parse catalog %s: %w", code, err)
		}
		catalogs[code] = catalog
	}
	if _, ok := catalogs[defaultLang]; !ok {
		return nil, fmt.Errorf("i18n: no catalog for default language %q", defaultLang)
	}

	raw, err := bundleFS.ReadFile("languages.json")
	if err != nil {
		return nil, fmt.Errorf("i18n: read languages: %w", err)
	}
	langDict := map[string]string{}
	if err := json.Unmarshal(raw, &langDict); err != nil {
		return nil, fmt.Errorf("i18n: parse languages: %w", err)
	}

	// The default language leads the matcher so unmatchable requests land on
	// its catalog.
	codes := make([]string, 0, len(catalogs))
	codes = append(codes, defaultLang)
	for code := range catalogs {
		if code != defaultLang {
			codes = append(codes, code)
		}
	}
	tags := make([]language.Tag, 0, len(codes))
	for _, code := range codes {
		tag, err := language.Parse(code)
		if err != nil {
			return nil, fmt.Errorf("i18n: catalog code %q: %w", code, err)
		}
		tags = append(tags, tag)
	}

	return &Bundle{
		defaultLang: defaultLang,
		catalogs:    catalogs,
		langDict:    langDict,
		matcher:     language.NewMatcher(tags),
		codes:       codes,
	}, nil
}

// Resolve returns the catalog code best matching the requested language.
func (b *Bundle) Resolve(requested string) string {
	if requested == "" {
		return b.defaultLang
	}
	tag, err := language.Parse(requested)
	if err != nil {
		return b.defaultLang
	}
	_, idx, conf := b.matcher.Match(tag)
	if conf == language.No {
		return b.defaultLang
	}
	return b.codes[idx]
}

// Messages returns the catalog for the language, the default catalog when
// none exists.
func (b *Bundle) Messages(lang string) map[string]string {
	if catalog, ok := b.catalogs[lang]; ok {
		return catalog
	}
	return b.catalogs[b.defaultLang]
}

// LangDict maps language display names to catalog codes.
func (b *Bundle) LangDict() map[string]string {
	return b.langDict
}

// DefaultLang returns the fallback language code.
func (b *Bundle) DefaultLang() string {
	return b.defaultLang
}
