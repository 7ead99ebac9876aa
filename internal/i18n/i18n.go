// Package i18n looks up interface strings from embedded TOML catalogs and
// formats them with golang.org/x/text/message, so numbers follow the
// locale's conventions.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// BaseLocale is the locale every other catalog falls back to.
const BaseLocale = "en-US"

// Translator resolves a message key to display text.
type Translator interface {
	T(key string, args ...any) string
}

//go:embed locales/*.toml
var localesFS embed.FS

type catalogFile struct {
	Locale   string            `toml:"locale"`
	Messages map[string]string `toml:"messages"`
}

// Bundle holds every loaded locale.
type Bundle struct {
	locales map[string]map[string]string
	tags    []language.Tag // BaseLocale first
	names   []string       // parallel to tags
	matcher language.Matcher
	builder *catalog.Builder
}

// LoadEmbedded loads the catalogs shipped with pinvite.
func LoadEmbedded() (*Bundle, error) {
	return LoadFromFS(localesFS)
}

// LoadFromFS loads locales/*.toml from fsys.
func LoadFromFS(fsys fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(fsys, "locales/*.toml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalog files found")
	}
	sort.Strings(paths)

	b := &Bundle{
		locales: map[string]map[string]string{},
		builder: catalog.NewBuilder(),
	}
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", p, err)
		}
		var file catalogFile
		if _, err := toml.Decode(string(data), &file); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", p, err)
		}
		if err := b.add(p, file); err != nil {
			return nil, err
		}
	}
	if _, ok := b.locales[BaseLocale]; !ok {
		return nil, fmt.Errorf("base locale %s is not defined in catalogs", BaseLocale)
	}

	b.orderTags()
	b.matcher = language.NewMatcher(b.tags)
	return b, nil
}

func (b *Bundle) add(p string, file catalogFile) error {
	locale := strings.TrimSpace(file.Locale)
	if want := strings.TrimSuffix(path.Base(p), path.Ext(p)); locale != want {
		return fmt.Errorf("catalog %s: locale %q must match file name %q", p, locale, want)
	}
	if _, exists := b.locales[locale]; exists {
		return fmt.Errorf("catalog %s: locale %q defined twice", p, locale)
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return fmt.Errorf("catalog %s: parse locale tag %q: %w", p, locale, err)
	}

	msgs := make(map[string]string, len(file.Messages))
	for key, value := range file.Messages {
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("catalog %s: message key cannot be blank", p)
		}
		msgs[key] = value
		if err := b.builder.SetString(tag, key, value); err != nil {
			return fmt.Errorf("catalog %s: key %q: %w", p, key, err)
		}
	}
	b.locales[locale] = msgs
	b.tags = append(b.tags, tag)
	b.names = append(b.names, locale)
	return nil
}

// orderTags moves BaseLocale to the front, making it the matcher default.
func (b *Bundle) orderTags() {
	for i, name := range b.names {
		if name == BaseLocale && i != 0 {
			b.names[0], b.names[i] = b.names[i], b.names[0]
			b.tags[0], b.tags[i] = b.tags[i], b.tags[0]
		}
	}
}

// Locales returns the available locale names, sorted.
func (b *Bundle) Locales() []string {
	out := make([]string, 0, len(b.locales))
	for l := range b.locales {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Match returns the closest available locale, or BaseLocale.
func (b *Bundle) Match(locale string) string {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		return BaseLocale
	}
	_, idx, conf := b.matcher.Match(tag)
	if conf == language.No {
		return BaseLocale
	}
	return b.names[idx]
}

// Printer returns a Translator for the closest match to locale.
func (b *Bundle) Printer(locale string) *Printer {
	name := b.Match(locale)
	tag := b.tags[0]
	for i, n := range b.names {
		if n == name {
			tag = b.tags[i]
		}
	}
	return &Printer{
		bundle: b,
		locale: name,
		p:      message.NewPrinter(tag, message.Catalog(b.builder)),
		base:   message.NewPrinter(b.tags[0], message.Catalog(b.builder)),
	}
}

// Printer translates into one locale with fallback to BaseLocale and then
// to the key itself.
type Printer struct {
	bundle *Bundle
	locale string
	p      *message.Printer
	base   *message.Printer
}

// Locale returns the locale the printer resolved to.
func (p *Printer) Locale() string { return p.locale }

// T formats the message stored under key.
func (p *Printer) T(key string, args ...any) string {
	if _, ok := p.bundle.locales[p.locale][key]; ok {
		return p.p.Sprintf(key, args...)
	}
	if _, ok := p.bundle.locales[BaseLocale][key]; ok {
		return p.base.Sprintf(key, args...)
	}
	return key
}

// KeyTranslator returns keys unchanged.
type KeyTranslator struct{}

// T returns key.
func (KeyTranslator) T(key string, _ ...any) string { return key }
