// Package i18n resolves a player locale to the reminder templates written in
// that language. Matching uses the primary language subtag only, so "pt-BR"
// and "pt-PT" share the "pt" templates.
package i18n

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Placeholders understood by Templates.Render.
const (
	PlaceholderName  = "{name}"
	PlaceholderHours = "{hours}"
	PlaceholderGame  = "{game}"
	PlaceholderLink  = "{link}"
)

// Templates is the reminder copy for one language.
type Templates struct {
	Tag     language.Tag
	Subject string
	Body    string
}

// Vars are the values substituted into a template.
type Vars struct {
	Name  string
	Hours string
	Game  string
	Link  string
}

// Render substitutes vars into the subject and body.
func (t Templates) Render(vars Vars) (subject, body string) {
	r := strings.NewReplacer(
		PlaceholderName, vars.Name,
		PlaceholderHours, vars.Hours,
		PlaceholderGame, vars.Game,
		PlaceholderLink, vars.Link,
	)
	return r.Replace(t.Subject), r.Replace(t.Body)
}

// catalog is filled by the messages_*.go init functions, keyed by base language.
var catalog = map[string]Templates{}

func register(tag language.Tag, subject, body string) {
	catalog[baseOf(tag)] = Templates{Tag: tag, Subject: subject, Body: body}
}

// Provider resolves locales against the registered catalog.
type Provider struct {
	fallback Templates
}

// NewProvider returns a Provider falling back to defaultLocale, which must be registered.
func NewProvider(defaultLocale string) (*Provider, error) {
	tag, err := language.Parse(defaultLocale)
	if err != nil {
		return nil, fmt.Errorf("parse default locale %q: %w", defaultLocale, err)
	}
	t, ok := catalog[baseOf(tag)]
	if !ok {
		return nil, fmt.Errorf("no templates for default locale %q", defaultLocale)
	}
	return &Provider{fallback: t}, nil
}

// Resolve returns the templates for locale, or the default language's when
// locale is nil, malformed or not translated.
func (p *Provider) Resolve(locale *string) Templates {
	if locale == nil || strings.TrimSpace(*locale) == "" {
		return p.fallback
	}
	tag, err := language.Parse(strings.TrimSpace(*locale))
	if err != nil {
		return p.fallback
	}
	if t, ok := catalog[baseOf(tag)]; ok {
		return t
	}
	return p.fallback
}

// Languages lists the registered base languages.
func Languages() []string {
	out := make([]string, 0, len(catalog))
	for k := range catalog {
		out = append(out, k)
	}
	return out
}

func baseOf(tag language.Tag) string {
	b, _ := tag.Base()
	return b.String()
}
