// Package locale provides localized display strings for space categories,
// finding statuses, and report labels.
package locale

import (
	"embed"
	"io/fs"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/dwellscan/survey-cli/internal/model"
)

//go:embed catalogs/*.yaml
var catalogFS embed.FS

// ErrUnknownLanguage is returned when no catalog matches the requested
// language.
var ErrUnknownLanguage = eris.New("locale: unknown language")

// Catalog holds the display strings for one language.
type Catalog struct {
	Language   string            `yaml:"language"`
	Categories map[string]string `yaml:"categories"`
	Statuses   map[string]string `yaml:"statuses"`
	Labels     map[string]string `yaml:"labels"`
}

// Category returns the localized name of a space category. Unknown
// categories fall back to the raw value.
func (c *Catalog) Category(cat model.SpaceCategory) string {
	if name, ok := c.Categories[string(cat)]; ok {
		return name
	}
	return string(cat)
}

// Status returns the localized name of a finding status.
func (c *Catalog) Status(s model.SpaceStatus) string {
	if name, ok := c.Statuses[string(s)]; ok {
		return name
	}
	return string(s)
}

// Label returns a localized UI label by key, falling back to the key.
func (c *Catalog) Label(key string) string {
	if v, ok := c.Labels[key]; ok {
		return v
	}
	return key
}

// Catalogs loads every embedded catalog keyed by language tag.
func Catalogs() (map[string]*Catalog, error) {
	entries, err := fs.ReadDir(catalogFS, "catalogs")
	if err != nil {
		return nil, eris.Wrap(err, "locale: read catalogs")
	}

	out := make(map[string]*Catalog, len(entries))
	for _, e := range entries {
		data, err := catalogFS.ReadFile("catalogs/" + e.Name())
		if err != nil {
			return nil, eris.Wrapf(err, "locale: read catalog %s", e.Name())
		}
		var c Catalog
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, eris.Wrapf(err, "locale: parse catalog %s", e.Name())
		}
		if c.Language == "" {
			c.Language = strings.TrimSuffix(e.Name(), ".yaml")
		}
		out[c.Language] = &c
	}
	return out, nil
}

// Match returns the catalog best matching the requested language, using
// BCP 47 matching so "hi-IN" resolves to the Hindi catalog.
func Match(lang string) (*Catalog, error) {
	catalogs, err := Catalogs()
	if err != nil {
		return nil, err
	}

	tags := make([]language.Tag, 0, len(catalogs))
	keys := make([]string, 0, len(catalogs))
	for k := range catalogs {
		tag, err := language.Parse(k)
		if err != nil {
			continue
		}
		tags = append(tags, tag)
		keys = append(keys, k)
	}

	matcher := language.NewMatcher(tags)
	desired, err := language.Parse(lang)
	if err != nil {
		return nil, eris.Wrapf(ErrUnknownLanguage, "parse %q", lang)
	}
	_, idx, conf := matcher.Match(desired)
	if conf == language.No {
		return nil, eris.Wrapf(ErrUnknownLanguage, "no catalog for %q", lang)
	}
	return catalogs[keys[idx]], nil
}
