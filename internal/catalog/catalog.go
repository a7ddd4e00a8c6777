// Package catalog holds the read-only list of preset chassidic dates.
package catalog

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/starford/luach/internal/models"
)

//go:embed chassidic_dates.yaml
var chassidicDatesYAML []byte

// Catalog is an immutable, ordered set of entries indexed by id and title.
type Catalog struct {
	entries []models.CatalogEntry
	byID    map[string]int
	byTitle map[string]int
}

// New builds a catalog. Entry ids must be unique and non-empty. When two
// entries share a title, title lookups resolve to the first one.
func New(entries []models.CatalogEntry) (*Catalog, error) {
	c := &Catalog{
		entries: make([]models.CatalogEntry, len(entries)),
		byID:    make(map[string]int, len(entries)),
		byTitle: make(map[string]int, len(entries)),
	}
	for i, e := range entries {
		if e.ID == "" {
			return nil, fmt.Errorf("catalog: entry %d has no id", i)
		}
		if _, dup := c.byID[e.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate id %q", e.ID)
		}
		e.Category = models.CategoryChassidic
		c.entries[i] = e
		c.byID[e.ID] = i
		if _, seen := c.byTitle[e.Title]; !seen {
			c.byTitle[e.Title] = i
		}
	}
	return c, nil
}

// Parse decodes a YAML list of entries into a catalog.
func Parse(data []byte) (*Catalog, error) {
	var entries []models.CatalogEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("catalog: parse: %w", err)
	}
	return New(entries)
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
)

// Default returns the built-in chassidic date catalog.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(chassidicDatesYAML)
		if err != nil {
			panic(err)
		}
		defaultCat = c
	})
	return defaultCat
}

// Entries returns a copy of all entries in catalog order.
func (c *Catalog) Entries() []models.CatalogEntry {
	out := make([]models.CatalogEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of entries.
func (c *Catalog) Len() int { return len(c.entries) }

// Lookup returns the entry with the given id.
func (c *Catalog) Lookup(id string) (models.CatalogEntry, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.CatalogEntry{}, false
	}
	return c.entries[i], true
}

// MatchTitle returns the first entry whose title equals title exactly.
func (c *Catalog) MatchTitle(title string) (models.CatalogEntry, bool) {
	i, ok := c.byTitle[title]
	if !ok {
		return models.CatalogEntry{}, false
	}
	return c.entries[i], true
}
