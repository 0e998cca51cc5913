package template

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrEmptyCatalog is returned when the catalog file holds no templates.
var ErrEmptyCatalog = errors.New("template: catalog is empty")

// Catalog is the immutable set of templates available on the device,
// loaded once at startup. Order is the file order and drives Next/Prev
// cycling on the template screen.
type Catalog struct {
	templates []*Template
	byID      map[string]*Template
}

// LoadCatalog reads a JSON template index (the device's index.json format).
// Any malformed entry fails the whole load.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("template: read catalog %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// ParseCatalog builds a catalog from raw JSON.
func ParseCatalog(data []byte) (*Catalog, error) {
	var templates []*Template
	if err := json.Unmarshal(data, &templates); err != nil {
		return nil, fmt.Errorf("template: parse catalog: %w", err)
	}
	return NewCatalog(templates)
}

// NewCatalog validates the templates and builds the lookup.
func NewCatalog(templates []*Template) (*Catalog, error) {
	if len(templates) == 0 {
		return nil, ErrEmptyCatalog
	}
	byID := make(map[string]*Template, len(templates))
	for _, t := range templates {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if _, dup := byID[t.ID]; dup {
			return nil, fmt.Errorf("template: duplicate id %q", t.ID)
		}
		byID[t.ID] = t
	}
	return &Catalog{templates: templates, byID: byID}, nil
}

// DefaultCatalog is the built-in fallback when no index file exists:
// a single full-bleed slot, same as the device ships with.
func DefaultCatalog() *Catalog {
	c, _ := NewCatalog([]*Template{{
		ID:    "single_full",
		Name:  "Single Full",
		Slots: 1,
		Rects: []Rect{{LeftPct: 10, TopPct: 15, WidthPct: 80, HeightPct: 70}},
	}})
	return c
}

// Len returns the number of templates.
func (c *Catalog) Len() int { return len(c.templates) }

// At returns the template at index i (catalog order).
func (c *Catalog) At(i int) *Template { return c.templates[i] }

// ByID looks a template up by id.
func (c *Catalog) ByID(id string) (*Template, bool) {
	t, ok := c.byID[id]
	return t, ok
}

// All returns the templates in catalog order.
func (c *Catalog) All() []*Template { return c.templates }

// Cycle returns the index delta steps away from i with wrap-around.
// delta may be negative; the result is always within [0, Len).
func (c *Catalog) Cycle(i, delta int) int {
	n := len(c.templates)
	return ((i+delta)%n + n) % n
}
