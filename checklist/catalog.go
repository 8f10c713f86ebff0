// Package checklist decodes, validates and aggregates the defective-item
// checklists attached to vehicle inspections.
package checklist

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// Category distinguishes the two checklists on an inspection form.
type Category string

const (
	CategoryCar          Category = "car"
	CategoryTruckTrailer Category = "truck_trailer"
)

// Item is one known checklist entry.
type Item struct {
	Key   string `yaml:"key"`
	Label string `yaml:"label"`
}

// Catalog lists the known items of each category in form order.
type Catalog struct {
	Car          []Item `yaml:"car"`
	TruckTrailer []Item `yaml:"truck_trailer"`

	positions map[Category]map[string]int
}

//go:embed catalog.yaml
var defaultCatalogYAML []byte

var (
	defaultCatalogOnce sync.Once
	defaultCatalog     *Catalog
)

// LoadCatalog parses a YAML catalog.
func LoadCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse checklist catalog: %w", err)
	}

	c.positions = map[Category]map[string]int{
		CategoryCar:          indexItems(c.Car),
		CategoryTruckTrailer: indexItems(c.TruckTrailer),
	}
	return &c, nil
}

// DefaultCatalog returns the catalog embedded in the binary.
func DefaultCatalog() *Catalog {
	defaultCatalogOnce.Do(func() {
		c, err := LoadCatalog(defaultCatalogYAML)
		if err != nil {
			panic(err)
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Items returns the known items of a category.
func (c *Catalog) Items(cat Category) []Item {
	switch cat {
	case CategoryCar:
		return c.Car
	case CategoryTruckTrailer:
		return c.TruckTrailer
	}
	return nil
}

// Label returns the display label for key, or a humanized key when the
// catalog does not know it.
func (c *Catalog) Label(cat Category, key string) string {
	if pos, ok := c.Position(cat, key); ok {
		return c.Items(cat)[pos].Label
	}
	return Humanize(key)
}

// Position returns the form order of key within its category.
func (c *Catalog) Position(cat Category, key string) (int, bool) {
	pos, ok := c.positions[cat][key]
	return pos, ok
}

// Humanize turns "brake_connections" into "Brake Connections".
func Humanize(key string) string {
	words := strings.FieldsFunc(key, func(r rune) bool { return r == '_' || r == '-' })
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

func indexItems(items []Item) map[string]int {
	idx := make(map[string]int, len(items))
	for i, item := range items {
		idx[item.Key] = i
	}
	return idx
}
