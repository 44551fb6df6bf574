// Package catalog loads the static unit roster.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"github.com/elementarclash/clash-server-go/internal/game/faction"
	"github.com/elementarclash/clash-server-go/internal/game/units"
	"gopkg.in/yaml.v3"
)

//go:embed units.yaml
var defaultRoster []byte

// Entry describes one unit type.
type Entry struct {
	Type        string            `yaml:"type"`
	Name        string            `yaml:"name"`
	Faction     faction.Faction   `yaml:"faction"`
	Description string            `yaml:"description"`
	Stats       units.Stats       `yaml:"stats"`
	Traits      units.Traits      `yaml:"traits"`
	Ability     units.AbilitySpec `yaml:"ability"`
}

type rosterFile struct {
	Units []Entry `yaml:"units"`
}

// Catalog is an immutable index of unit types.
type Catalog struct {
	entries map[string]Entry
	order   []string
}

// Default returns the built-in roster.
func Default() (*Catalog, error) {
	return Parse(defaultRoster)
}

// MustDefault is Default for package initialization and tests.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// Load reads a roster from a YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a YAML roster.
func Parse(data []byte) (*Catalog, error) {
	var file rosterFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode roster: %w", err)
	}
	if len(file.Units) == 0 {
		return nil, fmt.Errorf("roster defines no units")
	}
	c := &Catalog{entries: make(map[string]Entry, len(file.Units))}
	for i, e := range file.Units {
		if e.Type == "" {
			return nil, fmt.Errorf("unit #%d has no type", i)
		}
		if _, dup := c.entries[e.Type]; dup {
			return nil, fmt.Errorf("duplicate unit type %q", e.Type)
		}
		if err := e.Stats.Validate(); err != nil {
			return nil, fmt.Errorf("unit type %s: %w", e.Type, err)
		}
		if err := e.Ability.Validate(); err != nil {
			return nil, fmt.Errorf("unit type %s: %w", e.Type, err)
		}
		c.entries[e.Type] = e
		c.order = append(c.order, e.Type)
	}
	return c, nil
}

// Lookup returns the entry for a unit type.
func (c *Catalog) Lookup(typeID string) (Entry, bool) {
	e, ok := c.entries[typeID]
	return e, ok
}

// Types lists every unit type in file order.
func (c *Catalog) Types() []string {
	return append([]string(nil), c.order...)
}

// ByFaction lists the entries of one faction, sorted by type.
func (c *Catalog) ByFaction(f faction.Faction) []Entry {
	var out []Entry
	for _, e := range c.entries {
		if e.Faction == f {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// New creates a fresh unit of the given type.
func (c *Catalog) New(typeID, unitID string) (*units.Unit, error) {
	e, ok := c.entries[typeID]
	if !ok {
		return nil, fmt.Errorf("unknown unit type %q", typeID)
	}
	return units.New(units.Spec{
		ID:      unitID,
		Name:    e.Name,
		Type:    e.Type,
		Faction: e.Faction,
		Stats:   e.Stats,
		Traits:  e.Traits,
		Ability: e.Ability,
	})
}
