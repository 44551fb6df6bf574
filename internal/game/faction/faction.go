package faction

import (
	"fmt"
	"strings"
)

// Faction is one of the four elemental allegiances.
type Faction int

const (
	Fire Faction = iota
	Water
	Earth
	Air
)

var factionNames = map[Faction]string{
	Fire:  "FIRE",
	Water: "WATER",
	Earth: "EARTH",
	Air:   "AIR",
}

var factionIcons = map[Faction]string{
	Fire:  "F",
	Water: "W",
	Earth: "E",
	Air:   "A",
}

var playstyles = map[Faction]string{
	Fire:  "aggressive",
	Water: "defensive",
	Earth: "controlling",
	Air:   "mobile",
}

// All returns every faction in turn order.
func All() []Faction {
	return []Faction{Fire, Water, Earth, Air}
}

func (f Faction) String() string {
	if name, ok := factionNames[f]; ok {
		return name
	}
	return fmt.Sprintf("FACTION_%d", int(f))
}

// Icon is the single character used by board renderers.
func (f Faction) Icon() string { return factionIcons[f] }

// Playstyle is a short description of how the faction tends to fight.
func (f Faction) Playstyle() string { return playstyles[f] }

// Valid reports whether f is one of the four known factions.
func (f Faction) Valid() bool {
	_, ok := factionNames[f]
	return ok
}

// Parse resolves a faction name, case-insensitively.
func Parse(name string) (Faction, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	for f, n := range factionNames {
		if n == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown faction %q", name)
}

func (f Faction) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *Faction) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
