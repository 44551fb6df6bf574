package grid

import (
	"fmt"
	"strings"
)

// Terrain is the tag carried by every cell.
type Terrain int

const (
	Lava Terrain = iota
	Ice
	Forest
	Desert
	Stone
)

type terrainInfo struct {
	name         string
	icon         string
	distribution int
	moveCost     int
}

var terrainTable = map[Terrain]terrainInfo{
	Lava:   {name: "LAVA", icon: "L", distribution: 15, moveCost: 2},
	Ice:    {name: "ICE", icon: "I", distribution: 15, moveCost: 3},
	Forest: {name: "FOREST", icon: "F", distribution: 20, moveCost: 2},
	Desert: {name: "DESERT", icon: ".", distribution: 30, moveCost: 1},
	Stone:  {name: "STONE", icon: "S", distribution: 20, moveCost: 3},
}

// Terrains returns every terrain kind in declaration order.
func Terrains() []Terrain {
	return []Terrain{Lava, Ice, Forest, Desert, Stone}
}

func (t Terrain) String() string {
	if info, ok := terrainTable[t]; ok {
		return info.name
	}
	return fmt.Sprintf("TERRAIN_%d", int(t))
}

// Icon is the single character used by board renderers.
func (t Terrain) Icon() string {
	if info, ok := terrainTable[t]; ok {
		return info.icon
	}
	return "?"
}

// MoveCost is the base movement cost for entering a cell of this terrain.
func (t Terrain) MoveCost() int {
	if info, ok := terrainTable[t]; ok {
		return info.moveCost
	}
	return 1
}

// DefaultDistribution returns the percentage of the board each terrain covers
// when a battlefield is generated without an explicit distribution.
func DefaultDistribution() map[Terrain]int {
	dist := make(map[Terrain]int, len(terrainTable))
	for t, info := range terrainTable {
		dist[t] = info.distribution
	}
	return dist
}

// ParseTerrain resolves a terrain from its name, case-insensitively.
func ParseTerrain(name string) (Terrain, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	for _, t := range Terrains() {
		if t.String() == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown terrain %q", name)
}

// MarshalText lets terrains act as YAML/JSON map keys and values.
func (t Terrain) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Terrain) UnmarshalText(text []byte) error {
	parsed, err := ParseTerrain(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
