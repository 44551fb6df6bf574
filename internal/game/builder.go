package game

import (
	"fmt"
	"strings"

	"github.com/elementarclash/clash-server-go/internal/game/catalog"
	"github.com/elementarclash/clash-server-go/internal/game/command"
	"github.com/elementarclash/clash-server-go/internal/game/damage"
	"github.com/elementarclash/clash-server-go/internal/game/faction"
	"github.com/elementarclash/clash-server-go/internal/game/grid"
	"github.com/elementarclash/clash-server-go/internal/game/rules"
	"github.com/elementarclash/clash-server-go/internal/game/units"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	MinFactions = 2
	MaxFactions = 4

	spawnZoneSize = 3
)

// placement is one unit waiting to be put on the board.
type placement struct {
	faction faction.Faction
	typeID  string
	unit    *units.Unit
	pos     *grid.Position
}

// Builder assembles a match. Errors are collected and reported by Build.
type Builder struct {
	id         string
	settings   Settings
	factions   []faction.Faction
	catalog    *catalog.Catalog
	field      *grid.Battlefield
	placements []placement
	logger     *zap.Logger
}

// NewBuilder starts a match with the default settings.
func NewBuilder() *Builder {
	return &Builder{settings: DefaultSettings()}
}

// WithID fixes the match id; otherwise a uuid is generated.
func (b *Builder) WithID(id string) *Builder {
	b.id = id
	return b
}

// WithSettings replaces the rule parameters.
func (b *Builder) WithSettings(s Settings) *Builder {
	b.settings = s
	return b
}

// WithSize sets the board edge length of a generated board.
func (b *Builder) WithSize(size int) *Builder {
	b.settings.GridSize = size
	return b
}

// WithSeed seeds the match RNG.
func (b *Builder) WithSeed(seed int64) *Builder {
	b.settings.Seed = seed
	return b
}

// WithFactions sets the participating factions in turn order.
func (b *Builder) WithFactions(fs ...faction.Faction) *Builder {
	b.factions = append([]faction.Faction(nil), fs...)
	return b
}

// WithCatalog sets the roster unit types are looked up in.
func (b *Builder) WithCatalog(c *catalog.Catalog) *Builder {
	b.catalog = c
	return b
}

// WithBattlefield uses a prepared board instead of generating one.
func (b *Builder) WithBattlefield(field *grid.Battlefield) *Builder {
	b.field = field
	return b
}

func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

// Place adds a catalog unit of f on an explicit cell.
func (b *Builder) Place(f faction.Faction, typeID string, pos grid.Position) *Builder {
	b.placements = append(b.placements, placement{faction: f, typeID: typeID, pos: &pos})
	return b
}

// Spawn adds a catalog unit of f in its faction's spawn zone.
func (b *Builder) Spawn(f faction.Faction, typeIDs ...string) *Builder {
	for _, t := range typeIDs {
		b.placements = append(b.placements, placement{faction: f, typeID: t})
	}
	return b
}

// PlaceUnit adds a ready-made unit on pos.
func (b *Builder) PlaceUnit(u *units.Unit, pos grid.Position) *Builder {
	b.placements = append(b.placements, placement{faction: u.Faction(), unit: u, pos: &pos})
	return b
}

// Build validates the setup and returns a match in the Setup phase.
func (b *Builder) Build() (*Match, error) {
	s := b.settings.normalize()

	if len(b.factions) < MinFactions || len(b.factions) > MaxFactions {
		return nil, fmt.Errorf("a match needs %d to %d factions, got %d", MinFactions, MaxFactions, len(b.factions))
	}
	seen := make(map[faction.Faction]bool, len(b.factions))
	for _, f := range b.factions {
		if !f.Valid() {
			return nil, fmt.Errorf("invalid faction %d", int(f))
		}
		if seen[f] {
			return nil, fmt.Errorf("faction %s listed twice", f)
		}
		seen[f] = true
	}
	for _, p := range b.placements {
		if !seen[p.faction] {
			return nil, fmt.Errorf("unit for faction %s which is not in the match", p.faction)
		}
	}
	for _, f := range b.factions {
		if !b.hasUnits(f) {
			return nil, fmt.Errorf("faction %s has no units", f)
		}
	}

	cat := b.catalog
	if cat == nil {
		var err error
		if cat, err = catalog.Default(); err != nil {
			return nil, err
		}
	}

	rng := rules.NewRNG(s.Seed)
	field := b.field
	if field == nil {
		var err error
		if field, err = grid.Generate(s.GridSize, s.TerrainDistribution, rng); err != nil {
			return nil, fmt.Errorf("generate battlefield: %w", err)
		}
	}
	s.GridSize = field.Size()

	id := b.id
	if id == "" {
		id = uuid.NewString()
	}
	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Match{
		id:        id,
		settings:  s,
		logger:    logger,
		field:     field,
		factions:  append([]faction.Faction(nil), b.factions...),
		units:     make(map[string]*units.Unit),
		occupancy: make(map[grid.Position]string),
		phase:     rules.Setup(),
		turns:     rules.NewTurnManager(b.factions),
		rng:       rng,
		bus:       rules.NewEventBus(),
		pipeline:  damage.DefaultPipeline(),
	}
	m.executor = command.NewExecutor(m, logger.Named("commands"))

	counters := make(map[string]int)
	for _, p := range b.placements {
		u := p.unit
		if u == nil {
			counters[p.typeID]++
			unitID := fmt.Sprintf("%s-%s-%d", strings.ToLower(p.faction.String()), p.typeID, counters[p.typeID])
			var err error
			if u, err = cat.New(p.typeID, unitID); err != nil {
				return nil, err
			}
			if u.Faction() != p.faction {
				return nil, fmt.Errorf("unit type %s belongs to %s, not %s", p.typeID, u.Faction(), p.faction)
			}
		}
		if _, dup := m.units[u.ID()]; dup {
			return nil, fmt.Errorf("duplicate unit id %s", u.ID())
		}
		pos, err := b.resolvePosition(m, p)
		if err != nil {
			return nil, fmt.Errorf("place %s: %w", u.ID(), err)
		}
		u.SetMaxActions(s.MaxActions)
		m.units[u.ID()] = u
		m.unitOrder = append(m.unitOrder, u.ID())
		m.MoveUnit(u, pos)
	}
	return m, nil
}

func (b *Builder) hasUnits(f faction.Faction) bool {
	for _, p := range b.placements {
		if p.faction == f {
			return true
		}
	}
	return false
}

func (b *Builder) resolvePosition(m *Match, p placement) (grid.Position, error) {
	if p.pos != nil {
		if !m.field.Contains(*p.pos) {
			return grid.Position{}, fmt.Errorf("%s: %w", p.pos, grid.ErrOutOfBounds)
		}
		if other, ok := m.UnitAt(*p.pos); ok {
			return grid.Position{}, fmt.Errorf("%s is occupied by %s", p.pos, other.ID())
		}
		return *p.pos, nil
	}
	zone := SpawnZone(m.field, indexOf(b.factions, p.faction))
	for _, c := range zone.Cells() {
		if _, ok := m.UnitAt(c.Position()); !ok {
			return c.Position(), nil
		}
	}
	return grid.Position{}, fmt.Errorf("spawn zone of %s is full", p.faction)
}

// SpawnZone is the corner square a faction deploys into: the first faction
// top-left, the second bottom-right, then top-right and bottom-left.
func SpawnZone(field *grid.Battlefield, index int) grid.Region {
	n := field.Size()
	size := min(spawnZoneSize, n)
	far := n - size
	corners := []grid.Position{grid.Pos(0, 0), grid.Pos(far, far), grid.Pos(far, 0), grid.Pos(0, far)}
	origin := corners[index%len(corners)]
	return field.Rect(origin.X, origin.Y, size, size)
}

func indexOf(list []faction.Faction, f faction.Faction) int {
	for i, x := range list {
		if x == f {
			return i
		}
	}
	return -1
}
