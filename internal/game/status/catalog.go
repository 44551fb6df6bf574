package status

// DefaultDuration is how many turns a granted buff or debuff lasts.
const DefaultDuration = 2

// Template describes a timed modifier before it is granted.
type Template struct {
	Name     string
	Kind     Kind
	Deltas   Deltas
	Duration int
}

// New instantiates the template as a fresh timed modifier.
func (t Template) New() *Timed {
	return NewTimed(t.Kind, t.Name, t.Deltas, t.Duration)
}

var (
	Empowered = Template{Name: "Empowered", Kind: KindBuff, Deltas: Deltas{Attack: 2}, Duration: DefaultDuration}
	Fortified = Template{Name: "Fortified", Kind: KindBuff, Deltas: Deltas{Defense: 2}, Duration: DefaultDuration}
	Hastened  = Template{Name: "Hastened", Kind: KindBuff, Deltas: Deltas{Movement: 1}, Duration: DefaultDuration}

	Weakened = Template{Name: "Weakened", Kind: KindDebuff, Deltas: Deltas{Attack: -2}, Duration: DefaultDuration}
	Exposed  = Template{Name: "Exposed", Kind: KindDebuff, Deltas: Deltas{Defense: -2}, Duration: DefaultDuration}
	Slowed   = Template{Name: "Slowed", Kind: KindDebuff, Deltas: Deltas{Movement: -1}, Duration: DefaultDuration}
)

// Buffs is the pool random turn-start buffs are drawn from.
func Buffs() []Template { return []Template{Empowered, Fortified, Hastened} }

// Debuffs is the pool random turn-start debuffs are drawn from.
func Debuffs() []Template { return []Template{Weakened, Exposed, Slowed} }
