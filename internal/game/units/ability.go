package units

import "fmt"

// AbilityKind names a special action a unit type may carry.
type AbilityKind string

const (
	AbilityNone  AbilityKind = ""
	AbilityHeal  AbilityKind = "heal"
	AbilityQuake AbilityKind = "quake"
	AbilityWall  AbilityKind = "wall"
	AbilityPush  AbilityKind = "push"
	AbilitySlow  AbilityKind = "slow"
)

// AbilitySpec parameterizes a unit's ability.
type AbilitySpec struct {
	Kind     AbilityKind `yaml:"kind" json:"kind"`
	Amount   int         `yaml:"amount" json:"amount,omitempty"`
	Range    int         `yaml:"range" json:"range,omitempty"`
	Cooldown int         `yaml:"cooldown" json:"cooldown,omitempty"`
}

// Validate checks the parameters make sense for the ability kind.
func (a AbilitySpec) Validate() error {
	switch a.Kind {
	case AbilityNone:
		return nil
	case AbilityHeal:
		if a.Amount <= 0 {
			return fmt.Errorf("heal amount must be positive, got %d", a.Amount)
		}
	case AbilitySlow:
		if a.Range <= 0 {
			return fmt.Errorf("slow range must be positive, got %d", a.Range)
		}
	case AbilityQuake, AbilityWall, AbilityPush:
	default:
		return fmt.Errorf("unknown ability %q", a.Kind)
	}
	if a.Cooldown < 0 {
		return fmt.Errorf("cooldown must not be negative, got %d", a.Cooldown)
	}
	return nil
}
