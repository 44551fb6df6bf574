package status

// Filter selects modifiers from a stack.
type Filter func(Modifier) bool

// All accepts every modifier.
func All(Modifier) bool { return true }

// Except rejects modifiers of the given kinds.
func Except(kinds ...Kind) Filter {
	return func(m Modifier) bool {
		for _, k := range kinds {
			if m.Kind() == k {
				return false
			}
		}
		return true
	}
}

// Only accepts modifiers of the given kinds.
func Only(kinds ...Kind) Filter {
	return func(m Modifier) bool {
		for _, k := range kinds {
			if m.Kind() == k {
				return true
			}
		}
		return false
	}
}

// Stack is the ordered list of modifiers a unit owns. Contributions are
// additive so order never changes a sum.
type Stack struct {
	mods []Modifier
}

// NewStack creates an empty stack.
func NewStack() *Stack {
	return &Stack{mods: make([]Modifier, 0, 4)}
}

// Add appends a modifier.
func (s *Stack) Add(m Modifier) {
	if m == nil {
		return
	}
	s.mods = append(s.mods, m)
}

// Remove deletes the modifier with the given id.
func (s *Stack) Remove(id string) bool {
	for i, m := range s.mods {
		if m.ID() == id {
			s.mods = append(s.mods[:i], s.mods[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveKind deletes every modifier of kind k, leaving the rest in order.
func (s *Stack) RemoveKind(k Kind) []Modifier {
	var removed []Modifier
	kept := s.mods[:0]
	for _, m := range s.mods {
		if m.Kind() == k {
			removed = append(removed, m)
			continue
		}
		kept = append(kept, m)
	}
	s.mods = kept
	return removed
}

// ReplaceKind swaps every modifier of m's kind for m. A nil m only removes.
func (s *Stack) ReplaceKind(k Kind, m Modifier) []Modifier {
	removed := s.RemoveKind(k)
	s.Add(m)
	return removed
}

// Find returns the first modifier of kind k.
func (s *Stack) Find(k Kind) (Modifier, bool) {
	for _, m := range s.mods {
		if m.Kind() == k {
			return m, true
		}
	}
	return nil, false
}

// HasNamed reports whether an unexpired modifier with the given name is present.
func (s *Stack) HasNamed(name string) bool {
	for _, m := range s.mods {
		if m.Name() == name && !m.Expired() {
			return true
		}
	}
	return false
}

// Tick advances every timed modifier by one turn and drops the expired ones.
// Dynamic modifiers are untouched.
func (s *Stack) Tick() []Modifier {
	var expired []Modifier
	kept := s.mods[:0]
	for _, m := range s.mods {
		if t, ok := m.(Ticker); ok {
			t.Tick()
		}
		if m.Expired() {
			expired = append(expired, m)
			continue
		}
		kept = append(kept, m)
	}
	s.mods = kept
	return expired
}

// Sum adds up the contribution of every unexpired modifier accepted by filter.
func (s *Stack) Sum(env Env, unitID string, filter Filter) Deltas {
	if filter == nil {
		filter = All
	}
	var total Deltas
	for _, m := range s.mods {
		if m.Expired() || !filter(m) {
			continue
		}
		total = total.Add(m.Deltas(env, unitID))
	}
	return total
}

// List returns a copy of the modifiers in insertion order.
func (s *Stack) List() []Modifier {
	return append([]Modifier(nil), s.mods...)
}

// Len returns the number of modifiers.
func (s *Stack) Len() int { return len(s.mods) }

// Snapshot captures the current list for a later Restore. Timed durations
// only change at turn reset, so a shallow copy is exact within a turn.
func (s *Stack) Snapshot() []Modifier {
	return s.List()
}

// Restore replaces the stack contents with a snapshot.
func (s *Stack) Restore(snapshot []Modifier) {
	s.mods = append(s.mods[:0:0], snapshot...)
}
