package item

import (
	"github.com/chronica-rpg/chronica/internal/domain/modifier"
)

// Frequency says how often a capacity can be used
type Frequency string

const (
	// FrequencyAtWill has no charge tracking
	FrequencyAtWill Frequency = ""

	// FrequencyCombat recharges when a combat ends
	FrequencyCombat Frequency = "combat"

	// FrequencyDaily recharges on a full rest
	FrequencyDaily Frequency = "daily"
)

// Charged reports whether the frequency implies charge tracking
func (f Frequency) Charged() bool {
	return f == FrequencyCombat || f == FrequencyDaily
}

// Capacity is a learnable special ability. It can belong to a Path, be a
// linked child of another capacity, or stand alone with its own rank.
type Capacity struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	PathID   string `json:"path_id,omitempty"`   // empty when path-less
	ParentID string `json:"parent_id,omitempty"` // linked child capacities inherit the parent's rank
	Learned  bool   `json:"learned"`

	// Spell capacities consume mana when activated
	Spell    bool   `json:"spell,omitempty"`
	ManaCost string `json:"mana_cost,omitempty"` // formula

	Frequency Frequency  `json:"frequency,omitempty"`
	Charges   ChargePool `json:"charges,omitempty"`

	// Rank is the capacity's own progression rank when it has no path
	Rank int `json:"rank,omitempty"`

	// MinLevel gates learning
	MinLevel int `json:"min_level,omitempty"`

	Actions   []Action            `json:"actions,omitempty"`
	Modifiers []modifier.Modifier `json:"modifiers,omitempty"`
}

// Ref returns a typed reference to this capacity
func (c *Capacity) Ref() Ref {
	return Ref{ID: c.ID, Type: TypeCapacity}
}

// Clone copies the capacity under a new ID, rebinding action sources and
// modifier sources to the new item.
func (c *Capacity) Clone(newID string) *Capacity {
	clone := *c
	clone.ID = newID

	clone.Actions = make([]Action, len(c.Actions))
	for i := range c.Actions {
		clone.Actions[i] = c.Actions[i].clone(Ref{ID: newID, Type: TypeCapacity})
	}

	clone.Modifiers = make([]modifier.Modifier, len(c.Modifiers))
	copy(clone.Modifiers, c.Modifiers)
	for i := range clone.Modifiers {
		clone.Modifiers[i].Rebind(newID)
	}

	return &clone
}

// Path is an ordered progression of capacities. Its rank is the count of
// learned capacities; capacities must be learned in order.
type Path struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	CapacityIDs []string `json:"capacity_ids"` // ordered

	// Prestige paths grant bonus hit points per learned capacity
	Prestige      bool `json:"prestige,omitempty"`
	HPPerCapacity int  `json:"hp_per_capacity,omitempty"`
}

// Ref returns a typed reference to this path
func (p *Path) Ref() Ref {
	return Ref{ID: p.ID, Type: TypePath}
}

// Position returns the 0-based position of a capacity in the path, or -1
func (p *Path) Position(capacityID string) int {
	for i, id := range p.CapacityIDs {
		if id == capacityID {
			return i
		}
	}
	return -1
}
