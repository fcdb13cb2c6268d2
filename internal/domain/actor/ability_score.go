package actor

// Bonuses splits a stat bonus between the editable sheet column and the
// column fed by timed effects.
type Bonuses struct {
	Sheet   int `json:"sheet"`
	Effects int `json:"effects"`
}

func (b Bonuses) Total() int {
	return b.Sheet + b.Effects
}

// Ability is one of the six core ability scores. Value and Mod are derived
// each pipeline pass; only Base and Bonuses are authored.
type Ability struct {
	Base    int     `json:"base"`
	Bonuses Bonuses `json:"bonuses"`

	// Derived.
	Value   int    `json:"value"`
	Mod     int    `json:"mod"`
	Tooltip string `json:"tooltip,omitempty"`
}

// abilityMod maps an ability value to its modifier: floor(value/2)-5,
// never below -4.
func abilityMod(value int) int {
	if value < 0 {
		value = 0
	}
	mod := value/2 - 5
	if mod < -4 {
		mod = -4
	}
	return mod
}

// CombatStat is a derived combat number (attack, defense, initiative,
// critical threshold, damage reduction). Base is recomputed each pass.
type CombatStat struct {
	Bonuses Bonuses `json:"bonuses"`

	// Derived.
	Base    int    `json:"base"`
	Value   int    `json:"value"`
	Tooltip string `json:"tooltip,omitempty"`
}

// ResourcePool is a spendable pool (fortune, mana, recovery). Max is derived
// each pass; Value is only ever clamped, never reset, once primed.
type ResourcePool struct {
	Value  int  `json:"value"`
	Max    int  `json:"max"`
	Primed bool `json:"primed"`
}

// Spend removes n from the pool, rejecting overdraw.
func (p *ResourcePool) Spend(n int) bool {
	if n < 0 || p.Value < n {
		return false
	}
	p.Value -= n
	return true
}

// Restore adds n to the pool, clamped to Max.
func (p *ResourcePool) Restore(n int) {
	p.Value += n
	if p.Value > p.Max {
		p.Value = p.Max
	}
	if p.Value < 0 {
		p.Value = 0
	}
}

// HitPoints tracks current and max HP. Max is derived; Current is mutated by
// damage and healing and clamped to [0, Max].
type HitPoints struct {
	Current int `json:"current"`
	Max     int `json:"max"`
}

func (hp *HitPoints) Damage(n int) {
	if n < 0 {
		return
	}
	hp.Current -= n
	if hp.Current < 0 {
		hp.Current = 0
	}
}

func (hp *HitPoints) Heal(n int) {
	if n < 0 {
		return
	}
	hp.Current += n
	if hp.Current > hp.Max {
		hp.Current = hp.Max
	}
}

func (hp *HitPoints) clamp() {
	if hp.Current > hp.Max {
		hp.Current = hp.Max
	}
	if hp.Current < 0 {
		hp.Current = 0
	}
}
