package actor

import (
	"github.com/chronica-rpg/chronica/internal/domain/item"
	"github.com/chronica-rpg/chronica/internal/domain/modifier"
	"github.com/chronica-rpg/chronica/internal/domain/shared"
	"github.com/chronica-rpg/chronica/internal/effects"
	apperrors "github.com/chronica-rpg/chronica/internal/errors"
)

// Kind separates player characters from GM-driven encounter creatures. Both
// share the same sheet model; creatures use a flat HP base and their level
// field holds the challenge rating.
type Kind string

const (
	KindCharacter Kind = "character"
	KindEncounter Kind = "encounter"
)

// Actor is a full character or creature sheet. All derived fields (ability
// values and mods, stat values, pool maxima, movement, statuses tied to HP)
// are owned by the derivation pipeline and recomputed on every pass.
type Actor struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`
	Name    string `json:"name"`
	Kind    Kind   `json:"kind"`

	// Level is the character level, or the challenge rating for encounter
	// creatures. Evolving dice and level-capped bonuses read it either way.
	Level int `json:"level"`

	// FlatHPBase replaces the family HP scaling for encounter creatures.
	FlatHPBase int `json:"flat_hp_base,omitempty"`

	Abilities map[shared.Attribute]*Ability         `json:"abilities"`
	Stats     map[shared.CombatStatKind]*CombatStat `json:"stats"`
	Resources map[shared.ResourceKind]*ResourcePool `json:"resources"`
	HP        HitPoints                             `json:"hp"`

	Movement   int  `json:"movement"`
	Darkvision bool `json:"darkvision"`

	Statuses []shared.Status `json:"statuses,omitempty"`

	// Flags recording which HP-threshold statuses this engine applied, so a
	// GM-applied unconscious is never cleared by a heal.
	EngineWeakened    bool `json:"engine_weakened,omitempty"`
	EngineUnconscious bool `json:"engine_unconscious,omitempty"`

	Profile    *item.Profile     `json:"profile,omitempty"`
	Features   []*item.Feature   `json:"features,omitempty"`
	Paths      []*item.Path      `json:"paths,omitempty"`
	Capacities []*item.Capacity  `json:"capacities,omitempty"`
	Equipment  []*item.Equipment `json:"equipment,omitempty"`

	Effects *effects.Manager `json:"effects,omitempty"`
}

// NewCharacter creates an empty level-1 player character sheet. Ability and
// stat maps are fully populated so the pipeline never nil-checks.
func NewCharacter(id, ownerID, name string) *Actor {
	a := newActor(id, ownerID, name, KindCharacter)
	a.Level = 1
	return a
}

// NewEncounterActor creates a GM-driven creature of the given challenge
// rating with a flat HP base.
func NewEncounterActor(id, ownerID, name string, challengeRating, hpBase int) *Actor {
	a := newActor(id, ownerID, name, KindEncounter)
	a.Level = challengeRating
	a.FlatHPBase = hpBase
	return a
}

func newActor(id, ownerID, name string, kind Kind) *Actor {
	a := &Actor{
		ID:        id,
		OwnerID:   ownerID,
		Name:      name,
		Kind:      kind,
		Abilities: make(map[shared.Attribute]*Ability, len(shared.Attributes)),
		Stats:     make(map[shared.CombatStatKind]*CombatStat, len(shared.CombatStatKinds)),
		Resources: make(map[shared.ResourceKind]*ResourcePool, len(shared.ResourceKinds)),
		Effects:   effects.NewManager(),
	}
	for _, attr := range shared.Attributes {
		a.Abilities[attr] = &Ability{}
	}
	for _, kind := range shared.CombatStatKinds {
		a.Stats[kind] = &CombatStat{}
	}
	for _, kind := range shared.ResourceKinds {
		a.Resources[kind] = &ResourcePool{}
	}
	return a
}

// SetProfile attaches the profile. An actor has at most one.
func (a *Actor) SetProfile(p *item.Profile) error {
	if a.Profile != nil {
		return apperrors.Preconditionf("actor %s already has a profile", a.Name)
	}
	a.Profile = p
	return nil
}

// CapacityByID returns the capacity with the given item ID, or nil.
func (a *Actor) CapacityByID(id string) *item.Capacity {
	for _, c := range a.Capacities {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// EquipmentByID returns the equipment with the given item ID, or nil.
func (a *Actor) EquipmentByID(id string) *item.Equipment {
	for _, e := range a.Equipment {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// RemoveEquipment drops a piece of equipment from the inventory. Used when
// a consumable with destroy-on-empty runs out.
func (a *Actor) RemoveEquipment(id string) {
	for i, e := range a.Equipment {
		if e.ID == id {
			a.Equipment = append(a.Equipment[:i], a.Equipment[i+1:]...)
			return
		}
	}
}

// PathByID returns the path with the given item ID, or nil.
func (a *Actor) PathByID(id string) *item.Path {
	for _, p := range a.Paths {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// ItemName resolves any owned item ID to its display name.
func (a *Actor) ItemName(id string) string {
	if c := a.CapacityByID(id); c != nil {
		return c.Name
	}
	if e := a.EquipmentByID(id); e != nil {
		return e.Name
	}
	if p := a.PathByID(id); p != nil {
		return p.Name
	}
	if f := a.featureByID(id); f != nil {
		return f.Name
	}
	if a.Profile != nil && a.Profile.ID == id {
		return a.Profile.Name
	}
	return ""
}

func (a *Actor) featureByID(id string) *item.Feature {
	for _, f := range a.Features {
		if f.ID == id {
			return f
		}
	}
	return nil
}

// FindAction locates an action by owning item ID and index within that item.
// Stale references resolve to nil rather than an error so that lingering
// pointers to deleted items degrade to no-ops.
func (a *Actor) FindAction(itemID string, indice int) *item.Action {
	var actions []item.Action
	if c := a.CapacityByID(itemID); c != nil {
		actions = c.Actions
	} else if e := a.EquipmentByID(itemID); e != nil {
		actions = e.Actions
	}
	for i := range actions {
		if actions[i].Indice == indice {
			return &actions[i]
		}
	}
	return nil
}

// EquippedWeapon returns the first equipped weapon, or nil for bare hands.
func (a *Actor) EquippedWeapon() *item.Equipment {
	for _, e := range a.Equipment {
		if e.Equipped && e.IsWeapon() {
			return e
		}
	}
	return nil
}

// EquipmentDefense sums the defense of the first equipped armor and the
// first equipped shield. Stacking a second armor contributes nothing.
func (a *Actor) EquipmentDefense() int {
	total := 0
	armorSeen, shieldSeen := false, false
	for _, e := range a.Equipment {
		if !e.Equipped {
			continue
		}
		switch e.Subtype {
		case item.SubtypeArmor:
			if !armorSeen {
				total += e.Defense
				armorSeen = true
			}
		case item.SubtypeShield:
			if !shieldSeen {
				total += e.Defense
				shieldSeen = true
			}
		}
	}
	return total
}

// HeavyArmorEquipped reports whether any equipped armor restricts agility.
func (a *Actor) HeavyArmorEquipped() bool {
	for _, e := range a.Equipment {
		if e.Equipped && e.Subtype == item.SubtypeArmor && e.HeavyArmor {
			return true
		}
	}
	return false
}

// HasStatus reports whether the status is present, from the sheet list or
// from an active timed effect.
func (a *Actor) HasStatus(s shared.Status) bool {
	for _, have := range a.Statuses {
		if have == s {
			return true
		}
	}
	if a.Effects != nil {
		for _, have := range a.Effects.Statuses() {
			if have == s {
				return true
			}
		}
	}
	return false
}

// AddStatus appends the status if absent.
func (a *Actor) AddStatus(s shared.Status) {
	for _, have := range a.Statuses {
		if have == s {
			return
		}
	}
	a.Statuses = append(a.Statuses, s)
}

// RemoveStatus removes the status from the sheet list.
func (a *Actor) RemoveStatus(s shared.Status) {
	out := a.Statuses[:0]
	for _, have := range a.Statuses {
		if have != s {
			out = append(out, have)
		}
	}
	a.Statuses = out
}

// IsDead reports whether the actor carries the dead status.
func (a *Actor) IsDead() bool {
	return a.HasStatus(shared.StatusDead)
}

// EnabledModifiers gathers every modifier currently contributing to derived
// stats: features and the profile always, learned capacities (not their
// at-will toggles unless the toggle is on), equipped equipment, enabled
// actions on those items, and active timed effects seen from this actor's
// point of view.
func (a *Actor) EnabledModifiers() []modifier.Modifier {
	var mods []modifier.Modifier
	for _, f := range a.Features {
		mods = append(mods, f.Modifiers...)
	}
	if a.Profile != nil {
		mods = append(mods, a.Profile.Modifiers...)
	}
	for _, c := range a.Capacities {
		if !c.Learned {
			continue
		}
		mods = append(mods, c.Modifiers...)
		for i := range c.Actions {
			if c.Actions[i].ModifiersEnabled() {
				mods = append(mods, c.Actions[i].Modifiers...)
			}
		}
	}
	for _, e := range a.Equipment {
		if !e.Equipped {
			continue
		}
		mods = append(mods, e.Modifiers...)
		for i := range e.Actions {
			if e.Actions[i].ModifiersEnabled() {
				mods = append(mods, e.Actions[i].Modifiers...)
			}
		}
	}
	if a.Effects != nil {
		mods = append(mods, a.Effects.ActiveModifiers(a.ID)...)
	}
	return mods
}

// conditionState adapts the actor to action condition checks.
type conditionState struct{ a *Actor }

// Conditions returns the view actions use to evaluate their gating
// conditions against this actor.
func (a *Actor) Conditions() item.ConditionState {
	return conditionState{a}
}

func (s conditionState) IsEquipped(itemID string) bool {
	e := s.a.EquipmentByID(itemID)
	return e != nil && e.Equipped
}

func (s conditionState) IsLearned(itemID string) bool {
	c := s.a.CapacityByID(itemID)
	return c != nil && c.Learned
}

func (s conditionState) Owns(itemID string) bool {
	return s.a.EquipmentByID(itemID) != nil || s.a.CapacityByID(itemID) != nil
}

func (s conditionState) HasTag(itemID, tag string) bool {
	e := s.a.EquipmentByID(itemID)
	return e != nil && e.Equipped && e.HasTag(tag)
}

func (s conditionState) ActionActive(itemID string, indice int) bool {
	act := s.a.FindAction(itemID, indice)
	return act != nil && act.Properties.Enabled
}

// rankProvider adapts the actor to formula rank lookups.
type rankProvider struct{ a *Actor }

// Ranks returns the view formula evaluation uses to resolve rank tokens for
// a given source item.
func (a *Actor) Ranks() rankProvider {
	return rankProvider{a}
}

// PathRank counts the learned capacities of a path, which is the rank the
// next capacity in order would unlock.
func (a *Actor) PathRank(p *item.Path) int {
	rank := 0
	for _, id := range p.CapacityIDs {
		if c := a.CapacityByID(id); c != nil && c.Learned {
			rank++
		}
	}
	return rank
}

func (r rankProvider) RankFor(sourceItemID string) (int, bool) {
	c := r.a.CapacityByID(sourceItemID)
	if c == nil {
		return 0, false
	}
	if c.PathID != "" {
		if p := r.a.PathByID(c.PathID); p != nil {
			return r.a.PathRank(p), true
		}
	}
	if c.ParentID != "" && c.ParentID != sourceItemID {
		if rank, ok := r.RankFor(c.ParentID); ok {
			return rank, true
		}
	}
	if c.Rank > 0 {
		return c.Rank, true
	}
	return 0, false
}

// PathCountAtRank counts how many of the profile's paths have reached at
// least the given rank.
func (r rankProvider) PathCountAtRank(min int) int {
	if r.a.Profile == nil {
		return 0
	}
	count := 0
	for _, id := range r.a.Profile.PathIDs {
		p := r.a.PathByID(id)
		if p != nil && r.a.PathRank(p) >= min {
			count++
		}
	}
	return count
}

// Clone returns a deep copy with a fresh identity, used when instantiating
// encounter creatures from a template.
func (a *Actor) Clone(newID string) *Actor {
	out := newActor(newID, a.OwnerID, a.Name, a.Kind)
	out.Level = a.Level
	out.FlatHPBase = a.FlatHPBase
	out.HP = a.HP
	out.Movement = a.Movement
	out.Darkvision = a.Darkvision
	out.EngineWeakened = a.EngineWeakened
	out.EngineUnconscious = a.EngineUnconscious
	out.Statuses = append([]shared.Status(nil), a.Statuses...)
	for attr, ab := range a.Abilities {
		cp := *ab
		out.Abilities[attr] = &cp
	}
	for kind, st := range a.Stats {
		cp := *st
		out.Stats[kind] = &cp
	}
	for kind, pool := range a.Resources {
		cp := *pool
		out.Resources[kind] = &cp
	}
	if a.Profile != nil {
		cp := *a.Profile
		cp.Modifiers = append([]modifier.Modifier(nil), a.Profile.Modifiers...)
		cp.PathIDs = append([]string(nil), a.Profile.PathIDs...)
		out.Profile = &cp
	}
	for _, f := range a.Features {
		cp := *f
		cp.Modifiers = append([]modifier.Modifier(nil), f.Modifiers...)
		out.Features = append(out.Features, &cp)
	}
	for _, p := range a.Paths {
		cp := *p
		cp.CapacityIDs = append([]string(nil), p.CapacityIDs...)
		out.Paths = append(out.Paths, &cp)
	}
	for _, c := range a.Capacities {
		out.Capacities = append(out.Capacities, c.Clone(c.ID))
	}
	for _, e := range a.Equipment {
		out.Equipment = append(out.Equipment, e.Clone(e.ID))
	}
	if a.Effects != nil {
		for _, eff := range a.Effects.Effects {
			cp := *eff
			cp.Statuses = append([]shared.Status(nil), eff.Statuses...)
			cp.Modifiers = append([]modifier.Modifier(nil), eff.Modifiers...)
			out.Effects.Effects = append(out.Effects.Effects, &cp)
		}
	}
	return out
}
