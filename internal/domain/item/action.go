package item

import (
	"github.com/chronica-rpg/chronica/internal/domain/modifier"
)

// ActionKind mirrors the kind of the action's primary resolver and drives
// icon and cost handling in the presentation layer.
type ActionKind string

const (
	ActionMelee      ActionKind = "melee"
	ActionRanged     ActionKind = "ranged"
	ActionMagical    ActionKind = "magical"
	ActionAuto       ActionKind = "auto"
	ActionHeal       ActionKind = "heal"
	ActionConsumable ActionKind = "consumable"
	ActionBuff       ActionKind = "buffDebuff"
)

// Properties are the four orthogonal lifecycle flags plus the mana-cost
// exemption. They are stored as-is for data compatibility; behavior is
// read through Class.
type Properties struct {
	Visible    bool `json:"visible"`
	Activable  bool `json:"activable"`
	Enabled    bool `json:"enabled"`
	Temporary  bool `json:"temporary"`
	NoManaCost bool `json:"no_mana_cost,omitempty"`
}

// BehaviorClass is the effective lifecycle of an action
type BehaviorClass int

const (
	// ClassPermanent actions mirror their owning item's enabled state;
	// there is no user activation step
	ClassPermanent BehaviorClass = iota

	// ClassToggleable actions are user-driven on/off switches
	ClassToggleable

	// ClassInstantaneous actions are fresh one-shots on each activation
	ClassInstantaneous
)

// Action is one effect unit owned by an item. Its index is its stable
// position in the owning item's action list.
type Action struct {
	Source     Ref                 `json:"source"`
	Indice     int                 `json:"indice"`
	Kind       ActionKind          `json:"kind"`
	Properties Properties          `json:"properties"`
	Conditions []Condition         `json:"conditions,omitempty"`
	Modifiers  []modifier.Modifier `json:"modifiers,omitempty"`
	Resolvers  []Resolver          `json:"resolvers,omitempty"`
}

// Class reduces the lifecycle flags to the action's behavioral class
func (a *Action) Class() BehaviorClass {
	if !a.Properties.Activable {
		return ClassPermanent
	}
	if a.Properties.Temporary {
		return ClassToggleable
	}
	return ClassInstantaneous
}

// ModifiersEnabled reports whether the action's modifiers currently apply.
// Permanent actions follow their owning item: once the item is equipped or
// learned they always contribute, with no stored toggle state.
func (a *Action) ModifiersEnabled() bool {
	if a.Class() == ClassPermanent {
		return true
	}
	return a.Properties.Enabled
}

// CheckConditions evaluates every condition against the owner state;
// an action with no conditions always passes.
func (a *Action) CheckConditions(state ConditionState) bool {
	for i := range a.Conditions {
		if !a.Conditions[i].Check(state, a.Source.ID) {
			return false
		}
	}
	return true
}

// clone copies the action for a re-embedded owning item, rebinding its
// source reference and its modifiers' sources.
func (a Action) clone(source Ref) Action {
	a.Source = source

	mods := make([]modifier.Modifier, len(a.Modifiers))
	copy(mods, a.Modifiers)
	for i := range mods {
		mods[i].Rebind(source.ID)
	}
	a.Modifiers = mods

	resolvers := make([]Resolver, len(a.Resolvers))
	copy(resolvers, a.Resolvers)
	a.Resolvers = resolvers

	conditions := make([]Condition, len(a.Conditions))
	copy(conditions, a.Conditions)
	a.Conditions = conditions

	return a
}

// ConditionKind names a predicate over an item/actor pair
type ConditionKind string

const (
	ConditionEquipped     ConditionKind = "is_equipped"
	ConditionLearned      ConditionKind = "is_learned"
	ConditionOwned        ConditionKind = "is_owned"
	ConditionTagged       ConditionKind = "is_tagged"
	ConditionLinkedActive ConditionKind = "is_linked_action_active"
)

// ConditionState is what a condition can observe about the owner. The
// actor implements it.
type ConditionState interface {
	IsEquipped(itemID string) bool
	IsLearned(itemID string) bool
	Owns(itemID string) bool
	HasTag(itemID, tag string) bool
	ActionActive(itemID string, indice int) bool
}

// Condition is a named predicate attached to an action
type Condition struct {
	Kind ConditionKind `json:"kind"`

	// Value carries the tag for is_tagged, or the linked item ID for
	// is_linked_action_active
	Value string `json:"value,omitempty"`

	// Indice addresses the linked action for is_linked_action_active
	Indice int `json:"indice,omitempty"`
}

// Check evaluates the condition for the given owning item
func (c *Condition) Check(state ConditionState, ownerID string) bool {
	switch c.Kind {
	case ConditionEquipped:
		return state.IsEquipped(ownerID)
	case ConditionLearned:
		return state.IsLearned(ownerID)
	case ConditionOwned:
		return state.Owns(ownerID)
	case ConditionTagged:
		return state.HasTag(ownerID, c.Value)
	case ConditionLinkedActive:
		linked := c.Value
		if linked == "" {
			linked = ownerID
		}
		return state.ActionActive(linked, c.Indice)
	}
	return false
}
