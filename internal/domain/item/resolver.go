package item

import (
	"github.com/chronica-rpg/chronica/internal/domain/shared"
)

// ResolverKind is the closed set of effect executors
type ResolverKind string

const (
	ResolverMelee      ResolverKind = "melee"
	ResolverRanged     ResolverKind = "ranged"
	ResolverMagical    ResolverKind = "magical"
	ResolverAuto       ResolverKind = "auto"
	ResolverHeal       ResolverKind = "heal"
	ResolverConsumable ResolverKind = "consumable"
	ResolverBuffDebuff ResolverKind = "buffDebuff"
)

// IsAttack reports whether the kind performs a to-hit roll
func (k ResolverKind) IsAttack() bool {
	switch k {
	case ResolverMelee, ResolverRanged, ResolverMagical:
		return true
	}
	return false
}

// SkillSpec is a resolver's to-hit configuration
type SkillSpec struct {
	Formula string `json:"formula"`

	// CritBonus lowers the critical threshold; the derived critical stat
	// already enforces the floor
	CritBonus int `json:"crit_bonus,omitempty"`

	// Difficulty is a formula for the roll's target number; empty defers
	// to the defender's defense
	Difficulty string `json:"difficulty,omitempty"`
}

// DamageSpec is a resolver's damage configuration
type DamageSpec struct {
	Formula string `json:"formula"`
}

// TargetSpec says who the resolver aims at
type TargetSpec struct {
	Scope  shared.TargetScope `json:"scope,omitempty"`
	Number int                `json:"number,omitempty"`
}

// ApplyOn gates when an additional effect is spawned
type ApplyOn string

const (
	ApplyOnSuccess ApplyOn = "success"
	ApplyOnFailure ApplyOn = "failure"
	ApplyOnAlways  ApplyOn = "always"
)

// Matches reports whether the gate fires for the given roll outcome
func (a ApplyOn) Matches(success bool) bool {
	switch a {
	case ApplyOnAlways, "":
		return true
	case ApplyOnSuccess:
		return success
	case ApplyOnFailure:
		return !success
	}
	return false
}

// AdditionalEffect configures the timed custom effect a resolver can spawn
type AdditionalEffect struct {
	Active      bool                `json:"active"`
	ApplyOn     ApplyOn             `json:"apply_on,omitempty"`
	Statuses    []shared.Status     `json:"statuses,omitempty"`
	Duration    string              `json:"duration,omitempty"` // formula, rounds
	Unit        shared.DurationUnit `json:"unit,omitempty"`
	Formula     string              `json:"formula,omitempty"` // periodic damage or heal
	ElementType string              `json:"element_type,omitempty"`

	// Buff marks the explicit apply-buff intent: the owning action's
	// modifiers ride on the spawned effect
	Buff bool `json:"buff,omitempty"`
}

// Resolver is the stored configuration of one effect execution. It is
// read-only at resolve time; execution substitutes formulas into a
// transient copy.
type Resolver struct {
	Kind             ResolverKind     `json:"kind"`
	Skill            SkillSpec        `json:"skill,omitempty"`
	Dmg              DamageSpec       `json:"dmg,omitempty"`
	Target           TargetSpec       `json:"target,omitempty"`
	AdditionalEffect AdditionalEffect `json:"additional_effect,omitempty"`
}

// Normalized returns a copy with defaults applied: attack resolvers aim
// at a single enemy when no scope is set.
func (r Resolver) Normalized() Resolver {
	if r.Target.Scope == "" {
		switch r.Kind {
		case ResolverMelee, ResolverRanged, ResolverMagical, ResolverAuto:
			r.Target.Scope = shared.TargetSingleEnemy
		case ResolverHeal, ResolverBuffDebuff:
			r.Target.Scope = shared.TargetSelf
		}
	}
	if r.Target.Number == 0 {
		r.Target.Number = 1
	}
	return r
}
