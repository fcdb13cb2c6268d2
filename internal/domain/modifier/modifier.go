package modifier

import (
	"github.com/chronica-rpg/chronica/internal/domain/formula"
	"github.com/chronica-rpg/chronica/internal/domain/shared"
)

// Kind is the owner category a modifier comes from. Modifiers are pulled
// from four item categories per actor, plus live custom effects.
type Kind string

const (
	KindFeature   Kind = "feature"
	KindProfile   Kind = "profile"
	KindCapacity  Kind = "capacity"
	KindEquipment Kind = "equipment"
	KindEffect    Kind = "effect"
)

// Target names the stat a modifier contributes to
type Target string

const (
	// ability targets match shared.Attribute values
	TargetStr Target = "str"
	TargetAgi Target = "agi"
	TargetCon Target = "con"
	TargetInt Target = "int"
	TargetPer Target = "per"
	TargetCha Target = "cha"

	// combat targets match shared.CombatStatKind values
	TargetMelee  Target = "melee"
	TargetRanged Target = "ranged"
	TargetMagic  Target = "magic"
	TargetInit   Target = "init"
	TargetDef    Target = "def"
	TargetCrit   Target = "crit"
	TargetDR     Target = "dr"

	// attribute targets
	TargetHP         Target = "hp"
	TargetMovement   Target = "movement"
	TargetDarkvision Target = "darkvision"

	// resource targets match shared.ResourceKind values
	TargetFortune  Target = "fortune"
	TargetMana     Target = "mana"
	TargetRecovery Target = "recovery"

	// skill-check target, addressed with the check's subtype
	TargetSkill Target = "skill"

	// TargetAll is the wildcard sentinel. It folds into ability and
	// skill-check totals only; combat and attribute totals exclude it so
	// a wildcard is never double-counted through derived stats.
	TargetAll Target = "all"
)

// AbilityTarget converts an attribute to its modifier target
func AbilityTarget(attr shared.Attribute) Target {
	return Target(attr)
}

// CombatTarget converts a combat stat kind to its modifier target
func CombatTarget(kind shared.CombatStatKind) Target {
	return Target(kind)
}

// ResourceTarget converts a resource kind to its modifier target
func ResourceTarget(kind shared.ResourceKind) Target {
	return Target(kind)
}

// AcceptsWildcard reports whether the wildcard "all" target folds into
// totals for this target.
func (t Target) AcceptsWildcard() bool {
	switch t {
	case TargetStr, TargetAgi, TargetCon, TargetInt, TargetPer, TargetCha, TargetSkill:
		return true
	}
	return false
}

// Modifier is one typed, sourced contribution to a target stat. It is
// immutable once created except for source rebinding when its owning item
// is cloned or re-embedded.
type Modifier struct {
	SourceID   string            `json:"source_id"`   // owning item
	SourceName string            `json:"source_name"` // shown in tooltips
	Kind       Kind              `json:"kind"`
	Target     Target            `json:"target"`
	Subtype    string            `json:"subtype,omitempty"` // skill key for skill-check targets
	Value      string            `json:"value"`             // formula or literal
	Scope      shared.ApplyScope `json:"scope,omitempty"`   // for effect-carried modifiers
}

// Rebind updates the source reference after the owning item was cloned
func (m *Modifier) Rebind(sourceID string) {
	m.SourceID = sourceID
}

// Evaluate resolves the modifier's value against the snapshot, anchoring
// rank references on the modifier's own source item.
func (m *Modifier) Evaluate(eval *formula.Evaluator, snap *formula.Snapshot) int {
	return eval.Evaluate(snap, m.Value, m.SourceID)
}
