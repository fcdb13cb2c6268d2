package shared

// ApplyScope restricts which side of an effect a modifier applies to, so
// effects a caster inflicts on a target do not also modify the caster.
type ApplyScope string

const (
	ApplySelf   ApplyScope = "self"
	ApplyOthers ApplyScope = "others"
	ApplyAll    ApplyScope = "all"
)

// AppliesToSelf reports whether the scope covers the effect's caster
func (s ApplyScope) AppliesToSelf() bool {
	return s == ApplySelf || s == ApplyAll || s == ""
}

// AppliesToOthers reports whether the scope covers the effect's targets
func (s ApplyScope) AppliesToOthers() bool {
	return s == ApplyOthers || s == ApplyAll
}

// TargetScope describes who an action's resolver aims at
type TargetScope string

const (
	TargetSelf        TargetScope = "self"
	TargetSingleEnemy TargetScope = "single_enemy"
	TargetAllEnemies  TargetScope = "all_enemies"
	TargetSingleAlly  TargetScope = "single_ally"
	TargetAllAllies   TargetScope = "all_allies"
)
