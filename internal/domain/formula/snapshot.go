package formula

// RankProvider resolves progression ranks for the @rank family of tokens.
// The actor implements it: the rank comes from the path the source capacity
// belongs to, the capacity's own rank when path-less, or the parent
// capacity's rank for a linked child capacity.
type RankProvider interface {
	// RankFor returns the progression rank anchored at the given item
	RankFor(sourceItemID string) (int, bool)

	// PathCountAtRank counts the profile's paths with rank >= minRank
	PathCountAtRank(minRank int) int
}

// Snapshot is the read view of an actor a formula evaluates against. The
// derivation pipeline fills it; the evaluator never writes through it.
type Snapshot struct {
	// Level is the character level, or the challenge rating band for
	// encounter actors
	Level int

	// Values maps shortcut tokens (without the leading @) to the current
	// derived value: abilities, combat stats, resources, level
	Values map[string]int

	// WeaponDamage and WeaponSkill are the first equipped weapon's primary
	// action formulas, or the bare-hands fallbacks when nothing is equipped
	WeaponDamage string
	WeaponSkill  string

	// Ranks resolves @rank references; nil leaves rank tokens untouched
	Ranks RankProvider
}

// Value returns a token's value, 0 when absent
func (s *Snapshot) Value(token string) int {
	if s == nil || s.Values == nil {
		return 0
	}
	return s.Values[token]
}
