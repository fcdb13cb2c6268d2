package modifier

import (
	"fmt"
	"strings"

	"github.com/chronica-rpg/chronica/internal/domain/formula"
)

// Total pairs an aggregated bonus with its human-readable breakdown
type Total struct {
	Value   int
	Tooltip string
}

// Aggregator sums modifiers per target
type Aggregator struct {
	eval *formula.Evaluator
}

// NewAggregator creates an aggregator over the given evaluator
func NewAggregator(eval *formula.Evaluator) *Aggregator {
	return &Aggregator{eval: eval}
}

// TotalFor filters the modifiers addressed at target and sums their
// evaluated values. The wildcard "all" target is folded in only where the
// target accepts it. The tooltip lists each non-zero named contribution.
func (a *Aggregator) TotalFor(snap *formula.Snapshot, mods []Modifier, target Target) Total {
	var total int
	var tooltip strings.Builder

	for i := range mods {
		mod := &mods[i]
		if mod.Target != target {
			if mod.Target != TargetAll || !target.AcceptsWildcard() {
				continue
			}
		}

		value := mod.Evaluate(a.eval, snap)
		total += value

		if value != 0 && mod.SourceName != "" {
			fmt.Fprintf(&tooltip, "%s : %+d ", mod.SourceName, value)
		}
	}

	return Total{Value: total, Tooltip: tooltip.String()}
}

// SkillTotalFor sums skill-check modifiers for one skill key, folding in
// the wildcard target and untyped skill modifiers.
func (a *Aggregator) SkillTotalFor(snap *formula.Snapshot, mods []Modifier, skillKey string) Total {
	var total int
	var tooltip strings.Builder

	for i := range mods {
		mod := &mods[i]
		switch mod.Target {
		case TargetSkill:
			if mod.Subtype != "" && !strings.EqualFold(mod.Subtype, skillKey) {
				continue
			}
		case TargetAll:
		default:
			continue
		}

		value := mod.Evaluate(a.eval, snap)
		total += value

		if value != 0 && mod.SourceName != "" {
			fmt.Fprintf(&tooltip, "%s : %+d ", mod.SourceName, value)
		}
	}

	return Total{Value: total, Tooltip: tooltip.String()}
}
