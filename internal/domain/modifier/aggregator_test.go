package modifier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chronica-rpg/chronica/internal/domain/formula"
)

func testMods() []Modifier {
	return []Modifier{
		{SourceID: "ring", SourceName: "Ring of Might", Kind: KindEquipment, Target: TargetStr, Value: "2"},
		{SourceID: "belt", SourceName: "Belt", Kind: KindEquipment, Target: TargetStr, Value: "@niv"},
		{SourceID: "blade", SourceName: "Blade", Kind: KindEquipment, Target: TargetMelee, Value: "1"},
		{SourceID: "blessing", SourceName: "Blessing", Kind: KindEffect, Target: TargetAll, Value: "1"},
		{SourceID: "dud", SourceName: "Dud", Kind: KindFeature, Target: TargetStr, Value: "0"},
		{SourceID: "anon", SourceName: "", Kind: KindFeature, Target: TargetStr, Value: "3"},
	}
}

func testSnap() *formula.Snapshot {
	return &formula.Snapshot{Level: 2, Values: map[string]int{"niv": 2}}
}

func TestAggregator_TotalFor(t *testing.T) {
	agg := NewAggregator(formula.NewEvaluator(nil, nil))

	t.Run("sums matching targets and wildcard for abilities", func(t *testing.T) {
		total := agg.TotalFor(testSnap(), testMods(), TargetStr)

		// 2 (ring) + 2 (belt formula) + 1 (wildcard) + 0 (dud) + 3 (anon)
		assert.Equal(t, 8, total.Value)
	})

	t.Run("wildcard excluded from combat targets", func(t *testing.T) {
		total := agg.TotalFor(testSnap(), testMods(), TargetMelee)
		assert.Equal(t, 1, total.Value)
	})

	t.Run("tooltip skips zero and unnamed contributions", func(t *testing.T) {
		total := agg.TotalFor(testSnap(), testMods(), TargetStr)

		assert.Contains(t, total.Tooltip, "Ring of Might : +2")
		assert.Contains(t, total.Tooltip, "Belt : +2")
		assert.Contains(t, total.Tooltip, "Blessing : +1")
		assert.NotContains(t, total.Tooltip, "Dud")
		assert.NotContains(t, total.Tooltip, "+3")
	})

	t.Run("empty input", func(t *testing.T) {
		total := agg.TotalFor(testSnap(), nil, TargetStr)
		assert.Equal(t, 0, total.Value)
		assert.Equal(t, "", total.Tooltip)
	})
}

func TestAggregator_SkillTotalFor(t *testing.T) {
	agg := NewAggregator(formula.NewEvaluator(nil, nil))

	mods := []Modifier{
		{SourceID: "a", SourceName: "Cat Grace", Target: TargetSkill, Subtype: "stealth", Value: "2"},
		{SourceID: "b", SourceName: "Lucky Charm", Target: TargetSkill, Value: "1"},
		{SourceID: "c", SourceName: "Blessing", Target: TargetAll, Value: "1"},
		{SourceID: "d", SourceName: "Sharp Eye", Target: TargetSkill, Subtype: "perception", Value: "3"},
	}

	t.Run("matches subtype, untyped and wildcard", func(t *testing.T) {
		total := agg.SkillTotalFor(testSnap(), mods, "stealth")
		assert.Equal(t, 4, total.Value)
	})

	t.Run("other subtypes excluded", func(t *testing.T) {
		total := agg.SkillTotalFor(testSnap(), mods, "athletics")
		assert.Equal(t, 2, total.Value)
	})
}

func TestModifier_Rebind(t *testing.T) {
	mod := Modifier{SourceID: "original", Target: TargetStr, Value: "1"}
	mod.Rebind("clone")
	assert.Equal(t, "clone", mod.SourceID)
}
