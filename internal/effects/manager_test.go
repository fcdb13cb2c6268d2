package effects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronica-rpg/chronica/internal/domain/modifier"
	"github.com/chronica-rpg/chronica/internal/domain/shared"
)

func TestManager_Apply(t *testing.T) {
	t.Run("adds a new effect", func(t *testing.T) {
		manager := NewManager()

		applied := manager.Apply(&CustomEffect{
			Name:     "Burning",
			Unit:     shared.UnitRound,
			Duration: 3,
		})

		assert.Equal(t, "burning", applied.Slug)
		assert.Equal(t, 3, applied.RemainingTurn)
		assert.Len(t, manager.Effects, 1)
	})

	t.Run("same slug refreshes the timer instead of duplicating", func(t *testing.T) {
		manager := NewManager()

		first := manager.Apply(&CustomEffect{Name: "Burning", Unit: shared.UnitRound, Duration: 3, StartedAt: 1})
		first.RemainingTurn = 1

		refreshed := manager.Apply(&CustomEffect{Name: "Burning", Unit: shared.UnitRound, Duration: 3, StartedAt: 4})

		require.Len(t, manager.Effects, 1)
		assert.Same(t, first, refreshed)
		assert.Equal(t, 3, refreshed.RemainingTurn)
		assert.Equal(t, 4, refreshed.StartedAt)
	})
}

func TestManager_TickAndExpire(t *testing.T) {
	manager := NewManager()
	manager.Apply(&CustomEffect{
		Name:        "Poison",
		Unit:        shared.UnitRound,
		Duration:    2,
		Formula:     "1d4",
		FormulaKind: FormulaDamage,
	})
	manager.Apply(&CustomEffect{Name: "Shielded", Unit: shared.UnitCombat, Duration: 0})

	t.Run("turn start decrements round effects and reports periodic ones", func(t *testing.T) {
		periodic := manager.TickTurnStart()
		require.Len(t, periodic, 1)
		assert.Equal(t, "poison", periodic[0].Slug)
		assert.Equal(t, 1, periodic[0].RemainingTurn)
	})

	t.Run("combat-scoped effects never expire by timer", func(t *testing.T) {
		expired := manager.ExpireTurnEnd()
		assert.Empty(t, expired)
	})

	t.Run("expired round effects are removed at turn end", func(t *testing.T) {
		manager.TickTurnStart()
		expired := manager.ExpireTurnEnd()

		require.Len(t, expired, 1)
		assert.Equal(t, "poison", expired[0].Slug)
		require.Len(t, manager.Effects, 1)
		assert.Equal(t, "shielded", manager.Effects[0].Slug)
	})
}

func TestManager_PurgeAll(t *testing.T) {
	manager := NewManager()
	manager.Apply(&CustomEffect{Name: "One", Unit: shared.UnitRound, Duration: 5})
	manager.Apply(&CustomEffect{Name: "Two", Unit: shared.UnitCombat})

	purged := manager.PurgeAll()
	assert.Len(t, purged, 2)
	assert.Empty(t, manager.Effects)
}

func TestManager_ActiveModifiers(t *testing.T) {
	manager := NewManager()
	manager.Apply(&CustomEffect{
		Name:     "War Cry",
		CasterID: "hero",
		Unit:     shared.UnitRound,
		Duration: 3,
		Modifiers: []modifier.Modifier{
			{SourceName: "War Cry", Target: modifier.TargetMelee, Value: "2", Scope: shared.ApplySelf},
			{SourceName: "War Cry", Target: modifier.TargetDef, Value: "-1", Scope: shared.ApplyOthers},
		},
	})

	t.Run("caster sees self-scoped modifiers only", func(t *testing.T) {
		mods := manager.ActiveModifiers("hero")
		require.Len(t, mods, 1)
		assert.Equal(t, modifier.TargetMelee, mods[0].Target)
	})

	t.Run("target sees others-scoped modifiers only", func(t *testing.T) {
		mods := manager.ActiveModifiers("goblin")
		require.Len(t, mods, 1)
		assert.Equal(t, modifier.TargetDef, mods[0].Target)
	})
}

func TestManager_RemoveAndStatuses(t *testing.T) {
	manager := NewManager()
	manager.Apply(&CustomEffect{
		Name:     "Hexed",
		Unit:     shared.UnitRound,
		Duration: 2,
		Statuses: []shared.Status{shared.StatusWeakened},
	})
	manager.Apply(&CustomEffect{
		Name:     "Nauseous",
		Unit:     shared.UnitRound,
		Duration: 2,
		Statuses: []shared.Status{shared.StatusWeakened, shared.StatusPoisoned},
	})

	statuses := manager.Statuses()
	assert.ElementsMatch(t, []shared.Status{shared.StatusWeakened, shared.StatusPoisoned}, statuses)

	removed := manager.Remove("hexed")
	require.NotNil(t, removed)
	assert.Nil(t, manager.Remove("hexed"))
	assert.Len(t, manager.Effects, 1)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, KindPeriodic, (&CustomEffect{Formula: "1d6"}).Classify())
	assert.Equal(t, KindBuff, (&CustomEffect{Modifiers: []modifier.Modifier{{}}}).Classify())
	assert.Equal(t, KindDebuff, (&CustomEffect{Modifiers: []modifier.Modifier{{}}, Debuff: true}).Classify())
	assert.Equal(t, KindStatus, (&CustomEffect{Statuses: []shared.Status{shared.StatusStunned}}).Classify())
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "war-cry", Slugify("War Cry"))
	assert.Equal(t, "burning", Slugify("  Burning  "))
	assert.Equal(t, "aura-2", Slugify("Aura +2"))
}
