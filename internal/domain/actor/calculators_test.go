package actor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronica-rpg/chronica/internal/domain/item"
	"github.com/chronica-rpg/chronica/internal/domain/modifier"
	"github.com/chronica-rpg/chronica/internal/domain/shared"
)

func testCharacter(t *testing.T) *Actor {
	t.Helper()
	a := NewCharacter("char-1", "player-1", "Aldric")
	a.Abilities[shared.AttributeStrength].Base = 10
	a.Abilities[shared.AttributeAgility].Base = 14
	a.Abilities[shared.AttributeConstitution].Base = 12
	a.Abilities[shared.AttributeIntellect].Base = 10
	a.Abilities[shared.AttributePerception].Base = 10
	a.Abilities[shared.AttributeCharisma].Base = 8
	require.NoError(t, a.SetProfile(&item.Profile{
		ID:     "profile-1",
		Name:   "Knight",
		Family: "warrior",
	}))
	return a
}

func TestPipeline_Abilities(t *testing.T) {
	pipeline := NewPipeline(nil, nil)

	t.Run("value is base plus bonuses, mod is floor(value/2)-5", func(t *testing.T) {
		a := testCharacter(t)
		a.Abilities[shared.AttributeStrength].Bonuses = Bonuses{Sheet: 2, Effects: 0}

		pipeline.Derive(a)

		str := a.Abilities[shared.AttributeStrength]
		assert.Equal(t, 12, str.Value)
		assert.Equal(t, 1, str.Mod)
	})

	t.Run("mod floors at -4", func(t *testing.T) {
		a := testCharacter(t)
		a.Abilities[shared.AttributeCharisma].Base = 1

		pipeline.Derive(a)

		assert.Equal(t, -4, a.Abilities[shared.AttributeCharisma].Mod)
	})

	t.Run("wildcard modifier folds into abilities", func(t *testing.T) {
		a := testCharacter(t)
		a.Features = append(a.Features, &item.Feature{
			ID:   "feat-1",
			Name: "Blessed",
			Modifiers: []modifier.Modifier{
				{SourceID: "feat-1", SourceName: "Blessed", Kind: modifier.KindFeature, Target: modifier.TargetAll, Value: "2"},
			},
		})

		pipeline.Derive(a)

		assert.Equal(t, 12, a.Abilities[shared.AttributeStrength].Value)
		// wildcard never reaches combat stats: defense stays ability-driven
		assert.Equal(t, 10+a.Abilities[shared.AttributeAgility].Mod, a.Stats[shared.StatDefense].Value)
	})

	t.Run("heavy armor caps agility value", func(t *testing.T) {
		a := testCharacter(t)
		a.Abilities[shared.AttributeAgility].Base = 16
		a.Equipment = append(a.Equipment, &item.Equipment{
			ID:         "armor-1",
			Name:       "Plate",
			Subtype:    item.SubtypeArmor,
			Slot:       shared.SlotBody,
			Equipped:   true,
			Defense:    6,
			HeavyArmor: true,
		})

		pipeline.Derive(a)

		agi := a.Abilities[shared.AttributeAgility]
		assert.Equal(t, 12, agi.Value)
		assert.Equal(t, 1, agi.Mod)
	})
}

func TestPipeline_MaxHP(t *testing.T) {
	pipeline := NewPipeline(nil, nil)

	t.Run("character scales with family and constitution per level", func(t *testing.T) {
		a := testCharacter(t)
		a.Level = 3

		pipeline.Derive(a)

		// warrior HPBase 5, con 12 -> mod 1, (5+1)*3
		assert.Equal(t, 18, a.HP.Max)
	})

	t.Run("encounter creature uses flat base", func(t *testing.T) {
		a := NewEncounterActor("npc-1", "gm", "Ghoul", 2, 22)
		pipeline.Derive(a)

		assert.Equal(t, 22, a.HP.Max)
	})

	t.Run("prestige path adds HP per learned capacity", func(t *testing.T) {
		a := testCharacter(t)
		a.Paths = append(a.Paths, &item.Path{
			ID:            "path-p",
			Name:          "Champion",
			CapacityIDs:   []string{"cap-1", "cap-2"},
			Prestige:      true,
			HPPerCapacity: 3,
		})
		a.Capacities = append(a.Capacities,
			&item.Capacity{ID: "cap-1", Name: "First", PathID: "path-p", Learned: true},
			&item.Capacity{ID: "cap-2", Name: "Second", PathID: "path-p", Learned: true},
		)

		pipeline.Derive(a)

		// (5+1)*1 + 2*3
		assert.Equal(t, 12, a.HP.Max)
	})

	t.Run("current HP clamps to new max but is never reset", func(t *testing.T) {
		a := testCharacter(t)
		pipeline.Derive(a)
		a.HP.Current = 4

		pipeline.Derive(a)

		assert.Equal(t, 4, a.HP.Current)
	})
}

func TestPipeline_CombatStats(t *testing.T) {
	pipeline := NewPipeline(nil, nil)

	t.Run("attack stats add ability mod and level", func(t *testing.T) {
		a := testCharacter(t)
		a.Level = 4
		a.Abilities[shared.AttributeStrength].Base = 16 // mod 3

		pipeline.Derive(a)

		assert.Equal(t, 7, a.Stats[shared.StatMeleeAttack].Value)
		assert.Equal(t, 6, a.Stats[shared.StatRangedAttack].Value) // agi 14 -> 2
	})

	t.Run("level bonus caps", func(t *testing.T) {
		a := testCharacter(t)
		a.Level = 14
		a.Abilities[shared.AttributeStrength].Base = 10

		pipeline.Derive(a)

		assert.Equal(t, 10, a.Stats[shared.StatMeleeAttack].Value)
	})

	t.Run("defense counts the first armor and the first shield only", func(t *testing.T) {
		a := testCharacter(t)
		a.Equipment = append(a.Equipment,
			&item.Equipment{ID: "a1", Name: "Chain", Subtype: item.SubtypeArmor, Slot: shared.SlotBody, Equipped: true, Defense: 4},
			&item.Equipment{ID: "a2", Name: "Leather", Subtype: item.SubtypeArmor, Slot: shared.SlotBody, Equipped: true, Defense: 2},
			&item.Equipment{ID: "s1", Name: "Buckler", Subtype: item.SubtypeShield, Slot: shared.SlotOffHand, Equipped: true, Defense: 1},
		)

		pipeline.Derive(a)

		// 10 + agi mod 2 + 4 + 1; second armor ignored
		assert.Equal(t, 17, a.Stats[shared.StatDefense].Value)
	})

	t.Run("critical threshold never drops below the floor", func(t *testing.T) {
		a := testCharacter(t)
		a.Stats[shared.StatCritical].Bonuses = Bonuses{Sheet: 7}

		pipeline.Derive(a)

		assert.Equal(t, 16, a.Stats[shared.StatCritical].Value)
	})

	t.Run("magic attack uses the profile casting attribute", func(t *testing.T) {
		a := testCharacter(t)
		a.Profile.MagicAttribute = shared.AttributeIntellect
		a.Abilities[shared.AttributeIntellect].Base = 16
		a.Level = 2

		pipeline.Derive(a)

		assert.Equal(t, 5, a.Stats[shared.StatMagicAttack].Value)
	})
}

func TestPipeline_Resources(t *testing.T) {
	pipeline := NewPipeline(nil, nil)

	t.Run("fortune and recovery combine constant, ability and family", func(t *testing.T) {
		a := testCharacter(t)
		pipeline.Derive(a)

		// fortune 2 + cha mod -1 + warrior 0; recovery 5 + con mod 1 + warrior 2
		assert.Equal(t, 1, a.Resources[shared.ResourceFortune].Max)
		assert.Equal(t, 8, a.Resources[shared.ResourceRecovery].Max)
	})

	t.Run("mana exists only with a learned spell", func(t *testing.T) {
		a := testCharacter(t)
		a.Profile.Family = "mystic"
		a.Profile.MagicAttribute = shared.AttributeCharisma
		a.Abilities[shared.AttributeCharisma].Base = 16

		pipeline.Derive(a)
		assert.Equal(t, 0, a.Resources[shared.ResourceMana].Max)

		a.Capacities = append(a.Capacities,
			&item.Capacity{ID: "sp-1", Name: "Bolt", Spell: true, Learned: true},
			&item.Capacity{ID: "sp-2", Name: "Ward", Spell: true, Learned: true},
		)
		pipeline.Derive(a)

		// cha mod 3 + 2 spells
		assert.Equal(t, 5, a.Resources[shared.ResourceMana].Max)
	})

	t.Run("pools start full and spent values survive re-derivation", func(t *testing.T) {
		a := testCharacter(t)
		pipeline.Derive(a)

		recovery := a.Resources[shared.ResourceRecovery]
		assert.Equal(t, recovery.Max, recovery.Value)

		require.True(t, recovery.Spend(3))
		pipeline.Derive(a)

		assert.Equal(t, 5, recovery.Value)
	})
}

func TestPipeline_HPStatuses(t *testing.T) {
	pipeline := NewPipeline(nil, nil)

	t.Run("one HP applies weakened, zero swaps it for unconscious", func(t *testing.T) {
		a := testCharacter(t)
		pipeline.Derive(a)

		a.HP.Current = 1
		pipeline.Derive(a)
		assert.True(t, a.HasStatus(shared.StatusWeakened))

		a.HP.Damage(1)
		pipeline.Derive(a)
		assert.True(t, a.HasStatus(shared.StatusUnconscious))
		assert.False(t, a.HasStatus(shared.StatusWeakened))

		a.HP.Heal(5)
		pipeline.Derive(a)
		assert.False(t, a.HasStatus(shared.StatusUnconscious))
		assert.False(t, a.HasStatus(shared.StatusWeakened))
	})

	t.Run("a manually applied unconscious survives healing", func(t *testing.T) {
		a := testCharacter(t)
		pipeline.Derive(a)
		a.HP.Current = a.HP.Max
		pipeline.Derive(a)

		a.AddStatus(shared.StatusUnconscious)
		a.HP.Heal(2)
		pipeline.Derive(a)

		assert.True(t, a.HasStatus(shared.StatusUnconscious))
	})

	t.Run("dropping to zero does not claim a manual unconscious", func(t *testing.T) {
		a := testCharacter(t)
		pipeline.Derive(a)
		a.HP.Current = a.HP.Max
		pipeline.Derive(a)

		a.AddStatus(shared.StatusUnconscious)
		a.HP.Damage(a.HP.Max)
		pipeline.Derive(a)
		require.True(t, a.HasStatus(shared.StatusUnconscious))

		a.HP.Heal(5)
		pipeline.Derive(a)
		assert.True(t, a.HasStatus(shared.StatusUnconscious))
	})
}

func TestPipeline_Idempotence(t *testing.T) {
	pipeline := NewPipeline(nil, nil)

	a := testCharacter(t)
	a.Level = 5
	a.Equipment = append(a.Equipment, &item.Equipment{
		ID: "sw-1", Name: "Sword", Subtype: item.SubtypeWeapon, Slot: shared.SlotMainHand, Equipped: true,
	})
	a.Features = append(a.Features, &item.Feature{
		ID:   "feat-1",
		Name: "Tough",
		Modifiers: []modifier.Modifier{
			{SourceID: "feat-1", SourceName: "Tough", Kind: modifier.KindFeature, Target: modifier.TargetHP, Value: "@niv"},
		},
	})

	pipeline.Derive(a)
	first := a.Clone(a.ID)
	pipeline.Derive(a)

	assert.Equal(t, first.HP.Max, a.HP.Max)
	for _, attr := range shared.Attributes {
		assert.Equal(t, first.Abilities[attr].Value, a.Abilities[attr].Value, attr)
	}
	for _, kind := range shared.CombatStatKinds {
		assert.Equal(t, first.Stats[kind].Value, a.Stats[kind].Value, kind)
	}
	for _, kind := range shared.ResourceKinds {
		assert.Equal(t, first.Resources[kind].Max, a.Resources[kind].Max, kind)
	}
}
