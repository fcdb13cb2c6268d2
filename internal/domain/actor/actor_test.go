package actor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronica-rpg/chronica/internal/domain/item"
	"github.com/chronica-rpg/chronica/internal/domain/shared"
	apperrors "github.com/chronica-rpg/chronica/internal/errors"
)

func actorWithPath(t *testing.T) *Actor {
	t.Helper()
	a := NewCharacter("char-1", "player-1", "Mira")
	a.Paths = append(a.Paths, &item.Path{
		ID:          "path-1",
		Name:        "Flame",
		CapacityIDs: []string{"cap-1", "cap-2", "cap-3"},
	})
	a.Capacities = append(a.Capacities,
		&item.Capacity{ID: "cap-1", Name: "Spark", PathID: "path-1"},
		&item.Capacity{ID: "cap-2", Name: "Flare", PathID: "path-1"},
		&item.Capacity{ID: "cap-3", Name: "Inferno", PathID: "path-1"},
	)
	return a
}

func TestActor_LearnCapacity(t *testing.T) {
	t.Run("learns in path order", func(t *testing.T) {
		a := actorWithPath(t)

		require.NoError(t, a.LearnCapacity("cap-1", false))
		require.NoError(t, a.LearnCapacity("cap-2", false))
		assert.Equal(t, 2, a.PathRank(a.Paths[0]))
	})

	t.Run("rejects learning over a hole", func(t *testing.T) {
		a := actorWithPath(t)

		err := a.LearnCapacity("cap-2", false)
		require.Error(t, err)
		assert.True(t, apperrors.IsPrecondition(err))
	})

	t.Run("level-1 caster may take the second capacity first", func(t *testing.T) {
		a := actorWithPath(t)

		require.NoError(t, a.LearnCapacity("cap-2", true))
		// the exception covers position 1 only
		err := a.LearnCapacity("cap-3", true)
		require.Error(t, err)
	})

	t.Run("rejects below minimum level", func(t *testing.T) {
		a := actorWithPath(t)
		a.CapacityByID("cap-1").MinLevel = 3

		err := a.LearnCapacity("cap-1", false)
		require.Error(t, err)
		assert.True(t, apperrors.IsPrecondition(err))
	})

	t.Run("unlearn rejects while a later capacity is learned", func(t *testing.T) {
		a := actorWithPath(t)
		require.NoError(t, a.LearnCapacity("cap-1", false))
		require.NoError(t, a.LearnCapacity("cap-2", false))

		err := a.UnlearnCapacity("cap-1")
		require.Error(t, err)

		require.NoError(t, a.UnlearnCapacity("cap-2"))
		require.NoError(t, a.UnlearnCapacity("cap-1"))
	})
}

func TestActor_Equip(t *testing.T) {
	newSword := func(id string) *item.Equipment {
		return &item.Equipment{ID: id, Name: "Sword " + id, Subtype: item.SubtypeWeapon, Slot: shared.SlotMainHand}
	}

	t.Run("rejects a second item in a hand slot", func(t *testing.T) {
		a := NewCharacter("char-1", "player-1", "Mira")
		a.Equipment = append(a.Equipment, newSword("sw-1"), newSword("sw-2"))

		require.NoError(t, a.Equip("sw-1"))
		err := a.Equip("sw-2")
		require.Error(t, err)
		assert.True(t, apperrors.IsPrecondition(err))
		assert.Contains(t, err.Error(), "hands are full")
	})

	t.Run("unequip frees the slot", func(t *testing.T) {
		a := NewCharacter("char-1", "player-1", "Mira")
		a.Equipment = append(a.Equipment, newSword("sw-1"), newSword("sw-2"))

		require.NoError(t, a.Equip("sw-1"))
		require.NoError(t, a.Unequip("sw-1"))
		require.NoError(t, a.Equip("sw-2"))
	})

	t.Run("accessories stack", func(t *testing.T) {
		a := NewCharacter("char-1", "player-1", "Mira")
		a.Equipment = append(a.Equipment,
			&item.Equipment{ID: "r1", Name: "Ring", Subtype: item.SubtypeMisc, Slot: shared.SlotAccessory},
			&item.Equipment{ID: "r2", Name: "Amulet", Subtype: item.SubtypeMisc, Slot: shared.SlotAccessory},
		)

		require.NoError(t, a.Equip("r1"))
		require.NoError(t, a.Equip("r2"))
	})
}

func TestActor_Ranks(t *testing.T) {
	t.Run("path rank counts learned capacities", func(t *testing.T) {
		a := actorWithPath(t)
		require.NoError(t, a.LearnCapacity("cap-1", false))

		rank, ok := a.Ranks().RankFor("cap-2")
		require.True(t, ok)
		assert.Equal(t, 1, rank)
	})

	t.Run("linked child inherits the parent rank", func(t *testing.T) {
		a := actorWithPath(t)
		require.NoError(t, a.LearnCapacity("cap-1", false))
		require.NoError(t, a.LearnCapacity("cap-2", false))
		a.Capacities = append(a.Capacities, &item.Capacity{ID: "cap-link", Name: "Echo", ParentID: "cap-1"})

		rank, ok := a.Ranks().RankFor("cap-link")
		require.True(t, ok)
		assert.Equal(t, 2, rank)
	})

	t.Run("path-less capacity uses its own rank", func(t *testing.T) {
		a := NewCharacter("char-1", "player-1", "Mira")
		a.Capacities = append(a.Capacities, &item.Capacity{ID: "cap-solo", Name: "Knack", Rank: 3, Learned: true})

		rank, ok := a.Ranks().RankFor("cap-solo")
		require.True(t, ok)
		assert.Equal(t, 3, rank)
	})

	t.Run("unknown source resolves to nothing", func(t *testing.T) {
		a := NewCharacter("char-1", "player-1", "Mira")
		_, ok := a.Ranks().RankFor("ghost")
		assert.False(t, ok)
	})

	t.Run("path count at rank reads the profile paths", func(t *testing.T) {
		a := actorWithPath(t)
		require.NoError(t, a.SetProfile(&item.Profile{ID: "p", Name: "Mage", Family: "mystic", PathIDs: []string{"path-1"}}))
		require.NoError(t, a.LearnCapacity("cap-1", false))
		require.NoError(t, a.LearnCapacity("cap-2", false))

		assert.Equal(t, 1, a.Ranks().PathCountAtRank(2))
		assert.Equal(t, 0, a.Ranks().PathCountAtRank(3))
	})
}

func TestActor_FindAction(t *testing.T) {
	a := NewCharacter("char-1", "player-1", "Mira")
	a.Equipment = append(a.Equipment, &item.Equipment{
		ID:      "sw-1",
		Name:    "Sword",
		Subtype: item.SubtypeWeapon,
		Actions: []item.Action{{Source: item.Ref{ID: "sw-1", Type: item.TypeEquipment}, Indice: 0}},
	})

	assert.NotNil(t, a.FindAction("sw-1", 0))
	assert.Nil(t, a.FindAction("sw-1", 1))
	assert.Nil(t, a.FindAction("deleted-item", 0), "stale references degrade to no-ops")
}

func TestActor_Conditions(t *testing.T) {
	a := actorWithPath(t)
	require.NoError(t, a.LearnCapacity("cap-1", false))
	a.Equipment = append(a.Equipment,
		&item.Equipment{ID: "sw-1", Name: "Sword", Subtype: item.SubtypeWeapon, Equipped: true, Tags: []string{"silvered"}},
		&item.Equipment{ID: "bow-1", Name: "Bow", Subtype: item.SubtypeWeapon, Tags: []string{"ranged"}},
	)

	state := a.Conditions()

	t.Run("equipped and learned resolve by item ID", func(t *testing.T) {
		assert.True(t, state.IsEquipped("sw-1"))
		assert.False(t, state.IsEquipped("bow-1"), "owned but not worn")
		assert.True(t, state.IsLearned("cap-1"))
		assert.False(t, state.IsLearned("cap-2"))
	})

	t.Run("ownership covers equipment and capacities", func(t *testing.T) {
		assert.True(t, state.Owns("bow-1"))
		assert.True(t, state.Owns("cap-2"))
		assert.False(t, state.Owns("deleted-item"))
	})

	t.Run("tags are read from the owning item only", func(t *testing.T) {
		assert.True(t, state.HasTag("sw-1", "silvered"))
		assert.False(t, state.HasTag("sw-1", "ranged"), "another item's tag does not bleed over")
		assert.False(t, state.HasTag("bow-1", "ranged"), "an unequipped item's tags are inert")
	})

	t.Run("a tagged condition gates its action", func(t *testing.T) {
		act := &item.Action{
			Source:     item.Ref{ID: "sw-1", Type: item.TypeEquipment},
			Conditions: []item.Condition{{Kind: item.ConditionTagged, Value: "silvered"}},
		}
		assert.True(t, act.CheckConditions(state))

		act.Conditions[0].Value = "cursed"
		assert.False(t, act.CheckConditions(state))
	})
}

func TestActor_Clone(t *testing.T) {
	a := actorWithPath(t)
	require.NoError(t, a.LearnCapacity("cap-1", false))
	a.Equipment = append(a.Equipment, &item.Equipment{ID: "sw-1", Name: "Sword", Subtype: item.SubtypeWeapon})

	clone := a.Clone("char-2")
	clone.CapacityByID("cap-1").Learned = false
	clone.Abilities[shared.AttributeStrength].Base = 18

	assert.True(t, a.CapacityByID("cap-1").Learned, "clone mutations do not leak back")
	assert.Equal(t, 0, a.Abilities[shared.AttributeStrength].Base)
	assert.Equal(t, "char-2", clone.ID)
}
