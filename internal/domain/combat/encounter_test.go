package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEncounter() *Encounter {
	e := NewEncounter("enc-1", "Crypt Ambush", "gm-1")
	e.AddCombatant(&Combatant{ActorID: "hero-1", OwnerID: "player-1", Name: "Aldric", Side: SideParty, CurrentHP: 12, MaxHP: 12})
	e.AddCombatant(&Combatant{ActorID: "hero-2", OwnerID: "player-2", Name: "Mira", Side: SideParty, CurrentHP: 9, MaxHP: 9})
	e.AddCombatant(&Combatant{ActorID: "ghoul-1", OwnerID: "gm-1", Name: "Ghoul", Side: SideOpposition, CurrentHP: 8, MaxHP: 8})
	return e
}

func TestEncounter_TurnOrder(t *testing.T) {
	e := testEncounter()
	e.SetInitiative("hero-1", 15)
	e.SetInitiative("hero-2", 11)
	e.SetInitiative("ghoul-1", 13)
	e.SortTurnOrder()

	assert.Equal(t, []string{"hero-1", "ghoul-1", "hero-2"}, e.TurnOrder)

	tr, ok := e.Start()
	require.True(t, ok)
	assert.Equal(t, StatusActive, e.Status)
	assert.Equal(t, 1, e.Round)
	assert.Equal(t, "hero-1", tr.StartedTurnActorID)
}

func TestEncounter_TurnOrder_InitiativeTieBreaksByName(t *testing.T) {
	e := testEncounter()
	e.SetInitiative("hero-1", 12)
	e.SetInitiative("hero-2", 12)
	e.SetInitiative("ghoul-1", 12)
	e.SortTurnOrder()

	assert.Equal(t, []string{"hero-1", "ghoul-1", "hero-2"}, e.TurnOrder)
}

func TestEncounter_NextTurn(t *testing.T) {
	e := testEncounter()
	e.SetInitiative("hero-1", 15)
	e.SetInitiative("ghoul-1", 13)
	e.SetInitiative("hero-2", 11)
	e.SortTurnOrder()
	_, ok := e.Start()
	require.True(t, ok)

	t.Run("advances through the order", func(t *testing.T) {
		tr := e.NextTurn()
		assert.Equal(t, "hero-1", tr.EndedTurnActorID)
		assert.Equal(t, "ghoul-1", tr.StartedTurnActorID)
		assert.False(t, tr.NewRound)
	})

	t.Run("skips defeated combatants", func(t *testing.T) {
		e.Combatants["hero-2"].CurrentHP = 0
		tr := e.NextTurn()
		assert.True(t, tr.NewRound, "dead hero-2 skipped, order wraps")
		assert.Equal(t, 2, e.Round)
		assert.Equal(t, "hero-1", tr.StartedTurnActorID)
	})

	t.Run("round reset clears has-acted", func(t *testing.T) {
		assert.False(t, e.Combatants["hero-1"].HasActed)
	})
}

func TestEncounter_CombatEnd(t *testing.T) {
	t.Run("party wins when opposition falls", func(t *testing.T) {
		e := testEncounter()
		e.SetInitiative("hero-1", 15)
		e.SetInitiative("ghoul-1", 13)
		e.SetInitiative("hero-2", 11)
		e.SortTurnOrder()
		_, ok := e.Start()
		require.True(t, ok)

		e.Combatants["ghoul-1"].CurrentHP = 0
		tr := e.NextTurn()

		assert.True(t, tr.CombatEnded)
		assert.True(t, tr.PartyWon)
		assert.Equal(t, StatusCompleted, e.Status)
		assert.NotNil(t, e.EndedAt)
	})

	t.Run("party loses when everyone is down", func(t *testing.T) {
		e := testEncounter()
		e.Combatants["hero-1"].CurrentHP = 0
		e.Combatants["hero-2"].CurrentHP = 0

		ended, partyWon := e.CheckCombatEnd()
		assert.True(t, ended)
		assert.False(t, partyWon)
	})
}

func TestEncounter_CanAct(t *testing.T) {
	e := testEncounter()
	e.SetInitiative("hero-1", 15)
	e.SetInitiative("ghoul-1", 13)
	e.SetInitiative("hero-2", 11)
	e.SortTurnOrder()
	_, ok := e.Start()
	require.True(t, ok)

	assert.True(t, e.CanAct("player-1"), "current turn")
	assert.False(t, e.CanAct("player-2"), "not their turn")
	assert.True(t, e.CanAct("gm-1"), "the GM always acts")
}

func TestEncounter_CombatLog(t *testing.T) {
	e := testEncounter()
	e.Round = 3
	for i := 0; i < 25; i++ {
		e.AddLogEntry("swing")
	}

	assert.Len(t, e.CombatLog, combatLogLimit)
	assert.Contains(t, e.CombatLog[0], "Round 3:")
}

func TestEncounter_RemoveCombatant(t *testing.T) {
	e := testEncounter()
	e.SetInitiative("hero-1", 15)
	e.SetInitiative("ghoul-1", 13)
	e.SetInitiative("hero-2", 11)
	e.SortTurnOrder()

	e.RemoveCombatant("ghoul-1")

	assert.Equal(t, []string{"hero-1", "hero-2"}, e.TurnOrder)
	assert.NotContains(t, e.Combatants, "ghoul-1")
}