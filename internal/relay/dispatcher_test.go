package relay

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronica-rpg/chronica/internal/dice"
	"github.com/chronica-rpg/chronica/internal/domain/actor"
	"github.com/chronica-rpg/chronica/internal/domain/combat"
	"github.com/chronica-rpg/chronica/internal/domain/item"
	"github.com/chronica-rpg/chronica/internal/domain/shared"
	"github.com/chronica-rpg/chronica/internal/effects"
	apperrors "github.com/chronica-rpg/chronica/internal/errors"
	"github.com/chronica-rpg/chronica/internal/repositories/actors"
	"github.com/chronica-rpg/chronica/internal/repositories/encounters"
	actionsvc "github.com/chronica-rpg/chronica/internal/services/action"
	actorsvc "github.com/chronica-rpg/chronica/internal/services/actor"
	encountersvc "github.com/chronica-rpg/chronica/internal/services/encounter"
)

const gmID = "gm-1"

type fixture struct {
	actors     actorsvc.Service
	encounters encountersvc.Service
	actorRepo  *actors.InMemoryRepository
	roller     *dice.MockRoller
	dispatcher *Dispatcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		actorRepo: actors.NewInMemoryRepository(),
		roller:    dice.NewMockRoller(),
	}
	f.actors = actorsvc.NewService(&actorsvc.ServiceConfig{
		Repository: f.actorRepo,
		Roller:     f.roller,
	})
	f.encounters = encountersvc.NewService(&encountersvc.ServiceConfig{
		Repository:   encounters.NewInMemoryRepository(),
		ActorService: f.actors,
		Roller:       f.roller,
	})
	f.dispatcher = NewDispatcher(&DispatcherConfig{
		ActorService:     f.actors,
		EncounterService: f.encounters,
		Roller:           f.roller,
	})
	return f
}

func (f *fixture) addActor(t *testing.T, id, name string, hp int) *actor.Actor {
	t.Helper()
	a := actor.NewCharacter(id, "player-1", name)
	a.Level = 3
	a.Abilities[shared.AttributeConstitution].Base = 12
	require.NoError(t, a.SetProfile(&item.Profile{ID: "profile-" + id, Name: "Knight", Family: "warrior"}))
	pipe := actor.NewPipeline(nil, nil)
	pipe.Derive(a)
	a.HP.Current = hp
	pipe.Derive(a)
	require.NoError(t, f.actorRepo.Create(context.Background(), a))
	return a
}

func intentOf(t *testing.T, action string, payload any) *Intent {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return &Intent{Action: action, Payload: raw}
}

func TestDispatcher_Heal(t *testing.T) {
	ctx := context.Background()

	t.Run("positive amount heals", func(t *testing.T) {
		f := newFixture(t)
		f.addActor(t, "char-1", "Aldric", 10)

		intent := intentOf(t, ActionHeal, HealPayload{TargetID: "char-1", Amount: 5})
		require.NoError(t, f.dispatcher.Apply(ctx, intent))

		a, err := f.actors.GetActor(ctx, "char-1")
		require.NoError(t, err)
		assert.Equal(t, 15, a.HP.Current)
	})

	t.Run("double delivery converges on the same state", func(t *testing.T) {
		f := newFixture(t)
		f.addActor(t, "char-1", "Aldric", 15)

		intent := intentOf(t, ActionHeal, HealPayload{TargetID: "char-1", Amount: 5})
		require.NoError(t, f.dispatcher.Apply(ctx, intent))
		require.NoError(t, f.dispatcher.Apply(ctx, intent))

		a, err := f.actors.GetActor(ctx, "char-1")
		require.NoError(t, err)
		// 18 max: the second delivery clamps instead of overhealing
		assert.Equal(t, a.HP.Max, a.HP.Current)
	})

	t.Run("negative amount is damage through resistance", func(t *testing.T) {
		f := newFixture(t)
		f.addActor(t, "char-1", "Aldric", 18)

		intent := intentOf(t, ActionHeal, HealPayload{TargetID: "char-1", Amount: -6})
		require.NoError(t, f.dispatcher.Apply(ctx, intent))

		a, err := f.actors.GetActor(ctx, "char-1")
		require.NoError(t, err)
		assert.Equal(t, 12, a.HP.Current)
	})

	t.Run("damage floors at zero under re-delivery", func(t *testing.T) {
		f := newFixture(t)
		f.addActor(t, "char-1", "Aldric", 5)

		intent := intentOf(t, ActionHeal, HealPayload{TargetID: "char-1", Amount: -10})
		require.NoError(t, f.dispatcher.Apply(ctx, intent))
		require.NoError(t, f.dispatcher.Apply(ctx, intent))

		a, err := f.actors.GetActor(ctx, "char-1")
		require.NoError(t, err)
		assert.Equal(t, 0, a.HP.Current)
	})

	t.Run("missing target is rejected", func(t *testing.T) {
		f := newFixture(t)
		intent := intentOf(t, ActionHeal, HealPayload{Amount: 5})
		err := f.dispatcher.Apply(ctx, intent)
		require.Error(t, err)
		assert.True(t, apperrors.IsInvalidArgument(err))
	})
}

func TestDispatcher_CustomEffect(t *testing.T) {
	ctx := context.Background()

	// activeFight enrolls the actor in a started encounter
	activeFight := func(t *testing.T, f *fixture, actorID string) *combat.Encounter {
		t.Helper()
		enc, err := f.encounters.CreateEncounter(ctx, &encountersvc.CreateEncounterInput{Name: "Skirmish", GMID: gmID})
		require.NoError(t, err)
		_, err = f.encounters.AddCombatant(ctx, enc.ID, actorID, combat.SideParty)
		require.NoError(t, err)

		opp := actor.NewEncounterActor("opp-1", gmID, "Wolf", 1, 10)
		pipe := actor.NewPipeline(nil, nil)
		pipe.Derive(opp)
		opp.HP.Current = opp.HP.Max
		pipe.Derive(opp)
		require.NoError(t, f.actorRepo.Create(ctx, opp))
		_, err = f.encounters.AddCombatant(ctx, enc.ID, "opp-1", combat.SideOpposition)
		require.NoError(t, err)

		f.roller.SetRolls([]int{10, 10})
		require.NoError(t, f.encounters.RollInitiative(ctx, enc.ID, gmID))
		_, err = f.encounters.StartEncounter(ctx, enc.ID, gmID)
		require.NoError(t, err)
		return enc
	}

	t.Run("attaches the effect to the combatant", func(t *testing.T) {
		f := newFixture(t)
		f.addActor(t, "char-1", "Aldric", 18)
		activeFight(t, f, "char-1")

		intent := intentOf(t, ActionCustomEffect, CustomEffectPayload{
			TargetID: "char-1",
			Effect: effects.CustomEffect{
				ID:       "eff-1",
				Name:     "Blessed",
				CasterID: "char-2",
				Unit:     shared.UnitRound,
				Duration: 3,
				Statuses: []shared.Status{shared.StatusInvisible},
			},
		})
		require.NoError(t, f.dispatcher.Apply(ctx, intent))

		a, err := f.actors.GetActor(ctx, "char-1")
		require.NoError(t, err)
		assert.True(t, a.HasStatus(shared.StatusInvisible))
	})

	t.Run("re-delivery refreshes by slug instead of stacking", func(t *testing.T) {
		f := newFixture(t)
		f.addActor(t, "char-1", "Aldric", 18)
		activeFight(t, f, "char-1")

		intent := intentOf(t, ActionCustomEffect, CustomEffectPayload{
			TargetID: "char-1",
			Effect: effects.CustomEffect{
				ID:       "eff-1",
				Name:     "Blessed",
				CasterID: "char-2",
				Unit:     shared.UnitRound,
				Duration: 3,
			},
		})
		require.NoError(t, f.dispatcher.Apply(ctx, intent))
		require.NoError(t, f.dispatcher.Apply(ctx, intent))

		a, err := f.actors.GetActor(ctx, "char-1")
		require.NoError(t, err)
		assert.Len(t, a.Effects.Effects, 1)
		assert.Equal(t, 3, a.Effects.BySlug("blessed").RemainingTurn)
	})

	t.Run("dropped outside combat", func(t *testing.T) {
		f := newFixture(t)
		f.addActor(t, "char-1", "Aldric", 18)

		intent := intentOf(t, ActionCustomEffect, CustomEffectPayload{
			TargetID: "char-1",
			Effect:   effects.CustomEffect{ID: "eff-1", Name: "Blessed", Duration: 3},
		})
		require.NoError(t, f.dispatcher.Apply(ctx, intent))

		a, err := f.actors.GetActor(ctx, "char-1")
		require.NoError(t, err)
		assert.Empty(t, a.Effects.Effects)
	})
}

func TestDispatcher_Activate(t *testing.T) {
	ctx := context.Background()

	t.Run("runs the activation on the authority host", func(t *testing.T) {
		f := newFixture(t)
		a := f.addActor(t, "char-1", "Aldric", 10)
		a.Equipment = append(a.Equipment, &item.Equipment{
			ID:       "potion-1",
			Name:     "Healing Potion",
			Subtype:  item.SubtypeConsumable,
			Slot:     shared.SlotAccessory,
			Quantity: 1,
			Actions: []item.Action{{
				Source:     item.Ref{ID: "potion-1", Type: item.TypeEquipment},
				Indice:     0,
				Kind:       item.ActionConsumable,
				Properties: item.Properties{Visible: true, Activable: true},
				Resolvers: []item.Resolver{
					{Kind: item.ResolverConsumable},
					{Kind: item.ResolverHeal, Dmg: item.DamageSpec{Formula: "1d4"}},
				},
			}},
		})
		require.NoError(t, f.actorRepo.Update(ctx, a))
		actionService := actionsvc.NewService(&actionsvc.ServiceConfig{
			ActorService: f.actors,
			Roller:       f.roller,
		})
		dispatcher := NewDispatcher(&DispatcherConfig{
			ActorService:     f.actors,
			EncounterService: f.encounters,
			ActionService:    actionService,
			Roller:           f.roller,
		})

		f.roller.SetRolls([]int{4})
		intent := intentOf(t, ActionActivate, ActivatePayload{
			ActorID: "char-1",
			OwnerID: "player-1",
			ItemID:  "potion-1",
			Indice:  0,
		})
		require.NoError(t, dispatcher.Apply(ctx, intent))

		reloaded, err := f.actors.GetActor(ctx, "char-1")
		require.NoError(t, err)
		assert.Equal(t, 14, reloaded.HP.Current)
		assert.Equal(t, 0, reloaded.EquipmentByID("potion-1").Quantity)
	})

	t.Run("rejected when the host serves no activations", func(t *testing.T) {
		f := newFixture(t)
		intent := intentOf(t, ActionActivate, ActivatePayload{ActorID: "char-1"})
		err := f.dispatcher.Apply(ctx, intent)
		require.Error(t, err)
		assert.True(t, apperrors.IsPrecondition(err))
	})
}

func TestDispatcher_UnknownAction(t *testing.T) {
	f := newFixture(t)
	err := f.dispatcher.Apply(context.Background(), &Intent{Action: "teleport"})
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidArgument(err))
}
