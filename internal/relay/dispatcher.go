package relay

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chronica-rpg/chronica/internal/dice"
	apperrors "github.com/chronica-rpg/chronica/internal/errors"
	actionsvc "github.com/chronica-rpg/chronica/internal/services/action"
	actorsvc "github.com/chronica-rpg/chronica/internal/services/actor"
	encountersvc "github.com/chronica-rpg/chronica/internal/services/encounter"
)

// Dispatcher is the authority-side intent applier. It runs on the single
// durable writer of shared state and applies every intent through the
// normal services, which re-derive the touched sheets.
type Dispatcher struct {
	actors     actorsvc.Service
	encounters encountersvc.Service
	actions    actionsvc.Service
	roller     dice.Roller
}

// DispatcherConfig holds configuration for the dispatcher. ActionService is
// optional; without it activate intents are rejected.
type DispatcherConfig struct {
	ActorService     actorsvc.Service
	EncounterService encountersvc.Service
	ActionService    actionsvc.Service
	Roller           dice.Roller
}

// NewDispatcher creates the authority dispatcher
func NewDispatcher(cfg *DispatcherConfig) *Dispatcher {
	if cfg.ActorService == nil {
		panic("actor service is required")
	}
	if cfg.EncounterService == nil {
		panic("encounter service is required")
	}
	if cfg.Roller == nil {
		cfg.Roller = dice.NewRandomRoller()
	}
	return &Dispatcher{
		actors:     cfg.ActorService,
		encounters: cfg.EncounterService,
		actions:    cfg.ActionService,
		roller:     cfg.Roller,
	}
}

// Apply executes one intent. Handlers are safe under re-delivery: healing
// clamps to max, damage floors at zero, effects refresh by slug.
func (d *Dispatcher) Apply(ctx context.Context, intent *Intent) error {
	if intent == nil {
		return apperrors.InvalidArgument("intent cannot be nil")
	}

	switch intent.Action {
	case ActionHeal:
		return d.applyHeal(ctx, intent)
	case ActionCustomEffect:
		return d.applyCustomEffect(ctx, intent)
	case ActionOppositeRoll:
		return d.applyOppositeRoll(ctx, intent)
	case ActionActivate:
		return d.applyActivate(ctx, intent)
	default:
		return apperrors.InvalidArgumentf("unknown intent action %q", intent.Action)
	}
}

func (d *Dispatcher) applyHeal(ctx context.Context, intent *Intent) error {
	var p HealPayload
	if err := json.Unmarshal(intent.Payload, &p); err != nil {
		return apperrors.Wrap(err, "malformed heal payload")
	}
	if p.TargetID == "" {
		return apperrors.InvalidArgument("heal target is required")
	}

	// inside a combat the encounter service keeps the display copy synced
	enc, err := d.encounters.GetActiveEncounter(ctx)
	if err == nil {
		if _, fighting := enc.Combatants[p.TargetID]; fighting {
			if p.Amount < 0 {
				return d.encounters.ApplyDamage(ctx, enc.ID, p.TargetID, enc.GMID, -p.Amount)
			}
			return d.encounters.HealCombatant(ctx, enc.ID, p.TargetID, enc.GMID, p.Amount)
		}
	} else if !apperrors.IsNotFound(err) {
		return err
	}

	if p.Amount < 0 {
		_, err = d.actors.ApplyDamage(ctx, p.TargetID, -p.Amount)
	} else {
		_, err = d.actors.Heal(ctx, p.TargetID, p.Amount)
	}
	return err
}

func (d *Dispatcher) applyCustomEffect(ctx context.Context, intent *Intent) error {
	var p CustomEffectPayload
	if err := json.Unmarshal(intent.Payload, &p); err != nil {
		return apperrors.Wrap(err, "malformed effect payload")
	}
	if p.TargetID == "" {
		return apperrors.InvalidArgument("effect target is required")
	}

	enc, err := d.encounters.GetActiveEncounter(ctx)
	if err != nil {
		if apperrors.IsNotFound(err) {
			// timed effects only exist inside a combat
			return nil
		}
		return err
	}
	return d.encounters.ApplyEffect(ctx, enc.ID, p.TargetID, enc.GMID, &p.Effect)
}

func (d *Dispatcher) applyActivate(ctx context.Context, intent *Intent) error {
	if d.actions == nil {
		return apperrors.Precondition("activation is not served by this host")
	}

	var p ActivatePayload
	if err := json.Unmarshal(intent.Payload, &p); err != nil {
		return apperrors.Wrap(err, "malformed activate payload")
	}

	_, err := d.actions.Activate(ctx, &actionsvc.ActivateInput{
		ActorID:       p.ActorID,
		OwnerID:       p.OwnerID,
		ItemID:        p.ItemID,
		Indice:        p.Indice,
		TargetIDs:     p.TargetIDs,
		Concentration: p.Concentration,
		Authoritative: true,
	})
	return err
}

func (d *Dispatcher) applyOppositeRoll(ctx context.Context, intent *Intent) error {
	var p OppositeRollPayload
	if err := json.Unmarshal(intent.Payload, &p); err != nil {
		return apperrors.Wrap(err, "malformed opposite roll payload")
	}

	actorRoll, err := d.roller.RollFormula(p.Formula)
	if err != nil {
		return err
	}
	targetRoll, err := d.roller.RollFormula(p.TargetFormula)
	if err != nil {
		return err
	}

	actorName, err := d.actorName(ctx, p.ActorID)
	if err != nil {
		return err
	}
	targetName, err := d.actorName(ctx, p.TargetID)
	if err != nil {
		return err
	}

	// ties go to the defender
	outcome := fmt.Sprintf("%s resists", targetName)
	if actorRoll.Total > targetRoll.Total {
		outcome = fmt.Sprintf("%s prevails", actorName)
	}
	entry := fmt.Sprintf("opposed roll: %s (%d) vs %s (%d), %s",
		actorName, actorRoll.Total, targetName, targetRoll.Total, outcome)

	enc, err := d.encounters.GetActiveEncounter(ctx)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil
		}
		return err
	}
	return d.encounters.LogCombatAction(ctx, enc.ID, entry)
}

func (d *Dispatcher) actorName(ctx context.Context, actorID string) (string, error) {
	if actorID == "" {
		return "someone", nil
	}
	a, err := d.actors.GetActor(ctx, actorID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return actorID, nil
		}
		return "", err
	}
	return a.Name, nil
}
