package action

import (
	"context"
	"fmt"

	"github.com/chronica-rpg/chronica/internal/domain/actor"
	"github.com/chronica-rpg/chronica/internal/domain/combat"
	"github.com/chronica-rpg/chronica/internal/domain/formula"
	"github.com/chronica-rpg/chronica/internal/domain/item"
	"github.com/chronica-rpg/chronica/internal/domain/shared"
	"github.com/chronica-rpg/chronica/internal/effects"
)

// resolveContext carries everything a resolver handler reads. Handlers never
// mutate actors; they return outcomes for the commit phase.
type resolveContext struct {
	svc       *service
	source    *actor.Actor
	targets   []*actor.Actor
	encounter *combat.Encounter
	snap      *formula.Snapshot
	eval      *formula.Evaluator
	itemID    string
	action    *item.Action
	ownerID   string
}

// outcome is one deferred state change produced by a resolver
type outcome struct {
	target *actor.Actor // nil means the source
	damage int
	heal   int
	effect *effects.CustomEffect
	Log    string
}

// resolverHandler executes one resolver kind. The bool is the resolver's
// completion; false with nil error means a dismissed roll dialog or an
// unusable resolver, never a fault. A missed attack still completes.
type resolverHandler interface {
	Resolve(ctx context.Context, rc *resolveContext, res item.Resolver) ([]outcome, bool, error)
}

// scopedTargets narrows the input targets to the resolver's scope
func scopedTargets(rc *resolveContext, res item.Resolver) []*actor.Actor {
	if res.Target.Scope == shared.TargetSelf {
		return []*actor.Actor{rc.source}
	}
	targets := rc.targets
	if res.Target.Number > 0 && len(targets) > res.Target.Number {
		targets = targets[:res.Target.Number]
	}
	return targets
}

// attackHandler covers melee, ranged and magical to-hit resolvers
type attackHandler struct{}

func (attackHandler) Resolve(ctx context.Context, rc *resolveContext, res item.Resolver) ([]outcome, bool, error) {
	skillFormula := res.Skill.Formula
	if skillFormula == "" {
		skillFormula = rc.svc.rules.BareHandsSkill
	}
	rolled := rc.eval.EvaluateKeepDice(rc.snap, skillFormula, rc.itemID)

	roll, err := rc.svc.prompter.Prompt(ctx, rc.ownerID, rolled)
	if err != nil {
		return nil, false, err
	}
	if roll == nil {
		// dismissed roll dialog
		return nil, false, nil
	}

	critThreshold := rc.source.Stats[shared.StatCritical].Value - res.Skill.CritBonus
	if critThreshold < rc.svc.rules.CriticalFloor {
		critThreshold = rc.svc.rules.CriticalFloor
	}
	isCrit := roll.NaturalDie() >= critThreshold

	targets := scopedTargets(rc, res)
	var outcomes []outcome
	for _, target := range targets {
		difficulty := target.Stats[shared.StatDefense].Value
		if res.Skill.Difficulty != "" {
			difficulty = rc.eval.Evaluate(rc.snap, res.Skill.Difficulty, rc.itemID)
		}

		hit := isCrit || roll.Total >= difficulty
		if hit {
			dmg, rollErr := rollDamage(rc, res, isCrit)
			if rollErr != nil {
				return nil, false, rollErr
			}
			outcomes = append(outcomes, outcome{
				target: target,
				damage: dmg,
				Log:    attackLog(rc, target, roll.Total, dmg, isCrit),
			})
		} else {
			outcomes = append(outcomes, outcome{
				target: target,
				Log:    fmt.Sprintf("%s misses %s (%d vs %d)", rc.source.Name, target.Name, roll.Total, difficulty),
			})
		}

		if res.AdditionalEffect.Active && res.AdditionalEffect.ApplyOn.Matches(hit) {
			outcomes = append(outcomes, outcome{
				target: target,
				effect: rc.svc.buildEffect(rc, res, false),
			})
		}
	}
	// a completed roll is a completed resolver; misses carry their own
	// outcome and never void the activation
	return outcomes, true, nil
}

func rollDamage(rc *resolveContext, res item.Resolver, crit bool) (int, error) {
	dmgFormula := res.Dmg.Formula
	if dmgFormula == "" {
		dmgFormula = rc.svc.rules.BareHandsDamage
	}
	rolled := rc.eval.EvaluateKeepDice(rc.snap, dmgFormula, rc.itemID)
	roll, err := rc.svc.roller.RollFormula(rolled)
	if err != nil {
		return 0, err
	}
	dmg := roll.Total
	if crit {
		dmg *= 2
	}
	if dmg < 0 {
		dmg = 0
	}
	return dmg, nil
}

func attackLog(rc *resolveContext, target *actor.Actor, total, dmg int, crit bool) string {
	if crit {
		return fmt.Sprintf("%s critically hits %s for %d damage", rc.source.Name, target.Name, dmg)
	}
	return fmt.Sprintf("%s hits %s (%d) for %d damage", rc.source.Name, target.Name, total, dmg)
}

// autoHandler applies damage with no to-hit roll
type autoHandler struct{}

func (autoHandler) Resolve(ctx context.Context, rc *resolveContext, res item.Resolver) ([]outcome, bool, error) {
	var outcomes []outcome
	for _, target := range scopedTargets(rc, res) {
		dmg, err := rollDamage(rc, res, false)
		if err != nil {
			return nil, false, err
		}
		outcomes = append(outcomes, outcome{
			target: target,
			damage: dmg,
			Log:    fmt.Sprintf("%s hits %s for %d damage", rc.source.Name, target.Name, dmg),
		})
		if res.AdditionalEffect.Active && res.AdditionalEffect.ApplyOn.Matches(true) {
			outcomes = append(outcomes, outcome{target: target, effect: rc.svc.buildEffect(rc, res, false)})
		}
	}
	return outcomes, true, nil
}

// healHandler restores hit points. The damage formula doubles as the heal
// amount; a resolver without one degrades to a no-op.
type healHandler struct{}

func (healHandler) Resolve(ctx context.Context, rc *resolveContext, res item.Resolver) ([]outcome, bool, error) {
	if res.Dmg.Formula == "" {
		return nil, true, nil
	}
	rolled := rc.eval.EvaluateKeepDice(rc.snap, res.Dmg.Formula, rc.itemID)

	var outcomes []outcome
	for _, target := range scopedTargets(rc, res) {
		roll, err := rc.svc.roller.RollFormula(rolled)
		if err != nil {
			return nil, false, err
		}
		amount := roll.Total
		if amount < 0 {
			amount = 0
		}
		outcomes = append(outcomes, outcome{
			target: target,
			heal:   amount,
			Log:    fmt.Sprintf("%s heals %s for %d", rc.source.Name, target.Name, amount),
		})
	}
	return outcomes, true, nil
}

// consumableHandler spends one unit of a consumable item. The quantity
// decrement happens in the commit phase with the other costs.
type consumableHandler struct{}

func (consumableHandler) Resolve(ctx context.Context, rc *resolveContext, res item.Resolver) ([]outcome, bool, error) {
	equipment := rc.source.EquipmentByID(rc.itemID)
	if equipment == nil || equipment.Subtype != item.SubtypeConsumable {
		return nil, false, nil
	}
	if equipment.Quantity <= 0 {
		return nil, false, nil
	}

	var outcomes []outcome
	if res.AdditionalEffect.Active {
		for _, target := range scopedTargets(rc, res) {
			outcomes = append(outcomes, outcome{target: target, effect: rc.svc.buildEffect(rc, res, false)})
		}
	}
	outcomes = append(outcomes, outcome{
		Log: fmt.Sprintf("%s uses %s", rc.source.Name, equipment.Name),
	})
	return outcomes, true, nil
}

// buffDebuffHandler spawns a timed effect carrying the action's modifiers
type buffDebuffHandler struct{}

func (buffDebuffHandler) Resolve(ctx context.Context, rc *resolveContext, res item.Resolver) ([]outcome, bool, error) {
	if !res.AdditionalEffect.Active {
		return nil, false, nil
	}
	if len(rc.action.Modifiers) == 0 && len(res.AdditionalEffect.Statuses) == 0 {
		return nil, false, nil
	}

	var outcomes []outcome
	for _, target := range scopedTargets(rc, res) {
		outcomes = append(outcomes, outcome{
			target: target,
			effect: rc.svc.buildEffect(rc, res, true),
			Log:    fmt.Sprintf("%s affects %s with %s", rc.source.Name, target.Name, rc.source.ItemName(rc.itemID)),
		})
	}
	return outcomes, true, nil
}
