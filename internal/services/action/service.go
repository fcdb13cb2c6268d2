package action

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/chronica-rpg/chronica/internal/config"
	"github.com/chronica-rpg/chronica/internal/dice"
	"github.com/chronica-rpg/chronica/internal/domain/actor"
	"github.com/chronica-rpg/chronica/internal/domain/combat"
	"github.com/chronica-rpg/chronica/internal/domain/formula"
	"github.com/chronica-rpg/chronica/internal/domain/item"
	"github.com/chronica-rpg/chronica/internal/domain/shared"
	"github.com/chronica-rpg/chronica/internal/effects"
	apperrors "github.com/chronica-rpg/chronica/internal/errors"
	"github.com/chronica-rpg/chronica/internal/repositories/encounters"
	actorsvc "github.com/chronica-rpg/chronica/internal/services/actor"
	"github.com/chronica-rpg/chronica/internal/uuid"
)

// Confirmer asks the acting participant a yes/no question, such as whether
// to burn hit points for missing mana. A decline aborts the activation with
// nothing committed.
type Confirmer interface {
	Confirm(ctx context.Context, ownerID, prompt string) (bool, error)
}

// PromptRoller asks the acting participant to roll dice. A nil result with a
// nil error means the roll dialog was dismissed, which counts as resolver
// failure.
type PromptRoller interface {
	Prompt(ctx context.Context, ownerID, formula string) (*dice.RollResult, error)
}

// Emitter forwards an intent to the authority when the acting participant
// may not write shared state itself. Implemented by the relay client;
// satisfied by a no-op on the authority host.
type Emitter interface {
	Emit(ctx context.Context, action string, payload any) error
}

// AutoConfirmer accepts every confirmation, for headless and test use
type AutoConfirmer struct{}

func (AutoConfirmer) Confirm(context.Context, string, string) (bool, error) { return true, nil }

// AutoPromptRoller rolls immediately without a dialog
type AutoPromptRoller struct {
	Roller dice.Roller
}

func (p AutoPromptRoller) Prompt(_ context.Context, _ string, formula string) (*dice.RollResult, error) {
	return p.Roller.RollFormula(formula)
}

// NopEmitter drops intents; the authority host applies directly instead
type NopEmitter struct{}

func (NopEmitter) Emit(context.Context, string, any) error { return nil }

// ActivateInput identifies the action to run and how
type ActivateInput struct {
	ActorID string
	OwnerID string // the participant acting, for prompts and authority checks
	ItemID  string
	Indice  int

	// TargetIDs are the aimed-at actors; resolvers fall back to their
	// default scope when empty
	TargetIDs []string

	// Concentration requests the reduced-cost casting mode on spells
	Concentration bool

	// Authoritative marks the single-writer flow: shared state is written
	// directly instead of relayed as an intent
	Authoritative bool
}

// ActivateResult reports what the activation did
type ActivateResult struct {
	// Activated is false when the action reference was stale
	Activated bool

	// Success is true when every resolver completed (or there were none);
	// a missed attack still completes, a dismissed roll dialog does not
	Success bool

	// Enabled is the action's toggle state after the call
	Enabled bool

	// Logs collects the per-resolver narration lines
	Logs []string
}

// Service runs action activations
type Service interface {
	// Activate runs the activation protocol for one action. On a toggleable
	// action that is already enabled it deactivates instead.
	Activate(ctx context.Context, input *ActivateInput) (*ActivateResult, error)
}

type service struct {
	actors     actorsvc.Service
	encounters encounters.Repository
	roller     dice.Roller
	prompter   PromptRoller
	confirmer  Confirmer
	emitter    Emitter
	uuidGen    uuid.Generator
	rules      *config.RulesConfig
	handlers   map[item.ResolverKind]resolverHandler
}

// ServiceConfig holds configuration for the action service
type ServiceConfig struct {
	ActorService        actorsvc.Service
	EncounterRepository encounters.Repository
	Roller              dice.Roller
	Prompter            PromptRoller
	Confirmer           Confirmer
	Emitter             Emitter
	UUIDGenerator       uuid.Generator
	Rules               *config.RulesConfig
}

// NewService creates a new action service
func NewService(cfg *ServiceConfig) Service {
	if cfg.ActorService == nil {
		panic("actor service is required")
	}
	if cfg.Roller == nil {
		cfg.Roller = dice.NewRandomRoller()
	}
	if cfg.Prompter == nil {
		cfg.Prompter = AutoPromptRoller{Roller: cfg.Roller}
	}
	if cfg.Confirmer == nil {
		cfg.Confirmer = AutoConfirmer{}
	}
	if cfg.Emitter == nil {
		cfg.Emitter = NopEmitter{}
	}
	if cfg.UUIDGenerator == nil {
		cfg.UUIDGenerator = uuid.NewGoogleUUIDGenerator()
	}
	if cfg.Rules == nil {
		cfg.Rules = config.DefaultRules()
	}

	s := &service{
		actors:     cfg.ActorService,
		encounters: cfg.EncounterRepository,
		roller:     cfg.Roller,
		prompter:   cfg.Prompter,
		confirmer:  cfg.Confirmer,
		emitter:    cfg.Emitter,
		uuidGen:    cfg.UUIDGenerator,
		rules:      cfg.Rules,
	}
	s.handlers = map[item.ResolverKind]resolverHandler{
		item.ResolverMelee:      attackHandler{},
		item.ResolverRanged:     attackHandler{},
		item.ResolverMagical:    attackHandler{},
		item.ResolverAuto:       autoHandler{},
		item.ResolverHeal:       healHandler{},
		item.ResolverConsumable: consumableHandler{},
		item.ResolverBuffDebuff: buffDebuffHandler{},
	}
	return s
}

func (s *service) Activate(ctx context.Context, input *ActivateInput) (*ActivateResult, error) {
	if input == nil {
		return nil, apperrors.InvalidArgument("input cannot be nil")
	}

	a, err := s.actors.GetActor(ctx, input.ActorID)
	if err != nil {
		return nil, err
	}

	act := a.FindAction(input.ItemID, input.Indice)
	if act == nil {
		// stale reference: the item or action is gone, do nothing
		return &ActivateResult{}, nil
	}

	switch act.Class() {
	case item.ClassPermanent:
		return nil, apperrors.Precondition("permanent actions cannot be activated")
	case item.ClassToggleable:
		if act.Properties.Enabled {
			// deactivation never re-runs resolvers
			act.Properties.Enabled = false
			if err := s.actors.Save(ctx, a); err != nil {
				return nil, err
			}
			return &ActivateResult{Activated: true, Success: true, Enabled: false}, nil
		}
	}

	snap := a.Snapshot()
	capacity := a.CapacityByID(input.ItemID)
	equipment := a.EquipmentByID(input.ItemID)
	eval := s.actors.Pipeline().Evaluator()

	// resource preconditions, checked before anything rolls
	if equipment != nil && equipment.Reloadable && equipment.Charges.Current == 0 {
		return nil, apperrors.InsufficientResourcef("no ammunition left for %s", equipment.Name)
	}
	if capacity != nil && capacity.Frequency.Charged() && capacity.Charges.Current == 0 {
		return nil, apperrors.InsufficientResourcef("no charges left on %s", capacity.Name)
	}

	manaCost, burnHP, err := s.resolveManaCost(ctx, input, a, act, capacity, snap)
	if err != nil {
		return nil, err
	}

	if !act.CheckConditions(a.Conditions()) {
		return nil, apperrors.Preconditionf("conditions for %s are not met", a.ItemName(input.ItemID))
	}

	targets, encounter, err := s.gatherTargets(ctx, input, a)
	if err != nil {
		return nil, err
	}

	// run every resolver concurrently on a cloned list; nothing commits
	// until all outcomes are known
	rc := &resolveContext{
		svc:       s,
		source:    a,
		targets:   targets,
		encounter: encounter,
		snap:      snap,
		eval:      eval,
		itemID:    input.ItemID,
		action:    act,
		ownerID:   input.OwnerID,
	}

	resolvers := make([]item.Resolver, len(act.Resolvers))
	for i, res := range act.Resolvers {
		resolvers[i] = res.Normalized()
	}

	outcomes := make([][]outcome, len(resolvers))
	results := make([]bool, len(resolvers))

	g, gctx := errgroup.WithContext(ctx)
	for i := range resolvers {
		i := i
		res := resolvers[i]
		handler, ok := s.handlers[res.Kind]
		if !ok {
			return nil, apperrors.InvalidArgumentf("unknown resolver kind %q", res.Kind)
		}
		g.Go(func() error {
			out, ok, err := handler.Resolve(gctx, rc, res)
			if err != nil {
				return err
			}
			outcomes[i] = out
			results[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	success := true
	for _, ok := range results {
		if !ok {
			success = false
			break
		}
	}

	result := &ActivateResult{Activated: true, Success: success, Enabled: act.Properties.Enabled}
	if !success {
		for _, out := range outcomes {
			for _, o := range out {
				if o.Log != "" {
					result.Logs = append(result.Logs, o.Log)
				}
			}
		}
		return result, nil
	}

	// commit phase: toggle state, costs, then outcomes
	if act.Class() == item.ClassToggleable {
		act.Properties.Enabled = true
		result.Enabled = true
	}
	if equipment != nil && equipment.Reloadable {
		equipment.Charges.Spend()
	}
	if capacity != nil && capacity.Frequency.Charged() {
		capacity.Charges.Spend()
	}
	if equipment != nil && equipment.Subtype == item.SubtypeConsumable && hasConsumableResolver(act) {
		equipment.Quantity--
		if equipment.Quantity <= 0 && equipment.DestroyOnEmpty {
			a.RemoveEquipment(equipment.ID)
		}
	}
	if manaCost > 0 {
		pool := a.Resources[shared.ResourceMana]
		paid := manaCost
		if paid > pool.Value {
			paid = pool.Value
		}
		pool.Value -= paid
	}
	if burnHP > 0 {
		a.HP.Damage(burnHP)
	}

	for _, out := range outcomes {
		for _, o := range out {
			if err := s.applyOutcome(ctx, input, a, encounter, o); err != nil {
				return nil, err
			}
			if o.Log != "" {
				result.Logs = append(result.Logs, o.Log)
			}
		}
	}

	if err := s.actors.Save(ctx, a); err != nil {
		return nil, err
	}
	if encounter != nil {
		s.syncCombatant(encounter, a)
		if s.encounters != nil {
			for _, l := range result.Logs {
				encounter.AddLogEntry(l)
			}
			if err := s.encounters.Update(ctx, encounter); err != nil {
				log.Printf("failed to persist encounter %s after activation: %v", encounter.ID, err)
			}
		}
	}

	return result, nil
}

// resolveManaCost computes the spell's mana cost and, when the pool cannot
// cover it, offers the hit-point sacrifice. Returns the cost to deduct and
// the deferred HP burn.
func (s *service) resolveManaCost(ctx context.Context, input *ActivateInput, a *actor.Actor, act *item.Action, capacity *item.Capacity, snap *formula.Snapshot) (int, int, error) {
	if capacity == nil || !capacity.Spell || act.Properties.NoManaCost || capacity.ManaCost == "" {
		return 0, 0, nil
	}

	eval := s.actors.Pipeline().Evaluator()
	cost := eval.Evaluate(snap, capacity.ManaCost, capacity.ID)
	if input.Concentration && hasAttackResolver(act) {
		cost -= s.rules.ConcentrationManaDiscount
	}
	if cost <= 0 {
		return 0, 0, nil
	}

	pool := a.Resources[shared.ResourceMana]
	if cost <= pool.Value {
		return cost, 0, nil
	}

	missing := cost - pool.Value
	burn := 0
	for i := 0; i < missing; i++ {
		roll, err := s.roller.Roll(1, 6, 0)
		if err != nil {
			return 0, 0, err
		}
		burn += roll.Total
	}

	ok, err := s.confirmer.Confirm(ctx, input.OwnerID,
		manaBurnPrompt(capacity.Name, missing, burn))
	if err != nil {
		return 0, 0, err
	}
	if !ok {
		return 0, 0, apperrors.Declined("mana burn declined")
	}
	return cost, burn, nil
}

func hasConsumableResolver(act *item.Action) bool {
	for _, res := range act.Resolvers {
		if res.Kind == item.ResolverConsumable {
			return true
		}
	}
	return false
}

func hasAttackResolver(act *item.Action) bool {
	for _, res := range act.Resolvers {
		if res.Kind.IsAttack() {
			return true
		}
	}
	return false
}

// gatherTargets loads the aimed-at actors and the active encounter
func (s *service) gatherTargets(ctx context.Context, input *ActivateInput, a *actor.Actor) ([]*actor.Actor, *combat.Encounter, error) {
	var encounter *combat.Encounter
	if s.encounters != nil {
		enc, err := s.encounters.GetActive(ctx)
		if err == nil {
			encounter = enc
		} else if !apperrors.IsNotFound(err) {
			return nil, nil, err
		}
	}

	targets := make([]*actor.Actor, 0, len(input.TargetIDs))
	for _, id := range input.TargetIDs {
		if id == a.ID {
			targets = append(targets, a)
			continue
		}
		t, err := s.actors.GetActor(ctx, id)
		if err != nil {
			if apperrors.IsNotFound(err) {
				continue
			}
			return nil, nil, err
		}
		targets = append(targets, t)
	}
	return targets, encounter, nil
}

// applyOutcome commits one resolver outcome. With authority, shared state is
// written directly; otherwise effects on other actors are relayed as intents
// for the authority to apply.
func (s *service) applyOutcome(ctx context.Context, input *ActivateInput, source *actor.Actor, encounter *combat.Encounter, o outcome) error {
	target := o.target
	if target == nil {
		target = source
	}
	selfTarget := target.ID == source.ID

	if o.damage > 0 {
		if input.Authoritative || selfTarget {
			reduced := o.damage - target.Stats[shared.StatDamageResistance].Value
			if reduced < 0 {
				reduced = 0
			}
			target.HP.Damage(reduced)
			if err := s.saveTarget(ctx, source, target, encounter); err != nil {
				return err
			}
		} else {
			payload := map[string]any{"target_id": target.ID, "amount": -o.damage}
			if err := s.emitter.Emit(ctx, "heal", payload); err != nil {
				return err
			}
		}
	}

	if o.heal > 0 {
		if input.Authoritative || selfTarget {
			target.HP.Heal(o.heal)
			if err := s.saveTarget(ctx, source, target, encounter); err != nil {
				return err
			}
		} else {
			payload := map[string]any{"target_id": target.ID, "amount": o.heal}
			if err := s.emitter.Emit(ctx, "heal", payload); err != nil {
				return err
			}
		}
	}

	if o.effect != nil {
		if encounter == nil {
			// timed effects only exist inside a combat
			return nil
		}
		if input.Authoritative || selfTarget {
			target.Effects.Apply(o.effect)
			if err := s.saveTarget(ctx, source, target, encounter); err != nil {
				return err
			}
		} else {
			if err := s.emitter.Emit(ctx, "customEffect", map[string]any{
				"target_id": target.ID,
				"effect":    o.effect,
			}); err != nil {
				return err
			}
		}
	}

	return nil
}

func (s *service) saveTarget(ctx context.Context, source, target *actor.Actor, encounter *combat.Encounter) error {
	if target.ID == source.ID {
		// the source is saved once at the end of the activation
		return nil
	}
	if err := s.actors.Save(ctx, target); err != nil {
		return err
	}
	if encounter != nil {
		s.syncCombatant(encounter, target)
	}
	return nil
}

// syncCombatant refreshes the encounter's display copy of an actor
func (s *service) syncCombatant(encounter *combat.Encounter, a *actor.Actor) {
	c, ok := encounter.Combatants[a.ID]
	if !ok {
		return
	}
	c.CurrentHP = a.HP.Current
	c.MaxHP = a.HP.Max
	c.Defense = a.Stats[shared.StatDefense].Value
	c.Statuses = append(c.Statuses[:0], a.Statuses...)
	if a.Effects != nil {
		c.Statuses = append(c.Statuses, a.Effects.Statuses()...)
	}
}

// buildEffect constructs the timed effect a resolver spawns
func (s *service) buildEffect(rc *resolveContext, res item.Resolver, modifiers bool) *effects.CustomEffect {
	ae := res.AdditionalEffect
	name := rc.source.ItemName(rc.itemID)

	duration := rc.eval.Evaluate(rc.snap, ae.Duration, rc.itemID)
	if duration < 1 && ae.Unit != shared.UnitCombat {
		duration = 1
	}

	// the periodic formula is bound to the caster's stats now so the round
	// driver can roll it without the caster loaded
	periodicFormula := ""
	kind := effects.FormulaNone
	if ae.Formula != "" {
		periodicFormula = rc.eval.EvaluateKeepDice(rc.snap, ae.Formula, rc.itemID)
		kind = effects.FormulaDamage
		if res.Kind == item.ResolverHeal {
			kind = effects.FormulaHeal
		}
	}

	eff := &effects.CustomEffect{
		ID:            s.uuidGen.New(),
		Slug:          effects.Slugify(name),
		Name:          name,
		SourceID:      rc.itemID,
		CasterID:      rc.source.ID,
		Statuses:      ae.Statuses,
		Unit:          ae.Unit,
		Duration:      duration,
		RemainingTurn: duration,
		Formula:       periodicFormula,
		ElementType:   ae.ElementType,
		FormulaKind:   kind,
		Debuff:        !ae.Buff,
	}
	if rc.encounter != nil {
		eff.StartedAt = rc.encounter.Round
	}
	if modifiers {
		eff.Modifiers = rc.action.Modifiers
	}
	return eff
}

func manaBurnPrompt(name string, missing, burn int) string {
	return fmt.Sprintf("casting %s is short %d mana: sacrifice %d hit points?", name, missing, burn)
}
