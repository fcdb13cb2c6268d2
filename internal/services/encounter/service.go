package encounter

import (
	"context"
	"fmt"

	"github.com/chronica-rpg/chronica/internal/dice"
	"github.com/chronica-rpg/chronica/internal/domain/actor"
	"github.com/chronica-rpg/chronica/internal/domain/combat"
	"github.com/chronica-rpg/chronica/internal/domain/shared"
	"github.com/chronica-rpg/chronica/internal/effects"
	apperrors "github.com/chronica-rpg/chronica/internal/errors"
	"github.com/chronica-rpg/chronica/internal/repositories/encounters"
	actorsvc "github.com/chronica-rpg/chronica/internal/services/actor"
	"github.com/chronica-rpg/chronica/internal/uuid"
)

// Service defines the encounter service interface
type Service interface {
	// CreateEncounter creates a new encounter in setup state
	CreateEncounter(ctx context.Context, input *CreateEncounterInput) (*combat.Encounter, error)

	// GetEncounter retrieves an encounter by ID
	GetEncounter(ctx context.Context, encounterID string) (*combat.Encounter, error)

	// GetActiveEncounter retrieves the single running encounter
	GetActiveEncounter(ctx context.Context) (*combat.Encounter, error)

	// AddCombatant enrolls an actor on the given side
	AddCombatant(ctx context.Context, encounterID, actorID string, side combat.Side) (*combat.Combatant, error)

	// RemoveCombatant drops a combatant; GM only
	RemoveCombatant(ctx context.Context, encounterID, actorID, userID string) error

	// RollInitiative rolls initiative for every combatant and sorts the
	// turn order; GM only
	RollInitiative(ctx context.Context, encounterID, userID string) error

	// StartEncounter begins combat; GM only
	StartEncounter(ctx context.Context, encounterID, userID string) (*TurnReport, error)

	// NextTurn advances to the next living combatant, driving the timed
	// effect hooks of the turn that ended and the one that starts
	NextTurn(ctx context.Context, encounterID, userID string) (*TurnReport, error)

	// ApplyDamage damages a combatant's actor and syncs the display copy;
	// GM only
	ApplyDamage(ctx context.Context, encounterID, actorID, userID string, damage int) error

	// HealCombatant heals a combatant's actor and syncs the display copy;
	// GM only
	HealCombatant(ctx context.Context, encounterID, actorID, userID string, amount int) error

	// ApplyEffect attaches a timed effect to a combatant's actor, refreshing
	// by slug, and syncs the display copy; GM only
	ApplyEffect(ctx context.Context, encounterID, actorID, userID string, eff *effects.CustomEffect) error

	// EndEncounter concludes the encounter early; GM only
	EndEncounter(ctx context.Context, encounterID, userID string) error

	// LogCombatAction records a narration line without touching state
	LogCombatAction(ctx context.Context, encounterID, entry string) error
}

// CreateEncounterInput contains data for creating an encounter
type CreateEncounterInput struct {
	Name string
	GMID string
}

// TurnReport is what a turn advancement (or combat start) did
type TurnReport struct {
	Transition *combat.Transition
	Logs       []string
}

type service struct {
	repository encounters.Repository
	actors     actorsvc.Service
	roller     dice.Roller
	uuidGen    uuid.Generator
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	Repository    encounters.Repository
	ActorService  actorsvc.Service
	Roller        dice.Roller
	UUIDGenerator uuid.Generator
}

// NewService creates a new encounter service
func NewService(cfg *ServiceConfig) Service {
	if cfg.Repository == nil {
		panic("repository is required")
	}
	if cfg.ActorService == nil {
		panic("actor service is required")
	}
	if cfg.Roller == nil {
		cfg.Roller = dice.NewRandomRoller()
	}
	if cfg.UUIDGenerator == nil {
		cfg.UUIDGenerator = uuid.NewGoogleUUIDGenerator()
	}

	return &service{
		repository: cfg.Repository,
		actors:     cfg.ActorService,
		roller:     cfg.Roller,
		uuidGen:    cfg.UUIDGenerator,
	}
}

func (s *service) CreateEncounter(ctx context.Context, input *CreateEncounterInput) (*combat.Encounter, error) {
	if input == nil {
		return nil, apperrors.InvalidArgument("input cannot be nil")
	}
	if input.GMID == "" {
		return nil, apperrors.InvalidArgument("GM ID is required")
	}
	if input.Name == "" {
		input.Name = "Encounter"
	}

	if _, err := s.repository.GetActive(ctx); err == nil {
		return nil, apperrors.Precondition("an encounter is already running")
	} else if !apperrors.IsNotFound(err) {
		return nil, err
	}

	enc := combat.NewEncounter(s.uuidGen.New(), input.Name, input.GMID)
	if err := s.repository.Create(ctx, enc); err != nil {
		return nil, err
	}
	return enc, nil
}

func (s *service) GetEncounter(ctx context.Context, encounterID string) (*combat.Encounter, error) {
	return s.repository.Get(ctx, encounterID)
}

func (s *service) GetActiveEncounter(ctx context.Context) (*combat.Encounter, error) {
	return s.repository.GetActive(ctx)
}

func (s *service) AddCombatant(ctx context.Context, encounterID, actorID string, side combat.Side) (*combat.Combatant, error) {
	enc, err := s.repository.Get(ctx, encounterID)
	if err != nil {
		return nil, err
	}
	if enc.Status == combat.StatusCompleted {
		return nil, apperrors.Precondition("encounter is over")
	}
	if _, exists := enc.Combatants[actorID]; exists {
		return nil, apperrors.AlreadyExistsf("%s is already in the encounter", actorID)
	}

	a, err := s.actors.GetActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	c := combatantFromActor(a, side)
	enc.AddCombatant(c)
	enc.AddLogEntry(fmt.Sprintf("%s joins the fight", c.Name))

	if err := s.repository.Update(ctx, enc); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) RemoveCombatant(ctx context.Context, encounterID, actorID, userID string) error {
	enc, err := s.repository.Get(ctx, encounterID)
	if err != nil {
		return err
	}
	if enc.GMID != userID {
		return apperrors.PermissionDenied("only the GM can remove combatants")
	}

	c, exists := enc.Combatants[actorID]
	if !exists {
		return apperrors.NotFoundf("combatant %s not found", actorID)
	}

	// the actor leaves combat: its timed effects go with it
	if a, err := s.actors.GetActor(ctx, actorID); err == nil {
		a.Effects.PurgeAll()
		if err := s.actors.Save(ctx, a); err != nil {
			return err
		}
	} else if !apperrors.IsNotFound(err) {
		return err
	}

	enc.RemoveCombatant(actorID)
	enc.AddLogEntry(fmt.Sprintf("%s leaves the fight", c.Name))
	return s.repository.Update(ctx, enc)
}

func (s *service) RollInitiative(ctx context.Context, encounterID, userID string) error {
	enc, err := s.repository.Get(ctx, encounterID)
	if err != nil {
		return err
	}
	if enc.GMID != userID {
		return apperrors.PermissionDenied("only the GM can roll initiative")
	}
	if enc.Status != combat.StatusSetup && enc.Status != combat.StatusRolling {
		return apperrors.Precondition("initiative is already locked in")
	}
	if len(enc.Combatants) == 0 {
		return apperrors.Precondition("no combatants to roll for")
	}

	for actorID := range enc.Combatants {
		a, err := s.actors.GetActor(ctx, actorID)
		if err != nil {
			return err
		}
		roll, err := s.roller.Roll(1, 20, a.Stats[shared.StatInitiative].Value)
		if err != nil {
			return err
		}
		enc.SetInitiative(actorID, roll.Total)
	}

	enc.SortTurnOrder()
	enc.AddLogEntry("initiative rolled")
	return s.repository.Update(ctx, enc)
}

func (s *service) StartEncounter(ctx context.Context, encounterID, userID string) (*TurnReport, error) {
	enc, err := s.repository.Get(ctx, encounterID)
	if err != nil {
		return nil, err
	}
	if enc.GMID != userID {
		return nil, apperrors.PermissionDenied("only the GM can start the encounter")
	}

	tr, ok := enc.Start()
	if !ok && tr == nil {
		return nil, apperrors.Precondition("initiative must be rolled before combat starts")
	}

	report := &TurnReport{Transition: tr}
	if err := s.driveTransition(ctx, enc, tr, report); err != nil {
		return nil, err
	}

	enc.AddLogEntry("combat begins")
	if err := s.repository.Update(ctx, enc); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *service) NextTurn(ctx context.Context, encounterID, userID string) (*TurnReport, error) {
	enc, err := s.repository.Get(ctx, encounterID)
	if err != nil {
		return nil, err
	}
	if !enc.CanAct(userID) {
		return nil, apperrors.PermissionDenied("it is not your turn")
	}

	tr := enc.NextTurn()
	if tr == nil {
		return nil, apperrors.Precondition("combat is not running")
	}

	report := &TurnReport{Transition: tr}

	// expire the ending turn's effects before the next combatant acts
	if tr.EndedTurnActorID != "" {
		if err := s.expireTurnEnd(ctx, enc, tr.EndedTurnActorID, report); err != nil {
			return nil, err
		}
	}

	if err := s.driveTransition(ctx, enc, tr, report); err != nil {
		return nil, err
	}

	for _, l := range report.Logs {
		enc.AddLogEntry(l)
	}
	if err := s.repository.Update(ctx, enc); err != nil {
		return nil, err
	}
	return report, nil
}

// driveTransition fires the turn-start and combat-end hooks of a transition
func (s *service) driveTransition(ctx context.Context, enc *combat.Encounter, tr *combat.Transition, report *TurnReport) error {
	if tr.CombatEnded {
		return s.concludeCombat(ctx, enc, report)
	}
	if tr.StartedTurnActorID != "" {
		return s.tickTurnStart(ctx, enc, tr.StartedTurnActorID, report)
	}
	return nil
}

// tickTurnStart decrements the starting combatant's effect timers and rolls
// their periodic formulas
func (s *service) tickTurnStart(ctx context.Context, enc *combat.Encounter, actorID string, report *TurnReport) error {
	a, err := s.actors.GetActor(ctx, actorID)
	if err != nil {
		return err
	}

	periodic := a.Effects.TickTurnStart()
	for _, eff := range periodic {
		if err := s.applyPeriodic(a, eff, report); err != nil {
			return err
		}
	}

	if err := s.actors.Save(ctx, a); err != nil {
		return err
	}
	syncCombatant(enc, a)

	if enc.CheckAndEnd() {
		_, partyWon := enc.CheckCombatEnd()
		report.Transition.CombatEnded = true
		report.Transition.PartyWon = partyWon
		return s.concludeCombat(ctx, enc, report)
	}
	return nil
}

func (s *service) applyPeriodic(a *actor.Actor, eff *effects.CustomEffect, report *TurnReport) error {
	roll, err := s.roller.RollFormula(eff.Formula)
	if err != nil {
		return err
	}
	amount := roll.Total
	if amount < 0 {
		amount = 0
	}

	switch eff.FormulaKind {
	case effects.FormulaHeal:
		a.HP.Heal(amount)
		report.Logs = append(report.Logs, fmt.Sprintf("%s regains %d hit points from %s", a.Name, amount, eff.Name))
	default:
		reduced := amount - a.Stats[shared.StatDamageResistance].Value
		if reduced < 0 {
			reduced = 0
		}
		a.HP.Damage(reduced)
		report.Logs = append(report.Logs, fmt.Sprintf("%s takes %d damage from %s", a.Name, reduced, eff.Name))
	}
	return nil
}

// expireTurnEnd removes the ending combatant's run-out effects
func (s *service) expireTurnEnd(ctx context.Context, enc *combat.Encounter, actorID string, report *TurnReport) error {
	a, err := s.actors.GetActor(ctx, actorID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil
		}
		return err
	}

	expired := a.Effects.ExpireTurnEnd()
	if len(expired) == 0 {
		return nil
	}
	for _, eff := range expired {
		report.Logs = append(report.Logs, fmt.Sprintf("%s fades from %s", eff.Name, a.Name))
	}

	if err := s.actors.Save(ctx, a); err != nil {
		return err
	}
	syncCombatant(enc, a)
	return nil
}

// concludeCombat purges every combatant's timed effects and restores their
// per-combat charges
func (s *service) concludeCombat(ctx context.Context, enc *combat.Encounter, report *TurnReport) error {
	for actorID := range enc.Combatants {
		a, err := s.actors.GetActor(ctx, actorID)
		if err != nil {
			if apperrors.IsNotFound(err) {
				continue
			}
			return err
		}
		a.Effects.PurgeAll()
		a.EndOfCombatReset()
		if err := s.actors.Save(ctx, a); err != nil {
			return err
		}
		syncCombatant(enc, a)
	}

	outcome := "the opposition prevails"
	if report.Transition.PartyWon {
		outcome = "the party prevails"
	}
	report.Logs = append(report.Logs, fmt.Sprintf("combat ends: %s", outcome))
	return nil
}

func (s *service) ApplyDamage(ctx context.Context, encounterID, actorID, userID string, damage int) error {
	enc, err := s.repository.Get(ctx, encounterID)
	if err != nil {
		return err
	}
	if enc.GMID != userID {
		return apperrors.PermissionDenied("only the GM can apply damage directly")
	}
	if _, exists := enc.Combatants[actorID]; !exists {
		return apperrors.NotFoundf("combatant %s not found", actorID)
	}

	a, err := s.actors.ApplyDamage(ctx, actorID, damage)
	if err != nil {
		return err
	}
	syncCombatant(enc, a)
	enc.AddLogEntry(fmt.Sprintf("%s takes %d damage", a.Name, damage))

	if enc.CheckAndEnd() {
		report := &TurnReport{Transition: &combat.Transition{CombatEnded: true}}
		if _, partyWon := enc.CheckCombatEnd(); partyWon {
			report.Transition.PartyWon = true
		}
		if err := s.concludeCombat(ctx, enc, report); err != nil {
			return err
		}
		for _, l := range report.Logs {
			enc.AddLogEntry(l)
		}
	}
	return s.repository.Update(ctx, enc)
}

func (s *service) HealCombatant(ctx context.Context, encounterID, actorID, userID string, amount int) error {
	enc, err := s.repository.Get(ctx, encounterID)
	if err != nil {
		return err
	}
	if enc.GMID != userID {
		return apperrors.PermissionDenied("only the GM can heal directly")
	}
	if _, exists := enc.Combatants[actorID]; !exists {
		return apperrors.NotFoundf("combatant %s not found", actorID)
	}

	a, err := s.actors.Heal(ctx, actorID, amount)
	if err != nil {
		return err
	}
	syncCombatant(enc, a)
	enc.AddLogEntry(fmt.Sprintf("%s is healed for %d", a.Name, amount))
	return s.repository.Update(ctx, enc)
}

func (s *service) ApplyEffect(ctx context.Context, encounterID, actorID, userID string, eff *effects.CustomEffect) error {
	if eff == nil {
		return apperrors.InvalidArgument("effect cannot be nil")
	}

	enc, err := s.repository.Get(ctx, encounterID)
	if err != nil {
		return err
	}
	if enc.GMID != userID {
		return apperrors.PermissionDenied("only the GM can attach effects directly")
	}
	if _, exists := enc.Combatants[actorID]; !exists {
		return apperrors.NotFoundf("combatant %s not found", actorID)
	}

	a, err := s.actors.GetActor(ctx, actorID)
	if err != nil {
		return err
	}
	a.Effects.Apply(eff)
	if err := s.actors.Save(ctx, a); err != nil {
		return err
	}

	syncCombatant(enc, a)
	enc.AddLogEntry(fmt.Sprintf("%s is affected by %s", a.Name, eff.Name))
	return s.repository.Update(ctx, enc)
}

func (s *service) EndEncounter(ctx context.Context, encounterID, userID string) error {
	enc, err := s.repository.Get(ctx, encounterID)
	if err != nil {
		return err
	}
	if enc.GMID != userID {
		return apperrors.PermissionDenied("only the GM can end the encounter")
	}
	if enc.Status == combat.StatusCompleted {
		return nil
	}

	wasActive := enc.Status == combat.StatusActive
	enc.End()

	if wasActive {
		report := &TurnReport{Transition: &combat.Transition{CombatEnded: true}}
		if err := s.concludeCombat(ctx, enc, report); err != nil {
			return err
		}
		for _, l := range report.Logs {
			enc.AddLogEntry(l)
		}
	}
	return s.repository.Update(ctx, enc)
}

func (s *service) LogCombatAction(ctx context.Context, encounterID, entry string) error {
	enc, err := s.repository.Get(ctx, encounterID)
	if err != nil {
		return err
	}
	enc.AddLogEntry(entry)
	return s.repository.Update(ctx, enc)
}

// combatantFromActor builds the display copy enrolled in an encounter
func combatantFromActor(a *actor.Actor, side combat.Side) *combat.Combatant {
	c := &combat.Combatant{
		ActorID: a.ID,
		OwnerID: a.OwnerID,
		Name:    a.Name,
		Side:    side,
	}
	syncTo(c, a)
	return c
}

// syncCombatant refreshes an encounter's display copy of an actor
func syncCombatant(enc *combat.Encounter, a *actor.Actor) {
	if c, ok := enc.Combatants[a.ID]; ok {
		syncTo(c, a)
	}
}

func syncTo(c *combat.Combatant, a *actor.Actor) {
	c.CurrentHP = a.HP.Current
	c.MaxHP = a.HP.Max
	c.Defense = a.Stats[shared.StatDefense].Value
	c.Statuses = append(c.Statuses[:0], a.Statuses...)
	if a.Effects != nil {
		c.Statuses = append(c.Statuses, a.Effects.Statuses()...)
	}
}
