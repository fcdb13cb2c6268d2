package actor

import (
	"context"
	"strings"

	"github.com/chronica-rpg/chronica/internal/config"
	"github.com/chronica-rpg/chronica/internal/dice"
	"github.com/chronica-rpg/chronica/internal/domain/actor"
	"github.com/chronica-rpg/chronica/internal/domain/item"
	"github.com/chronica-rpg/chronica/internal/domain/shared"
	apperrors "github.com/chronica-rpg/chronica/internal/errors"
	"github.com/chronica-rpg/chronica/internal/repositories/actors"
	"github.com/chronica-rpg/chronica/internal/uuid"
)

// Service defines the actor service interface
type Service interface {
	// CreateCharacter creates a new player character sheet
	CreateCharacter(ctx context.Context, input *CreateCharacterInput) (*actor.Actor, error)

	// CreateEncounterActor creates a GM-driven creature
	CreateEncounterActor(ctx context.Context, input *CreateEncounterActorInput) (*actor.Actor, error)

	// GetActor loads an actor and re-derives its stats
	GetActor(ctx context.Context, id string) (*actor.Actor, error)

	// ListByOwner lists a participant's actors
	ListByOwner(ctx context.Context, ownerID string) ([]*actor.Actor, error)

	// Save re-derives and persists an actor after a mutation
	Save(ctx context.Context, a *actor.Actor) error

	// ToggleCapacityLearned learns or unlearns a capacity with path-order
	// validation
	ToggleCapacityLearned(ctx context.Context, actorID, capacityID string) (*actor.Actor, error)

	// ToggleEquipment equips or unequips a piece of equipment
	ToggleEquipment(ctx context.Context, actorID, equipmentID string) (*actor.Actor, error)

	// RollSkill rolls an ability check with skill modifiers folded in
	RollSkill(ctx context.Context, input *RollSkillInput) (*SkillRollResult, error)

	// ApplyDamage reduces an actor's hit points, after damage reduction
	ApplyDamage(ctx context.Context, actorID string, amount int) (*actor.Actor, error)

	// Heal restores an actor's hit points, clamped to max
	Heal(ctx context.Context, actorID string, amount int) (*actor.Actor, error)

	// ShortRest spends a recovery point to heal a recovery die
	ShortRest(ctx context.Context, actorID string) (*actor.Actor, *dice.RollResult, error)

	// LongRest refills hit points, pools and daily charges
	LongRest(ctx context.Context, actorID string) (*actor.Actor, error)

	// Pipeline exposes the derivation pipeline shared with other services
	Pipeline() *actor.Pipeline
}

// CreateCharacterInput contains data for creating a character
type CreateCharacterInput struct {
	OwnerID   string
	Name      string
	Abilities map[shared.Attribute]int
	Profile   *item.Profile
}

// CreateEncounterActorInput contains data for creating a creature
type CreateEncounterActorInput struct {
	OwnerID         string
	Name            string
	ChallengeRating int
	HPBase          int
	Abilities       map[shared.Attribute]int
}

// RollSkillInput describes an ability or skill check
type RollSkillInput struct {
	ActorID   string
	Attribute shared.Attribute
	SkillKey  string // optional, folds typed skill modifiers in
}

// SkillRollResult is the outcome of a skill check
type SkillRollResult struct {
	Roll    *dice.RollResult
	Total   int
	Tooltip string
}

type service struct {
	repository actors.Repository
	pipeline   *actor.Pipeline
	roller     dice.Roller
	uuidGen    uuid.Generator
	rules      *config.RulesConfig
	data       *config.RulesData
}

// ServiceConfig holds configuration for the actor service
type ServiceConfig struct {
	Repository    actors.Repository
	Roller        dice.Roller
	UUIDGenerator uuid.Generator
	Rules         *config.RulesConfig
	RulesData     *config.RulesData
}

// NewService creates a new actor service
func NewService(cfg *ServiceConfig) Service {
	if cfg.Repository == nil {
		panic("repository is required")
	}
	if cfg.Roller == nil {
		cfg.Roller = dice.NewRandomRoller()
	}
	if cfg.UUIDGenerator == nil {
		cfg.UUIDGenerator = uuid.NewGoogleUUIDGenerator()
	}
	if cfg.Rules == nil {
		cfg.Rules = config.DefaultRules()
	}
	if cfg.RulesData == nil {
		cfg.RulesData = config.DefaultRulesData()
	}
	return &service{
		repository: cfg.Repository,
		pipeline:   actor.NewPipeline(cfg.Rules, cfg.RulesData),
		roller:     cfg.Roller,
		uuidGen:    cfg.UUIDGenerator,
		rules:      cfg.Rules,
		data:       cfg.RulesData,
	}
}

func (s *service) Pipeline() *actor.Pipeline {
	return s.pipeline
}

func (s *service) CreateCharacter(ctx context.Context, input *CreateCharacterInput) (*actor.Actor, error) {
	if input == nil {
		return nil, apperrors.InvalidArgument("input cannot be nil")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.InvalidArgument("character name is required")
	}
	if input.OwnerID == "" {
		return nil, apperrors.InvalidArgument("owner ID is required")
	}

	a := actor.NewCharacter(s.uuidGen.New(), input.OwnerID, input.Name)
	for attr, base := range input.Abilities {
		if ability, ok := a.Abilities[attr]; ok {
			ability.Base = base
		}
	}
	if input.Profile != nil {
		if err := a.SetProfile(input.Profile); err != nil {
			return nil, err
		}
	}

	s.pipeline.Derive(a)
	a.HP.Current = a.HP.Max
	s.pipeline.Derive(a)
	if err := s.repository.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *service) CreateEncounterActor(ctx context.Context, input *CreateEncounterActorInput) (*actor.Actor, error) {
	if input == nil {
		return nil, apperrors.InvalidArgument("input cannot be nil")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.InvalidArgument("creature name is required")
	}

	a := actor.NewEncounterActor(s.uuidGen.New(), input.OwnerID, input.Name, input.ChallengeRating, input.HPBase)
	for attr, base := range input.Abilities {
		if ability, ok := a.Abilities[attr]; ok {
			ability.Base = base
		}
	}

	s.pipeline.Derive(a)
	a.HP.Current = a.HP.Max
	s.pipeline.Derive(a)
	if err := s.repository.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *service) GetActor(ctx context.Context, id string) (*actor.Actor, error) {
	a, err := s.repository.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.pipeline.Derive(a)
	return a, nil
}

func (s *service) ListByOwner(ctx context.Context, ownerID string) ([]*actor.Actor, error) {
	list, err := s.repository.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	for _, a := range list {
		s.pipeline.Derive(a)
	}
	return list, nil
}

// Save re-derives the actor and persists it. Every committed mutation goes
// through here so the stored document always carries consistent derived
// values.
func (s *service) Save(ctx context.Context, a *actor.Actor) error {
	if a == nil {
		return apperrors.InvalidArgument("actor cannot be nil")
	}
	s.pipeline.Derive(a)
	return s.repository.Update(ctx, a)
}

func (s *service) ToggleCapacityLearned(ctx context.Context, actorID, capacityID string) (*actor.Actor, error) {
	a, err := s.GetActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	c := a.CapacityByID(capacityID)
	if c == nil {
		return nil, apperrors.NotFoundf("capacity %s not found", capacityID)
	}

	if c.Learned {
		err = a.UnlearnCapacity(capacityID)
	} else {
		caster := false
		if a.Profile != nil {
			caster = s.data.Family(a.Profile.Family).Caster
		}
		err = a.LearnCapacity(capacityID, caster)
	}
	if err != nil {
		return nil, err
	}

	if err := s.Save(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *service) ToggleEquipment(ctx context.Context, actorID, equipmentID string) (*actor.Actor, error) {
	a, err := s.GetActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	e := a.EquipmentByID(equipmentID)
	if e == nil {
		return nil, apperrors.NotFoundf("equipment %s not found", equipmentID)
	}

	if e.Equipped {
		err = a.Unequip(equipmentID)
	} else {
		err = a.Equip(equipmentID)
	}
	if err != nil {
		return nil, err
	}

	if err := s.Save(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *service) RollSkill(ctx context.Context, input *RollSkillInput) (*SkillRollResult, error) {
	if input == nil {
		return nil, apperrors.InvalidArgument("input cannot be nil")
	}
	if !shared.IsValidAttribute(string(input.Attribute)) {
		return nil, apperrors.InvalidArgumentf("unknown attribute %q", input.Attribute)
	}

	a, err := s.GetActor(ctx, input.ActorID)
	if err != nil {
		return nil, err
	}

	roll, err := s.roller.Roll(1, 20, 0)
	if err != nil {
		return nil, err
	}

	snap := a.Snapshot()
	total := roll.Total + a.Abilities[input.Attribute].Mod
	tooltip := ""
	if input.SkillKey != "" {
		skillTotal := s.pipeline.Aggregator().SkillTotalFor(snap, a.EnabledModifiers(), input.SkillKey)
		total += skillTotal.Value
		tooltip = skillTotal.Tooltip
	}

	return &SkillRollResult{Roll: roll, Total: total, Tooltip: tooltip}, nil
}

// ApplyDamage reduces hit points after damage reduction. A zero result from
// a fully absorbed hit still counts as a committed mutation so HP statuses
// re-sync.
func (s *service) ApplyDamage(ctx context.Context, actorID string, amount int) (*actor.Actor, error) {
	if amount < 0 {
		return nil, apperrors.InvalidArgument("damage cannot be negative")
	}

	a, err := s.GetActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	reduced := amount - a.Stats[shared.StatDamageResistance].Value
	if reduced < 0 {
		reduced = 0
	}
	a.HP.Damage(reduced)

	if err := s.Save(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *service) Heal(ctx context.Context, actorID string, amount int) (*actor.Actor, error) {
	if amount < 0 {
		return nil, apperrors.InvalidArgument("heal cannot be negative")
	}

	a, err := s.GetActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	a.HP.Heal(amount)

	if err := s.Save(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *service) ShortRest(ctx context.Context, actorID string) (*actor.Actor, *dice.RollResult, error) {
	a, err := s.GetActor(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}

	conMod := a.Abilities[shared.AttributeConstitution].Mod
	roll, err := s.roller.Roll(1, 6, conMod)
	if err != nil {
		return nil, nil, err
	}

	healed := roll.Total
	if healed < 1 {
		healed = 1
	}
	if err := a.ShortRest(healed); err != nil {
		return nil, nil, err
	}

	if err := s.Save(ctx, a); err != nil {
		return nil, nil, err
	}
	return a, roll, nil
}

func (s *service) LongRest(ctx context.Context, actorID string) (*actor.Actor, error) {
	a, err := s.GetActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	a.LongRest()

	if err := s.Save(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}
