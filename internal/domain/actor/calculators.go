package actor

import (
	"github.com/chronica-rpg/chronica/internal/config"
	"github.com/chronica-rpg/chronica/internal/domain/formula"
	"github.com/chronica-rpg/chronica/internal/domain/modifier"
	"github.com/chronica-rpg/chronica/internal/domain/shared"
)

// Pipeline recomputes every derived stat on an actor. Stages run in a fixed
// order so later stages read the outputs of earlier ones: abilities, then
// max HP, then combat stats, then resource pools, then movement and senses,
// then the HP-threshold statuses. Running it twice on an unchanged actor is
// a no-op.
type Pipeline struct {
	rules *config.RulesConfig
	data  *config.RulesData
	eval  *formula.Evaluator
	agg   *modifier.Aggregator
}

// NewPipeline builds a pipeline over the given rules constants and data
// tables. Nil arguments fall back to the defaults.
func NewPipeline(rules *config.RulesConfig, data *config.RulesData) *Pipeline {
	if rules == nil {
		rules = config.DefaultRules()
	}
	if data == nil {
		data = config.DefaultRulesData()
	}
	eval := formula.NewEvaluator(rules, data)
	return &Pipeline{
		rules: rules,
		data:  data,
		eval:  eval,
		agg:   modifier.NewAggregator(eval),
	}
}

// Evaluator exposes the pipeline's formula evaluator for resolvers that
// need to substitute against the same rules tables.
func (p *Pipeline) Evaluator() *formula.Evaluator {
	return p.eval
}

// Aggregator exposes the pipeline's modifier aggregator.
func (p *Pipeline) Aggregator() *modifier.Aggregator {
	return p.agg
}

// Derive runs the full pipeline over the actor in place.
func (p *Pipeline) Derive(a *Actor) {
	mods := a.EnabledModifiers()
	snap := a.Snapshot()

	p.deriveAbilities(a, mods, snap)
	p.deriveMaxHP(a, mods, snap)
	p.deriveCombatStats(a, mods, snap)
	p.deriveResources(a, mods, snap)
	p.deriveMovement(a, mods, snap)
	p.syncHPStatuses(a)
}

// deriveAbilities computes each ability value and modifier. Heavy armor
// caps the agility value before the modifier is taken.
func (p *Pipeline) deriveAbilities(a *Actor, mods []modifier.Modifier, snap *formula.Snapshot) {
	heavyArmor := a.HeavyArmorEquipped()
	for _, attr := range shared.Attributes {
		ab := a.Abilities[attr]
		total := p.agg.TotalFor(snap, mods, modifier.AbilityTarget(attr))
		ab.Value = ab.Base + ab.Bonuses.Total() + total.Value
		if attr == shared.AttributeAgility && heavyArmor && ab.Value > p.rules.HeavyArmorAgilityMax {
			ab.Value = p.rules.HeavyArmorAgilityMax
		}
		ab.Mod = abilityMod(ab.Value)
		ab.Tooltip = total.Tooltip

		snap.Values[string(attr)] = ab.Mod
	}
}

// deriveMaxHP computes max hit points. Characters scale with family and
// constitution per level; encounter creatures use their flat base. Prestige
// paths add their per-capacity bonus. Current HP is clamped, never reset.
func (p *Pipeline) deriveMaxHP(a *Actor, mods []modifier.Modifier, snap *formula.Snapshot) {
	conMod := a.Abilities[shared.AttributeConstitution].Mod

	max := 0
	if a.Kind == KindEncounter {
		max = a.FlatHPBase
	} else {
		family := p.familyFor(a)
		max = (family.HPBase + conMod) * a.Level
	}
	for _, path := range a.Paths {
		if path.Prestige {
			max += path.HPPerCapacity * a.PathRank(path)
		}
	}
	max += p.agg.TotalFor(snap, mods, modifier.TargetHP).Value
	if max < 1 {
		max = 1
	}

	a.HP.Max = max
	a.HP.clamp()
	snap.Values["hpmax"] = a.HP.Max
	snap.Values["hp"] = a.HP.Current
}

// deriveCombatStats computes the seven combat stats. Attack stats add the
// linked ability modifier and the level bonus capped at the rules cap;
// defense folds in the first equipped armor and shield; the critical
// threshold subtracts its bonuses but never drops below the floor.
func (p *Pipeline) deriveCombatStats(a *Actor, mods []modifier.Modifier, snap *formula.Snapshot) {
	levelBonus := a.Level
	if levelBonus > p.rules.LevelBonusCap {
		levelBonus = p.rules.LevelBonusCap
	}

	mod := func(attr shared.Attribute) int { return a.Abilities[attr].Mod }
	value := func(attr shared.Attribute) int { return a.Abilities[attr].Value }

	magicAttr := shared.AttributeCharisma
	if a.Profile != nil && a.Profile.MagicAttribute != "" {
		magicAttr = a.Profile.MagicAttribute
	}

	for _, kind := range shared.CombatStatKinds {
		stat := a.Stats[kind]
		total := p.agg.TotalFor(snap, mods, modifier.CombatTarget(kind))

		switch kind {
		case shared.StatMeleeAttack:
			stat.Base = mod(shared.AttributeStrength) + levelBonus
		case shared.StatRangedAttack:
			stat.Base = mod(shared.AttributeAgility) + levelBonus
		case shared.StatMagicAttack:
			stat.Base = mod(magicAttr) + levelBonus
		case shared.StatInitiative:
			stat.Base = p.rules.BaseInitiative + value(shared.AttributeAgility)
		case shared.StatDefense:
			stat.Base = p.rules.BaseDefense + mod(shared.AttributeAgility) + a.EquipmentDefense()
		case shared.StatCritical:
			stat.Base = p.rules.BaseCritical
		case shared.StatDamageResistance:
			stat.Base = 0
		}

		if kind == shared.StatCritical {
			// bonuses lower the threshold, floored
			stat.Value = stat.Base - stat.Bonuses.Total() - total.Value
			if stat.Value < p.rules.CriticalFloor {
				stat.Value = p.rules.CriticalFloor
			}
		} else {
			stat.Value = stat.Base + stat.Bonuses.Total() + total.Value
		}
		stat.Tooltip = total.Tooltip
	}

	snap.Values["atc"] = a.Stats[shared.StatMeleeAttack].Value
	snap.Values["atd"] = a.Stats[shared.StatRangedAttack].Value
	snap.Values["atm"] = a.Stats[shared.StatMagicAttack].Value
	snap.Values["def"] = a.Stats[shared.StatDefense].Value
	snap.Values["init"] = a.Stats[shared.StatInitiative].Value
	snap.Values["crit"] = a.Stats[shared.StatCritical].Value
	snap.Values["dr"] = a.Stats[shared.StatDamageResistance].Value
}

// deriveResources computes each pool's max. Fortune and recovery combine a
// base constant, a linked ability modifier and the family bonus. Mana only
// exists once at least one spell capacity is learned; it then equals the
// casting ability modifier plus one per learned spell. Values are clamped
// to the new max; a freshly created pool starts full.
func (p *Pipeline) deriveResources(a *Actor, mods []modifier.Modifier, snap *formula.Snapshot) {
	family := p.familyFor(a)

	magicAttr := shared.AttributeCharisma
	if a.Profile != nil && a.Profile.MagicAttribute != "" {
		magicAttr = a.Profile.MagicAttribute
	}

	spells := 0
	for _, c := range a.Capacities {
		if c.Learned && c.Spell {
			spells++
		}
	}

	for _, kind := range shared.ResourceKinds {
		pool := a.Resources[kind]
		total := p.agg.TotalFor(snap, mods, modifier.ResourceTarget(kind)).Value

		max := 0
		switch kind {
		case shared.ResourceFortune:
			max = 2 + a.Abilities[shared.AttributeCharisma].Mod + family.FortuneBonus + total
		case shared.ResourceRecovery:
			max = 5 + a.Abilities[shared.AttributeConstitution].Mod + family.RecoveryBonus + total
		case shared.ResourceMana:
			if spells > 0 {
				max = a.Abilities[magicAttr].Mod + spells + total
			}
		}
		if max < 0 {
			max = 0
		}

		pool.Max = max
		if !pool.Primed {
			pool.Value = pool.Max
			pool.Primed = true
		}
		if pool.Value > pool.Max {
			pool.Value = pool.Max
		}
		if pool.Value < 0 {
			pool.Value = 0
		}
	}

	snap.Values["pf"] = a.Resources[shared.ResourceFortune].Value
	snap.Values["pm"] = a.Resources[shared.ResourceMana].Value
	snap.Values["pr"] = a.Resources[shared.ResourceRecovery].Value
}

// deriveMovement computes movement and darkvision. Darkvision is granted by
// the presence of any enabled modifier targeting it.
func (p *Pipeline) deriveMovement(a *Actor, mods []modifier.Modifier, snap *formula.Snapshot) {
	a.Movement = 10 + p.agg.TotalFor(snap, mods, modifier.TargetMovement).Value
	if a.Movement < 0 {
		a.Movement = 0
	}

	a.Darkvision = false
	for _, m := range mods {
		if m.Target == modifier.TargetDarkvision {
			a.Darkvision = true
			break
		}
	}
}

// syncHPStatuses force-applies the HP-threshold statuses. Only statuses this
// mechanism applied are ever cleared by it, so a GM-applied unconscious
// survives a heal.
func (p *Pipeline) syncHPStatuses(a *Actor) {
	switch {
	case a.HP.Current <= 0:
		if !a.HasStatus(shared.StatusUnconscious) {
			a.AddStatus(shared.StatusUnconscious)
			a.EngineUnconscious = true
		}
		if a.EngineWeakened {
			a.RemoveStatus(shared.StatusWeakened)
			a.EngineWeakened = false
		}
	case a.HP.Current == 1:
		if !a.HasStatus(shared.StatusWeakened) {
			a.AddStatus(shared.StatusWeakened)
			a.EngineWeakened = true
		}
		if a.EngineUnconscious {
			a.RemoveStatus(shared.StatusUnconscious)
			a.EngineUnconscious = false
		}
	default:
		if a.EngineWeakened {
			a.RemoveStatus(shared.StatusWeakened)
			a.EngineWeakened = false
		}
		if a.EngineUnconscious {
			a.RemoveStatus(shared.StatusUnconscious)
			a.EngineUnconscious = false
		}
	}
}

func (p *Pipeline) familyFor(a *Actor) config.FamilyRules {
	name := ""
	if a.Profile != nil {
		name = a.Profile.Family
	}
	return p.data.Family(name)
}
