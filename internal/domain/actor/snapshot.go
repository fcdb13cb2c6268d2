package actor

import (
	"github.com/chronica-rpg/chronica/internal/domain/formula"
	"github.com/chronica-rpg/chronica/internal/domain/shared"
)

// Snapshot freezes the actor's current derived values into the token table
// formulas substitute against. Ability tokens resolve to the modifier, stat
// and pool tokens to the current value.
func (a *Actor) Snapshot() *formula.Snapshot {
	snap := &formula.Snapshot{
		Level:  a.Level,
		Values: make(map[string]int, 24),
		Ranks:  a.Ranks(),
	}
	snap.Values["lvl"] = a.Level
	snap.Values["niv"] = a.Level

	for attr, ab := range a.Abilities {
		snap.Values[string(attr)] = ab.Mod
	}
	snap.Values["atc"] = a.Stats[shared.StatMeleeAttack].Value
	snap.Values["atd"] = a.Stats[shared.StatRangedAttack].Value
	snap.Values["atm"] = a.Stats[shared.StatMagicAttack].Value
	snap.Values["def"] = a.Stats[shared.StatDefense].Value
	snap.Values["init"] = a.Stats[shared.StatInitiative].Value
	snap.Values["crit"] = a.Stats[shared.StatCritical].Value
	snap.Values["dr"] = a.Stats[shared.StatDamageResistance].Value

	snap.Values["pf"] = a.Resources[shared.ResourceFortune].Value
	snap.Values["pm"] = a.Resources[shared.ResourceMana].Value
	snap.Values["pr"] = a.Resources[shared.ResourceRecovery].Value

	snap.Values["hp"] = a.HP.Current
	snap.Values["hpmax"] = a.HP.Max

	if weapon := a.EquippedWeapon(); weapon != nil {
		if act := weapon.PrimaryAction(); act != nil {
			for _, res := range act.Resolvers {
				if res.Dmg.Formula != "" && snap.WeaponDamage == "" {
					snap.WeaponDamage = res.Dmg.Formula
				}
				if res.Skill.Formula != "" && snap.WeaponSkill == "" {
					snap.WeaponSkill = res.Skill.Formula
				}
			}
		}
	}
	return snap
}
