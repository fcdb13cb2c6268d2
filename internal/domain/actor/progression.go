package actor

import (
	"github.com/chronica-rpg/chronica/internal/domain/item"
	"github.com/chronica-rpg/chronica/internal/domain/shared"
	apperrors "github.com/chronica-rpg/chronica/internal/errors"
)

// LearnCapacity marks a capacity as learned, enforcing path order: every
// earlier capacity in the path must already be learned. A level-1 caster may
// take the second capacity of a path first, which covers profiles whose
// starting kit grants a rank-2 spell at character creation.
func (a *Actor) LearnCapacity(capacityID string, casterFamily bool) error {
	c := a.CapacityByID(capacityID)
	if c == nil {
		return apperrors.NotFoundf("capacity %s not found", capacityID)
	}
	if c.Learned {
		return apperrors.Preconditionf("%s is already learned", c.Name)
	}
	if c.MinLevel > 0 && a.Level < c.MinLevel {
		return apperrors.Preconditionf("%s requires level %d", c.Name, c.MinLevel)
	}

	if c.PathID != "" {
		path := a.PathByID(c.PathID)
		if path != nil {
			pos := path.Position(capacityID)
			for i := 0; i < pos; i++ {
				earlier := a.CapacityByID(path.CapacityIDs[i])
				if earlier != nil && !earlier.Learned {
					if pos == 1 && a.Level == 1 && casterFamily {
						break
					}
					return apperrors.Preconditionf("%s must be learned after %s", c.Name, earlier.Name)
				}
			}
		}
	}

	c.Learned = true
	return nil
}

// UnlearnCapacity clears the learned flag, rejecting when a later capacity
// in the same path is still learned.
func (a *Actor) UnlearnCapacity(capacityID string) error {
	c := a.CapacityByID(capacityID)
	if c == nil {
		return apperrors.NotFoundf("capacity %s not found", capacityID)
	}
	if !c.Learned {
		return apperrors.Preconditionf("%s is not learned", c.Name)
	}

	if c.PathID != "" {
		if path := a.PathByID(c.PathID); path != nil {
			pos := path.Position(capacityID)
			for i := pos + 1; i < len(path.CapacityIDs); i++ {
				later := a.CapacityByID(path.CapacityIDs[i])
				if later != nil && later.Learned {
					return apperrors.Preconditionf("unlearn %s first", later.Name)
				}
			}
		}
	}

	c.Learned = false
	return nil
}

// Equip marks a piece of equipment as worn. A slot holds one item at a
// time; hand slots reject a second weapon or shield.
func (a *Actor) Equip(equipmentID string) error {
	e := a.EquipmentByID(equipmentID)
	if e == nil {
		return apperrors.NotFoundf("equipment %s not found", equipmentID)
	}
	if e.Equipped {
		return apperrors.Preconditionf("%s is already equipped", e.Name)
	}

	if e.Slot != "" && e.Slot != shared.SlotAccessory {
		for _, other := range a.Equipment {
			if other.Equipped && other.Slot == e.Slot {
				if e.Slot == shared.SlotMainHand || e.Slot == shared.SlotOffHand {
					return apperrors.Preconditionf("hands are full: %s is already held", other.Name)
				}
				return apperrors.Preconditionf("%s slot is taken by %s", e.Slot, other.Name)
			}
		}
	}

	e.Equipped = true
	return nil
}

// Unequip clears the equipped flag.
func (a *Actor) Unequip(equipmentID string) error {
	e := a.EquipmentByID(equipmentID)
	if e == nil {
		return apperrors.NotFoundf("equipment %s not found", equipmentID)
	}
	e.Equipped = false
	return nil
}

// ShortRest spends one recovery point to regain hit points. The amount is
// rolled by the caller; this applies the bookkeeping.
func (a *Actor) ShortRest(healed int) error {
	pool := a.Resources[shared.ResourceRecovery]
	if !pool.Spend(1) {
		return apperrors.InsufficientResourcef("no recovery points left")
	}
	a.HP.Heal(healed)
	return nil
}

// LongRest restores hit points and every pool to max, resets daily charges
// and drops expended concentration. Combat-frequency charges reset at the
// end of each encounter instead.
func (a *Actor) LongRest() {
	a.HP.Current = a.HP.Max
	for _, pool := range a.Resources {
		pool.Value = pool.Max
	}
	for _, c := range a.Capacities {
		if c.Frequency.Charged() {
			c.Charges.Refill()
		}
	}
}

// EndOfCombatReset refills combat-frequency capacity charges.
func (a *Actor) EndOfCombatReset() {
	for _, c := range a.Capacities {
		if c.Frequency == item.FrequencyCombat {
			c.Charges.Refill()
		}
	}
}
