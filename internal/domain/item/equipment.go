package item

import (
	"github.com/chronica-rpg/chronica/internal/domain/modifier"
	"github.com/chronica-rpg/chronica/internal/domain/shared"
)

// EquipmentSubtype classifies a piece of equipment
type EquipmentSubtype string

const (
	SubtypeWeapon     EquipmentSubtype = "weapon"
	SubtypeArmor      EquipmentSubtype = "armor"
	SubtypeShield     EquipmentSubtype = "shield"
	SubtypeConsumable EquipmentSubtype = "consumable"
	SubtypeMisc       EquipmentSubtype = "misc"
)

// Equipment is a carried item. Its modifiers and permanent actions apply
// while it is equipped.
type Equipment struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Subtype  EquipmentSubtype `json:"subtype"`
	Slot     shared.Slot      `json:"slot"`
	Equipped bool             `json:"equipped"`
	Tags     []string         `json:"tags,omitempty"`

	// Defense is the armor or shield contribution to the defense stat
	Defense    int  `json:"defense,omitempty"`
	HeavyArmor bool `json:"heavy_armor,omitempty"`

	// Reloadable weapons carry ammunition charges
	Reloadable bool       `json:"reloadable,omitempty"`
	Charges    ChargePool `json:"charges,omitempty"`

	// Consumables track quantity; DestroyOnEmpty deletes the item when
	// the last one is used
	Quantity       int  `json:"quantity,omitempty"`
	DestroyOnEmpty bool `json:"destroy_on_empty,omitempty"`

	Actions   []Action            `json:"actions,omitempty"`
	Modifiers []modifier.Modifier `json:"modifiers,omitempty"`
}

// Ref returns a typed reference to this equipment
func (e *Equipment) Ref() Ref {
	return Ref{ID: e.ID, Type: TypeEquipment}
}

// IsWeapon reports whether the item is a weapon
func (e *Equipment) IsWeapon() bool {
	return e.Subtype == SubtypeWeapon
}

// HasTag reports whether the item carries the given tag
func (e *Equipment) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// PrimaryAction returns the item's first action, or nil
func (e *Equipment) PrimaryAction() *Action {
	if len(e.Actions) == 0 {
		return nil
	}
	return &e.Actions[0]
}

// Clone copies the equipment under a new ID, rebinding its actions' source
// references and its modifiers' sources to the new item.
func (e *Equipment) Clone(newID string) *Equipment {
	clone := *e
	clone.ID = newID

	clone.Actions = make([]Action, len(e.Actions))
	for i := range e.Actions {
		clone.Actions[i] = e.Actions[i].clone(Ref{ID: newID, Type: TypeEquipment})
	}

	clone.Modifiers = make([]modifier.Modifier, len(e.Modifiers))
	copy(clone.Modifiers, e.Modifiers)
	for i := range clone.Modifiers {
		clone.Modifiers[i].Rebind(newID)
	}

	clone.Tags = append([]string(nil), e.Tags...)
	return &clone
}
