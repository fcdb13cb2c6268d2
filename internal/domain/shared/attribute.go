package shared

// Attribute identifies one of the six raw abilities
type Attribute string

const (
	AttributeStrength     Attribute = "str"
	AttributeAgility      Attribute = "agi"
	AttributeConstitution Attribute = "con"
	AttributeIntellect    Attribute = "int"
	AttributePerception   Attribute = "per"
	AttributeCharisma     Attribute = "cha"
)

// Attributes lists the abilities in sheet order
var Attributes = []Attribute{
	AttributeStrength,
	AttributeAgility,
	AttributeConstitution,
	AttributeIntellect,
	AttributePerception,
	AttributeCharisma,
}

// IsValidAttribute reports whether the string names a known attribute
func IsValidAttribute(s string) bool {
	for _, attr := range Attributes {
		if string(attr) == s {
			return true
		}
	}
	return false
}

// CombatStatKind identifies a derived combat stat
type CombatStatKind string

const (
	StatMeleeAttack      CombatStatKind = "melee"
	StatRangedAttack     CombatStatKind = "ranged"
	StatMagicAttack      CombatStatKind = "magic"
	StatInitiative       CombatStatKind = "init"
	StatDefense          CombatStatKind = "def"
	StatCritical         CombatStatKind = "crit"
	StatDamageResistance CombatStatKind = "dr"
)

// CombatStatKinds lists the derived combat stats in computation order
var CombatStatKinds = []CombatStatKind{
	StatMeleeAttack,
	StatRangedAttack,
	StatMagicAttack,
	StatInitiative,
	StatDefense,
	StatCritical,
	StatDamageResistance,
}

// ResourceKind identifies a spendable resource pool
type ResourceKind string

const (
	ResourceFortune  ResourceKind = "fortune"
	ResourceMana     ResourceKind = "mana"
	ResourceRecovery ResourceKind = "recovery"
)

// ResourceKinds lists the resource pools in sheet order
var ResourceKinds = []ResourceKind{
	ResourceFortune,
	ResourceMana,
	ResourceRecovery,
}
