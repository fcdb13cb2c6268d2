package shared

// DurationUnit says how a timed effect's duration is counted
type DurationUnit string

const (
	// UnitRound counts combat rounds, decremented at the owner's turn
	UnitRound DurationUnit = "round"

	// UnitCombat lasts until the combat encounter ends
	UnitCombat DurationUnit = "combat"
)
