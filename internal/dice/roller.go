package dice

// Roller rolls dice. Services take a Roller so tests can inject
// predetermined results.
type Roller interface {
	// Roll rolls a number of dice with the given sides and adds a bonus
	Roll(count, sides, bonus int) (*RollResult, error)

	// RollFormula rolls a full dice expression such as "2d6+3" or
	// "1d8+2*2", returning the total and the per-die breakdown
	RollFormula(formula string) (*RollResult, error)
}
