package dice

import "math/rand"

// randomRoller implements Roller with math/rand
type randomRoller struct{}

// NewRandomRoller creates a new random dice roller
func NewRandomRoller() Roller {
	return &randomRoller{}
}

// Roll implements Roller.Roll
func (r *randomRoller) Roll(count, sides, bonus int) (*RollResult, error) {
	return Roll(count, sides, bonus)
}

// RollFormula implements Roller.RollFormula
func (r *randomRoller) RollFormula(formula string) (*RollResult, error) {
	result := &RollResult{Formula: formula}

	total, err := eval(formula, func(count, sides int) (int, error) {
		sum := 0
		for i := 0; i < count; i++ {
			face := rand.Intn(sides) + 1
			result.Rolls = append(result.Rolls, face)
			sum += face
		}
		return sum, nil
	})
	if err != nil {
		return nil, err
	}

	result.Total = total
	return result, nil
}
