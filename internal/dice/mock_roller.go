package dice

import (
	"fmt"
	"sync"
)

// MockRoller implements Roller for testing with predetermined die faces
type MockRoller struct {
	mu        sync.Mutex
	rolls     []int
	rollIndex int
}

// NewMockRoller creates a new mock dice roller
func NewMockRoller() *MockRoller {
	return &MockRoller{
		rolls: []int{},
	}
}

// SetNextRoll appends a predetermined die face
func (m *MockRoller) SetNextRoll(roll int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rolls = append(m.rolls, roll)
}

// SetRolls replaces the queue of predetermined die faces
func (m *MockRoller) SetRolls(rolls []int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rolls = rolls
	m.rollIndex = 0
}

// Reset clears all rolls and resets the index
func (m *MockRoller) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rolls = []int{}
	m.rollIndex = 0
}

func (m *MockRoller) getNextRoll() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.rollIndex >= len(m.rolls) {
		return 0, fmt.Errorf("no more predetermined rolls available (used %d of %d)", m.rollIndex, len(m.rolls))
	}

	roll := m.rolls[m.rollIndex]
	m.rollIndex++
	return roll, nil
}

// Roll implements Roller.Roll
func (m *MockRoller) Roll(count, sides, bonus int) (*RollResult, error) {
	result := &RollResult{Total: bonus, Rolls: make([]int, count)}
	for i := 0; i < count; i++ {
		face, err := m.getNextRoll()
		if err != nil {
			return nil, err
		}
		if face < 1 || face > sides {
			return nil, fmt.Errorf("invalid roll %d for d%d", face, sides)
		}
		result.Rolls[i] = face
		result.Total += face
	}
	return result, nil
}

// RollFormula implements Roller.RollFormula
func (m *MockRoller) RollFormula(formula string) (*RollResult, error) {
	result := &RollResult{Formula: formula}

	total, err := eval(formula, func(count, sides int) (int, error) {
		sum := 0
		for i := 0; i < count; i++ {
			face, err := m.getNextRoll()
			if err != nil {
				return 0, err
			}
			if face < 1 || face > sides {
				return 0, fmt.Errorf("invalid roll %d for d%d", face, sides)
			}
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
