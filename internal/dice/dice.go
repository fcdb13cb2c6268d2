package dice

import (
	"errors"
	"math/rand"
	"strings"
	"unicode"
)

// RollResult is the outcome of rolling a dice expression
type RollResult struct {
	Total   int    `json:"total"`
	Rolls   []int  `json:"rolls"` // individual die faces, in rolled order
	Formula string `json:"formula,omitempty"`
}

// NaturalDie returns the face value of the first die rolled, or 0 when the
// expression contained no dice. Attack resolution compares it against the
// critical threshold.
func (r *RollResult) NaturalDie() int {
	if len(r.Rolls) == 0 {
		return 0
	}
	return r.Rolls[0]
}

// Roll rolls count dice with the given number of sides and adds a bonus
func Roll(count, sides, bonus int) (*RollResult, error) {
	if count < 1 {
		return nil, errors.New("invalid dice count")
	}
	if sides < 1 {
		return nil, errors.New("invalid dice size")
	}

	result := &RollResult{Total: bonus, Rolls: make([]int, count)}
	for i := 0; i < count; i++ {
		face := rand.Intn(sides) + 1
		result.Rolls[i] = face
		result.Total += face
	}
	return result, nil
}

// ContainsDice reports whether the expression holds dice notation
func ContainsDice(expr string) bool {
	for i, r := range expr {
		if r != 'd' && r != 'D' {
			continue
		}
		// a die term is "d" followed by a digit, optionally preceded by a count
		if i+1 < len(expr) && isDigit(expr[i+1]) {
			if i == 0 || !unicode.IsLetter(rune(expr[i-1])) {
				return true
			}
		}
	}
	return false
}

// Evaluate computes a dice-free arithmetic expression. An expression that
// still carries dice notation is an error; roll those through a Roller.
func Evaluate(expr string) (int, error) {
	return eval(expr, nil)
}

// eval parses and computes an expression. rollFn, when non-nil, resolves
// dice terms and records the faces rolled; nil rejects dice terms.
func eval(expr string, rollFn func(count, sides int) (int, error)) (int, error) {
	p := &parser{input: strings.TrimSpace(expr), rollFn: rollFn}
	if p.input == "" {
		return 0, errors.New("empty expression")
	}

	value, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if p.pos != len(p.input) {
		return 0, errors.New("trailing input in expression")
	}
	return value, nil
}

// parser is a recursive-descent evaluator over the grammar
//
//	expr   := term { ("+" | "-") term }
//	term   := factor { ("*" | "/") factor }
//	factor := integer | [integer] "d" integer | "(" expr ")" | "-" factor
type parser struct {
	input  string
	pos    int
	rollFn func(count, sides int) (int, error)
}

func (p *parser) parseExpr() (int, error) {
	value, err := p.parseTerm()
	if err != nil {
		return 0, err
	}

	for {
		p.skipSpace()
		switch p.peek() {
		case '+':
			p.pos++
			rhs, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			value += rhs
		case '-':
			p.pos++
			rhs, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			value -= rhs
		default:
			return value, nil
		}
	}
}

func (p *parser) parseTerm() (int, error) {
	value, err := p.parseFactor()
	if err != nil {
		return 0, err
	}

	for {
		p.skipSpace()
		switch p.peek() {
		case '*':
			p.pos++
			rhs, err := p.parseFactor()
			if err != nil {
				return 0, err
			}
			value *= rhs
		case '/':
			p.pos++
			rhs, err := p.parseFactor()
			if err != nil {
				return 0, err
			}
			if rhs == 0 {
				return 0, errors.New("division by zero")
			}
			value /= rhs
		default:
			return value, nil
		}
	}
}

func (p *parser) parseFactor() (int, error) {
	p.skipSpace()

	switch {
	case p.peek() == '-':
		p.pos++
		value, err := p.parseFactor()
		if err != nil {
			return 0, err
		}
		return -value, nil

	case p.peek() == '(':
		p.pos++
		value, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		p.skipSpace()
		if p.peek() != ')' {
			return 0, errors.New("unbalanced parenthesis")
		}
		p.pos++
		return value, nil

	case p.peek() == 'd' || p.peek() == 'D':
		// bare die term, implicit count of 1
		return p.parseDie(1)

	case isDigit(p.peek()):
		n := p.parseInt()
		if p.peek() == 'd' || p.peek() == 'D' {
			return p.parseDie(n)
		}
		return n, nil
	}

	return 0, errors.New("unexpected character in expression")
}

func (p *parser) parseDie(count int) (int, error) {
	p.pos++ // consume 'd'
	if !isDigit(p.peek()) {
		return 0, errors.New("die term missing size")
	}
	sides := p.parseInt()

	if p.rollFn == nil {
		return 0, errors.New("dice term in arithmetic-only expression")
	}
	return p.rollFn(count, sides)
}

func (p *parser) parseInt() int {
	start := p.pos
	for isDigit(p.peek()) {
		p.pos++
	}
	n := 0
	for _, r := range p.input[start:p.pos] {
		n = n*10 + int(r-'0')
	}
	return n
}

func (p *parser) peek() byte {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *parser) skipSpace() {
	for p.pos < len(p.input) && p.input[p.pos] == ' ' {
		p.pos++
	}
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
