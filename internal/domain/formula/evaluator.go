package formula

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/chronica-rpg/chronica/internal/config"
	"github.com/chronica-rpg/chronica/internal/dice"
)

// Evaluator substitutes shortcut tokens into formula strings and evaluates
// the result. Substitution degrades gracefully: a malformed or unresolvable
// token is left in place rather than raised, and a string that still fails
// arithmetic evaluation yields 0. Formulas never block gameplay.
type Evaluator struct {
	rules *config.RulesConfig
	data  *config.RulesData
}

// NewEvaluator creates an evaluator bound to the rules constants and tables
func NewEvaluator(rules *config.RulesConfig, data *config.RulesData) *Evaluator {
	if rules == nil {
		rules = config.DefaultRules()
	}
	if data == nil {
		data = config.DefaultRulesData()
	}
	return &Evaluator{rules: rules, data: data}
}

var (
	allRankRe   = regexp.MustCompile(`@(?:allrank|toutrang)\[(\d+)\]`)
	nivModRe    = regexp.MustCompile(`@nivmod\[(\d+)\s*,\s*(-?\d+)\]`)
	rankRe      = regexp.MustCompile(`@rank(\[[^\]]*\])?`)
	evolveDieRe = regexp.MustCompile(`(\d*)[dD](\d+)e\b`)
)

// Evaluate substitutes every token and computes the numeric total. Dice
// terms are not rolled here; a substituted string that still carries dice
// fails arithmetic evaluation and yields 0. Use EvaluateKeepDice and a
// Roller for damage and attack formulas.
func (e *Evaluator) Evaluate(s *Snapshot, formula, sourceItemID string) int {
	formula = strings.TrimSpace(formula)
	if formula == "" {
		return 0
	}

	// dice-free formula with no tokens is a plain number
	if !strings.Contains(formula, "@") && !dice.ContainsDice(formula) {
		if n, err := strconv.Atoi(formula); err == nil {
			return n
		}
	}

	substituted := e.substitute(s, formula, sourceItemID)
	total, err := dice.Evaluate(substituted)
	if err != nil {
		return 0
	}
	return total
}

// EvaluateKeepDice substitutes every token but defers dice terms to the
// roll primitive, returning the substituted formula string.
func (e *Evaluator) EvaluateKeepDice(s *Snapshot, formula, sourceItemID string) string {
	formula = strings.TrimSpace(formula)
	if formula == "" {
		return ""
	}

	return normalizeSigns(e.substitute(s, formula, sourceItemID))
}

// substitute runs the fixed substitution passes. Weapon tokens go first
// because the spliced-in formula may itself carry further tokens.
func (e *Evaluator) substitute(s *Snapshot, formula, sourceItemID string) string {
	formula = e.substituteWeapon(s, formula)
	formula = e.substituteRanks(s, formula, sourceItemID)
	formula = e.substituteValues(s, formula)
	formula = e.substituteEvolvingDice(s, formula)
	return formula
}

func (e *Evaluator) substituteWeapon(s *Snapshot, formula string) string {
	if !strings.Contains(formula, "@arme.") {
		return formula
	}

	damage := s.WeaponDamage
	if damage == "" {
		damage = e.rules.BareHandsDamage
	}
	skill := s.WeaponSkill
	if skill == "" {
		skill = e.rules.BareHandsSkill
	}

	formula = strings.ReplaceAll(formula, "@arme.dmg", damage)
	formula = strings.ReplaceAll(formula, "@arme.skill", skill)
	return formula
}

func (e *Evaluator) substituteRanks(s *Snapshot, formula, sourceItemID string) string {
	if !strings.Contains(formula, "@") {
		return formula
	}

	formula = allRankRe.ReplaceAllStringFunc(formula, func(match string) string {
		if s == nil || s.Ranks == nil {
			return match
		}
		minRank, err := strconv.Atoi(allRankRe.FindStringSubmatch(match)[1])
		if err != nil {
			return match
		}
		return strconv.Itoa(s.Ranks.PathCountAtRank(minRank))
	})

	formula = nivModRe.ReplaceAllStringFunc(formula, func(match string) string {
		parts := nivModRe.FindStringSubmatch(match)
		gate, err1 := strconv.Atoi(parts[1])
		value, err2 := strconv.Atoi(parts[2])
		if err1 != nil || err2 != nil {
			return match
		}
		if s != nil && s.Level >= gate {
			return strconv.Itoa(value)
		}
		return "0"
	})

	formula = rankRe.ReplaceAllStringFunc(formula, func(match string) string {
		if s == nil || s.Ranks == nil {
			return match
		}
		rank, ok := s.Ranks.RankFor(sourceItemID)
		if !ok {
			return match
		}

		list := rankRe.FindStringSubmatch(match)[1]
		if list == "" {
			return strconv.Itoa(rank)
		}

		entries := strings.Split(strings.Trim(list, "[]"), ",")
		values := make([]int, 0, len(entries))
		for _, entry := range entries {
			n, err := strconv.Atoi(strings.TrimSpace(entry))
			if err != nil {
				// malformed list, leave the token visible
				return match
			}
			values = append(values, n)
		}
		if len(values) == 0 {
			return match
		}

		if rank < 1 {
			return "0"
		}
		if rank > len(values) {
			rank = len(values)
		}
		return strconv.Itoa(values[rank-1])
	})

	return formula
}

func (e *Evaluator) substituteValues(s *Snapshot, formula string) string {
	if s == nil || len(s.Values) == 0 || !strings.Contains(formula, "@") {
		return formula
	}

	// longest token first so @init never matches as @int
	tokens := make([]string, 0, len(s.Values))
	for token := range s.Values {
		tokens = append(tokens, token)
	}
	sort.Slice(tokens, func(i, j int) bool {
		if len(tokens[i]) != len(tokens[j]) {
			return len(tokens[i]) > len(tokens[j])
		}
		return tokens[i] < tokens[j]
	})

	for _, token := range tokens {
		formula = strings.ReplaceAll(formula, "@"+token, strconv.Itoa(s.Values[token]))
	}
	return formula
}

func (e *Evaluator) substituteEvolvingDice(s *Snapshot, formula string) string {
	return evolveDieRe.ReplaceAllStringFunc(formula, func(match string) string {
		parts := evolveDieRe.FindStringSubmatch(match)
		level := 0
		if s != nil {
			level = s.Level
		}
		return parts[1] + "d" + strconv.Itoa(e.data.EvolvingDie.SizeFor(level))
	})
}

var signReplacer = strings.NewReplacer(
	"+-", " - ",
	"+ -", " - ",
	"- -", " + ",
	"--", " + ",
)

// normalizeSigns tidies the sign sequences substitution can produce, such
// as "1d8+-2" when a negative modifier is spliced in.
func normalizeSigns(formula string) string {
	return signReplacer.Replace(formula)
}
