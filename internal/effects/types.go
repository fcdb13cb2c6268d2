package effects

import (
	"strings"

	"github.com/chronica-rpg/chronica/internal/domain/modifier"
	"github.com/chronica-rpg/chronica/internal/domain/shared"
)

// FormulaKind says what a periodic formula does each round
type FormulaKind string

const (
	FormulaNone   FormulaKind = ""
	FormulaDamage FormulaKind = "damage"
	FormulaHeal   FormulaKind = "heal"
)

// Kind classifies an effect by which fields are populated
type Kind string

const (
	KindStatus   Kind = "status"   // applies statuses only
	KindPeriodic Kind = "periodic" // rolls a damage or heal formula each round
	KindBuff     Kind = "buff"     // carries modifiers with a positive total intent
	KindDebuff   Kind = "debuff"
)

// CustomEffect is a timed status/buff/periodic-formula bundle active on an
// actor during combat.
type CustomEffect struct {
	ID       string `json:"id"`
	Slug     string `json:"slug"`
	Name     string `json:"name"`
	SourceID string `json:"source_id"` // item that spawned it
	CasterID string `json:"caster_id"` // actor the effect originated from

	Statuses []shared.Status     `json:"statuses,omitempty"`
	Unit     shared.DurationUnit `json:"unit"`
	Duration int                 `json:"duration"` // rounds, already evaluated

	StartedAt     int `json:"started_at"` // combat round of application
	RemainingTurn int `json:"remaining_turn"`

	Modifiers   []modifier.Modifier `json:"modifiers,omitempty"`
	FormulaKind FormulaKind         `json:"formula_kind,omitempty"`
	Formula     string              `json:"formula,omitempty"`
	ElementType string              `json:"element_type,omitempty"`

	// Debuff distinguishes hostile modifier bundles for display
	Debuff bool `json:"debuff,omitempty"`
}

// Classify reports the effect's behavioral kind
func (e *CustomEffect) Classify() Kind {
	switch {
	case e.Formula != "":
		return KindPeriodic
	case len(e.Modifiers) > 0 && e.Debuff:
		return KindDebuff
	case len(e.Modifiers) > 0:
		return KindBuff
	default:
		return KindStatus
	}
}

// Expired reports whether the effect's timer has run out. Combat-scoped
// effects only expire with the encounter.
func (e *CustomEffect) Expired() bool {
	if e.Unit == shared.UnitCombat {
		return false
	}
	return e.RemainingTurn <= 0
}

// Slugify derives a stable slug from an effect name
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ' || r == '-' || r == '_':
			return '-'
		}
		return -1
	}, slug)
	return strings.Trim(slug, "-")
}
