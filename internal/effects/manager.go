package effects

import (
	"github.com/chronica-rpg/chronica/internal/domain/modifier"
	"github.com/chronica-rpg/chronica/internal/domain/shared"
)

// Manager holds the live effects of one actor. Execution is single
// threaded per participant, so the manager carries no lock; the owning
// actor serializes access.
type Manager struct {
	Effects []*CustomEffect `json:"effects"`
}

// NewManager creates an empty effect manager
func NewManager() *Manager {
	return &Manager{}
}

// Apply adds an effect, or refreshes the timer of an existing effect with
// the same slug instead of duplicating it. Returns the live record.
func (m *Manager) Apply(effect *CustomEffect) *CustomEffect {
	if effect.Slug == "" {
		effect.Slug = Slugify(effect.Name)
	}

	if existing := m.BySlug(effect.Slug); existing != nil {
		existing.StartedAt = effect.StartedAt
		existing.RemainingTurn = effect.Duration
		existing.Duration = effect.Duration
		return existing
	}

	effect.RemainingTurn = effect.Duration
	m.Effects = append(m.Effects, effect)
	return effect
}

// BySlug returns the live effect with the given slug, or nil
func (m *Manager) BySlug(slug string) *CustomEffect {
	for _, effect := range m.Effects {
		if effect.Slug == slug {
			return effect
		}
	}
	return nil
}

// Remove deletes the effect with the given slug, returning it for status
// cleanup, or nil when absent.
func (m *Manager) Remove(slug string) *CustomEffect {
	for i, effect := range m.Effects {
		if effect.Slug == slug {
			m.Effects = append(m.Effects[:i], m.Effects[i+1:]...)
			return effect
		}
	}
	return nil
}

// TickTurnStart decrements every live round-based effect at the owning
// combatant's turn start and returns the effects whose periodic formula
// must be rolled this round.
func (m *Manager) TickTurnStart() []*CustomEffect {
	var periodic []*CustomEffect
	for _, effect := range m.Effects {
		if effect.Unit == shared.UnitRound {
			effect.RemainingTurn--
		}
		if effect.Formula != "" {
			periodic = append(periodic, effect)
		}
	}
	return periodic
}

// ExpireTurnEnd removes every effect whose timer has run out, returning
// the expired records so their statuses can be lifted.
func (m *Manager) ExpireTurnEnd() []*CustomEffect {
	var expired []*CustomEffect
	live := m.Effects[:0]
	for _, effect := range m.Effects {
		if effect.Expired() {
			expired = append(expired, effect)
			continue
		}
		live = append(live, effect)
	}
	m.Effects = live
	return expired
}

// PurgeAll removes every effect, returning the removed records. Called
// when the combat ends or the actor leaves it.
func (m *Manager) PurgeAll() []*CustomEffect {
	purged := m.Effects
	m.Effects = nil
	return purged
}

// ActiveModifiers collects the modifiers carried by live effects, filtered
// by apply scope: a self-scoped modifier only counts when the owning actor
// is the effect's caster, an others-scoped one only when it is not. This
// keeps an inflicted effect from also modifying the caster.
func (m *Manager) ActiveModifiers(ownerID string) []modifier.Modifier {
	var mods []modifier.Modifier
	for _, effect := range m.Effects {
		selfView := effect.CasterID == ownerID
		for _, mod := range effect.Modifiers {
			if selfView && !mod.Scope.AppliesToSelf() {
				continue
			}
			if !selfView && !mod.Scope.AppliesToOthers() {
				continue
			}
			mods = append(mods, mod)
		}
	}
	return mods
}

// Statuses returns the union of statuses applied by live effects
func (m *Manager) Statuses() []shared.Status {
	seen := make(map[shared.Status]bool)
	var statuses []shared.Status
	for _, effect := range m.Effects {
		for _, status := range effect.Statuses {
			if !seen[status] {
				seen[status] = true
				statuses = append(statuses, status)
			}
		}
	}
	return statuses
}
