package combat

import (
	"fmt"
	"sort"
	"time"

	"github.com/chronica-rpg/chronica/internal/domain/shared"
)

// Status represents the current state of an encounter
type Status string

const (
	StatusSetup     Status = "setup"     // adding combatants
	StatusRolling   Status = "rolling"   // rolling initiative
	StatusActive    Status = "active"    // combat in progress
	StatusCompleted Status = "completed" // encounter finished
)

// Side says which team a combatant fights for
type Side string

const (
	SideParty      Side = "party"
	SideOpposition Side = "opposition"
)

// combatLogLimit bounds the history kept on the encounter document
const combatLogLimit = 20

// Combatant is a participant in an encounter. The actor sheet stays the
// source of truth; the HP and defense fields here are display copies synced
// after every committed mutation.
type Combatant struct {
	ActorID    string `json:"actor_id"`
	OwnerID    string `json:"owner_id"`
	Name       string `json:"name"`
	Side       Side   `json:"side"`
	Initiative int    `json:"initiative"`

	CurrentHP int `json:"current_hp"`
	MaxHP     int `json:"max_hp"`
	Defense   int `json:"defense"`

	Statuses []shared.Status `json:"statuses,omitempty"`

	IsActive bool `json:"is_active"` // still in the fight
	HasActed bool `json:"has_acted"` // has taken a turn this round
}

// IsAlive returns true while the combatant has hit points left
func (c *Combatant) IsAlive() bool {
	return c.CurrentHP > 0
}

// Encounter is a combat in progress: initiative order, round and turn
// counters, and a bounded action log.
type Encounter struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	GMID   string `json:"gm_id"` // the authority participant
	Status Status `json:"status"`

	Round int `json:"round"` // current round number, 1-based once active
	Turn  int `json:"turn"`  // index into TurnOrder

	Combatants map[string]*Combatant `json:"combatants"` // actor ID -> combatant
	TurnOrder  []string              `json:"turn_order"` // actor IDs, initiative order

	CreatedAt time.Time  `json:"created_at"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`

	CombatLog []string `json:"combat_log,omitempty"`
}

// Transition reports what a turn advancement did, so the round driver knows
// which effect hooks to fire.
type Transition struct {
	EndedTurnActorID   string
	StartedTurnActorID string
	NewRound           bool
	CombatEnded        bool
	PartyWon           bool
}

// NewEncounter creates an encounter in setup state
func NewEncounter(id, name, gmID string) *Encounter {
	return &Encounter{
		ID:         id,
		Name:       name,
		GMID:       gmID,
		Status:     StatusSetup,
		Combatants: make(map[string]*Combatant),
		TurnOrder:  []string{},
		CreatedAt:  time.Now(),
		CombatLog:  []string{},
	}
}

// AddCombatant adds a combatant during setup or mid-combat reinforcement
func (e *Encounter) AddCombatant(c *Combatant) {
	c.IsActive = true
	e.Combatants[c.ActorID] = c
	if e.Status == StatusActive {
		// reinforcements join at the end of the current order
		e.TurnOrder = append(e.TurnOrder, c.ActorID)
	}
}

// RemoveCombatant drops a combatant and its turn order slot
func (e *Encounter) RemoveCombatant(actorID string) {
	delete(e.Combatants, actorID)
	order := e.TurnOrder[:0]
	for _, id := range e.TurnOrder {
		if id != actorID {
			order = append(order, id)
		}
	}
	e.TurnOrder = order
	if e.Turn >= len(e.TurnOrder) && len(e.TurnOrder) > 0 {
		e.Turn = 0
	}
}

// SetInitiative records a combatant's initiative roll
func (e *Encounter) SetInitiative(actorID string, initiative int) {
	if c, ok := e.Combatants[actorID]; ok {
		c.Initiative = initiative
	}
}

// SortTurnOrder builds the turn order from rolled initiatives, highest
// first, with names breaking ties so the order is stable across loads.
func (e *Encounter) SortTurnOrder() {
	order := make([]string, 0, len(e.Combatants))
	for id := range e.Combatants {
		order = append(order, id)
	}
	sort.Slice(order, func(i, j int) bool {
		a, b := e.Combatants[order[i]], e.Combatants[order[j]]
		if a.Initiative != b.Initiative {
			return a.Initiative > b.Initiative
		}
		return a.Name < b.Name
	})
	e.TurnOrder = order
	e.Status = StatusRolling
}

// Start begins combat after initiative is rolled. The returned transition
// carries the first combatant's turn start.
func (e *Encounter) Start() (*Transition, bool) {
	if e.Status != StatusRolling || len(e.TurnOrder) == 0 {
		return nil, false
	}

	now := time.Now()
	e.Status = StatusActive
	e.StartedAt = &now
	e.Round = 1
	e.Turn = 0

	e.skipDefeated()
	if ended, partyWon := e.CheckCombatEnd(); ended {
		e.End()
		return &Transition{CombatEnded: true, PartyWon: partyWon}, false
	}

	return &Transition{StartedTurnActorID: e.TurnOrder[e.Turn]}, true
}

// NextTurn advances to the next living combatant, rolling over to a new
// round when the order is exhausted.
func (e *Encounter) NextTurn() *Transition {
	if e.Status != StatusActive {
		return nil
	}

	tr := &Transition{}
	if e.Turn < len(e.TurnOrder) {
		if c, ok := e.Combatants[e.TurnOrder[e.Turn]]; ok {
			c.HasActed = true
			tr.EndedTurnActorID = c.ActorID
		}
	}

	e.Turn++
	if ended, partyWon := e.CheckCombatEnd(); ended {
		e.End()
		tr.CombatEnded = true
		tr.PartyWon = partyWon
		return tr
	}

	e.skipDefeated()
	if e.Turn >= len(e.TurnOrder) {
		e.Round++
		e.Turn = 0
		tr.NewRound = true
		for _, c := range e.Combatants {
			c.HasActed = false
		}
		e.skipDefeated()
	}

	if e.Turn < len(e.TurnOrder) {
		tr.StartedTurnActorID = e.TurnOrder[e.Turn]
	}
	return tr
}

func (e *Encounter) skipDefeated() {
	for e.Turn < len(e.TurnOrder) {
		if c, ok := e.Combatants[e.TurnOrder[e.Turn]]; ok && c.IsActive && c.IsAlive() {
			return
		}
		e.Turn++
	}
}

// CurrentCombatant returns the combatant whose turn it is, or nil
func (e *Encounter) CurrentCombatant() *Combatant {
	if e.Status == StatusActive && e.Turn < len(e.TurnOrder) {
		return e.Combatants[e.TurnOrder[e.Turn]]
	}
	return nil
}

// IsTurnOf checks whether it is the given participant's turn
func (e *Encounter) IsTurnOf(ownerID string) bool {
	current := e.CurrentCombatant()
	return current != nil && current.OwnerID == ownerID
}

// CanAct checks whether a participant may act: the GM always can, players
// only on their own turn.
func (e *Encounter) CanAct(ownerID string) bool {
	if ownerID == e.GMID {
		return true
	}
	return e.IsTurnOf(ownerID)
}

// CheckCombatEnd reports whether one side has no one left standing
func (e *Encounter) CheckCombatEnd() (ended, partyWon bool) {
	party, opposition := 0, 0
	for _, c := range e.Combatants {
		if !c.IsActive || !c.IsAlive() {
			continue
		}
		switch c.Side {
		case SideParty:
			party++
		case SideOpposition:
			opposition++
		}
	}

	if opposition == 0 && party > 0 {
		return true, true
	}
	if party == 0 && opposition > 0 {
		return true, false
	}
	return false, false
}

// CheckAndEnd concludes the encounter when one side is wiped out, reporting
// whether it did. Used after out-of-turn damage such as periodic effects.
func (e *Encounter) CheckAndEnd() bool {
	if e.Status != StatusActive {
		return false
	}
	if ended, _ := e.CheckCombatEnd(); ended {
		e.End()
		return true
	}
	return false
}

// End concludes the encounter
func (e *Encounter) End() {
	now := time.Now()
	e.Status = StatusCompleted
	e.EndedAt = &now
}

// AddLogEntry appends a round-stamped entry, keeping the log bounded
func (e *Encounter) AddLogEntry(entry string) {
	e.CombatLog = append(e.CombatLog, fmt.Sprintf("Round %d: %s", e.Round, entry))
	if len(e.CombatLog) > combatLogLimit {
		e.CombatLog = e.CombatLog[len(e.CombatLog)-combatLogLimit:]
	}
}
