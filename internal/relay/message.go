package relay

import (
	"encoding/json"

	"github.com/chronica-rpg/chronica/internal/effects"
)

// Intent action names understood by the authority dispatcher
const (
	ActionHeal         = "heal"
	ActionCustomEffect = "customEffect"
	ActionOppositeRoll = "oppositeRoll"
	ActionActivate     = "activate"
)

// Intent is a deferred state change submitted by a non-authoritative
// participant. Delivery is at-least-once and unordered; handlers are
// idempotent by eventual state, not by deduplication.
type Intent struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload"`

	// SenderID is stamped by the relay from the submitting session,
	// never trusted from the wire
	SenderID string `json:"sender_id,omitempty"`
}

// HealPayload adjusts a target's hit points. A negative amount is damage;
// the authority applies damage resistance when subtracting.
type HealPayload struct {
	TargetID string `json:"target_id"`
	Amount   int    `json:"amount"`
}

// CustomEffectPayload attaches a timed effect to a target. Re-delivery
// refreshes the effect's timer instead of stacking a duplicate.
type CustomEffectPayload struct {
	TargetID string               `json:"target_id"`
	Effect   effects.CustomEffect `json:"effect"`
}

// ActivatePayload runs an action activation on the authority host, where
// every resolver outcome is written directly.
type ActivatePayload struct {
	ActorID       string   `json:"actor_id"`
	OwnerID       string   `json:"owner_id"`
	ItemID        string   `json:"item_id"`
	Indice        int      `json:"indice"`
	TargetIDs     []string `json:"target_ids,omitempty"`
	Concentration bool     `json:"concentration,omitempty"`
}

// OppositeRollPayload resolves an opposed roll between two actors and logs
// the outcome on the active encounter.
type OppositeRollPayload struct {
	ActorID       string `json:"actor_id"`
	Formula       string `json:"formula"`
	TargetID      string `json:"target_id"`
	TargetFormula string `json:"target_formula"`
}

// wire message types
const (
	msgIntent = "intent" // client -> authority
	msgYou    = "you"    // authority -> client, session identity
	msgLog    = "log"    // authority -> clients, narration line
	msgError  = "error"  // authority -> client, rejected intent
	msgUpdate = "update" // authority -> clients, applied intent echo
)

// wireMessage is the envelope every websocket frame carries
type wireMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

func wireFrame(msgType string, data any) (*wireMessage, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &wireMessage{Type: msgType, Data: raw}, nil
}
