package shared

// Status is a named condition displayed on an actor's token
type Status string

const (
	StatusWeakened    Status = "weakened"
	StatusUnconscious Status = "unconscious"
	StatusStunned     Status = "stunned"
	StatusBlinded     Status = "blinded"
	StatusPoisoned    Status = "poisoned"
	StatusSlowed      Status = "slowed"
	StatusImmobilized Status = "immobilized"
	StatusInvisible   Status = "invisible"
	StatusDead        Status = "dead"
)
