// Package item holds the data model for everything an actor can own:
// equipment, learnable capacities and their paths, features and profiles,
// and the actions they grant.
package item

// Type identifies the concrete item kind behind a reference
type Type string

const (
	TypeEquipment Type = "equipment"
	TypeCapacity  Type = "capacity"
	TypePath      Type = "path"
	TypeFeature   Type = "feature"
	TypeProfile   Type = "profile"
)

// Ref is a typed reference to an owned item. References can go stale when
// another participant deletes the item; consumers treat a missing item as
// a silent no-op.
type Ref struct {
	ID   string `json:"id"`
	Type Type   `json:"type"`
}

// ChargePool tracks limited uses of an item or capacity
type ChargePool struct {
	Current int `json:"current"`
	Max     int `json:"max"`
}

// Spend consumes one charge, reporting whether one was available
func (p *ChargePool) Spend() bool {
	if p.Current <= 0 {
		return false
	}
	p.Current--
	return true
}

// Refill restores the pool to its maximum
func (p *ChargePool) Refill() {
	p.Current = p.Max
}
