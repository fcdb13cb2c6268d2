package item

import (
	"github.com/chronica-rpg/chronica/internal/domain/modifier"
	"github.com/chronica-rpg/chronica/internal/domain/shared"
)

// Profile is the class-like archetype of an actor: its family, its paths
// and its casting attribute. An actor holds at most one profile.
type Profile struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Family string `json:"family"` // keys the family rules table

	// MagicAttribute is the ability the profile casts with
	MagicAttribute shared.Attribute `json:"magic_attribute,omitempty"`

	PathIDs   []string            `json:"path_ids,omitempty"`
	Modifiers []modifier.Modifier `json:"modifiers,omitempty"`
}

// Ref returns a typed reference to this profile
func (p *Profile) Ref() Ref {
	return Ref{ID: p.ID, Type: TypeProfile}
}

// Feature is a passive trait (ancestry, background) carrying always-on
// modifiers. Features grant no actions of their own.
type Feature struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Modifiers []modifier.Modifier `json:"modifiers,omitempty"`
}

// Ref returns a typed reference to this feature
func (f *Feature) Ref() Ref {
	return Ref{ID: f.ID, Type: TypeFeature}
}
