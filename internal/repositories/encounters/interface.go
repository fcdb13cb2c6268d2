package encounters

//go:generate mockgen -destination=mock/mock.go -package=mockencounters -source=interface.go

import (
	"context"

	"github.com/chronica-rpg/chronica/internal/domain/combat"
)

// Repository defines the interface for encounter persistence
type Repository interface {
	// Create stores a new encounter
	Create(ctx context.Context, enc *combat.Encounter) error

	// Get retrieves an encounter by ID
	Get(ctx context.Context, id string) (*combat.Encounter, error)

	// GetActive retrieves the single active encounter, if any
	GetActive(ctx context.Context) (*combat.Encounter, error)

	// Update overwrites an existing encounter
	Update(ctx context.Context, enc *combat.Encounter) error

	// Delete removes an encounter
	Delete(ctx context.Context, id string) error
}
