package actors

//go:generate mockgen -destination=mock/mock.go -package=mockactors -source=interface.go

import (
	"context"

	"github.com/chronica-rpg/chronica/internal/domain/actor"
)

// Repository defines the interface for actor persistence
type Repository interface {
	// Create stores a new actor
	Create(ctx context.Context, a *actor.Actor) error

	// Get retrieves an actor by ID
	Get(ctx context.Context, id string) (*actor.Actor, error)

	// GetByOwner retrieves all actors belonging to a participant
	GetByOwner(ctx context.Context, ownerID string) ([]*actor.Actor, error)

	// Update overwrites an existing actor
	Update(ctx context.Context, a *actor.Actor) error

	// Delete removes an actor
	Delete(ctx context.Context, id string) error
}
