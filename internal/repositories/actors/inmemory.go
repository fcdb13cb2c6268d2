package actors

import (
	"context"
	"sync"

	"github.com/chronica-rpg/chronica/internal/domain/actor"
	apperrors "github.com/chronica-rpg/chronica/internal/errors"
)

// InMemoryRepository is an in-memory implementation of the actor repository,
// used in tests and the demo server
type InMemoryRepository struct {
	mu     sync.RWMutex
	actors map[string]*actor.Actor
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		actors: make(map[string]*actor.Actor),
	}
}

// Create stores a new actor
func (r *InMemoryRepository) Create(ctx context.Context, a *actor.Actor) error {
	if a == nil {
		return apperrors.InvalidArgument("actor cannot be nil")
	}
	if a.ID == "" {
		return apperrors.InvalidArgument("actor ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.actors[a.ID]; exists {
		return apperrors.AlreadyExistsf("actor with ID '%s' already exists", a.ID).
			WithMeta("actor_id", a.ID)
	}

	// store a copy so callers cannot mutate the stored document
	r.actors[a.ID] = a.Clone(a.ID)
	return nil
}

// Get retrieves an actor by ID
func (r *InMemoryRepository) Get(ctx context.Context, id string) (*actor.Actor, error) {
	if id == "" {
		return nil, apperrors.InvalidArgument("actor ID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	a, exists := r.actors[id]
	if !exists {
		return nil, apperrors.NotFoundf("actor with ID '%s' not found", id).
			WithMeta("actor_id", id)
	}
	return a.Clone(a.ID), nil
}

// GetByOwner retrieves all actors belonging to a participant
func (r *InMemoryRepository) GetByOwner(ctx context.Context, ownerID string) ([]*actor.Actor, error) {
	if ownerID == "" {
		return nil, apperrors.InvalidArgument("owner ID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*actor.Actor
	for _, a := range r.actors {
		if a.OwnerID == ownerID {
			result = append(result, a.Clone(a.ID))
		}
	}
	return result, nil
}

// Update overwrites an existing actor
func (r *InMemoryRepository) Update(ctx context.Context, a *actor.Actor) error {
	if a == nil {
		return apperrors.InvalidArgument("actor cannot be nil")
	}
	if a.ID == "" {
		return apperrors.InvalidArgument("actor ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.actors[a.ID]; !exists {
		return apperrors.NotFoundf("actor with ID '%s' not found", a.ID).
			WithMeta("actor_id", a.ID)
	}
	r.actors[a.ID] = a.Clone(a.ID)
	return nil
}

// Delete removes an actor
func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidArgument("actor ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.actors[id]; !exists {
		return apperrors.NotFoundf("actor with ID '%s' not found", id).
			WithMeta("actor_id", id)
	}
	delete(r.actors, id)
	return nil
}
