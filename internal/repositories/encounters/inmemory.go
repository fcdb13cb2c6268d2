package encounters

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/chronica-rpg/chronica/internal/domain/combat"
	apperrors "github.com/chronica-rpg/chronica/internal/errors"
)

// InMemoryRepository is an in-memory implementation of the encounter
// repository, used in tests and the demo server
type InMemoryRepository struct {
	mu         sync.RWMutex
	encounters map[string]*combat.Encounter
	activeID   string
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		encounters: make(map[string]*combat.Encounter),
	}
}

// copyEncounter deep-copies through JSON; encounter documents are small
func copyEncounter(enc *combat.Encounter) *combat.Encounter {
	data, err := json.Marshal(enc)
	if err != nil {
		return enc
	}
	var out combat.Encounter
	if err := json.Unmarshal(data, &out); err != nil {
		return enc
	}
	return &out
}

// Create stores a new encounter
func (r *InMemoryRepository) Create(ctx context.Context, enc *combat.Encounter) error {
	if enc == nil {
		return apperrors.InvalidArgument("encounter cannot be nil")
	}
	if enc.ID == "" {
		return apperrors.InvalidArgument("encounter ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.encounters[enc.ID]; exists {
		return apperrors.AlreadyExistsf("encounter with ID '%s' already exists", enc.ID)
	}
	r.encounters[enc.ID] = copyEncounter(enc)
	r.trackActive(enc)
	return nil
}

// Get retrieves an encounter by ID
func (r *InMemoryRepository) Get(ctx context.Context, id string) (*combat.Encounter, error) {
	if id == "" {
		return nil, apperrors.InvalidArgument("encounter ID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	enc, exists := r.encounters[id]
	if !exists {
		return nil, apperrors.NotFoundf("encounter with ID '%s' not found", id)
	}
	return copyEncounter(enc), nil
}

// GetActive retrieves the encounter currently being fought
func (r *InMemoryRepository) GetActive(ctx context.Context) (*combat.Encounter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.activeID == "" {
		return nil, apperrors.NotFound("no active encounter")
	}
	enc, exists := r.encounters[r.activeID]
	if !exists {
		return nil, apperrors.NotFound("no active encounter")
	}
	return copyEncounter(enc), nil
}

// Update overwrites an existing encounter
func (r *InMemoryRepository) Update(ctx context.Context, enc *combat.Encounter) error {
	if enc == nil {
		return apperrors.InvalidArgument("encounter cannot be nil")
	}
	if enc.ID == "" {
		return apperrors.InvalidArgument("encounter ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.encounters[enc.ID]; !exists {
		return apperrors.NotFoundf("encounter with ID '%s' not found", enc.ID)
	}
	r.encounters[enc.ID] = copyEncounter(enc)
	r.trackActive(enc)
	return nil
}

// Delete removes an encounter
func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidArgument("encounter ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.encounters[id]; !exists {
		return apperrors.NotFoundf("encounter with ID '%s' not found", id)
	}
	delete(r.encounters, id)
	if r.activeID == id {
		r.activeID = ""
	}
	return nil
}

func (r *InMemoryRepository) trackActive(enc *combat.Encounter) {
	if enc.Status == combat.StatusCompleted {
		if r.activeID == enc.ID {
			r.activeID = ""
		}
		return
	}
	r.activeID = enc.ID
}
