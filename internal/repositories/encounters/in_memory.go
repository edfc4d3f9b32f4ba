package encounters

import (
	"context"
	"sync"

	"github.com/questforge/session-engine/internal/domain/combat"
	apperr "github.com/questforge/session-engine/internal/errors"
)

type inMemoryRepository struct {
	mu         sync.RWMutex
	encounters map[string]*combat.Encounter
	bySession  map[string][]string
}

// NewInMemoryRepository creates a new in-memory encounter repository
func NewInMemoryRepository() Repository {
	return &inMemoryRepository{
		encounters: make(map[string]*combat.Encounter),
		bySession:  make(map[string][]string),
	}
}

// Create stores a new encounter
func (r *inMemoryRepository) Create(ctx context.Context, encounter *combat.Encounter) error {
	if encounter == nil {
		return apperr.InvalidArgument("encounter cannot be nil")
	}
	if encounter.ID == "" {
		return apperr.InvalidArgument("encounter ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.encounters[encounter.ID]; exists {
		return apperr.AlreadyExistsf("encounter with ID %s already exists", encounter.ID)
	}

	r.encounters[encounter.ID] = encounter
	r.bySession[encounter.SessionID] = append(r.bySession[encounter.SessionID], encounter.ID)

	return nil
}

// Get retrieves an encounter by ID
func (r *inMemoryRepository) Get(ctx context.Context, id string) (*combat.Encounter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	encounter, exists := r.encounters[id]
	if !exists {
		return nil, apperr.NotFoundf("encounter not found: %s", id)
	}

	return encounter, nil
}

// Update modifies an existing encounter
func (r *inMemoryRepository) Update(ctx context.Context, encounter *combat.Encounter) error {
	if encounter == nil {
		return apperr.InvalidArgument("encounter cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.encounters[encounter.ID]; !exists {
		return apperr.NotFoundf("encounter not found: %s", encounter.ID)
	}

	r.encounters[encounter.ID] = encounter
	return nil
}

// Delete removes an encounter
func (r *inMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	encounter, exists := r.encounters[id]
	if !exists {
		return apperr.NotFoundf("encounter not found: %s", id)
	}

	delete(r.encounters, id)

	ids := r.bySession[encounter.SessionID]
	for i, eid := range ids {
		if eid == id {
			r.bySession[encounter.SessionID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}

	return nil
}

// GetBySession retrieves all encounters for a session
func (r *inMemoryRepository) GetBySession(ctx context.Context, sessionID string) ([]*combat.Encounter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.bySession[sessionID]
	encounters := make([]*combat.Encounter, 0, len(ids))
	for _, id := range ids {
		if encounter, exists := r.encounters[id]; exists {
			encounters = append(encounters, encounter)
		}
	}

	return encounters, nil
}

// GetActiveBySession retrieves the active encounter for a session
func (r *inMemoryRepository) GetActiveBySession(ctx context.Context, sessionID string) (*combat.Encounter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.bySession[sessionID] {
		if encounter, exists := r.encounters[id]; exists {
			if encounter.Status == combat.EncounterStatusActive {
				return encounter, nil
			}
		}
	}

	return nil, nil
}
