package characters

import (
	"context"
	"sync"

	"github.com/questforge/session-engine/internal/domain/character"
	apperr "github.com/questforge/session-engine/internal/errors"
)

type inMemoryRepository struct {
	mu         sync.RWMutex
	characters map[string]*character.Character
	bySession  map[string][]string
}

// NewInMemoryRepository creates a new in-memory character repository
func NewInMemoryRepository() Repository {
	return &inMemoryRepository{
		characters: make(map[string]*character.Character),
		bySession:  make(map[string][]string),
	}
}

// Create stores a new character
func (r *inMemoryRepository) Create(ctx context.Context, char *character.Character) error {
	if char == nil {
		return apperr.InvalidArgument("character cannot be nil")
	}
	if char.ID == "" {
		return apperr.InvalidArgument("character ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.characters[char.ID]; exists {
		return apperr.AlreadyExistsf("character with ID %s already exists", char.ID)
	}

	r.characters[char.ID] = char
	if char.SessionID != "" {
		r.bySession[char.SessionID] = append(r.bySession[char.SessionID], char.ID)
	}

	return nil
}

// Get retrieves a character by ID
func (r *inMemoryRepository) Get(ctx context.Context, id string) (*character.Character, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	char, exists := r.characters[id]
	if !exists {
		return nil, apperr.NotFoundf("character not found: %s", id)
	}

	return char, nil
}

// GetBySession retrieves all characters in a session
func (r *inMemoryRepository) GetBySession(ctx context.Context, sessionID string) ([]*character.Character, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.bySession[sessionID]
	chars := make([]*character.Character, 0, len(ids))
	for _, id := range ids {
		if char, exists := r.characters[id]; exists {
			chars = append(chars, char)
		}
	}

	return chars, nil
}

// Update modifies an existing character
func (r *inMemoryRepository) Update(ctx context.Context, char *character.Character) error {
	if char == nil {
		return apperr.InvalidArgument("character cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.characters[char.ID]; !exists {
		return apperr.NotFoundf("character not found: %s", char.ID)
	}

	r.characters[char.ID] = char
	return nil
}

// Delete removes a character
func (r *inMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	char, exists := r.characters[id]
	if !exists {
		return apperr.NotFoundf("character not found: %s", id)
	}

	delete(r.characters, id)

	ids := r.bySession[char.SessionID]
	for i, cid := range ids {
		if cid == id {
			r.bySession[char.SessionID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}

	return nil
}
