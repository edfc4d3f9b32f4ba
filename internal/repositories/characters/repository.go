package characters

//go:generate mockgen -destination=mock/mock_repository.go -package=mockcharacters -source=repository.go

import (
	"context"

	"github.com/questforge/session-engine/internal/domain/character"
)

// Repository defines the interface for character storage
type Repository interface {
	// Create stores a new character
	Create(ctx context.Context, char *character.Character) error

	// Get retrieves a character by ID
	Get(ctx context.Context, id string) (*character.Character, error)

	// GetBySession retrieves all characters in a session
	GetBySession(ctx context.Context, sessionID string) ([]*character.Character, error)

	// Update updates an existing character
	Update(ctx context.Context, char *character.Character) error

	// Delete removes a character
	Delete(ctx context.Context, id string) error
}
