package encounters

//go:generate mockgen -destination=mock/mock_repository.go -package=mockencounters -source=repository.go

import (
	"context"

	"github.com/questforge/session-engine/internal/domain/combat"
)

// Repository defines the interface for encounter storage
type Repository interface {
	// Create stores a new encounter
	Create(ctx context.Context, encounter *combat.Encounter) error

	// Get retrieves an encounter by ID
	Get(ctx context.Context, id string) (*combat.Encounter, error)

	// Update modifies an existing encounter
	Update(ctx context.Context, encounter *combat.Encounter) error

	// Delete removes an encounter
	Delete(ctx context.Context, id string) error

	// GetBySession retrieves all encounters for a session
	GetBySession(ctx context.Context, sessionID string) ([]*combat.Encounter, error)

	// GetActiveBySession retrieves the active encounter for a session,
	// nil when the session has none
	GetActiveBySession(ctx context.Context, sessionID string) (*combat.Encounter, error)
}
