package reference

//go:generate mockgen -destination=mock/mock_client.go -package=mockreference -source=interface.go

import (
	"context"

	"github.com/questforge/session-engine/internal/domain/combat"
)

// Client looks up reference stat blocks for NPC seeding. An unknown slug
// is not an error; it returns nil so the caller can fall back to the
// narration layer's own numbers.
type Client interface {
	GetStatBlock(ctx context.Context, slug string) (*combat.StatBlock, error)
}
