package services

import (
	"go.uber.org/zap"

	"github.com/questforge/session-engine/internal/clients/reference"
	"github.com/questforge/session-engine/internal/dice"
	"github.com/questforge/session-engine/internal/repositories/characters"
	"github.com/questforge/session-engine/internal/repositories/encounters"
	encounterService "github.com/questforge/session-engine/internal/services/encounter"
)

// Provider holds all service instances
type Provider struct {
	EncounterService encounterService.Service
}

// ProviderConfig holds configuration for creating services
type ProviderConfig struct {
	ReferenceClient     reference.Client
	CharacterRepository characters.Repository
	EncounterRepository encounters.Repository
	Roller              dice.Roller
	Logger              *zap.Logger
}

// NewProvider creates a new service provider with all services initialized
func NewProvider(cfg *ProviderConfig) *Provider {
	// Use in-memory repositories if none provided
	charRepo := cfg.CharacterRepository
	if charRepo == nil {
		charRepo = characters.NewInMemoryRepository()
	}

	encounterRepo := cfg.EncounterRepository
	if encounterRepo == nil {
		encounterRepo = encounters.NewInMemoryRepository()
	}

	encService := encounterService.NewService(&encounterService.ServiceConfig{
		EncounterRepo:   encounterRepo,
		CharacterRepo:   charRepo,
		ReferenceClient: cfg.ReferenceClient,
		Roller:          cfg.Roller,
		Logger:          cfg.Logger,
	})

	return &Provider{
		EncounterService: encService,
	}
}
