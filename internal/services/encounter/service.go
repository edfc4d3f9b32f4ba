// Package encounter owns the combat state machine: introducing NPCs,
// resolving player turns, pre-rolling enemy attacks, and applying the
// narration layer's state deltas with reconciliation.
package encounter

//go:generate mockgen -destination=mock/mock_service.go -package=mockencounter -source=service.go

import (
	"context"

	"go.uber.org/zap"

	"github.com/questforge/session-engine/internal/clients/reference"
	"github.com/questforge/session-engine/internal/dice"
	"github.com/questforge/session-engine/internal/domain/character"
	"github.com/questforge/session-engine/internal/domain/combat"
	"github.com/questforge/session-engine/internal/domain/shared"
	apperr "github.com/questforge/session-engine/internal/errors"
	"github.com/questforge/session-engine/internal/repositories/characters"
	"github.com/questforge/session-engine/internal/repositories/encounters"
	"github.com/questforge/session-engine/internal/rules/preroll"
	"github.com/questforge/session-engine/internal/rules/resolver"
	"github.com/questforge/session-engine/internal/uuid"
)

// Service defines the encounter service interface
type Service interface {
	// GetEncounter retrieves an encounter by ID
	GetEncounter(ctx context.Context, encounterID string) (*combat.Encounter, error)

	// GetActiveEncounter retrieves the active encounter for a session,
	// nil when the session has none
	GetActiveEncounter(ctx context.Context, sessionID string) (*combat.Encounter, error)

	// IntroduceNPC adds an NPC to the session's scene, starting an
	// encounter if a hostile NPC arrives with no combat underway
	IntroduceNPC(ctx context.Context, sessionID string, intent *combat.CreateNPCIntent) (*IntroduceNPCResult, error)

	// UpdateNPC applies one NPC mutation intent
	UpdateNPC(ctx context.Context, encounterID string, intent *combat.UpdateNPCIntent) (*UpdateNPCResult, error)

	// AdvanceTurn moves the turn cursor forward
	AdvanceTurn(ctx context.Context, encounterID string) (*combat.Encounter, error)

	// ResolveTurn resolves one player action and pre-rolls the surviving
	// enemies' responses
	ResolveTurn(ctx context.Context, input *ResolveTurnInput) (*ResolveTurnResult, error)

	// ApplyDelta reconciles a pre-roll against the narration layer's
	// state delta and applies everything atomically
	ApplyDelta(ctx context.Context, input *ApplyDeltaInput) (*ApplyDeltaResult, error)
}

// IntroduceNPCResult reports the scene after an NPC arrives
type IntroduceNPCResult struct {
	Encounter *combat.Encounter
	NPC       *combat.NPC

	// CombatStarted is true when this arrival activated the encounter
	CombatStarted bool
}

// UpdateNPCResult reports the outcome of one NPC mutation. A missing NPC
// is not an error; Found is false and nothing else is meaningful. Death
// is terminal, so a second kill of the same NPC lands here.
type UpdateNPCResult struct {
	Found       bool
	NewHP       int
	Died        bool
	XPAwarded   int
	CombatEnded bool
}

// ResolveTurnInput identifies the acting character and their classified
// intent for one player turn
type ResolveTurnInput struct {
	EncounterID string
	CharacterID string
	Intent      *combat.ActionIntent
}

// ResolveTurnResult carries the player's itemized roll, any kills it
// caused, and the enemies' pre-rolled response
type ResolveTurnResult struct {
	Action       *combat.RollResult
	KilledNPCIDs []string
	XPAwarded    int
	CombatEnded  bool

	// PreRoll is nil once combat has ended
	PreRoll   *preroll.Result
	Encounter *combat.Encounter
}

// ApplyDeltaInput is the narration layer's state delta for one turn plus
// the pre-roll it was narrated against
type ApplyDeltaInput struct {
	EncounterID string
	CharacterID string
	Delta       *combat.StateDelta
	PreRoll     *preroll.Result
}

// ApplyDeltaResult reports the applied changes. ReconciledPreRoll has the
// damage of NPCs killed by the delta subtracted out.
type ApplyDeltaResult struct {
	Encounter         *combat.Encounter
	ReconciledPreRoll *preroll.Result
	PlayerHP          int
	XPAwarded         int
	CombatEnded       bool
}

type service struct {
	encounterRepo encounters.Repository
	characterRepo characters.Repository
	refClient     reference.Client
	resolver      *resolver.Resolver
	prerollEngine *preroll.Engine
	uuidGenerator uuid.Generator
	logger        *zap.Logger
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	EncounterRepo encounters.Repository
	CharacterRepo characters.Repository

	// ReferenceClient is optional; without it NPC stat seeding by slug
	// is skipped and explicit fields are used as-is
	ReferenceClient reference.Client

	Roller        dice.Roller
	UUIDGenerator uuid.Generator
	Logger        *zap.Logger
}

// NewService creates a new encounter service
func NewService(cfg *ServiceConfig) Service {
	if cfg.EncounterRepo == nil {
		panic("encounter repository is required")
	}
	if cfg.CharacterRepo == nil {
		panic("character repository is required")
	}

	svc := &service{
		encounterRepo: cfg.EncounterRepo,
		characterRepo: cfg.CharacterRepo,
		refClient:     cfg.ReferenceClient,
		resolver:      resolver.New(&resolver.Config{Roller: cfg.Roller}),
		prerollEngine: preroll.New(&preroll.Config{Roller: cfg.Roller}),
	}

	if cfg.UUIDGenerator != nil {
		svc.uuidGenerator = cfg.UUIDGenerator
	} else {
		svc.uuidGenerator = uuid.NewGenerator()
	}

	if cfg.Logger != nil {
		svc.logger = cfg.Logger
	} else {
		svc.logger = zap.NewNop()
	}

	return svc
}

// GetEncounter retrieves an encounter by ID
func (s *service) GetEncounter(ctx context.Context, encounterID string) (*combat.Encounter, error) {
	return s.encounterRepo.Get(ctx, encounterID)
}

// GetActiveEncounter retrieves the active encounter for a session
func (s *service) GetActiveEncounter(ctx context.Context, sessionID string) (*combat.Encounter, error) {
	return s.encounterRepo.GetActiveBySession(ctx, sessionID)
}

// IntroduceNPC adds an NPC to the session's active encounter, creating
// one when none exists. A hostile arrival into an empty scene is what
// starts combat.
func (s *service) IntroduceNPC(ctx context.Context, sessionID string, intent *combat.CreateNPCIntent) (*IntroduceNPCResult, error) {
	if intent == nil {
		return nil, apperr.InvalidArgument("intent cannot be nil")
	}
	if intent.Name == "" && intent.Slug == "" {
		return nil, apperr.InvalidArgument("NPC needs a name or a reference slug")
	}

	npc, err := s.buildNPC(ctx, intent)
	if err != nil {
		return nil, err
	}

	encounter, err := s.encounterRepo.GetActiveBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	started := false
	if encounter == nil {
		encounter = combat.NewEncounter(s.uuidGenerator.New(), sessionID)
		encounter.AddNPC(npc)
		started = npc.IsHostile()

		if err := s.encounterRepo.Create(ctx, encounter); err != nil {
			return nil, err
		}
	} else {
		encounter.AddNPC(npc)
		if err := s.encounterRepo.Update(ctx, encounter); err != nil {
			return nil, err
		}
	}

	s.logger.Info("NPC introduced",
		zap.String("session_id", sessionID),
		zap.String("npc_id", npc.ID),
		zap.String("npc_name", npc.Name),
		zap.String("disposition", string(npc.Disposition)),
		zap.Bool("combat_started", started))

	return &IntroduceNPCResult{
		Encounter:     encounter,
		NPC:           npc,
		CombatStarted: started,
	}, nil
}

// buildNPC constructs an NPC from the intent, seeding stats from
// reference data when a slug is given. Explicit intent fields win over
// seeded values.
func (s *service) buildNPC(ctx context.Context, intent *combat.CreateNPCIntent) (*combat.NPC, error) {
	id := s.uuidGenerator.New()

	var block *combat.StatBlock
	if intent.Slug != "" && s.refClient != nil {
		var err error
		block, err = s.refClient.GetStatBlock(ctx, intent.Slug)
		if err != nil {
			// Reference lookups are best effort; the intent's own
			// numbers still make a playable NPC
			s.logger.Warn("stat block lookup failed",
				zap.String("slug", intent.Slug),
				zap.Error(err))
			block = nil
		}
	}

	var npc *combat.NPC
	if block != nil {
		npc = combat.NewNPCFromStatBlock(id, block, intent.Disposition)
	} else {
		npc = &combat.NPC{
			ID:          id,
			Slug:        intent.Slug,
			Disposition: intent.Disposition,
		}
	}

	if intent.Name != "" {
		npc.Name = intent.Name
	}
	if intent.AC > 0 {
		npc.AC = intent.AC
	}
	if intent.MaxHP > 0 {
		npc.MaxHP = intent.MaxHP
		npc.CurrentHP = intent.MaxHP
	}
	if intent.AttackBonus != 0 {
		npc.AttackBonus = intent.AttackBonus
	}
	if intent.DamageDice != "" {
		npc.DamageDice = intent.DamageDice
	}
	if intent.DamageBonus != 0 {
		npc.DamageBonus = intent.DamageBonus
	}
	if intent.DamageType != "" {
		npc.DamageType = intent.DamageType
	}
	if intent.XPValue > 0 {
		npc.XPValue = intent.XPValue
	}

	if npc.MaxHP == 0 {
		npc.MaxHP = 1
		npc.CurrentHP = 1
	}
	if npc.AC == 0 {
		npc.AC = 10
	}
	if npc.Name == "" {
		npc.Name = intent.Slug
	}

	return npc, nil
}

// UpdateNPC applies one mutation intent to an NPC. Missing NPCs report
// Found false rather than erroring, which is what makes a double kill
// harmless: the first death removed the NPC, the second finds nothing
// and awards nothing.
func (s *service) UpdateNPC(ctx context.Context, encounterID string, intent *combat.UpdateNPCIntent) (*UpdateNPCResult, error) {
	if intent == nil {
		return nil, apperr.InvalidArgument("intent cannot be nil")
	}

	encounter, err := s.encounterRepo.Get(ctx, encounterID)
	if err != nil {
		return nil, err
	}

	result := s.applyNPCIntent(encounter, intent)
	result.CombatEnded = s.completeIfCleared(encounter)

	if err := s.encounterRepo.Update(ctx, encounter); err != nil {
		return nil, err
	}

	return result, nil
}

// applyNPCIntent mutates the in-memory encounter for one NPC intent
func (s *service) applyNPCIntent(encounter *combat.Encounter, intent *combat.UpdateNPCIntent) *UpdateNPCResult {
	npc, ok := encounter.NPCs[intent.ID]
	if !ok {
		return &UpdateNPCResult{Found: false}
	}

	result := &UpdateNPCResult{Found: true}

	for _, tag := range intent.ConditionsAdded {
		npc.AddCondition(tag)
	}
	for _, tag := range intent.ConditionsRemoved {
		npc.RemoveCondition(tag)
	}

	if intent.HPDelta != 0 {
		result.Died = npc.ApplyHPDelta(intent.HPDelta)
	}
	result.NewHP = npc.CurrentHP

	if result.Died {
		result.XPAwarded = npc.XPValue
		encounter.Defeated = append(encounter.Defeated, npc)
		encounter.AddCombatLogEntry(npc.Name + " is slain.")
		encounter.RemoveNPC(npc.ID)

		s.logger.Info("NPC died",
			zap.String("encounter_id", encounter.ID),
			zap.String("npc_id", npc.ID),
			zap.Int("xp_awarded", result.XPAwarded))
	} else if intent.RemoveFromScene {
		encounter.AddCombatLogEntry(npc.Name + " leaves the scene.")
		encounter.RemoveNPC(npc.ID)
	}

	return result
}

// completeIfCleared ends the encounter once no hostile remains standing
func (s *service) completeIfCleared(encounter *combat.Encounter) bool {
	if encounter.Status != combat.EncounterStatusActive {
		return false
	}
	if encounter.HostilesAlive() > 0 {
		return false
	}

	if encounter.Complete() {
		encounter.AddCombatLogEntry("Combat ends.")
		s.logger.Info("encounter completed", zap.String("encounter_id", encounter.ID))
		return true
	}
	return false
}

// AdvanceTurn moves the turn cursor forward
func (s *service) AdvanceTurn(ctx context.Context, encounterID string) (*combat.Encounter, error) {
	encounter, err := s.encounterRepo.Get(ctx, encounterID)
	if err != nil {
		return nil, err
	}

	if encounter.Status != combat.EncounterStatusActive {
		return nil, apperr.InvalidArgumentf("encounter %s is not active", encounterID)
	}

	encounter.NextTurn()

	if err := s.encounterRepo.Update(ctx, encounter); err != nil {
		return nil, err
	}

	return encounter, nil
}

// ResolveTurn resolves the player's classified action against the live
// encounter, removes anything it kills, and pre-rolls the surviving
// hostiles' attacks so the narration layer receives settled numbers.
func (s *service) ResolveTurn(ctx context.Context, input *ResolveTurnInput) (*ResolveTurnResult, error) {
	if input == nil {
		return nil, apperr.InvalidArgument("input cannot be nil")
	}

	encounter, err := s.encounterRepo.Get(ctx, input.EncounterID)
	if err != nil {
		return nil, err
	}
	if encounter.Status != combat.EncounterStatusActive {
		return nil, apperr.InvalidArgumentf("encounter %s is not active", input.EncounterID)
	}

	char, err := s.characterRepo.Get(ctx, input.CharacterID)
	if err != nil {
		return nil, err
	}

	stats := character.Aggregate(char)

	var target *combat.NPC
	if input.Intent != nil && input.Intent.TargetID != "" {
		target = encounter.NPCs[input.Intent.TargetID]
	}

	action := s.resolver.Resolve(char, stats, input.Intent, target)
	encounter.AddCombatLogEntry(action.String())

	result := &ResolveTurnResult{Action: action}

	if action.Success && target != nil {
		if damage := action.TotalDamage(); damage > 0 {
			update := s.applyNPCIntent(encounter, &combat.UpdateNPCIntent{
				ID:      target.ID,
				HPDelta: -damage,
			})
			if update.Died {
				result.KilledNPCIDs = append(result.KilledNPCIDs, target.ID)
				result.XPAwarded += update.XPAwarded
			}
		}
	}

	result.CombatEnded = s.completeIfCleared(encounter)

	if !result.CombatEnded {
		result.PreRoll = s.prerollEngine.PreRoll(encounter.HostileNPCs(), stats.AC)
		encounter.AddCombatLogEntry(result.PreRoll.Ledger)
	}

	if err := s.encounterRepo.Update(ctx, encounter); err != nil {
		return nil, err
	}

	result.Encounter = encounter
	return result, nil
}

// ApplyDelta applies the narration layer's state delta for one turn.
// Pre-rolled damage from NPCs the delta kills is reconciled away before
// the player's HP moves, and the whole batch lands in one update.
func (s *service) ApplyDelta(ctx context.Context, input *ApplyDeltaInput) (*ApplyDeltaResult, error) {
	if input == nil {
		return nil, apperr.InvalidArgument("input cannot be nil")
	}
	if input.Delta == nil {
		return nil, apperr.InvalidArgument("delta cannot be nil")
	}

	encounter, err := s.encounterRepo.Get(ctx, input.EncounterID)
	if err != nil {
		return nil, err
	}

	var char *character.Character
	if input.CharacterID != "" {
		char, err = s.characterRepo.Get(ctx, input.CharacterID)
		if err != nil {
			return nil, err
		}
	}

	result := &ApplyDeltaResult{}

	for i := range input.Delta.CreateNPCs {
		intent := &input.Delta.CreateNPCs[i]
		npc, err := s.buildNPC(ctx, intent)
		if err != nil {
			return nil, err
		}
		encounter.AddNPC(npc)
		encounter.AddCombatLogEntry(npc.Name + " joins the fight.")
	}

	// An NPC that leaves the roster mid-turn, dead or dismissed, cannot
	// complete its pre-rolled attack; both feed the reconciliation
	var gone []string
	for i := range input.Delta.UpdateNPCs {
		intent := &input.Delta.UpdateNPCs[i]
		update := s.applyNPCIntent(encounter, intent)
		if update.Died {
			gone = append(gone, intent.ID)
			result.XPAwarded += update.XPAwarded
		} else if update.Found && intent.RemoveFromScene {
			gone = append(gone, intent.ID)
		}
	}

	result.ReconciledPreRoll = preroll.Reconcile(input.PreRoll, gone)

	if char != nil {
		hpDelta := 0
		if input.Delta.PlayerDelta != nil {
			hpDelta += input.Delta.PlayerDelta.HPDelta
		}
		if result.ReconciledPreRoll != nil {
			hpDelta -= result.ReconciledPreRoll.TotalDamage
		}

		applyPlayerDelta(char, input.Delta.PlayerDelta, hpDelta)
		result.PlayerHP = char.CurrentHP
	}

	result.CombatEnded = s.completeIfCleared(encounter)

	if err := s.encounterRepo.Update(ctx, encounter); err != nil {
		return nil, err
	}
	if char != nil {
		if err := s.characterRepo.Update(ctx, char); err != nil {
			return nil, err
		}
	}

	result.Encounter = encounter
	return result, nil
}

// applyPlayerDelta mutates the character with the combined HP delta and
// any condition changes, clamping HP to [0, MaxHP]
func applyPlayerDelta(char *character.Character, delta *combat.PlayerDeltaIntent, hpDelta int) {
	char.CurrentHP += hpDelta
	if char.CurrentHP < 0 {
		char.CurrentHP = 0
	}
	if char.CurrentHP > char.MaxHP {
		char.CurrentHP = char.MaxHP
	}

	if delta == nil {
		return
	}

	if char.ActiveConditions == nil {
		char.ActiveConditions = shared.NewConditionSet()
	}
	for _, tag := range delta.ConditionsAdded {
		char.ActiveConditions.Add(tag)
	}
	for _, tag := range delta.ConditionsRemoved {
		char.ActiveConditions.Remove(tag)
	}
}
