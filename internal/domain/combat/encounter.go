package combat

import (
	"fmt"
	"time"
)

// PlayerID is the reserved roster id for the player character
const PlayerID = "player"

// EncounterStatus represents the lifecycle state of an encounter.
// Completed is terminal; a new encounter is a fresh instance.
type EncounterStatus string

const (
	EncounterStatusActive    EncounterStatus = "active"
	EncounterStatusCompleted EncounterStatus = "completed"
)

// Position is a grid coordinate for a roster entry
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Encounter owns the NPC roster, grid positions, turn order, and round
// counter for one combat. Every id in TurnOrder and Positions has a live
// roster entry or is the player; dead or dismissed NPCs are spliced out
// atomically with their roster removal.
type Encounter struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id"`

	Status EncounterStatus `json:"status"`
	Round  int             `json:"round"`

	// TurnIndex is the cursor into TurnOrder for the current turn
	TurnIndex int `json:"turn_index"`

	NPCs      map[string]*NPC     `json:"npcs"`
	Positions map[string]Position `json:"positions"`
	TurnOrder []string            `json:"turn_order"`

	// Defeated accumulates NPCs that died during this encounter, handed
	// to the reward collaborator on completion
	Defeated []*NPC `json:"defeated,omitempty"`

	CombatLog []string `json:"combat_log,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Snapshot is the read-only view of an encounter handed to the narration
// boundary
type Snapshot struct {
	ID        string              `json:"id"`
	Status    EncounterStatus     `json:"status"`
	Round     int                 `json:"round"`
	TurnID    string              `json:"turn_id"`
	TurnOrder []string            `json:"turn_order"`
	Positions map[string]Position `json:"positions"`
	NPCs      []*NPC              `json:"npcs"`
}

// NewEncounter activates a fresh encounter with the player first in the
// turn order and at the grid origin
func NewEncounter(id, sessionID string) *Encounter {
	return &Encounter{
		ID:        id,
		SessionID: sessionID,
		Status:    EncounterStatusActive,
		Round:     1,
		TurnIndex: 0,
		NPCs:      make(map[string]*NPC),
		Positions: map[string]Position{PlayerID: {X: 0, Y: 0}},
		TurnOrder: []string{PlayerID},
		CreatedAt: time.Now().UTC(),
	}
}

// ringOffsets are candidate placements around the origin, tried in order
// until a free cell is found
var ringOffsets = []Position{
	{X: 2, Y: 0}, {X: 0, Y: 2}, {X: -2, Y: 0}, {X: 0, Y: -2},
	{X: 2, Y: 2}, {X: -2, Y: 2}, {X: 2, Y: -2}, {X: -2, Y: -2},
	{X: 4, Y: 0}, {X: 0, Y: 4}, {X: -4, Y: 0}, {X: 0, Y: -4},
}

// nextFreePosition picks a collision-free cell for a new roster entry
func (e *Encounter) nextFreePosition() Position {
	occupied := make(map[Position]struct{}, len(e.Positions))
	for _, p := range e.Positions {
		occupied[p] = struct{}{}
	}

	for _, candidate := range ringOffsets {
		if _, taken := occupied[candidate]; !taken {
			return candidate
		}
	}

	// Ring exhausted; march east until a free cell appears
	p := Position{X: 6, Y: 0}
	for {
		if _, taken := occupied[p]; !taken {
			return p
		}
		p.X += 2
	}
}

// AddNPC places an NPC into the roster, positions, and turn order
func (e *Encounter) AddNPC(npc *NPC) {
	e.NPCs[npc.ID] = npc
	e.Positions[npc.ID] = e.nextFreePosition()
	e.TurnOrder = append(e.TurnOrder, npc.ID)
}

// RemoveNPC splices an NPC out of the roster, positions, and turn order
// in one step so no dangling ids remain. The turn cursor shifts back when
// the removed entry preceded it.
func (e *Encounter) RemoveNPC(id string) {
	if _, ok := e.NPCs[id]; !ok {
		return
	}

	delete(e.NPCs, id)
	delete(e.Positions, id)

	newOrder := make([]string, 0, len(e.TurnOrder))
	for i, entry := range e.TurnOrder {
		if entry == id {
			if i < e.TurnIndex {
				e.TurnIndex--
			}
			continue
		}
		newOrder = append(newOrder, entry)
	}
	e.TurnOrder = newOrder

	if len(e.TurnOrder) > 0 && e.TurnIndex >= len(e.TurnOrder) {
		e.TurnIndex = 0
		e.Round++
	}
}

// NextTurn advances the cursor, incrementing the round on wraparound
func (e *Encounter) NextTurn() {
	if e.Status != EncounterStatusActive || len(e.TurnOrder) == 0 {
		return
	}

	e.TurnIndex++
	if e.TurnIndex >= len(e.TurnOrder) {
		e.TurnIndex = 0
		e.Round++
	}
}

// CurrentTurnID returns the roster id whose turn it is
func (e *Encounter) CurrentTurnID() string {
	if e.TurnIndex < len(e.TurnOrder) {
		return e.TurnOrder[e.TurnIndex]
	}
	return ""
}

// HostilesAlive counts hostile NPCs with hit points remaining
func (e *Encounter) HostilesAlive() int {
	count := 0
	for _, npc := range e.NPCs {
		if npc.IsHostile() && npc.IsAlive() {
			count++
		}
	}
	return count
}

// HostileNPCs returns the hostile roster entries in turn order
func (e *Encounter) HostileNPCs() []*NPC {
	out := make([]*NPC, 0, len(e.NPCs))
	for _, id := range e.TurnOrder {
		if npc, ok := e.NPCs[id]; ok && npc.IsHostile() {
			out = append(out, npc)
		}
	}
	return out
}

// Complete marks the encounter finished. Calling it again is a no-op,
// not an error; completion happens exactly once.
func (e *Encounter) Complete() bool {
	if e.Status == EncounterStatusCompleted {
		return false
	}
	now := time.Now().UTC()
	e.Status = EncounterStatusCompleted
	e.CompletedAt = &now
	return true
}

// AddCombatLogEntry appends a round-prefixed entry, keeping the log bounded
func (e *Encounter) AddCombatLogEntry(entry string) {
	e.CombatLog = append(e.CombatLog, fmt.Sprintf("Round %d: %s", e.Round, entry))
	if len(e.CombatLog) > 20 {
		e.CombatLog = e.CombatLog[len(e.CombatLog)-20:]
	}
}

// Snapshot builds the narration-boundary view, NPCs in turn order
func (e *Encounter) Snapshot() *Snapshot {
	positions := make(map[string]Position, len(e.Positions))
	for id, p := range e.Positions {
		positions[id] = p
	}

	npcs := make([]*NPC, 0, len(e.NPCs))
	for _, id := range e.TurnOrder {
		if npc, ok := e.NPCs[id]; ok {
			npcs = append(npcs, npc)
		}
	}

	return &Snapshot{
		ID:        e.ID,
		Status:    e.Status,
		Round:     e.Round,
		TurnID:    e.CurrentTurnID(),
		TurnOrder: append([]string(nil), e.TurnOrder...),
		Positions: positions,
		NPCs:      npcs,
	}
}
