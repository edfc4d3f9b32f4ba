package combat_test

import (
	"testing"

	"github.com/questforge/session-engine/internal/domain/combat"
	"github.com/questforge/session-engine/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGoblin(id string) *combat.NPC {
	return &combat.NPC{
		ID:          id,
		Name:        "Goblin",
		AC:          15,
		CurrentHP:   7,
		MaxHP:       7,
		AttackBonus: 4,
		DamageDice:  "1d6",
		DamageBonus: 2,
		DamageType:  shared.DamageTypeSlashing,
		Disposition: shared.DispositionHostile,
		XPValue:     50,
	}
}

func TestNewEncounter_PlayerFirst(t *testing.T) {
	enc := combat.NewEncounter("enc-1", "session-1")

	assert.Equal(t, combat.EncounterStatusActive, enc.Status)
	assert.Equal(t, 1, enc.Round)
	assert.Equal(t, []string{combat.PlayerID}, enc.TurnOrder)
	assert.Equal(t, combat.Position{X: 0, Y: 0}, enc.Positions[combat.PlayerID])
	assert.Equal(t, combat.PlayerID, enc.CurrentTurnID())
}

func TestEncounter_AddNPC_CollisionFreePositions(t *testing.T) {
	enc := combat.NewEncounter("enc-1", "session-1")
	enc.AddNPC(newGoblin("npc-1"))
	enc.AddNPC(newGoblin("npc-2"))
	enc.AddNPC(newGoblin("npc-3"))

	seen := map[combat.Position]string{}
	for id, pos := range enc.Positions {
		prev, dup := seen[pos]
		require.False(t, dup, "position %v shared by %s and %s", pos, prev, id)
		seen[pos] = id
	}

	assert.Equal(t, []string{combat.PlayerID, "npc-1", "npc-2", "npc-3"}, enc.TurnOrder)
}

func TestEncounter_NextTurn_WrapIncrementsRound(t *testing.T) {
	enc := combat.NewEncounter("enc-1", "session-1")
	enc.AddNPC(newGoblin("npc-1"))
	enc.AddNPC(newGoblin("npc-2"))

	require.Equal(t, combat.PlayerID, enc.CurrentTurnID())

	enc.NextTurn()
	assert.Equal(t, "npc-1", enc.CurrentTurnID())
	assert.Equal(t, 1, enc.Round)

	enc.NextTurn()
	assert.Equal(t, "npc-2", enc.CurrentTurnID())

	enc.NextTurn()
	assert.Equal(t, combat.PlayerID, enc.CurrentTurnID())
	assert.Equal(t, 2, enc.Round)
}

func TestEncounter_RemoveNPC_SplicesEverything(t *testing.T) {
	enc := combat.NewEncounter("enc-1", "session-1")
	enc.AddNPC(newGoblin("npc-1"))
	enc.AddNPC(newGoblin("npc-2"))

	enc.RemoveNPC("npc-1")

	assert.NotContains(t, enc.NPCs, "npc-1")
	assert.NotContains(t, enc.Positions, "npc-1")
	assert.Equal(t, []string{combat.PlayerID, "npc-2"}, enc.TurnOrder)

	// Removing again is a quiet no-op
	enc.RemoveNPC("npc-1")
	assert.Equal(t, []string{combat.PlayerID, "npc-2"}, enc.TurnOrder)
}

func TestEncounter_RemoveNPC_AdjustsTurnCursor(t *testing.T) {
	enc := combat.NewEncounter("enc-1", "session-1")
	enc.AddNPC(newGoblin("npc-1"))
	enc.AddNPC(newGoblin("npc-2"))

	// Advance to npc-2's turn, then remove npc-1 which precedes it
	enc.NextTurn()
	enc.NextTurn()
	require.Equal(t, "npc-2", enc.CurrentTurnID())

	enc.RemoveNPC("npc-1")
	assert.Equal(t, "npc-2", enc.CurrentTurnID())
}

func TestEncounter_Complete_ExactlyOnce(t *testing.T) {
	enc := combat.NewEncounter("enc-1", "session-1")

	assert.True(t, enc.Complete())
	require.NotNil(t, enc.CompletedAt)
	first := *enc.CompletedAt

	assert.False(t, enc.Complete(), "re-entering completed is a no-op")
	assert.Equal(t, first, *enc.CompletedAt)
}

func TestEncounter_HostilesAlive(t *testing.T) {
	enc := combat.NewEncounter("enc-1", "session-1")
	goblin := newGoblin("npc-1")
	friendly := newGoblin("npc-2")
	friendly.Disposition = shared.DispositionFriendly
	enc.AddNPC(goblin)
	enc.AddNPC(friendly)

	assert.Equal(t, 1, enc.HostilesAlive())

	goblin.CurrentHP = 0
	assert.Equal(t, 0, enc.HostilesAlive())
}

func TestEncounter_AddCombatLogEntry_Bounded(t *testing.T) {
	enc := combat.NewEncounter("enc-1", "session-1")
	for i := 0; i < 30; i++ {
		enc.AddCombatLogEntry("swing and a miss")
	}
	assert.Len(t, enc.CombatLog, 20)
	assert.Contains(t, enc.CombatLog[0], "Round 1:")
}

func TestEncounter_Snapshot(t *testing.T) {
	enc := combat.NewEncounter("enc-1", "session-1")
	enc.AddNPC(newGoblin("npc-1"))

	snap := enc.Snapshot()
	assert.Equal(t, "enc-1", snap.ID)
	assert.Equal(t, combat.PlayerID, snap.TurnID)
	assert.Len(t, snap.NPCs, 1)

	// Mutating the snapshot's slices must not touch the encounter
	snap.TurnOrder[0] = "mutated"
	assert.Equal(t, combat.PlayerID, enc.TurnOrder[0])
}
