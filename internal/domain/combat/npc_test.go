package combat_test

import (
	"testing"

	"github.com/questforge/session-engine/internal/domain/combat"
	"github.com/questforge/session-engine/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestNPC_ApplyHPDelta_Clamps(t *testing.T) {
	npc := newGoblin("npc-1")

	died := npc.ApplyHPDelta(-3)
	assert.False(t, died)
	assert.Equal(t, 4, npc.CurrentHP)

	// Overkill stores 0, not a negative value
	died = npc.ApplyHPDelta(-100)
	assert.True(t, died)
	assert.Equal(t, 0, npc.CurrentHP)

	// Healing past max clamps at max; a dead NPC reporting died again
	// would be a double death event
	npc = newGoblin("npc-2")
	npc.ApplyHPDelta(50)
	assert.Equal(t, 7, npc.CurrentHP)
}

func TestNPC_ApplyHPDelta_DeathReportedOnce(t *testing.T) {
	npc := newGoblin("npc-1")

	assert.True(t, npc.ApplyHPDelta(-7))
	assert.False(t, npc.ApplyHPDelta(-1), "already dead, no second death event")
}

// HP stays within [0, MaxHP] for any sequence of deltas
func TestNPC_HPInvariant(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		npc := newGoblin("npc-1")
		n := rapid.IntRange(1, 20).Draw(rt, "n")
		for i := 0; i < n; i++ {
			npc.ApplyHPDelta(rapid.IntRange(-30, 30).Draw(rt, "delta"))
			assert.GreaterOrEqual(rt, npc.CurrentHP, 0)
			assert.LessOrEqual(rt, npc.CurrentHP, npc.MaxHP)
		}
	})
}

func TestNPC_Conditions(t *testing.T) {
	npc := newGoblin("npc-1")

	npc.AddCondition(shared.ConditionProne)
	npc.AddCondition(shared.ConditionProne)
	assert.Equal(t, []shared.ConditionTag{shared.ConditionProne}, npc.Conditions)

	npc.RemoveCondition(shared.ConditionProne)
	assert.Empty(t, npc.Conditions)

	// Removing an absent condition is fine
	npc.RemoveCondition(shared.ConditionStunned)
}

func TestNewNPCFromStatBlock(t *testing.T) {
	block := &combat.StatBlock{
		Slug:        "orc",
		Name:        "Orc",
		ArmorClass:  13,
		HitPoints:   15,
		AttackBonus: 5,
		DamageDice:  "1d12",
		DamageBonus: 3,
		DamageType:  shared.DamageTypeSlashing,
		XP:          100,
	}

	npc := combat.NewNPCFromStatBlock("npc-1", block, shared.DispositionHostile)
	assert.Equal(t, "Orc", npc.Name)
	assert.Equal(t, 15, npc.CurrentHP)
	assert.Equal(t, 15, npc.MaxHP)
	assert.Equal(t, 13, npc.AC)
	assert.Equal(t, 100, npc.XPValue)
	assert.True(t, npc.IsHostile())
	assert.True(t, npc.IsAlive())
}
