// Package preroll rolls every pending hostile NPC attack before the
// narration layer sees the turn. Pre-rolling up front keeps enemy
// attacks honest numbers rather than narrated wishes, and lets damage
// from NPCs killed mid-turn be reconciled away afterwards.
package preroll

import (
	"fmt"
	"strings"

	"github.com/questforge/session-engine/internal/dice"
	"github.com/questforge/session-engine/internal/domain/combat"
)

// NPCDamage is one NPC's pre-rolled attack outcome
type NPCDamage struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Hit    bool   `json:"hit"`
	Damage int    `json:"damage"`
}

// Result is the full pre-roll for one enemy turn: a readable ledger for
// the narration layer plus structured per-NPC damage for reconciliation
type Result struct {
	Ledger      string      `json:"ledger"`
	TotalDamage int         `json:"total_damage"`
	PerNPC      []NPCDamage `json:"per_npc"`
}

// Engine rolls attacks for hostile NPCs against the player's AC
type Engine struct {
	roller dice.Roller
}

// Config holds configuration for the pre-roll engine
type Config struct {
	Roller dice.Roller
}

// New creates a pre-roll engine, defaulting to the random roller
func New(cfg *Config) *Engine {
	roller := dice.Roller(dice.NewRandomRoller())
	if cfg != nil && cfg.Roller != nil {
		roller = cfg.Roller
	}
	return &Engine{roller: roller}
}

// PreRoll rolls one attack per living hostile NPC against targetAC, in
// the order given. Dead, friendly, and neutral NPCs are skipped. An
// empty set still produces an explicit no-attacks ledger so the caller
// never has to guess whether the enemy turn happened.
func (e *Engine) PreRoll(npcs []*combat.NPC, targetAC int) *Result {
	result := &Result{PerNPC: []NPCDamage{}}

	var lines []string
	for _, npc := range npcs {
		if npc == nil || !npc.IsHostile() || !npc.IsAlive() {
			continue
		}

		entry := NPCDamage{ID: npc.ID, Name: npc.Name}

		attack, err := e.roller.Roll(1, 20, 0)
		if err != nil {
			lines = append(lines, fmt.Sprintf("%s cannot attack (%v).", npc.Name, err))
			result.PerNPC = append(result.PerNPC, entry)
			continue
		}

		raw := attack.Rolls[0]
		total := raw + npc.AttackBonus

		hit := total >= targetAC
		if attack.IsCrit {
			hit = true
		}
		if attack.IsFumble {
			hit = false
		}

		if !hit {
			lines = append(lines, fmt.Sprintf("%s attacks: d20(%d)%+d = %d vs AC %d, miss.", npc.Name, raw, npc.AttackBonus, total, targetAC))
			result.PerNPC = append(result.PerNPC, entry)
			continue
		}

		entry.Hit = true
		entry.Damage = e.rollNPCDamage(npc, attack.IsCrit)
		result.PerNPC = append(result.PerNPC, entry)
		result.TotalDamage += entry.Damage

		crit := ""
		if attack.IsCrit {
			crit = " (critical)"
		}
		lines = append(lines, fmt.Sprintf("%s attacks: d20(%d)%+d = %d vs AC %d, hit%s for %d %s damage.", npc.Name, raw, npc.AttackBonus, total, targetAC, crit, entry.Damage, npc.DamageType))
	}

	if len(result.PerNPC) == 0 {
		result.Ledger = "No enemy attacks occur."
		return result
	}

	result.Ledger = strings.Join(lines, "\n")
	return result
}

// rollNPCDamage rolls an NPC's damage dice, doubling the count on a
// crit. A malformed dice expression contributes only the flat bonus.
func (e *Engine) rollNPCDamage(npc *combat.NPC, critical bool) int {
	notation, err := dice.ParseNotation(npc.DamageDice)
	if err != nil {
		if npc.DamageBonus > 0 {
			return npc.DamageBonus
		}
		return 0
	}

	count := notation.Count
	if critical {
		count *= 2
	}

	roll, err := e.roller.Roll(count, notation.Sides, 0)
	if err != nil {
		return npc.DamageBonus
	}

	total := roll.RawTotal + notation.Bonus + npc.DamageBonus
	if total < 0 {
		return 0
	}
	return total
}

// Reconcile subtracts the pre-rolled damage of NPCs that were removed
// before their attacks could land. The original result is untouched; a
// corrected copy comes back for the state-delta apply.
func Reconcile(pre *Result, killedIDs []string) *Result {
	if pre == nil {
		return nil
	}

	killed := make(map[string]struct{}, len(killedIDs))
	for _, id := range killedIDs {
		killed[id] = struct{}{}
	}

	out := &Result{Ledger: pre.Ledger, PerNPC: []NPCDamage{}}
	for _, entry := range pre.PerNPC {
		if _, gone := killed[entry.ID]; gone {
			continue
		}
		out.PerNPC = append(out.PerNPC, entry)
		out.TotalDamage += entry.Damage
	}

	if len(out.PerNPC) == 0 {
		out.Ledger = "No enemy attacks occur."
	}
	return out
}
