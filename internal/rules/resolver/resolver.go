// Package resolver turns one classified action intent plus aggregated
// stats into a fully rolled, itemized result. Resolution never returns
// an error to the caller: malformed or unknown input degrades to a
// NoCheck result carrying an explanatory note.
package resolver

import (
	"fmt"

	"github.com/questforge/session-engine/internal/dice"
	"github.com/questforge/session-engine/internal/domain/character"
	"github.com/questforge/session-engine/internal/domain/combat"
	"github.com/questforge/session-engine/internal/domain/shared"
)

// Resolver rolls classified intents against aggregated character stats
type Resolver struct {
	roller dice.Roller
}

// Config holds configuration for the resolver
type Config struct {
	Roller dice.Roller
}

// New creates a resolver, defaulting to the random roller
func New(cfg *Config) *Resolver {
	roller := dice.Roller(dice.NewRandomRoller())
	if cfg != nil && cfg.Roller != nil {
		roller = cfg.Roller
	}
	return &Resolver{roller: roller}
}

// Resolve handles the closed intent set exhaustively. Impossible and
// NoCheck short-circuit with zero dice rolled; an unrecognized kind
// degrades to NoCheck with a note identifying it.
func (r *Resolver) Resolve(char *character.Character, stats *character.DerivedStats, intent *combat.ActionIntent, target *combat.NPC) *combat.RollResult {
	if intent == nil {
		return combat.NewNoCheck("no intent supplied")
	}

	switch intent.Kind {
	case combat.IntentImpossible:
		note := intent.Note
		if note == "" {
			note = "the action is not possible"
		}
		return combat.NewImpossible(note)

	case combat.IntentNoCheck:
		note := intent.Note
		if note == "" {
			note = "no check required"
		}
		return combat.NewNoCheck(note)

	case combat.IntentSkillCheck:
		return r.resolveSkillCheck(char, stats, intent)

	case combat.IntentSavingThrow:
		return r.resolveSavingThrow(stats, intent)

	case combat.IntentAttack:
		return r.resolveAttack(char, stats, intent, target)

	default:
		return combat.NewNoCheck(fmt.Sprintf("unrecognized intent %q resolved as no check", intent.Kind))
	}
}

func (r *Resolver) resolveSkillCheck(char *character.Character, stats *character.DerivedStats, intent *combat.ActionIntent) *combat.RollResult {
	ability := intent.Skill.Ability()
	abilityMod := stats.AbilityModifiers[ability]

	modifiers := []combat.ModifierPart{
		{Label: string(ability), Value: abilityMod},
	}

	// Proficiency: full when proficient (doubled with expertise),
	// half floored when the character has the half-proficiency flag,
	// nothing otherwise
	if stats.IsSkillProficient(intent.Skill) {
		prof := stats.ProficiencyBonus
		label := "proficiency"
		if char.HasExpertise(intent.Skill) {
			prof *= 2
			label = "expertise"
		}
		modifiers = append(modifiers, combat.ModifierPart{Label: label, Value: prof})
	} else if stats.HalfProficiency {
		modifiers = append(modifiers, combat.ModifierPart{Label: "half proficiency", Value: stats.ProficiencyBonus / 2})
	}

	roll, err := r.roller.Roll(1, 20, 0)
	if err != nil {
		return combat.NewNoCheck(fmt.Sprintf("dice unavailable: %v", err))
	}

	result := &combat.RollResult{
		Kind:      combat.ResultKindCheck,
		CheckType: combat.CheckTypeSkillCheck,
		Modifiers: modifiers,
		RawDie:    roll.Rolls[0],
		Against:   intent.DC,
	}
	result.Total = result.RawDie + result.ModifierTotal()
	result.Success = result.Total >= intent.DC
	return result
}

func (r *Resolver) resolveSavingThrow(stats *character.DerivedStats, intent *combat.ActionIntent) *combat.RollResult {
	ability := intent.Ability
	if ability == "" {
		ability = shared.AttributeConstitution
	}

	modifiers := []combat.ModifierPart{
		{Label: string(ability), Value: stats.AbilityModifiers[ability]},
	}
	if stats.IsSaveProficient(ability) {
		modifiers = append(modifiers, combat.ModifierPart{Label: "proficiency", Value: stats.ProficiencyBonus})
	}

	roll, err := r.roller.Roll(1, 20, 0)
	if err != nil {
		return combat.NewNoCheck(fmt.Sprintf("dice unavailable: %v", err))
	}

	result := &combat.RollResult{
		Kind:      combat.ResultKindCheck,
		CheckType: combat.CheckTypeSavingThrow,
		Modifiers: modifiers,
		RawDie:    roll.Rolls[0],
		Against:   intent.DC,
	}
	result.Total = result.RawDie + result.ModifierTotal()
	result.Success = result.Total >= intent.DC
	return result
}

func (r *Resolver) resolveAttack(char *character.Character, stats *character.DerivedStats, intent *combat.ActionIntent, target *combat.NPC) *combat.RollResult {
	if target == nil {
		return combat.NewNoCheck("attack has no target")
	}

	attackKind := intent.AttackKind
	if attackKind == "" {
		attackKind = combat.AttackKindMelee
	}

	var attackBonus int
	switch attackKind {
	case combat.AttackKindRanged:
		attackBonus = stats.RangedAttackBonus
	case combat.AttackKindSpell:
		attackBonus = stats.SpellAttackBonus
	default:
		attackBonus = stats.MeleeAttackBonus
	}

	roll, err := r.roller.Roll(1, 20, 0)
	if err != nil {
		return combat.NewNoCheck(fmt.Sprintf("dice unavailable: %v", err))
	}

	result := &combat.RollResult{
		Kind:      combat.ResultKindCheck,
		CheckType: combat.CheckTypeAttack,
		Modifiers: []combat.ModifierPart{{Label: fmt.Sprintf("%s attack bonus", attackKind), Value: attackBonus}},
		RawDie:    roll.Rolls[0],
		Against:   target.AC,
		Critical:  roll.IsCrit,
	}
	result.Total = result.RawDie + attackBonus

	// Natural 20 always hits, natural 1 always misses
	switch {
	case roll.IsCrit:
		result.Success = true
	case roll.IsFumble:
		result.Success = false
	default:
		result.Success = result.Total >= target.AC
	}

	if !result.Success {
		return result
	}

	result.Damage = r.rollDamage(char, stats, intent, attackKind, roll.IsCrit)
	return result
}

// rollDamage rolls the base weapon/spell source plus every declared extra
// source that survives validation. On a critical hit the number of dice
// in every source doubles and those dice are rolled fresh; flat bonuses
// are unchanged.
func (r *Resolver) rollDamage(char *character.Character, stats *character.DerivedStats, intent *combat.ActionIntent, attackKind combat.AttackKind, critical bool) []combat.DamageSource {
	label := intent.WeaponLabel
	if label == "" {
		label = "weapon"
	}

	base := combat.ExtraDamageSource{
		Label: label,
		Dice:  intent.WeaponDice,
		Flat:  intent.WeaponFlat + r.damageAbilityMod(char, stats, attackKind) + stats.DamageBonus,
		Type:  intent.DamageType,
	}

	sources := []combat.ExtraDamageSource{base}
	for _, extra := range intent.ExtraDamage {
		if r.extraSourceApplies(char, stats, extra) {
			sources = append(sources, extra)
		}
	}

	out := make([]combat.DamageSource, 0, len(sources))
	for _, src := range sources {
		if rolled, ok := r.rollDamageSource(src, critical); ok {
			out = append(out, rolled)
		}
	}
	return out
}

// damageAbilityMod picks the ability modifier added to base damage
func (r *Resolver) damageAbilityMod(char *character.Character, stats *character.DerivedStats, attackKind combat.AttackKind) int {
	switch attackKind {
	case combat.AttackKindRanged:
		return stats.AbilityModifiers[shared.AttributeDexterity]
	case combat.AttackKindSpell:
		if char.SpellcastingAbility != "" {
			return stats.AbilityModifiers[char.SpellcastingAbility]
		}
		best := stats.AbilityModifiers[shared.AttributeIntelligence]
		for _, attr := range []shared.Attribute{shared.AttributeWisdom, shared.AttributeCharisma} {
			if stats.AbilityModifiers[attr] > best {
				best = stats.AbilityModifiers[attr]
			}
		}
		return best
	default:
		return stats.AbilityModifiers[shared.AttributeStrength]
	}
}

// extraSourceApplies validates a declared extra damage source against the
// character's known state. An unverifiable source is dropped silently;
// the itemized breakdown shows the caller exactly what was honored.
func (r *Resolver) extraSourceApplies(char *character.Character, stats *character.DerivedStats, src combat.ExtraDamageSource) bool {
	if src.RequiresCondition != "" && src.RequiresCondition != shared.ConditionAlways {
		if !char.HasCondition(src.RequiresCondition) {
			return false
		}
	}

	if src.RequiresConcentrationOn != "" {
		if char.ConcentratingOn != src.RequiresConcentrationOn {
			return false
		}
	}

	if src.ResourcePool != "" {
		tier := src.ResourceTier
		if tier < 1 {
			tier = 1
		}
		if stats.PoolMax(src.ResourcePool) < tier {
			return false
		}
	}

	return true
}

// rollDamageSource rolls one source, doubling the dice count on a crit.
// A malformed dice expression skips the source unless it carries a flat
// bonus worth keeping.
func (r *Resolver) rollDamageSource(src combat.ExtraDamageSource, critical bool) (combat.DamageSource, bool) {
	out := combat.DamageSource{
		Label: src.Label,
		Dice:  src.Dice,
		Flat:  src.Flat,
		Type:  src.Type,
	}

	if src.Dice == "" {
		if src.Flat == 0 {
			return combat.DamageSource{}, false
		}
		out.Subtotal = src.Flat
		return out, true
	}

	notation, err := dice.ParseNotation(src.Dice)
	if err != nil {
		if src.Flat == 0 {
			return combat.DamageSource{}, false
		}
		out.Subtotal = src.Flat
		return out, true
	}

	// A bonus embedded in the expression ("1d8+3") is a flat bonus like
	// any other: it lands once and never doubles on a crit
	out.Flat = src.Flat + notation.Bonus

	count := notation.Count
	if critical {
		count *= 2
	}

	roll, err := r.roller.Roll(count, notation.Sides, 0)
	if err != nil {
		if out.Flat == 0 {
			return combat.DamageSource{}, false
		}
		out.Subtotal = out.Flat
		return out, true
	}

	out.Rolls = roll.Rolls
	out.Subtotal = roll.RawTotal + out.Flat
	return out, true
}
