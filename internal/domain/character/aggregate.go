package character

import (
	"sort"

	"github.com/questforge/session-engine/internal/domain/shared"
)

// Aggregate derives a character's live combat statistics from its base
// fields and every feature whose effect condition is satisfied. The pass
// is pure: no I/O, no mutation of the character, and malformed
// contributions are skipped rather than aborting the fold.
//
// Features fold in list order. An ability-linked damage bonus resolves
// against the ability scores as of its position in the fold, so an
// earlier ability-score increase in the same pass is visible to it.
// When two effects carry an unarmored-AC formula the later one wins.
func Aggregate(c *Character) *DerivedStats {
	scores := make(map[shared.Attribute]int, len(shared.Attributes))
	for _, attr := range shared.Attributes {
		if s, ok := c.Attributes[attr]; ok && s != nil {
			scores[attr] = s.Score
		} else {
			scores[attr] = 10
		}
	}

	stats := &DerivedStats{
		Speed:            c.Speed,
		AttacksPerAction: 1,
		ProficiencyBonus: c.ProficiencyBonus(),
		Pools:            map[string]int{},
	}

	var (
		attackBonus int
		acBonus     int
		formula     *UnarmoredFormula
		resistances = map[shared.DamageType]struct{}{}
		immunities  = map[shared.DamageType]struct{}{}
		saves       = map[shared.Attribute]struct{}{}
		skills      = map[shared.Skill]struct{}{}
	)

	for _, a := range c.SaveProficiencies {
		saves[a] = struct{}{}
	}
	for _, s := range c.SkillProficiencies {
		skills[s] = struct{}{}
	}

	for _, feature := range c.Features {
		if feature == nil || feature.Effect == nil {
			continue
		}
		effect := feature.Effect
		if !effect.AppliesTo(c.ActiveConditions) {
			continue
		}

		for attr, inc := range effect.AbilityScoreIncreases {
			scores[attr] += inc
		}

		attackBonus += effect.AttackBonus
		stats.DamageBonus += effect.DamageBonus
		if effect.DamageBonusAbility != "" {
			stats.DamageBonus += Modifier(scores[effect.DamageBonusAbility])
		}

		acBonus += effect.ACBonus
		stats.Speed += effect.SpeedBonus

		if effect.UnarmoredACFormula != "" {
			if parsed, err := ParseUnarmoredFormula(effect.UnarmoredACFormula); err == nil {
				formula = parsed
			}
		}

		if effect.AttacksPerAction > stats.AttacksPerAction {
			stats.AttacksPerAction = effect.AttacksPerAction
		}

		for _, r := range effect.Resistances {
			resistances[r] = struct{}{}
		}
		for _, i := range effect.Immunities {
			immunities[i] = struct{}{}
		}
		for _, a := range effect.BonusSaveProficiencies {
			saves[a] = struct{}{}
		}
		for _, s := range effect.GrantedSkills {
			skills[s] = struct{}{}
		}

		stats.Evasion = stats.Evasion || effect.Evasion
		stats.InitiativeAdvantage = stats.InitiativeAdvantage || effect.InitiativeAdvantage
		stats.HalfProficiency = stats.HalfProficiency || effect.HalfProficiency

		for _, pool := range effect.Pools {
			if pool.Max > stats.Pools[pool.Name] {
				stats.Pools[pool.Name] = pool.Max
			}
		}
	}

	mods := make(map[shared.Attribute]int, len(scores))
	for attr, score := range scores {
		mods[attr] = Modifier(score)
	}
	stats.AbilityModifiers = mods

	baseAC := c.BaseAC
	if baseAC == 0 {
		baseAC = 10 + mods[shared.AttributeDexterity]
	}
	if formula != nil {
		baseAC = formula.Evaluate(mods)
	}
	stats.AC = baseAC + acBonus

	prof := stats.ProficiencyBonus
	stats.MeleeAttackBonus = mods[shared.AttributeStrength] + prof + attackBonus
	stats.RangedAttackBonus = mods[shared.AttributeDexterity] + prof + attackBonus
	stats.SpellAttackBonus = mods[c.castingAbility(mods)] + prof + attackBonus

	stats.Resistances = sortedDamageTypes(resistances)
	stats.Immunities = sortedDamageTypes(immunities)
	stats.SaveProficiencies = sortedAttributes(saves)
	stats.SkillProficiencies = sortedSkills(skills)

	return stats
}

// castingAbility falls back to the best mental ability when the character
// has no declared spellcasting ability
func (c *Character) castingAbility(mods map[shared.Attribute]int) shared.Attribute {
	if c.SpellcastingAbility != "" {
		return c.SpellcastingAbility
	}
	best := shared.AttributeIntelligence
	for _, attr := range []shared.Attribute{shared.AttributeWisdom, shared.AttributeCharisma} {
		if mods[attr] > mods[best] {
			best = attr
		}
	}
	return best
}

func sortedDamageTypes(set map[shared.DamageType]struct{}) []shared.DamageType {
	out := make([]shared.DamageType, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sortedAttributes(set map[shared.Attribute]struct{}) []shared.Attribute {
	out := make([]shared.Attribute, 0, len(set))
	for a := range set {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sortedSkills(set map[shared.Skill]struct{}) []shared.Skill {
	out := make([]shared.Skill, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
