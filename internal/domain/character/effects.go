package character

import (
	"github.com/questforge/session-engine/internal/domain/shared"
)

// ResourcePool is a spendable resource granted by an effect (rage uses,
// ki points, superiority dice)
type ResourcePool struct {
	Name string `json:"name"`
	Max  int    `json:"max"`
}

// GameplayEffect is a typed record of contributions a feature makes to a
// character's derived statistics. Every field is optional; zero values
// contribute nothing. The effect as a whole is inert unless Condition is
// "always" or present in the character's active-condition set.
//
// Merge rules during aggregation:
//   - AttacksPerAction takes the max across contributors (never stacks)
//   - numeric bonuses sum
//   - set-valued fields union with de-duplication
//   - boolean flags OR
//   - UnarmoredACFormula is last writer wins
type GameplayEffect struct {
	Condition shared.ConditionTag `json:"condition,omitempty"`

	AttackBonus int `json:"attack_bonus,omitempty"`
	DamageBonus int `json:"damage_bonus,omitempty"`

	// DamageBonusAbility adds the named ability's modifier to damage,
	// resolved against the ability scores as of this effect's position
	// in the aggregation fold
	DamageBonusAbility shared.Attribute `json:"damage_bonus_ability,omitempty"`

	ACBonus    int `json:"ac_bonus,omitempty"`
	SpeedBonus int `json:"speed_bonus,omitempty"`

	// UnarmoredACFormula replaces the base AC computation, e.g.
	// "10+dexterity+wisdom" or "13+dexterity"
	UnarmoredACFormula string `json:"unarmored_ac_formula,omitempty"`

	AttacksPerAction int `json:"attacks_per_action,omitempty"`

	AbilityScoreIncreases map[shared.Attribute]int `json:"ability_score_increases,omitempty"`

	Resistances []shared.DamageType `json:"resistances,omitempty"`
	Immunities  []shared.DamageType `json:"immunities,omitempty"`

	BonusSaveProficiencies []shared.Attribute `json:"bonus_save_proficiencies,omitempty"`
	GrantedSkills          []shared.Skill     `json:"granted_skills,omitempty"`

	Evasion             bool `json:"evasion,omitempty"`
	InitiativeAdvantage bool `json:"initiative_advantage,omitempty"`

	// HalfProficiency adds half the proficiency bonus (floored) to
	// checks the character is not otherwise proficient in
	HalfProficiency bool `json:"half_proficiency,omitempty"`

	Pools []ResourcePool `json:"pools,omitempty"`
}

// EffectiveCondition returns the gate for this effect, defaulting to always
func (e *GameplayEffect) EffectiveCondition() shared.ConditionTag {
	if e == nil || e.Condition == "" {
		return shared.ConditionAlways
	}
	return e.Condition
}

// AppliesTo reports whether the effect is live for the given conditions
func (e *GameplayEffect) AppliesTo(active shared.ConditionSet) bool {
	cond := e.EffectiveCondition()
	if cond == shared.ConditionAlways {
		return true
	}
	return active.Has(cond)
}

// Normalize validates string-typed fields at load time. Unknown condition
// strings become custom tags; a malformed AC formula is cleared so the
// aggregation pass never has to re-validate it.
func (e *GameplayEffect) Normalize() {
	if e == nil {
		return
	}
	if e.Condition != "" {
		e.Condition = shared.ParseConditionTag(string(e.Condition))
	}
	if e.UnarmoredACFormula != "" {
		if _, err := ParseUnarmoredFormula(e.UnarmoredACFormula); err != nil {
			e.UnarmoredACFormula = ""
		}
	}
}
