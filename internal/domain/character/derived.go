package character

import (
	"github.com/questforge/session-engine/internal/domain/shared"
)

// DerivedStats is the output of one aggregation pass: every live combat
// statistic for a character under its current features and conditions.
// Instances are throwaway values; recompute instead of caching across any
// condition change.
type DerivedStats struct {
	AC    int
	Speed int

	MeleeAttackBonus  int
	RangedAttackBonus int
	SpellAttackBonus  int

	DamageBonus      int
	AttacksPerAction int
	ProficiencyBonus int

	AbilityModifiers map[shared.Attribute]int

	Resistances []shared.DamageType
	Immunities  []shared.DamageType

	SaveProficiencies  []shared.Attribute
	SkillProficiencies []shared.Skill

	Evasion             bool
	InitiativeAdvantage bool
	HalfProficiency     bool

	// Pools maps resource pool name to its maximum
	Pools map[string]int
}

// HasResistance reports resistance to a damage type
func (d *DerivedStats) HasResistance(t shared.DamageType) bool {
	for _, r := range d.Resistances {
		if r == t {
			return true
		}
	}
	return false
}

// HasImmunity reports immunity to a damage type
func (d *DerivedStats) HasImmunity(t shared.DamageType) bool {
	for _, i := range d.Immunities {
		if i == t {
			return true
		}
	}
	return false
}

// IsSaveProficient includes proficiencies granted by active effects
func (d *DerivedStats) IsSaveProficient(attr shared.Attribute) bool {
	for _, a := range d.SaveProficiencies {
		if a == attr {
			return true
		}
	}
	return false
}

// IsSkillProficient includes proficiencies granted by active effects
func (d *DerivedStats) IsSkillProficient(skill shared.Skill) bool {
	for _, s := range d.SkillProficiencies {
		if s == skill {
			return true
		}
	}
	return false
}

// PoolMax returns the maximum for a named resource pool, 0 when absent
func (d *DerivedStats) PoolMax(name string) int {
	return d.Pools[name]
}
