package shared

// Attribute identifies one of the six ability scores
type Attribute string

const (
	AttributeStrength     Attribute = "strength"
	AttributeDexterity    Attribute = "dexterity"
	AttributeConstitution Attribute = "constitution"
	AttributeIntelligence Attribute = "intelligence"
	AttributeWisdom       Attribute = "wisdom"
	AttributeCharisma     Attribute = "charisma"
)

// Attributes lists every ability in display order
var Attributes = []Attribute{
	AttributeStrength,
	AttributeDexterity,
	AttributeConstitution,
	AttributeIntelligence,
	AttributeWisdom,
	AttributeCharisma,
}

// ParseAttribute maps a string onto a known attribute, defaulting to strength
func ParseAttribute(s string) Attribute {
	for _, a := range Attributes {
		if string(a) == s {
			return a
		}
	}
	return AttributeStrength
}

// Skill identifies a skill used for ability checks
type Skill string

const (
	SkillAcrobatics     Skill = "acrobatics"
	SkillAnimalHandling Skill = "animal-handling"
	SkillArcana         Skill = "arcana"
	SkillAthletics      Skill = "athletics"
	SkillDeception      Skill = "deception"
	SkillHistory        Skill = "history"
	SkillInsight        Skill = "insight"
	SkillIntimidation   Skill = "intimidation"
	SkillInvestigation  Skill = "investigation"
	SkillMedicine       Skill = "medicine"
	SkillNature         Skill = "nature"
	SkillPerception     Skill = "perception"
	SkillPerformance    Skill = "performance"
	SkillPersuasion     Skill = "persuasion"
	SkillReligion       Skill = "religion"
	SkillSleightOfHand  Skill = "sleight-of-hand"
	SkillStealth        Skill = "stealth"
	SkillSurvival       Skill = "survival"
)

// skillAbilities maps each skill to the ability it keys off
var skillAbilities = map[Skill]Attribute{
	SkillAcrobatics:     AttributeDexterity,
	SkillAnimalHandling: AttributeWisdom,
	SkillArcana:         AttributeIntelligence,
	SkillAthletics:      AttributeStrength,
	SkillDeception:      AttributeCharisma,
	SkillHistory:        AttributeIntelligence,
	SkillInsight:        AttributeWisdom,
	SkillIntimidation:   AttributeCharisma,
	SkillInvestigation:  AttributeIntelligence,
	SkillMedicine:       AttributeWisdom,
	SkillNature:         AttributeIntelligence,
	SkillPerception:     AttributeWisdom,
	SkillPerformance:    AttributeCharisma,
	SkillPersuasion:     AttributeCharisma,
	SkillReligion:       AttributeIntelligence,
	SkillSleightOfHand:  AttributeDexterity,
	SkillStealth:        AttributeDexterity,
	SkillSurvival:       AttributeWisdom,
}

// Ability returns the ability score a skill check uses
func (s Skill) Ability() Attribute {
	if a, ok := skillAbilities[s]; ok {
		return a
	}
	return AttributeStrength
}
