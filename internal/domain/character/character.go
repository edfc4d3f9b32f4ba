package character

import (
	"time"

	"github.com/questforge/session-engine/internal/domain/shared"
)

// AbilityScore holds a raw score and its derived modifier
type AbilityScore struct {
	Score int `json:"score"`
	Bonus int `json:"bonus"`
}

// NewAbilityScore derives the modifier from the raw score
func NewAbilityScore(score int) *AbilityScore {
	return &AbilityScore{
		Score: score,
		Bonus: Modifier(score),
	}
}

// Modifier converts a raw ability score to its modifier.
// Floors toward negative infinity so a score of 9 yields -1.
func Modifier(score int) int {
	if score >= 10 {
		return (score - 10) / 2
	}
	return -((11 - score) / 2)
}

// Feature is a class, racial, or acquired trait. Its gameplay effect, if
// any, is inert unless the effect's condition is active on the character.
type Feature struct {
	Key          string          `json:"key"`
	Name         string          `json:"name"`
	Level        int             `json:"level"`
	Source       string          `json:"source"`
	ChosenOption string          `json:"chosen_option,omitempty"`
	Effect       *GameplayEffect `json:"effect,omitempty"`
}

// Character is the player-side entity owned by a hosting session.
// Derived combat statistics are always recomputed via Aggregate, never
// patched incrementally.
type Character struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id"`
	Name      string `json:"name"`
	Class     string `json:"class"`
	Level     int    `json:"level"`

	Attributes map[shared.Attribute]*AbilityScore `json:"attributes"`

	SkillProficiencies []shared.Skill     `json:"skill_proficiencies"`
	SaveProficiencies  []shared.Attribute `json:"save_proficiencies"`
	Expertise          []shared.Skill     `json:"expertise"`

	BaseAC int `json:"base_ac"`
	Speed  int `json:"speed"`

	MaxHP     int `json:"max_hp"`
	CurrentHP int `json:"current_hp"`

	Features         []*Feature          `json:"features"`
	ActiveConditions shared.ConditionSet `json:"active_conditions"`

	// ConcentratingOn is the key of the effect currently concentrated
	// on, empty when not concentrating
	ConcentratingOn string `json:"concentrating_on,omitempty"`

	SpellcastingAbility shared.Attribute `json:"spellcasting_ability,omitempty"`

	Spells    []string `json:"spells,omitempty"`
	Abilities []string `json:"abilities,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProficiencyBonus scales with level: +2 at 1st, +3 at 5th, and so on
func (c *Character) ProficiencyBonus() int {
	if c.Level < 1 {
		return 2
	}
	return 2 + (c.Level-1)/4
}

// AbilityModifier returns the modifier for an ability, 0 when unset
func (c *Character) AbilityModifier(attr shared.Attribute) int {
	if c.Attributes == nil {
		return 0
	}
	if score, ok := c.Attributes[attr]; ok && score != nil {
		return score.Bonus
	}
	return 0
}

// IsProficient reports skill proficiency
func (c *Character) IsProficient(skill shared.Skill) bool {
	for _, s := range c.SkillProficiencies {
		if s == skill {
			return true
		}
	}
	return false
}

// IsSaveProficient reports saving-throw proficiency
func (c *Character) IsSaveProficient(attr shared.Attribute) bool {
	for _, a := range c.SaveProficiencies {
		if a == attr {
			return true
		}
	}
	return false
}

// HasExpertise reports whether proficiency doubles for a skill
func (c *Character) HasExpertise(skill shared.Skill) bool {
	for _, s := range c.Expertise {
		if s == skill {
			return true
		}
	}
	return false
}

// HasCondition reports whether a condition is active
func (c *Character) HasCondition(tag shared.ConditionTag) bool {
	return c.ActiveConditions.Has(tag)
}

// HasFeature reports whether a feature with the given key is present
func (c *Character) HasFeature(key string) bool {
	for _, f := range c.Features {
		if f != nil && f.Key == key {
			return true
		}
	}
	return false
}
