package combat

import (
	"github.com/questforge/session-engine/internal/domain/shared"
)

// IntentKind is the closed set of action classifications the resolver
// handles exhaustively. Anything outside the set degrades to NoCheck.
type IntentKind string

const (
	IntentAttack      IntentKind = "attack"
	IntentSkillCheck  IntentKind = "skill_check"
	IntentSavingThrow IntentKind = "saving_throw"
	IntentImpossible  IntentKind = "impossible"
	IntentNoCheck     IntentKind = "no_check"
)

// AttackKind selects which aggregated attack bonus applies
type AttackKind string

const (
	AttackKindMelee  AttackKind = "melee"
	AttackKindRanged AttackKind = "ranged"
	AttackKindSpell  AttackKind = "spell"
)

// ExtraDamageSource is a caller-declared stacked damage source on an
// attack. Each is validated against the character's known feature and
// condition state before being honored.
type ExtraDamageSource struct {
	Label string            `json:"label"`
	Dice  string            `json:"dice,omitempty"`
	Flat  int               `json:"flat,omitempty"`
	Type  shared.DamageType `json:"type,omitempty"`

	// RequiresCondition gates the source on an active condition
	// (a rage-style bonus only while raging)
	RequiresCondition shared.ConditionTag `json:"requires_condition,omitempty"`

	// RequiresConcentrationOn gates the source on the character
	// concentrating on the named effect
	RequiresConcentrationOn string `json:"requires_concentration_on,omitempty"`

	// ResourcePool and ResourceTier gate a resource-spend bonus on the
	// declared intensity not exceeding the pool's maximum
	ResourcePool string `json:"resource_pool,omitempty"`
	ResourceTier int    `json:"resource_tier,omitempty"`
}

// ActionIntent is one classified player action handed to the resolver
type ActionIntent struct {
	Kind IntentKind `json:"kind"`

	// Note carries the classifier's explanation for impossible/no-check
	Note string `json:"note,omitempty"`

	// Skill check fields
	Skill shared.Skill `json:"skill,omitempty"`

	// Saving throw fields
	Ability shared.Attribute `json:"ability,omitempty"`

	// DC for skill checks and saving throws
	DC int `json:"dc,omitempty"`

	// Attack fields
	TargetID    string            `json:"target_id,omitempty"`
	AttackKind  AttackKind        `json:"attack_kind,omitempty"`
	WeaponLabel string            `json:"weapon_label,omitempty"`
	WeaponDice  string            `json:"weapon_dice,omitempty"`
	WeaponFlat  int               `json:"weapon_flat,omitempty"`
	DamageType  shared.DamageType `json:"damage_type,omitempty"`

	ExtraDamage []ExtraDamageSource `json:"extra_damage,omitempty"`
}

// CreateNPCIntent asks the state machine to introduce an NPC. Stats may
// be seeded from reference data by slug; explicit fields win.
type CreateNPCIntent struct {
	Slug        string             `json:"slug,omitempty"`
	Name        string             `json:"name"`
	Disposition shared.Disposition `json:"disposition"`

	AC          int               `json:"ac,omitempty"`
	MaxHP       int               `json:"max_hp,omitempty"`
	AttackBonus int               `json:"attack_bonus,omitempty"`
	DamageDice  string            `json:"damage_dice,omitempty"`
	DamageBonus int               `json:"damage_bonus,omitempty"`
	DamageType  shared.DamageType `json:"damage_type,omitempty"`
	XPValue     int               `json:"xp_value,omitempty"`
}

// UpdateNPCIntent asks the state machine to mutate one NPC
type UpdateNPCIntent struct {
	ID                string                `json:"id"`
	HPDelta           int                   `json:"hp_delta,omitempty"`
	ConditionsAdded   []shared.ConditionTag `json:"conditions_added,omitempty"`
	ConditionsRemoved []shared.ConditionTag `json:"conditions_removed,omitempty"`
	RemoveFromScene   bool                  `json:"remove_from_scene,omitempty"`
}

// PlayerDeltaIntent carries the narration layer's player-side changes
type PlayerDeltaIntent struct {
	HPDelta           int                   `json:"hp_delta,omitempty"`
	ConditionsAdded   []shared.ConditionTag `json:"conditions_added,omitempty"`
	ConditionsRemoved []shared.ConditionTag `json:"conditions_removed,omitempty"`
}

// StateDelta is the batch of intents returned by the narration boundary
// for one turn. It is applied atomically: either every change lands or
// none do, and always after pre-roll reconciliation.
type StateDelta struct {
	CreateNPCs  []CreateNPCIntent  `json:"create_npcs,omitempty"`
	UpdateNPCs  []UpdateNPCIntent  `json:"update_npcs,omitempty"`
	PlayerDelta *PlayerDeltaIntent `json:"player_delta,omitempty"`
}
