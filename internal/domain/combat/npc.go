package combat

import (
	"github.com/questforge/session-engine/internal/domain/shared"
)

// StatBlock is the read-only reference-data shape for a creature, as
// returned by the stat-lookup capability. A nil stat block (unknown or
// custom creature) is a normal, handled case.
type StatBlock struct {
	Slug            string            `json:"slug"`
	Name            string            `json:"name"`
	Type            string            `json:"type"`
	ArmorClass      int               `json:"armor_class"`
	HitPoints       int               `json:"hit_points"`
	AttackBonus     int               `json:"attack_bonus"`
	DamageDice      string            `json:"damage_dice"`
	DamageBonus     int               `json:"damage_bonus"`
	DamageType      shared.DamageType `json:"damage_type"`
	ChallengeRating float64           `json:"challenge_rating"`
	XP              int               `json:"xp"`
}

// NPC is a non-player combatant in a scene. Removal on death or dismissal
// is terminal; there is no resurrection path.
type NPC struct {
	ID   string `json:"id"`
	Slug string `json:"slug,omitempty"`
	Name string `json:"name"`

	AC        int `json:"ac"`
	CurrentHP int `json:"current_hp"`
	MaxHP     int `json:"max_hp"`

	AttackBonus int               `json:"attack_bonus"`
	DamageDice  string            `json:"damage_dice"`
	DamageBonus int               `json:"damage_bonus"`
	DamageType  shared.DamageType `json:"damage_type"`

	Disposition shared.Disposition   `json:"disposition"`
	Conditions  []shared.ConditionTag `json:"conditions,omitempty"`

	XPValue int `json:"xp_value"`
}

// IsAlive returns true while the NPC has hit points remaining
func (n *NPC) IsAlive() bool {
	return n.CurrentHP > 0
}

// IsHostile reports whether the NPC participates in enemy pre-rolls
func (n *NPC) IsHostile() bool {
	return n.Disposition == shared.DispositionHostile
}

// ApplyHPDelta adjusts hit points, clamping to [0, MaxHP]. It reports
// whether this call crossed the death threshold, which is the single
// death event for the NPC.
func (n *NPC) ApplyHPDelta(delta int) (died bool) {
	wasAlive := n.IsAlive()

	n.CurrentHP += delta
	if n.CurrentHP < 0 {
		n.CurrentHP = 0
	}
	if n.CurrentHP > n.MaxHP {
		n.CurrentHP = n.MaxHP
	}

	return wasAlive && n.CurrentHP == 0
}

// AddCondition appends a condition if not already present
func (n *NPC) AddCondition(tag shared.ConditionTag) {
	for _, c := range n.Conditions {
		if c == tag {
			return
		}
	}
	n.Conditions = append(n.Conditions, tag)
}

// RemoveCondition drops a condition if present
func (n *NPC) RemoveCondition(tag shared.ConditionTag) {
	out := n.Conditions[:0]
	for _, c := range n.Conditions {
		if c != tag {
			out = append(out, c)
		}
	}
	n.Conditions = out
}

// NewNPCFromStatBlock seeds an NPC's combat fields from reference data
func NewNPCFromStatBlock(id string, block *StatBlock, disposition shared.Disposition) *NPC {
	return &NPC{
		ID:          id,
		Slug:        block.Slug,
		Name:        block.Name,
		AC:          block.ArmorClass,
		CurrentHP:   block.HitPoints,
		MaxHP:       block.HitPoints,
		AttackBonus: block.AttackBonus,
		DamageDice:  block.DamageDice,
		DamageBonus: block.DamageBonus,
		DamageType:  block.DamageType,
		Disposition: disposition,
		XPValue:     block.XP,
	}
}
