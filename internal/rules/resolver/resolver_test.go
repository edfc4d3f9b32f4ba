package resolver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questforge/session-engine/internal/dice"
	"github.com/questforge/session-engine/internal/domain/character"
	"github.com/questforge/session-engine/internal/domain/combat"
	"github.com/questforge/session-engine/internal/domain/shared"
	"github.com/questforge/session-engine/internal/rules/resolver"
)

func newTestResolver(rolls ...int) *resolver.Resolver {
	mock := dice.NewMockRoller()
	mock.SetRolls(rolls)
	return resolver.New(&resolver.Config{Roller: mock})
}

func fighterStats() *character.DerivedStats {
	return &character.DerivedStats{
		AC:                16,
		Speed:             30,
		MeleeAttackBonus:  6,
		RangedAttackBonus: 5,
		SpellAttackBonus:  4,
		AttacksPerAction:  1,
		ProficiencyBonus:  3,
		AbilityModifiers: map[shared.Attribute]int{
			shared.AttributeStrength:     3,
			shared.AttributeDexterity:    2,
			shared.AttributeConstitution: 2,
			shared.AttributeIntelligence: 0,
			shared.AttributeWisdom:       1,
			shared.AttributeCharisma:     0,
		},
		SkillProficiencies: []shared.Skill{shared.SkillAthletics},
		SaveProficiencies:  []shared.Attribute{shared.AttributeStrength, shared.AttributeConstitution},
		Pools:              map[string]int{},
	}
}

func fighter() *character.Character {
	return &character.Character{
		ID:               "char-1",
		Name:             "Borin",
		Level:            5,
		ActiveConditions: shared.NewConditionSet(),
	}
}

func goblinTarget() *combat.NPC {
	return &combat.NPC{
		ID:          "npc-1",
		Name:        "Goblin",
		AC:          20,
		CurrentHP:   7,
		MaxHP:       7,
		Disposition: shared.DispositionHostile,
	}
}

func attackIntent() *combat.ActionIntent {
	return &combat.ActionIntent{
		Kind:        combat.IntentAttack,
		AttackKind:  combat.AttackKindMelee,
		TargetID:    "npc-1",
		WeaponLabel: "longsword",
		WeaponDice:  "1d8",
		DamageType:  shared.DamageTypeSlashing,
	}
}

func TestResolve_Attack_HitItemizesDamage(t *testing.T) {
	// d20 shows 15, then the longsword d8 shows 5
	r := newTestResolver(15, 5)

	result := r.Resolve(fighter(), fighterStats(), attackIntent(), goblinTarget())

	require.Equal(t, combat.ResultKindCheck, result.Kind)
	assert.Equal(t, combat.CheckTypeAttack, result.CheckType)
	assert.Equal(t, 15, result.RawDie)
	assert.Equal(t, 21, result.Total)
	assert.Equal(t, 20, result.Against)
	assert.True(t, result.Success)
	assert.False(t, result.Critical)

	require.Len(t, result.Damage, 1)
	weapon := result.Damage[0]
	assert.Equal(t, "longsword", weapon.Label)
	assert.Equal(t, []int{5}, weapon.Rolls)
	assert.Equal(t, 3, weapon.Flat, "strength modifier rides the flat bonus")
	assert.Equal(t, 8, weapon.Subtotal)
	assert.Equal(t, 8, result.TotalDamage())
}

func TestResolve_Attack_MissRollsNoDamage(t *testing.T) {
	// 13 + 6 = 19 vs AC 20; only the d20 is consumed
	r := newTestResolver(13)

	result := r.Resolve(fighter(), fighterStats(), attackIntent(), goblinTarget())

	assert.False(t, result.Success)
	assert.Empty(t, result.Damage)
}

func TestResolve_Attack_NaturalOneAlwaysMisses(t *testing.T) {
	r := newTestResolver(1)
	target := goblinTarget()
	target.AC = 1

	result := r.Resolve(fighter(), fighterStats(), attackIntent(), target)

	assert.False(t, result.Success, "1+6 beats AC 1 but a natural 1 never hits")
	assert.Empty(t, result.Damage)
}

func TestResolve_Attack_NaturalTwentyHitsAndDoublesDice(t *testing.T) {
	target := goblinTarget()
	target.AC = 30

	// Crit against unhittable AC; the d8 count doubles and both dice are
	// rolled fresh
	r := newTestResolver(20, 6, 2)

	result := r.Resolve(fighter(), fighterStats(), attackIntent(), target)

	require.True(t, result.Success, "natural 20 hits regardless of AC")
	assert.True(t, result.Critical)

	require.Len(t, result.Damage, 1)
	weapon := result.Damage[0]
	assert.Equal(t, []int{6, 2}, weapon.Rolls)
	assert.Equal(t, 3, weapon.Flat, "flat bonus does not double")
	assert.Equal(t, 11, weapon.Subtotal)
}

func TestResolve_Attack_ExtraSourceGatedOnCondition(t *testing.T) {
	intent := attackIntent()
	intent.ExtraDamage = []combat.ExtraDamageSource{
		{
			Label:             "rage",
			Flat:              2,
			Type:              shared.DamageTypeSlashing,
			RequiresCondition: shared.ConditionRaging,
		},
	}

	// Not raging: the source is dropped
	r := newTestResolver(15, 5)
	result := r.Resolve(fighter(), fighterStats(), intent, goblinTarget())
	require.Len(t, result.Damage, 1)
	assert.Equal(t, 8, result.TotalDamage())

	// Raging: the flat source lands with no extra dice consumed
	raging := fighter()
	raging.ActiveConditions.Add(shared.ConditionRaging)
	r = newTestResolver(15, 5)
	result = r.Resolve(raging, fighterStats(), intent, goblinTarget())
	require.Len(t, result.Damage, 2)
	assert.Equal(t, "rage", result.Damage[1].Label)
	assert.Equal(t, 10, result.TotalDamage())
}

func TestResolve_Attack_ExtraSourceGatedOnConcentration(t *testing.T) {
	intent := attackIntent()
	intent.ExtraDamage = []combat.ExtraDamageSource{
		{
			Label:                   "divine favor",
			Dice:                    "1d4",
			Type:                    shared.DamageTypeRadiant,
			RequiresConcentrationOn: "divine-favor",
		},
	}

	r := newTestResolver(15, 5)
	result := r.Resolve(fighter(), fighterStats(), intent, goblinTarget())
	assert.Len(t, result.Damage, 1, "not concentrating, source dropped")

	concentrating := fighter()
	concentrating.ConcentratingOn = "divine-favor"
	r = newTestResolver(15, 5, 3)
	result = r.Resolve(concentrating, fighterStats(), intent, goblinTarget())
	require.Len(t, result.Damage, 2)
	assert.Equal(t, []int{3}, result.Damage[1].Rolls)
	assert.Equal(t, 11, result.TotalDamage())
}

func TestResolve_Attack_ExtraSourceGatedOnResourcePool(t *testing.T) {
	intent := attackIntent()
	intent.ExtraDamage = []combat.ExtraDamageSource{
		{
			Label:        "divine smite",
			Dice:         "2d8",
			Type:         shared.DamageTypeRadiant,
			ResourcePool: "spell_slots_2",
			ResourceTier: 1,
		},
	}

	// No such pool: dropped
	r := newTestResolver(15, 5)
	result := r.Resolve(fighter(), fighterStats(), intent, goblinTarget())
	assert.Len(t, result.Damage, 1)

	stats := fighterStats()
	stats.Pools["spell_slots_2"] = 2
	r = newTestResolver(15, 5, 7, 4)
	result = r.Resolve(fighter(), stats, intent, goblinTarget())
	require.Len(t, result.Damage, 2)
	assert.Equal(t, 11, result.Damage[1].Subtotal)
}

func TestResolve_Attack_EmbeddedDiceBonusCounts(t *testing.T) {
	intent := attackIntent()
	intent.WeaponDice = "1d8+3"

	r := newTestResolver(15, 5)
	result := r.Resolve(fighter(), fighterStats(), intent, goblinTarget())

	require.True(t, result.Success)
	require.Len(t, result.Damage, 1)
	weapon := result.Damage[0]
	assert.Equal(t, []int{5}, weapon.Rolls)
	assert.Equal(t, 6, weapon.Flat, "embedded +3 joins the strength modifier")
	assert.Equal(t, 11, weapon.Subtotal)
}

func TestResolve_Attack_EmbeddedDiceBonusNotDoubledOnCrit(t *testing.T) {
	target := goblinTarget()
	target.AC = 30

	intent := attackIntent()
	intent.WeaponDice = "1d8+3"
	intent.ExtraDamage = []combat.ExtraDamageSource{
		{Label: "hex", Dice: "1d6+1", Type: shared.DamageTypeNecrotic},
	}

	// Crit: both sources roll doubled dice fresh; the embedded bonuses
	// land once each
	r := newTestResolver(20, 6, 2, 4, 3)
	result := r.Resolve(fighter(), fighterStats(), intent, target)

	require.True(t, result.Critical)
	require.Len(t, result.Damage, 2)

	weapon := result.Damage[0]
	assert.Equal(t, []int{6, 2}, weapon.Rolls)
	assert.Equal(t, 14, weapon.Subtotal, "6+2 dice plus str 3 plus embedded 3")

	hex := result.Damage[1]
	assert.Equal(t, []int{4, 3}, hex.Rolls)
	assert.Equal(t, 1, hex.Flat)
	assert.Equal(t, 8, hex.Subtotal, "4+3 dice plus embedded 1, not 2")
}

func TestResolve_Attack_MalformedWeaponDiceKeepsFlat(t *testing.T) {
	intent := attackIntent()
	intent.WeaponDice = "1dbanana"

	r := newTestResolver(15)
	result := r.Resolve(fighter(), fighterStats(), intent, goblinTarget())

	require.True(t, result.Success)
	require.Len(t, result.Damage, 1)
	assert.Empty(t, result.Damage[0].Rolls)
	assert.Equal(t, 3, result.Damage[0].Subtotal, "ability modifier still applies")
}

func TestResolve_Attack_NoTargetDegrades(t *testing.T) {
	r := newTestResolver()
	result := r.Resolve(fighter(), fighterStats(), attackIntent(), nil)
	assert.Equal(t, combat.ResultKindNoCheck, result.Kind)
}

func TestResolve_SkillCheck_Proficient(t *testing.T) {
	r := newTestResolver(10)
	intent := &combat.ActionIntent{
		Kind:  combat.IntentSkillCheck,
		Skill: shared.SkillAthletics,
		DC:    15,
	}

	result := r.Resolve(fighter(), fighterStats(), intent, nil)

	require.Equal(t, combat.ResultKindCheck, result.Kind)
	assert.Equal(t, combat.CheckTypeSkillCheck, result.CheckType)
	// 10 + 3 (str) + 3 (proficiency) = 16
	assert.Equal(t, 16, result.Total)
	assert.True(t, result.Success)
}

func TestResolve_SkillCheck_Expertise(t *testing.T) {
	char := fighter()
	char.Expertise = []shared.Skill{shared.SkillAthletics}

	r := newTestResolver(10)
	intent := &combat.ActionIntent{
		Kind:  combat.IntentSkillCheck,
		Skill: shared.SkillAthletics,
		DC:    18,
	}

	result := r.Resolve(char, fighterStats(), intent, nil)

	// 10 + 3 (str) + 6 (doubled proficiency) = 19
	assert.Equal(t, 19, result.Total)
	assert.True(t, result.Success)
}

func TestResolve_SkillCheck_HalfProficiency(t *testing.T) {
	stats := fighterStats()
	stats.HalfProficiency = true

	r := newTestResolver(10)
	intent := &combat.ActionIntent{
		Kind:  combat.IntentSkillCheck,
		Skill: shared.SkillStealth,
		DC:    14,
	}

	result := r.Resolve(fighter(), stats, intent, nil)

	// 10 + 2 (dex) + 1 (floor of 3/2) = 13
	assert.Equal(t, 13, result.Total)
	assert.False(t, result.Success)
}

func TestResolve_SavingThrow(t *testing.T) {
	r := newTestResolver(8)
	intent := &combat.ActionIntent{
		Kind:    combat.IntentSavingThrow,
		Ability: shared.AttributeConstitution,
		DC:      13,
	}

	result := r.Resolve(fighter(), fighterStats(), intent, nil)

	assert.Equal(t, combat.CheckTypeSavingThrow, result.CheckType)
	// 8 + 2 (con) + 3 (proficient save) = 13
	assert.Equal(t, 13, result.Total)
	assert.True(t, result.Success, "meeting the DC succeeds")
}

func TestResolve_SavingThrow_NotProficient(t *testing.T) {
	r := newTestResolver(8)
	intent := &combat.ActionIntent{
		Kind:    combat.IntentSavingThrow,
		Ability: shared.AttributeWisdom,
		DC:      13,
	}

	result := r.Resolve(fighter(), fighterStats(), intent, nil)

	// 8 + 1 (wis), no proficiency
	assert.Equal(t, 9, result.Total)
	assert.False(t, result.Success)
}

func TestResolve_ShortCircuitKinds(t *testing.T) {
	r := newTestResolver()

	impossible := r.Resolve(fighter(), fighterStats(), &combat.ActionIntent{
		Kind: combat.IntentImpossible,
		Note: "you cannot persuade the door",
	}, nil)
	assert.Equal(t, combat.ResultKindImpossible, impossible.Kind)
	assert.Equal(t, "you cannot persuade the door", impossible.Note)
	assert.Zero(t, impossible.RawDie, "no dice consumed")

	noCheck := r.Resolve(fighter(), fighterStats(), &combat.ActionIntent{
		Kind: combat.IntentNoCheck,
	}, nil)
	assert.Equal(t, combat.ResultKindNoCheck, noCheck.Kind)
}

func TestResolve_UnknownIntentDegrades(t *testing.T) {
	r := newTestResolver()

	result := r.Resolve(fighter(), fighterStats(), &combat.ActionIntent{Kind: "interpretive_dance"}, nil)

	assert.Equal(t, combat.ResultKindNoCheck, result.Kind)
	assert.Contains(t, result.Note, "interpretive_dance")
}

func TestResolve_NilIntentDegrades(t *testing.T) {
	r := newTestResolver()
	result := r.Resolve(fighter(), fighterStats(), nil, nil)
	assert.Equal(t, combat.ResultKindNoCheck, result.Kind)
}

func TestResolve_ExhaustedRollerDegrades(t *testing.T) {
	// Empty mock roller errors on the d20; the result degrades instead
	// of propagating an error
	r := newTestResolver()

	result := r.Resolve(fighter(), fighterStats(), attackIntent(), goblinTarget())

	assert.Equal(t, combat.ResultKindNoCheck, result.Kind)
	assert.Contains(t, result.Note, "dice unavailable")
}
