package combat

import (
	"fmt"
	"strings"

	"github.com/questforge/session-engine/internal/domain/shared"
)

// ResultKind distinguishes the three mutually exclusive outcomes of
// resolving an intent. Impossible and NoCheck are not failed checks;
// they short-circuit with zero dice rolled.
type ResultKind string

const (
	ResultKindCheck      ResultKind = "check"
	ResultKindImpossible ResultKind = "impossible"
	ResultKindNoCheck    ResultKind = "no_check"
)

// CheckType identifies which rules procedure produced a check result
type CheckType string

const (
	CheckTypeAttack      CheckType = "attack"
	CheckTypeSkillCheck  CheckType = "skill_check"
	CheckTypeSavingThrow CheckType = "saving_throw"
)

// ModifierPart is one labeled component of a check's total, kept separate
// so narration and auditing can itemize the math
type ModifierPart struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// DamageSource is the itemized damage from one source of a successful
// attack: its dice expression, the individual die results, and the flat
// bonus that never doubles on a crit
type DamageSource struct {
	Label    string            `json:"label"`
	Dice     string            `json:"dice"`
	Rolls    []int             `json:"rolls"`
	Flat     int               `json:"flat"`
	Subtotal int               `json:"subtotal"`
	Type     shared.DamageType `json:"type"`
}

// RollResult is the fully itemized outcome of one resolved action
type RollResult struct {
	Kind      ResultKind `json:"kind"`
	CheckType CheckType  `json:"check_type,omitempty"`

	Modifiers []ModifierPart `json:"modifiers,omitempty"`
	RawDie    int            `json:"raw_die,omitempty"`
	Total     int            `json:"total,omitempty"`

	// Against is the DC or AC the total was compared to
	Against int  `json:"against,omitempty"`
	Success bool `json:"success,omitempty"`

	// Critical marks a natural 20 on an attack roll
	Critical bool `json:"critical,omitempty"`

	Note string `json:"note,omitempty"`

	Damage []DamageSource `json:"damage,omitempty"`
}

// NewImpossible builds the short-circuit result for an action the rules
// cannot allow; no dice are rolled and nothing counts as a failure
func NewImpossible(note string) *RollResult {
	return &RollResult{Kind: ResultKindImpossible, Note: note}
}

// NewNoCheck builds the short-circuit result for an action that needs no
// dice at all
func NewNoCheck(note string) *RollResult {
	return &RollResult{Kind: ResultKindNoCheck, Note: note}
}

// TotalDamage sums every damage source's subtotal
func (r *RollResult) TotalDamage() int {
	total := 0
	for _, d := range r.Damage {
		total += d.Subtotal
	}
	return total
}

// ModifierTotal sums the labeled modifier parts
func (r *RollResult) ModifierTotal() int {
	total := 0
	for _, m := range r.Modifiers {
		total += m.Value
	}
	return total
}

func (r *RollResult) String() string {
	switch r.Kind {
	case ResultKindImpossible:
		return fmt.Sprintf("impossible: %s", r.Note)
	case ResultKindNoCheck:
		return fmt.Sprintf("no check: %s", r.Note)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s d20(%d)%+d = %d vs %d", r.CheckType, r.RawDie, r.ModifierTotal(), r.Total, r.Against)
	if r.Success {
		sb.WriteString(": success")
		if dmg := r.TotalDamage(); dmg > 0 {
			fmt.Fprintf(&sb, ", %d damage", dmg)
		}
	} else {
		sb.WriteString(": failure")
	}
	return sb.String()
}
