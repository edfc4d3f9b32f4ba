package character

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/questforge/session-engine/internal/domain/shared"
)

// UnarmoredFormula is a parsed unarmored-AC expression: a flat base plus
// the modifiers of zero or more abilities, e.g. 10 + DEX + WIS for a monk
type UnarmoredFormula struct {
	Base      int
	Abilities []shared.Attribute
}

var formulaAbilities = map[string]shared.Attribute{
	"str":          shared.AttributeStrength,
	"strength":     shared.AttributeStrength,
	"dex":          shared.AttributeDexterity,
	"dexterity":    shared.AttributeDexterity,
	"con":          shared.AttributeConstitution,
	"constitution": shared.AttributeConstitution,
	"int":          shared.AttributeIntelligence,
	"intelligence": shared.AttributeIntelligence,
	"wis":          shared.AttributeWisdom,
	"wisdom":       shared.AttributeWisdom,
	"cha":          shared.AttributeCharisma,
	"charisma":     shared.AttributeCharisma,
}

// ParseUnarmoredFormula parses expressions like "10+dexterity+wisdom".
// The first term must be the numeric base; remaining terms name abilities.
func ParseUnarmoredFormula(expr string) (*UnarmoredFormula, error) {
	cleaned := strings.ToLower(strings.ReplaceAll(expr, " ", ""))
	terms := strings.Split(cleaned, "+")
	if len(terms) < 1 || terms[0] == "" {
		return nil, fmt.Errorf("empty AC formula %q", expr)
	}

	base, err := strconv.Atoi(terms[0])
	if err != nil {
		return nil, fmt.Errorf("AC formula %q: base %q is not a number", expr, terms[0])
	}

	formula := &UnarmoredFormula{Base: base}
	for _, term := range terms[1:] {
		attr, ok := formulaAbilities[term]
		if !ok {
			return nil, fmt.Errorf("AC formula %q: unknown ability %q", expr, term)
		}
		formula.Abilities = append(formula.Abilities, attr)
	}

	return formula, nil
}

// Evaluate computes the formula against a set of ability modifiers
func (f *UnarmoredFormula) Evaluate(mods map[shared.Attribute]int) int {
	total := f.Base
	for _, attr := range f.Abilities {
		total += mods[attr]
	}
	return total
}
