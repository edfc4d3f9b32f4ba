package shared

import "strings"

// ConditionTag identifies a condition that can gate a gameplay effect.
// Known tags form a closed set; anything else is carried as a custom tag
// with a "custom:" prefix so it round-trips through persistence intact.
type ConditionTag string

const (
	// ConditionAlways is the default effect condition: never gated
	ConditionAlways ConditionTag = "always"

	ConditionRaging        ConditionTag = "raging"
	ConditionConcentrating ConditionTag = "concentrating"
	ConditionBlessed       ConditionTag = "blessed"
	ConditionHidden        ConditionTag = "hidden"
	ConditionProne         ConditionTag = "prone"
	ConditionPoisoned      ConditionTag = "poisoned"
	ConditionStunned       ConditionTag = "stunned"
	ConditionFrightened    ConditionTag = "frightened"
	ConditionRestrained    ConditionTag = "restrained"
	ConditionInvisible     ConditionTag = "invisible"
	ConditionUnarmored     ConditionTag = "unarmored"
)

const customConditionPrefix = "custom:"

var knownConditions = map[ConditionTag]struct{}{
	ConditionAlways:        {},
	ConditionRaging:        {},
	ConditionConcentrating: {},
	ConditionBlessed:       {},
	ConditionHidden:        {},
	ConditionProne:         {},
	ConditionPoisoned:      {},
	ConditionStunned:       {},
	ConditionFrightened:    {},
	ConditionRestrained:    {},
	ConditionInvisible:     {},
	ConditionUnarmored:     {},
}

// ParseConditionTag validates a raw string at load time. Unknown values
// become custom tags rather than failing.
func ParseConditionTag(s string) ConditionTag {
	tag := ConditionTag(strings.ToLower(strings.TrimSpace(s)))
	if tag == "" {
		return ConditionAlways
	}
	if _, ok := knownConditions[tag]; ok {
		return tag
	}
	if strings.HasPrefix(string(tag), customConditionPrefix) {
		return tag
	}
	return ConditionTag(customConditionPrefix + string(tag))
}

// IsCustom reports whether the tag fell through the closed set
func (t ConditionTag) IsCustom() bool {
	return strings.HasPrefix(string(t), customConditionPrefix)
}

// ConditionSet is the set of conditions currently active on an entity
type ConditionSet map[ConditionTag]struct{}

// NewConditionSet builds a set from tags
func NewConditionSet(tags ...ConditionTag) ConditionSet {
	set := make(ConditionSet, len(tags))
	for _, t := range tags {
		set[t] = struct{}{}
	}
	return set
}

// Has reports whether the tag is active
func (s ConditionSet) Has(tag ConditionTag) bool {
	if s == nil {
		return false
	}
	_, ok := s[tag]
	return ok
}

// Add marks a condition as active
func (s ConditionSet) Add(tag ConditionTag) {
	s[tag] = struct{}{}
}

// Remove clears a condition
func (s ConditionSet) Remove(tag ConditionTag) {
	delete(s, tag)
}

// Tags returns the active tags in unspecified order
func (s ConditionSet) Tags() []ConditionTag {
	out := make([]ConditionTag, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	return out
}

// Clone returns an independent copy of the set
func (s ConditionSet) Clone() ConditionSet {
	out := make(ConditionSet, len(s))
	for t := range s {
		out[t] = struct{}{}
	}
	return out
}
