package dice

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
)

// RollResult holds the outcome of rolling one pool of dice
type RollResult struct {
	Total    int
	RawTotal int // Total minus the bonus
	Rolls    []int
	Bonus    int
	Count    int
	Sides    int
	IsCrit   bool // natural 20 on a single d20
	IsFumble bool // natural 1 on a single d20
}

// Notation is a parsed dice expression like "2d6+3"
type Notation struct {
	Count int
	Sides int
	Bonus int
}

func (n Notation) String() string {
	if n.Bonus != 0 {
		return fmt.Sprintf("%dd%d+%d", n.Count, n.Sides, n.Bonus)
	}
	return fmt.Sprintf("%dd%d", n.Count, n.Sides)
}

// Roll rolls count dice of the given size and adds a bonus
func Roll(count, sides, bonus int) (*RollResult, error) {
	if count < 1 {
		return nil, errors.New("invalid dice count")
	}

	if sides < 1 {
		return nil, errors.New("invalid dice size")
	}

	total := 0
	out := make([]int, count)
	for i := 0; i < count; i++ {
		roll := rand.Intn(sides) + 1
		total += roll
		out[i] = roll
	}

	result := &RollResult{
		Total:    total + bonus,
		RawTotal: total,
		Rolls:    out,
		Bonus:    bonus,
		Count:    count,
		Sides:    sides,
	}

	if count == 1 && sides == 20 {
		result.IsCrit = out[0] == 20
		result.IsFumble = out[0] == 1
	}

	return result, nil
}

// ParseNotation parses a dice expression of the form "NdS" or "NdS+B"
func ParseNotation(expr string) (Notation, error) {
	trimmed := strings.ReplaceAll(expr, " ", "")

	var bonus int
	dicePart := trimmed
	if idx := strings.Index(trimmed, "+"); idx >= 0 {
		b, err := strconv.Atoi(trimmed[idx+1:])
		if err != nil {
			return Notation{}, fmt.Errorf("invalid dice expression %q", expr)
		}
		bonus = b
		dicePart = trimmed[:idx]
	}

	parts := strings.Split(dicePart, "d")
	if len(parts) != 2 {
		return Notation{}, fmt.Errorf("invalid dice expression %q", expr)
	}

	count, err := strconv.Atoi(parts[0])
	if err != nil {
		return Notation{}, fmt.Errorf("invalid dice expression %q", expr)
	}
	sides, err := strconv.Atoi(parts[1])
	if err != nil {
		return Notation{}, fmt.Errorf("invalid dice expression %q", expr)
	}
	if count < 1 || sides < 1 {
		return Notation{}, fmt.Errorf("invalid dice expression %q", expr)
	}

	return Notation{Count: count, Sides: sides, Bonus: bonus}, nil
}

// RollString parses and rolls a dice expression like "1d8+3"
func RollString(expr string) (*RollResult, error) {
	n, err := ParseNotation(expr)
	if err != nil {
		return nil, err
	}
	return Roll(n.Count, n.Sides, n.Bonus)
}

func (r *RollResult) String() string {
	compact := strings.ReplaceAll(fmt.Sprintf("%v", r.Rolls), " ", ",")
	return fmt.Sprintf("%d %s", r.Total, compact)
}
