package engine

import (
	"fmt"
)

// Operator is a binary arithmetic operation awaiting its right operand.
type Operator int

const (
	None Operator = iota
	Add
	Subtract
	Multiply
	Divide
)

var operatorGlyphs = map[Operator]string{
	None:     "",
	Add:      "+",
	Subtract: "-",
	Multiply: "x",
	Divide:   "÷",
}

// Operators lists the selectable operators in keypad order.
var Operators = []Operator{Add, Subtract, Multiply, Divide}

// String returns the display glyph of the operator.
func (o Operator) String() string {
	if g, ok := operatorGlyphs[o]; ok {
		return g
	}
	return fmt.Sprintf("Operator(%d)", int(o))
}

// ParseOperator accepts the display glyphs plus the usual ASCII spellings.
func ParseOperator(s string) (Operator, bool) {
	switch s {
	case "":
		return None, true
	case "+":
		return Add, true
	case "-", "−":
		return Subtract, true
	case "x", "X", "*", "×":
		return Multiply, true
	case "÷", "/":
		return Divide, true
	}
	return None, false
}

func (o Operator) MarshalText() ([]byte, error) {
	if _, ok := operatorGlyphs[o]; !ok {
		return nil, fmt.Errorf("invalid operator %d", int(o))
	}
	return []byte(o.String()), nil
}

func (o *Operator) UnmarshalText(b []byte) error {
	op, ok := ParseOperator(string(b))
	if !ok {
		return fmt.Errorf("invalid operator %q", string(b))
	}
	*o = op
	return nil
}

func (o Operator) additive() bool {
	return o == Add || o == Subtract
}
