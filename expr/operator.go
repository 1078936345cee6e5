package expr

// Operator is a binary operator of the expression language.
type Operator uint8

const (
	OpEq Operator = iota
	OpNotEq
	OpGt
	OpGte
	OpLt
	OpLte
	OpAnd
	OpOr
)

var operatorSymbols = [...]string{
	OpEq:    "=",
	OpNotEq: "!=",
	OpGt:    ">",
	OpGte:   ">=",
	OpLt:    "<",
	OpLte:   "<=",
	OpAnd:   "and",
	OpOr:    "or",
}

var operatorNames = [...]string{
	OpEq:    "Eq",
	OpNotEq: "NotEq",
	OpGt:    "Gt",
	OpGte:   "Gte",
	OpLt:    "Lt",
	OpLte:   "Lte",
	OpAnd:   "And",
	OpOr:    "Or",
}

// String returns the operator name, e.g. "Gte".
func (op Operator) String() string {
	if int(op) < len(operatorNames) {
		return operatorNames[op]
	}
	return "Operator(?)"
}

// Symbol returns the infix symbol, e.g. ">=".
func (op Operator) Symbol() string {
	if int(op) < len(operatorSymbols) {
		return operatorSymbols[op]
	}
	return "?"
}

// IsComparison reports whether op compares two values.
func (op Operator) IsComparison() bool { return op <= OpLte }

// IsLogical reports whether op combines two boolean values.
func (op Operator) IsLogical() bool { return op == OpAnd || op == OpOr }

// Inverse returns the operator whose result is the negation of op,
// e.g. Lt for Gte. Logical operators have no inverse.
func (op Operator) Inverse() (Operator, bool) {
	switch op {
	case OpEq:
		return OpNotEq, true
	case OpNotEq:
		return OpEq, true
	case OpGt:
		return OpLte, true
	case OpGte:
		return OpLt, true
	case OpLt:
		return OpGte, true
	case OpLte:
		return OpGt, true
	default:
		return op, false
	}
}

// Swap returns the operator that gives the same result with its operands
// exchanged: a < b is b > a.
func (op Operator) Swap() Operator {
	switch op {
	case OpGt:
		return OpLt
	case OpGte:
		return OpLte
	case OpLt:
		return OpGt
	case OpLte:
		return OpGte
	default:
		return op
	}
}
