package ast

type ArithOp uint8

const (
	OpAdd ArithOp = iota + 1
	OpSub
	OpMul
	OpDiv
	OpMod
)

func (op ArithOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	}
	return "?"
}

// Name is the upper-case mnemonic used in IR dumps.
func (op ArithOp) Name() string {
	switch op {
	case OpAdd:
		return "ADD"
	case OpSub:
		return "SUB"
	case OpMul:
		return "MUL"
	case OpDiv:
		return "DIV"
	case OpMod:
		return "MOD"
	}
	return "NONE"
}

// CmpOp is a comparison operator. CmpNone doubles as "unconditional" on
// jumps.
type CmpOp uint8

const (
	CmpNone CmpOp = iota
	CmpEqual
	CmpNotEqual
	CmpLess
	CmpLessEqual
	CmpGreater
	CmpGreaterEqual
)

// Negate returns the logical negation of op. CmpNone negates to itself.
func (op CmpOp) Negate() CmpOp {
	switch op {
	case CmpEqual:
		return CmpNotEqual
	case CmpNotEqual:
		return CmpEqual
	case CmpLess:
		return CmpGreaterEqual
	case CmpGreaterEqual:
		return CmpLess
	case CmpLessEqual:
		return CmpGreater
	case CmpGreater:
		return CmpLessEqual
	}
	return CmpNone
}

func (op CmpOp) String() string {
	switch op {
	case CmpEqual:
		return "EQUAL"
	case CmpNotEqual:
		return "NOT_EQUAL"
	case CmpLess:
		return "LESS"
	case CmpLessEqual:
		return "LESS_EQUAL"
	case CmpGreater:
		return "GREATER"
	case CmpGreaterEqual:
		return "GREATER_EQUAL"
	}
	return "NONE"
}

// Symbol is the source spelling.
func (op CmpOp) Symbol() string {
	switch op {
	case CmpEqual:
		return "=="
	case CmpNotEqual:
		return "!="
	case CmpLess:
		return "<"
	case CmpLessEqual:
		return "<="
	case CmpGreater:
		return ">"
	case CmpGreaterEqual:
		return ">="
	}
	return ""
}

type Logic uint8

const (
	LogicAnd Logic = iota + 1
	LogicOr
)

func (l Logic) String() string {
	if l == LogicOr {
		return "||"
	}
	return "&&"
}
