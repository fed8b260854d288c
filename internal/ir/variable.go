package ir

import (
	"fmt"

	"ilsc/internal/scope"
	"ilsc/internal/types"
)

// VarID identifies a variable inside one Context. IDs start at 1 and are
// never reused; NoVar is the zero value.
type VarID uint32

const NoVar VarID = 0

// Value is what a variable currently holds: either a literal encoding or a
// reference to another variable.
type Value struct {
	Lit string
	Ref VarID
}

func Lit(s string) Value    { return Value{Lit: s} }
func RefTo(id VarID) Value  { return Value{Ref: id} }
func (v Value) IsRef() bool { return v.Ref != NoVar }

// VarBase is embedded by every variable variant.
type VarBase struct {
	ID             VarID
	Type           *types.Type
	Value          Value
	NeedsPreserved bool
	LastUse        Node // last node listing it as an operand, see Validate
}

func (b *VarBase) Base() *VarBase { return b }

// Variable is the closed set of storage classes:
// *Named, *Temp, *Literal, *ArrayIndexed, *Array and *FuncReturn.
type Variable interface {
	Base() *VarBase
	variable()
}

// Named is a source-level variable. Globals live in the data section,
// everything else in the current function's frame.
type Named struct {
	VarBase
	Name   string
	Global bool
	Arg    bool
	Index  int // parameter position when Arg
	Scope  scope.ID
}

// Temp is a compiler-synthesized value held in a register until its
// DestroyTemp.
type Temp struct {
	VarBase
	Name  string
	Scope scope.ID
}

// Literal is an immediate. For strings Value.Lit is the interned symbol.
type Literal struct {
	VarBase
}

// ArrayIndexed is an element access. It is resolved to an address at
// emission time and never holds a register of its own.
type ArrayIndexed struct {
	VarBase
	Array *Named
	Index Variable
}

// Array is a constant array constructor.
type Array struct {
	VarBase
	Elem   *types.Type
	Length int
	Init   string // comma-joined element encodings
}

// FuncReturn is the result of a call to a non-void function. It lives in
// rax; resolving it emits the call.
type FuncReturn struct {
	VarBase
	Func *Function
	Call *Call
}

func (*Named) variable()        {}
func (*Temp) variable()         {}
func (*Literal) variable()      {}
func (*ArrayIndexed) variable() {}
func (*Array) variable()        {}
func (*FuncReturn) variable()   {}

// Describe returns the short human form of v used in dumps and messages.
func Describe(v Variable) string {
	switch v := v.(type) {
	case nil:
		return "<none>"
	case *Named:
		return v.Name
	case *Temp:
		return v.Name
	case *Literal:
		if v.Type.Is(types.KindChar) {
			return fmt.Sprintf("'%s'", charText(v.Value.Lit))
		}
		return v.Value.Lit
	case *ArrayIndexed:
		return fmt.Sprintf("%s[%s]", v.Array.Name, Describe(v.Index))
	case *Array:
		return "[" + v.Init + "]"
	case *FuncReturn:
		return v.Func.Name + "()"
	}
	return "?"
}

func charText(code string) string {
	var r rune
	if _, err := fmt.Sscanf(code, "%d", &r); err != nil {
		return code
	}
	switch r {
	case '\n':
		return `\n`
	case '\t':
		return `\t`
	case 0:
		return `\0`
	}
	return string(r)
}
