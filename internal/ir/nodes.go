package ir

import (
	"ilsc/internal/ast"
	"ilsc/internal/scope"
	"ilsc/internal/types"
)

// Node is one IR instruction. The set is closed; see the types below.
type Node interface {
	node()
}

type (
	Label struct {
		Name string
	}

	// FuncEntry opens a function: name, return type and parameters come
	// from Func.
	FuncEntry struct {
		Func *Function
	}

	// Prologue sets up the frame. LocalCount is back-patched when the
	// function body has been lowered.
	Prologue struct {
		Func       *Function
		LocalCount int
	}

	Epilogue struct {
		Func *Function
	}

	ScopeStart struct {
		Scope *scope.Scope
		Func  *Function // set for function scopes only
	}

	ScopeEnd struct {
		Scope *scope.Scope
		Func  *Function
	}

	VarDecl struct {
		Var  Variable
		Line int
	}

	// Assign stores Value into Target, or into the element Indexed
	// describes when it is set. ValueType is the literal's type, or
	// types.Ident for references.
	Assign struct {
		Target    Variable
		Value     Value
		ValueType *types.Type
		Indexed   *ArrayIndexed
		Line      int
	}

	Arith struct {
		Result *Temp
		LHS    Variable
		RHS    Variable
		Op     ast.ArithOp
		Line   int
	}

	Compare struct {
		LHS  Variable
		RHS  Variable
		Line int
	}

	// Jump transfers control to Label. Cond is ast.CmpNone for an
	// unconditional jump.
	Jump struct {
		Label string
		Cond  ast.CmpOp
	}

	// Call invokes a builtin (Builtin set, Func nil) or a user function.
	Call struct {
		Name    string
		Builtin bool
		Func    *Function
		Args    []Variable
		Line    int
	}

	Return struct {
		Value Variable // nil for void returns
		Func  *Function
		Line  int
	}

	DestroyTemp struct {
		ID VarID
	}
)

func (*Label) node()       {}
func (*FuncEntry) node()   {}
func (*Prologue) node()    {}
func (*Epilogue) node()    {}
func (*ScopeStart) node()  {}
func (*ScopeEnd) node()    {}
func (*VarDecl) node()     {}
func (*Assign) node()      {}
func (*Arith) node()       {}
func (*Compare) node()     {}
func (*Jump) node()        {}
func (*Call) node()        {}
func (*Return) node()      {}
func (*DestroyTemp) node() {}

// Unconditional reports whether j always transfers control.
func (j *Jump) Unconditional() bool {
	return j.Cond == ast.CmpNone
}

// Operands lists the variables n reads or writes directly. Values held as
// references are not followed.
func Operands(n Node) []Variable {
	switch n := n.(type) {
	case *VarDecl:
		return []Variable{n.Var}
	case *Assign:
		if n.Indexed != nil {
			return []Variable{n.Target, n.Indexed}
		}
		return []Variable{n.Target}
	case *Arith:
		return []Variable{n.Result, n.LHS, n.RHS}
	case *Compare:
		return []Variable{n.LHS, n.RHS}
	case *Call:
		return n.Args
	case *Return:
		if n.Value != nil {
			return []Variable{n.Value}
		}
	}
	return nil
}
