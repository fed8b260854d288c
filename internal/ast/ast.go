// Package ast is the statement/expression tree handed from the parser to
// IR lowering. Every node records the source line it started on; literal
// nodes carry their resolved type.
package ast

import "ilsc/internal/types"

type Node interface {
	Line() int
}

// Stmt is implemented by statement nodes only.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is implemented by expression nodes only.
type Expr interface {
	Node
	exprNode()
}

// Pos is embedded by every node.
type Pos struct {
	L int
}

func (p Pos) Line() int { return p.L }

// Program is one parsed source file.
type Program struct {
	File  string
	Stmts []Stmt
}

type (
	// Block is a braced statement list. As a statement on its own it opens
	// a plain nested scope.
	Block struct {
		Pos
		Stmts []Stmt
	}

	VarDecl struct {
		Pos
		Name  string
		Type  *types.Type
		Value Expr // nil when there is no initializer
	}

	Param struct {
		Pos
		Name string
		Type *types.Type
	}

	FuncDecl struct {
		Pos
		Name   string
		Params []Param
		Result *types.Type // types.Void when omitted
		Body   *Block
	}

	// Assign writes Value to Name, or to Name[Index] when Index is set.
	Assign struct {
		Pos
		Name  string
		Index Expr
		Value Expr
	}

	CallStmt struct {
		Pos
		Call *Call
	}

	Return struct {
		Pos
		Value Expr // nil for a bare return
	}

	If struct {
		Pos
		Cond *Cond
		Body *Block
		Next Branch // nil, *Elif or *Else
	}

	While struct {
		Pos
		Cond *Cond
		Body *Block
	}

	Break struct {
		Pos
	}
)

func (*Block) stmtNode()    {}
func (*VarDecl) stmtNode()  {}
func (*FuncDecl) stmtNode() {}
func (*Assign) stmtNode()   {}
func (*CallStmt) stmtNode() {}
func (*Return) stmtNode()   {}
func (*If) stmtNode()       {}
func (*While) stmtNode()    {}
func (*Break) stmtNode()    {}

// Branch is the tail of an if chain.
type Branch interface {
	Node
	branchNode()
}

type Elif struct {
	Pos
	Cond *Cond
	Body *Block
	Next Branch
}

type Else struct {
	Pos
	Body *Block
}

func (*Elif) branchNode() {}
func (*Else) branchNode() {}

type (
	Ident struct {
		Pos
		Name string
	}

	// Literal holds the textual encoding of a constant: decimal digits for
	// int, the code point in decimal for char, 1/0 for bool and the
	// unescaped contents for str.
	Literal struct {
		Pos
		Type  *types.Type
		Value string
	}

	Binary struct {
		Pos
		Op    ArithOp
		Left  Expr
		Right Expr
	}

	// Index reads Name[Index].
	Index struct {
		Pos
		Name  string
		Index Expr
	}

	ArrayLit struct {
		Pos
		Elems []Expr
	}

	// Call invokes a user function or, when Builtin is set, an intrinsic
	// written with the @ sigil.
	Call struct {
		Pos
		Name    string
		Builtin bool
		Args    []Expr
	}
)

func (*Ident) exprNode()    {}
func (*Literal) exprNode()  {}
func (*Binary) exprNode()   {}
func (*Index) exprNode()    {}
func (*ArrayLit) exprNode() {}
func (*Call) exprNode()     {}

// Cond is a chain of comparisons joined left to right by && / ||.
// len(Joins) == len(Terms)-1.
type Cond struct {
	Pos
	Terms []Comparison
	Joins []Logic
}

// Comparison is one atom of a condition chain. Right is nil for a bare
// truthiness test.
type Comparison struct {
	Pos
	Left  Expr
	Op    CmpOp
	Right Expr
}
