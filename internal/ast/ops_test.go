package ast_test

import (
	"testing"

	"ilsc/internal/ast"
)

func TestNegateIsInvolution(t *testing.T) {
	pairs := map[ast.CmpOp]ast.CmpOp{
		ast.CmpEqual:        ast.CmpNotEqual,
		ast.CmpLess:         ast.CmpGreaterEqual,
		ast.CmpLessEqual:    ast.CmpGreater,
		ast.CmpGreater:      ast.CmpLessEqual,
		ast.CmpGreaterEqual: ast.CmpLess,
		ast.CmpNone:         ast.CmpNone,
	}
	for op, want := range pairs {
		if got := op.Negate(); got != want {
			t.Errorf("%v.Negate() = %v, want %v", op, got, want)
		}
		if got := op.Negate().Negate(); got != op {
			t.Errorf("double negation of %v = %v", op, got)
		}
	}
}
