// Package consteval folds arithmetic over integer literals.
package consteval

import (
	"math"
	"strconv"

	"ilsc/internal/ast"
	"ilsc/internal/diag"
	"ilsc/internal/types"
)

// CanEval reports whether expr is built only from int literals and
// arithmetic operators.
func CanEval(expr ast.Expr) bool {
	switch e := expr.(type) {
	case *ast.Literal:
		return e.Type.Is(types.KindInt)
	case *ast.Binary:
		return CanEval(e.Left) && CanEval(e.Right)
	}
	return false
}

// Eval computes the value of a foldable expression. Division truncates
// toward zero. Every intermediate result has to fit in a 32-bit int, the
// same bound the parser puts on literals.
func Eval(expr ast.Expr) (int64, error) {
	switch e := expr.(type) {
	case *ast.Literal:
		if !e.Type.Is(types.KindInt) {
			return 0, diag.Errorf(diag.InvalidOperandType, e.Line(), "%s literal in constant arithmetic", e.Type)
		}
		v, err := strconv.ParseInt(e.Value, 10, 64)
		if err != nil {
			return 0, diag.Errorf(diag.InvalidOperandType, e.Line(), "bad integer literal %q", e.Value)
		}
		return v, nil
	case *ast.Binary:
		l, err := Eval(e.Left)
		if err != nil {
			return 0, err
		}
		r, err := Eval(e.Right)
		if err != nil {
			return 0, err
		}
		v, err := apply(e, l, r)
		if err != nil {
			return 0, err
		}
		if v < math.MinInt32 || v > math.MaxInt32 {
			return 0, diag.Errorf(diag.ConstantOverflow, e.Line(), "constant %d does not fit in 32 bits", v)
		}
		return v, nil
	case nil:
		return 0, diag.Errorf(diag.InvalidOperandType, 0, "missing operand")
	}
	return 0, diag.Errorf(diag.InvalidOperandType, expr.Line(), "expression is not constant")
}

func apply(e *ast.Binary, l, r int64) (int64, error) {
	switch e.Op {
	case ast.OpAdd:
		return l + r, nil
	case ast.OpSub:
		return l - r, nil
	case ast.OpMul:
		return l * r, nil
	case ast.OpDiv, ast.OpMod:
		if r == 0 {
			return 0, diag.Errorf(diag.DivisionByZero, e.Line(), "division by zero")
		}
		if e.Op == ast.OpDiv {
			return l / r, nil
		}
		return l % r, nil
	}
	return 0, diag.Errorf(diag.InvalidOperandType, e.Line(), "unknown operator %v", e.Op)
}
